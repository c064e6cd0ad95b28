package evaluator

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Recorded payloads come from several app versions, so scalar fields are
// decoded loosely: a value of the wrong JSON type is scored, never rejected.
// Only the list-valued fields must have list shape.

// text renders a field as a string. Falsy values (absent, null, false, 0,
// "", empty list or object) become "" and other non-strings keep their JSON
// literal form.
func text(raw json.RawMessage) string {
	if !truthy(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return literal(raw)
}

// answer keeps a response as written. Absent is nil; any present value,
// null included, becomes its string or JSON literal.
func answer(raw json.RawMessage) *string {
	if raw == nil {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return &s
	}
	l := literal(raw)
	return &l
}

// stored is answer with null treated as absent, since the backend stores
// no value for both.
func stored(raw json.RawMessage) *string {
	if isNull(raw) {
		return nil
	}
	return answer(raw)
}

func truthy(raw json.RawMessage) bool {
	if raw == nil {
		return false
	}
	switch l := literal(raw); l {
	case "null", "false", `""`, "[]", "{}":
		return false
	default:
		if f, err := strconv.ParseFloat(l, 64); err == nil {
			return f != 0
		}
		return true
	}
}

// millis reads a timestamp. Non-numeric values count as not recorded.
func millis(raw json.RawMessage) int64 {
	if raw == nil {
		return 0
	}
	l := literal(raw)
	if n, err := strconv.ParseInt(l, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(l, 64); err == nil {
		return int64(f)
	}
	return 0
}

func isNull(raw json.RawMessage) bool {
	return raw == nil || literal(raw) == "null"
}

func literal(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(bytes.TrimSpace(raw))
	}
	return buf.String()
}

func (a *AuditRecord) UnmarshalJSON(data []byte) error {
	var raw struct {
		AuditID      json.RawMessage `json:"audit_id"`
		UserID       json.RawMessage `json:"user_id"`
		RestaurantID json.RawMessage `json:"restaurant_id"`
		Items        []AuditItem     `json:"items"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*a = AuditRecord{
		AuditID:      text(raw.AuditID),
		UserID:       text(raw.UserID),
		RestaurantID: text(raw.RestaurantID),
		Items:        raw.Items,
	}
	return nil
}

func (it *AuditItem) UnmarshalJSON(data []byte) error {
	var raw struct {
		ItemID   json.RawMessage `json:"item_id"`
		Category json.RawMessage `json:"category"`
		Response json.RawMessage `json:"response"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*it = AuditItem{
		ItemID:   text(raw.ItemID),
		Category: text(raw.Category),
		Response: answer(raw.Response),
	}
	return nil
}

func (it *ItemSnapshot) UnmarshalJSON(data []byte) error {
	var raw struct {
		ItemID   json.RawMessage `json:"item_id"`
		Response json.RawMessage `json:"response"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*it = ItemSnapshot{
		ItemID:   text(raw.ItemID),
		Response: stored(raw.Response),
	}
	return nil
}

func (s *SyncSubmission) UnmarshalJSON(data []byte) error {
	var raw struct {
		AuditID        json.RawMessage `json:"audit_id"`
		Items          []ItemSnapshot  `json:"items"`
		CompletionTime json.RawMessage `json:"completion_time"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = SyncSubmission{
		AuditID:        text(raw.AuditID),
		Items:          raw.Items,
		CompletionTime: millis(raw.CompletionTime),
	}
	return nil
}

func (b *BackendResult) UnmarshalJSON(data []byte) error {
	var raw struct {
		Received     json.RawMessage `json:"received"`
		Items        []ItemSnapshot  `json:"items"`
		ReceivedTime json.RawMessage `json:"received_time"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*b = BackendResult{
		Received:     truthy(raw.Received),
		Items:        raw.Items,
		ReceivedTime: millis(raw.ReceivedTime),
	}
	return nil
}

// UnmarshalJSON keeps Category nil only when the key is absent. A present
// null category is not penalised.
func (e *NavigationEvent) UnmarshalJSON(data []byte) error {
	var raw struct {
		Category  json.RawMessage `json:"category"`
		Type      json.RawMessage `json:"type"`
		StateLost json.RawMessage `json:"state_lost"`
		Timestamp json.RawMessage `json:"timestamp"`
		AuditID   json.RawMessage `json:"audit_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var category *string
	if raw.Category != nil {
		c := text(raw.Category)
		category = &c
	}
	*e = NavigationEvent{
		Category:  category,
		Type:      text(raw.Type),
		StateLost: truthy(raw.StateLost),
		Timestamp: millis(raw.Timestamp),
		AuditID:   text(raw.AuditID),
	}
	return nil
}
