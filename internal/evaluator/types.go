package evaluator

import "time"

// Rubric names one of the scoring dimensions.
type Rubric string

const (
	RubricCompletion Rubric = "audit_completion_accuracy"
	RubricSync       Rubric = "data_sync_reliability"
	RubricNavigation Rubric = "category_navigation_flow"
)

// Rubrics lists every rubric in report order.
var Rubrics = []Rubric{RubricCompletion, RubricSync, RubricNavigation}

type AuditRecord struct {
	AuditID      string      `json:"audit_id,omitempty"`
	UserID       string      `json:"user_id,omitempty"`
	RestaurantID string      `json:"restaurant_id,omitempty"`
	Items        []AuditItem `json:"items,omitempty"`
}

// AuditItem is one answered checklist entry. A nil Response means the
// response key was absent from the recorded payload.
type AuditItem struct {
	ItemID   string  `json:"item_id,omitempty"`
	Category string  `json:"category,omitempty"`
	Response *string `json:"response,omitempty"`
}

type ItemSnapshot struct {
	ItemID   string  `json:"item_id,omitempty"`
	Response *string `json:"response,omitempty"`
}

// SyncSubmission is what the app sent. CompletionTime is in milliseconds,
// zero when not recorded.
type SyncSubmission struct {
	AuditID        string         `json:"audit_id,omitempty"`
	Items          []ItemSnapshot `json:"items,omitempty"`
	CompletionTime int64          `json:"completion_time,omitempty"`
}

// BackendResult is what the backend stored for a submission.
type BackendResult struct {
	Received     bool           `json:"received"`
	Items        []ItemSnapshot `json:"items,omitempty"`
	ReceivedTime int64          `json:"received_time,omitempty"`
}

// NavigationEvent is a single recorded category navigation step. A nil
// Category means the category key was absent.
type NavigationEvent struct {
	Category  *string `json:"category,omitempty"`
	Type      string  `json:"type,omitempty"`
	StateLost bool    `json:"state_lost,omitempty"`
	Timestamp int64   `json:"timestamp,omitempty"`
	AuditID   string  `json:"audit_id,omitempty"`
}

type ScoreResult struct {
	TestID          string    `json:"test_id"`
	Score           int       `json:"score"`
	Passed          bool      `json:"passed"`
	Issues          []string  `json:"issues"`
	SyncLatencyMs   *int64    `json:"sync_latency_ms,omitempty"`
	NavigationCount *int      `json:"navigation_count,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

type RubricSummary struct {
	TotalTests   int    `json:"total_tests"`
	Passed       int    `json:"passed"`
	Failed       int    `json:"failed"`
	PassRate     string `json:"pass_rate"`
	AverageScore string `json:"average_score"`
}

type Report struct {
	Timestamp       time.Time                `json:"timestamp"`
	Summary         map[Rubric]RubricSummary `json:"summary"`
	DetailedResults map[Rubric][]ScoreResult `json:"detailed_results"`
}

// String returns a pointer to s, for building records with optional fields.
func String(s string) *string {
	return &s
}
