package evaluator

// Completion rules.

func checkHasItems(a AuditRecord) *deduction {
	if len(a.Items) == 0 {
		return deduct(penaltyNoItems, "No items found in audit")
	}
	return nil
}

func checkItemID(it AuditItem) *deduction {
	if it.ItemID == "" {
		return deduct(penaltyItemMissingID, "Item missing ID")
	}
	return nil
}

func checkItemCategory(it AuditItem) *deduction {
	if it.Category == "" {
		return deduct(penaltyItemNoCategory, "Item %s missing category", itemLabel(it.ItemID))
	}
	return nil
}

func checkItemHasResponse(it AuditItem) *deduction {
	if it.Response == nil {
		return deduct(penaltyItemNoResponse, "Item %s missing response", itemLabel(it.ItemID))
	}
	return nil
}

// checkItemResponseValid also fires for an absent response, so a missing
// response costs both this and checkItemHasResponse.
func checkItemResponseValid(it AuditItem) *deduction {
	if !isValidResponse(it.Response) {
		return deduct(penaltyItemBadResponse, "Item %s has invalid response: %s",
			itemLabel(it.ItemID), describe(it.Response))
	}
	return nil
}

func checkAuditMetadata(a AuditRecord) []*deduction {
	var ds []*deduction
	if a.AuditID == "" {
		ds = append(ds, deduct(penaltyAuditMissingID, "Audit missing ID"))
	}
	if a.UserID == "" {
		ds = append(ds, deduct(penaltyAuditMissingID, "Audit missing user ID"))
	}
	if a.RestaurantID == "" {
		ds = append(ds, deduct(penaltyAuditMissingID, "Audit missing restaurant ID"))
	}
	return ds
}

func itemLabel(id string) string {
	if id == "" {
		return "<missing>"
	}
	return id
}

// Sync rules.

func checkItemCount(s SyncSubmission, b BackendResult) *deduction {
	if len(s.Items) != len(b.Items) {
		return deduct(penaltyCountMismatch, "Item count mismatch: submitted %d, received %d",
			len(s.Items), len(b.Items))
	}
	return nil
}

func checkTimestampDrift(s SyncSubmission, b BackendResult) *deduction {
	if s.CompletionTime == 0 || b.ReceivedTime == 0 {
		return nil
	}
	delta := s.CompletionTime - b.ReceivedTime
	if delta < 0 {
		delta = -delta
	}
	if delta > timestampToleranceMs {
		return deduct(penaltyTimestampDrift, "Timestamp mismatch: %dms difference", delta)
	}
	return nil
}

// checkItemIntegrity compares responses index by index. Indexes past the
// end of the backend list compare against an empty snapshot.
func checkItemIntegrity(s SyncSubmission, b BackendResult) []*deduction {
	var ds []*deduction
	for i, submitted := range s.Items {
		var stored ItemSnapshot
		if i < len(b.Items) {
			stored = b.Items[i]
		}
		if !sameResponse(submitted.Response, stored.Response) {
			ds = append(ds, deduct(penaltyCorruptItem, "Data corruption in item %d: %s != %s",
				i, describe(submitted.Response), describe(stored.Response)))
		}
	}
	return ds
}

func sameResponse(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Navigation rules.

// checkEventCategories penalises events without a category.
// TODO: validate category order once a canonical order is configurable;
// ordering currently never costs points.
func checkEventCategories(events []NavigationEvent) []*deduction {
	var ds []*deduction
	for _, e := range events {
		if e.Category == nil {
			ds = append(ds, deduct(penaltyEventNoCategory, "Navigation event missing category"))
		}
	}
	return ds
}

func checkStateLoss(events []NavigationEvent) []*deduction {
	var ds []*deduction
	for _, e := range events {
		if e.StateLost {
			ds = append(ds, deduct(penaltyStateLost, "State loss at %d", e.Timestamp))
		}
	}
	return ds
}

func checkProgressUpdates(events []NavigationEvent) *deduction {
	for _, e := range events {
		if e.Type == eventTypeProgressUpdate {
			return nil
		}
	}
	return deduct(penaltyNoProgress, "No progress updates recorded")
}
