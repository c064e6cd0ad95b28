package evaluator

import (
	"fmt"
	"slices"
)

const (
	maxScore      = 100
	passThreshold = 80

	penaltyNoItems         = 50
	penaltyItemMissingID   = 10
	penaltyItemNoCategory  = 10
	penaltyItemNoResponse  = 15
	penaltyItemBadResponse = 15
	penaltyAuditMissingID  = 10

	penaltyCountMismatch  = 30
	penaltyTimestampDrift = 20
	penaltyCorruptItem    = 15
	timestampToleranceMs  = 5000

	penaltyEventNoCategory = 10
	penaltyStateLost       = 25
	penaltyNoProgress      = 20

	eventTypeProgressUpdate = "progress_update"
	unknownTestID           = "unknown"
)

var validResponses = []string{"yes", "no", "na", "partial"}

// deduction is a single triggered rule: points off and the issue it reports.
type deduction struct {
	points int
	issue  string
}

// scorecard accumulates deductions against a starting score of 100.
type scorecard struct {
	score  int
	issues []string
}

func newScorecard() *scorecard {
	return &scorecard{score: maxScore, issues: make([]string, 0)}
}

// apply records every non-nil deduction in argument order.
func (c *scorecard) apply(ds ...*deduction) {
	for _, d := range ds {
		if d == nil {
			continue
		}
		c.score -= d.points
		c.issues = append(c.issues, d.issue)
	}
}

func (c *scorecard) final() int {
	return clamp(c.score)
}

func clamp(score int) int {
	return max(0, min(maxScore, score))
}

func passed(score int) bool {
	return score >= passThreshold
}

func deduct(points int, format string, args ...any) *deduction {
	return &deduction{points: points, issue: fmt.Sprintf(format, args...)}
}

func isValidResponse(r *string) bool {
	return r != nil && slices.Contains(validResponses, *r)
}

// describe renders an optional field the way it appears in issue text.
func describe(s *string) string {
	if s == nil {
		return "<missing>"
	}
	return *s
}

func orUnknown(id string) string {
	if id == "" {
		return unknownTestID
	}
	return id
}
