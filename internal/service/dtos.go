package service

import "time"

// RubricHistory summarises every persisted result of a rubric across runs.
type RubricHistory struct {
	Rubric       string  `json:"rubric"`
	TotalTests   int64   `json:"total_tests"`
	Passed       int64   `json:"passed"`
	Failed       int64   `json:"failed"`
	PassRate     float64 `json:"pass_rate"`
	AverageScore float64 `json:"average_score"`
	Runs         int64   `json:"runs"`
}

// StoredResult is one persisted result as returned to callers.
type StoredResult struct {
	RunID           string    `json:"run_id"`
	TestID          string    `json:"test_id"`
	Score           int       `json:"score"`
	Passed          bool      `json:"passed"`
	Issues          []string  `json:"issues"`
	SyncLatencyMs   *int64    `json:"sync_latency_ms,omitempty"`
	NavigationCount *int      `json:"navigation_count,omitempty"`
	EvaluatedAt     time.Time `json:"evaluated_at"`
}
