package models

import "time"

// ScoreResultRecord is one persisted rubric result.
type ScoreResultRecord struct {
	ID              int64
	RunID           string
	Rubric          string
	TestID          string
	Score           int
	Passed          bool
	Issues          []string
	SyncLatencyMs   *int64
	NavigationCount *int
	EvaluatedAt     time.Time
}

// RubricHistory aggregates every persisted result of one rubric.
type RubricHistory struct {
	Rubric       string
	TotalTests   int64
	Passed       int64
	AverageScore float64
	Runs         int64
}
