package service

import (
	"context"

	"github.com/godilite/audit-eval/internal/repository/models"
)

// ResultRepository defines the persistence operations the service needs.
type ResultRepository interface {
	SaveResult(ctx context.Context, r models.ScoreResultRecord) (int64, error)
	GetRubricHistory(ctx context.Context) ([]models.RubricHistory, error)
	ListResults(ctx context.Context, rubric string, limit int) ([]models.ScoreResultRecord, error)
}

// MetricsRecorder receives one observation per evaluation.
type MetricsRecorder interface {
	ObserveResult(rubric string, score int, passed bool)
	ObserveShortCircuit(rubric string)
}
