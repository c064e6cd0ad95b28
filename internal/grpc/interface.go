package grpc

import (
	"context"
	"time"

	"github.com/godilite/audit-eval/internal/evaluator"
	"github.com/godilite/audit-eval/internal/service"
)

// Cacher defines the interface for cache operations.
type Cacher interface {
	Close() error
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type EvaluationService interface {
	EvaluateAuditCompletion(ctx context.Context, audit evaluator.AuditRecord) (evaluator.ScoreResult, error)
	EvaluateDataSync(ctx context.Context, submission evaluator.SyncSubmission, backend evaluator.BackendResult) (evaluator.ScoreResult, error)
	EvaluateNavigationFlow(ctx context.Context, events []evaluator.NavigationEvent) (evaluator.ScoreResult, error)
	GenerateReport(ctx context.Context) (evaluator.Report, error)
	GetRubricHistory(ctx context.Context) ([]service.RubricHistory, error)
	ListResults(ctx context.Context, rubric string, limit int) ([]service.StoredResult, error)
}
