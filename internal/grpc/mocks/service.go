package mocks

import (
	"context"
	"errors"

	"github.com/godilite/audit-eval/internal/evaluator"
	"github.com/godilite/audit-eval/internal/service"
)

// MockEvaluationService is a function-field implementation of the
// EvaluationService the handlers depend on.
type MockEvaluationService struct {
	EvaluateAuditCompletionFunc func(ctx context.Context, audit evaluator.AuditRecord) (evaluator.ScoreResult, error)
	EvaluateDataSyncFunc        func(ctx context.Context, submission evaluator.SyncSubmission, backend evaluator.BackendResult) (evaluator.ScoreResult, error)
	EvaluateNavigationFlowFunc  func(ctx context.Context, events []evaluator.NavigationEvent) (evaluator.ScoreResult, error)
	GenerateReportFunc          func(ctx context.Context) (evaluator.Report, error)
	GetRubricHistoryFunc        func(ctx context.Context) ([]service.RubricHistory, error)
	ListResultsFunc             func(ctx context.Context, rubric string, limit int) ([]service.StoredResult, error)
}

func (m *MockEvaluationService) EvaluateAuditCompletion(ctx context.Context, audit evaluator.AuditRecord) (evaluator.ScoreResult, error) {
	if m.EvaluateAuditCompletionFunc != nil {
		return m.EvaluateAuditCompletionFunc(ctx, audit)
	}
	return evaluator.ScoreResult{}, errors.New("EvaluateAuditCompletionFunc not implemented")
}

func (m *MockEvaluationService) EvaluateDataSync(ctx context.Context, submission evaluator.SyncSubmission, backend evaluator.BackendResult) (evaluator.ScoreResult, error) {
	if m.EvaluateDataSyncFunc != nil {
		return m.EvaluateDataSyncFunc(ctx, submission, backend)
	}
	return evaluator.ScoreResult{}, errors.New("EvaluateDataSyncFunc not implemented")
}

func (m *MockEvaluationService) EvaluateNavigationFlow(ctx context.Context, events []evaluator.NavigationEvent) (evaluator.ScoreResult, error) {
	if m.EvaluateNavigationFlowFunc != nil {
		return m.EvaluateNavigationFlowFunc(ctx, events)
	}
	return evaluator.ScoreResult{}, errors.New("EvaluateNavigationFlowFunc not implemented")
}

func (m *MockEvaluationService) GenerateReport(ctx context.Context) (evaluator.Report, error) {
	if m.GenerateReportFunc != nil {
		return m.GenerateReportFunc(ctx)
	}
	return evaluator.Report{}, errors.New("GenerateReportFunc not implemented")
}

func (m *MockEvaluationService) GetRubricHistory(ctx context.Context) ([]service.RubricHistory, error) {
	if m.GetRubricHistoryFunc != nil {
		return m.GetRubricHistoryFunc(ctx)
	}
	return nil, errors.New("GetRubricHistoryFunc not implemented")
}

func (m *MockEvaluationService) ListResults(ctx context.Context, rubric string, limit int) ([]service.StoredResult, error) {
	if m.ListResultsFunc != nil {
		return m.ListResultsFunc(ctx, rubric, limit)
	}
	return nil, errors.New("ListResultsFunc not implemented")
}
