package mocks

import (
	"context"
	"errors"

	"github.com/godilite/audit-eval/internal/repository/models"
)

// MockResultRepository is a mock implementation of the ResultRepository interface
// for testing the service layer.
type MockResultRepository struct {
	SaveResultFunc       func(ctx context.Context, r models.ScoreResultRecord) (int64, error)
	GetRubricHistoryFunc func(ctx context.Context) ([]models.RubricHistory, error)
	ListResultsFunc      func(ctx context.Context, rubric string, limit int) ([]models.ScoreResultRecord, error)
}

// SaveResult implements the ResultRepository interface
func (m *MockResultRepository) SaveResult(ctx context.Context, r models.ScoreResultRecord) (int64, error) {
	if m.SaveResultFunc != nil {
		return m.SaveResultFunc(ctx, r)
	}
	return 0, errors.New("SaveResultFunc not implemented")
}

// GetRubricHistory implements the ResultRepository interface
func (m *MockResultRepository) GetRubricHistory(ctx context.Context) ([]models.RubricHistory, error) {
	if m.GetRubricHistoryFunc != nil {
		return m.GetRubricHistoryFunc(ctx)
	}
	return nil, errors.New("GetRubricHistoryFunc not implemented")
}

// ListResults implements the ResultRepository interface
func (m *MockResultRepository) ListResults(ctx context.Context, rubric string, limit int) ([]models.ScoreResultRecord, error) {
	if m.ListResultsFunc != nil {
		return m.ListResultsFunc(ctx, rubric, limit)
	}
	return nil, errors.New("ListResultsFunc not implemented")
}

// MockMetricsRecorder counts observations per rubric.
type MockMetricsRecorder struct {
	Results       map[string]int
	ShortCircuits map[string]int
}

func NewMockMetricsRecorder() *MockMetricsRecorder {
	return &MockMetricsRecorder{
		Results:       make(map[string]int),
		ShortCircuits: make(map[string]int),
	}
}

// ObserveResult implements the MetricsRecorder interface
func (m *MockMetricsRecorder) ObserveResult(rubric string, score int, passed bool) {
	m.Results[rubric]++
}

// ObserveShortCircuit implements the MetricsRecorder interface
func (m *MockMetricsRecorder) ObserveShortCircuit(rubric string) {
	m.ShortCircuits[rubric]++
}
