package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/godilite/audit-eval/internal/evaluator"
	"github.com/godilite/audit-eval/internal/repository/models"
)

const (
	dbTimeout = 1 * time.Second

	defaultListLimit = 10
	maxListLimit     = 500
)

var (
	ErrNoResults      = errors.New("no results found")
	ErrStorageFailure = errors.New("storage failure")
	ErrUnknownRubric  = errors.New("unknown rubric")
)

type noopMetrics struct{}

func (noopMetrics) ObserveResult(string, int, bool) {}
func (noopMetrics) ObserveShortCircuit(string)      {}

// EvaluationService serialises access to a session Evaluator and persists
// every result it records. A result that fails to persist is left out of the
// session report too, so both always describe the same results.
type EvaluationService struct {
	mu        sync.Mutex
	evaluator *evaluator.Evaluator
	// save persists a recorded result. It is set for the duration of one
	// evaluation, under mu.
	save      func(models.ScoreResultRecord) error
	storage   ResultRepository
	metrics   MetricsRecorder
	logger    *zap.Logger
	runID     string
}

// NewEvaluationService creates a new EvaluationService with a fresh run id.
func NewEvaluationService(storage ResultRepository, metrics MetricsRecorder, logger *zap.Logger) *EvaluationService {
	if storage == nil {
		panic("storage must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}

	s := &EvaluationService{
		storage: storage,
		metrics: metrics,
		logger:  logger.Named("evaluation"),
		runID:   uuid.NewString(),
	}
	s.evaluator = evaluator.New(
		evaluator.WithLogger(logger),
		evaluator.WithRecordHook(s.capture),
	)
	return s
}

// RunID identifies the results recorded by this service instance.
func (s *EvaluationService) RunID() string {
	return s.runID
}

func (s *EvaluationService) capture(rubric evaluator.Rubric, r evaluator.ScoreResult) error {
	return s.save(models.ScoreResultRecord{
		RunID:           s.runID,
		Rubric:          string(rubric),
		TestID:          r.TestID,
		Score:           r.Score,
		Passed:          r.Passed,
		Issues:          r.Issues,
		SyncLatencyMs:   r.SyncLatencyMs,
		NavigationCount: r.NavigationCount,
		EvaluatedAt:     r.Timestamp,
	})
}

// EvaluateAuditCompletion scores and persists a completed audit.
func (s *EvaluationService) EvaluateAuditCompletion(ctx context.Context, audit evaluator.AuditRecord) (evaluator.ScoreResult, error) {
	return s.evaluate(ctx, evaluator.RubricCompletion, func(e *evaluator.Evaluator) evaluator.ScoreResult {
		return e.EvaluateAuditCompletion(audit)
	})
}

// EvaluateDataSync scores and persists a submission/backend pair.
func (s *EvaluationService) EvaluateDataSync(ctx context.Context, submission evaluator.SyncSubmission, backend evaluator.BackendResult) (evaluator.ScoreResult, error) {
	return s.evaluate(ctx, evaluator.RubricSync, func(e *evaluator.Evaluator) evaluator.ScoreResult {
		return e.EvaluateDataSync(submission, backend)
	})
}

// EvaluateNavigationFlow scores and persists a navigation event sequence.
func (s *EvaluationService) EvaluateNavigationFlow(ctx context.Context, events []evaluator.NavigationEvent) (evaluator.ScoreResult, error) {
	return s.evaluate(ctx, evaluator.RubricNavigation, func(e *evaluator.Evaluator) evaluator.ScoreResult {
		return e.EvaluateNavigationFlow(events)
	})
}

// GenerateReport summarises the results recorded during this run.
func (s *EvaluationService) GenerateReport(ctx context.Context) (evaluator.Report, error) {
	if err := ctx.Err(); err != nil {
		return evaluator.Report{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evaluator.GenerateReport(), nil
}

// GetRubricHistory aggregates persisted results across every run.
func (s *EvaluationService) GetRubricHistory(ctx context.Context) ([]RubricHistory, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.storage.GetRubricHistory(dbCtx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if len(rows) == 0 {
		return nil, ErrNoResults
	}

	out := make([]RubricHistory, 0, len(rows))
	for _, r := range rows {
		h := RubricHistory{
			Rubric:       r.Rubric,
			TotalTests:   r.TotalTests,
			Passed:       r.Passed,
			Failed:       r.TotalTests - r.Passed,
			AverageScore: r.AverageScore,
			Runs:         r.Runs,
		}
		if r.TotalTests > 0 {
			h.PassRate = float64(r.Passed) / float64(r.TotalTests) * 100.0
		}
		out = append(out, h)
	}
	return out, nil
}

// ListResults returns up to limit persisted results of one rubric, newest
// first. A non-positive limit falls back to a default and large limits are capped.
func (s *EvaluationService) ListResults(ctx context.Context, rubric string, limit int) ([]StoredResult, error) {
	if !slices.Contains(evaluator.Rubrics, evaluator.Rubric(rubric)) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRubric, rubric)
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	limit = min(limit, maxListLimit)

	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.storage.ListResults(dbCtx, rubric, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	out := make([]StoredResult, 0, len(rows))
	for _, r := range rows {
		out = append(out, StoredResult{
			RunID:           r.RunID,
			TestID:          r.TestID,
			Score:           r.Score,
			Passed:          r.Passed,
			Issues:          r.Issues,
			SyncLatencyMs:   r.SyncLatencyMs,
			NavigationCount: r.NavigationCount,
			EvaluatedAt:     r.EvaluatedAt,
		})
	}
	return out, nil
}

func (s *EvaluationService) evaluate(ctx context.Context, rubric evaluator.Rubric, fn func(*evaluator.Evaluator) evaluator.ScoreResult) (evaluator.ScoreResult, error) {
	if err := ctx.Err(); err != nil {
		return evaluator.ScoreResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var (
		recorded bool
		saveErr  error
	)
	s.save = func(rec models.ScoreResultRecord) error {
		recorded = true
		if _, err := s.storage.SaveResult(dbCtx, rec); err != nil {
			saveErr = err
			return err
		}
		return nil
	}
	defer func() { s.save = nil }()

	result := fn(s.evaluator)

	if !recorded {
		s.metrics.ObserveShortCircuit(string(rubric))
		s.logger.Info("evaluation short-circuited",
			zap.String("rubric", string(rubric)),
			zap.String("test_id", result.TestID),
			zap.Strings("issues", result.Issues))
		return result, nil
	}
	if saveErr != nil {
		s.logger.Error("failed to persist result",
			zap.String("rubric", string(rubric)),
			zap.String("test_id", result.TestID),
			zap.Error(saveErr))
		return result, fmt.Errorf("%w: %v", ErrStorageFailure, saveErr)
	}
	s.metrics.ObserveResult(string(rubric), result.Score, result.Passed)

	s.logger.Info("evaluation recorded",
		zap.String("rubric", string(rubric)),
		zap.String("test_id", result.TestID),
		zap.Int("score", result.Score),
		zap.Bool("passed", result.Passed),
		zap.Int("issues", len(result.Issues)))

	return result, nil
}
