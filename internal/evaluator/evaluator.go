package evaluator

import (
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"
)

// RecordHook sees every result before it is appended to an evaluator's
// history. A non-nil error keeps the result out of the history.
type RecordHook func(rubric Rubric, result ScoreResult) error

type Option func(*Evaluator)

func WithLogger(logger *zap.Logger) Option {
	return func(e *Evaluator) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock replaces the wall clock used to stamp results and reports.
func WithClock(now func() time.Time) Option {
	return func(e *Evaluator) {
		if now != nil {
			e.now = now
		}
	}
}

func WithRecordHook(hook RecordHook) Option {
	return func(e *Evaluator) { e.hook = hook }
}

// Evaluator scores audit interactions and keeps every recorded result for
// reporting. It is not safe for concurrent use.
type Evaluator struct {
	results map[Rubric][]ScoreResult
	logger  *zap.Logger
	now     func() time.Time
	hook    RecordHook
}

// New creates an Evaluator with empty history.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		results: make(map[Rubric][]ScoreResult, len(Rubrics)),
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, r := range Rubrics {
		e.results[r] = make([]ScoreResult, 0)
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.Named("evaluator")
	return e
}

// EvaluateAuditCompletion scores a completed audit for missing or malformed
// fields.
func (e *Evaluator) EvaluateAuditCompletion(audit AuditRecord) ScoreResult {
	card := newScorecard()

	card.apply(checkHasItems(audit))
	for _, it := range audit.Items {
		card.apply(
			checkItemID(it),
			checkItemCategory(it),
			checkItemHasResponse(it),
			checkItemResponseValid(it),
		)
	}
	card.apply(checkAuditMetadata(audit)...)

	result := e.newResult(orUnknown(audit.AuditID), card)
	e.record(RubricCompletion, result)
	return result
}

// EvaluateDataSync scores how faithfully the backend stored a submission.
// A submission the backend never received scores zero and is not recorded.
func (e *Evaluator) EvaluateDataSync(submission SyncSubmission, backend BackendResult) ScoreResult {
	testID := orUnknown(submission.AuditID)

	if !backend.Received {
		e.logger.Debug("sync short-circuit: submission not received", zap.String("test_id", testID))
		return e.shortCircuit(testID, "Submission not received in backend")
	}

	card := newScorecard()
	card.apply(
		checkItemCount(submission, backend),
		checkTimestampDrift(submission, backend),
	)
	card.apply(checkItemIntegrity(submission, backend)...)

	result := e.newResult(testID, card)
	latency := backend.ReceivedTime - submission.CompletionTime
	result.SyncLatencyMs = &latency

	e.record(RubricSync, result)
	return result
}

// EvaluateNavigationFlow scores a sequence of category navigation events.
// An empty sequence scores zero and is not recorded.
func (e *Evaluator) EvaluateNavigationFlow(events []NavigationEvent) ScoreResult {
	if len(events) == 0 {
		e.logger.Debug("navigation short-circuit: no events")
		return e.shortCircuit(unknownTestID, "No navigation events recorded")
	}

	card := newScorecard()
	card.apply(checkEventCategories(events)...)
	card.apply(checkStateLoss(events)...)
	card.apply(checkProgressUpdates(events))

	result := e.newResult(orUnknown(events[0].AuditID), card)
	count := len(events)
	result.NavigationCount = &count

	e.record(RubricNavigation, result)
	return result
}

// GenerateReport summarises every recorded result. Rubrics with no results
// are left out of the summary but still appear, empty, in the details.
func (e *Evaluator) GenerateReport() Report {
	report := Report{
		Timestamp:       e.now(),
		Summary:         make(map[Rubric]RubricSummary),
		DetailedResults: make(map[Rubric][]ScoreResult, len(e.results)),
	}

	for rubric, results := range e.results {
		details := make([]ScoreResult, 0, len(results))
		for _, r := range results {
			details = append(details, cloneResult(r))
		}
		report.DetailedResults[rubric] = details
		if len(results) == 0 {
			continue
		}
		report.Summary[rubric] = summarize(results)
	}
	return report
}

// Results returns a copy of the recorded results for one rubric.
func (e *Evaluator) Results(rubric Rubric) []ScoreResult {
	out := make([]ScoreResult, 0, len(e.results[rubric]))
	for _, r := range e.results[rubric] {
		out = append(out, cloneResult(r))
	}
	return out
}

// cloneResult copies the slice and pointer fields so stored results never
// share memory with anything handed to callers.
func cloneResult(r ScoreResult) ScoreResult {
	r.Issues = slices.Clone(r.Issues)
	if r.SyncLatencyMs != nil {
		v := *r.SyncLatencyMs
		r.SyncLatencyMs = &v
	}
	if r.NavigationCount != nil {
		v := *r.NavigationCount
		r.NavigationCount = &v
	}
	return r
}

func summarize(results []ScoreResult) RubricSummary {
	total := len(results)
	var passedCount, scoreSum int
	for _, r := range results {
		if r.Passed {
			passedCount++
		}
		scoreSum += r.Score
	}
	return RubricSummary{
		TotalTests:   total,
		Passed:       passedCount,
		Failed:       total - passedCount,
		PassRate:     fmt.Sprintf("%.1f%%", float64(passedCount)/float64(total)*100),
		AverageScore: fmt.Sprintf("%.1f", float64(scoreSum)/float64(total)),
	}
}

func (e *Evaluator) newResult(testID string, card *scorecard) ScoreResult {
	score := card.final()
	return ScoreResult{
		TestID:    testID,
		Score:     score,
		Passed:    passed(score),
		Issues:    card.issues,
		Timestamp: e.now(),
	}
}

func (e *Evaluator) shortCircuit(testID, issue string) ScoreResult {
	return ScoreResult{
		TestID:    testID,
		Score:     0,
		Passed:    false,
		Issues:    []string{issue},
		Timestamp: e.now(),
	}
}

func (e *Evaluator) record(rubric Rubric, result ScoreResult) {
	if e.hook != nil {
		if err := e.hook(rubric, cloneResult(result)); err != nil {
			e.logger.Warn("result not recorded",
				zap.String("rubric", string(rubric)),
				zap.String("test_id", result.TestID),
				zap.Error(err))
			return
		}
	}
	e.results[rubric] = append(e.results[rubric], cloneResult(result))
	e.logger.Debug("result recorded",
		zap.String("rubric", string(rubric)),
		zap.String("test_id", result.TestID),
		zap.Int("score", result.Score),
		zap.Bool("passed", result.Passed))
}
