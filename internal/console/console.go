// Package console prints the evaluation run to a terminal.
package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/godilite/audit-eval/internal/config"
	"github.com/godilite/audit-eval/internal/evaluator"
	"github.com/godilite/audit-eval/internal/service"
)

const (
	scenarioPreview = 3
	issuePreview    = 3
	ruleWidth       = 60
)

// Reporter writes human-readable run output. It never fails the run: write
// errors to the underlying writer are ignored.
type Reporter struct {
	w io.Writer
}

func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

func (r *Reporter) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.w, format, args...)
}

func (r *Reporter) Banner() {
	r.printf("Starting Audit App Evaluation Framework\n")
	r.printf("%s\n", strings.Repeat("=", ruleWidth))
}

func (r *Reporter) ConfigLoaded(path string) {
	r.printf("✓ Loaded evaluation config from %s\n", path)
}

func (r *Reporter) QueriesLoaded(path string, count int) {
	r.printf("✓ Loaded %d test queries from %s\n", count, path)
}

// LoadFailed reports a config or query file that could not be read.
func (r *Reporter) LoadFailed(err error) {
	r.printf("✗ %v\n", err)
}

func (r *Reporter) Metrics(cfg *config.EvaluationConfig) {
	r.printf("\nEvaluation Metrics:\n")
	for _, m := range cfg.EvaluationMetrics {
		r.printf("  • %s: %s\n", m.Name, m.Description)
	}
}

// Scenarios lists the first few test scenarios and how many were left out.
func (r *Reporter) Scenarios(queries []config.TestQuery) {
	r.printf("\nTest Scenarios:\n")
	shown := min(len(queries), scenarioPreview)
	for _, q := range queries[:shown] {
		r.printf("  • %s: %s\n", q.QueryID, q.Scenario)
	}
	if rest := len(queries) - shown; rest > 0 {
		r.printf("\n  ... and %d more test scenarios\n", rest)
	}
}

func (r *Reporter) Ready() {
	r.printf("\nEvaluation Framework Ready!\n")
	r.printf("\nRubrics scored per run:\n")
	for i, rubric := range evaluator.Rubrics {
		r.printf("  %d. %s\n", i+1, rubric)
	}
}

func (r *Reporter) ReportSaved(path string) {
	r.printf("\nReport saved to %s\n", path)
}

func (r *Reporter) SampleResult(result evaluator.ScoreResult) {
	r.printf("\nSample Audit Evaluation Result:\n")
	r.printf("   Score: %d/100\n", result.Score)
	r.printf("   Passed: %t\n", result.Passed)
	if len(result.Issues) > 0 {
		shown := result.Issues[:min(len(result.Issues), issuePreview)]
		r.printf("   Issues: %s\n", strings.Join(shown, ", "))
	}
}

func (r *Reporter) History(history []service.RubricHistory) {
	r.printf("\nRubric History:\n")
	for _, h := range history {
		r.printf("  • %s: %d tests over %d runs, %.1f%% passed, average %.1f\n",
			h.Rubric, h.TotalTests, h.Runs, h.PassRate, h.AverageScore)
	}
}

func (r *Reporter) NoHistory() {
	r.printf("No stored results yet.\n")
}

// RecentResults lists stored results of one rubric, newest first.
func (r *Reporter) RecentResults(rubric string, results []service.StoredResult) {
	r.printf("\nRecent %s results:\n", rubric)
	if len(results) == 0 {
		r.printf("  (none)\n")
		return
	}
	for _, res := range results {
		status := "FAIL"
		if res.Passed {
			status = "PASS"
		}
		r.printf("  %s  %-12s %3d  %s  %s\n",
			res.EvaluatedAt.Format("2006-01-02 15:04:05"), res.TestID, res.Score, status, strings.Join(res.Issues, "; "))
	}
}
