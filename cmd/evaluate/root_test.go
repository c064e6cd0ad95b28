package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/godilite/audit-eval/internal/config"
)

const evaluationConfigJSON = `{
  "evaluation_metrics": [
    {"name": "audit_completion_accuracy", "description": "Every item answered with a valid response"},
    {"name": "data_sync_reliability", "description": "Backend state matches the submission"},
    {"name": "category_navigation_flow", "description": "Navigation keeps state and reports progress"}
  ]
}`

const testQueriesJSON = `[
  {"query_id": "Q001", "scenario": "Complete audit online"},
  {"query_id": "Q002", "scenario": "Complete audit offline then sync"},
  {"query_id": "Q003", "scenario": "Switch categories mid-audit"},
  {"query_id": "Q004", "scenario": "Background the app during sync"},
  {"query_id": "Q005", "scenario": "Resume after crash"}
]`

type fixture struct {
	cfg     *config.Config
	dir     string
	config  string
	queries string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()

	f := &fixture{
		dir:     dir,
		config:  filepath.Join(dir, "evaluation_config.json"),
		queries: filepath.Join(dir, "test_queries.json"),
		cfg: &config.Config{
			DBDriver:   "sqlite3",
			DBPath:     filepath.Join(dir, "data", "evaluations.db"),
			ReportPath: filepath.Join(dir, "evaluation_report.json"),
		},
	}
	require.NoError(t, os.WriteFile(f.config, []byte(evaluationConfigJSON), 0o644))
	require.NoError(t, os.WriteFile(f.queries, []byte(testQueriesJSON), 0o644))
	return f
}

func (f *fixture) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(f.cfg, zap.NewNop())
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestEvaluateCommand(t *testing.T) {
	t.Run("full run writes report and scores the sample audit", func(t *testing.T) {
		f := newFixture(t)

		out, err := f.run(t, "--config", f.config, "--queries", f.queries)
		require.NoError(t, err)

		assert.Contains(t, out, "Loaded evaluation config from "+f.config)
		assert.Contains(t, out, "Loaded 5 test queries from "+f.queries)
		assert.Contains(t, out, "  • data_sync_reliability: Backend state matches the submission")
		assert.Contains(t, out, "  • Q003: Switch categories mid-audit")
		assert.NotContains(t, out, "Q004")
		assert.Contains(t, out, "... and 2 more test scenarios")
		assert.Contains(t, out, "Report saved to "+f.cfg.ReportPath)
		assert.Contains(t, out, "   Score: 100/100")
		assert.Contains(t, out, "   Passed: true")

		raw, err := os.ReadFile(f.cfg.ReportPath)
		require.NoError(t, err)
		var rep map[string]any
		require.NoError(t, json.Unmarshal(raw, &rep))
		assert.Empty(t, rep["summary"], "the report is written before the sample audit is scored")
	})

	t.Run("missing config aborts before any report", func(t *testing.T) {
		f := newFixture(t)

		out, err := f.run(t, "--config", filepath.Join(f.dir, "nope.json"), "--queries", f.queries)

		assert.ErrorIs(t, err, errAborted)
		assert.Contains(t, out, "✗ failed to load config")
		assert.NotContains(t, out, "test queries from")
		assert.NoFileExists(t, f.cfg.ReportPath)
	})

	t.Run("malformed queries abort before any report", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, os.WriteFile(f.queries, []byte(`{"not": "a list"`), 0o644))

		out, err := f.run(t, "--config", f.config, "--queries", f.queries)

		assert.ErrorIs(t, err, errAborted)
		assert.Contains(t, out, "✗ failed to load test queries")
		assert.NoFileExists(t, f.cfg.ReportPath)
	})

	t.Run("unavailable result store still writes the report", func(t *testing.T) {
		f := newFixture(t)
		f.cfg.DBDriver = "no-such-driver"

		out, err := f.run(t, "--config", f.config, "--queries", f.queries)
		require.NoError(t, err)

		assert.Contains(t, out, "Report saved to "+f.cfg.ReportPath)
		assert.Contains(t, out, "   Score: 100/100")
		assert.FileExists(t, f.cfg.ReportPath)
	})

	t.Run("report flag overrides configured path", func(t *testing.T) {
		f := newFixture(t)
		custom := filepath.Join(f.dir, "custom.json")

		_, err := f.run(t, "--config", f.config, "--queries", f.queries, "--report", custom)
		require.NoError(t, err)

		assert.FileExists(t, custom)
		assert.NoFileExists(t, f.cfg.ReportPath)
	})
}

func TestHistoryCommand(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No stored results yet.")

	for i := 0; i < 2; i++ {
		_, err := f.run(t, "--config", f.config, "--queries", f.queries)
		require.NoError(t, err)
	}

	out, err = f.run(t, "history", "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "audit_completion_accuracy: 2 tests over 2 runs, 100.0% passed, average 100.0")
	assert.Contains(t, out, "Recent audit_completion_accuracy results:")
	assert.Equal(t, 1, bytes.Count([]byte(out), []byte("AUD_001")))

	_, err = f.run(t, "history", "--rubric", "checkout_speed")
	assert.Error(t, err)
}
