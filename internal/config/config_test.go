package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		for _, key := range []string{"APP_ENV", "DB_PATH", "DB_DRIVER", "GRPC_PORT", "METRICS_PORT", "REPORT_PATH", "CACHE_TTL", "GRPC_REFLECTION_ENABLED"} {
			t.Setenv(key, "")
		}

		cfg := LoadFromEnv()

		assert.Equal(t, "development", cfg.AppEnv)
		assert.Equal(t, "sqlite3", cfg.DBDriver)
		assert.Equal(t, 50051, cfg.GRPCPort)
		assert.Equal(t, 9090, cfg.MetricsPort)
		assert.Equal(t, "evaluation_report.json", cfg.ReportPath)
		assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
		assert.False(t, cfg.GRPCReflectionEnabled)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("GRPC_PORT", "6000")
		t.Setenv("GRPC_REFLECTION_ENABLED", "true")
		t.Setenv("CACHE_TTL", "90s")
		t.Setenv("REPORT_PATH", "/tmp/out.json")

		cfg := LoadFromEnv()

		assert.Equal(t, 6000, cfg.GRPCPort)
		assert.True(t, cfg.GRPCReflectionEnabled)
		assert.Equal(t, 90*time.Second, cfg.CacheTTL)
		assert.Equal(t, "/tmp/out.json", cfg.ReportPath)
	})

	t.Run("malformed values fall back", func(t *testing.T) {
		t.Setenv("GRPC_PORT", "not-a-port")
		t.Setenv("GRPC_REFLECTION_ENABLED", "maybe")
		t.Setenv("CACHE_TTL", "-5m")

		cfg := LoadFromEnv()

		assert.Equal(t, 50051, cfg.GRPCPort)
		assert.False(t, cfg.GRPCReflectionEnabled)
		assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	})
}

func TestNewLogger(t *testing.T) {
	for _, env := range []string{"production", "development"} {
		t.Run(env, func(t *testing.T) {
			logger, err := NewLogger(&Config{AppEnv: env})
			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadEvaluationConfig(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		path := writeFile(t, "evaluation_config.json", `{
  "evaluation_metrics": [
    {"name": "audit_completion_accuracy", "description": "All items answered"},
    {"name": "data_sync_reliability", "description": "Backend matches submission"}
  ]
}`)

		cfg, err := LoadEvaluationConfig(path)

		require.NoError(t, err)
		require.Len(t, cfg.EvaluationMetrics, 2)
		assert.Equal(t, "data_sync_reliability", cfg.EvaluationMetrics[1].Name)
		assert.Equal(t, "All items answered", cfg.EvaluationMetrics[0].Description)
	})

	t.Run("tab indented json", func(t *testing.T) {
		path := writeFile(t, "evaluation_config.json", "{\n\t\"evaluation_metrics\": [\n\t\t{\"name\": \"data_sync_reliability\"}\n\t]\n}\n")

		cfg, err := LoadEvaluationConfig(path)

		require.NoError(t, err)
		require.Len(t, cfg.EvaluationMetrics, 1)
		assert.Equal(t, "data_sync_reliability", cfg.EvaluationMetrics[0].Name)
	})

	t.Run("yaml", func(t *testing.T) {
		path := writeFile(t, "evaluation_config.yaml", `
evaluation_metrics:
  - name: category_navigation_flow
    description: Smooth category navigation
`)

		cfg, err := LoadEvaluationConfig(path)

		require.NoError(t, err)
		require.Len(t, cfg.EvaluationMetrics, 1)
		assert.Equal(t, "category_navigation_flow", cfg.EvaluationMetrics[0].Name)
	})

	t.Run("missing file", func(t *testing.T) {
		cfg, err := LoadEvaluationConfig(filepath.Join(t.TempDir(), "absent.json"))

		assert.ErrorIs(t, err, ErrConfigLoad)
		assert.Nil(t, cfg)
	})

	t.Run("malformed file", func(t *testing.T) {
		path := writeFile(t, "bad.json", `{"evaluation_metrics": [`)

		_, err := LoadEvaluationConfig(path)

		assert.ErrorIs(t, err, ErrConfigLoad)
		assert.Contains(t, err.Error(), "bad.json")
	})
}

func TestLoadTestQueries(t *testing.T) {
	t.Run("json list", func(t *testing.T) {
		path := writeFile(t, "test_queries.json", `[
  {"query_id": "Q1", "scenario": "Complete a full audit"},
  {"query_id": "Q2", "scenario": "Submit offline then sync"}
]`)

		queries, err := LoadTestQueries(path)

		require.NoError(t, err)
		assert.Equal(t, []TestQuery{
			{QueryID: "Q1", Scenario: "Complete a full audit"},
			{QueryID: "Q2", Scenario: "Submit offline then sync"},
		}, queries)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadTestQueries(filepath.Join(t.TempDir(), "absent.json"))

		assert.ErrorIs(t, err, ErrQueriesLoad)
		assert.NotErrorIs(t, err, ErrConfigLoad)
	})
}
