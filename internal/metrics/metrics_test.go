package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveResult(t *testing.T) {
	m := New()

	m.ObserveResult("audit_completion_accuracy", 100, true)
	m.ObserveResult("audit_completion_accuracy", 70, false)
	m.ObserveResult("audit_completion_accuracy", 90, true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Results.WithLabelValues("audit_completion_accuracy", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Results.WithLabelValues("audit_completion_accuracy", "false")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.Scores))
}

func TestObserveShortCircuit(t *testing.T) {
	m := New()

	m.ObserveShortCircuit("data_sync_reliability")
	m.ObserveShortCircuit("data_sync_reliability")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ShortCircuits.WithLabelValues("data_sync_reliability")))
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveResult("category_navigation_flow", 80, true)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `audit_eval_results_total{passed="true",rubric="category_navigation_flow"} 1`)
}
