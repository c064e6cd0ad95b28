package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "audit_eval"

// Metrics holds the Prometheus collectors for scored results.
type Metrics struct {
	registry      *prometheus.Registry
	Results       *prometheus.CounterVec
	Scores        *prometheus.HistogramVec
	ShortCircuits *prometheus.CounterVec
}

// New creates the collectors and registers them on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Results: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "results_total",
				Help:      "Recorded rubric results by outcome",
			},
			[]string{"rubric", "passed"},
		),
		Scores: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "score",
				Help:      "Distribution of recorded rubric scores",
				Buckets:   []float64{0, 20, 40, 60, 70, 80, 90, 100},
			},
			[]string{"rubric"},
		),
		ShortCircuits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "short_circuits_total",
				Help:      "Evaluations that scored zero without being recorded",
			},
			[]string{"rubric"},
		),
	}
	m.registry.MustRegister(m.Results, m.Scores, m.ShortCircuits)
	return m
}

func (m *Metrics) ObserveResult(rubric string, score int, passed bool) {
	m.Results.WithLabelValues(rubric, strconv.FormatBool(passed)).Inc()
	m.Scores.WithLabelValues(rubric).Observe(float64(score))
}

func (m *Metrics) ObserveShortCircuit(rubric string) {
	m.ShortCircuits.WithLabelValues(rubric).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
