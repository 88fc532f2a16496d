// Package metrics exposes Prometheus metrics for the bridge.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once     sync.Once
	instance *Metrics
)

// Metrics holds all Prometheus collectors.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	GenerationsTotal   *prometheus.CounterVec
	GenerationDuration *prometheus.HistogramVec
	ModelFallbacks     *prometheus.CounterVec
	ExtractionFailures *prometheus.CounterVec

	AgentCallsTotal *prometheus.CounterVec
	MockIssuesTotal prometheus.Counter
}

// Get returns the singleton Metrics instance.
func Get() *Metrics {
	once.Do(func() {
		instance = newMetrics()
	})
	return instance
}

func newMetrics() *Metrics {
	m := &Metrics{}

	m.HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bridge",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by endpoint, method, and status code",
		},
		[]string{"endpoint", "method", "status"},
	)

	m.HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bridge",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.01, .05, .1, .5, 1, 5, 15, 30, 60, 120},
		},
		[]string{"endpoint", "method"},
	)

	m.HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "bridge",
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "HTTP requests currently being processed",
		},
	)

	m.GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bridge",
			Subsystem: "ai",
			Name:      "generations_total",
			Help:      "Generation calls by provider, model, and outcome",
		},
		[]string{"provider", "model", "outcome"},
	)

	m.GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bridge",
			Subsystem: "ai",
			Name:      "generation_duration_seconds",
			Help:      "Provider call duration in seconds",
			Buckets:   []float64{.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"provider"},
	)

	m.ModelFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bridge",
			Subsystem: "ai",
			Name:      "model_fallbacks_total",
			Help:      "Cross-model fallback attempts by provider",
		},
		[]string{"provider"},
	)

	m.ExtractionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bridge",
			Subsystem: "extract",
			Name:      "failures_total",
			Help:      "Extraction and quality-gate failures by task",
		},
		[]string{"task", "kind"},
	)

	m.AgentCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bridge",
			Subsystem: "agent",
			Name:      "calls_total",
			Help:      "Browser-automation agent calls by method and outcome",
		},
		[]string{"method", "outcome"},
	)

	m.MockIssuesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bridge",
			Subsystem: "agent",
			Name:      "mock_issues_total",
			Help:      "Issue creations that degraded to a locally synthesized mock",
		},
	)

	return m
}

// RecordGeneration records one completed provider call.
func RecordGeneration(provider, model string, success, fallback bool, duration time.Duration) {
	m := Get()
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.GenerationsTotal.WithLabelValues(provider, model, outcome).Inc()
	m.GenerationDuration.WithLabelValues(provider).Observe(duration.Seconds())
	if fallback {
		m.ModelFallbacks.WithLabelValues(provider).Inc()
	}
}

// RecordExtractionFailure records a parse or quality-gate failure.
func RecordExtractionFailure(task, kind string) {
	Get().ExtractionFailures.WithLabelValues(task, kind).Inc()
}

// RecordAgentCall records one agent round trip.
func RecordAgentCall(method string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	Get().AgentCallsTotal.WithLabelValues(method, outcome).Inc()
}
