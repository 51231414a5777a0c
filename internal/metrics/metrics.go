// Package metrics registers the prometheus collectors shared by the pipeline
// and the HTTP transport.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Upstream outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeError    = "error"
	OutcomeDegraded = "degraded"
	OutcomeSkipped  = "skipped"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bizassist_http_requests_total",
			Help: "Total number of API requests by route and status code",
		},
		[]string{"route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bizassist_http_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{0.05, 0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0},
		},
		[]string{"route"},
	)

	upstreamCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bizassist_upstream_calls_total",
			Help: "Total number of calls to external services by outcome",
		},
		[]string{"service", "outcome"},
	)

	upstreamCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bizassist_upstream_call_duration_seconds",
			Help:    "Duration of calls to external services in seconds",
			Buckets: []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0},
		},
		[]string{"service"},
	)

	detectedLanguagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bizassist_detected_languages_total",
			Help: "Queries by detected language",
		},
		[]string{"language"},
	)

	activeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bizassist_active_sessions",
			Help: "Number of conversation sessions currently held in memory",
		},
	)

	sessionsEvictedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bizassist_sessions_evicted_total",
			Help: "Total number of sessions evicted for inactivity",
		},
	)
)

// RecordRequest records an API request.
func RecordRequest(route, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(route, status).Inc()
	httpRequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordUpstream records one call to an external service.
func RecordUpstream(service, outcome string, duration time.Duration) {
	upstreamCallsTotal.WithLabelValues(service, outcome).Inc()
	if outcome != OutcomeSkipped {
		upstreamCallDuration.WithLabelValues(service).Observe(duration.Seconds())
	}
}

// RecordLanguage counts a detected query language.
func RecordLanguage(code string) {
	detectedLanguagesTotal.WithLabelValues(code).Inc()
}

// SetActiveSessions updates the in-memory session gauge.
func SetActiveSessions(n int) {
	activeSessions.Set(float64(n))
}

// RecordEvictions adds n evicted sessions.
func RecordEvictions(n int) {
	if n > 0 {
		sessionsEvictedTotal.Add(float64(n))
	}
}
