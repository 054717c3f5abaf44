package ratelimit

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics implements Metrics using Prometheus collectors.
//
// All collectors are registered on a custom registry so tests can create
// isolated instances. Use Registry with a prometheus.Gatherers to expose them
// next to the process-wide metrics.
type PrometheusMetrics struct {
	registry *prometheus.Registry

	// requestsTotal counts admission decisions.
	// Labels: profile, status ("allowed" or "denied").
	requestsTotal *prometheus.CounterVec

	// checkDuration observes how long a check took, store round-trip included.
	checkDuration *prometheus.HistogramVec

	// storeErrors counts checks that failed because the store errored.
	storeErrors *prometheus.CounterVec

	// activeKeys is the number of identifiers tracked by the store.
	activeKeys *prometheus.GaugeVec
}

// NewPrometheusMetrics creates a PrometheusMetrics with its own registry.
func NewPrometheusMetrics() *PrometheusMetrics {
	m := &PrometheusMetrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_limit_requests_total",
				Help: "Total rate limit decisions by security profile and status",
			},
			[]string{"profile", "status"},
		),
		checkDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rate_limit_check_duration_seconds",
				Help:    "Duration of rate limit checks",
				Buckets: []float64{0.0005, 0.001, 0.002, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
			},
			[]string{"profile"},
		),
		storeErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_limit_store_errors_total",
				Help: "Rate limit checks that failed in the backing store",
			},
			[]string{"profile"},
		),
		activeKeys: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "rate_limit_active_keys",
				Help: "Current number of identifiers tracked by the rate limit store",
			},
			[]string{"profile"},
		),
	}

	m.registry.MustRegister(m.requestsTotal, m.checkDuration, m.storeErrors, m.activeKeys)
	return m
}

// Registry returns the registry holding the rate limit collectors.
func (m *PrometheusMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordAllowed records an admitted request.
func (m *PrometheusMetrics) RecordAllowed(profile string) {
	m.requestsTotal.WithLabelValues(profile, "allowed").Inc()
}

// RecordDenied records a rejected request.
func (m *PrometheusMetrics) RecordDenied(profile string) {
	m.requestsTotal.WithLabelValues(profile, "denied").Inc()
}

// RecordCheckDuration records the duration of one check.
func (m *PrometheusMetrics) RecordCheckDuration(profile string, duration time.Duration) {
	m.checkDuration.WithLabelValues(profile).Observe(duration.Seconds())
}

// RecordStoreError records a failed store round-trip.
func (m *PrometheusMetrics) RecordStoreError(profile string) {
	m.storeErrors.WithLabelValues(profile).Inc()
}

// SetActiveKeys sets the number of identifiers currently tracked.
func (m *PrometheusMetrics) SetActiveKeys(profile string, count int) {
	m.activeKeys.WithLabelValues(profile).Set(float64(count))
}
