package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// tokenRequestsTotal counts /auth/token outcomes.
	tokenRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_token_requests_total",
			Help: "Token requests by result",
		},
		[]string{"result"}, // issued | bad_request | invalid_credentials | error
	)

	tokenRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "auth_token_request_duration_seconds",
			Help:    "Duration of token requests including password hashing",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1.0},
		},
	)

	tokenValidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_token_validations_total",
			Help: "Bearer token validations by result",
		},
		[]string{"result"}, // valid | invalid | wrong_role
	)
)

// RecordTokenRequest records one /auth/token outcome.
func RecordTokenRequest(result string, durationSeconds float64) {
	tokenRequestsTotal.WithLabelValues(result).Inc()
	tokenRequestDuration.Observe(durationSeconds)
}

// RecordTokenValidation records one bearer token check.
func RecordTokenValidation(result string) {
	tokenValidationsTotal.WithLabelValues(result).Inc()
}
