// Package http holds the ambient HTTP layer of the API: request logging,
// panic recovery, body limits, metrics, timeouts, input limits and the health
// endpoints. Route handlers live in the subpackages.
package http

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/yashchoube/rajeshwari-tech-sub000/internal/handler/http/respond"
	"github.com/yashchoube/rajeshwari-tech-sub000/internal/usecase/notify"
)

// Check states.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Checks    map[string]CheckStatus `json:"checks"`
	Version   string                 `json:"version"`
}

// CheckStatus is the result of one check.
type CheckStatus struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// RateLimitStore is the part of a rate-limit store the health check reads.
type RateLimitStore interface {
	KeyCount(ctx context.Context) (int, error)
}

// breakerReporter is implemented by stores behind a circuit breaker.
type breakerReporter interface {
	BreakerState() string
}

// ChannelHealthReporter reports notification channel state.
type ChannelHealthReporter interface {
	GetChannelHealth() []notify.ChannelHealthStatus
}

// HealthHandler reports database, rate-limit store and notifier status.
// Only the database decides the overall status: the limiter fails open and
// notifications are best effort, so their states are informational.
type HealthHandler struct {
	DB      *sql.DB
	Version string

	RateLimitBackend string // "memory" or "redis"
	RateLimitStore   RateLimitStore
	Notifier         ChannelHealthReporter
}

// ServeHTTP runs the checks with a 5 second budget. A degraded check leaves
// the overall status healthy; an unhealthy database answers 503.
// @Summary      Health check
// @Tags         health
// @Produce      json
// @Success      200 {object} HealthResponse
// @Failure      503 {object} HealthResponse
// @Router       /health [get]
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]CheckStatus)

	db := h.checkDatabase(ctx)
	checks["database"] = db

	if h.RateLimitStore != nil {
		checks["rate_limiter"] = h.checkRateLimiter(ctx)
	}
	if h.Notifier != nil {
		checks["notifier"] = h.checkNotifier()
	}

	status, code := StatusHealthy, http.StatusOK
	if db.Status == StatusUnhealthy {
		status, code = StatusUnhealthy, http.StatusServiceUnavailable
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	respond.JSON(w, code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   h.Version,
	})
}

func (h *HealthHandler) checkDatabase(ctx context.Context) CheckStatus {
	if h.DB == nil {
		return CheckStatus{Status: StatusUnhealthy, Message: "not configured"}
	}
	if err := h.DB.PingContext(ctx); err != nil {
		slog.WarnContext(ctx, "health: database ping failed", slog.String("error", respond.SanitizeError(err)))
		return CheckStatus{Status: StatusUnhealthy, Message: "database unreachable"}
	}

	stats := h.DB.Stats()
	details := map[string]any{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
	}

	if stats.MaxOpenConnections == 0 {
		return CheckStatus{
			Status:  StatusDegraded,
			Message: "connection pool max connections not configured",
			Details: details,
		}
	}

	utilization := float64(stats.InUse) / float64(stats.MaxOpenConnections) * 100
	details["utilization_percent"] = utilization
	if utilization >= 80 {
		return CheckStatus{
			Status:  StatusDegraded,
			Message: "connection pool utilization above 80%",
			Details: details,
		}
	}
	return CheckStatus{Status: StatusHealthy, Details: details}
}

func (h *HealthHandler) checkRateLimiter(ctx context.Context) CheckStatus {
	backend := h.RateLimitBackend
	if backend == "" {
		backend = "memory"
	}
	details := map[string]any{"backend": backend}

	if br, ok := h.RateLimitStore.(breakerReporter); ok {
		details["circuit_breaker"] = br.BreakerState()
	}

	n, err := h.RateLimitStore.KeyCount(ctx)
	if err != nil {
		// Limiter fails open; report but do not fail the instance.
		return CheckStatus{Status: StatusDegraded, Message: "store unavailable", Details: details}
	}
	details["active_keys"] = n
	return CheckStatus{Status: StatusHealthy, Details: details}
}

func (h *HealthHandler) checkNotifier() CheckStatus {
	channels := h.Notifier.GetChannelHealth()
	status := StatusHealthy
	list := make([]notify.ChannelHealthStatus, 0, len(channels))
	for _, ch := range channels {
		if ch.Enabled && ch.CircuitBreakerOpen {
			status = StatusDegraded
		}
		list = append(list, ch)
	}
	return CheckStatus{Status: status, Details: map[string]any{"channels": list}}
}

// ReadyHandler is the readiness probe: ready once the database answers.
type ReadyHandler struct {
	DB *sql.DB
}

func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.DB == nil {
		http.Error(w, "database not configured", http.StatusServiceUnavailable)
		return
	}
	if err := h.DB.PingContext(ctx); err != nil {
		http.Error(w, "database not ready", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// LiveHandler is the liveness probe.
type LiveHandler struct{}

func (LiveHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("alive"))
}
