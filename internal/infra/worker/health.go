package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yashchoube/rajeshwari-tech-sub000/internal/usecase/notify"
)

// ChannelReporter reports notification channel health.
type ChannelReporter interface {
	GetChannelHealth() []notify.ChannelHealthStatus
}

// HealthServer exposes the worker's probes and metrics:
//
//	GET /health           liveness, always 200
//	GET /health/ready     200 once the scheduler is running, 503 before
//	GET /health/channels  notification channel state, 503 if an enabled channel's breaker is open
//	GET /metrics          Prometheus exposition
type HealthServer struct {
	addr     string
	logger   *slog.Logger
	isReady  atomic.Bool
	channels ChannelReporter
	gatherer prometheus.Gatherer
	server   *http.Server
}

type healthResponse struct {
	Status string `json:"status"`
}

type channelsResponse struct {
	Healthy  bool                         `json:"healthy"`
	Channels []notify.ChannelHealthStatus `json:"channels"`
}

// NewHealthServer creates a not-ready server. channels may be nil; gatherer
// nil means the default gatherer.
func NewHealthServer(addr string, logger *slog.Logger, channels ChannelReporter, gatherer prometheus.Gatherer) *HealthServer {
	if logger == nil {
		logger = slog.Default()
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &HealthServer{
		addr:     addr,
		logger:   logger,
		channels: channels,
		gatherer: gatherer,
	}
}

// Handler returns the server's routes.
func (h *HealthServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.handleLiveness)
	mux.HandleFunc("GET /health/ready", h.handleReadiness)
	mux.HandleFunc("GET /health/channels", h.handleChannels)
	mux.Handle("GET /metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	return mux
}

// Start serves until ctx is cancelled, then shuts down gracefully and
// returns http.ErrServerClosed.
func (h *HealthServer) Start(ctx context.Context) error {
	h.server = &http.Server{
		Addr:              h.addr,
		Handler:           h.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		h.logger.Info("health server starting", slog.String("addr", h.addr))
		errChan <- h.server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		h.logger.Info("health server shutting down")
		if err := h.server.Shutdown(shutdownCtx); err != nil {
			h.logger.Error("health server shutdown failed", slog.Any("error", err))
			return err
		}
		return http.ErrServerClosed

	case err := <-errChan:
		if !errors.Is(err, http.ErrServerClosed) {
			h.logger.Error("health server failed", slog.Any("error", err))
		}
		return err
	}
}

func (h *HealthServer) SetReady(ready bool) {
	h.isReady.Store(ready)
	h.logger.Info("health server readiness changed", slog.Bool("ready", ready))
}

func (h *HealthServer) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (h *HealthServer) handleReadiness(w http.ResponseWriter, _ *http.Request) {
	if !h.isReady.Load() {
		h.writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "not ready"})
		return
	}
	h.writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (h *HealthServer) handleChannels(w http.ResponseWriter, _ *http.Request) {
	resp := channelsResponse{Healthy: true, Channels: []notify.ChannelHealthStatus{}}
	if h.channels != nil {
		resp.Channels = append(resp.Channels, h.channels.GetChannelHealth()...)
	}
	for _, ch := range resp.Channels {
		if ch.Enabled && ch.CircuitBreakerOpen {
			resp.Healthy = false
		}
	}

	status := http.StatusOK
	if !resp.Healthy {
		status = http.StatusServiceUnavailable
	}
	h.writeJSON(w, status, resp)
}

func (h *HealthServer) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode health response", slog.Any("error", err))
	}
}
