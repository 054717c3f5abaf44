package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yashchoube/rajeshwari-tech-sub000/internal/domain/entity"
	"github.com/yashchoube/rajeshwari-tech-sub000/internal/handler/http/requestid"
	"github.com/yashchoube/rajeshwari-tech-sub000/internal/infra/notifier"
)

const (
	workerPoolTimeout   = 5 * time.Second  // wait for a free worker slot
	notificationTimeout = 30 * time.Second // budget for one channel delivery
)

// Service dispatches lead notifications to every enabled channel.
type Service interface {
	// NotifyNewLead returns immediately; deliveries run in background
	// goroutines and failures are logged, never returned.
	NotifyNewLead(ctx context.Context, lead *entity.Enrollment) error

	// SendDigest delivers digest to every enabled channel synchronously and
	// returns the joined channel errors.
	SendDigest(ctx context.Context, digest notifier.Digest) error

	// GetChannelHealth reports the state of every configured channel.
	GetChannelHealth() []ChannelHealthStatus

	// Shutdown stops accepting work and waits for in-flight deliveries until
	// ctx is done.
	Shutdown(ctx context.Context) error
}

// ChannelHealthStatus is the health of one notification channel.
type ChannelHealthStatus struct {
	Name               string `json:"name"`
	Enabled            bool   `json:"enabled"`
	CircuitBreakerOpen bool   `json:"circuitBreakerOpen"`
}

type service struct {
	channels       []Channel
	workerPool     chan struct{}
	wg             sync.WaitGroup
	shutdownCtx    context.Context
	shutdownCancel context.CancelFunc
}

// NewService creates a Service over channels running at most maxConcurrent
// deliveries at a time.
func NewService(channels []Channel, maxConcurrent int) Service {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())

	enabled := 0
	for _, ch := range channels {
		if ch.IsEnabled() {
			enabled++
		}
	}
	channelsEnabled.Set(float64(enabled))

	return &service{
		channels:       channels,
		workerPool:     make(chan struct{}, maxConcurrent),
		shutdownCtx:    shutdownCtx,
		shutdownCancel: shutdownCancel,
	}
}

func (s *service) NotifyNewLead(ctx context.Context, lead *entity.Enrollment) error {
	if lead == nil {
		slog.Warn("Invalid notification input", slog.Bool("nil_lead", true))
		return nil
	}
	if s.shutdownCtx.Err() != nil {
		slog.Warn("Notification skipped: service shutting down", slog.Int64("lead_id", lead.ID))
		return nil
	}

	requestID := requestid.FromContext(ctx)
	if requestID == "" {
		requestID = uuid.New().String()
	}

	snapshot := *lead
	dispatched := 0
	for _, ch := range s.channels {
		if !ch.IsEnabled() {
			continue
		}
		dispatched++
		s.wg.Add(1)
		go s.notifyChannel(requestID, ch, &snapshot)
	}

	if dispatched == 0 {
		slog.Debug("No notification channels enabled",
			slog.String("request_id", requestID),
			slog.Int64("lead_id", lead.ID))
		return nil
	}

	slog.Info("Dispatching lead notification",
		slog.String("request_id", requestID),
		slog.Int64("lead_id", lead.ID),
		slog.String("kind", string(lead.Kind)),
		slog.Int("enabled_channels", dispatched))
	return nil
}

func (s *service) notifyChannel(requestID string, ch Channel, lead *entity.Enrollment) {
	defer s.wg.Done()

	activeNotifications.Inc()
	defer activeNotifications.Dec()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("Panic in notification channel",
				slog.String("request_id", requestID),
				slog.String("channel", ch.Name()),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
		}
	}()

	select {
	case s.workerPool <- struct{}{}:
		defer func() { <-s.workerPool }()
	case <-time.After(workerPoolTimeout):
		slog.Warn("Notification dropped: worker pool full",
			slog.String("request_id", requestID),
			slog.String("channel", ch.Name()))
		recordDropped(ch.Name(), "pool_full")
		return
	case <-s.shutdownCtx.Done():
		recordDropped(ch.Name(), "shutdown")
		return
	}

	if ch.CircuitOpen() {
		slog.Warn("Channel temporarily disabled due to circuit breaker",
			slog.String("request_id", requestID),
			slog.String("channel", ch.Name()))
		recordDropped(ch.Name(), "circuit_open")
		return
	}

	ctx, cancel := context.WithTimeout(s.shutdownCtx, notificationTimeout)
	defer cancel()
	ctx = notifier.WithRequestID(ctx, requestID)

	recordDispatch(ch.Name(), "lead")
	start := time.Now()
	err := ch.NotifyLead(ctx, lead)
	duration := time.Since(start)
	recordResult(ch.Name(), err, duration)

	if err != nil {
		slog.Warn("Channel notification failed",
			slog.String("request_id", requestID),
			slog.String("channel", ch.Name()),
			slog.Int64("lead_id", lead.ID),
			slog.Duration("send_duration", duration),
			slog.Any("error", err))
		return
	}
	slog.Info("Channel notification sent successfully",
		slog.String("request_id", requestID),
		slog.String("channel", ch.Name()),
		slog.Int64("lead_id", lead.ID),
		slog.Duration("send_duration", duration))
}

func (s *service) SendDigest(ctx context.Context, digest notifier.Digest) error {
	var errs []error
	for _, ch := range s.channels {
		if !ch.IsEnabled() {
			continue
		}
		recordDispatch(ch.Name(), "digest")
		start := time.Now()
		err := ch.NotifyDigest(ctx, digest)
		recordResult(ch.Name(), err, time.Since(start))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", ch.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (s *service) GetChannelHealth() []ChannelHealthStatus {
	statuses := make([]ChannelHealthStatus, 0, len(s.channels))
	for _, ch := range s.channels {
		statuses = append(statuses, ChannelHealthStatus{
			Name:               ch.Name(),
			Enabled:            ch.IsEnabled(),
			CircuitBreakerOpen: ch.CircuitOpen(),
		})
	}
	return statuses
}

func (s *service) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down notification service")
	s.shutdownCancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("Notification service shutdown complete")
		return nil
	case <-ctx.Done():
		slog.Warn("Notification service shutdown timeout")
		return ctx.Err()
	}
}
