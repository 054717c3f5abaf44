package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/yashchoube/rajeshwari-tech-sub000/internal/handler/http/respond"
)

// Scheduler runs Jobs on cron schedules in the configured timezone.
type Scheduler struct {
	cron    *cron.Cron
	logger  *slog.Logger
	metrics *WorkerMetrics
	timeout time.Duration
}

// NewScheduler creates a Scheduler. Each run gets its own context bounded by
// timeout. A panicking job is recovered and logged.
func NewScheduler(loc *time.Location, timeout time.Duration, logger *slog.Logger, metrics *WorkerMetrics) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	cl := cronLogger{logger: logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger:  logger,
		metrics: metrics,
		timeout: timeout,
	}
}

// Add schedules job on spec.
func (s *Scheduler) Add(spec string, job Job) error {
	if _, err := s.cron.AddFunc(spec, func() { s.RunNow(context.Background(), job) }); err != nil {
		return fmt.Errorf("schedule %s: %w", job.Name(), err)
	}
	s.logger.Info("job scheduled", slog.String("job", job.Name()), slog.String("schedule", spec))
	return nil
}

// RunNow executes job once, recording metrics and logging the outcome.
func (s *Scheduler) RunNow(ctx context.Context, job Job) error {
	name := job.Name()
	start := time.Now()
	s.record(func(m *WorkerMetrics) { m.RecordJobRun(name, StatusStarted) })

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	err := job.Run(ctx)
	elapsed := time.Since(start)
	s.record(func(m *WorkerMetrics) { m.RecordJobDuration(name, elapsed.Seconds()) })

	if err != nil {
		s.record(func(m *WorkerMetrics) { m.RecordJobRun(name, StatusFailure) })
		s.logger.Error("job failed",
			slog.String("job", name),
			slog.Duration("duration", elapsed),
			slog.String("error", respond.SanitizeError(err)))
		return err
	}

	s.record(func(m *WorkerMetrics) {
		m.RecordJobRun(name, StatusSuccess)
		m.RecordLastSuccess(name)
	})
	s.logger.Info("job completed", slog.String("job", name), slog.Duration("duration", elapsed))
	return nil
}

func (s *Scheduler) record(fn func(*WorkerMetrics)) {
	if s.metrics != nil {
		fn(s.metrics)
	}
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop stops scheduling and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append([]any{slog.Any("error", err)}, keysAndValues...)...)
}
