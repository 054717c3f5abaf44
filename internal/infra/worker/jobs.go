package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/yashchoube/rajeshwari-tech-sub000/internal/domain/entity"
	"github.com/yashchoube/rajeshwari-tech-sub000/internal/infra/notifier"
)

// Job is one scheduled unit of work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// LeadSummarizer counts leads created since a point in time.
type LeadSummarizer interface {
	LeadSummary(ctx context.Context, since time.Time) (entity.LeadSummary, error)
}

// DigestSender delivers a digest to the notification channels.
type DigestSender interface {
	SendDigest(ctx context.Context, digest notifier.Digest) error
}

// DigestJob posts the lead summary for the trailing Window.
type DigestJob struct {
	Leads   LeadSummarizer
	Sender  DigestSender
	Window  time.Duration
	Metrics *WorkerMetrics
	Now     func() time.Time // defaults to time.Now
}

func (j *DigestJob) Name() string { return JobLeadDigest }

func (j *DigestJob) Run(ctx context.Context) error {
	now := time.Now
	if j.Now != nil {
		now = j.Now
	}
	until := now()
	since := until.Add(-j.Window)

	summary, err := j.Leads.LeadSummary(ctx, since)
	if err != nil {
		return fmt.Errorf("summarize leads: %w", err)
	}

	digest := notifier.Digest{Since: since, Until: until, Summary: summary}
	if err := j.Sender.SendDigest(ctx, digest); err != nil {
		return fmt.Errorf("send digest: %w", err)
	}

	if j.Metrics != nil {
		j.Metrics.RecordDigestLeads(summary.Total)
	}
	slog.InfoContext(ctx, "lead digest sent",
		slog.Time("since", since),
		slog.Int("total", summary.Total),
		slog.Int("courses", summary.Courses),
		slog.Int("demos", summary.Demos))
	return nil
}

// StoreReporter is the shared rate-limit store as seen by housekeeping.
type StoreReporter interface {
	KeyCount(ctx context.Context) (int, error)
	BreakerState() string
}

// HousekeepingJob reports how many rate-limit keys live in the shared store.
// Entries expire through their TTL; the job only observes.
type HousekeepingJob struct {
	Store   StoreReporter
	Metrics *WorkerMetrics
}

func (j *HousekeepingJob) Name() string { return JobHousekeeping }

func (j *HousekeepingJob) Run(ctx context.Context) error {
	n, err := j.Store.KeyCount(ctx)
	if err != nil {
		return fmt.Errorf("count rate-limit keys (breaker %s): %w", j.Store.BreakerState(), err)
	}
	if j.Metrics != nil {
		j.Metrics.SetActiveKeys(n)
	}
	slog.DebugContext(ctx, "rate-limit store inspected",
		slog.Int("active_keys", n),
		slog.String("breaker", j.Store.BreakerState()))
	return nil
}
