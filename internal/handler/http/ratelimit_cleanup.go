package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/yashchoube/rajeshwari-tech-sub000/pkg/ratelimit"
)

// DefaultCleanupInterval is used when RATELIMIT_CLEANUP_INTERVAL is unset.
const DefaultCleanupInterval = 5 * time.Minute

// ExpiringStore is a process-local limiter table that must be swept of
// ended windows. Redis keys expire on their own and need no sweeping.
type ExpiringStore interface {
	Cleanup(ctx context.Context, now time.Time) (int, error)
	KeyCount(ctx context.Context) (int, error)
}

type tokenBucketStore struct{ tb *ratelimit.TokenBucket }

func (s tokenBucketStore) Cleanup(_ context.Context, now time.Time) (int, error) {
	return s.tb.Cleanup(now), nil
}

func (s tokenBucketStore) KeyCount(context.Context) (int, error) {
	return s.tb.KeyCount(), nil
}

// TokenBucketStore adapts a TokenBucket to ExpiringStore.
func TokenBucketStore(tb *ratelimit.TokenBucket) ExpiringStore {
	return tokenBucketStore{tb: tb}
}

// StartRateLimitCleanup sweeps store every interval until ctx is done and
// publishes the remaining key count as the active-keys gauge of name. Run it
// in its own goroutine.
func StartRateLimitCleanup(ctx context.Context, store ExpiringStore, interval time.Duration, name string, m ratelimit.Metrics) {
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}
	if m == nil {
		m = ratelimit.NewNoOpMetrics()
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("rate limit cleanup started",
		slog.String("store", name),
		slog.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			slog.Info("rate limit cleanup stopped", slog.String("store", name))
			return
		case now := <-ticker.C:
			sweepOnce(ctx, store, now, name, m)
		}
	}
}

func sweepOnce(ctx context.Context, store ExpiringStore, now time.Time, name string, m ratelimit.Metrics) {
	removed, err := store.Cleanup(ctx, now)
	if err != nil {
		slog.Error("rate limit cleanup failed",
			slog.String("store", name),
			slog.Any("error", err))
		return
	}
	active, err := store.KeyCount(ctx)
	if err != nil {
		slog.Error("rate limit key count failed",
			slog.String("store", name),
			slog.Any("error", err))
		return
	}
	m.SetActiveKeys(name, active)
	slog.Debug("rate limit cleanup completed",
		slog.String("store", name),
		slog.Int("removed", removed),
		slog.Int("active_keys", active))
}
