package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Limiter is a fixed-window counter keyed by client identifier.
//
// A window opens on the first request of an identifier and lasts for the
// configured duration; up to maxRequests are admitted inside it. Because
// windows are fixed, a client can be admitted close to 2×maxRequests across a
// window boundary. Use TokenBucket where that burst is not acceptable.
//
// The check and the increment happen under one mutex, so concurrent requests
// for the same identifier can never both observe the last free slot.
type Limiter struct {
	mu    sync.Mutex
	store Store
	clock Clock
}

// LimiterOption configures a Limiter.
type LimiterOption func(*Limiter)

// WithClock overrides the time source. Intended for tests.
func WithClock(c Clock) LimiterOption {
	return func(l *Limiter) {
		if c != nil {
			l.clock = c
		}
	}
}

// NewLimiter returns a Limiter backed by store. A nil store falls back to a
// default MemoryStore.
func NewLimiter(store Store, opts ...LimiterOption) *Limiter {
	if store == nil {
		store = NewMemoryStore(MemoryStoreConfig{})
	}
	l := &Limiter{store: store, clock: SystemClock{}}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Store returns the underlying store.
func (l *Limiter) Store() Store {
	return l.store
}

// RateLimit records a request from identifier and reports whether it is admitted.
//
//   - no entry, or the entry's window has ended: a new window starts with
//     Count=1 and ResetTime=now+window; the request is allowed.
//   - Count >= maxRequests: the request is rejected with Remaining=0 and the
//     existing ResetTime; the entry is not modified.
//   - otherwise Count is incremented and the request is allowed with
//     Remaining=maxRequests-Count.
func (l *Limiter) RateLimit(ctx context.Context, identifier string, maxRequests int, window time.Duration) (Result, error) {
	if window <= 0 {
		return Result{}, fmt.Errorf("%w, got %v", ErrInvalidWindow, window)
	}

	if as, ok := l.store.(AtomicStore); ok {
		return l.rateLimitAtomic(ctx, as, identifier, maxRequests, window)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	entry, ok, err := l.store.Get(ctx, identifier)
	if err != nil {
		return Result{}, fmt.Errorf("ratelimit: get %q: %w", identifier, err)
	}

	if !ok || entry.Expired(now) {
		entry = Entry{Count: 1, ResetTime: now.Add(window)}
		if err := l.store.Set(ctx, identifier, entry); err != nil {
			return Result{}, fmt.Errorf("ratelimit: set %q: %w", identifier, err)
		}
		return allowedResult(maxRequests, entry.Count, entry.ResetTime), nil
	}

	if entry.Count >= maxRequests {
		return deniedResult(maxRequests, entry.ResetTime), nil
	}

	entry.Count++
	if err := l.store.Set(ctx, identifier, entry); err != nil {
		return Result{}, fmt.Errorf("ratelimit: set %q: %w", identifier, err)
	}
	return allowedResult(maxRequests, entry.Count, entry.ResetTime), nil
}

// rateLimitAtomic delegates the counter update to the store. The counter may
// grow past maxRequests on rejected requests; that does not change the
// decision, which only admits counts up to maxRequests.
func (l *Limiter) rateLimitAtomic(ctx context.Context, store AtomicStore, identifier string, maxRequests int, window time.Duration) (Result, error) {
	now := l.clock.Now()
	entry, err := store.Increment(ctx, identifier, window, now)
	if err != nil {
		return Result{}, fmt.Errorf("ratelimit: increment %q: %w", identifier, err)
	}
	if entry.Count > maxRequests && entry.Count > 1 {
		return deniedResult(maxRequests, entry.ResetTime), nil
	}
	return allowedResult(maxRequests, entry.Count, entry.ResetTime), nil
}
