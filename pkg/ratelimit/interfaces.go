// Package ratelimit provides framework-agnostic fixed-window rate limiting.
//
// The limiter is written against a small Store interface so the counter table
// can live in process memory (single instance) or in Redis (shared across
// instances) without changing the admission logic.
package ratelimit

import (
	"context"
	"errors"
	"time"
)

// ErrStoreUnavailable is returned when a store cannot serve a request, for
// example when its circuit breaker is open.
var ErrStoreUnavailable = errors.New("ratelimit: store unavailable")

// ErrInvalidWindow is returned by every Checker for a window that is not
// positive.
var ErrInvalidWindow = errors.New("ratelimit: window must be positive")

// Entry is the per-identifier counter of a fixed window.
//
// ResetTime is set to now+window when the entry is created and is not changed
// until it has passed, at which point the entry is replaced.
type Entry struct {
	Count     int       `json:"count"`
	ResetTime time.Time `json:"reset_time"`
}

// Expired reports whether the window of the entry has ended at now.
func (e Entry) Expired(now time.Time) bool {
	return !now.Before(e.ResetTime)
}

// Store persists rate limit entries keyed by client identifier.
//
// Implementations must be safe for concurrent use. Get returns ok=false when
// no entry exists for key.
type Store interface {
	Get(ctx context.Context, key string) (entry Entry, ok bool, err error)
	Set(ctx context.Context, key string, entry Entry) error
}

// AtomicStore is implemented by stores that can perform the check-and-increment
// themselves. Shared stores need this because a process-local mutex does not
// serialize requests handled by other instances.
//
// Increment starts a new window (Count=1, ResetTime=now+window) when none is
// active, otherwise increments Count, and returns the entry after the update.
type AtomicStore interface {
	Store
	Increment(ctx context.Context, key string, window time.Duration, now time.Time) (Entry, error)
}

// Checker is the admission contract shared by the fixed-window Limiter and the
// TokenBucket alternative.
type Checker interface {
	RateLimit(ctx context.Context, identifier string, maxRequests int, window time.Duration) (Result, error)
}

// Metrics records rate limiting observations. The profile label names the
// security profile (e.g. "public_form") that performed the check.
type Metrics interface {
	RecordAllowed(profile string)
	RecordDenied(profile string)
	RecordCheckDuration(profile string, duration time.Duration)
	RecordStoreError(profile string)
	SetActiveKeys(profile string, count int)
}

// Clock provides an abstraction for time operations to enable testing.
type Clock interface {
	Now() time.Time
}

// SystemClock is a Clock implementation that uses the system time.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time {
	return time.Now()
}
