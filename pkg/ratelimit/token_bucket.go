package ratelimit

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// TokenBucket is a per-identifier token bucket limiter built on
// golang.org/x/time/rate. It refills maxRequests tokens evenly over window and
// allows bursts of at most maxRequests, so it does not have the boundary burst
// of the fixed-window Limiter.
//
// Buckets idle for longer than their window are dropped by Cleanup.
type TokenBucket struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	clock   Clock
}

type bucket struct {
	limiter  *rate.Limiter
	max      int
	window   time.Duration
	lastSeen time.Time
}

// NewTokenBucket creates an empty TokenBucket.
func NewTokenBucket(clock Clock) *TokenBucket {
	if clock == nil {
		clock = SystemClock{}
	}
	return &TokenBucket{buckets: make(map[string]*bucket), clock: clock}
}

// RateLimit takes one token from the identifier's bucket. ResetTime is the
// moment the next token becomes available.
func (tb *TokenBucket) RateLimit(_ context.Context, identifier string, maxRequests int, window time.Duration) (Result, error) {
	if window <= 0 {
		return Result{}, fmt.Errorf("%w, got %v", ErrInvalidWindow, window)
	}
	if maxRequests < 1 {
		maxRequests = 1
	}
	now := tb.clock.Now()

	tb.mu.Lock()
	defer tb.mu.Unlock()

	b, ok := tb.buckets[identifier]
	if !ok || b.max != maxRequests || b.window != window {
		every := window / time.Duration(maxRequests)
		b = &bucket{
			limiter: rate.NewLimiter(rate.Every(every), maxRequests),
			max:     maxRequests,
			window:  window,
		}
		tb.buckets[identifier] = b
	}
	b.lastSeen = now

	allowed := b.limiter.AllowN(now, 1)
	tokens := b.limiter.TokensAt(now)

	var next time.Time
	if tokens >= 1 {
		next = now
	} else {
		perToken := float64(window) / float64(maxRequests)
		next = now.Add(time.Duration(math.Ceil((1 - tokens) * perToken)))
	}

	if !allowed {
		return deniedResult(maxRequests, next), nil
	}
	return Result{
		Allowed:   true,
		Limit:     maxRequests,
		Remaining: int(math.Floor(tokens)),
		ResetTime: next,
	}, nil
}

// Cleanup drops buckets that have not been used for a full window and returns
// how many were removed.
func (tb *TokenBucket) Cleanup(now time.Time) int {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	removed := 0
	for id, b := range tb.buckets {
		if now.Sub(b.lastSeen) > b.window {
			delete(tb.buckets, id)
			removed++
		}
	}
	return removed
}

// KeyCount returns the number of tracked identifiers.
func (tb *TokenBucket) KeyCount() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return len(tb.buckets)
}
