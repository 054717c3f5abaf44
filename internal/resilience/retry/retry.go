// Package retry re-runs transient failures with capped exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net"
	"net/http"
	"syscall"
	"time"
)

// Policy describes how an operation is retried. The zero value makes a
// single attempt.
type Policy struct {
	// Attempts is the total number of calls, including the first one.
	Attempts int
	// BaseDelay is the wait before the second attempt.
	BaseDelay time.Duration
	// MaxDelay caps every wait, including one requested through Retry-After.
	MaxDelay time.Duration
	// Factor multiplies the wait after each failed attempt.
	Factor float64
	// Jitter adds up to this fraction of the wait at random (0..1).
	Jitter float64
	// Retryable decides whether an error is worth another attempt.
	// Nil means IsTransient.
	Retryable func(error) bool

	sleep func(context.Context, time.Duration) error
}

// WebhookPolicy is used for Slack and Discord deliveries. It stays short
// because a lead notification has a 30s budget.
func WebhookPolicy() Policy {
	return Policy{
		Attempts:  3,
		BaseDelay: 2 * time.Second,
		MaxDelay:  10 * time.Second,
		Factor:    2,
		Jitter:    0.1,
	}
}

// StartupPolicy is used while a binary waits for the database. Every error
// except cancellation is retried since the server may not be listening yet.
func StartupPolicy() Policy {
	return Policy{
		Attempts:  5,
		BaseDelay: 500 * time.Millisecond,
		MaxDelay:  5 * time.Second,
		Factor:    2,
		Jitter:    0.1,
		Retryable: func(err error) bool {
			return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
		},
	}
}

// Do calls fn until it succeeds, returns a non-retryable error, or the
// attempts run out. op names the operation in logs.
func (p Policy) Do(ctx context.Context, op string, fn func(context.Context) error) error {
	attempts := max(p.Attempts, 1)
	retryable := p.Retryable
	if retryable == nil {
		retryable = IsTransient
	}
	sleep := p.sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(ctx); err == nil {
			if attempt > 1 {
				slog.InfoContext(ctx, "operation recovered",
					slog.String("op", op), slog.Int("attempt", attempt))
			}
			return nil
		}
		if !retryable(err) {
			return err
		}
		if attempt == attempts {
			break
		}

		wait := p.Backoff(attempt)
		var se *StatusError
		if errors.As(err, &se) && se.RetryAfter > wait {
			wait = se.RetryAfter
			if p.MaxDelay > 0 {
				wait = min(wait, p.MaxDelay)
			}
		}
		slog.WarnContext(ctx, "operation failed, retrying",
			slog.String("op", op),
			slog.Int("attempt", attempt),
			slog.Int("attempts", attempts),
			slog.Duration("wait", wait),
			slog.Any("error", err))

		if serr := sleep(ctx, wait); serr != nil {
			return fmt.Errorf("%s: retry aborted: %w", op, serr)
		}
	}
	return fmt.Errorf("%s: gave up after %d attempts: %w", op, attempts, err)
}

// Backoff returns the wait that follows the given failed attempt (1-based).
func (p Policy) Backoff(attempt int) time.Duration {
	factor := p.Factor
	if factor < 1 {
		factor = 1
	}
	wait := float64(p.BaseDelay)
	for i := 1; i < attempt; i++ {
		wait *= factor
		if p.MaxDelay > 0 && wait >= float64(p.MaxDelay) {
			break
		}
	}
	d := time.Duration(wait)
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	if j := min(p.Jitter, 1); j > 0 {
		// #nosec G404 -- jitter does not need a cryptographic source.
		d += time.Duration(rand.Float64() * float64(d) * j)
	}
	return d
}

// IsTransient reports whether err looks temporary: network timeouts,
// refused or reset connections, and 408, 429 or 5xx responses.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ETIMEDOUT) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return true
	}

	var se *StatusError
	if errors.As(err, &se) {
		return se.Code >= 500 ||
			se.Code == http.StatusTooManyRequests ||
			se.Code == http.StatusRequestTimeout
	}
	return false
}

// StatusError is a non-2xx HTTP response. RetryAfter, when the server sent
// one, lengthens the next wait.
type StatusError struct {
	Code       int
	Body       string
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Body)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
