package ratelimit

import (
	"fmt"
	"math"
	"time"
)

// Result is the outcome of a single fixed-window check.
//
// Remaining is the number of further requests the identifier may make before
// ResetTime. It is always 0 for a rejected request.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetTime time.Time
}

// String returns a human-readable representation of the result.
func (r Result) String() string {
	return fmt.Sprintf("Result{Allowed: %t, Remaining: %d/%d, ResetTime: %s}",
		r.Allowed, r.Remaining, r.Limit, r.ResetTime.Format(time.RFC3339))
}

// RetryAfter returns how long the caller should wait before the window resets,
// measured from now. It never returns a negative duration.
func (r Result) RetryAfter(now time.Time) time.Duration {
	d := r.ResetTime.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// RetryAfterSeconds returns the retry delay rounded up to whole seconds.
//
// A rejected request always gets at least 1 so that a Retry-After header never
// tells the client to retry immediately into the same window.
//
// Example:
//
//	w.Header().Set("Retry-After", strconv.FormatInt(res.RetryAfterSeconds(now), 10))
func (r Result) RetryAfterSeconds(now time.Time) int64 {
	secs := int64(math.Ceil(r.RetryAfter(now).Seconds()))
	if secs < 1 && !r.Allowed {
		return 1
	}
	return secs
}

// ResetUnix returns the reset time as a Unix timestamp, used for X-RateLimit-Reset.
func (r Result) ResetUnix() int64 {
	return r.ResetTime.Unix()
}

func allowedResult(limit, count int, resetTime time.Time) Result {
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	return Result{Allowed: true, Limit: limit, Remaining: remaining, ResetTime: resetTime}
}

func deniedResult(limit int, resetTime time.Time) Result {
	return Result{Allowed: false, Limit: limit, Remaining: 0, ResetTime: resetTime}
}
