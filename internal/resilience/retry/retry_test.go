package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordSleeps replaces the policy's sleep with one that records waits.
func recordSleeps(p Policy) (Policy, *[]time.Duration) {
	var waits []time.Duration
	p.sleep = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}
	return p, &waits
}

func testPolicy() Policy {
	return Policy{Attempts: 3, BaseDelay: 10 * time.Millisecond, MaxDelay: 40 * time.Millisecond, Factor: 2}
}

func TestPolicyDo_FirstAttemptSucceeds(t *testing.T) {
	p, waits := recordSleeps(testPolicy())

	calls := 0
	err := p.Do(context.Background(), "op", func(context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, *waits)
}

func TestPolicyDo_RecoversAfterServerErrors(t *testing.T) {
	p, waits := recordSleeps(testPolicy())

	calls := 0
	err := p.Do(context.Background(), "op", func(context.Context) error {
		calls++
		if calls < 3 {
			return &StatusError{Code: http.StatusBadGateway}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}, *waits)
}

func TestPolicyDo_GivesUp(t *testing.T) {
	p, _ := recordSleeps(testPolicy())
	failure := &StatusError{Code: http.StatusServiceUnavailable, Body: "down"}

	calls := 0
	err := p.Do(context.Background(), "send digest", func(context.Context) error {
		calls++
		return failure
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, failure)
	assert.Contains(t, err.Error(), "send digest: gave up after 3 attempts")
}

func TestPolicyDo_PermanentErrorReturnedAsIs(t *testing.T) {
	p, waits := recordSleeps(testPolicy())
	failure := &StatusError{Code: http.StatusBadRequest}

	calls := 0
	err := p.Do(context.Background(), "op", func(context.Context) error {
		calls++
		return failure
	})

	assert.Same(t, failure, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, *waits)
}

func TestPolicyDo_RetryAfterLengthensWaitUpToMax(t *testing.T) {
	p, waits := recordSleeps(testPolicy())

	calls := 0
	_ = p.Do(context.Background(), "op", func(context.Context) error {
		calls++
		if calls == 1 {
			return &StatusError{Code: http.StatusTooManyRequests, RetryAfter: 25 * time.Millisecond}
		}
		return &StatusError{Code: http.StatusTooManyRequests, RetryAfter: time.Minute}
	})

	assert.Equal(t, []time.Duration{25 * time.Millisecond, 40 * time.Millisecond}, *waits)
}

func TestPolicyDo_CancelledWhileWaiting(t *testing.T) {
	p := Policy{Attempts: 5, BaseDelay: time.Hour, Factor: 2}
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := p.Do(ctx, "op", func(context.Context) error {
		calls++
		cancel()
		return syscall.ECONNREFUSED
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestPolicyDo_ZeroValueMakesOneAttempt(t *testing.T) {
	calls := 0
	err := Policy{}.Do(context.Background(), "op", func(context.Context) error {
		calls++
		return syscall.ECONNRESET
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestStartupPolicy_RetriesAnyErrorButCancellation(t *testing.T) {
	p, waits := recordSleeps(StartupPolicy())

	calls := 0
	err := p.Do(context.Background(), "open database", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("pq: the database system is starting up")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, *waits, 2)

	calls = 0
	err = p.Do(context.Background(), "open database", func(context.Context) error {
		calls++
		return context.DeadlineExceeded
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, calls)
}

func TestPolicyBackoff(t *testing.T) {
	p := Policy{BaseDelay: time.Second, MaxDelay: 5 * time.Second, Factor: 2}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 5 * time.Second},
		{50, 5 * time.Second},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt %d", tt.attempt), func(t *testing.T) {
			assert.Equal(t, tt.want, p.Backoff(tt.attempt))
		})
	}
}

func TestPolicyBackoff_JitterBounds(t *testing.T) {
	p := Policy{BaseDelay: time.Second, Factor: 1, Jitter: 0.5}
	for i := 0; i < 100; i++ {
		d := p.Backoff(1)
		assert.GreaterOrEqual(t, d, time.Second)
		assert.LessOrEqual(t, d, 1500*time.Millisecond)
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"deadline", fmt.Errorf("wrapped: %w", context.DeadlineExceeded), false},
		{"net timeout", timeoutErr{}, true},
		{"connection refused", fmt.Errorf("dial: %w", syscall.ECONNREFUSED), true},
		{"connection reset", syscall.ECONNRESET, true},
		{"500", &StatusError{Code: 500}, true},
		{"503 wrapped", fmt.Errorf("slack: %w", &StatusError{Code: 503}), true},
		{"429", &StatusError{Code: http.StatusTooManyRequests}, true},
		{"408", &StatusError{Code: http.StatusRequestTimeout}, true},
		{"400", &StatusError{Code: http.StatusBadRequest}, false},
		{"404", &StatusError{Code: http.StatusNotFound}, false},
		{"plain", errors.New("invalid payload"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestStatusError_Error(t *testing.T) {
	err := &StatusError{Code: 502, Body: "discord API error: bad gateway"}
	assert.Equal(t, "HTTP 502: discord API error: bad gateway", err.Error())
}
