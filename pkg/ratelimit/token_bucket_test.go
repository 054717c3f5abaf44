package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBucket_BurstThenRefill(t *testing.T) {
	clock := newMockClock(baseTime)
	tb := NewTokenBucket(clock)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		res, err := tb.RateLimit(ctx, "ip", 4, 4*time.Second)
		require.NoError(t, err)
		assert.True(t, res.Allowed, "call %d", i+1)
	}

	res, err := tb.RateLimit(ctx, "ip", 4, 4*time.Second)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
	assert.Equal(t, baseTime.Add(time.Second), res.ResetTime)

	clock.Advance(time.Second)
	res, err = tb.RateLimit(ctx, "ip", 4, 4*time.Second)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestTokenBucket_NoBoundaryBurst(t *testing.T) {
	clock := newMockClock(baseTime)
	tb := NewTokenBucket(clock)
	ctx := context.Background()

	// Drain the bucket at the very end of what would be a fixed window, then
	// cross the boundary: only the tokens refilled in the meantime are usable.
	clock.Advance(59 * time.Second)
	for i := 0; i < 10; i++ {
		_, _ = tb.RateLimit(ctx, "ip", 10, time.Minute)
	}
	clock.Advance(2 * time.Second)

	allowed := 0
	for i := 0; i < 10; i++ {
		res, _ := tb.RateLimit(ctx, "ip", 10, time.Minute)
		if res.Allowed {
			allowed++
		}
	}
	assert.Equal(t, 0, allowed)
}

func TestTokenBucket_Cleanup(t *testing.T) {
	clock := newMockClock(baseTime)
	tb := NewTokenBucket(clock)

	_, _ = tb.RateLimit(context.Background(), "a", 1, time.Minute)
	assert.Equal(t, 1, tb.KeyCount())

	assert.Equal(t, 0, tb.Cleanup(baseTime.Add(30*time.Second)))
	assert.Equal(t, 1, tb.Cleanup(baseTime.Add(2*time.Minute)))
	assert.Equal(t, 0, tb.KeyCount())
}

func TestTokenBucket_RejectsNonPositiveWindow(t *testing.T) {
	tb := NewTokenBucket(newMockClock(baseTime))

	for _, window := range []time.Duration{0, -time.Second} {
		_, err := tb.RateLimit(context.Background(), "ip", 5, window)
		assert.ErrorIs(t, err, ErrInvalidWindow, "window %v", window)
	}
	assert.Zero(t, tb.KeyCount())
}
