package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResult_RetryAfterSeconds(t *testing.T) {
	tests := []struct {
		name string
		res  Result
		now  time.Time
		want int64
	}{
		{
			name: "rounds up partial seconds",
			res:  Result{Allowed: false, ResetTime: baseTime.Add(1500 * time.Millisecond)},
			now:  baseTime,
			want: 2,
		},
		{
			name: "denied never returns zero",
			res:  Result{Allowed: false, ResetTime: baseTime},
			now:  baseTime.Add(time.Second),
			want: 1,
		},
		{
			name: "allowed past reset is zero",
			res:  Result{Allowed: true, ResetTime: baseTime},
			now:  baseTime.Add(time.Second),
			want: 0,
		},
		{
			name: "whole minutes",
			res:  Result{Allowed: false, ResetTime: baseTime.Add(15 * time.Minute)},
			now:  baseTime,
			want: 900,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.res.RetryAfterSeconds(tt.now))
		})
	}
}

func TestResult_ResetUnix(t *testing.T) {
	r := Result{ResetTime: baseTime}
	assert.Equal(t, baseTime.Unix(), r.ResetUnix())
}
