package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
)

// incrementScript opens a window on the first hit and reports the remaining
// TTL so both steps happen atomically on the Redis side.
var incrementScript = redis.NewScript(`
local c = redis.call('INCR', KEYS[1])
if c == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
return {c, ttl}
`)

// RedisStore keeps counters in Redis so every API instance enforces the same
// window. Each key holds the integer count and expires at the window's reset
// time.
//
// All calls go through a circuit breaker; while it is open the store returns
// ErrStoreUnavailable without contacting Redis.
type RedisStore struct {
	client  redis.UniversalClient
	prefix  string
	clock   Clock
	breaker *gobreaker.CircuitBreaker
}

// RedisStoreConfig configures a RedisStore.
type RedisStoreConfig struct {
	// Prefix is prepended to every key. Default: "ratelimit:"
	Prefix string

	// FailureThreshold is the number of consecutive failures that opens the
	// breaker. Default: 5
	FailureThreshold uint32

	// OpenTimeout is how long the breaker stays open before probing. Default: 30s
	OpenTimeout time.Duration

	Clock Clock
}

// NewRedisStore wraps an existing go-redis client.
func NewRedisStore(client redis.UniversalClient, cfg RedisStoreConfig) *RedisStore {
	if cfg.Prefix == "" {
		cfg.Prefix = "ratelimit:"
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock{}
	}

	threshold := cfg.FailureThreshold
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "ratelimit-redis",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, redis.Nil)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed",
				slog.String("circuit", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	})

	return &RedisStore{
		client:  client,
		prefix:  cfg.Prefix,
		clock:   cfg.Clock,
		breaker: breaker,
	}
}

// Get returns the current count and reset time of key.
func (s *RedisStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	v, err := s.execute(func() (interface{}, error) {
		pipe := s.client.Pipeline()
		countCmd := pipe.Get(ctx, s.prefix+key)
		ttlCmd := pipe.PTTL(ctx, s.prefix+key)
		if _, err := pipe.Exec(ctx); err != nil {
			return nil, err
		}
		count, err := countCmd.Int()
		if err != nil {
			return nil, fmt.Errorf("parse count: %w", err)
		}
		return Entry{Count: count, ResetTime: s.clock.Now().Add(ttlCmd.Val())}, nil
	})
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	return v.(Entry), true, nil
}

// Set stores entry so that it expires at entry.ResetTime. An entry whose
// window has already ended is deleted.
func (s *RedisStore) Set(ctx context.Context, key string, entry Entry) error {
	_, err := s.execute(func() (interface{}, error) {
		ttl := entry.ResetTime.Sub(s.clock.Now())
		if ttl <= 0 {
			return nil, s.client.Del(ctx, s.prefix+key).Err()
		}
		return nil, s.client.Set(ctx, s.prefix+key, strconv.Itoa(entry.Count), ttl).Err()
	})
	return err
}

// Increment atomically increments key, opening a new window of the given
// length when none is active.
func (s *RedisStore) Increment(ctx context.Context, key string, window time.Duration, now time.Time) (Entry, error) {
	v, err := s.execute(func() (interface{}, error) {
		res, err := incrementScript.Run(ctx, s.client, []string{s.prefix + key}, window.Milliseconds()).Int64Slice()
		if err != nil {
			return nil, err
		}
		if len(res) != 2 {
			return nil, fmt.Errorf("unexpected script reply length %d", len(res))
		}
		ttl := time.Duration(res[1]) * time.Millisecond
		if ttl < 0 {
			ttl = window
		}
		return Entry{Count: int(res[0]), ResetTime: now.Add(ttl)}, nil
	})
	if err != nil {
		return Entry{}, err
	}
	return v.(Entry), nil
}

// KeyCount counts the live keys under the store prefix with SCAN. It is
// meant for health reports, not the request path.
func (s *RedisStore) KeyCount(ctx context.Context) (int, error) {
	v, err := s.execute(func() (interface{}, error) {
		var (
			cursor uint64
			total  int
		)
		for {
			keys, next, err := s.client.Scan(ctx, cursor, s.prefix+"*", 500).Result()
			if err != nil {
				return nil, err
			}
			total += len(keys)
			if next == 0 {
				return total, nil
			}
			cursor = next
		}
	})
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

// BreakerState returns the circuit breaker state ("closed", "open", "half-open").
func (s *RedisStore) BreakerState() string {
	return s.breaker.State().String()
}

// Ping checks connectivity to Redis.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) execute(fn func() (interface{}, error)) (interface{}, error) {
	v, err := s.breaker.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return v, err
}
