package config

import (
	"fmt"
	"log/slog"
	"net/netip"
	"strings"
	"time"
)

// Rate limit store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Rate limit algorithms selectable per profile.
const (
	AlgorithmFixedWindow = "fixed_window"
	AlgorithmTokenBucket = "token_bucket"
)

// ProfileLimit is the ceiling applied by one security profile.
type ProfileLimit struct {
	MaxRequests int
	Window      time.Duration
	Algorithm   string
}

// RateLimitConfig holds the rate limiting settings shared by all profiles.
type RateLimitConfig struct {
	// Enabled turns admission rate limiting on for every profile.
	Enabled bool

	// Store selects the counter backend: "memory" (per instance) or "redis"
	// (shared by all instances).
	Store string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// MaxKeys bounds the in-memory store.
	MaxKeys int

	// CleanupInterval is how often expired in-memory entries are swept.
	CleanupInterval time.Duration

	// BreakerFailureThreshold and BreakerOpenTimeout configure the circuit
	// breaker around the Redis store.
	BreakerFailureThreshold int
	BreakerOpenTimeout      time.Duration

	PublicForm ProfileLimit
	Login      ProfileLimit
	Admin      ProfileLimit
	BlogRead   ProfileLimit
}

// LoadRateLimitConfig loads rate limiting configuration from environment variables.
//
// Invalid values are logged and replaced with defaults; only a configuration
// that cannot work at all (redis store without an address) returns an error.
//
// Environment variables:
//   - RATELIMIT_ENABLED: Enable/disable rate limiting (default: true)
//   - RATELIMIT_STORE: "memory" or "redis" (default: memory)
//   - REDIS_ADDR, REDIS_PASSWORD, REDIS_DB: Redis connection
//   - RATELIMIT_MAX_KEYS: Maximum identifiers in memory (default: 10000)
//   - RATELIMIT_CLEANUP_INTERVAL: Sweep interval (default: 5m)
//   - RATELIMIT_CB_FAILURE_THRESHOLD: Consecutive Redis failures before the breaker opens (default: 5)
//   - RATELIMIT_CB_RECOVERY_TIMEOUT: Breaker open duration (default: 30s)
//   - PUBLIC_FORM_RATE_LIMIT / PUBLIC_FORM_WINDOW / PUBLIC_FORM_ALGORITHM (default: 5 per 15m)
//   - LOGIN_RATE_LIMIT / LOGIN_WINDOW / LOGIN_ALGORITHM (default: 10 per 15m)
//   - ADMIN_RATE_LIMIT / ADMIN_WINDOW / ADMIN_ALGORITHM (default: 100 per 15m)
//   - BLOG_READ_RATE_LIMIT / BLOG_READ_WINDOW / BLOG_READ_ALGORITHM (default: 200 per 15m)
//
// Example:
//
//	cfg, err := LoadRateLimitConfig()
//	if err != nil {
//	    return fmt.Errorf("load rate limit config: %w", err)
//	}
func LoadRateLimitConfig() (*RateLimitConfig, error) {
	cfg := &RateLimitConfig{
		Enabled:                 GetEnvBool("RATELIMIT_ENABLED", true),
		Store:                   strings.ToLower(GetEnvString("RATELIMIT_STORE", StoreMemory)),
		RedisAddr:               GetEnvString("REDIS_ADDR", ""),
		RedisPassword:           GetEnvString("REDIS_PASSWORD", ""),
		RedisDB:                 GetEnvInt("REDIS_DB", 0),
		MaxKeys:                 positiveIntOrDefault("RATELIMIT_MAX_KEYS", 10000),
		CleanupInterval:         positiveDurationOrDefault("RATELIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		BreakerFailureThreshold: positiveIntOrDefault("RATELIMIT_CB_FAILURE_THRESHOLD", 5),
		BreakerOpenTimeout:      positiveDurationOrDefault("RATELIMIT_CB_RECOVERY_TIMEOUT", 30*time.Second),
		PublicForm:              loadProfileLimit("PUBLIC_FORM", 5, 15*time.Minute),
		Login:                   loadProfileLimit("LOGIN", 10, 15*time.Minute),
		Admin:                   loadProfileLimit("ADMIN", 100, 15*time.Minute),
		BlogRead:                loadProfileLimit("BLOG_READ", 200, 15*time.Minute),
	}

	switch cfg.Store {
	case StoreMemory:
	case StoreRedis:
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("RATELIMIT_STORE=redis requires REDIS_ADDR")
		}
	default:
		warnDefault("RATELIMIT_STORE", cfg.Store, StoreMemory, fmt.Errorf("unknown store"))
		cfg.Store = StoreMemory
	}

	return cfg, nil
}

func loadProfileLimit(prefix string, defMax int, defWindow time.Duration) ProfileLimit {
	algo := strings.ToLower(GetEnvString(prefix+"_ALGORITHM", AlgorithmFixedWindow))
	if algo != AlgorithmFixedWindow && algo != AlgorithmTokenBucket {
		warnDefault(prefix+"_ALGORITHM", algo, AlgorithmFixedWindow, fmt.Errorf("unknown algorithm"))
		algo = AlgorithmFixedWindow
	}
	return ProfileLimit{
		MaxRequests: positiveIntOrDefault(prefix+"_RATE_LIMIT", defMax),
		Window:      positiveDurationOrDefault(prefix+"_WINDOW", defWindow),
		Algorithm:   algo,
	}
}

// SecurityHeadersConfig controls the global response security headers.
type SecurityHeadersConfig struct {
	// Enabled controls whether the headers are applied at all.
	Enabled bool

	// HSTS adds Strict-Transport-Security. Only enable behind TLS.
	HSTS bool
}

// LoadSecurityHeadersConfig loads SECURITY_HEADERS_ENABLED (default: true) and
// SECURITY_HEADERS_HSTS (default: false).
func LoadSecurityHeadersConfig() SecurityHeadersConfig {
	return SecurityHeadersConfig{
		Enabled: GetEnvBool("SECURITY_HEADERS_ENABLED", true),
		HSTS:    GetEnvBool("SECURITY_HEADERS_HSTS", false),
	}
}

// ValidateTrustedProxies validates a list of CIDR ranges for trusted proxies.
//
// Example:
//
//	cidrs := []string{"10.0.0.0/8", "172.16.0.0/12"}
//	if err := ValidateTrustedProxies(cidrs); err != nil {
//	    return fmt.Errorf("invalid trusted proxies: %w", err)
//	}
func ValidateTrustedProxies(cidrs []string) error {
	for _, cidr := range cidrs {
		if cidr == "" {
			return fmt.Errorf("CIDR cannot be empty")
		}
		if _, err := netip.ParsePrefix(cidr); err != nil {
			return fmt.Errorf("invalid CIDR %q: %w", cidr, err)
		}
	}
	return nil
}

func warnDefault(key, value, def string, err error) {
	slog.Warn("invalid configuration value, using default",
		slog.String("key", key),
		slog.String("value", value),
		slog.String("default", def),
		slog.String("error", err.Error()))
}
