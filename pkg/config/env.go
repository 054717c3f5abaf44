// Package config provides helpers for reading typed configuration from
// environment variables. Invalid values never abort startup: the helpers log
// a warning and fall back to the supplied default.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// GetEnvString returns the value of key, or defaultValue when it is unset or empty.
func GetEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvInt returns key parsed as a base-10 integer.
//
// Example:
//
//	maxKeys := GetEnvInt("RATELIMIT_MAX_KEYS", 10000)
func GetEnvInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		slog.Warn("invalid integer value for environment variable, using default",
			slog.String("key", key),
			slog.String("value", raw),
			slog.Int("default", defaultValue),
			slog.String("error", err.Error()))
		return defaultValue
	}
	return value
}

// GetEnvBool returns key parsed with strconv.ParseBool
// ("1", "t", "true", "0", "f", "false" in any common casing).
func GetEnvBool(key string, defaultValue bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		slog.Warn("invalid boolean value for environment variable, using default",
			slog.String("key", key),
			slog.String("value", raw),
			slog.Bool("default", defaultValue))
		return defaultValue
	}
	return value
}

// GetEnvDuration returns key parsed with time.ParseDuration (e.g. "15m", "30s").
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		slog.Warn("invalid duration value for environment variable, using default",
			slog.String("key", key),
			slog.String("value", raw),
			slog.String("default", defaultValue.String()),
			slog.String("error", err.Error()))
		return defaultValue
	}
	return value
}

// GetEnvStringList returns key split on commas with blanks trimmed and empty
// items dropped. An unset variable, or one with no non-empty items, yields
// defaultValue.
//
// Example:
//
//	// SITE_ALLOWED_ORIGINS="https://www.rajeshwaritech.com, https://rajeshwaritech.com"
//	origins := GetEnvStringList("SITE_ALLOWED_ORIGINS", nil)
func GetEnvStringList(key string, defaultValue []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
