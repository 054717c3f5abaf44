// Package worker holds the building blocks of the background worker: its
// configuration, metrics, scheduled jobs and health server.
package worker

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/yashchoube/rajeshwari-tech-sub000/pkg/config"
)

// WorkerConfig holds the worker settings.
type WorkerConfig struct {
	// DigestSchedule is the cron expression of the daily lead digest.
	DigestSchedule string

	// HousekeepingSchedule is the cron expression of the rate-limit store
	// report. Empty disables the job.
	HousekeepingSchedule string

	Timezone string

	// DigestWindow is how far back the digest counts leads.
	DigestWindow time.Duration

	NotifyMaxConcurrent int

	// JobTimeout bounds a single job run.
	JobTimeout time.Duration

	HealthPort int
}

func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		DigestSchedule:       "0 9 * * *",
		HousekeepingSchedule: "*/15 * * * *",
		Timezone:             "Asia/Kolkata",
		DigestWindow:         24 * time.Hour,
		NotifyMaxConcurrent:  10,
		JobTimeout:           5 * time.Minute,
		HealthPort:           9091,
	}
}

// Validate checks every field and reports all problems at once.
func (c *WorkerConfig) Validate() error {
	var errs []error

	if err := config.ValidateCronSchedule(c.DigestSchedule); err != nil {
		errs = append(errs, fmt.Errorf("digest schedule: %w", err))
	}
	if c.HousekeepingSchedule != "" {
		if err := config.ValidateCronSchedule(c.HousekeepingSchedule); err != nil {
			errs = append(errs, fmt.Errorf("housekeeping schedule: %w", err))
		}
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := config.ValidateDurationRange(c.DigestWindow, time.Hour, 31*24*time.Hour); err != nil {
		errs = append(errs, fmt.Errorf("digest window: %w", err))
	}
	if err := config.ValidateIntRange(c.NotifyMaxConcurrent, 1, 50); err != nil {
		errs = append(errs, fmt.Errorf("notify max concurrent: %w", err))
	}
	if err := config.ValidatePositiveDuration(c.JobTimeout); err != nil {
		errs = append(errs, fmt.Errorf("job timeout: %w", err))
	}
	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %v", errs)
	}
	return nil
}

// LoadConfigFromEnv reads the worker settings. An invalid value never stops
// the worker: it is logged, counted and replaced by its default.
//
// Environment variables:
//   - DIGEST_CRON (default "0 9 * * *")
//   - HOUSEKEEPING_CRON (default "*/15 * * * *", "off" disables)
//   - WORKER_TIMEZONE (default "Asia/Kolkata")
//   - DIGEST_WINDOW (default 24h, 1h..744h)
//   - NOTIFY_MAX_CONCURRENT (default 10, 1..50)
//   - WORKER_JOB_TIMEOUT (default 5m, 10s..1h)
//   - WORKER_HEALTH_PORT (default 9091, 1024..65535)
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) *WorkerConfig {
	cfg := DefaultConfig()
	l := fieldLoader{logger: logger, metrics: metrics}

	cfg.DigestSchedule = loadField(l, "DIGEST_CRON", cfg.DigestSchedule, parseString, config.ValidateCronSchedule)
	if os.Getenv("HOUSEKEEPING_CRON") == "off" {
		cfg.HousekeepingSchedule = ""
	} else {
		cfg.HousekeepingSchedule = loadField(l, "HOUSEKEEPING_CRON", cfg.HousekeepingSchedule, parseString, config.ValidateCronSchedule)
	}
	cfg.Timezone = loadField(l, "WORKER_TIMEZONE", cfg.Timezone, parseString, config.ValidateTimezone)
	cfg.DigestWindow = loadField(l, "DIGEST_WINDOW", cfg.DigestWindow, time.ParseDuration, func(d time.Duration) error {
		return config.ValidateDurationRange(d, time.Hour, 31*24*time.Hour)
	})
	cfg.NotifyMaxConcurrent = loadField(l, "NOTIFY_MAX_CONCURRENT", cfg.NotifyMaxConcurrent, strconv.Atoi, func(v int) error {
		return config.ValidateIntRange(v, 1, 50)
	})
	cfg.JobTimeout = loadField(l, "WORKER_JOB_TIMEOUT", cfg.JobTimeout, time.ParseDuration, func(d time.Duration) error {
		return config.ValidateDurationRange(d, 10*time.Second, time.Hour)
	})
	cfg.HealthPort = loadField(l, "WORKER_HEALTH_PORT", cfg.HealthPort, strconv.Atoi, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})

	if metrics != nil {
		metrics.RecordConfigLoaded()
	}
	return &cfg
}

type fieldLoader struct {
	logger  *slog.Logger
	metrics *WorkerMetrics
}

func (l fieldLoader) fallback(key string, raw string, err error) {
	if l.logger != nil {
		l.logger.Warn("Configuration fallback applied",
			slog.String("field", key),
			slog.String("value", raw),
			slog.Any("error", err))
	}
	if l.metrics != nil {
		l.metrics.RecordFallback(key)
	}
}

func parseString(s string) (string, error) { return s, nil }

// loadField returns def when key is unset, and also when its value fails to
// parse or validate.
func loadField[T any](l fieldLoader, key string, def T, parse func(string) (T, error), validate func(T) error) T {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return def
	}
	v, err := parse(raw)
	if err == nil {
		err = validate(v)
	}
	if err != nil {
		l.fallback(key, raw, err)
		return def
	}
	return v
}
