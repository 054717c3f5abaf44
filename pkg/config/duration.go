package config

import (
	"fmt"
	"time"
)

// ValidatePositiveDuration validates that a duration is greater than zero.
// Used for windows, intervals and timeouts.
func ValidatePositiveDuration(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("duration must be positive, got %v", d)
	}
	return nil
}

// ValidateDurationRange validates that min <= d <= max.
//
// Example:
//
//	// cleanup interval between 1 minute and 1 hour
//	if err := ValidateDurationRange(interval, time.Minute, time.Hour); err != nil {
//	    return fmt.Errorf("invalid cleanup interval: %w", err)
//	}
func ValidateDurationRange(d, min, max time.Duration) error {
	if min > max {
		return fmt.Errorf("invalid range: min (%v) cannot be greater than max (%v)", min, max)
	}
	if d < min {
		return fmt.Errorf("duration %v is below minimum %v", d, min)
	}
	if d > max {
		return fmt.Errorf("duration %v exceeds maximum %v", d, max)
	}
	return nil
}

// positiveDurationOrDefault reads key and falls back to def when the value is
// not a positive duration.
func positiveDurationOrDefault(key string, def time.Duration) time.Duration {
	d := GetEnvDuration(key, def)
	if err := ValidatePositiveDuration(d); err != nil {
		warnDefault(key, d.String(), def.String(), err)
		return def
	}
	return d
}

// positiveIntOrDefault reads key and falls back to def when the value is < 1.
func positiveIntOrDefault(key string, def int) int {
	v := GetEnvInt(key, def)
	if v < 1 {
		warnDefault(key, fmt.Sprint(v), fmt.Sprint(def), fmt.Errorf("must be at least 1"))
		return def
	}
	return v
}
