package config

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// scheduleParser accepts standard five-field cron expressions plus the
// @daily style descriptors.
var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ValidateCronSchedule reports whether schedule parses as a five-field cron
// expression.
func ValidateCronSchedule(schedule string) error {
	if schedule == "" {
		return fmt.Errorf("invalid cron schedule: cannot be empty")
	}
	if _, err := scheduleParser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", schedule, err)
	}
	return nil
}

// ValidateTimezone reports whether tz names a loadable IANA location.
func ValidateTimezone(tz string) error {
	if tz == "" {
		return fmt.Errorf("invalid timezone: cannot be empty")
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return fmt.Errorf("invalid timezone '%s': %w", tz, err)
	}
	return nil
}

// ValidateIntRange validates that min <= v <= max.
func ValidateIntRange(v, min, max int) error {
	if min > max {
		return fmt.Errorf("invalid range: min (%d) cannot be greater than max (%d)", min, max)
	}
	if v < min {
		return fmt.Errorf("value %d is below minimum %d", v, min)
	}
	if v > max {
		return fmt.Errorf("value %d exceeds maximum %d", v, max)
	}
	return nil
}
