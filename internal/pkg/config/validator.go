package config

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// ValidateCronSchedule validates a standard 5-field cron expression
// ("minute hour day month weekday") using the robfig/cron/v3 parser, the
// same parser the scheduler runs it through later.
func ValidateCronSchedule(schedule string) error {
	if schedule == "" {
		return fmt.Errorf("cron schedule is empty")
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("cron schedule %q: %w", schedule, err)
	}
	return nil
}

// ValidateTimezone validates an IANA timezone name via time.LoadLocation.
// Fails when tzdata is unavailable on the host, which is the failure an
// operator needs to hear about.
func ValidateTimezone(timezone string) error {
	if timezone == "" {
		return fmt.Errorf("timezone is empty")
	}

	if _, err := time.LoadLocation(timezone); err != nil {
		return fmt.Errorf("timezone %q: %w", timezone, err)
	}
	return nil
}

// ValidateDuration checks that a duration lies within [min, max] inclusive.
func ValidateDuration(duration, min, max time.Duration) error {
	if min > max {
		return fmt.Errorf("bad range: min %v > max %v", min, max)
	}
	if duration < min {
		return fmt.Errorf("duration %v below minimum %v", duration, min)
	}
	if duration > max {
		return fmt.Errorf("duration %v above maximum %v", duration, max)
	}
	return nil
}

// ValidateIntRange checks that an integer lies within [min, max] inclusive.
func ValidateIntRange(value, min, max int) error {
	if min > max {
		return fmt.Errorf("bad range: min %d > max %d", min, max)
	}
	if value < min {
		return fmt.Errorf("value %d below minimum %d", value, min)
	}
	if value > max {
		return fmt.Errorf("value %d above maximum %d", value, max)
	}
	return nil
}

// ValidatePositiveDuration checks that a duration is strictly positive.
func ValidatePositiveDuration(duration time.Duration) error {
	if duration <= 0 {
		return fmt.Errorf("duration must be positive, got %v", duration)
	}
	return nil
}
