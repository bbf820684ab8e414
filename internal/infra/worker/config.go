// Package worker contains the scheduled-run infrastructure: configuration,
// health endpoints, and Prometheus metrics for the scrape worker process.
package worker

import (
	"fmt"
	"log/slog"
	"time"

	"leadscout/internal/pkg/config"
)

// WorkerConfig holds the configuration for the scrape worker process.
// It controls the cron schedule, timezone, concurrency, and the per-run
// timeout for scheduled scrape jobs.
//
// All fields have defaults and validation rules; loading is fail-open so
// the worker always starts with a usable configuration.
type WorkerConfig struct {
	// CronSchedule is the cron expression for scheduled scrape runs.
	// Format: "minute hour day month weekday"
	// Example: "0 */6 * * *" (every 6 hours)
	// Validation: Must be a valid 5-field cron expression
	// Default: "0 */6 * * *"
	CronSchedule string

	// Timezone is the IANA timezone name for cron scheduling.
	// Example: "UTC", "America/Chicago"
	// Validation: Must be a valid IANA timezone name
	// Default: "UTC"
	Timezone string

	// MaxConcurrentJobs is how many scrape configurations may run at once
	// during a scheduled sweep.
	// Range: 1-10
	// Default: 2
	MaxConcurrentJobs int

	// JobTimeout is the maximum duration for one configuration's scrape
	// run. The run is cancelled when it expires.
	// Must be positive (> 0)
	// Default: 10 minutes
	JobTimeout time.Duration

	// HealthPort is the port for the health check HTTP server.
	// Range: 1024-65535 (avoid privileged ports)
	// Default: 9091
	HealthPort int
}

// DefaultConfig returns a WorkerConfig with production defaults: a sweep
// every 6 hours in UTC, two configurations in flight, and a 10-minute
// budget per run.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		CronSchedule:      "0 */6 * * *",
		Timezone:          "UTC",
		MaxConcurrentJobs: 2,
		JobTimeout:        10 * time.Minute,
		HealthPort:        9091,
	}
}

// Validate checks every field and returns the collected errors, if any.
func (c *WorkerConfig) Validate() error {
	var errs []error

	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cron schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := config.ValidateIntRange(c.MaxConcurrentJobs, 1, 10); err != nil {
		errs = append(errs, fmt.Errorf("max concurrent jobs: %w", err))
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

// LoadConfigFromEnv loads the worker configuration from environment
// variables with fail-open fallback: an invalid value logs a warning,
// bumps the fallback metrics, and keeps the default. The returned
// configuration is always valid and the error is always nil.
//
// Environment variables:
//   - WORKER_CRON_SCHEDULE: Cron expression (default: "0 */6 * * *")
//   - WORKER_TIMEZONE: IANA timezone name (default: "UTC")
//   - WORKER_MAX_CONCURRENT_JOBS: Integer 1-10 (default: 2)
//   - WORKER_JOB_TIMEOUT: Duration string, e.g. "10m" (default: 10 minutes)
//   - WORKER_HEALTH_PORT: Integer 1024-65535 (default: 9091)
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) (*WorkerConfig, error) {
	cfg := DefaultConfig()
	fallbackApplied := false

	apply := func(field string, result config.ConfigLoadResult) config.ConfigLoadResult {
		if result.FallbackApplied {
			fallbackApplied = true
			metrics.RecordValidationError(field)
			metrics.RecordFallback(field, "default")
			for _, warning := range result.Warnings {
				logger.Warn("Configuration fallback applied",
					slog.String("field", field),
					slog.String("warning", warning))
			}
		}
		return result
	}

	result := apply("cron_schedule",
		config.LoadEnvWithFallback("WORKER_CRON_SCHEDULE", cfg.CronSchedule, config.ValidateCronSchedule))
	cfg.CronSchedule = result.Value.(string)

	result = apply("timezone",
		config.LoadEnvWithFallback("WORKER_TIMEZONE", cfg.Timezone, config.ValidateTimezone))
	cfg.Timezone = result.Value.(string)

	result = apply("max_concurrent_jobs",
		config.LoadEnvInt("WORKER_MAX_CONCURRENT_JOBS", cfg.MaxConcurrentJobs, func(v int) error {
			return config.ValidateIntRange(v, 1, 10)
		}))
	cfg.MaxConcurrentJobs = result.Value.(int)

	result = apply("job_timeout",
		config.LoadEnvDuration("WORKER_JOB_TIMEOUT", cfg.JobTimeout, func(d time.Duration) error {
			return config.ValidateDuration(d, time.Minute, time.Hour)
		}))
	cfg.JobTimeout = result.Value.(time.Duration)

	result = apply("health_port",
		config.LoadEnvInt("WORKER_HEALTH_PORT", cfg.HealthPort, func(v int) error {
			return config.ValidateIntRange(v, 1024, 65535)
		}))
	cfg.HealthPort = result.Value.(int)

	metrics.SetFallbackActive("", fallbackApplied)
	metrics.RecordLoadTimestamp()

	return &cfg, nil
}
