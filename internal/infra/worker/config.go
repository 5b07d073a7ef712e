package worker

import (
	"fmt"
	"log/slog"
	"time"

	"news-aggregator/internal/pkg/config"
)

// Config holds the ingestion worker's scheduling and serving parameters.
//
// Environment variables:
//   - CRON_SCHEDULE: cron expression (default "0 */6 * * *")
//   - WORKER_TIMEZONE: IANA timezone for the schedule (default "UTC")
//   - WORKER_RUN_TIMEOUT: upper bound for one full run (default 30m, range 1m-4h)
//   - WORKER_HEALTH_PORT: health probe port (default 9091)
//   - METRICS_PORT: Prometheus scrape port (default 9090)
//   - WORKER_RUN_ONCE: run a single ingestion and exit (default false)
//   - CATEGORY_PARALLELISM: concurrent categories, 0 means one goroutine each (default 0)
type Config struct {
	CronSchedule string
	Timezone     string

	// RunTimeout bounds one ingestion run across all categories.
	RunTimeout time.Duration

	HealthPort  int
	MetricsPort int

	RunOnce bool

	CategoryParallelism int
}

func DefaultConfig() Config {
	return Config{
		CronSchedule:        "0 */6 * * *",
		Timezone:            "UTC",
		RunTimeout:          30 * time.Minute,
		HealthPort:          9091,
		MetricsPort:         9090,
		RunOnce:             false,
		CategoryParallelism: 0,
	}
}

// Validate collects every invalid field into one error.
func (c *Config) Validate() error {
	var errs []error

	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cron schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := config.ValidatePositiveDuration(c.RunTimeout); err != nil {
		errs = append(errs, fmt.Errorf("run timeout: %w", err))
	}
	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}
	if err := config.ValidateIntRange(c.MetricsPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("metrics port: %w", err))
	}
	if c.HealthPort == c.MetricsPort {
		errs = append(errs, fmt.Errorf("health port and metrics port must differ, both %d", c.HealthPort))
	}
	if err := config.ValidateIntRange(c.CategoryParallelism, 0, 64); err != nil {
		errs = append(errs, fmt.Errorf("category parallelism: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %v", errs)
	}
	return nil
}

// Location resolves Timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LoadConfigFromEnv loads the worker configuration. Invalid values fall back
// to their defaults; the returned config is always usable.
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) *Config {
	def := DefaultConfig()

	var cm *config.ConfigMetrics
	if metrics != nil {
		cm = metrics.ConfigMetrics
	}
	t := config.NewTracker(logger, cm)

	cfg := Config{
		CronSchedule: t.String("CRON_SCHEDULE", "cron_schedule", def.CronSchedule, config.ValidateCronSchedule),
		Timezone:     t.String("WORKER_TIMEZONE", "timezone", def.Timezone, config.ValidateTimezone),
		RunTimeout: t.Duration("WORKER_RUN_TIMEOUT", "run_timeout", def.RunTimeout, func(d time.Duration) error {
			return config.ValidateDuration(d, time.Minute, 4*time.Hour)
		}),
		HealthPort: t.Int("WORKER_HEALTH_PORT", "health_port", def.HealthPort, func(v int) error {
			return config.ValidateIntRange(v, 1024, 65535)
		}),
		MetricsPort: t.Int("METRICS_PORT", "metrics_port", def.MetricsPort, func(v int) error {
			return config.ValidateIntRange(v, 1024, 65535)
		}),
		RunOnce: t.Bool("WORKER_RUN_ONCE", "run_once", def.RunOnce),
		CategoryParallelism: t.Int("CATEGORY_PARALLELISM", "category_parallelism", def.CategoryParallelism, func(v int) error {
			return config.ValidateIntRange(v, 0, 64)
		}),
	}
	t.Finish()

	return &cfg
}
