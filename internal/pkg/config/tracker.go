package config

import (
	"log/slog"
	"time"
)

// Tracker applies load results to a component configuration, logging every
// fallback and recording it on the component's ConfigMetrics.
//
//	t := config.NewTracker(logger, metrics)
//	cfg.Timeout = t.Duration("FAVICON_TIMEOUT", "timeout", cfg.Timeout, config.ValidatePositiveDuration)
//	t.Finish()
type Tracker struct {
	logger   *slog.Logger
	metrics  *ConfigMetrics
	fallback bool
}

// NewTracker creates a tracker. metrics may be nil.
func NewTracker(logger *slog.Logger, metrics *ConfigMetrics) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{logger: logger, metrics: metrics}
}

func (t *Tracker) apply(field string, result ConfigLoadResult) interface{} {
	if result.FallbackApplied {
		t.fallback = true
		if t.metrics != nil {
			t.metrics.RecordValidationError(field)
			t.metrics.RecordFallback(field, "default")
		}
		for _, warning := range result.Warnings {
			t.logger.Warn("Configuration fallback applied",
				slog.String("field", field),
				slog.String("warning", warning))
		}
	}
	return result.Value
}

func (t *Tracker) String(envKey, field, def string, validator func(string) error) string {
	return t.apply(field, LoadEnvWithFallback(envKey, def, validator)).(string)
}

func (t *Tracker) Int(envKey, field string, def int, validator func(int) error) int {
	return t.apply(field, LoadEnvInt(envKey, def, validator)).(int)
}

func (t *Tracker) Int64(envKey, field string, def int64, validator func(int64) error) int64 {
	return t.apply(field, LoadEnvInt64(envKey, def, validator)).(int64)
}

func (t *Tracker) Float(envKey, field string, def float64, validator func(float64) error) float64 {
	return t.apply(field, LoadEnvFloat(envKey, def, validator)).(float64)
}

func (t *Tracker) Duration(envKey, field string, def time.Duration, validator func(time.Duration) error) time.Duration {
	return t.apply(field, LoadEnvDuration(envKey, def, validator)).(time.Duration)
}

func (t *Tracker) Bool(envKey, field string, def bool) bool {
	return t.apply(field, LoadEnvBool(envKey, def)).(bool)
}

// FallbackApplied reports whether any field fell back to its default.
func (t *Tracker) FallbackApplied() bool {
	return t.fallback
}

// Finish publishes the fallback gauge and load timestamp.
func (t *Tracker) Finish() {
	if t.metrics == nil {
		return
	}
	t.metrics.SetFallbackActive("", t.fallback)
	t.metrics.RecordLoadTimestamp()
}
