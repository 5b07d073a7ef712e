package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewConfigMetricsWith_RecordsFallbacks(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewConfigMetricsWith(reg, "test_component")

	metrics.RecordValidationError("timeout")
	metrics.RecordFallback("timeout", "default")
	metrics.RecordFallback("timeout", "default")
	metrics.SetFallbackActive("", true)
	metrics.RecordLoadTimestamp()

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ValidationErrorsTotal.WithLabelValues("timeout")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.FallbacksTotal.WithLabelValues("timeout")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.FallbackActive))
	assert.Greater(t, testutil.ToFloat64(metrics.LoadTimestamp), 0.0)

	metrics.SetFallbackActive("", false)
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.FallbackActive))
}

func TestTracker(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewConfigMetricsWith(reg, "test_tracker")

	t.Setenv("TEST_TRACKER_TIMEOUT", "bogus")
	t.Setenv("TEST_TRACKER_WORKERS", "8")
	t.Setenv("TEST_TRACKER_ONCE", "true")

	tracker := NewTracker(slog.Default(), metrics)
	timeout := tracker.Duration("TEST_TRACKER_TIMEOUT", "timeout", 5*time.Second, ValidatePositiveDuration)
	workers := tracker.Int("TEST_TRACKER_WORKERS", "workers", 4, nil)
	once := tracker.Bool("TEST_TRACKER_ONCE", "once", false)
	tracker.Finish()

	assert.Equal(t, 5*time.Second, timeout)
	assert.Equal(t, 8, workers)
	assert.True(t, once)
	assert.True(t, tracker.FallbackApplied())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.FallbacksTotal.WithLabelValues("timeout")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.FallbackActive))
}

func TestTracker_NilMetrics(t *testing.T) {
	t.Setenv("TEST_TRACKER_PROVIDER", "")

	tracker := NewTracker(nil, nil)
	got := tracker.String("TEST_TRACKER_PROVIDER", "provider", "duckduckgo", nil)
	tracker.Finish()

	assert.Equal(t, "duckduckgo", got)
	assert.False(t, tracker.FallbackApplied())
}
