package slo

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	io_prometheus_client "github.com/prometheus/client_model/go"
)

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	metric := &io_prometheus_client.Metric{}
	if err := g.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	return metric.GetGauge().GetValue()
}

func TestObserve(t *testing.T) {
	tests := []struct {
		name                string
		run                 Run
		wantSuccess         float64
		wantErrRate         float64
		wantSuccessBreached float64
		wantPersistBreached float64
	}{
		{
			name:        "clean run",
			run:         Run{Categories: 17, Inserted: 90, Duplicates: 10},
			wantSuccess: 1,
		},
		{
			name:                "one of four categories failed",
			run:                 Run{Categories: 4, FailedWorkers: 1, Inserted: 10},
			wantSuccess:         0.75,
			wantSuccessBreached: 1,
		},
		{
			name:                "write failures above target",
			run:                 Run{Categories: 2, Inserted: 45, Duplicates: 45, PersistFailures: 10},
			wantSuccess:         1,
			wantErrRate:         0.1,
			wantPersistBreached: 1,
		},
		{
			name:        "empty run",
			run:         Run{},
			wantSuccess: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewIndicatorsWith(prometheus.NewRegistry())
			s.Observe(tt.run)

			if got := gaugeValue(t, s.CategorySuccess); got != tt.wantSuccess {
				t.Errorf("category success = %v, want %v", got, tt.wantSuccess)
			}
			if got := gaugeValue(t, s.PersistErrorRate); got != tt.wantErrRate {
				t.Errorf("persist error rate = %v, want %v", got, tt.wantErrRate)
			}
			if got := gaugeValue(t, s.Breached.WithLabelValues("category_success")); got != tt.wantSuccessBreached {
				t.Errorf("category_success breached = %v, want %v", got, tt.wantSuccessBreached)
			}
			if got := gaugeValue(t, s.Breached.WithLabelValues("persist_error_rate")); got != tt.wantPersistBreached {
				t.Errorf("persist_error_rate breached = %v, want %v", got, tt.wantPersistBreached)
			}
		})
	}
}

func TestObserve_RecoversAfterBreach(t *testing.T) {
	s := NewIndicatorsWith(prometheus.NewRegistry())

	s.Observe(Run{Categories: 2, FailedWorkers: 2})
	if got := gaugeValue(t, s.Breached.WithLabelValues("category_success")); got != 1 {
		t.Fatalf("expected breach, got %v", got)
	}

	s.Observe(Run{Categories: 2})
	if got := gaugeValue(t, s.Breached.WithLabelValues("category_success")); got != 0 {
		t.Errorf("expected breach cleared, got %v", got)
	}
}
