// Package slo publishes ingestion service-level indicators after each run.
package slo

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// CategorySuccessSLO is the target share of categories finishing a run without error.
	CategorySuccessSLO = 0.95

	// PersistErrorRateSLO is the maximum share of store writes that may hard-fail.
	PersistErrorRateSLO = 0.01
)

// Indicators holds the SLI gauges of the ingestion worker.
type Indicators struct {
	CategorySuccess  prometheus.Gauge
	PersistErrorRate prometheus.Gauge
	Breached         *prometheus.GaugeVec
}

// NewIndicators registers the gauges on the default registry.
func NewIndicators() *Indicators {
	return NewIndicatorsWith(prometheus.DefaultRegisterer)
}

func NewIndicatorsWith(reg prometheus.Registerer) *Indicators {
	factory := promauto.With(reg)
	return &Indicators{
		CategorySuccess: factory.NewGauge(prometheus.GaugeOpts{
			Name: "slo_ingest_category_success_ratio",
			Help: "Share of categories that finished the last run without error, target: 0.95",
		}),
		PersistErrorRate: factory.NewGauge(prometheus.GaugeOpts{
			Name: "slo_ingest_persist_error_ratio",
			Help: "Share of store writes that failed in the last run, target: <= 0.01",
		}),
		Breached: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "slo_ingest_breached",
			Help: "1 if the named objective was missed by the last run, 0 otherwise",
		}, []string{"objective"}),
	}
}

// Run is the slice of a pipeline run the indicators are computed from.
type Run struct {
	Categories      int
	FailedWorkers   int64
	Inserted        int64
	Duplicates      int64
	PersistFailures int64
}

// Observe updates every indicator from r. A run with no categories or no
// writes leaves the corresponding ratio at its ideal value.
func (s *Indicators) Observe(r Run) {
	success := 1.0
	if r.Categories > 0 {
		success = float64(int64(r.Categories)-r.FailedWorkers) / float64(r.Categories)
	}
	s.CategorySuccess.Set(success)
	s.setBreached("category_success", success < CategorySuccessSLO)

	errRate := 0.0
	if writes := r.Inserted + r.Duplicates + r.PersistFailures; writes > 0 {
		errRate = float64(r.PersistFailures) / float64(writes)
	}
	s.PersistErrorRate.Set(errRate)
	s.setBreached("persist_error_rate", errRate > PersistErrorRateSLO)
}

func (s *Indicators) setBreached(objective string, breached bool) {
	v := 0.0
	if breached {
		v = 1
	}
	s.Breached.WithLabelValues(objective).Set(v)
}
