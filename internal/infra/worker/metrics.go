package worker

import (
	"news-aggregator/internal/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// WorkerMetrics embeds the worker's ConfigMetrics and adds ingestion job metrics:
//   - worker_ingest_runs_total{status}
//   - worker_ingest_run_duration_seconds
//   - worker_ingest_records_inserted_total
//   - worker_ingest_failed_categories_total
//   - worker_ingest_last_success_timestamp
type WorkerMetrics struct {
	*config.ConfigMetrics

	RunsTotal             *prometheus.CounterVec
	RunDurationSeconds    prometheus.Histogram
	RecordsInsertedTotal  prometheus.Counter
	FailedCategoriesTotal prometheus.Counter
	LastSuccessTimestamp  prometheus.Gauge
}

// NewWorkerMetrics registers the worker metrics on the default registry.
func NewWorkerMetrics() *WorkerMetrics {
	return NewWorkerMetricsWith(prometheus.DefaultRegisterer)
}

// NewWorkerMetricsWith registers the worker metrics on reg.
func NewWorkerMetricsWith(reg prometheus.Registerer) *WorkerMetrics {
	factory := promauto.With(reg)
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetricsWith(reg, "worker"),

		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_ingest_runs_total",
			Help: "Total number of ingestion runs by status (started/success/partial)",
		}, []string{"status"}),

		RunDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_ingest_run_duration_seconds",
			Help:    "Duration of one ingestion run across all categories",
			Buckets: []float64{1, 5, 30, 60, 300, 900, 1800},
		}),

		RecordsInsertedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "worker_ingest_records_inserted_total",
			Help: "Total number of news records inserted across all runs",
		}),

		FailedCategoriesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "worker_ingest_failed_categories_total",
			Help: "Total number of category workers that ended with an error",
		}),

		LastSuccessTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Name: "worker_ingest_last_success_timestamp",
			Help: "Unix timestamp of the last run in which every category succeeded",
		}),
	}
}

func (m *WorkerMetrics) RecordRun(status string) {
	m.RunsTotal.WithLabelValues(status).Inc()
}

func (m *WorkerMetrics) RecordRunDuration(seconds float64) {
	m.RunDurationSeconds.Observe(seconds)
}

func (m *WorkerMetrics) RecordInserted(count int64) {
	if count > 0 {
		m.RecordsInsertedTotal.Add(float64(count))
	}
}

func (m *WorkerMetrics) RecordFailedCategories(count int64) {
	if count > 0 {
		m.FailedCategoriesTotal.Add(float64(count))
	}
}

func (m *WorkerMetrics) RecordLastSuccess() {
	m.LastSuccessTimestamp.SetToCurrentTime()
}
