package main

import (
	"context"
	"log/slog"
	"time"

	"news-aggregator/internal/domain/entity"
	workerPkg "news-aggregator/internal/infra/worker"
	"news-aggregator/internal/observability/logging"
	"news-aggregator/internal/observability/slo"
	"news-aggregator/internal/usecase/ingest"
)

// pipeline is the part of ingest.Service the job drives.
type pipeline interface {
	Run(ctx context.Context, categories []entity.Category) *ingest.RunStats
}

// ingestJob runs one full pipeline pass and reports it to metrics and the
// health server.
type ingestJob struct {
	logger     *slog.Logger
	pipeline   pipeline
	categories []entity.Category
	timeout    time.Duration
	metrics    *workerPkg.WorkerMetrics
	indicators *slo.Indicators
	health     *workerPkg.HealthServer
}

func (j *ingestJob) run(parent context.Context) *ingest.RunStats {
	startTime := time.Now()
	j.metrics.RecordRun("started")
	j.logger.Info("ingestion started", slog.Int("categories", len(j.categories)))

	ctx, cancel := context.WithTimeout(parent, j.timeout)
	defer cancel()
	ctx = logging.WithLogger(ctx, j.logger)

	stats := j.pipeline.Run(ctx, j.categories)

	j.metrics.RecordRunDuration(time.Since(startTime).Seconds())
	j.metrics.RecordInserted(stats.Inserted)
	j.metrics.RecordFailedCategories(stats.FailedWorkers)
	if stats.FailedWorkers > 0 {
		j.metrics.RecordRun("partial")
	} else {
		j.metrics.RecordRun("success")
		j.metrics.RecordLastSuccess()
	}

	if j.indicators != nil {
		j.indicators.Observe(slo.Run{
			Categories:      stats.Categories,
			FailedWorkers:   stats.FailedWorkers,
			Inserted:        stats.Inserted,
			Duplicates:      stats.Duplicates,
			PersistFailures: stats.PersistFailures,
		})
	}
	if j.health != nil {
		j.health.RecordRun(workerPkg.RunSummary{
			FinishedAt:       time.Now().UTC(),
			Categories:       stats.Categories,
			FailedCategories: stats.FailedWorkers,
			Inserted:         stats.Inserted,
			Duplicates:       stats.Duplicates,
			DurationMS:       stats.Duration.Milliseconds(),
		})
	}

	j.logger.Info("ingestion completed",
		slog.Int("categories", stats.Categories),
		slog.Int64("failed_categories", stats.FailedWorkers),
		slog.Int64("collected", stats.Collected),
		slog.Int64("inserted", stats.Inserted),
		slog.Int64("duplicates", stats.Duplicates),
		slog.Int64("persist_failures", stats.PersistFailures),
		slog.Duration("duration", time.Since(startTime)),
	)
	return stats
}
