package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync/atomic"
	"time"

	"news-aggregator/internal/domain/entity"
	"news-aggregator/internal/observability/logging"
	"news-aggregator/internal/observability/metrics"
	"news-aggregator/internal/observability/tracing"

	"golang.org/x/sync/errgroup"
)

// CategoryResult describes one category run. Err is set when collection
// failed or the worker panicked; the run still counts as done.
type CategoryResult struct {
	Category  entity.Category
	Collected int
	Persist   PersistStats
	Err       error
	Duration  time.Duration
}

// RunStats aggregates a full pipeline run. Counters are updated atomically
// by the category goroutines.
type RunStats struct {
	Categories      int
	FailedWorkers   int64
	Collected       int64
	Inserted        int64
	Duplicates      int64
	PersistFailures int64
	Duration        time.Duration
}

func (rs *RunStats) add(res CategoryResult) {
	if res.Err != nil {
		atomic.AddInt64(&rs.FailedWorkers, 1)
	}
	atomic.AddInt64(&rs.Collected, int64(res.Collected))
	atomic.AddInt64(&rs.Inserted, int64(res.Persist.Inserted))
	atomic.AddInt64(&rs.Duplicates, int64(res.Persist.Duplicates))
	atomic.AddInt64(&rs.PersistFailures, int64(res.Persist.Failed))
}

// Run starts one goroutine per category and waits for all of them. A failing
// or panicking category never affects its siblings.
func (s *Service) Run(ctx context.Context, categories []entity.Category) *RunStats {
	logger := logging.FromContext(ctx)
	start := time.Now()
	stats := &RunStats{Categories: len(categories)}

	var g errgroup.Group
	if s.cfg.CategoryParallelism > 0 {
		g.SetLimit(s.cfg.CategoryParallelism)
	}
	for _, category := range categories {
		g.Go(func() error {
			stats.add(s.RunCategory(ctx, category))
			return nil
		})
	}
	_ = g.Wait()

	stats.Duration = time.Since(start)
	logger.Info("pipeline run completed",
		slog.Int("categories", stats.Categories),
		slog.Int64("failed_workers", stats.FailedWorkers),
		slog.Int64("collected", stats.Collected),
		slog.Int64("inserted", stats.Inserted),
		slog.Int64("duplicates", stats.Duplicates),
		slog.Int64("persist_failures", stats.PersistFailures),
		slog.Duration("duration", stats.Duration),
	)
	return stats
}

// RunCategory drives one category through collect, enrich and persist.
func (s *Service) RunCategory(ctx context.Context, category entity.Category) (res CategoryResult) {
	start := time.Now()
	name := category.String()
	logger := logging.WithCategory(logging.FromContext(ctx), name)
	ctx = logging.WithLogger(ctx, logger)

	ctx, span := tracing.StartCategorySpan(ctx, name)
	defer span.End()

	res.Category = category
	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("%w: %v", ErrWorkerPanic, r)
			metrics.RecordCategoryError(name, "panic")
			span.RecordError(res.Err)
			logger.Error("category worker panicked",
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
		}
		res.Duration = time.Since(start)
		metrics.RecordCategoryRun(name, res.Duration)
	}()

	collectCtx, collectSpan := tracing.StartStageSpan(ctx, "collect", 0)
	records, err := s.Collect(collectCtx, category)
	collectSpan.End()
	if err != nil {
		res.Err = err
		metrics.RecordCategoryError(name, "collect")
		span.RecordError(err)
		logger.Warn("collection failed; category yields no records", slog.Any("error", err))
		return res
	}
	res.Collected = len(records)

	if len(records) > 0 {
		enrichCtx, enrichSpan := tracing.StartStageSpan(ctx, "enrich", len(records))
		records = s.Enrich(enrichCtx, records)
		enrichSpan.End()

		persistCtx, persistSpan := tracing.StartStageSpan(ctx, "persist", len(records))
		res.Persist = s.Persist(persistCtx, records)
		persistSpan.End()
	}
	if res.Persist.Failed > 0 {
		metrics.RecordCategoryError(name, "persist")
	}

	logger.Info("category run completed",
		slog.Int("collected", res.Collected),
		slog.Int("inserted", res.Persist.Inserted),
		slog.Int("duplicates", res.Persist.Duplicates),
		slog.Int("failed", res.Persist.Failed),
		slog.Duration("duration", time.Since(start)),
	)
	return res
}
