package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/robfig/cron/v3"

	"news-aggregator/internal/config"
	"news-aggregator/internal/domain/entity"
	"news-aggregator/internal/handler/http/respond"
	pgRepo "news-aggregator/internal/infra/adapter/persistence/postgres"
	sqliteRepo "news-aggregator/internal/infra/adapter/persistence/sqlite"
	"news-aggregator/internal/infra/db"
	"news-aggregator/internal/infra/favicon"
	"news-aggregator/internal/infra/search"
	workerPkg "news-aggregator/internal/infra/worker"
	"news-aggregator/internal/observability/logging"
	"news-aggregator/internal/observability/slo"
	"news-aggregator/internal/observability/tracing"
	pkgconfig "news-aggregator/internal/pkg/config"
	"news-aggregator/internal/repository"
	"news-aggregator/internal/usecase/ingest"
)

func main() {
	logger := initLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing := tracing.Init()
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error("failed to shut down tracing", slog.Any("error", err))
		}
	}()

	workerMetrics := workerPkg.NewWorkerMetrics()
	workerConfig := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Duration("run_timeout", workerConfig.RunTimeout),
		slog.Int("health_port", workerConfig.HealthPort),
		slog.Int("metrics_port", workerConfig.MetricsPort),
		slog.Bool("run_once", workerConfig.RunOnce),
		slog.Int("category_parallelism", workerConfig.CategoryParallelism))

	dbConfig := db.LoadConfigFromEnv()
	database := initDatabase(ctx, logger, dbConfig)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	svc, err := setupIngestService(logger, newNewsRepo(database, dbConfig.Dialect), workerConfig)
	if err != nil {
		logger.Error("failed to set up ingestion", slog.Any("error", err))
		os.Exit(1)
	}

	categories := config.CategoriesFromEnv(logger)
	logger.Info("categories loaded", slog.Int("count", len(categories)))

	healthServer := workerPkg.NewHealthServer(fmt.Sprintf(":%d", workerConfig.HealthPort), logger)
	job := &ingestJob{
		logger:     logger,
		pipeline:   svc,
		categories: categories,
		timeout:    workerConfig.RunTimeout,
		metrics:    workerMetrics,
		indicators: slo.NewIndicators(),
		health:     healthServer,
	}

	if workerConfig.RunOnce {
		job.run(ctx)
		return
	}

	startMetricsServer(ctx, logger, workerConfig.MetricsPort)
	go func() {
		if err := healthServer.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()

	startCronWorker(ctx, logger, job, workerConfig, healthServer)
}

// initLogger installs the JSON logger as the process default.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// initDatabase opens the store and creates the news table if needed.
func initDatabase(ctx context.Context, logger *slog.Logger, cfg db.Config) *sql.DB {
	database, err := db.Open(ctx, cfg)
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", respond.SanitizeError(err)))
		os.Exit(1)
	}
	if err := db.EnsureSchema(ctx, database, cfg.Dialect); err != nil {
		logger.Error("failed to ensure schema", slog.Any("error", err))
		_ = database.Close()
		os.Exit(1)
	}
	return database
}

// newNewsRepo binds the repository straight to the pool. Inserts stay off the
// database breaker: a failed write must never stop the next one from being
// attempted.
func newNewsRepo(database *sql.DB, dialect db.Dialect) repository.NewsRepository {
	if dialect == db.DialectPostgres {
		return pgRepo.NewNewsRepo(database)
	}
	return sqliteRepo.NewNewsRepo(database)
}

// setupIngestService wires the search provider and favicon resolver into the pipeline.
func setupIngestService(logger *slog.Logger, repo repository.NewsRepository, cfg *workerPkg.Config) (*ingest.Service, error) {
	searchConfig := search.LoadConfigFromEnv(logger, pkgconfig.NewConfigMetrics("search"))
	searcher, err := search.New(searchConfig)
	if err != nil {
		return nil, fmt.Errorf("search provider: %w", err)
	}
	logger.Info("search provider initialized",
		slog.String("provider", searcher.Name()),
		slog.String("window", string(searchConfig.Window)),
		slog.Int("max_results", searchConfig.MaxResults),
		slog.Float64("rate_limit", searchConfig.RateLimit))

	faviconConfig := favicon.LoadConfigFromEnv(logger, pkgconfig.NewConfigMetrics("favicon"))
	resolver := favicon.NewResolver(faviconConfig)
	logger.Info("favicon resolver initialized",
		slog.Int("parallelism", faviconConfig.Parallelism),
		slog.Duration("timeout", faviconConfig.Timeout),
		slog.Duration("cache_ttl", faviconConfig.CacheTTL))

	return ingest.NewService(searcher, resolver, repo, ingest.Config{
		Window:              searchConfig.Window,
		MaxResults:          searchConfig.MaxResults,
		FaviconParallelism:  resolver.Parallelism(),
		CategoryParallelism: cfg.CategoryParallelism,
	}), nil
}

// startCronWorker runs the job once, then on the configured schedule until ctx ends.
func startCronWorker(ctx context.Context, logger *slog.Logger, job *ingestJob, cfg *workerPkg.Config, healthServer *workerPkg.HealthServer) {
	c := cron.New(cron.WithLocation(cfg.Location()), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	_, err := c.AddFunc(cfg.CronSchedule, func() {
		job.run(ctx)
	})
	if err != nil {
		logger.Error("failed to add cron job", slog.Any("error", err))
		os.Exit(1)
	}

	healthServer.SetReady(true)
	job.run(ctx)

	c.Start()
	logger.Info("worker started",
		slog.String("schedule", cfg.CronSchedule),
		slog.String("timezone", cfg.Timezone),
		slog.Any("categories", categoryLabels(job.categories)))

	<-ctx.Done()
	logger.Info("shutting down worker...")
	healthServer.SetReady(false)
	<-c.Stop().Done()
	logger.Info("worker stopped")
}

func categoryLabels(categories []entity.Category) []string {
	out := make([]string, len(categories))
	for i, c := range categories {
		out[i] = c.String()
	}
	return out
}
