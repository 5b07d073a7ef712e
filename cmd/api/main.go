package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "news-aggregator/docs" // swagger docs
	hhttp "news-aggregator/internal/handler/http"
	"news-aggregator/internal/handler/http/middleware"
	hnews "news-aggregator/internal/handler/http/news"
	"news-aggregator/internal/handler/http/requestid"
	"news-aggregator/internal/handler/http/respond"
	pgRepo "news-aggregator/internal/infra/adapter/persistence/postgres"
	sqliteRepo "news-aggregator/internal/infra/adapter/persistence/sqlite"
	"news-aggregator/internal/infra/db"
	"news-aggregator/internal/observability/logging"
	"news-aggregator/internal/observability/tracing"
	pkgconfig "news-aggregator/internal/pkg/config"
	"news-aggregator/internal/repository"
	"news-aggregator/internal/resilience/circuitbreaker"
	newsUC "news-aggregator/internal/usecase/news"
)

// @title           News Aggregator API
// @version         1.0
// @description     Read API over the news collected by the ingestion worker.
// @description     Returns a random, date-sorted sample of stored items.

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /
func main() {
	logger := initLogger()

	shutdownTracing := tracing.Init()
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error("failed to shut down tracing", slog.Any("error", err))
		}
	}()

	dbConfig := db.LoadConfigFromEnv()
	database := initDatabase(logger, dbConfig)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	version := getVersion()
	repo := newNewsRepo(database, dbConfig.Dialect)
	handler := setupServer(logger, database, repo, version)

	runServer(logger, handler, getPort(), version)
}

// initLogger installs the JSON logger as the process default.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// initDatabase opens the store and creates the news table if needed.
func initDatabase(logger *slog.Logger, cfg db.Config) *sql.DB {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

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

func newNewsRepo(database *sql.DB, dialect db.Dialect) repository.NewsRepository {
	cbConfig := circuitbreaker.DBConfig()
	cbConfig.IsSuccessful = db.IsBenignError
	guarded := circuitbreaker.NewDBCircuitBreakerWithConfig(database, cbConfig)

	if dialect == db.DialectPostgres {
		return pgRepo.NewNewsRepo(guarded)
	}
	return sqliteRepo.NewNewsRepo(guarded)
}

// getVersion returns the application version from environment or default.
func getVersion() string {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	return version
}

// getPort reads PORT, defaulting to 8080.
func getPort() int {
	result := pkgconfig.LoadEnvInt("PORT", 8080, func(v int) error {
		return pkgconfig.ValidateIntRange(v, 1, 65535)
	})
	for _, w := range result.Warnings {
		slog.Warn("Configuration fallback applied", slog.String("field", "port"), slog.String("warning", w))
	}
	return result.Value.(int)
}

// setupServer registers routes and wraps them in the middleware chain:
// tracing → CORS → request ID → recovery → logging → metrics.
func setupServer(logger *slog.Logger, database *sql.DB, repo repository.NewsRepository, version string) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /health", &hhttp.HealthHandler{DB: database, News: repo, Version: version})
	mux.Handle("GET /ready", &hhttp.ReadyHandler{DB: database})
	mux.Handle("GET /live", &hhttp.LiveHandler{})
	mux.Handle("GET /metrics", hhttp.MetricsHandler())
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)
	hnews.Register(mux, newsUC.Service{Repo: repo}, logger)

	corsConfig, err := middleware.LoadCORSConfig(logger)
	if err != nil {
		logger.Error("failed to load CORS configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("CORS enabled",
		slog.Bool("any_origin", corsConfig.Validator.AllowsAny()),
		slog.Any("allowed_methods", corsConfig.AllowedMethods),
		slog.Any("allowed_headers", corsConfig.AllowedHeaders),
		slog.Int("max_age", corsConfig.MaxAge))

	return hhttp.Chain(mux,
		tracing.Middleware,
		middleware.CORS(*corsConfig),
		requestid.Middleware,
		hhttp.Recover(logger),
		hhttp.Logging(logger),
		hhttp.MetricsMiddleware,
	)
}

// runServer serves until SIGINT/SIGTERM, then drains within 5 seconds.
func runServer(logger *slog.Logger, handler http.Handler, port int, version string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr := fmt.Sprintf(":%d", port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	cancel()
	logger.Info("server stopped")
}
