// Package db opens the news store and bootstraps its single table.
// Two dialects are supported: SQLite (the default, a local file) and PostgreSQL
// (selected when DATABASE_URL is set).
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	pkgconfig "news-aggregator/internal/pkg/config"
)

// Dialect identifies the SQL flavour of the news store.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// DriverName returns the database/sql driver registered for the dialect.
func (d Dialect) DriverName() string {
	if d == DialectPostgres {
		return "pgx"
	}
	return "sqlite3"
}

const defaultSQLitePath = "news.db"

// ConnectionConfig holds database connection pool configuration.
type ConnectionConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultConnectionConfig returns the default connection pool configuration.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		MaxOpenConns:    25,
		MaxIdleConns:    10,
		ConnMaxLifetime: 1 * time.Hour,
		ConnMaxIdleTime: 30 * time.Minute,
	}
}

// Config selects the store and its pool settings.
type Config struct {
	Dialect Dialect
	DSN     string
	Pool    ConnectionConfig
}

// LoadConfigFromEnv reads DATABASE_URL (PostgreSQL) or DATABASE_PATH (SQLite file)
// plus DB_* pool variables. Invalid pool values fall back to defaults with a warning.
func LoadConfigFromEnv() Config {
	cfg := Config{Pool: getConnectionConfigFromEnv()}

	if url := pkgconfig.LoadEnvString("DATABASE_URL", ""); url != "" {
		cfg.Dialect = DialectPostgres
		cfg.DSN = url
		return cfg
	}

	cfg.Dialect = DialectSQLite
	cfg.DSN = sqliteDSN(pkgconfig.LoadEnvString("DATABASE_PATH", defaultSQLitePath))
	return cfg
}

// sqliteDSN adds a busy timeout so concurrent category writers wait for the lock
// instead of failing with SQLITE_BUSY.
func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") || strings.Contains(path, "?") {
		return path
	}
	return "file:" + path + "?_busy_timeout=5000&_journal_mode=WAL"
}

// Open creates, configures and pings a connection pool for cfg.
func Open(ctx context.Context, cfg Config) (*sql.DB, error) {
	db, err := sql.Open(cfg.Dialect.DriverName(), cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("Open: sql.Open: %w", err)
	}

	pool := cfg.Pool
	if cfg.Dialect == DialectSQLite {
		// SQLite has a single writer.
		pool.MaxOpenConns = 1
		pool.MaxIdleConns = 1
	}
	db.SetMaxOpenConns(pool.MaxOpenConns)
	db.SetMaxIdleConns(pool.MaxIdleConns)
	db.SetConnMaxLifetime(pool.ConnMaxLifetime)
	db.SetConnMaxIdleTime(pool.ConnMaxIdleTime)

	slog.Info("database connection pool configured",
		slog.String("dialect", string(cfg.Dialect)),
		slog.Int("max_open_conns", pool.MaxOpenConns),
		slog.Int("max_idle_conns", pool.MaxIdleConns),
		slog.Duration("conn_max_lifetime", pool.ConnMaxLifetime),
		slog.Duration("conn_max_idle_time", pool.ConnMaxIdleTime))

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("Open: ping: %w", err)
	}

	slog.Info("database connection established successfully")
	return db, nil
}

// getConnectionConfigFromEnv reads connection pool configuration from environment variables.
func getConnectionConfigFromEnv() ConnectionConfig {
	cfg := DefaultConnectionConfig()
	positive := func(v int) error { return pkgconfig.ValidateIntRange(v, 1, 1000) }

	results := map[string]pkgconfig.ConfigLoadResult{}
	results["DB_MAX_OPEN_CONNS"] = pkgconfig.LoadEnvInt("DB_MAX_OPEN_CONNS", cfg.MaxOpenConns, positive)
	results["DB_MAX_IDLE_CONNS"] = pkgconfig.LoadEnvInt("DB_MAX_IDLE_CONNS", cfg.MaxIdleConns, positive)
	results["DB_CONN_MAX_LIFETIME"] = pkgconfig.LoadEnvDuration("DB_CONN_MAX_LIFETIME", cfg.ConnMaxLifetime, pkgconfig.ValidatePositiveDuration)
	results["DB_CONN_MAX_IDLE_TIME"] = pkgconfig.LoadEnvDuration("DB_CONN_MAX_IDLE_TIME", cfg.ConnMaxIdleTime, pkgconfig.ValidatePositiveDuration)

	for key, r := range results {
		for _, w := range r.Warnings {
			slog.Warn("database configuration fallback applied", slog.String("field", key), slog.String("warning", w))
		}
	}

	cfg.MaxOpenConns = results["DB_MAX_OPEN_CONNS"].Value.(int)
	cfg.MaxIdleConns = results["DB_MAX_IDLE_CONNS"].Value.(int)
	cfg.ConnMaxLifetime = results["DB_CONN_MAX_LIFETIME"].Value.(time.Duration)
	cfg.ConnMaxIdleTime = results["DB_CONN_MAX_IDLE_TIME"].Value.(time.Duration)
	return cfg
}
