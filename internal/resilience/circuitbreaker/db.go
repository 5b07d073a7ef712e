package circuitbreaker

import (
	"context"
	"database/sql"
	"time"

	"github.com/sony/gobreaker"
)

// DBCircuitBreaker wraps a database handle with circuit breaker protection.
// It satisfies the same Exec/Query/QueryRow surface as *sql.DB so repositories
// can take either one.
type DBCircuitBreaker struct {
	cb *CircuitBreaker
	db *sql.DB
}

// DBConfig returns configuration for the news store breaker.
// Opens after 5 consecutive failures, 30 second timeout.
func DBConfig() Config {
	return Config{
		Name:             "database",
		MaxRequests:      3,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 1.0,
		MinRequests:      5,
	}
}

// NewDBCircuitBreaker creates a database circuit breaker with DBConfig.
func NewDBCircuitBreaker(db *sql.DB) *DBCircuitBreaker {
	return NewDBCircuitBreakerWithConfig(db, DBConfig())
}

// NewDBCircuitBreakerWithConfig creates a database circuit breaker with custom configuration.
// Set cfg.IsSuccessful so that expected outcomes such as unique-constraint
// violations do not count towards tripping.
func NewDBCircuitBreakerWithConfig(db *sql.DB, cfg Config) *DBCircuitBreaker {
	return &DBCircuitBreaker{
		cb: New(cfg),
		db: db,
	}
}

// QueryContext executes a query with circuit breaker protection.
// If the circuit is open, it returns ErrOpenState immediately without hitting the database.
func (dcb *DBCircuitBreaker) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	result, err := dcb.cb.Execute(func() (interface{}, error) {
		return dcb.db.QueryContext(ctx, query, args...)
	})
	if err != nil {
		return nil, err
	}
	return result.(*sql.Rows), nil
}

// ExecContext executes a statement with circuit breaker protection.
// The driver error is returned unchanged so callers can still classify it.
func (dcb *DBCircuitBreaker) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	result, err := dcb.cb.Execute(func() (interface{}, error) {
		return dcb.db.ExecContext(ctx, query, args...)
	})
	if err != nil {
		return nil, err
	}
	return result.(sql.Result), nil
}

// QueryRowContext bypasses the breaker: sql.Row defers its error until Scan.
func (dcb *DBCircuitBreaker) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return dcb.db.QueryRowContext(ctx, query, args...)
}

// State returns the current state of the circuit breaker.
func (dcb *DBCircuitBreaker) State() gobreaker.State {
	return dcb.cb.State()
}

// IsOpen returns true if the circuit breaker is in the open state.
func (dcb *DBCircuitBreaker) IsOpen() bool {
	return dcb.cb.IsOpen()
}

// DB returns the underlying database connection.
func (dcb *DBCircuitBreaker) DB() *sql.DB {
	return dcb.db
}
