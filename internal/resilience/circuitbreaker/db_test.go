package circuitbreaker

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sony/gobreaker"
)

const insertNews = `INSERT INTO news (date, title, url, image, source, favicon, body) VALUES (?, ?, ?, ?, ?, ?, ?)`

func TestNewDBCircuitBreaker(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer func() { _ = db.Close() }()

	dcb := NewDBCircuitBreaker(db)

	if dcb.DB() != db {
		t.Error("expected db to be set")
	}
	if dcb.State() != gobreaker.StateClosed {
		t.Errorf("expected initial state to be Closed, got %s", dcb.State())
	}
}

func TestDBCircuitBreaker_QueryContext(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer func() { _ = db.Close() }()

	dcb := NewDBCircuitBreaker(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM news")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	rows, err := dcb.QueryContext(context.Background(), "SELECT COUNT(*) FROM news")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		t.Fatal("expected one row")
	}
	var count int
	if err := rows.Scan(&count); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if count != 3 {
		t.Errorf("expected count=3, got %d", count)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestDBCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer func() { _ = db.Close() }()

	dcb := NewDBCircuitBreaker(db)
	dbErr := errors.New("database is locked")
	for i := 0; i < 5; i++ {
		mock.ExpectExec(regexp.QuoteMeta(insertNews)).WillReturnError(dbErr)
	}

	for i := 0; i < 5; i++ {
		_, err := dcb.ExecContext(context.Background(), insertNews, "", "t", "u", "i", "", "", "")
		if !errors.Is(err, dbErr) {
			t.Fatalf("attempt %d: expected db error, got %v", i, err)
		}
	}

	if !dcb.IsOpen() {
		t.Fatalf("expected open circuit, got %s", dcb.State())
	}

	_, err = dcb.ExecContext(context.Background(), insertNews, "", "t", "u", "i", "", "", "")
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("expected ErrOpenState, got %v", err)
	}
}

func TestDBCircuitBreaker_BenignErrorsKeepCircuitClosed(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer func() { _ = db.Close() }()

	dupErr := errors.New("UNIQUE constraint failed: news.url")
	cfg := DBConfig()
	cfg.IsSuccessful = func(err error) bool { return err == nil || errors.Is(err, dupErr) }
	dcb := NewDBCircuitBreakerWithConfig(db, cfg)

	for i := 0; i < 6; i++ {
		mock.ExpectExec(regexp.QuoteMeta(insertNews)).WillReturnError(dupErr)
	}
	for i := 0; i < 6; i++ {
		_, err := dcb.ExecContext(context.Background(), insertNews, "", "t", "u", "i", "", "", "")
		if !errors.Is(err, dupErr) {
			t.Fatalf("attempt %d: expected duplicate error, got %v", i, err)
		}
	}

	if dcb.IsOpen() {
		t.Error("duplicate inserts must not open the circuit")
	}
}

func TestDBConfig(t *testing.T) {
	cfg := DBConfig()

	if cfg.Name != "database" {
		t.Errorf("expected Name='database', got %q", cfg.Name)
	}
	if cfg.FailureThreshold != 1.0 {
		t.Errorf("expected FailureThreshold=1.0, got %f", cfg.FailureThreshold)
	}
}
