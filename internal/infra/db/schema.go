package db

import (
	"context"
	"database/sql"
	"fmt"
)

const sqliteNewsTable = `
CREATE TABLE IF NOT EXISTS news (
    id      INTEGER PRIMARY KEY AUTOINCREMENT,
    date    TEXT,
    title   TEXT,
    url     TEXT UNIQUE,
    image   TEXT,
    source  TEXT,
    favicon TEXT,
    body    TEXT
)`

const postgresNewsTable = `
CREATE TABLE IF NOT EXISTS news (
    id      BIGSERIAL PRIMARY KEY,
    date    TEXT,
    title   TEXT,
    url     TEXT UNIQUE,
    image   TEXT,
    source  TEXT,
    favicon TEXT,
    body    TEXT
)`

// EnsureSchema creates the news table when it does not exist yet.
// It never alters an existing table.
func EnsureSchema(ctx context.Context, db *sql.DB, dialect Dialect) error {
	stmt := sqliteNewsTable
	if dialect == DialectPostgres {
		stmt = postgresNewsTable
	}
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("EnsureSchema: %w", err)
	}
	return nil
}
