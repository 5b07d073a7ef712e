// Package sqlite provides the SQLite implementation of the news repository.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"news-aggregator/internal/domain/entity"
	"news-aggregator/internal/infra/db"
	"news-aggregator/internal/repository"
)

// NewsRepo implements the NewsRepository interface using SQLite.
type NewsRepo struct{ db db.Querier }

// NewNewsRepo creates a new SQLite-backed news repository.
// q is usually *sql.DB or a *circuitbreaker.DBCircuitBreaker around it.
func NewNewsRepo(q db.Querier) repository.NewsRepository {
	return &NewsRepo{db: q}
}

// Insert writes news unless a row with the same url exists.
func (repo *NewsRepo) Insert(ctx context.Context, news *entity.NewsRecord) (repository.InsertOutcome, error) {
	const query = `
INSERT INTO news (date, title, url, image, source, favicon, body)
VALUES (?, ?, ?, ?, ?, ?, ?)
`
	_, err := repo.db.ExecContext(ctx, query,
		nullable(news.Date), news.Title, news.URL, news.Image,
		nullable(news.Source), nullable(news.Favicon), nullable(news.Body),
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return repository.InsertOutcomeDuplicate, nil
		}
		return repository.InsertOutcomeFailed, fmt.Errorf("Insert: ExecContext: %w", err)
	}
	return repository.InsertOutcomeInserted, nil
}

// Sample returns up to limit rows picked by ORDER BY RANDOM().
func (repo *NewsRepo) Sample(ctx context.Context, limit int) ([]*entity.NewsRecord, error) {
	const query = `
SELECT date, title, url, image, source, favicon, body
FROM news
ORDER BY RANDOM()
LIMIT ?
`
	rows, err := repo.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("Sample: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := make([]*entity.NewsRecord, 0, limit)
	for rows.Next() {
		news, err := scanNews(rows)
		if err != nil {
			return nil, fmt.Errorf("Sample: Scan: %w", err)
		}
		items = append(items, news)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Sample: rows.Err: %w", err)
	}

	return items, nil
}

// Count returns the number of stored rows.
func (repo *NewsRepo) Count(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(*) FROM news`
	var count int64
	if err := repo.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("Count: QueryRowContext: %w", err)
	}
	return count, nil
}

func scanNews(rows *sql.Rows) (*entity.NewsRecord, error) {
	var date, title, url, image, source, favicon, body sql.NullString
	if err := rows.Scan(&date, &title, &url, &image, &source, &favicon, &body); err != nil {
		return nil, err
	}
	return &entity.NewsRecord{
		Date:    date.String,
		Title:   title.String,
		URL:     url.String,
		Image:   image.String,
		Source:  source.String,
		Favicon: favicon.String,
		Body:    body.String,
	}, nil
}

// nullable stores empty optional fields as NULL.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
