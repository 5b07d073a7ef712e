// Package postgres provides the PostgreSQL implementation of the news repository.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"news-aggregator/internal/domain/entity"
	"news-aggregator/internal/infra/db"
	"news-aggregator/internal/repository"
)

type NewsRepo struct{ db db.Querier }

func NewNewsRepo(q db.Querier) repository.NewsRepository {
	return &NewsRepo{db: q}
}

// Insert writes news; a unique_violation (SQLSTATE 23505) on url is reported
// as a duplicate.
func (repo *NewsRepo) Insert(ctx context.Context, news *entity.NewsRecord) (repository.InsertOutcome, error) {
	const query = `
INSERT INTO news (date, title, url, image, source, favicon, body)
VALUES ($1, $2, $3, $4, $5, $6, $7)
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

func (repo *NewsRepo) Sample(ctx context.Context, limit int) ([]*entity.NewsRecord, error) {
	const query = `
SELECT date, title, url, image, source, favicon, body
FROM news
ORDER BY random()
LIMIT $1
`
	rows, err := repo.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("Sample: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := make([]*entity.NewsRecord, 0, limit)
	for rows.Next() {
		var date, title, url, image, source, favicon, body sql.NullString
		if err := rows.Scan(&date, &title, &url, &image, &source, &favicon, &body); err != nil {
			return nil, fmt.Errorf("Sample: Scan: %w", err)
		}
		items = append(items, &entity.NewsRecord{
			Date:    date.String,
			Title:   title.String,
			URL:     url.String,
			Image:   image.String,
			Source:  source.String,
			Favicon: favicon.String,
			Body:    body.String,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Sample: rows.Err: %w", err)
	}

	return items, nil
}

func (repo *NewsRepo) Count(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(*) FROM news`
	var count int64
	if err := repo.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("Count: QueryRowContext: %w", err)
	}
	return count, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
