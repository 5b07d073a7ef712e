package repository

import (
	"context"

	"news-aggregator/internal/domain/entity"
)

// InsertOutcome is the result of an insert-or-skip write.
type InsertOutcome int

const (
	// InsertOutcomeFailed means the write hit a storage error; the error is returned alongside.
	InsertOutcomeFailed InsertOutcome = iota
	// InsertOutcomeInserted means a new row was written.
	InsertOutcomeInserted
	// InsertOutcomeDuplicate means a row with the same URL already exists and was left unchanged.
	InsertOutcomeDuplicate
)

// String returns the label used in logs and metrics.
func (o InsertOutcome) String() string {
	switch o {
	case InsertOutcomeInserted:
		return "inserted"
	case InsertOutcomeDuplicate:
		return "duplicate"
	default:
		return "failed"
	}
}

type NewsRepository interface {
	// Insert writes the record keyed by its URL.
	// A uniqueness violation on url yields (InsertOutcomeDuplicate, nil);
	// any other storage error yields (InsertOutcomeFailed, err).
	Insert(ctx context.Context, news *entity.NewsRecord) (InsertOutcome, error)
	// Sample returns up to limit rows chosen uniformly at random without replacement.
	// Rows come back in storage order; callers sort as needed.
	Sample(ctx context.Context, limit int) ([]*entity.NewsRecord, error)
	// Count returns the number of stored rows.
	Count(ctx context.Context) (int64, error)
}
