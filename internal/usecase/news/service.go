// Package news implements the read side of the aggregator: random sampling
// of stored news ordered newest first.
package news

import (
	"context"
	"fmt"
	"sort"

	"news-aggregator/internal/domain/entity"
	"news-aggregator/internal/repository"
)

const (
	MinLimit     = 1
	MaxLimit     = 200
	DefaultLimit = 200
)

// Service answers news queries against the repository.
type Service struct {
	Repo repository.NewsRepository
}

// ValidateLimit reports ErrInvalidLimit when limit is outside [MinLimit, MaxLimit].
func ValidateLimit(limit int) error {
	if limit < MinLimit || limit > MaxLimit {
		return ErrInvalidLimit
	}
	return nil
}

// Sample returns up to limit records drawn at random from the store,
// sorted by Date descending. Records with equal dates keep the order the
// repository returned them in.
func (s *Service) Sample(ctx context.Context, limit int) ([]*entity.NewsRecord, error) {
	if err := ValidateLimit(limit); err != nil {
		return nil, err
	}

	items, err := s.Repo.Sample(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("sample news: %w", err)
	}

	// Dates are compared as strings, the same order the providers emit them in.
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Date > items[j].Date
	})
	return items, nil
}
