package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"news-aggregator/internal/domain/entity"
	"news-aggregator/internal/infra/search"
	"news-aggregator/internal/observability/logging"
	"news-aggregator/internal/observability/metrics"
)

// Collect searches for category and keeps only results that pass
// NewsRecord.Validate: a title, an absolute http(s) URL and an image.
// Fields are normalized to trimmed strings. Upstream errors are returned
// as is; there is no retry.
func (s *Service) Collect(ctx context.Context, category entity.Category) ([]*entity.NewsRecord, error) {
	results, err := s.Searcher.Search(ctx, search.Query{
		Text:       category.String(),
		Window:     s.cfg.Window,
		MaxResults: s.cfg.MaxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCollectFailed, category, err)
	}

	logger := logging.FromContext(ctx)
	records := make([]*entity.NewsRecord, 0, len(results))
	for _, r := range results {
		rec := &entity.NewsRecord{
			Date:   strings.TrimSpace(r.Date),
			Title:  strings.TrimSpace(r.Title),
			URL:    strings.TrimSpace(r.URL),
			Image:  strings.TrimSpace(r.Image),
			Source: strings.TrimSpace(r.Source),
			Body:   strings.TrimSpace(r.Body),
		}
		if err := rec.Validate(); err != nil {
			var ve *entity.ValidationError
			if errors.As(err, &ve) && ve.Field != "image" {
				logger.Debug("search hit dropped",
					slog.String("url", rec.URL),
					slog.String("field", ve.Field),
					slog.String("reason", ve.Message))
			}
			continue
		}
		records = append(records, rec)
	}

	metrics.RecordRecordsCollected(category.String(), len(records))
	return records, nil
}
