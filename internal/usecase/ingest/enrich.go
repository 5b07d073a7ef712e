package ingest

import (
	"context"

	"news-aggregator/internal/domain/entity"
	"news-aggregator/internal/infra/favicon"

	"golang.org/x/sync/errgroup"
)

// Enrich sets Favicon on every record, resolving lookups concurrently over a
// single HTTP session. Records are updated in place, so length and order are
// preserved. A record whose URL has no host, or whose site failed to answer,
// keeps an empty favicon.
func (s *Service) Enrich(ctx context.Context, records []*entity.NewsRecord) []*entity.NewsRecord {
	if len(records) == 0 {
		return records
	}

	client := s.Favicons.NewSession()
	defer client.CloseIdleConnections()

	var g errgroup.Group
	g.SetLimit(s.cfg.FaviconParallelism)

	for _, rec := range records {
		base, err := favicon.BaseURL(rec.URL)
		if err != nil {
			rec.Favicon = ""
			continue
		}
		g.Go(func() error {
			rec.Favicon = s.Favicons.Resolve(ctx, client, base).URL
			return nil
		})
	}
	_ = g.Wait()

	return records
}
