package ingest

import (
	"context"
	"log/slog"

	"news-aggregator/internal/domain/entity"
	"news-aggregator/internal/observability/logging"
	"news-aggregator/internal/observability/metrics"
	"news-aggregator/internal/repository"
)

// PersistStats counts insert outcomes for one batch.
type PersistStats struct {
	Inserted   int
	Duplicates int
	Failed     int
}

// Persist inserts records one by one. Duplicates are skipped and a failed
// write never stops the rest of the batch. There is no batch atomicity.
func (s *Service) Persist(ctx context.Context, records []*entity.NewsRecord) PersistStats {
	logger := logging.FromContext(ctx)
	var stats PersistStats

	for _, rec := range records {
		outcome, err := s.NewsRepo.Insert(ctx, rec)
		metrics.RecordPersistOutcome(outcome.String())

		switch outcome {
		case repository.InsertOutcomeInserted:
			stats.Inserted++
		case repository.InsertOutcomeDuplicate:
			stats.Duplicates++
			logger.Debug("duplicate entry skipped", slog.String("url", rec.URL))
		default:
			stats.Failed++
			logger.Warn("failed to persist news record",
				slog.String("url", rec.URL),
				slog.Any("error", err))
		}
	}

	return stats
}
