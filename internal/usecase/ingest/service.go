// Package ingest runs the news pipeline: collect search results per
// category, enrich them with favicons and persist them.
package ingest

import (
	"context"
	"net/http"

	"news-aggregator/internal/infra/favicon"
	"news-aggregator/internal/infra/search"
	"news-aggregator/internal/repository"
)

// Searcher returns raw news hits for a query.
type Searcher interface {
	Search(ctx context.Context, q search.Query) ([]search.Result, error)
}

// FaviconResolver resolves site icons over a caller-provided HTTP session.
type FaviconResolver interface {
	NewSession() *http.Client
	Resolve(ctx context.Context, client *http.Client, baseURL string) favicon.Resolution
}

// Config tunes one pipeline run.
type Config struct {
	// Window and MaxResults are passed to every category search.
	Window     search.Window
	MaxResults int

	// FaviconParallelism bounds concurrent favicon lookups per category.
	FaviconParallelism int

	// CategoryParallelism bounds concurrently running categories;
	// zero runs every category at once.
	CategoryParallelism int
}

func DefaultConfig() Config {
	return Config{
		Window:             search.WindowWeek,
		MaxResults:         1000,
		FaviconParallelism: 16,
	}
}

type Service struct {
	Searcher Searcher
	Favicons FaviconResolver
	NewsRepo repository.NewsRepository
	cfg      Config
}

func NewService(searcher Searcher, favicons FaviconResolver, newsRepo repository.NewsRepository, cfg Config) *Service {
	if cfg.FaviconParallelism < 1 {
		cfg.FaviconParallelism = DefaultConfig().FaviconParallelism
	}
	return &Service{
		Searcher: searcher,
		Favicons: favicons,
		NewsRepo: newsRepo,
		cfg:      cfg,
	}
}
