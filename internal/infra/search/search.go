// Package search queries public news search engines for recent articles.
//
// Two providers are available: DuckDuckGo's news endpoint (default) and
// Bing's News RSS feed. Both are throttled, guarded by one circuit breaker per
// query text and return results in the same shape.
package search

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"news-aggregator/internal/observability/metrics"
	"news-aggregator/internal/resilience/circuitbreaker"

	"golang.org/x/time/rate"
)

// Window restricts results by publication age.
type Window string

const (
	WindowDay   Window = "d"
	WindowWeek  Window = "w"
	WindowMonth Window = "m"
)

// Query is one search request.
type Query struct {
	Text       string
	Window     Window
	MaxResults int
}

// Result is a raw search hit. Every field except Title and URL may be empty.
// Date is RFC 3339 in UTC when known.
type Result struct {
	Title  string
	URL    string
	Image  string
	Date   string
	Source string
	Body   string
}

// Client is implemented by every provider.
type Client interface {
	Search(ctx context.Context, q Query) ([]Result, error)
	Name() string
}

// New returns the provider selected by cfg.Provider.
func New(cfg Config) (Client, error) {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	switch cfg.Provider {
	case ProviderDuckDuckGo, "":
		return NewDuckDuckGoClient(cfg, httpClient), nil
	case ProviderBing:
		return NewBingClient(cfg, httpClient), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

// guard holds the throttling and circuit breaking shared by the providers.
// The limiter is provider-wide; breakers are keyed by query text so one
// failing category never short-circuits another.
type guard struct {
	provider string
	limiter  *rate.Limiter
	breakers sync.Map // query text -> *circuitbreaker.CircuitBreaker
}

func newGuard(provider string, cfg Config) *guard {
	return &guard{
		provider: provider,
		limiter:  rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
	}
}

func (g *guard) breaker(text string) *circuitbreaker.CircuitBreaker {
	if cb, ok := g.breakers.Load(text); ok {
		return cb.(*circuitbreaker.CircuitBreaker)
	}
	cb, _ := g.breakers.LoadOrStore(text, circuitbreaker.New(circuitbreaker.SearchAPIConfig(g.provider, text)))
	return cb.(*circuitbreaker.CircuitBreaker)
}

// run executes fn through the query's breaker and records the outcome.
func (g *guard) run(q Query, fn func() ([]Result, error)) ([]Result, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, ErrEmptyQuery
	}

	start := time.Now()
	v, err := g.breaker(q.Text).Execute(func() (interface{}, error) {
		return fn()
	})
	metrics.RecordSearchRequest(g.provider, err == nil)
	if err != nil {
		return nil, fmt.Errorf("%s search %q (after %v): %w", g.provider, q.Text, time.Since(start).Round(time.Millisecond), err)
	}
	return v.([]Result), nil
}

// wait blocks until the limiter admits another upstream request.
func (g *guard) wait(ctx context.Context) error {
	return g.limiter.Wait(ctx)
}

// limitOf resolves the effective result cap for q.
func limitOf(q Query, cfg Config) int {
	if q.MaxResults > 0 {
		return q.MaxResults
	}
	return cfg.MaxResults
}

// windowOf resolves the effective window for q.
func windowOf(q Query, cfg Config) Window {
	if q.Window != "" {
		return q.Window
	}
	return cfg.Window
}
