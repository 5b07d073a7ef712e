package search

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	pkgconfig "news-aggregator/internal/pkg/config"
)

const (
	ProviderDuckDuckGo = "duckduckgo"
	ProviderBing       = "bing"
)

// Config selects and tunes the search provider.
type Config struct {
	Provider   string
	Window     Window
	MaxResults int
	Timeout    time.Duration

	// RateLimit is upstream requests per second; RateBurst the burst size.
	RateLimit float64
	RateBurst int

	UserAgent string

	// Endpoint overrides the provider's base URL. Empty means production.
	Endpoint string
}

func DefaultConfig() Config {
	return Config{
		Provider:   ProviderDuckDuckGo,
		Window:     WindowWeek,
		MaxResults: 1000,
		Timeout:    15 * time.Second,
		RateLimit:  1,
		RateBurst:  2,
		UserAgent:  "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	}
}

func (c *Config) Validate() error {
	if err := pkgconfig.ValidateOneOf(c.Provider, ProviderDuckDuckGo, ProviderBing); err != nil {
		return fmt.Errorf("provider: %w", err)
	}
	if err := pkgconfig.ValidateOneOf(string(c.Window), string(WindowDay), string(WindowWeek), string(WindowMonth)); err != nil {
		return fmt.Errorf("window: %w", err)
	}
	if c.MaxResults < 1 || c.MaxResults > 5000 {
		return fmt.Errorf("max results must be between 1 and 5000, got %d", c.MaxResults)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	if c.RateLimit <= 0 {
		return fmt.Errorf("rate limit must be positive, got %v", c.RateLimit)
	}
	if c.RateBurst < 1 {
		return fmt.Errorf("rate burst must be at least 1, got %d", c.RateBurst)
	}
	return nil
}

// LoadConfigFromEnv reads SEARCH_* variables with fail-open defaults.
func LoadConfigFromEnv(logger *slog.Logger, metrics *pkgconfig.ConfigMetrics) Config {
	def := DefaultConfig()
	t := pkgconfig.NewTracker(logger, metrics)

	cfg := Config{
		Provider: strings.ToLower(t.String("SEARCH_PROVIDER", "provider", def.Provider, func(v string) error {
			return pkgconfig.ValidateOneOf(v, ProviderDuckDuckGo, ProviderBing)
		})),
		Window: Window(strings.ToLower(t.String("SEARCH_WINDOW", "window", string(def.Window), func(v string) error {
			return pkgconfig.ValidateOneOf(v, string(WindowDay), string(WindowWeek), string(WindowMonth))
		}))),
		MaxResults: t.Int("SEARCH_MAX_RESULTS", "max_results", def.MaxResults, func(v int) error {
			return pkgconfig.ValidateIntRange(v, 1, 5000)
		}),
		Timeout: t.Duration("SEARCH_TIMEOUT", "timeout", def.Timeout, func(d time.Duration) error {
			return pkgconfig.ValidateDuration(d, time.Second, 5*time.Minute)
		}),
		RateLimit: t.Float("SEARCH_RATE_LIMIT", "rate_limit", def.RateLimit, func(v float64) error {
			if v <= 0 || v > 100 {
				return fmt.Errorf("must be in (0, 100]")
			}
			return nil
		}),
		RateBurst: t.Int("SEARCH_RATE_BURST", "rate_burst", def.RateBurst, func(v int) error {
			return pkgconfig.ValidateIntRange(v, 1, 100)
		}),
		UserAgent: t.String("SEARCH_USER_AGENT", "user_agent", def.UserAgent, nil),
		Endpoint:  pkgconfig.LoadEnvString("SEARCH_ENDPOINT", ""),
	}
	t.Finish()

	return cfg
}
