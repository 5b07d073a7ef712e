package favicon

import (
	"fmt"
	"log/slog"
	"time"

	pkgconfig "news-aggregator/internal/pkg/config"
)

// DefaultUserAgent mimics a desktop browser; several publishers reject
// requests that look automated.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Config controls favicon lookups.
type Config struct {
	// Timeout bounds each HTTP request (page fetch or /favicon.ico probe).
	Timeout time.Duration

	// MaxBodySize caps how much of a home page is parsed for <link> tags.
	MaxBodySize int64

	// Parallelism bounds concurrent lookups within one batch.
	Parallelism int

	UserAgent string

	MaxRedirects int

	// DenyPrivateIPs rejects hosts resolving to internal addresses.
	DenyPrivateIPs bool

	// CacheTTL is how long a memoized outcome is reused. Zero keeps entries
	// for the lifetime of the process.
	CacheTTL time.Duration
}

func DefaultConfig() Config {
	return Config{
		Timeout:        10 * time.Second,
		MaxBodySize:    2 * 1024 * 1024,
		Parallelism:    16,
		UserAgent:      DefaultUserAgent,
		MaxRedirects:   5,
		DenyPrivateIPs: true,
		CacheTTL:       0,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	if c.MaxBodySize < 1024 || c.MaxBodySize > 50*1024*1024 {
		return fmt.Errorf("max body size must be between 1KiB and 50MiB, got %d", c.MaxBodySize)
	}
	if c.Parallelism < 1 || c.Parallelism > 256 {
		return fmt.Errorf("parallelism must be between 1 and 256, got %d", c.Parallelism)
	}
	if c.MaxRedirects < 0 || c.MaxRedirects > 10 {
		return fmt.Errorf("max redirects must be between 0 and 10, got %d", c.MaxRedirects)
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent must not be empty")
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache TTL must not be negative, got %v", c.CacheTTL)
	}
	return nil
}

// LoadConfigFromEnv reads FAVICON_* variables. Invalid values fall back to
// their defaults with a warning.
func LoadConfigFromEnv(logger *slog.Logger, metrics *pkgconfig.ConfigMetrics) Config {
	def := DefaultConfig()
	t := pkgconfig.NewTracker(logger, metrics)

	cfg := Config{
		Timeout: t.Duration("FAVICON_TIMEOUT", "timeout", def.Timeout, func(d time.Duration) error {
			return pkgconfig.ValidateDuration(d, 100*time.Millisecond, 2*time.Minute)
		}),
		MaxBodySize: t.Int64("FAVICON_MAX_BODY_SIZE", "max_body_size", def.MaxBodySize, func(v int64) error {
			if v < 1024 || v > 50*1024*1024 {
				return fmt.Errorf("must be between 1024 and %d", 50*1024*1024)
			}
			return nil
		}),
		Parallelism: t.Int("FAVICON_PARALLELISM", "parallelism", def.Parallelism, func(v int) error {
			return pkgconfig.ValidateIntRange(v, 1, 256)
		}),
		UserAgent: t.String("FAVICON_USER_AGENT", "user_agent", def.UserAgent, nil),
		MaxRedirects: t.Int("FAVICON_MAX_REDIRECTS", "max_redirects", def.MaxRedirects, func(v int) error {
			return pkgconfig.ValidateIntRange(v, 0, 10)
		}),
		DenyPrivateIPs: t.Bool("FAVICON_DENY_PRIVATE_IPS", "deny_private_ips", def.DenyPrivateIPs),
		CacheTTL: t.Duration("FAVICON_CACHE_TTL", "cache_ttl", def.CacheTTL, func(d time.Duration) error {
			if d < 0 {
				return fmt.Errorf("must not be negative")
			}
			return nil
		}),
	}
	t.Finish()

	return cfg
}
