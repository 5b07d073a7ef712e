package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ProviderDuckDuckGo, cfg.Provider)
	assert.Equal(t, WindowWeek, cfg.Window)
	assert.Equal(t, 1000, cfg.MaxResults)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "unknown provider", mutate: func(c *Config) { c.Provider = "altavista" }},
		{name: "unknown window", mutate: func(c *Config) { c.Window = "y" }},
		{name: "zero results", mutate: func(c *Config) { c.MaxResults = 0 }},
		{name: "zero timeout", mutate: func(c *Config) { c.Timeout = 0 }},
		{name: "zero rate", mutate: func(c *Config) { c.RateLimit = 0 }},
		{name: "zero burst", mutate: func(c *Config) { c.RateBurst = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("SEARCH_PROVIDER", "Bing")
	t.Setenv("SEARCH_WINDOW", "D")
	t.Setenv("SEARCH_MAX_RESULTS", "250")
	t.Setenv("SEARCH_TIMEOUT", "20s")
	t.Setenv("SEARCH_RATE_LIMIT", "0.5")

	cfg := LoadConfigFromEnv(nil, nil)

	assert.Equal(t, ProviderBing, cfg.Provider)
	assert.Equal(t, WindowDay, cfg.Window)
	assert.Equal(t, 250, cfg.MaxResults)
	assert.Equal(t, 20*time.Second, cfg.Timeout)
	assert.Equal(t, 0.5, cfg.RateLimit)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigFromEnv_InvalidFallsBack(t *testing.T) {
	t.Setenv("SEARCH_PROVIDER", "yahoo")
	t.Setenv("SEARCH_WINDOW", "year")
	t.Setenv("SEARCH_RATE_LIMIT", "-3")

	cfg := LoadConfigFromEnv(nil, nil)

	def := DefaultConfig()
	assert.Equal(t, def.Provider, cfg.Provider)
	assert.Equal(t, def.Window, cfg.Window)
	assert.Equal(t, def.RateLimit, cfg.RateLimit)
}

func TestNew(t *testing.T) {
	ddg, err := New(DefaultConfig())
	require.NoError(t, err)
	assert.IsType(t, &DuckDuckGoClient{}, ddg)

	cfg := DefaultConfig()
	cfg.Provider = ProviderBing
	bing, err := New(cfg)
	require.NoError(t, err)
	assert.IsType(t, &BingClient{}, bing)

	cfg.Provider = "gopher"
	_, err = New(cfg)
	assert.ErrorIs(t, err, ErrUnknownProvider)
}
