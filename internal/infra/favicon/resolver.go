// Package favicon finds the icon a website advertises for itself.
//
// Lookups are memoized per base URL ("https://<host>") and concurrent cold
// lookups for the same base URL share a single fetch sequence.
package favicon

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"news-aggregator/internal/observability/logging"
	"news-aggregator/internal/observability/metrics"

	"golang.org/x/sync/singleflight"
)

// Status classifies a lookup outcome.
type Status int

const (
	// StatusNotFound means the site answered but advertises no icon and has
	// no /favicon.ico.
	StatusNotFound Status = iota
	StatusFound
	// StatusDegraded means the lookup failed on transport, parsing or timeout.
	StatusDegraded
)

func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusDegraded:
		return "degraded"
	default:
		return "not_found"
	}
}

// Resolution is a memoized lookup outcome. URL is empty unless Status is
// StatusFound; Err is set only for StatusDegraded.
type Resolution struct {
	URL    string
	Status Status
	Err    error
}

type cacheEntry struct {
	res     Resolution
	expires time.Time // zero never expires
}

// Resolver resolves favicons. It is safe for concurrent use and is meant to
// be shared by every category worker in the process.
type Resolver struct {
	cfg   Config
	cache sync.Map // base URL -> cacheEntry
	group singleflight.Group
	now   func() time.Time
}

func NewResolver(cfg Config) *Resolver {
	return &Resolver{cfg: cfg, now: time.Now}
}

// Parallelism is the configured per-batch concurrency bound.
func (r *Resolver) Parallelism() int {
	return r.cfg.Parallelism
}

// NewSession returns an HTTP client meant to be shared by every lookup of one
// batch. Callers should CloseIdleConnections when the batch is done.
func (r *Resolver) NewSession() *http.Client {
	return &http.Client{
		Timeout: r.cfg.Timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 4,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		CheckRedirect: r.checkRedirect,
	}
}

func (r *Resolver) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= r.cfg.MaxRedirects {
		return fmt.Errorf("%w: %d redirects", ErrTooManyRedirects, len(via))
	}
	if err := validateHost(req.Context(), req.URL, r.cfg.DenyPrivateIPs); err != nil {
		return fmt.Errorf("redirect target validation failed: %w", err)
	}
	return nil
}

// Resolve returns the favicon for baseURL, fetching it over client on a
// cache miss. It never returns an error; failures surface as StatusDegraded.
//
// The fetch runs detached from ctx's cancellation so that one caller giving
// up does not poison the shared result for the others waiting on it.
func (r *Resolver) Resolve(ctx context.Context, client *http.Client, baseURL string) Resolution {
	if res, ok := r.lookup(baseURL); ok {
		metrics.RecordFaviconCacheHit()
		return res
	}

	v, _, _ := r.group.Do(baseURL, func() (interface{}, error) {
		if res, ok := r.lookup(baseURL); ok {
			return res, nil
		}

		start := r.now()
		res := r.fetch(context.WithoutCancel(ctx), client, baseURL)
		metrics.RecordFaviconResolution(res.Status.String(), r.now().Sub(start))

		if res.Status == StatusDegraded {
			logging.FromContext(ctx).Warn("favicon lookup degraded",
				slog.String("base_url", baseURL),
				slog.Any("error", res.Err))
		}

		entry := cacheEntry{res: res}
		if r.cfg.CacheTTL > 0 {
			entry.expires = r.now().Add(r.cfg.CacheTTL)
		}
		r.cache.Store(baseURL, entry)
		return res, nil
	})

	return v.(Resolution)
}

func (r *Resolver) lookup(baseURL string) (Resolution, bool) {
	v, ok := r.cache.Load(baseURL)
	if !ok {
		return Resolution{}, false
	}
	entry := v.(cacheEntry)
	if !entry.expires.IsZero() && r.now().After(entry.expires) {
		r.cache.Delete(baseURL)
		return Resolution{}, false
	}
	return entry.res, true
}

// fetch tries the HTML-declared icon first and /favicon.ico second. The
// fallback is only probed when the home page loaded but declares no icon.
func (r *Resolver) fetch(ctx context.Context, client *http.Client, baseURL string) Resolution {
	base, err := url.Parse(baseURL)
	if err != nil {
		return degraded(fmt.Errorf("%w: %v", ErrInvalidURL, err))
	}
	if err := validateHost(ctx, base, r.cfg.DenyPrivateIPs); err != nil {
		return degraded(err)
	}

	href, found, err := r.iconFromPage(ctx, client, baseURL)
	if err != nil {
		return degraded(err)
	}
	if found {
		ref, err := url.Parse(href)
		if err != nil {
			return degraded(fmt.Errorf("parse icon href %q: %w", href, err))
		}
		return Resolution{URL: base.ResolveReference(ref).String(), Status: StatusFound}
	}

	fallback := baseURL + "/favicon.ico"
	ok, err := r.probe(ctx, client, fallback)
	if err != nil {
		return degraded(err)
	}
	if ok {
		return Resolution{URL: fallback, Status: StatusFound}
	}
	return Resolution{Status: StatusNotFound}
}

// iconFromPage fetches the home page and extracts the declared icon href.
// A non-2xx page fails the whole lookup.
func (r *Resolver) iconFromPage(ctx context.Context, client *http.Client, pageURL string) (string, bool, error) {
	resp, err := r.get(ctx, client, pageURL)
	if err != nil {
		return "", false, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", false, fmt.Errorf("%w: %d", ErrPageStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, r.cfg.MaxBodySize+1))
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", pageURL, err)
	}
	if int64(len(body)) > r.cfg.MaxBodySize {
		// Icons are declared in <head>; a truncated document still parses.
		body = body[:r.cfg.MaxBodySize]
	}

	href, ok, err := ExtractIconHref(bytes.NewReader(body))
	if err != nil {
		return "", false, fmt.Errorf("parse %s: %w", pageURL, err)
	}
	return href, ok, nil
}

// probe reports whether target answers with a 2xx status.
func (r *Resolver) probe(ctx context.Context, client *http.Client, target string) (bool, error) {
	resp, err := r.get(ctx, client, target)
	if err != nil {
		return false, err
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
	_ = resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode <= 299, nil
}

func (r *Resolver) get(ctx context.Context, client *http.Client, target string) (*http.Response, error) {
	reqCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, target, nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", r.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,image/*;q=0.9,*/*;q=0.8")

	resp, err := client.Do(req)
	if err != nil {
		cancel()
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("GET %s: timed out after %v: %w", target, r.cfg.Timeout, err)
		}
		return nil, fmt.Errorf("GET %s: %w", target, err)
	}
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

func degraded(err error) Resolution {
	return Resolution{Status: StatusDegraded, Err: err}
}

// cancelOnClose releases the per-request timeout once the body is closed.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
