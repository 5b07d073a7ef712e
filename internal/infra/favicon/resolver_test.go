package favicon

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Timeout = 2 * time.Second
	cfg.DenyPrivateIPs = false
	return cfg
}

type site struct {
	srv      *httptest.Server
	pageHits atomic.Int32
	iconHits atomic.Int32
	base     string
}

// newSite serves page at "/" with pageStatus and answers /favicon.ico with
// iconStatus.
func newSite(t *testing.T, pageStatus int, page string, iconStatus int) *site {
	t.Helper()
	s := &site{}
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		s.pageHits.Add(1)
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(pageStatus)
		_, _ = w.Write([]byte(page))
	})
	mux.HandleFunc("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		s.iconHits.Add(1)
		w.WriteHeader(iconStatus)
	})
	s.srv = httptest.NewTLSServer(mux)
	t.Cleanup(s.srv.Close)

	base, err := BaseURL(s.srv.URL + "/some/article?id=1")
	require.NoError(t, err)
	s.base = base
	return s
}

func TestResolver_Resolve(t *testing.T) {
	tests := []struct {
		name       string
		pageStatus int
		page       string
		iconStatus int
		wantStatus Status
		wantPath   string
		wantProbe  bool
	}{
		{
			name:       "relative href in html",
			pageStatus: http.StatusOK,
			page:       `<html><head><link rel="icon" href="/static/icon.png"></head></html>`,
			iconStatus: http.StatusNotFound,
			wantStatus: StatusFound,
			wantPath:   "/static/icon.png",
		},
		{
			name:       "shortcut icon with mixed case rel",
			pageStatus: http.StatusOK,
			page:       `<link rel="Shortcut ICON" href="img/fav.ico">`,
			iconStatus: http.StatusNotFound,
			wantStatus: StatusFound,
			wantPath:   "/img/fav.ico",
		},
		{
			name:       "no link falls back to favicon.ico",
			pageStatus: http.StatusOK,
			page:       `<html><head><title>x</title></head></html>`,
			iconStatus: http.StatusOK,
			wantStatus: StatusFound,
			wantPath:   "/favicon.ico",
			wantProbe:  true,
		},
		{
			name:       "no link and no favicon.ico",
			pageStatus: http.StatusOK,
			page:       `<html></html>`,
			iconStatus: http.StatusNotFound,
			wantStatus: StatusNotFound,
			wantProbe:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSite(t, tt.pageStatus, tt.page, tt.iconStatus)
			r := NewResolver(testConfig())

			res := r.Resolve(context.Background(), s.srv.Client(), s.base)

			assert.Equal(t, tt.wantStatus, res.Status)
			assert.NoError(t, res.Err)
			if tt.wantPath != "" {
				assert.Equal(t, s.base+tt.wantPath, res.URL)
			} else {
				assert.Empty(t, res.URL)
			}
			assert.Equal(t, int32(1), s.pageHits.Load())
			if tt.wantProbe {
				assert.Equal(t, int32(1), s.iconHits.Load())
			} else {
				assert.Zero(t, s.iconHits.Load())
			}
		})
	}
}

func TestResolver_ErrorPageEndsLookup(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusInternalServerError, http.StatusForbidden} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			s := newSite(t, status, `<link rel="icon" href="/ignored.png">`, http.StatusOK)
			r := NewResolver(testConfig())

			res := r.Resolve(context.Background(), s.srv.Client(), s.base)

			assert.Equal(t, StatusDegraded, res.Status)
			assert.ErrorIs(t, res.Err, ErrPageStatus)
			assert.Empty(t, res.URL)
			assert.Equal(t, int32(1), s.pageHits.Load())
			assert.Zero(t, s.iconHits.Load())
		})
	}
}

func TestResolver_AbsoluteHref(t *testing.T) {
	s := newSite(t, http.StatusOK,
		`<link rel="apple-touch-icon" href="//cdn.example.com/touch.png"><link rel="icon" href="https://other.example.com/i.svg">`,
		http.StatusNotFound)

	res := NewResolver(testConfig()).Resolve(context.Background(), s.srv.Client(), s.base)

	assert.Equal(t, StatusFound, res.Status)
	assert.Equal(t, "https://cdn.example.com/touch.png", res.URL)
}

func TestResolver_UnreachableIsDegraded(t *testing.T) {
	s := newSite(t, http.StatusOK, "", http.StatusOK)
	client := s.srv.Client()
	s.srv.Close()

	res := NewResolver(testConfig()).Resolve(context.Background(), client, s.base)

	assert.Equal(t, StatusDegraded, res.Status)
	assert.Error(t, res.Err)
	assert.Empty(t, res.URL)
}

func TestResolver_TimeoutIsDegraded(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	cfg := testConfig()
	cfg.Timeout = 50 * time.Millisecond
	base, err := BaseURL(srv.URL)
	require.NoError(t, err)

	res := NewResolver(cfg).Resolve(context.Background(), srv.Client(), base)

	assert.Equal(t, StatusDegraded, res.Status)
	assert.Error(t, res.Err)
}

func TestResolver_ConcurrentColdLookupsShareOneFetch(t *testing.T) {
	var pageHits atomic.Int32
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			pageHits.Add(1)
			time.Sleep(100 * time.Millisecond)
			_, _ = w.Write([]byte(`<link rel="icon" href="/i.png">`))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	base, err := BaseURL(srv.URL)
	require.NoError(t, err)
	r := NewResolver(testConfig())
	client := srv.Client()

	const callers = 50
	results := make([]Resolution, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = r.Resolve(context.Background(), client, base)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), pageHits.Load())
	for _, res := range results {
		assert.Equal(t, results[0], res)
	}
	assert.Equal(t, base+"/i.png", results[0].URL)
}

func TestResolver_MemoizesEveryOutcome(t *testing.T) {
	s := newSite(t, http.StatusOK, `<html></html>`, http.StatusNotFound)
	r := NewResolver(testConfig())

	first := r.Resolve(context.Background(), s.srv.Client(), s.base)
	second := r.Resolve(context.Background(), s.srv.Client(), s.base)

	assert.Equal(t, StatusNotFound, first.Status)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), s.pageHits.Load())
	assert.Equal(t, int32(1), s.iconHits.Load())
}

func TestResolver_CacheExpires(t *testing.T) {
	s := newSite(t, http.StatusOK, `<link rel="icon" href="/a.png">`, http.StatusNotFound)
	cfg := testConfig()
	cfg.CacheTTL = time.Hour
	r := NewResolver(cfg)

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	r.Resolve(context.Background(), s.srv.Client(), s.base)
	now = now.Add(30 * time.Minute)
	r.Resolve(context.Background(), s.srv.Client(), s.base)
	assert.Equal(t, int32(1), s.pageHits.Load())

	now = now.Add(time.Hour)
	r.Resolve(context.Background(), s.srv.Client(), s.base)
	assert.Equal(t, int32(2), s.pageHits.Load())
}

func TestResolver_ZeroTTLNeverExpires(t *testing.T) {
	s := newSite(t, http.StatusOK, `<link rel="icon" href="/a.png">`, http.StatusNotFound)
	cfg := testConfig()
	cfg.CacheTTL = 0
	r := NewResolver(cfg)

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	r.Resolve(context.Background(), s.srv.Client(), s.base)
	now = now.Add(365 * 24 * time.Hour)
	r.Resolve(context.Background(), s.srv.Client(), s.base)

	assert.Equal(t, int32(1), s.pageHits.Load())
}

func TestResolver_CancelledCallerDoesNotPoisonCache(t *testing.T) {
	s := newSite(t, http.StatusOK, `<link rel="icon" href="/a.png">`, http.StatusNotFound)
	r := NewResolver(testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := r.Resolve(ctx, s.srv.Client(), s.base)

	assert.Equal(t, StatusFound, res.Status)
	assert.Equal(t, s.base+"/a.png", res.URL)
}

func TestResolver_DeniesPrivateHosts(t *testing.T) {
	s := newSite(t, http.StatusOK, `<link rel="icon" href="/a.png">`, http.StatusOK)
	cfg := testConfig()
	cfg.DenyPrivateIPs = true

	res := NewResolver(cfg).Resolve(context.Background(), s.srv.Client(), s.base)

	assert.Equal(t, StatusDegraded, res.Status)
	assert.ErrorIs(t, res.Err, ErrPrivateIP)
	assert.Zero(t, s.pageHits.Load())
}

func TestResolver_CheckRedirect(t *testing.T) {
	cfg := testConfig()
	cfg.MaxRedirects = 2
	cfg.DenyPrivateIPs = true
	r := NewResolver(cfg)

	private, err := http.NewRequest(http.MethodGet, "http://10.0.0.8/", nil)
	require.NoError(t, err)
	assert.ErrorIs(t, r.checkRedirect(private, nil), ErrPrivateIP)

	public, err := http.NewRequest(http.MethodGet, "https://93.184.216.34/", nil)
	require.NoError(t, err)
	assert.NoError(t, r.checkRedirect(public, []*http.Request{private}))
	assert.ErrorIs(t, r.checkRedirect(public, []*http.Request{private, private}), ErrTooManyRedirects)
}

func TestResolver_NewSession(t *testing.T) {
	cfg := testConfig()
	r := NewResolver(cfg)
	client := r.NewSession()

	assert.Equal(t, cfg.Timeout, client.Timeout)
	assert.NotNil(t, client.CheckRedirect)
	assert.Equal(t, cfg.Parallelism, r.Parallelism())
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "found", StatusFound.String())
	assert.Equal(t, "not_found", StatusNotFound.String())
	assert.Equal(t, "degraded", StatusDegraded.String())
}
