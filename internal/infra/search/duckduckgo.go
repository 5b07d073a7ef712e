package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	duckDuckGoEndpoint = "https://duckduckgo.com"
	duckDuckGoMaxPages = 40
)

var vqdPattern = regexp.MustCompile(`vqd=["']?([0-9-]+)`)

// DuckDuckGoClient searches DuckDuckGo News. Every search first obtains a
// per-query vqd token and then pages through news.js.
type DuckDuckGoClient struct {
	cfg      Config
	client   *http.Client
	endpoint string
	guard    *guard
}

func NewDuckDuckGoClient(cfg Config, client *http.Client) *DuckDuckGoClient {
	endpoint := strings.TrimSuffix(cfg.Endpoint, "/")
	if endpoint == "" {
		endpoint = duckDuckGoEndpoint
	}
	return &DuckDuckGoClient{
		cfg:      cfg,
		client:   client,
		endpoint: endpoint,
		guard:    newGuard(ProviderDuckDuckGo, cfg),
	}
}

func (c *DuckDuckGoClient) Name() string { return ProviderDuckDuckGo }

func (c *DuckDuckGoClient) Search(ctx context.Context, q Query) ([]Result, error) {
	return c.guard.run(q, func() ([]Result, error) {
		return c.search(ctx, q)
	})
}

type ddgNewsResponse struct {
	Results []ddgNewsItem `json:"results"`
	Next    string        `json:"next"`
}

type ddgNewsItem struct {
	Date    int64  `json:"date"`
	Title   string `json:"title"`
	Excerpt string `json:"excerpt"`
	URL     string `json:"url"`
	Image   string `json:"image"`
	Source  string `json:"source"`
}

func (c *DuckDuckGoClient) search(ctx context.Context, q Query) ([]Result, error) {
	vqd, err := c.token(ctx, q.Text)
	if err != nil {
		return nil, err
	}

	limit := limitOf(q, c.cfg)
	seen := make(map[string]struct{})
	out := make([]Result, 0, min(limit, 100))

	offset := 0
	for page := 0; page < duckDuckGoMaxPages && len(out) < limit; page++ {
		resp, err := c.page(ctx, q, vqd, offset)
		if err != nil {
			return nil, err
		}

		for _, item := range resp.Results {
			if item.URL == "" {
				continue
			}
			if _, dup := seen[item.URL]; dup {
				continue
			}
			seen[item.URL] = struct{}{}
			out = append(out, item.toResult())
		}

		if len(resp.Results) == 0 || resp.Next == "" {
			break
		}
		offset += len(resp.Results)
	}

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (item ddgNewsItem) toResult() Result {
	var date string
	if item.Date > 0 {
		date = time.Unix(item.Date, 0).UTC().Format(time.RFC3339)
	}
	return Result{
		Title:  strings.TrimSpace(item.Title),
		URL:    item.URL,
		Image:  item.Image,
		Date:   date,
		Source: item.Source,
		Body:   item.Excerpt,
	}
}

// token fetches the vqd value DuckDuckGo requires on news.js calls.
func (c *DuckDuckGoClient) token(ctx context.Context, text string) (string, error) {
	body, err := c.get(ctx, c.endpoint+"/?"+url.Values{"q": {text}}.Encode())
	if err != nil {
		return "", fmt.Errorf("fetch vqd token: %w", err)
	}
	m := vqdPattern.FindSubmatch(body)
	if m == nil {
		return "", ErrTokenNotFound
	}
	return string(m[1]), nil
}

func (c *DuckDuckGoClient) page(ctx context.Context, q Query, vqd string, offset int) (*ddgNewsResponse, error) {
	params := url.Values{
		"l":     {"wt-wt"},
		"o":     {"json"},
		"noamp": {"1"},
		"q":     {q.Text},
		"vqd":   {vqd},
		"p":     {"-2"}, // safe search off
	}
	if w := windowOf(q, c.cfg); w != "" {
		params.Set("df", string(w))
	}
	if offset > 0 {
		params.Set("s", strconv.Itoa(offset))
	}

	body, err := c.get(ctx, c.endpoint+"/news.js?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var resp ddgNewsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode news.js: %w", err)
	}
	return &resp, nil
}

func (c *DuckDuckGoClient) get(ctx context.Context, target string) ([]byte, error) {
	if err := c.guard.wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Referer", c.endpoint+"/")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d from %s", ErrUnexpectedStatus, resp.StatusCode, req.URL.Path)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 10*1024*1024))
}
