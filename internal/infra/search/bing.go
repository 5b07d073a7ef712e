package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

const (
	bingEndpoint = "https://www.bing.com"
	bingPageSize = 50
	bingMaxPages = 20
)

// bingIntervals maps a window onto Bing's qft interval filter.
var bingIntervals = map[Window]string{
	WindowDay:   "7",
	WindowWeek:  "8",
	WindowMonth: "9",
}

// BingClient searches Bing News through its RSS output.
type BingClient struct {
	cfg      Config
	client   *http.Client
	endpoint string
	guard    *guard
}

func NewBingClient(cfg Config, client *http.Client) *BingClient {
	endpoint := strings.TrimSuffix(cfg.Endpoint, "/")
	if endpoint == "" {
		endpoint = bingEndpoint
	}
	return &BingClient{
		cfg:      cfg,
		client:   client,
		endpoint: endpoint,
		guard:    newGuard(ProviderBing, cfg),
	}
}

func (c *BingClient) Name() string { return ProviderBing }

func (c *BingClient) Search(ctx context.Context, q Query) ([]Result, error) {
	return c.guard.run(q, func() ([]Result, error) {
		return c.search(ctx, q)
	})
}

func (c *BingClient) search(ctx context.Context, q Query) ([]Result, error) {
	limit := limitOf(q, c.cfg)
	seen := make(map[string]struct{})
	out := make([]Result, 0, min(limit, bingPageSize))

	for page := 0; page < bingMaxPages && len(out) < limit; page++ {
		feed, err := c.page(ctx, q, page*bingPageSize)
		if err != nil {
			return nil, err
		}

		added := 0
		for _, item := range feed.Items {
			r := bingResult(item)
			if r.URL == "" {
				continue
			}
			if _, dup := seen[r.URL]; dup {
				continue
			}
			seen[r.URL] = struct{}{}
			out = append(out, r)
			added++
		}

		// Bing repeats its last page instead of returning nothing.
		if added == 0 || len(feed.Items) < bingPageSize {
			break
		}
	}

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (c *BingClient) page(ctx context.Context, q Query, offset int) (*gofeed.Feed, error) {
	if err := c.guard.wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{
		"q":      {q.Text},
		"format": {"rss"},
		"count":  {strconv.Itoa(bingPageSize)},
	}
	if offset > 0 {
		params.Set("first", strconv.Itoa(offset+1))
	}
	if interval, ok := bingIntervals[windowOf(q, c.cfg)]; ok {
		params.Set("qft", fmt.Sprintf("interval=%q", interval))
	}

	fp := gofeed.NewParser()
	fp.UserAgent = c.cfg.UserAgent
	fp.Client = c.client

	feed, err := fp.ParseURLWithContext(c.endpoint+"/news/search?"+params.Encode(), ctx)
	if err != nil {
		var httpErr gofeed.HTTPError
		if errors.As(err, &httpErr) {
			return nil, fmt.Errorf("%w: %d from bing", ErrUnexpectedStatus, httpErr.StatusCode)
		}
		return nil, fmt.Errorf("parse bing feed: %w", err)
	}
	return feed, nil
}

func bingResult(item *gofeed.Item) Result {
	var date string
	if item.PublishedParsed != nil {
		date = item.PublishedParsed.UTC().Format(time.RFC3339)
	}
	return Result{
		Title:  strings.TrimSpace(item.Title),
		URL:    unwrapBingLink(item.Link),
		Image:  extensionValue(item, "News", "Image"),
		Date:   date,
		Source: extensionValue(item, "News", "Source"),
		Body:   strings.TrimSpace(item.Description),
	}
}

// unwrapBingLink returns the publisher URL carried in the url parameter of
// Bing's apiclick tracking links; other links are returned unchanged.
func unwrapBingLink(link string) string {
	link = strings.TrimSpace(link)
	u, err := url.Parse(link)
	if err != nil {
		return link
	}
	if !strings.Contains(strings.ToLower(u.Path), "apiclick") {
		return link
	}
	if target := u.Query().Get("url"); target != "" {
		return target
	}
	return link
}

// extensionValue reads a namespaced element such as <News:Image>. Prefixes
// and names are matched case-insensitively.
func extensionValue(item *gofeed.Item, prefix, name string) string {
	for ns, elems := range item.Extensions {
		if !strings.EqualFold(ns, prefix) {
			continue
		}
		for key, values := range elems {
			if strings.EqualFold(key, name) && len(values) > 0 {
				return strings.TrimSpace(values[0].Value)
			}
		}
	}
	return ""
}
