package polymarket

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	pkghttp "MarketRadar/pkg/http"
	"MarketRadar/pkg/logger"
)

const defaultBaseURL = "https://gamma-api.polymarket.com"

// Client fetches prediction-market events from the Polymarket gamma
// API. The API has no server-side text search on this endpoint, so the
// query filter is applied client-side over title and slug.
type Client struct {
	baseURL string
	http    *pkghttp.Client
	logger  *logger.Logger
}

// Option configures Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// NewClient creates a Polymarket client.
func NewClient(log *logger.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		http:    pkghttp.NewClient(pkghttp.WithTimeout(15 * time.Second)),
		logger:  log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchEvents returns active events whose title or slug contains query
// (case-insensitive). Fails closed: empty on any error.
func (c *Client) FetchEvents(ctx context.Context, query string, limit int) []map[string]interface{} {
	var events []map[string]interface{}
	err := c.http.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method: http.MethodGet,
		URL:    c.baseURL + "/events",
		QueryParams: map[string][]string{
			"order":     {"id"},
			"ascending": {"false"},
			"closed":    {"false"},
			"limit":     {strconv.Itoa(limit)},
		},
	}, &events)
	if err != nil {
		c.logger.Warn("polymarket fetch failed", logger.Error(err))
		return nil
	}

	if query == "" {
		return events
	}

	needle := strings.ToLower(query)
	matched := make([]map[string]interface{}, 0, len(events))
	for _, ev := range events {
		title, _ := ev["title"].(string)
		slug, _ := ev["slug"].(string)
		if strings.Contains(strings.ToLower(title), needle) ||
			strings.Contains(strings.ToLower(slug), needle) {
			matched = append(matched, ev)
		}
	}
	return matched
}
