package fmp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"MarketRadar/internal/domain/repository"
	"MarketRadar/internal/service/resilience"
	"MarketRadar/pkg/logger"
)

const defaultBaseURL = "https://financialmodelingprep.com/api/v4"

// Client talks to the Financial Modeling Prep API behind a dual
// sliding-window rate limiter and a circuit breaker. Every fetch fails
// closed: on any unrecoverable condition the result is an empty slice,
// never an error surfaced to the ingest loop.
type Client struct {
	apiKey     string
	baseURL    string
	maxRetries int
	httpClient *http.Client
	limiter    *resilience.RateLimiter
	breaker    *resilience.CircuitBreaker
	clock      resilience.Clock
	metrics    repository.Metrics
	logger     *logger.Logger
}

// Option configures Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithClock injects a clock for retry backoff.
func WithClock(clock resilience.Clock) Option {
	return func(c *Client) { c.clock = clock }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMetrics publishes the breaker state gauge after each fetch.
func WithMetrics(m repository.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates an FMP client. An empty apiKey yields a disabled
// client whose fetches all return empty.
func NewClient(
	apiKey string,
	requestTimeout time.Duration,
	maxRetries int,
	limiter *resilience.RateLimiter,
	breaker *resilience.CircuitBreaker,
	log *logger.Logger,
	opts ...Option,
) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		maxRetries: maxRetries,
		httpClient: &http.Client{Timeout: requestTimeout},
		limiter:    limiter,
		breaker:    breaker,
		clock:      resilience.SystemClock{},
		logger:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enabled reports whether the client holds an API key.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// BreakerState exposes the breaker state for telemetry.
func (c *Client) BreakerState() resilience.BreakerState {
	return c.breaker.State()
}

// FetchSenateTrades returns recent senate trading disclosures.
func (c *Client) FetchSenateTrades(ctx context.Context) []map[string]interface{} {
	return c.fetchRows(ctx, "/senate-trading-rss-feed", map[string]string{"page": "0"})
}

// FetchHouseTrades returns recent house trading disclosures.
func (c *Client) FetchHouseTrades(ctx context.Context) []map[string]interface{} {
	return c.fetchRows(ctx, "/senate-disclosure-rss-feed", map[string]string{"page": "0"})
}

// FetchInsiderTrades returns recent corporate insider transactions.
func (c *Client) FetchInsiderTrades(ctx context.Context) []map[string]interface{} {
	return c.fetchRows(ctx, "/insider-trading-rss-feed", map[string]string{"page": "0"})
}

// fetchRows performs one guarded fetch. Retriable statuses (429 and
// 5xx) back off exponentially without touching the breaker; any other
// failure trips the breaker and aborts. Only a JSON array body counts
// as a payload; a 2xx non-array still closes the breaker but yields
// empty.
func (c *Client) fetchRows(ctx context.Context, path string, params map[string]string) []map[string]interface{} {
	if !c.Enabled() {
		return nil
	}
	defer c.observeBreaker()
	if !c.breaker.CanAttempt() {
		c.logger.Warn("breaker open, skipping fetch", logger.String("path", path))
		return nil
	}

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if err := c.limiter.Acquire(ctx); err != nil {
			return nil
		}

		status, body, err := c.doRequest(ctx, path, params)
		if err != nil {
			c.breaker.Failed()
			c.logger.Error("fetch failed", logger.String("path", path), logger.Error(err))
			return nil
		}

		if status == http.StatusTooManyRequests || status >= 500 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			c.logger.Warn("retriable status, backing off",
				logger.String("path", path),
				logger.Int("status", status),
				logger.Duration("backoff", backoff))
			c.clock.Sleep(backoff)
			continue
		}

		if status < 200 || status >= 300 {
			c.breaker.Failed()
			c.logger.Error("unexpected status",
				logger.String("path", path),
				logger.Int("status", status))
			return nil
		}

		var rows []map[string]interface{}
		if err := json.Unmarshal(body, &rows); err != nil {
			// A well-formed non-array payload, usually an informational
			// object, counts as a healthy response with no rows.
			c.breaker.Succeeded()
			return nil
		}

		c.breaker.Succeeded()
		return rows
	}

	c.logger.Warn("retries exhausted", logger.String("path", path))
	return nil
}

func (c *Client) observeBreaker() {
	if c.metrics != nil {
		c.metrics.RecordBreakerState("fmp", int(c.breaker.State()))
	}
}

func (c *Client) doRequest(ctx context.Context, path string, params map[string]string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return 0, nil, err
	}

	q := req.URL.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	q.Set("apikey", c.apiKey)
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}
