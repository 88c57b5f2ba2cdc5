package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"MarketRadar/internal/domain/models"
	"MarketRadar/pkg/cache"
	pkghttp "MarketRadar/pkg/http"
	"MarketRadar/pkg/logger"
)

const (
	defaultChartURL   = "https://query1.finance.yahoo.com/v8/finance/chart"
	defaultOptionsURL = "https://query2.finance.yahoo.com/v7/finance/options"

	barsCacheTTL    = time.Minute
	optionsCacheTTL = 5 * time.Minute
)

// Client fetches intraday bars and options chains from the public
// Yahoo Finance endpoints. Results are cached briefly so one poll
// cycle does not hammer the upstream per symbol. All fetches fail
// closed: empty bars or a HasOptions=false snapshot on any error.
type Client struct {
	chartURL   string
	optionsURL string
	http       *pkghttp.Client
	cache      cache.Service
	logger     *logger.Logger
}

// Option configures Client.
type Option func(*Client)

// WithChartURL overrides the chart endpoint base.
func WithChartURL(url string) Option {
	return func(c *Client) { c.chartURL = url }
}

// WithOptionsURL overrides the options endpoint base.
func WithOptionsURL(url string) Option {
	return func(c *Client) { c.optionsURL = url }
}

// NewClient creates a Yahoo Finance client. cacheSvc may be a memory
// or Redis cache; it must not be nil.
func NewClient(cacheSvc cache.Service, log *logger.Logger, opts ...Option) *Client {
	c := &Client{
		chartURL:   defaultChartURL,
		optionsURL: defaultOptionsURL,
		http:       pkghttp.NewClient(pkghttp.WithTimeout(15 * time.Second)),
		cache:      cacheSvc,
		logger:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
	} `json:"chart"`
}

// FetchPriceBars returns up to five days of 15-minute bars, oldest
// first. Rows with a missing close are dropped.
func (c *Client) FetchPriceBars(ctx context.Context, symbol string) []models.Bar {
	cacheKey := "yahoo:bars:" + symbol
	var cached []models.Bar
	if err := c.cache.Get(ctx, cacheKey, &cached); err == nil {
		return cached
	}

	var resp chartResponse
	err := c.http.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method: http.MethodGet,
		URL:    fmt.Sprintf("%s/%s", c.chartURL, symbol),
		QueryParams: map[string][]string{
			"range":    {"5d"},
			"interval": {"15m"},
		},
		Headers: map[string]string{"User-Agent": "Mozilla/5.0"},
	}, &resp)
	if err != nil {
		c.logger.Warn("bars fetch failed", logger.String("symbol", symbol), logger.Error(err))
		return nil
	}

	if len(resp.Chart.Result) == 0 || len(resp.Chart.Result[0].Indicators.Quote) == 0 {
		return nil
	}

	result := resp.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	bars := make([]models.Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == nil {
			continue
		}
		bars = append(bars, models.Bar{
			TS:     time.Unix(ts, 0).UTC(),
			Open:   deref(at(quote.Open, i)),
			High:   deref(at(quote.High, i)),
			Low:    deref(at(quote.Low, i)),
			Close:  *quote.Close[i],
			Volume: deref(at(quote.Volume, i)),
		})
	}

	if len(bars) > 0 {
		if err := c.cache.Set(ctx, cacheKey, bars, barsCacheTTL); err != nil {
			c.logger.Debug("bars cache set failed", logger.Error(err))
		}
	}
	return bars
}

type optionsResponse struct {
	OptionChain struct {
		Result []struct {
			Options []struct {
				ExpirationDate int64            `json:"expirationDate"`
				Calls          []optionContract `json:"calls"`
				Puts           []optionContract `json:"puts"`
			} `json:"options"`
		} `json:"result"`
	} `json:"optionChain"`
}

type optionContract struct {
	Volume       *float64 `json:"volume"`
	OpenInterest *float64 `json:"openInterest"`
}

// FetchOptionsSnapshot aggregates volume and open interest across the
// nearest-expiry chain. A symbol with no listed chain returns a
// snapshot with HasOptions=false.
func (c *Client) FetchOptionsSnapshot(ctx context.Context, symbol string) models.OptionsSnapshot {
	cacheKey := "yahoo:options:" + symbol
	var cached models.OptionsSnapshot
	if err := c.cache.Get(ctx, cacheKey, &cached); err == nil {
		return cached
	}

	snap := models.OptionsSnapshot{Symbol: symbol}

	var resp optionsResponse
	err := c.http.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method:  http.MethodGet,
		URL:     fmt.Sprintf("%s/%s", c.optionsURL, symbol),
		Headers: map[string]string{"User-Agent": "Mozilla/5.0"},
	}, &resp)
	if err != nil {
		c.logger.Warn("options fetch failed", logger.String("symbol", symbol), logger.Error(err))
		return snap
	}

	if len(resp.OptionChain.Result) == 0 || len(resp.OptionChain.Result[0].Options) == 0 {
		return snap
	}

	chain := resp.OptionChain.Result[0].Options[0]
	snap.HasOptions = true
	snap.Expiry = time.Unix(chain.ExpirationDate, 0).UTC().Format("2006-01-02")
	for _, call := range chain.Calls {
		snap.CallVolume += deref(call.Volume)
		snap.CallOI += deref(call.OpenInterest)
	}
	for _, put := range chain.Puts {
		snap.PutVolume += deref(put.Volume)
		snap.PutOI += deref(put.OpenInterest)
	}

	if err := c.cache.Set(ctx, cacheKey, snap, optionsCacheTTL); err != nil {
		c.logger.Debug("options cache set failed", logger.Error(err))
	}
	return snap
}

func at(vals []*float64, i int) *float64 {
	if i < len(vals) {
		return vals[i]
	}
	return nil
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
