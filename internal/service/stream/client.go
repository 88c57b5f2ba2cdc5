package stream

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"MarketRadar/internal/domain/models"
	"MarketRadar/pkg/logger"
)

const (
	defaultWebSocketURL = "wss://ws.finnhub.io"
	maxBarsPerSymbol    = 120
)

// Client maintains a Finnhub trade stream and folds trades into
// one-minute bars per subscribed symbol. It implements BarsProvider
// from the in-memory aggregate, so intraday features can be computed
// without an extra REST round trip once the stream has warmed up.
type Client struct {
	apiKey         string
	url            string
	symbols        []string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	logger         *logger.Logger

	mu   sync.RWMutex
	bars map[string][]models.Bar
	open map[string]*models.Bar

	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures Client.
type Option func(*Client)

// WithURL overrides the websocket endpoint.
func WithURL(url string) Option {
	return func(c *Client) { c.url = url }
}

// NewClient creates a streaming client for the given watchlist. An
// empty apiKey yields a client that never connects and serves no bars.
func NewClient(apiKey string, symbols []string, reconnectDelay, pingInterval time.Duration, log *logger.Logger, opts ...Option) *Client {
	if reconnectDelay <= 0 {
		reconnectDelay = 5 * time.Second
	}
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	c := &Client{
		apiKey:         apiKey,
		url:            defaultWebSocketURL,
		symbols:        symbols,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		logger:         log,
		bars:           make(map[string][]models.Bar),
		open:           make(map[string]*models.Bar),
		done:           make(chan struct{}),
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

// Start launches the connect/read loop. It returns immediately; the
// loop reconnects with a fixed delay until Stop or ctx cancellation.
func (c *Client) Start(ctx context.Context) {
	if !c.Enabled() {
		close(c.done)
		return
	}
	ctx, c.cancel = context.WithCancel(ctx)
	go c.run(ctx)
}

// Stop terminates the stream loop and waits for it to exit.
func (c *Client) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	<-c.done
}

// FetchPriceBars returns the aggregated bars for symbol, oldest first.
// The still-open minute is excluded so callers only see settled bars.
func (c *Client) FetchPriceBars(_ context.Context, symbol string) []models.Bar {
	c.mu.RLock()
	defer c.mu.RUnlock()
	src := c.bars[symbol]
	out := make([]models.Bar, len(src))
	copy(out, src)
	return out
}

// BarCount returns the number of settled bars held for symbol.
func (c *Client) BarCount(symbol string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.bars[symbol])
}

func (c *Client) run(ctx context.Context) {
	defer close(c.done)
	for {
		if err := c.connectAndRead(ctx); err != nil {
			c.logger.Warn("stream disconnected", logger.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(c.reconnectDelay):
		}
	}
}

type tradeMessage struct {
	Type string `json:"type"`
	Data []struct {
		Symbol string  `json:"s"`
		Price  float64 `json:"p"`
		Volume float64 `json:"v"`
		TS     int64   `json:"t"`
	} `json:"data"`
}

func (c *Client) connectAndRead(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url+"?token="+c.apiKey, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	for _, sym := range c.symbols {
		sub := map[string]string{"type": "subscribe", "symbol": sym}
		if err := conn.WriteJSON(sub); err != nil {
			return err
		}
	}
	c.logger.Info("stream connected", logger.Strings("symbols", c.symbols))

	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				conn.Close()
				return
			case <-ticker.C:
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	for {
		var msg tradeMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}
		if msg.Type != "trade" {
			continue
		}
		for _, t := range msg.Data {
			c.applyTrade(t.Symbol, t.Price, t.Volume, time.UnixMilli(t.TS).UTC())
		}
	}
}

// applyTrade folds one trade into the open minute bar for its symbol,
// settling the previous bar when the minute rolls over.
func (c *Client) applyTrade(symbol string, price, volume float64, ts time.Time) {
	minute := ts.Truncate(time.Minute)

	c.mu.Lock()
	defer c.mu.Unlock()

	cur := c.open[symbol]
	if cur != nil && cur.TS.Equal(minute) {
		if price > cur.High {
			cur.High = price
		}
		if price < cur.Low {
			cur.Low = price
		}
		cur.Close = price
		cur.Volume += volume
		return
	}

	if cur != nil {
		c.settleLocked(symbol, *cur)
	}
	c.open[symbol] = &models.Bar{
		TS: minute, Open: price, High: price, Low: price, Close: price, Volume: volume,
	}
}

func (c *Client) settleLocked(symbol string, bar models.Bar) {
	bars := append(c.bars[symbol], bar)
	sort.Slice(bars, func(i, j int) bool { return bars[i].TS.Before(bars[j].TS) })
	if len(bars) > maxBarsPerSymbol {
		bars = bars[len(bars)-maxBarsPerSymbol:]
	}
	c.bars[symbol] = bars
}
