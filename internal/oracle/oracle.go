// Package oracle provides the client for the external price-quote service.
// The oracle is best-effort and independently operated: callers decide
// whether missing price data is fatal (order execution) or degradable
// (valuation display).
package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/singleflight"

	"github.com/papertrade/paper-trading-backend/internal/config"
)

// Client fetches current price quotes from the intelligence service.
//
// Two HTTP clients back the two failure policies the platform needs:
// the quote client fails fast because a cash-impacting order must never
// block on a flaky upstream, while the batch client retries once because
// valuation prefers a slightly slower answer over a degraded one.
type Client struct {
	quote *resty.Client
	batch *resty.Client
	group singleflight.Group
}

// NewClient creates a Client from configuration. Both underlying clients
// share the configured base URL and bounded timeout.
func NewClient(cfg config.OracleConfig) *Client {
	quote := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout)

	batch := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(1)

	return &Client{quote: quote, batch: batch}
}

// Quote fetches the current price for a single symbol. Any transport or
// service failure is returned as an error; there is no retry and no
// fallback price on this path.
func (c *Client) Quote(ctx context.Context, symbol string) (float64, error) {
	symbol = strings.ToUpper(symbol)

	resp, err := c.quote.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		Get("/quote/" + symbol)
	if err != nil {
		return 0, fmt.Errorf("failed to reach price oracle: %w", err)
	}
	if resp.IsError() {
		return 0, fmt.Errorf("price oracle returned status %d for %s", resp.StatusCode(), symbol)
	}

	var quote Quote
	if err := json.Unmarshal(resp.Body(), &quote); err != nil {
		return 0, fmt.Errorf("failed to parse oracle quote for %s: %w", symbol, err)
	}
	if quote.Price <= 0 {
		return 0, fmt.Errorf("price not available for %s", symbol)
	}

	return quote.Price, nil
}

// Prices batch-fetches current prices for the given symbols and returns a
// symbol->price map. On any failure it returns whatever subset it could
// obtain (possibly empty) rather than an error; symbols the oracle does not
// know are simply absent from the map.
//
// Concurrent calls share a single upstream request via singleflight, since
// the tickers endpoint returns the full universe regardless of the symbols
// requested.
func (c *Client) Prices(ctx context.Context, symbols []string) map[string]float64 {
	prices := make(map[string]float64, len(symbols))
	if len(symbols) == 0 {
		return prices
	}

	tickers, err := c.tickers(ctx)
	if err != nil {
		return prices
	}

	bySymbol := make(map[string]float64, len(tickers))
	for _, t := range tickers {
		if t.Price > 0 {
			bySymbol[strings.ToUpper(t.Ticker)] = t.Price
		}
	}

	for _, symbol := range symbols {
		if price, ok := bySymbol[strings.ToUpper(symbol)]; ok {
			prices[strings.ToUpper(symbol)] = price
		}
	}

	return prices
}

// tickers fetches the full quote list, collapsing concurrent fetches into one request.
func (c *Client) tickers(ctx context.Context) ([]Ticker, error) {
	result, err, _ := c.group.Do("tickers", func() (interface{}, error) {
		resp, err := c.batch.R().
			SetContext(ctx).
			SetHeader("Accept", "application/json").
			Get("/tickers")
		if err != nil {
			return nil, fmt.Errorf("failed to reach price oracle: %w", err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("price oracle returned status %d", resp.StatusCode())
		}

		var tickers []Ticker
		if err := json.Unmarshal(resp.Body(), &tickers); err != nil {
			return nil, fmt.Errorf("failed to parse oracle tickers: %w", err)
		}

		return tickers, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]Ticker), nil
}
