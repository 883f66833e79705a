// Package marketd is the client for the market-data provider: last
// quotes, valuation multiples and historical close series.
package marketd

import (
	"context"
	"fmt"
	"net/url"

	"github.com/equitylens/equitylens/pkg/config"
	"github.com/equitylens/equitylens/pkg/httputil"
	"github.com/equitylens/equitylens/pkg/logger"
)

// Client handles communication with the market-data API.
type Client struct {
	http    *httputil.Client
	logger  *logger.Logger
	baseURL string
	apiKey  string
}

// NewClient creates a market-data client with retry and a provider-side
// rate limit.
func NewClient(cfg config.ProviderConfig, log *logger.Logger) *Client {
	httpClient := httputil.NewWithTimeout(log, cfg.Timeout).
		WithRateLimit(cfg.RatePerSecond, cfg.RateBurst)

	return &Client{
		http:    httpClient,
		logger:  log,
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
	}
}

// Quote is the provider's summary payload for one ticker. Fields the
// provider omits stay nil; ratio fields may arrive in decimal or percent
// form and are disambiguated downstream.
type Quote struct {
	Ticker        string   `json:"ticker"`
	LastClose     *float64 `json:"last_close,omitempty"`
	MarketCap     *float64 `json:"market_cap,omitempty"`
	TrailingPE    *float64 `json:"trailing_pe,omitempty"`
	EVToEBITDA    *float64 `json:"ev_to_ebitda,omitempty"`
	FCFYield      *float64 `json:"fcf_yield,omitempty"`
	EarningsYield *float64 `json:"earnings_yield,omitempty"`
	BuybackYield  *float64 `json:"buyback_yield,omitempty"`
}

// Chart is the provider's historical close series, oldest first.
type Chart struct {
	Ticker     string    `json:"ticker"`
	Timestamps []int64   `json:"timestamps"`
	Closes     []float64 `json:"closes"`
}

// GetQuote fetches the quote summary for a ticker.
func (c *Client) GetQuote(ctx context.Context, ticker string) (*Quote, error) {
	endpoint := fmt.Sprintf("%s/v1/quote/%s?apikey=%s", c.baseURL, url.PathEscape(ticker), url.QueryEscape(c.apiKey))

	var quote Quote
	if err := c.http.GetJSON(ctx, endpoint, &quote); err != nil {
		return nil, fmt.Errorf("marketd quote for %s: %w", ticker, err)
	}

	c.logger.WithField("ticker", ticker).Debug("Fetched quote")
	return &quote, nil
}

// GetChart fetches up to `days` daily closes for a ticker, oldest first.
func (c *Client) GetChart(ctx context.Context, ticker string, days int) (*Chart, error) {
	endpoint := fmt.Sprintf("%s/v1/chart/%s?days=%d&apikey=%s", c.baseURL, url.PathEscape(ticker), days, url.QueryEscape(c.apiKey))

	var chart Chart
	if err := c.http.GetJSON(ctx, endpoint, &chart); err != nil {
		return nil, fmt.Errorf("marketd chart for %s: %w", ticker, err)
	}

	if len(chart.Closes) != len(chart.Timestamps) {
		return nil, fmt.Errorf("marketd chart for %s: %d closes vs %d timestamps", ticker, len(chart.Closes), len(chart.Timestamps))
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"points": len(chart.Closes),
	}).Debug("Fetched chart")
	return &chart, nil
}
