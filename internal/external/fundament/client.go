// Package fundament is the client for the fundamentals provider:
// financial-statement line items over JSON and a scraped key-statistics
// page used as a fallback for reported ratios.
package fundament

import (
	"context"
	"fmt"
	"net/url"

	"github.com/equitylens/equitylens/pkg/config"
	"github.com/equitylens/equitylens/pkg/httputil"
	"github.com/equitylens/equitylens/pkg/logger"
)

// Client handles communication with the fundamentals provider.
type Client struct {
	http    *httputil.Client
	logger  *logger.Logger
	baseURL string
	apiKey  string
}

// NewClient creates a fundamentals client with retry and a provider-side
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

// Statements is the provider's annual-statement payload: reported ratios
// plus raw line items used for derived metrics. Fields the provider omits
// stay nil.
type Statements struct {
	Ticker string `json:"ticker"`

	// Reported ratios (decimal or percent, provider-dependent)
	OperatingMargin  *float64 `json:"operating_margin,omitempty"`
	ProfitMargin     *float64 `json:"profit_margin,omitempty"`
	GrossMargin      *float64 `json:"gross_margin,omitempty"`
	ReturnOnEquity   *float64 `json:"return_on_equity,omitempty"`
	ReturnOnAssets   *float64 `json:"return_on_assets,omitempty"`
	CurrentRatio     *float64 `json:"current_ratio,omitempty"`
	DebtToEquity     *float64 `json:"debt_to_equity,omitempty"`
	PayoutRatio      *float64 `json:"payout_ratio,omitempty"`
	RevenueGrowth3Y  *float64 `json:"revenue_growth_3y,omitempty"`
	EPSGrowth3Y      *float64 `json:"eps_growth_3y,omitempty"`
	DividendCAGR3Y   *float64 `json:"dividend_cagr_3y,omitempty"`
	FCFOverNetIncome *float64 `json:"fcf_over_net_income,omitempty"`

	// Line items (absolute currency amounts)
	NetIncome        *float64 `json:"net_income,omitempty"`
	FreeCashflow     *float64 `json:"free_cashflow,omitempty"`
	OperatingIncome  *float64 `json:"operating_income,omitempty"`
	EBITDA           *float64 `json:"ebitda,omitempty"`
	TotalDebt        *float64 `json:"total_debt,omitempty"`
	TotalLiabilities *float64 `json:"total_liabilities,omitempty"`
	TotalCash        *float64 `json:"total_cash,omitempty"`
	TotalAssets      *float64 `json:"total_assets,omitempty"`
	TotalEquity      *float64 `json:"total_equity,omitempty"`
	PriorEquity      *float64 `json:"prior_equity,omitempty"`
	TaxExpense       *float64 `json:"tax_expense,omitempty"`
	PretaxIncome     *float64 `json:"pretax_income,omitempty"`
	InterestExpense  *float64 `json:"interest_expense,omitempty"`
	ShareRepurchase  *float64 `json:"share_repurchase,omitempty"`
}

// GetStatements fetches the annual-statement payload for a ticker.
func (c *Client) GetStatements(ctx context.Context, ticker string) (*Statements, error) {
	endpoint := fmt.Sprintf("%s/v1/statements/%s?apikey=%s", c.baseURL, url.PathEscape(ticker), url.QueryEscape(c.apiKey))

	var stmts Statements
	if err := c.http.GetJSON(ctx, endpoint, &stmts); err != nil {
		return nil, fmt.Errorf("fundament statements for %s: %w", ticker, err)
	}

	c.logger.WithField("ticker", ticker).Debug("Fetched statements")
	return &stmts, nil
}
