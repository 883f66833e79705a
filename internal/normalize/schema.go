package normalize

// Snapshot is the strict intermediate schema for raw provider payloads.
// Providers with duck-typed response shapes are decoded into this struct
// once, at this boundary; the pillar scorer and opportunity builder never
// see raw provider shapes. Every field is optional, and ratio-like fields
// may arrive as either a decimal ratio or a percentage depending on the
// provider.
type Snapshot struct {
	Ticker string `json:"ticker"`

	// Reported ratios (decimal or percent, provider-dependent)
	OperatingMargin      *float64 `json:"operating_margin,omitempty"`
	ProfitMargin         *float64 `json:"profit_margin,omitempty"`
	GrossMargin          *float64 `json:"gross_margin,omitempty"`
	ReturnOnEquity       *float64 `json:"return_on_equity,omitempty"`
	ReturnOnAssets       *float64 `json:"return_on_assets,omitempty"`
	FCFOverNetIncome     *float64 `json:"fcf_over_net_income,omitempty"`
	RevenueGrowth3Y      *float64 `json:"revenue_growth_3y,omitempty"`
	EPSGrowth3Y          *float64 `json:"eps_growth_3y,omitempty"`
	ForwardRevenueGrowth *float64 `json:"forward_revenue_growth,omitempty"`
	DividendCAGR3Y       *float64 `json:"dividend_cagr_3y,omitempty"`
	PayoutRatio          *float64 `json:"payout_ratio,omitempty"`
	InsiderOwnership     *float64 `json:"insider_ownership,omitempty"`
	FCFYield             *float64 `json:"fcf_yield,omitempty"`
	EarningsYield        *float64 `json:"earnings_yield,omitempty"`
	BuybackYield         *float64 `json:"buyback_yield,omitempty"`
	DebtToEquity         *float64 `json:"debt_to_equity,omitempty"` // often reported percent-form, e.g. 154.3

	// Plain multiples and ratios (never percent-encoded)
	CurrentRatio    *float64 `json:"current_ratio,omitempty"`
	NetDebtToEBITDA *float64 `json:"net_debt_to_ebitda,omitempty"`
	InterestCover   *float64 `json:"interest_cover,omitempty"`
	TrailingPE      *float64 `json:"trailing_pe,omitempty"`
	EVToEBITDA      *float64 `json:"ev_to_ebitda,omitempty"`

	// ESG
	ESGScore         *float64 `json:"esg_score,omitempty"`         // 0..100
	ControversyLevel *float64 `json:"controversy_level,omitempty"` // 0..5

	// Proxy inputs already in [0,1]
	MarginStability  *float64 `json:"margin_stability,omitempty"`
	ROICPersistence  *float64 `json:"roic_persistence,omitempty"`
	MarketShareTrend *float64 `json:"market_share_trend,omitempty"`

	// Statement line items (absolute currency amounts)
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
	MarketCap        *float64 `json:"market_cap,omitempty"`
	ShareRepurchase  *float64 `json:"share_repurchase,omitempty"` // cash flow item, outflow is negative

	// Prices
	LastClose  *float64  `json:"last_close,omitempty"`
	Closes     []float64 `json:"closes,omitempty"`
	Timestamps []int64   `json:"timestamps,omitempty"`

	// Providers that contributed to this snapshot
	Sources []string `json:"sources,omitempty"`
}

// F is a convenience for building optional snapshot fields in callers and
// tests.
func F(v float64) *float64 {
	return &v
}
