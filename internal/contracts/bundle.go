package contracts

// Fundamentals is the fixed, named mapping of canonical metrics produced by
// the normalization layer. Every field is independently optional.
type Fundamentals struct {
	// Quality
	OperatingMargin  MetricValue `json:"operating_margin"`
	NetMargin        MetricValue `json:"net_margin"`
	ROE              MetricValue `json:"roe"`
	ROA              MetricValue `json:"roa"`
	ROIC             MetricValue `json:"roic"`
	FCFOverNetIncome MetricValue `json:"fcf_over_net_income"`
	MarginStability  MetricValue `json:"margin_stability"` // already in [0,1]

	// Safety
	CurrentRatio     MetricValue `json:"current_ratio"`
	DebtToEquity     MetricValue `json:"debt_to_equity"`
	NetDebtToEBITDA  MetricValue `json:"net_debt_to_ebitda"`
	InterestCoverage MetricValue `json:"interest_coverage"`
	NetCash          MetricValue `json:"net_cash"` // flag

	// Valuation
	PE            MetricValue `json:"pe"`
	EVToEBITDA    MetricValue `json:"ev_to_ebitda"`
	FCFYield      MetricValue `json:"fcf_yield"`
	EarningsYield MetricValue `json:"earnings_yield"`

	// Growth
	RevenueCAGR3Y        MetricValue `json:"revenue_cagr_3y"`
	EPSCAGR3Y            MetricValue `json:"eps_cagr_3y"`
	ForwardRevenueGrowth MetricValue `json:"forward_revenue_growth"`

	// Moat proxies, already in [0,1]
	ROICPersistence  MetricValue `json:"roic_persistence"`
	GrossMarginLevel MetricValue `json:"gross_margin_level"`
	MarketShareTrend MetricValue `json:"market_share_trend"`

	// ESG
	ESGScore       MetricValue `json:"esg_score"`       // 0..100
	LowControversy MetricValue `json:"low_controversy"` // flag

	// Governance
	PayoutRatio      MetricValue `json:"payout_ratio"`
	DividendCAGR3Y   MetricValue `json:"dividend_cagr_3y"`
	BuybackYield     MetricValue `json:"buyback_yield"`
	InsiderOwnership MetricValue `json:"insider_ownership"`
}

// PricePoint is one close in the optional raw price series.
type PricePoint struct {
	Timestamp int64   `json:"t"` // unix seconds
	Close     float64 `json:"close"`
}

// Prices carries the price-derived metrics plus the optional raw series
// consumed only by the opportunity builder.
type Prices struct {
	LastClose      MetricValue `json:"last_close"`
	PriceVs200DMA  MetricValue `json:"price_vs_200dma"` // (close-ma)/ma
	Pct52Week      MetricValue `json:"pct_52_week"`     // 0 at low, 1 at high
	MaxDrawdown1Y  MetricValue `json:"max_drawdown_1y"`
	Return20D      MetricValue `json:"return_20d"`
	Return60D      MetricValue `json:"return_60d"`
	Perf6M         MetricValue `json:"perf_6m"`
	Perf12M        MetricValue `json:"perf_12m"`
	RSI14          MetricValue `json:"rsi_14"`
	Above200DMA    MetricValue `json:"above_200dma"` // flag

	Series []PricePoint `json:"series,omitempty"`
}

// DataBundle is the sole input to the scoring engine. It is assumed
// immutable for the duration of one scoring call.
type DataBundle struct {
	Ticker       string       `json:"ticker"`
	Fundamentals Fundamentals `json:"fundamentals"`
	Prices       Prices       `json:"prices"`
	SourcesUsed  []string     `json:"sources_used,omitempty"`
}
