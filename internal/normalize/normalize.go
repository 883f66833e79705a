package normalize

import (
	"errors"
	"strings"

	"github.com/equitylens/equitylens/internal/contracts"
)

// Static confidence weights per extractor class. Provider-reported values
// outrank derived ones, scraped values sit in between.
const (
	confMarketData = 0.45
	confStatements = 0.40
	confScraped    = 0.30
	confDerived    = 0.25
)

// Sane ranges applied at the normalization boundary. These are wider than
// the scoring-side clamps; they only cut off provider garbage, not shape
// the score.
var (
	rngMargin    = rng{-1, 1}
	rngReturnPct = rng{-1, 1}
	rngGrowth    = rng{-1, 1}
	rngUnit      = rng{0, 1}
	rngLeverage  = rng{-5, 5}
	rngNetDebt   = rng{-20, 50}
	rngCoverage  = rng{-50, 200}
	rngCurrent   = rng{0, 10}
	rngPE        = rng{0, 200}
	rngEVEBITDA  = rng{-100, 200}
	rngFCFYield  = rng{-0.05, 0.08}
	rngYield     = rng{-0.5, 0.5}
	rngBuyback   = rng{-0.25, 0.25}
	rngPayout    = rng{-0.5, 3}
	rngESG       = rng{0, 100}
)

// Bundle converts a raw provider snapshot into the canonical data bundle
// consumed by the pillar scorer and the opportunity builder. Missing or
// malformed fields degrade to absence; the only errors are structural
// (nil snapshot or missing ticker).
func Bundle(s *Snapshot) (contracts.DataBundle, error) {
	if s == nil {
		return contracts.DataBundle{}, errors.New("normalize: nil snapshot")
	}
	ticker := strings.ToUpper(strings.TrimSpace(s.Ticker))
	if ticker == "" {
		return contracts.DataBundle{}, errors.New("normalize: snapshot has no ticker")
	}

	return contracts.DataBundle{
		Ticker:       ticker,
		Fundamentals: normalizeFundamentals(s),
		Prices:       normalizePrices(s),
		SourcesUsed:  append([]string(nil), s.Sources...),
	}, nil
}

// normalizeFundamentals resolves every fundamental metric through its
// fallback chain: reported values first, derivations from statement line
// items after.
func normalizeFundamentals(s *Snapshot) contracts.Fundamentals {
	return contracts.Fundamentals{
		// Quality
		OperatingMargin: resolve(s, rngMargin,
			directPercent("operating_margin", confStatements, func(s *Snapshot) *float64 { return s.OperatingMargin }),
		),
		NetMargin: resolve(s, rngMargin,
			directPercent("profit_margin", confStatements, func(s *Snapshot) *float64 { return s.ProfitMargin }),
			derived("net_margin_from_op_margin", confDerived, deriveNetMarginFromOpMargin),
		),
		ROE: resolve(s, rngReturnPct,
			directPercent("return_on_equity", confStatements, func(s *Snapshot) *float64 { return s.ReturnOnEquity }),
			derived("roe", confDerived, deriveROE),
		),
		ROA: resolve(s, rngReturnPct,
			directPercent("return_on_assets", confStatements, func(s *Snapshot) *float64 { return s.ReturnOnAssets }),
			derived("roa", confDerived, deriveROA),
		),
		ROIC: resolve(s, rngReturnPct,
			derived("roic", confDerived, deriveROIC),
		),
		FCFOverNetIncome: resolve(s, rng{-5, 5},
			directPercent("fcf_over_net_income", confStatements, func(s *Snapshot) *float64 { return s.FCFOverNetIncome }),
			derived("fcf_over_net_income", confDerived, deriveFCFOverNI),
		),
		MarginStability: resolve(s, rngUnit,
			direct("margin_stability", confScraped, func(s *Snapshot) *float64 { return s.MarginStability }),
		),

		// Safety
		CurrentRatio: resolve(s, rngCurrent,
			direct("current_ratio", confStatements, func(s *Snapshot) *float64 { return s.CurrentRatio }),
		),
		DebtToEquity: resolve(s, rngLeverage,
			directPercent("debt_to_equity", confStatements, func(s *Snapshot) *float64 { return s.DebtToEquity }),
			derived("debt_to_equity", confDerived, deriveDebtToEquity),
		),
		NetDebtToEBITDA: resolve(s, rngNetDebt,
			direct("net_debt_to_ebitda", confStatements, func(s *Snapshot) *float64 { return s.NetDebtToEBITDA }),
			derived("net_debt_to_ebitda", confDerived, deriveNetDebtToEBITDA),
		),
		InterestCoverage: resolve(s, rngCoverage,
			direct("interest_cover", confStatements, func(s *Snapshot) *float64 { return s.InterestCover }),
			derived("interest_coverage", confDerived, deriveInterestCoverage),
		),
		NetCash: resolve(s, rngUnit,
			derived("net_cash", confDerived, deriveNetCash),
		),

		// Valuation
		PE: resolve(s, rngPE,
			direct("trailing_pe", confMarketData, func(s *Snapshot) *float64 { return s.TrailingPE }),
		),
		EVToEBITDA: resolve(s, rngEVEBITDA,
			direct("ev_to_ebitda", confMarketData, func(s *Snapshot) *float64 { return s.EVToEBITDA }),
			derived("ev_to_ebitda", confDerived, deriveEVToEBITDA),
		),
		FCFYield: resolve(s, rngFCFYield,
			directPercent("fcf_yield", confMarketData, func(s *Snapshot) *float64 { return s.FCFYield }),
			derived("fcf_yield", confDerived, deriveFCFYield),
		),
		EarningsYield: resolve(s, rngYield,
			directPercent("earnings_yield", confMarketData, func(s *Snapshot) *float64 { return s.EarningsYield }),
			derived("earnings_yield", confDerived, deriveEarningsYield),
		),

		// Growth
		RevenueCAGR3Y: resolve(s, rngGrowth,
			directPercent("revenue_growth_3y", confStatements, func(s *Snapshot) *float64 { return s.RevenueGrowth3Y }),
		),
		EPSCAGR3Y: resolve(s, rngGrowth,
			directPercent("eps_growth_3y", confStatements, func(s *Snapshot) *float64 { return s.EPSGrowth3Y }),
		),
		ForwardRevenueGrowth: resolve(s, rngGrowth,
			directPercent("forward_revenue_growth", confScraped, func(s *Snapshot) *float64 { return s.ForwardRevenueGrowth }),
		),

		// Moat
		ROICPersistence: resolve(s, rngUnit,
			direct("roic_persistence", confScraped, func(s *Snapshot) *float64 { return s.ROICPersistence }),
		),
		GrossMarginLevel: resolve(s, rngUnit,
			derived("gross_margin_level", confDerived, deriveGrossMarginLevel),
		),
		MarketShareTrend: resolve(s, rngUnit,
			direct("market_share_trend", confScraped, func(s *Snapshot) *float64 { return s.MarketShareTrend }),
		),

		// ESG
		ESGScore: resolve(s, rngESG,
			direct("esg_score", confScraped, func(s *Snapshot) *float64 { return s.ESGScore }),
		),
		LowControversy: resolve(s, rngUnit,
			derived("low_controversy", confDerived, deriveLowControversy),
		),

		// Governance
		PayoutRatio: resolve(s, rngPayout,
			directPercent("payout_ratio", confStatements, func(s *Snapshot) *float64 { return s.PayoutRatio }),
		),
		DividendCAGR3Y: resolve(s, rngGrowth,
			directPercent("dividend_cagr_3y", confStatements, func(s *Snapshot) *float64 { return s.DividendCAGR3Y }),
		),
		BuybackYield: resolve(s, rngBuyback,
			directPercent("buyback_yield", confMarketData, func(s *Snapshot) *float64 { return s.BuybackYield }),
			derived("buyback_yield", confDerived, deriveBuybackYield),
		),
		InsiderOwnership: resolve(s, rngUnit,
			directPercent("insider_ownership", confScraped, func(s *Snapshot) *float64 { return s.InsiderOwnership }),
		),
	}
}
