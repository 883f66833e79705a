package scoring

import "github.com/equitylens/equitylens/internal/contracts"

// Scorer-local sanitation domains. These are a second clamp, independent of
// the normalization layer's, so that metrics supplied directly by a caller
// bypassing normalization still reach the pillar formulas in sane ranges.
var (
	domPE           = rng{0, 80}
	domEVEBITDA     = rng{0, 40}
	domYield        = rng{-0.05, 0.15}
	domGrowth       = rng{-0.20, 0.60}
	domPerf         = rng{-0.50, 1.00}
	domRSI          = rng{0, 100}
	domDebtEquity   = rng{0, 6}
	domNetDebt      = rng{-2, 8}
	domIntCoverage  = rng{0, 80}
	domCurrentRatio = rng{0, 4}
	domMargin       = rng{-1, 1}
	domUnit         = rng{0, 1}
	domESG          = rng{0, 100}
	domPayout       = rng{-0.5, 3}
)

type rng struct {
	lo, hi float64
}

// reclamp clamps a present metric into the domain, leaving absence,
// confidence and provenance untouched.
func reclamp(m contracts.MetricValue, d rng) contracts.MetricValue {
	if !m.IsPresent() {
		return m
	}
	m.Value = clamp(m.Value, d.lo, d.hi)
	return m
}

// sanitizeFundamentals re-clamps every numeric field to its pillar domain.
func sanitizeFundamentals(f contracts.Fundamentals) contracts.Fundamentals {
	f.OperatingMargin = reclamp(f.OperatingMargin, domMargin)
	f.NetMargin = reclamp(f.NetMargin, domMargin)
	f.ROE = reclamp(f.ROE, domMargin)
	f.ROA = reclamp(f.ROA, domMargin)
	f.ROIC = reclamp(f.ROIC, domMargin)
	f.FCFOverNetIncome = reclamp(f.FCFOverNetIncome, rng{-5, 5})
	f.MarginStability = reclamp(f.MarginStability, domUnit)

	f.CurrentRatio = reclamp(f.CurrentRatio, domCurrentRatio)
	f.DebtToEquity = reclamp(f.DebtToEquity, domDebtEquity)
	f.NetDebtToEBITDA = reclamp(f.NetDebtToEBITDA, domNetDebt)
	f.InterestCoverage = reclamp(f.InterestCoverage, domIntCoverage)

	f.PE = reclamp(f.PE, domPE)
	f.EVToEBITDA = reclamp(f.EVToEBITDA, domEVEBITDA)
	f.FCFYield = reclamp(f.FCFYield, domYield)
	f.EarningsYield = reclamp(f.EarningsYield, domYield)

	f.RevenueCAGR3Y = reclamp(f.RevenueCAGR3Y, domGrowth)
	f.EPSCAGR3Y = reclamp(f.EPSCAGR3Y, domGrowth)
	f.ForwardRevenueGrowth = reclamp(f.ForwardRevenueGrowth, domGrowth)

	f.ROICPersistence = reclamp(f.ROICPersistence, domUnit)
	f.GrossMarginLevel = reclamp(f.GrossMarginLevel, domUnit)
	f.MarketShareTrend = reclamp(f.MarketShareTrend, domUnit)

	f.ESGScore = reclamp(f.ESGScore, domESG)

	f.PayoutRatio = reclamp(f.PayoutRatio, domPayout)
	f.DividendCAGR3Y = reclamp(f.DividendCAGR3Y, domGrowth)
	f.BuybackYield = reclamp(f.BuybackYield, domYield)
	f.InsiderOwnership = reclamp(f.InsiderOwnership, domUnit)

	return f
}

// sanitizePrices re-clamps price-derived metrics to their pillar domains.
func sanitizePrices(p contracts.Prices) contracts.Prices {
	p.Perf6M = reclamp(p.Perf6M, domPerf)
	p.Perf12M = reclamp(p.Perf12M, domPerf)
	p.Return20D = reclamp(p.Return20D, domPerf)
	p.Return60D = reclamp(p.Return60D, domPerf)
	p.RSI14 = reclamp(p.RSI14, domRSI)
	p.Pct52Week = reclamp(p.Pct52Week, domUnit)
	return p
}
