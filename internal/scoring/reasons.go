package scoring

import "github.com/equitylens/equitylens/internal/contracts"

// Thresholds behind the reason and red-flag rules.
const (
	reasonQualityShare  = 0.75 // quality subscore share of its max
	reasonROICHigh      = 0.15
	reasonStabilityHigh = 0.6
	flagCashConversion  = 0.5
	flagLeverage        = 3.5
	flagIntCoverage     = 2.0
	reasonFCFYieldHigh  = 0.08
	flagRichPE          = 40.0
	reasonEPSGrowthHigh = 0.15
	reasonBuybackStrong = 0.03
	flagPayoutAbove     = 1.0
)

// FallbackReason is emitted when no positive rule triggers.
const FallbackReason = "insufficient data"

// evaluateReasons runs each independent rule in a fixed order over the
// subscores and raw metrics. Rules only fire on present values; the caller
// caps the output lists.
func evaluateReasons(s contracts.PillarScores, f contracts.Fundamentals) (positive, flags []string) {
	if s.Quality >= reasonQualityShare*contracts.MaxQuality {
		positive = append(positive, "profitable and efficient operations")
	}

	if f.ROIC.IsPresent() && f.ROIC.Value > reasonROICHigh &&
		f.MarginStability.IsPresent() && f.MarginStability.Value > reasonStabilityHigh {
		positive = append(positive, "high and durable ROIC")
	}

	if f.FCFOverNetIncome.IsPresent() && f.FCFOverNetIncome.Value < flagCashConversion {
		flags = append(flags, "weak cash conversion")
	}

	if f.NetDebtToEBITDA.IsPresent() && f.NetDebtToEBITDA.Value > flagLeverage {
		flags = append(flags, "high leverage")
	}

	if f.InterestCoverage.IsPresent() && f.InterestCoverage.Value < flagIntCoverage {
		flags = append(flags, "thin interest coverage")
	}

	if f.FCFYield.IsPresent() && f.FCFYield.Value >= reasonFCFYieldHigh {
		positive = append(positive, "attractive free-cash-flow yield")
	}

	if f.PE.IsPresent() && f.PE.Value > flagRichPE {
		flags = append(flags, "rich valuation multiple")
	}

	if f.EPSCAGR3Y.IsPresent() && f.EPSCAGR3Y.Value > reasonEPSGrowthHigh {
		positive = append(positive, "sustained EPS growth")
	}

	if f.RevenueCAGR3Y.IsPresent() && f.RevenueCAGR3Y.Value < 0 {
		flags = append(flags, "revenue decline")
	}

	if f.BuybackYield.IsPresent() && f.BuybackYield.Value > reasonBuybackStrong {
		positive = append(positive, "meaningful buybacks")
	}

	if f.PayoutRatio.IsPresent() && f.PayoutRatio.Value > flagPayoutAbove {
		flags = append(flags, "payout above 100% (dividend risk)")
	}

	if len(positive) == 0 {
		positive = append(positive, FallbackReason)
	}

	return positive, flags
}

// CapList trims a reason list to at most n entries, preserving order.
func CapList(list []string, n int) []string {
	if len(list) <= n {
		return list
	}
	return list[:n]
}
