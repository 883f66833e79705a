package normalize

import "math"

// Derivation formulas used when a provider-reported value is absent.
// Every formula guards its denominator; a guard failure means the
// extractor passes and the chain moves on, never a division toward
// infinity.

// Effective tax rate fallback when it cannot be determined from the
// statements, and the cap applied when it can.
const (
	defaultTaxRate = 0.21
	maxTaxRate     = 0.5
)

// interest expense below this magnitude is treated as zero
const interestEpsilon = 1e-9

// deriveROE computes net income over the average of the last two equity
// figures, or the single latest when only one is available.
func deriveROE(s *Snapshot) (float64, bool) {
	ni, ok := deref(s.NetIncome)
	if !ok {
		return 0, false
	}

	eq, haveEq := deref(s.TotalEquity)
	prior, havePrior := deref(s.PriorEquity)

	var denom float64
	switch {
	case haveEq && havePrior:
		denom = (eq + prior) / 2
	case haveEq:
		denom = eq
	case havePrior:
		denom = prior
	default:
		return 0, false
	}

	if denom == 0 {
		return 0, false
	}
	return ni / denom, true
}

// deriveROA computes net income over total assets.
func deriveROA(s *Snapshot) (float64, bool) {
	ni, ok := deref(s.NetIncome)
	if !ok {
		return 0, false
	}
	assets, ok := deref(s.TotalAssets)
	if !ok || assets == 0 {
		return 0, false
	}
	return ni / assets, true
}

// deriveFCFOverNI computes free cash flow over net income.
func deriveFCFOverNI(s *Snapshot) (float64, bool) {
	fcf, ok := deref(s.FreeCashflow)
	if !ok {
		return 0, false
	}
	ni, ok := deref(s.NetIncome)
	if !ok || ni == 0 {
		return 0, false
	}
	return fcf / ni, true
}

// deriveROIC computes NOPAT over invested capital. Invested capital at or
// below zero forces absence rather than a misleading zero.
func deriveROIC(s *Snapshot) (float64, bool) {
	opInc, ok := deref(s.OperatingIncome)
	if !ok {
		return 0, false
	}

	taxRate := defaultTaxRate
	if tax, okT := deref(s.TaxExpense); okT {
		if pretax, okP := deref(s.PretaxIncome); okP && pretax != 0 {
			taxRate = math.Max(0, math.Min(maxTaxRate, tax/pretax))
		}
	}
	nopat := opInc * (1 - taxRate)

	debt, _ := deref(s.TotalDebt)
	equity, _ := deref(s.TotalEquity)
	cash, _ := deref(s.TotalCash)
	invested := debt + equity - cash
	if invested <= 0 {
		return 0, false
	}

	return nopat / invested, true
}

// deriveDebtToEquity falls back to a total-liabilities-like debt proxy over
// equity when no direct leverage ratio is reported.
func deriveDebtToEquity(s *Snapshot) (float64, bool) {
	debt, ok := deref(s.TotalLiabilities)
	if !ok {
		debt, ok = deref(s.TotalDebt)
		if !ok {
			return 0, false
		}
	}
	equity, ok := deref(s.TotalEquity)
	if !ok || equity == 0 {
		return 0, false
	}
	return debt / equity, true
}

// deriveNetDebtToEBITDA computes (debt - cash) / EBITDA.
func deriveNetDebtToEBITDA(s *Snapshot) (float64, bool) {
	debt, ok := deref(s.TotalDebt)
	if !ok {
		return 0, false
	}
	cash, _ := deref(s.TotalCash)
	ebitda, ok := deref(s.EBITDA)
	if !ok || ebitda == 0 {
		return 0, false
	}
	return (debt - cash) / ebitda, true
}

// deriveInterestCoverage computes EBIT-or-operating-income over the
// magnitude of interest expense; near-zero interest expense means absent.
func deriveInterestCoverage(s *Snapshot) (float64, bool) {
	ebit, ok := deref(s.OperatingIncome)
	if !ok {
		return 0, false
	}
	interest, ok := deref(s.InterestExpense)
	if !ok || math.Abs(interest) < interestEpsilon {
		return 0, false
	}
	return ebit / math.Abs(interest), true
}

// deriveBuybackYield approximates buybacks from the share-repurchase cash
// flow item, only when that figure is a cash outflow (negative).
func deriveBuybackYield(s *Snapshot) (float64, bool) {
	repurchase, ok := deref(s.ShareRepurchase)
	if !ok || repurchase >= 0 {
		return 0, false
	}
	mcap, ok := deref(s.MarketCap)
	if !ok || mcap <= 0 {
		return 0, false
	}
	return math.Abs(repurchase) / mcap, true
}

// deriveFCFYield computes free cash flow over market capitalization.
func deriveFCFYield(s *Snapshot) (float64, bool) {
	fcf, ok := deref(s.FreeCashflow)
	if !ok {
		return 0, false
	}
	mcap, ok := deref(s.MarketCap)
	if !ok || mcap <= 0 {
		return 0, false
	}
	return fcf / mcap, true
}

// deriveEarningsYield computes net income over market capitalization, with
// the inverse trailing P/E as a second-order fallback input.
func deriveEarningsYield(s *Snapshot) (float64, bool) {
	if ni, ok := deref(s.NetIncome); ok {
		if mcap, okM := deref(s.MarketCap); okM && mcap > 0 {
			return ni / mcap, true
		}
	}
	if pe, ok := deref(s.TrailingPE); ok && pe != 0 {
		return 1 / pe, true
	}
	return 0, false
}

// deriveEVToEBITDA computes (market cap + debt - cash) / EBITDA.
func deriveEVToEBITDA(s *Snapshot) (float64, bool) {
	mcap, ok := deref(s.MarketCap)
	if !ok {
		return 0, false
	}
	debt, _ := deref(s.TotalDebt)
	cash, _ := deref(s.TotalCash)
	ebitda, ok := deref(s.EBITDA)
	if !ok || ebitda == 0 {
		return 0, false
	}
	return (mcap + debt - cash) / ebitda, true
}

// deriveNetMarginFromOpMargin stands in for net margin when only the
// operating margin is reported.
func deriveNetMarginFromOpMargin(s *Snapshot) (float64, bool) {
	v, ok := deref(s.OperatingMargin)
	if !ok {
		return 0, false
	}
	return asRatio(v), true
}

// deriveNetCash flags balance sheets holding more cash than debt.
func deriveNetCash(s *Snapshot) (float64, bool) {
	cash, ok := deref(s.TotalCash)
	if !ok {
		return 0, false
	}
	debt, ok := deref(s.TotalDebt)
	if !ok {
		return 0, false
	}
	if cash > debt {
		return 1, true
	}
	return 0, true
}

// deriveLowControversy maps a 0..5 controversy level onto a low-controversy
// flag: levels at or below 2 count as low.
func deriveLowControversy(s *Snapshot) (float64, bool) {
	level, ok := deref(s.ControversyLevel)
	if !ok {
		return 0, false
	}
	if level <= 2 {
		return 1, true
	}
	return 0, true
}

// deriveGrossMarginLevel converts a reported gross margin into a [0,1] moat
// proxy: 20% maps to 0, 60%+ to 1.
func deriveGrossMarginLevel(s *Snapshot) (float64, bool) {
	gm, ok := deref(s.GrossMargin)
	if !ok {
		return 0, false
	}
	v := (asRatio(gm) - 0.20) / 0.40
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	return v, true
}
