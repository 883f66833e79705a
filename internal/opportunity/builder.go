// Package opportunity derives a time-indexed buy-opportunity indicator
// from a price series and the normalized fundamentals. It shares the
// mapping primitives with the pillar scorer but is otherwise independent
// of it; the whole series is recomputed on each call, no incremental
// state is kept.
package opportunity

import (
	"math"

	"github.com/equitylens/equitylens/internal/contracts"
	"github.com/equitylens/equitylens/internal/scoring"
)

// Rolling-window lengths, in trading days.
const (
	meanWindow  = 200
	rangeWindow = 252
)

// Component weights. Price position in the 52-week range and valuation
// carry the signal; momentum and the fundamentals composite temper it.
const (
	weightPrice        = 0.40
	weightValuation    = 0.40
	weightMomentum     = 0.15
	weightFundamentals = 0.05
)

// Multiplicative adjustments near the extremes of the 252-day range.
// Empirically tuned; keep them named so they stay tunable.
const (
	hotPctExtreme = 0.95
	hotPctHigh    = 0.90
	hotPctWarm    = 0.85
	hotMulExtreme = 0.25
	hotMulHigh    = 0.50
	hotMulWarm    = 0.75

	coldPctExtreme = 0.05
	coldPctLow     = 0.10
	coldPctCool    = 0.20
	coldMulExtreme = 1.15
	coldMulLow     = 1.10
	coldMulCool    = 1.05
)

// dampenExp flattens the top of the scale slightly before rounding.
const dampenExp = 0.95

// Build computes the opportunity value for every point of the price
// series. An empty series yields an empty result; a series shorter than
// the 200-day window scores with a zero moving-average distance rather
// than failing.
func Build(series []contracts.PricePoint, f contracts.Fundamentals) []contracts.OpportunityPoint {
	if len(series) == 0 {
		return nil
	}

	valuation := valuationSubScore(f)
	fundamentals := fundamentalsComposite(f)

	out := make([]contracts.OpportunityPoint, 0, len(series))

	var rollingSum float64
	for i, pt := range series {
		rollingSum += pt.Close
		if i >= meanWindow {
			rollingSum -= series[i-meanWindow].Close
		}

		// Distance from the 200-point mean; undefined windows count as
		// zero distance.
		var dist float64
		if i >= meanWindow-1 {
			mean := rollingSum / meanWindow
			if mean > 0 {
				dist = pt.Close/mean - 1
			}
		}
		momentum := 1 - scoring.LinearMapValue(dist, -0.20, 0.10, false)

		lo, hi := windowMinMax(series, i)
		pct := 0.5
		if hi > lo {
			pct = (pt.Close - lo) / (hi - lo)
		}
		price := 1 - pct

		opp01 := weightPrice*price +
			weightValuation*valuation +
			weightMomentum*momentum +
			weightFundamentals*fundamentals

		opp01 *= rangeAdjustment(pct)

		opp01 = math.Pow(clamp01(opp01), dampenExp)

		out = append(out, contracts.OpportunityPoint{
			Timestamp:   pt.Timestamp,
			Close:       pt.Close,
			Opportunity: int(math.Round(opp01 * 100)),
		})
	}

	return out
}

// valuationSubScore maps the best available yield through a fixed
// piecewise-linear schedule. Neither yield present scores zero.
func valuationSubScore(f contracts.Fundamentals) float64 {
	yield := f.FCFYield
	if !yield.Present {
		yield = f.EarningsYield
	}
	if !yield.Present {
		return 0
	}
	return yieldSchedule(yield.Value)
}

// yieldSchedule converts a yield into an opportunity contribution:
// zero or negative yields score nothing, anything beyond 8% is treated
// as 8%.
func yieldSchedule(y float64) float64 {
	switch {
	case y <= 0:
		return 0
	case y <= 0.02:
		return 0.3 * (y / 0.02)
	case y <= 0.04:
		return 0.3 + 0.3*((y-0.02)/0.02)
	case y <= 0.06:
		return 0.6 + 0.2*((y-0.04)/0.02)
	case y <= 0.08:
		return 0.8 + 0.2*((y-0.06)/0.02)
	default:
		return 1
	}
}

// fundamentalsComposite averages a quality proxy with a safety proxy.
func fundamentalsComposite(f contracts.Fundamentals) float64 {
	quality := (scoring.LinearMap(f.OperatingMargin, 0.05, 0.25, false) +
		scoring.LinearMap(f.FCFOverNetIncome, 0.6, 1.2, false)) / 2

	safety := currentRatioTier(f.CurrentRatio)
	if f.NetCash.Present && f.NetCash.Bool() {
		safety = clamp01(safety + 0.25)
	}

	return (quality + safety) / 2
}

// currentRatioTier buckets liquidity rather than mapping it linearly.
func currentRatioTier(cr contracts.MetricValue) float64 {
	if !cr.Present {
		return 0
	}
	switch {
	case cr.Value >= 2.0:
		return 1.0
	case cr.Value >= 1.5:
		return 0.75
	case cr.Value >= 1.0:
		return 0.5
	case cr.Value > 0:
		return 0.25
	default:
		return 0
	}
}

// rangeAdjustment penalizes prices near the top of their 252-day range
// and boosts prices near the bottom.
func rangeAdjustment(pct float64) float64 {
	switch {
	case pct >= hotPctExtreme:
		return hotMulExtreme
	case pct >= hotPctHigh:
		return hotMulHigh
	case pct >= hotPctWarm:
		return hotMulWarm
	case pct <= coldPctExtreme:
		return coldMulExtreme
	case pct <= coldPctLow:
		return coldMulLow
	case pct <= coldPctCool:
		return coldMulCool
	default:
		return 1
	}
}

func windowMinMax(series []contracts.PricePoint, i int) (lo, hi float64) {
	start := i - rangeWindow + 1
	if start < 0 {
		start = 0
	}
	lo = math.Inf(1)
	hi = math.Inf(-1)
	for _, pt := range series[start : i+1] {
		if pt.Close < lo {
			lo = pt.Close
		}
		if pt.Close > hi {
			hi = pt.Close
		}
	}
	return lo, hi
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
