package normalize

import (
	"math"

	"github.com/equitylens/equitylens/internal/contracts"
)

// Rolling-window lengths for price-derived metrics, in trading days.
const (
	window200DMA = 200
	window52Week = 252
	window6Month = 126
	windowRSI    = 14
)

// normalizePrices derives the canonical price metrics from the raw close
// series. Series too short for a window simply leave that metric absent.
func normalizePrices(s *Snapshot) contracts.Prices {
	p := contracts.Prices{}

	closes := s.Closes
	n := len(closes)

	// Last close: provider-reported beats series-derived.
	if v, ok := deref(s.LastClose); ok {
		p.LastClose = contracts.Metric(v, confMarketData, "direct:last_close")
	} else if n > 0 && contracts.IsFinite(closes[n-1]) {
		p.LastClose = contracts.Metric(closes[n-1], confDerived, "derived:series_last")
	}

	if n == 0 {
		return p
	}

	last := closes[n-1]

	// Distance from the 200-day moving average, and the above/below flag.
	if n >= window200DMA {
		ma := mean(closes[n-window200DMA:])
		if ma > 0 {
			dist := last/ma - 1
			p.PriceVs200DMA = contracts.Metric(dist, confDerived, "derived:vs_200dma")
			p.Above200DMA = contracts.Flag(dist >= 0, confDerived, "derived:vs_200dma")
		}
	}

	// 52-week percentile position and max drawdown.
	window := closes[maxInt(0, n-window52Week):]
	lo, hi := minMax(window)
	if hi > lo {
		p.Pct52Week = contracts.Metric((last-lo)/(hi-lo), confDerived, "derived:52w_percentile")
	}
	if dd, ok := maxDrawdown(window); ok {
		p.MaxDrawdown1Y = contracts.Metric(dd, confDerived, "derived:max_drawdown_1y")
	}

	p.Return20D = returnOver(closes, 20)
	p.Return60D = returnOver(closes, 60)
	p.Perf6M = returnOver(closes, window6Month)
	p.Perf12M = returnOver(closes, window52Week)

	if rsi, ok := rsi14(closes); ok {
		p.RSI14 = contracts.Metric(rsi, confDerived, "derived:rsi_14")
	}

	// Raw series passes through for the opportunity builder only.
	p.Series = make([]contracts.PricePoint, 0, n)
	for i, c := range closes {
		var ts int64
		if i < len(s.Timestamps) {
			ts = s.Timestamps[i]
		}
		p.Series = append(p.Series, contracts.PricePoint{Timestamp: ts, Close: c})
	}

	return p
}

// returnOver computes the trailing return over the past `days` closes.
func returnOver(closes []float64, days int) contracts.MetricValue {
	n := len(closes)
	if n <= days {
		return contracts.Absent()
	}
	base := closes[n-1-days]
	if base == 0 {
		return contracts.Absent()
	}
	v := closes[n-1]/base - 1
	return contracts.Metric(v, confDerived, "derived:trailing_return")
}

// rsi14 computes a simple 14-period RSI over the tail of the series.
func rsi14(closes []float64) (float64, bool) {
	n := len(closes)
	if n < windowRSI+1 {
		return 0, false
	}

	var gains, losses float64
	for i := n - windowRSI; i < n; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains += change
		} else {
			losses += -change
		}
	}

	if losses == 0 {
		return 100, true
	}

	avgGain := gains / windowRSI
	avgLoss := losses / windowRSI
	rs := avgGain / avgLoss

	return 100 - (100 / (1 + rs)), true
}

// maxDrawdown returns the deepest peak-to-trough decline as a negative
// fraction.
func maxDrawdown(closes []float64) (float64, bool) {
	if len(closes) == 0 {
		return 0, false
	}

	peak := closes[0]
	worst := 0.0
	for _, c := range closes {
		if c > peak {
			peak = c
		}
		if peak > 0 {
			dd := c/peak - 1
			if dd < worst {
				worst = dd
			}
		}
	}
	return worst, true
}

func mean(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

func minMax(vs []float64) (lo, hi float64) {
	lo = math.Inf(1)
	hi = math.Inf(-1)
	for _, v := range vs {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
