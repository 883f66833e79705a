package normalize

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBundleStructuralErrors(t *testing.T) {
	_, err := Bundle(nil)
	assert.Error(t, err)

	_, err = Bundle(&Snapshot{Ticker: "   "})
	assert.Error(t, err)
}

func TestBundleUppercasesTicker(t *testing.T) {
	b, err := Bundle(&Snapshot{Ticker: " aapl "})
	require.NoError(t, err)
	assert.Equal(t, "AAPL", b.Ticker)
}

func TestBundleEmptySnapshotIsTotal(t *testing.T) {
	b, err := Bundle(&Snapshot{Ticker: "MSFT"})
	require.NoError(t, err)

	assert.False(t, b.Fundamentals.ROE.Present)
	assert.False(t, b.Fundamentals.PE.Present)
	assert.False(t, b.Prices.RSI14.Present)
	assert.Empty(t, b.Prices.Series)
}

func TestUnitDisambiguationIsIdempotent(t *testing.T) {
	asDecimal, err := Bundle(&Snapshot{Ticker: "X", ReturnOnEquity: F(0.154)})
	require.NoError(t, err)
	asPercent, err := Bundle(&Snapshot{Ticker: "X", ReturnOnEquity: F(15.4)})
	require.NoError(t, err)

	assert.InDelta(t, 0.154, asDecimal.Fundamentals.ROE.Value, 1e-12)
	assert.InDelta(t, asDecimal.Fundamentals.ROE.Value, asPercent.Fundamentals.ROE.Value, 1e-12)
}

func TestUnitDisambiguationThreshold(t *testing.T) {
	// 4.8 sits below the threshold and passes through untouched even
	// though it is a wildly high ROE; the range clamp handles it, not
	// the percent rule.
	b, err := Bundle(&Snapshot{Ticker: "X", ReturnOnEquity: F(4.8)})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, b.Fundamentals.ROE.Value, 1e-12)

	b, err = Bundle(&Snapshot{Ticker: "X", ReturnOnEquity: F(-5.5)})
	require.NoError(t, err)
	assert.InDelta(t, -0.055, b.Fundamentals.ROE.Value, 1e-12)
}

func TestDebtToEquityPercentForm(t *testing.T) {
	// Providers usually report D/E percent-form (154.3 meaning 1.543x),
	// so the field goes through the percent rule like the margins.
	b, err := Bundle(&Snapshot{Ticker: "X", DebtToEquity: F(154.3)})
	require.NoError(t, err)
	assert.InDelta(t, 1.543, b.Fundamentals.DebtToEquity.Value, 1e-12)
	assert.Equal(t, "direct:debt_to_equity", b.Fundamentals.DebtToEquity.Source)

	// A ratio-form 1.5 sits below the threshold and is untouched.
	b, err = Bundle(&Snapshot{Ticker: "X", DebtToEquity: F(1.5)})
	require.NoError(t, err)
	assert.InDelta(t, 1.5, b.Fundamentals.DebtToEquity.Value, 1e-12)
}

func TestDirectBeatsDerived(t *testing.T) {
	s := &Snapshot{
		Ticker:         "X",
		ReturnOnEquity: F(22.0),
		NetIncome:      F(100),
		TotalEquity:    F(1000),
	}
	b, err := Bundle(s)
	require.NoError(t, err)

	assert.InDelta(t, 0.22, b.Fundamentals.ROE.Value, 1e-12)
	assert.Equal(t, "direct:return_on_equity", b.Fundamentals.ROE.Source)
	assert.InDelta(t, confStatements, b.Fundamentals.ROE.Confidence, 1e-12)
}

func TestDerivedFallbackFires(t *testing.T) {
	s := &Snapshot{
		Ticker:      "X",
		NetIncome:   F(100),
		TotalEquity: F(1000),
		PriorEquity: F(600),
	}
	b, err := Bundle(s)
	require.NoError(t, err)

	// average equity (1000+600)/2 = 800
	assert.InDelta(t, 0.125, b.Fundamentals.ROE.Value, 1e-12)
	assert.Equal(t, "derived:roe", b.Fundamentals.ROE.Source)
	assert.InDelta(t, confDerived, b.Fundamentals.ROE.Confidence, 1e-12)
}

func TestNetMarginFallsBackToOperatingMargin(t *testing.T) {
	b, err := Bundle(&Snapshot{Ticker: "X", OperatingMargin: F(18.0)})
	require.NoError(t, err)

	assert.InDelta(t, 0.18, b.Fundamentals.OperatingMargin.Value, 1e-12)
	require.True(t, b.Fundamentals.NetMargin.Present)
	assert.InDelta(t, 0.18, b.Fundamentals.NetMargin.Value, 1e-12)
	assert.Equal(t, "derived:net_margin_from_op_margin", b.Fundamentals.NetMargin.Source)
}

func TestROICGuardsInvestedCapital(t *testing.T) {
	s := &Snapshot{
		Ticker:          "X",
		OperatingIncome: F(500),
		TotalDebt:       F(100),
		TotalEquity:     F(200),
		TotalCash:       F(900), // invested capital goes negative
	}
	b, err := Bundle(s)
	require.NoError(t, err)
	assert.False(t, b.Fundamentals.ROIC.Present)
}

func TestROICUsesEffectiveTaxRate(t *testing.T) {
	s := &Snapshot{
		Ticker:          "X",
		OperatingIncome: F(1000),
		TaxExpense:      F(300),
		PretaxIncome:    F(1000),
		TotalDebt:       F(2000),
		TotalEquity:     F(3000),
		TotalCash:       F(1000),
	}
	b, err := Bundle(s)
	require.NoError(t, err)

	// NOPAT = 1000 * (1-0.30) = 700; invested = 4000
	require.True(t, b.Fundamentals.ROIC.Present)
	assert.InDelta(t, 0.175, b.Fundamentals.ROIC.Value, 1e-12)
}

func TestInterestCoverageNearZeroInterestIsAbsent(t *testing.T) {
	s := &Snapshot{
		Ticker:          "X",
		OperatingIncome: F(500),
		InterestExpense: F(0),
	}
	b, err := Bundle(s)
	require.NoError(t, err)
	assert.False(t, b.Fundamentals.InterestCoverage.Present)
}

func TestBuybackYieldRequiresOutflow(t *testing.T) {
	issuing := &Snapshot{Ticker: "X", ShareRepurchase: F(50), MarketCap: F(1000)}
	b, err := Bundle(issuing)
	require.NoError(t, err)
	assert.False(t, b.Fundamentals.BuybackYield.Present)

	buying := &Snapshot{Ticker: "X", ShareRepurchase: F(-30), MarketCap: F(1000)}
	b, err = Bundle(buying)
	require.NoError(t, err)
	require.True(t, b.Fundamentals.BuybackYield.Present)
	assert.InDelta(t, 0.03, b.Fundamentals.BuybackYield.Value, 1e-12)
}

func TestEarningsYieldInversePEFallback(t *testing.T) {
	b, err := Bundle(&Snapshot{Ticker: "X", TrailingPE: F(20)})
	require.NoError(t, err)
	require.True(t, b.Fundamentals.EarningsYield.Present)
	assert.InDelta(t, 0.05, b.Fundamentals.EarningsYield.Value, 1e-12)
}

func TestFCFYieldClampedToSaneRange(t *testing.T) {
	b, err := Bundle(&Snapshot{Ticker: "X", FreeCashflow: F(400), MarketCap: F(1000)})
	require.NoError(t, err)
	require.True(t, b.Fundamentals.FCFYield.Present)
	assert.InDelta(t, 0.08, b.Fundamentals.FCFYield.Value, 1e-12)
}

func TestNetCashFlag(t *testing.T) {
	b, err := Bundle(&Snapshot{Ticker: "X", TotalCash: F(500), TotalDebt: F(100)})
	require.NoError(t, err)
	require.True(t, b.Fundamentals.NetCash.Present)
	assert.Equal(t, 1.0, b.Fundamentals.NetCash.Value)

	b, err = Bundle(&Snapshot{Ticker: "X", TotalCash: F(100), TotalDebt: F(500)})
	require.NoError(t, err)
	require.True(t, b.Fundamentals.NetCash.Present)
	assert.Equal(t, 0.0, b.Fundamentals.NetCash.Value)
}

func TestLowControversyMapping(t *testing.T) {
	b, err := Bundle(&Snapshot{Ticker: "X", ControversyLevel: F(2)})
	require.NoError(t, err)
	assert.Equal(t, 1.0, b.Fundamentals.LowControversy.Value)

	b, err = Bundle(&Snapshot{Ticker: "X", ControversyLevel: F(3)})
	require.NoError(t, err)
	require.True(t, b.Fundamentals.LowControversy.Present)
	assert.Equal(t, 0.0, b.Fundamentals.LowControversy.Value)
}

func TestGrossMarginLevelProxy(t *testing.T) {
	cases := []struct {
		gm   float64
		want float64
	}{
		{10.0, 0.0},
		{0.40, 0.5},
		{40.0, 0.5},
		{75.0, 1.0},
	}
	for _, tc := range cases {
		b, err := Bundle(&Snapshot{Ticker: "X", GrossMargin: F(tc.gm)})
		require.NoError(t, err)
		require.True(t, b.Fundamentals.GrossMarginLevel.Present, "gm=%v", tc.gm)
		assert.InDelta(t, tc.want, b.Fundamentals.GrossMarginLevel.Value, 1e-9, "gm=%v", tc.gm)
	}
}

func TestMalformedValuesDegradeToAbsent(t *testing.T) {
	nan := math.NaN()
	inf := math.Inf(1)
	b, err := Bundle(&Snapshot{Ticker: "X", ReturnOnEquity: &nan, TrailingPE: &inf})
	require.NoError(t, err)
	assert.False(t, b.Fundamentals.ROE.Present)
	assert.False(t, b.Fundamentals.PE.Present)
}

func TestSourcesPassThrough(t *testing.T) {
	b, err := Bundle(&Snapshot{Ticker: "X", Sources: []string{"marketd", "fundament"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"marketd", "fundament"}, b.SourcesUsed)
}

// ---- price series ----

// synthClose builds an n-day close series via fn(day index).
func synthClose(n int, fn func(i int) float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = fn(i)
	}
	return out
}

func TestPricesShortSeriesLeavesWindowsAbsent(t *testing.T) {
	b, err := Bundle(&Snapshot{Ticker: "X", Closes: synthClose(50, func(i int) float64 { return 100 + float64(i) })})
	require.NoError(t, err)

	p := b.Prices
	assert.True(t, p.LastClose.Present)
	assert.False(t, p.PriceVs200DMA.Present)
	assert.False(t, p.Above200DMA.Present)
	assert.True(t, p.Return20D.Present)
	assert.False(t, p.Perf6M.Present)
	assert.False(t, p.Perf12M.Present)
	assert.True(t, p.RSI14.Present)
}

func TestPricesVs200DMAOnRisingSeries(t *testing.T) {
	closes := synthClose(260, func(i int) float64 { return 100 + float64(i)*0.5 })
	b, err := Bundle(&Snapshot{Ticker: "X", Closes: closes})
	require.NoError(t, err)

	p := b.Prices
	require.True(t, p.PriceVs200DMA.Present)
	assert.Greater(t, p.PriceVs200DMA.Value, 0.0)
	require.True(t, p.Above200DMA.Present)
	assert.Equal(t, 1.0, p.Above200DMA.Value)

	// constantly rising closes sit at the top of their 52-week range
	require.True(t, p.Pct52Week.Present)
	assert.InDelta(t, 1.0, p.Pct52Week.Value, 1e-9)

	// and never draw down
	require.True(t, p.MaxDrawdown1Y.Present)
	assert.InDelta(t, 0.0, p.MaxDrawdown1Y.Value, 1e-9)

	// monotonic gains saturate the RSI
	require.True(t, p.RSI14.Present)
	assert.InDelta(t, 100.0, p.RSI14.Value, 1e-9)
}

func TestPricesFlatSeriesHasNoPercentile(t *testing.T) {
	closes := synthClose(260, func(i int) float64 { return 42.0 })
	b, err := Bundle(&Snapshot{Ticker: "X", Closes: closes})
	require.NoError(t, err)
	assert.False(t, b.Prices.Pct52Week.Present)
}

func TestPricesTrailingReturns(t *testing.T) {
	closes := synthClose(300, func(i int) float64 { return 100.0 })
	closes[len(closes)-1] = 110.0
	closes[len(closes)-21] = 100.0 // base for the 20-day return
	b, err := Bundle(&Snapshot{Ticker: "X", Closes: closes})
	require.NoError(t, err)

	require.True(t, b.Prices.Return20D.Present)
	assert.InDelta(t, 0.10, b.Prices.Return20D.Value, 1e-9)
	require.True(t, b.Prices.Perf12M.Present)
	assert.InDelta(t, 0.10, b.Prices.Perf12M.Value, 1e-9)
}

func TestPricesMaxDrawdown(t *testing.T) {
	closes := synthClose(260, func(i int) float64 { return 100.0 })
	closes[100] = 120.0
	closes[150] = 60.0
	b, err := Bundle(&Snapshot{Ticker: "X", Closes: closes})
	require.NoError(t, err)

	require.True(t, b.Prices.MaxDrawdown1Y.Present)
	assert.InDelta(t, -0.5, b.Prices.MaxDrawdown1Y.Value, 1e-9)
}

func TestPricesReportedLastCloseWins(t *testing.T) {
	b, err := Bundle(&Snapshot{
		Ticker:    "X",
		LastClose: F(123.45),
		Closes:    []float64{100, 101, 102},
	})
	require.NoError(t, err)
	assert.InDelta(t, 123.45, b.Prices.LastClose.Value, 1e-12)
	assert.Equal(t, "direct:last_close", b.Prices.LastClose.Source)
}

func TestPricesSeriesCarriesTimestamps(t *testing.T) {
	b, err := Bundle(&Snapshot{
		Ticker:     "X",
		Closes:     []float64{10, 11},
		Timestamps: []int64{1700000000, 1700086400},
	})
	require.NoError(t, err)
	require.Len(t, b.Prices.Series, 2)
	assert.Equal(t, int64(1700086400), b.Prices.Series[1].Timestamp)
	assert.Equal(t, 11.0, b.Prices.Series[1].Close)
}
