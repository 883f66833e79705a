package scoring

import (
	"math"

	"github.com/equitylens/equitylens/internal/contracts"
)

// Per-pillar sub-metric weights. Weights sum to 1 within each pillar.
const (
	wQualityROE       = 0.28
	wQualityROIC      = 0.28
	wQualityNetMargin = 0.18
	wQualityFCFOverNI = 0.16
	wQualityStability = 0.10

	wSafetyDebtEquity  = 0.28
	wSafetyNetDebt     = 0.32
	wSafetyIntCoverage = 0.24
	wSafetyCurrent     = 0.16

	wValuationPE        = 0.30
	wValuationEVEBITDA  = 0.20
	wValuationFCFYield  = 0.35
	wValuationEarnYield = 0.15

	wGrowthRevenue = 0.35
	wGrowthEPS     = 0.45
	wGrowthForward = 0.20

	wMomentumPerf6M  = 0.30
	wMomentumPerf12M = 0.35
	wMomentumAbove   = 0.25
	wMomentumRSI     = 0.10

	wMoatPersistence = 0.50
	wMoatGrossMargin = 0.30
	wMoatShareTrend  = 0.20

	wGovDividendCAGR = 0.30
	wGovPayout       = 0.25
	wGovBuyback      = 0.25
	wGovInsider      = 0.20
)

// RSI sweet band: full credit at 52.5, linearly fading over +/-22.5.
const (
	rsiCenter   = 52.5
	rsiHalfBand = 22.5
)

// ESG controversy bonus applied on top of the base score.
const controversyBonus = 0.1

// malus is an explicit extension point for future penalty composition.
// It is currently always zero.
const malus = 0.0

// pillarResult carries one pillar's capped score and its field presence.
type pillarResult struct {
	score   float64
	present int
	total   int
}

// Compute runs the full pillar scorer over a normalized bundle: sanitation
// clamp, eight weighted pillar subscores, coverage accounting and the
// reason/red-flag rules. It is a pure function and never fails; entirely
// empty input yields zero scores, zero coverage and the fallback reason.
func Compute(bundle contracts.DataBundle) contracts.ComputeResult {
	f := sanitizeFundamentals(bundle.Fundamentals)
	p := sanitizePrices(bundle.Prices)

	quality := qualityPillar(f)
	safety := safetyPillar(f)
	valuation := valuationPillar(f)
	growth := growthPillar(f)
	momentum := momentumPillar(p)
	moat := moatPillar(f)
	esg := esgPillar(f)
	governance := governancePillar(f)

	pillars := []pillarResult{quality, safety, valuation, growth, momentum, moat, esg, governance}
	maxima := []float64{
		contracts.MaxQuality, contracts.MaxSafety, contracts.MaxValuation,
		contracts.MaxGrowth, contracts.MaxMomentum, contracts.MaxMoat,
		contracts.MaxESG, contracts.MaxGovernance,
	}

	var present, total int
	var maxAvailable float64
	for i, pr := range pillars {
		present += pr.present
		total += pr.total
		if pr.present > 0 {
			maxAvailable += maxima[i]
		}
	}

	coverage := 0
	if total > 0 {
		coverage = int(math.Round(100 * float64(present) / float64(total)))
	}

	subscores := contracts.PillarScores{
		Quality:    quality.score,
		Safety:     safety.score,
		Valuation:  valuation.score,
		Growth:     growth.score,
		Momentum:   momentum.score,
		Moat:       moat.score,
		ESG:        esg.score,
		Governance: governance.score,
	}

	// Reason rules read the un-sanitized metrics: the flags describe what
	// the providers reported, not the clamped scoring inputs.
	positive, flags := evaluateReasons(subscores, bundle.Fundamentals)

	return contracts.ComputeResult{
		Subscores:         subscores,
		Coverage:          coverage,
		MaxScoreAvailable: maxAvailable,
		MomentumPresent:   momentum.present > 0,
		ReasonsPositive:   positive,
		RedFlags:          flags,
	}
}

// TotalScore converts pillar subscores into the raw 0..100 score.
func TotalScore(subscores contracts.PillarScores) int {
	raw := math.Round(subscores.Sum()) - malus
	return int(clamp(raw, 0, 100))
}

// AdjustedScore scales the raw score by the points that were actually
// available given field coverage.
func AdjustedScore(raw int, maxAvailable float64) int {
	if maxAvailable <= 0 {
		return 0
	}
	adj := math.Round(100 * float64(raw) / maxAvailable)
	return int(clamp(adj, 0, 100))
}

// ColorFor maps a raw score onto its category.
func ColorFor(raw int) string {
	switch {
	case raw >= 70:
		return contracts.ColorStrong
	case raw >= 50:
		return contracts.ColorModerate
	default:
		return contracts.ColorWeak
	}
}

// countPresent tallies field presence for coverage. A value of exactly 0 or
// a false flag still counts as present; only absence counts as missing.
func countPresent(ms ...contracts.MetricValue) (present, total int) {
	total = len(ms)
	for _, m := range ms {
		if m.IsPresent() {
			present++
		}
	}
	return present, total
}

// capPillar finishes a pillar: a pillar with no present field scores 0 outright,
// so neutral absent-defaults (0.5 bands) cannot manufacture points out of
// an entirely empty bundle.
func capPillar(t, max float64, present, total int) pillarResult {
	if present == 0 {
		return pillarResult{0, present, total}
	}
	return pillarResult{clamp(t*max, 0, max), present, total}
}

func qualityPillar(f contracts.Fundamentals) pillarResult {
	t := wQualityROE*LinearMap(f.ROE, 0.08, 0.25, false) +
		wQualityROIC*LinearMap(f.ROIC, 0.07, 0.20, false) +
		wQualityNetMargin*LinearMap(f.NetMargin, 0.05, 0.25, false) +
		wQualityFCFOverNI*LinearMap(f.FCFOverNetIncome, 0.6, 1.2, false) +
		wQualityStability*LinearMap(f.MarginStability, 0, 1, false)

	present, total := countPresent(f.ROE, f.ROIC, f.NetMargin, f.FCFOverNetIncome, f.MarginStability)
	return capPillar(t, contracts.MaxQuality, present, total)
}

func safetyPillar(f contracts.Fundamentals) pillarResult {
	t := wSafetyDebtEquity*LinearMap(f.DebtToEquity, 2.0, 0.2, true) +
		wSafetyNetDebt*LinearMap(f.NetDebtToEBITDA, 3.5, 0.0, true) +
		wSafetyIntCoverage*LinearMap(f.InterestCoverage, 2, 15, false) +
		wSafetyCurrent*LinearMap(f.CurrentRatio, 1.0, 2.0, false)

	present, total := countPresent(f.DebtToEquity, f.NetDebtToEBITDA, f.InterestCoverage, f.CurrentRatio)
	return capPillar(t, contracts.MaxSafety, present, total)
}

func valuationPillar(f contracts.Fundamentals) pillarResult {
	t := wValuationPE*LinearMap(f.PE, 30, 10, true) +
		wValuationEVEBITDA*LinearMap(f.EVToEBITDA, 20, 6, true) +
		wValuationFCFYield*LinearMap(f.FCFYield, 0.02, 0.08, false) +
		wValuationEarnYield*LinearMap(f.EarningsYield, 0.03, 0.10, false)

	present, total := countPresent(f.PE, f.EVToEBITDA, f.FCFYield, f.EarningsYield)
	return capPillar(t, contracts.MaxValuation, present, total)
}

func growthPillar(f contracts.Fundamentals) pillarResult {
	t := wGrowthRevenue*LinearMap(f.RevenueCAGR3Y, 0.0, 0.20, false) +
		wGrowthEPS*LinearMap(f.EPSCAGR3Y, 0.0, 0.20, false) +
		wGrowthForward*LinearMap(f.ForwardRevenueGrowth, 0.0, 0.15, false)

	present, total := countPresent(f.RevenueCAGR3Y, f.EPSCAGR3Y, f.ForwardRevenueGrowth)
	return capPillar(t, contracts.MaxGrowth, present, total)
}

func momentumPillar(p contracts.Prices) pillarResult {
	// Above-200DMA and RSI default to neutral 0.5 when absent; the perf
	// windows fall through LinearMap's absent-scores-0 rule.
	above := 0.5
	if p.Above200DMA.IsPresent() {
		above = 0.0
		if p.Above200DMA.Bool() {
			above = 1.0
		}
	}

	rsi := 0.5
	if p.RSI14.IsPresent() {
		rsi = clamp01(1 - math.Abs(p.RSI14.Value-rsiCenter)/rsiHalfBand)
	}

	t := wMomentumPerf6M*LinearMap(p.Perf6M, -0.10, 0.25, false) +
		wMomentumPerf12M*LinearMap(p.Perf12M, -0.10, 0.35, false) +
		wMomentumAbove*above +
		wMomentumRSI*rsi

	present, total := countPresent(p.Perf6M, p.Perf12M, p.Above200DMA, p.RSI14)
	return capPillar(t, contracts.MaxMomentum, present, total)
}

func moatPillar(f contracts.Fundamentals) pillarResult {
	t := wMoatPersistence*LinearMap(f.ROICPersistence, 0, 1, false) +
		wMoatGrossMargin*LinearMap(f.GrossMarginLevel, 0, 1, false) +
		wMoatShareTrend*LinearMap(f.MarketShareTrend, 0, 1, false)

	present, total := countPresent(f.ROICPersistence, f.GrossMarginLevel, f.MarketShareTrend)
	return capPillar(t, contracts.MaxMoat, present, total)
}

func esgPillar(f contracts.Fundamentals) pillarResult {
	base := 0.5
	if f.ESGScore.IsPresent() {
		base = f.ESGScore.Value / 100
	}

	bonus := 0.0
	if f.LowControversy.IsPresent() {
		if f.LowControversy.Bool() {
			bonus = controversyBonus
		} else {
			bonus = -controversyBonus
		}
	}

	t := clamp01(base + bonus)
	present, total := countPresent(f.ESGScore, f.LowControversy)
	return capPillar(t, contracts.MaxESG, present, total)
}

func governancePillar(f contracts.Fundamentals) pillarResult {
	t := wGovDividendCAGR*LinearMap(f.DividendCAGR3Y, 0.0, 0.08, false) +
		wGovPayout*SweetSpot(f.PayoutRatio, 0.30, 0.60, 0.0, 1.50) +
		wGovBuyback*LinearMap(f.BuybackYield, 0.0, 0.04, false) +
		wGovInsider*LinearMap(f.InsiderOwnership, 0.0, 0.15, false)

	present, total := countPresent(f.DividendCAGR3Y, f.PayoutRatio, f.BuybackYield, f.InsiderOwnership)
	return capPillar(t, contracts.MaxGovernance, present, total)
}
