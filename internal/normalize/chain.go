package normalize

import (
	"math"

	"github.com/equitylens/equitylens/internal/contracts"
)

// Raw numbers with absolute value above this threshold are treated as
// percentages and divided by 100. A single design constant, not inferred
// per field.
const percentThreshold = 5.0

// extractor is one step of a fallback chain: it either yields a finite
// canonical value from the snapshot or passes. The tag records provenance
// ("direct:..." for provider-reported values, "derived:..." for computed
// ones) and each step carries its own static confidence weight.
type extractor struct {
	tag        string
	confidence float64
	fn         func(*Snapshot) (float64, bool)
}

// rng is a metric-specific sane range applied before wrapping.
type rng struct {
	lo, hi float64
}

// resolve walks the chain in order and stops at the first extractor that
// yields a finite value, clamping it into r. When every step passes the
// result is the absent value; malformed input never raises an error.
func resolve(s *Snapshot, r rng, chain ...extractor) contracts.MetricValue {
	for _, e := range chain {
		v, ok := e.fn(s)
		if !ok || !contracts.IsFinite(v) {
			continue
		}
		return contracts.Metric(clampTo(v, r), e.confidence, e.tag)
	}
	return contracts.Absent()
}

// direct reads a provider-reported field as-is.
func direct(tag string, confidence float64, get func(*Snapshot) *float64) extractor {
	return extractor{
		tag:        "direct:" + tag,
		confidence: confidence,
		fn: func(s *Snapshot) (float64, bool) {
			return deref(get(s))
		},
	}
}

// directPercent reads a provider-reported ratio with unit disambiguation:
// |v| > 5 is taken as a percentage and divided by 100.
func directPercent(tag string, confidence float64, get func(*Snapshot) *float64) extractor {
	return extractor{
		tag:        "direct:" + tag,
		confidence: confidence,
		fn: func(s *Snapshot) (float64, bool) {
			v, ok := deref(get(s))
			if !ok {
				return 0, false
			}
			return asRatio(v), true
		},
	}
}

// derived wraps a computed-from-line-items formula.
func derived(tag string, confidence float64, fn func(*Snapshot) (float64, bool)) extractor {
	return extractor{
		tag:        "derived:" + tag,
		confidence: confidence,
		fn:         fn,
	}
}

// asRatio applies the percentage-vs-decimal disambiguation rule.
func asRatio(v float64) float64 {
	if math.Abs(v) > percentThreshold {
		return v / 100
	}
	return v
}

func deref(p *float64) (float64, bool) {
	if p == nil || !contracts.IsFinite(*p) {
		return 0, false
	}
	return *p, true
}

func clampTo(v float64, r rng) float64 {
	if r.lo == 0 && r.hi == 0 {
		return v
	}
	if v < r.lo {
		return r.lo
	}
	if v > r.hi {
		return r.hi
	}
	return v
}
