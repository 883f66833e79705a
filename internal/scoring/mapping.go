package scoring

import (
	"math"

	"github.com/equitylens/equitylens/internal/contracts"
)

// LinearMap maps a metric onto [0,1] over the ramp between v0 and v1.
// The bounds may be given in either order; invert flips the result for
// lower-is-better metrics. An absent metric maps to 0, and v0 == v1
// degenerates to 0.
//
// Note the asymmetry with SweetSpot: absent input scores 0 here but 0.5
// there. This matches observed product behavior and is kept deliberately;
// do not align the two without a product decision.
func LinearMap(m contracts.MetricValue, v0, v1 float64, invert bool) float64 {
	if !m.IsPresent() {
		return 0
	}
	return LinearMapValue(m.Value, v0, v1, invert)
}

// LinearMapValue is LinearMap over a plain float already known to be finite.
func LinearMapValue(v, v0, v1 float64, invert bool) float64 {
	lo := math.Min(v0, v1)
	hi := math.Max(v0, v1)
	if lo == hi {
		return 0
	}

	t := clamp01((v - lo) / (hi - lo))
	if invert {
		return 1 - t
	}
	return t
}

// SweetSpot is a triangular membership function: 0 at or outside [lo,hi],
// ramping to a plateau of 1 on [a,b]. Absent input returns the neutral 0.5
// so missing optional data is not penalized.
func SweetSpot(m contracts.MetricValue, a, b, lo, hi float64) float64 {
	if !m.IsPresent() {
		return 0.5
	}
	return SweetSpotValue(m.Value, a, b, lo, hi)
}

// SweetSpotValue is SweetSpot over a plain finite float.
func SweetSpotValue(v, a, b, lo, hi float64) float64 {
	switch {
	case v <= lo || v >= hi:
		return 0
	case v >= a && v <= b:
		return 1
	case v < a:
		return clamp01((v - lo) / (a - lo))
	default:
		return clamp01((hi - v) / (hi - b))
	}
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

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
