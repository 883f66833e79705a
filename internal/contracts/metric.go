package contracts

import "math"

// MetricValue is the atomic unit of the data model: a numeric value that is
// either present and finite or explicitly absent, together with a static
// confidence weight and a provenance tag.
//
// Invariant: Value is never NaN or Inf. Constructors convert non-finite
// inputs to the absent value, and absent values always carry confidence 0.
type MetricValue struct {
	Value      float64 `json:"value"`
	Present    bool    `json:"present"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source,omitempty"`
}

// Absent returns the canonical missing value.
func Absent() MetricValue {
	return MetricValue{}
}

// Metric builds a present MetricValue. Non-finite inputs collapse to Absent.
func Metric(value, confidence float64, source string) MetricValue {
	if !IsFinite(value) {
		return Absent()
	}
	if confidence < 0 {
		confidence = 0
	} else if confidence > 1 {
		confidence = 1
	}
	return MetricValue{
		Value:      value,
		Present:    true,
		Confidence: confidence,
		Source:     source,
	}
}

// Flag builds a present boolean metric encoded as 0/1.
func Flag(value bool, confidence float64, source string) MetricValue {
	v := 0.0
	if value {
		v = 1.0
	}
	return Metric(v, confidence, source)
}

// IsPresent reports whether the metric carries a value.
func (m MetricValue) IsPresent() bool {
	return m.Present
}

// Bool interprets the metric as a flag. Only meaningful for Flag metrics.
func (m MetricValue) Bool() bool {
	return m.Present && m.Value > 0.5
}

// Or returns the value, or def when absent.
func (m MetricValue) Or(def float64) float64 {
	if !m.Present {
		return def
	}
	return m.Value
}

// IsFinite reports whether v is a usable real number.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
