// Package engine runs the full scoring pipeline over one normalized
// DataBundle: pillar scoring, verdict classification and the optional
// opportunity series. It is a pure function of its input; caching,
// retries and logging live in the callers.
package engine

import (
	"github.com/equitylens/equitylens/internal/contracts"
	"github.com/equitylens/equitylens/internal/opportunity"
	"github.com/equitylens/equitylens/internal/scoring"
	"github.com/equitylens/equitylens/internal/verdict"
)

// Output list caps.
const (
	maxPositiveReasons = 3
	maxRedFlags        = 2
)

// Options controls the optional parts of the payload.
type Options struct {
	// IncludeOpportunity adds the per-point opportunity series when the
	// bundle carries a raw price series.
	IncludeOpportunity bool
}

// Score produces the complete payload for one ticker. A sparse bundle
// yields a low-coverage, cautious payload rather than an error.
func Score(bundle contracts.DataBundle, opts Options) contracts.ScorePayload {
	result := scoring.Compute(bundle)

	raw := scoring.TotalScore(result.Subscores)
	adjusted := scoring.AdjustedScore(raw, result.MaxScoreAvailable)
	v, reason := verdict.Classify(adjusted, result.Coverage, result.MomentumPresent)

	payload := contracts.ScorePayload{
		Ticker:          bundle.Ticker,
		Score:           raw,
		ScoreAdjusted:   adjusted,
		Color:           scoring.ColorFor(raw),
		Verdict:         v,
		VerdictReason:   reason,
		ReasonsPositive: scoring.CapList(result.ReasonsPositive, maxPositiveReasons),
		RedFlags:        scoring.CapList(result.RedFlags, maxRedFlags),
		Subscores:       result.Subscores,
		Coverage:        result.Coverage,
	}

	if opts.IncludeOpportunity && len(bundle.Prices.Series) > 0 {
		payload.OpportunitySeries = opportunity.Build(bundle.Prices.Series, bundle.Fundamentals)
	}

	return payload
}

// Diagnose exposes the normalized bundle with its provenance tags for
// debugging. Not part of the scoring contract.
func Diagnose(bundle contracts.DataBundle) contracts.BundleDiagnostic {
	return contracts.BundleDiagnostic{
		Ticker:       bundle.Ticker,
		Fundamentals: bundle.Fundamentals,
		Prices:       bundle.Prices,
		SourcesUsed:  bundle.SourcesUsed,
	}
}
