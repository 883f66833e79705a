package contracts

// Pillar score maxima. Each pillar subscore lives in [0, max].
const (
	MaxQuality    = 35.0
	MaxSafety     = 25.0
	MaxValuation  = 25.0
	MaxGrowth     = 15.0
	MaxMomentum   = 15.0
	MaxMoat       = 10.0
	MaxESG        = 5.0
	MaxGovernance = 5.0
)

// PillarScores holds the eight capped pillar subscores.
type PillarScores struct {
	Quality    float64 `json:"quality"`
	Safety     float64 `json:"safety"`
	Valuation  float64 `json:"valuation"`
	Growth     float64 `json:"growth"`
	Momentum   float64 `json:"momentum"`
	Moat       float64 `json:"moat"`
	ESG        float64 `json:"esg"`
	Governance float64 `json:"governance"`
}

// Sum returns the raw total of all pillar subscores.
func (p PillarScores) Sum() float64 {
	return p.Quality + p.Safety + p.Valuation + p.Growth +
		p.Momentum + p.Moat + p.ESG + p.Governance
}

// ComputeResult is the pillar scorer output.
type ComputeResult struct {
	Subscores PillarScores `json:"subscores"`
	Coverage  int          `json:"coverage"` // 0..100, data completeness

	// Sum of the per-pillar maxima that actually contributed (pillars with
	// at least one present field). Used for the confidence-adjusted score.
	MaxScoreAvailable float64 `json:"max_score_available"`

	// Whether any momentum sub-metric was present. Feeds the verdict.
	MomentumPresent bool `json:"momentum_present"`

	ReasonsPositive []string `json:"reasons_positive"`
	RedFlags        []string `json:"red_flags"`
}

// Color categories for the raw score.
const (
	ColorStrong   = "strong"
	ColorModerate = "moderate"
	ColorWeak     = "weak"
)

// Verdict categories.
const (
	VerdictHealthy = "healthy"
	VerdictWatch   = "watch"
	VerdictFragile = "fragile"
)

// OpportunityPoint is one entry of the time-indexed opportunity series.
type OpportunityPoint struct {
	Timestamp   int64   `json:"t"`
	Close       float64 `json:"close"`
	Opportunity int     `json:"opp"` // 0..100
}

// ScorePayload is the primary output exposed to collaborators.
type ScorePayload struct {
	Ticker          string       `json:"ticker"`
	Score           int          `json:"score"`     // 0..100
	ScoreAdjusted   int          `json:"score_adj"` // 0..100, coverage-adjusted
	Color           string       `json:"color"`
	Verdict         string       `json:"verdict"`
	VerdictReason   string       `json:"verdict_reason"`
	ReasonsPositive []string     `json:"reasons_positive"` // capped to 3
	RedFlags        []string     `json:"red_flags"`        // capped to 2
	Subscores       PillarScores `json:"subscores"`
	Coverage        int          `json:"coverage"` // 0..100

	OpportunitySeries []OpportunityPoint `json:"opportunity_series,omitempty"`
}

// BundleDiagnostic is the optional debugging view: the full normalized
// bundle with provenance tags. Not part of the scoring contract.
type BundleDiagnostic struct {
	Ticker       string       `json:"ticker"`
	Fundamentals Fundamentals `json:"fundamentals"`
	Prices       Prices       `json:"prices"`
	SourcesUsed  []string     `json:"sources_used"`
}
