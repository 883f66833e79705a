// Package verdict assigns a categorical health label from the adjusted
// score, the coverage level and momentum availability.
package verdict

import "github.com/equitylens/equitylens/internal/contracts"

// Classification thresholds.
const (
	healthyScore   = 70
	watchScore     = 50
	coverageNeeded = 40
)

// Classify labels a scoring outcome. Low coverage never blocks a label,
// it only annotates the reason.
func Classify(scoreAdjusted, coverage int, momentumPresent bool) (verdict, reason string) {
	limited := coverage < coverageNeeded

	switch {
	case scoreAdjusted >= healthyScore && !limited && momentumPresent:
		return contracts.VerdictHealthy, "strong score with sufficient coverage"
	case scoreAdjusted >= watchScore || momentumPresent:
		reason = "positive but incomplete signal"
		if limited {
			reason += " (limited coverage)"
		}
		return contracts.VerdictWatch, reason
	default:
		reason = "weak signal"
		if limited {
			reason += " (partial data)"
		}
		return contracts.VerdictFragile, reason
	}
}
