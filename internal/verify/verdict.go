package verify

import (
	"github.com/vmaretto/sigillo/internal/scoring"
)

// Result is the final categorical verdict of a verification.
type Result string

// Verification results.
const (
	ResultConforme    Result = "conforme"
	ResultSospetta    Result = "sospetta"
	ResultNonConforme Result = "non_conforme"
)

// Combine fuses a textual score with an optional visual similarity score.
// Without a visual score the textual score stands alone (degraded mode).
func (c *Config) Combine(textScore float64, visualScore *float64) float64 {
	if visualScore == nil {
		return textScore
	}
	return c.TextWeight*textScore + c.VisualWeight*(*visualScore)
}

// Decide maps a combined score and an optional visual verdict to the final
// result. A counterfeit visual verdict forces non_conforme in the middle
// band, overriding the numeric score.
func (c *Config) Decide(score float64, visual *scoring.Verdict) Result {
	switch {
	case score >= c.ConformeThreshold:
		return ResultConforme
	case score >= c.SuspectThreshold:
		if visual != nil && *visual == scoring.VerdictCounterfeit {
			return ResultNonConforme
		}
		return ResultSospetta
	default:
		return ResultNonConforme
	}
}

// MergeViolations concatenates conformity violations with the textual and
// visual differences of the best match. Duplicates are kept as-is.
func MergeViolations(report *scoring.ConformityReport, best *BestMatch) []string {
	violations := make([]string, 0, len(report.Violations))
	violations = append(violations, report.Violations...)
	violations = append(violations, best.Textual.Differences...)
	if best.Visual != nil {
		violations = append(violations, best.Visual.Differences...)
	}
	return violations
}
