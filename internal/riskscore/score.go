// Package riskscore holds the deterministic scoring rules for immune
// deficiency risk. Everything here is pure: no I/O, no state.
package riskscore

import (
	"github.com/bbabur/immune-risk-next-sub001/internal/model"
)

// Rule thresholds. A missing value is "not evaluated" and contributes zero;
// it is never treated as normal.
const (
	neutrophilsLow = 1500
	lymphocytesLow = 1000
	igGLow         = 600
	igALow         = 50
	igMLow         = 40
	igEHigh        = 200
)

// RuleScore sums the threshold contributions of the present lab values.
func RuleScore(panel *model.LabPanel) int {
	score := 0
	if panel.Neutrophils != nil && *panel.Neutrophils < neutrophilsLow {
		score += 2
	}
	if panel.Lymphocytes != nil && *panel.Lymphocytes < lymphocytesLow {
		score += 3
	}
	if panel.IgG != nil && *panel.IgG < igGLow {
		score += 2
	}
	if panel.IgA != nil && *panel.IgA < igALow {
		score += 1
	}
	if panel.IgM != nil && *panel.IgM < igMLow {
		score += 1
	}
	if panel.IgE != nil && *panel.IgE > igEHigh {
		score += 2
	}
	return score
}

// Categorize maps a rule score to its band.
func Categorize(score int) string {
	switch {
	case score >= 6:
		return model.RiskLevelHigh
	case score >= 3:
		return model.RiskLevelMedium
	default:
		return model.RiskLevelLow
	}
}

// Compose blends the rule score with the ML probability using the coarser
// composed banding. Either signal reaching a band is enough; the severest
// band wins. A nil probability means the predictor did not contribute.
func Compose(ruleScore int, probability *float64) string {
	prob := 0.0
	if probability != nil {
		prob = *probability
	}

	switch {
	case ruleScore >= 7 || prob >= 0.7:
		return model.RiskLevelHigh
	case ruleScore >= 4 || prob >= 0.4:
		return model.RiskLevelMedium
	default:
		return model.RiskLevelLow
	}
}

// Recommendations returns the advisory texts for a final level.
func Recommendations(level string) []string {
	switch level {
	case model.RiskLevelHigh:
		return []string{
			"Refer to pediatric immunology without delay",
			"Repeat full immunoglobulin panel and lymphocyte subsets",
			"Review live vaccine administration before immunology consult",
		}
	case model.RiskLevelMedium:
		return []string{
			"Schedule follow-up lab panel within 4 weeks",
			"Monitor infection frequency and growth curve",
		}
	default:
		return []string{
			"Continue routine follow-up",
		}
	}
}
