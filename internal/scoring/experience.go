package scoring

import (
	"fmt"

	"github.com/jonathan/ats-analyzer/internal/rules"
	"github.com/jonathan/ats-analyzer/internal/types"
)

// defaultExceptionalRatio is the share of each sub-score maximum both
// sub-scores must reach for the exceptional bonus
const defaultExceptionalRatio = 0.8

// scoreExperience maps action-verb and quantified-achievement counts through
// their ladders and adds the exceptional bonus when both are strong.
func scoreExperience(mr *types.MatchResult, r *rules.ScoringRules) (types.ExperienceScore, []types.Explanation) {
	maxScore := r.BaseWeights.ExperienceQuality
	cfg := r.ExperienceSignals

	verbs := mr.ActionVerbs.Count
	quantified := len(mr.QuantifiedAchievements)

	verbScore := capAt(ladder(cfg.ActionVerbThresholds, float64(verbs)), cfg.ActionVerbMaxScore)
	quantScore := capAt(ladder(cfg.QuantifiedThresholds, float64(quantified)), cfg.QuantifiedMaxScore)

	explanations := []types.Explanation{
		{
			Category: types.CategoryExperienceQuality,
			Message:  fmt.Sprintf("Uses %d distinct action verbs", verbs),
			Impact:   round2(verbScore),
			Severity: ladderSeverity(verbScore, cfg.ActionVerbMaxScore),
		},
		{
			Category: types.CategoryExperienceQuality,
			Message:  fmt.Sprintf("Found %d kinds of quantified achievement", quantified),
			Impact:   round2(quantScore),
			Severity: ladderSeverity(quantScore, cfg.QuantifiedMaxScore),
		},
	}

	ratio := defaultExceptionalRatio
	if cfg.ExceptionalRatio != nil {
		ratio = *cfg.ExceptionalRatio
	}
	bonus := 0.0
	if cfg.BonusForExceptional > 0 && cfg.ActionVerbMaxScore > 0 && cfg.QuantifiedMaxScore > 0 &&
		verbScore >= ratio*cfg.ActionVerbMaxScore && quantScore >= ratio*cfg.QuantifiedMaxScore {
		bonus = cfg.BonusForExceptional
		explanations = append(explanations, types.Explanation{
			Category: types.CategoryExperienceQuality,
			Message:  "Strong action verbs combined with measurable results",
			Impact:   bonus,
			Severity: types.SeverityPositive,
		})
	}

	score := round2(clamp(verbScore+quantScore+bonus, 0, maxScore))
	return types.ExperienceScore{
		Score:            score,
		MaxScore:         maxScore,
		Percentage:       percentage(score, maxScore),
		ActionVerbCount:  verbs,
		ActionVerbScore:  round2(verbScore),
		QuantifiedCount:  quantified,
		QuantifiedScore:  round2(quantScore),
		ExceptionalBonus: bonus,
	}, explanations
}

func ladderSeverity(score, maxScore float64) string {
	switch {
	case score <= 0:
		return types.SeverityNegative
	case maxScore > 0 && score >= maxScore/2:
		return types.SeverityPositive
	default:
		return types.SeverityNeutral
	}
}
