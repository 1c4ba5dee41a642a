package scoring

import (
	"fmt"
	"strings"

	"github.com/jonathan/ats-analyzer/internal/rules"
	"github.com/jonathan/ats-analyzer/internal/types"
)

// scorePenalties is the negative-only stuffing contribution. Its score lies
// in [-maxPenalty, 0].
func scorePenalties(mr *types.MatchResult, r *rules.ScoringRules) (types.PenaltiesScore, []types.Explanation) {
	cfg := r.PenaltyConfig.KeywordStuffing
	maxPenalty := magnitude(cfg.MaxPenalty)
	n := len(mr.StuffingSignals)

	amount := float64(n) * magnitude(cfg.PenaltyPerViolation)
	if maxPenalty > 0 {
		amount = capAt(amount, maxPenalty)
	}

	var explanations []types.Explanation
	if n > 0 {
		terms := make([]string, 0, n)
		for _, s := range mr.StuffingSignals {
			terms = append(terms, fmt.Sprintf("%s (%d)", s.Keyword, s.Count))
		}
		explanations = append(explanations, types.Explanation{
			Category: types.CategoryPenalties,
			Message:  fmt.Sprintf("Possible keyword stuffing: %s", strings.Join(terms, ", ")),
			Impact:   -round2(amount),
			Severity: types.SeverityCritical,
		})
	}

	score := 0.0
	if amount > 0 {
		score = -round2(amount)
	}
	return types.PenaltiesScore{
		Score:           score,
		MaxScore:        0,
		MaxPenalty:      maxPenalty,
		StuffingSignals: n,
	}, explanations
}
