package scoring

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/ats-analyzer/internal/rules"
	"github.com/jonathan/ats-analyzer/internal/types"
)

// defaultKeywordWeight applies to importance tiers absent from keywordWeights
const defaultKeywordWeight = 1.0

// scoreKeywords weighs unique matches per group by importance, caps the base
// to leave room for the diversity and high-impact bonuses, and applies the
// low-coverage penalty.
func scoreKeywords(mr *types.MatchResult, r *rules.ScoringRules) (types.KeywordsScore, []types.Explanation) {
	maxScore := r.BaseWeights.Keywords
	exclude := excludedGroups(r)
	var explanations []types.Explanation

	highTiers := make(map[string]bool, len(r.BonusConfig.HighImpactKeywords.Tiers))
	for _, t := range r.BonusConfig.HighImpactKeywords.Tiers {
		highTiers[strings.ToLower(t)] = true
	}

	raw := 0.0
	matchedGroups, totalGroups, highImpact := 0, 0, 0
	var unmatchedRequired []string
	for _, id := range sortedGroupIDs(mr.GlobalMatches) {
		if exclude[id] {
			continue
		}
		g := mr.GlobalMatches[id]
		totalGroups++
		if g.UniqueCount == 0 {
			if g.Required {
				unmatchedRequired = append(unmatchedRequired, id)
			}
			continue
		}
		matchedGroups++

		w, ok := r.KeywordWeights[g.Importance]
		if !ok {
			w = defaultKeywordWeight
		}
		gw := g.Weight
		if gw <= 0 {
			gw = 1
		}
		raw += w * gw * float64(g.UniqueCount)
		if highTiers[g.Importance] {
			highImpact += g.UniqueCount
		}
	}

	base := capAt(raw, headroomRatio*maxScore)
	explanations = append(explanations, types.Explanation{
		Category: types.CategoryKeywords,
		Message:  fmt.Sprintf("Matched %d distinct keywords across %d of %d keyword groups", mr.DistinctMatched, matchedGroups, totalGroups),
		Impact:   round2(base),
		Severity: keywordSeverity(matchedGroups, totalGroups),
	})

	div := r.BonusConfig.KeywordDiversity
	diversity := capAt(float64(matchedGroups)*div.PointsPerGroup, div.MaxBonus)
	hi := r.BonusConfig.HighImpactKeywords
	impact := capAt(float64(highImpact)*hi.PointsPerMatch, hi.MaxBonus)
	bonus := capAt(diversity+impact, r.Caps.MaxKeywordBonus)
	if bonus > 0 {
		explanations = append(explanations, types.Explanation{
			Category: types.CategoryKeywords,
			Message:  fmt.Sprintf("Keyword diversity and %d high-impact matches earn a bonus", highImpact),
			Impact:   round2(bonus),
			Severity: types.SeverityPositive,
		})
	}

	penalty := capAt(coveragePenalty(mr.DistinctMatched, r.PenaltyConfig.LowKeywordCoverage.Thresholds), r.Caps.MaxKeywordPenalty)
	if penalty > 0 {
		explanations = append(explanations, types.Explanation{
			Category: types.CategoryKeywords,
			Message:  fmt.Sprintf("Low keyword coverage: only %d distinct keywords matched", mr.DistinctMatched),
			Impact:   -round2(penalty),
			Severity: types.SeverityHigh,
		})
	}

	for _, id := range unmatchedRequired {
		explanations = append(explanations, types.Explanation{
			Category: types.CategoryKeywords,
			Message:  fmt.Sprintf("No keywords matched from required group %q", id),
			Impact:   0,
			Severity: types.SeverityHigh,
		})
	}

	score := round2(clamp(base+bonus-penalty, 0, maxScore))
	return types.KeywordsScore{
		Score:             score,
		MaxScore:          maxScore,
		Percentage:        percentage(score, maxScore),
		BaseScore:         round2(base),
		Bonus:             round2(bonus),
		Penalty:           -round2(penalty),
		MatchedGroups:     matchedGroups,
		TotalGroups:       totalGroups,
		DistinctMatched:   mr.DistinctMatched,
		HighImpactMatches: highImpact,
	}, explanations
}

// coveragePenalty returns the largest penalty among thresholds the distinct
// match count falls below.
func coveragePenalty(distinct int, thresholds []rules.CoverageThreshold) float64 {
	worst := 0.0
	for _, t := range thresholds {
		if distinct < t.Below && magnitude(t.Penalty) > worst {
			worst = magnitude(t.Penalty)
		}
	}
	return worst
}

// unmatchedRequiredGroups lists required groups with no match, sorted
func unmatchedRequiredGroups(mr *types.MatchResult, r *rules.ScoringRules) []string {
	exclude := excludedGroups(r)
	var out []string
	for _, id := range sortedGroupIDs(mr.GlobalMatches) {
		g := mr.GlobalMatches[id]
		if !exclude[id] && g.Required && g.UniqueCount == 0 {
			out = append(out, id)
		}
	}
	return out
}

func excludedGroups(r *rules.ScoringRules) map[string]bool {
	out := make(map[string]bool, len(r.SkillsConfig.ExcludeGroups)+1)
	out[rules.ActionVerbGroup] = true
	for _, g := range r.SkillsConfig.ExcludeGroups {
		out[g] = true
	}
	return out
}

func sortedGroupIDs(m map[string]types.GroupMatch) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func keywordSeverity(matched, total int) string {
	switch {
	case matched == 0:
		return types.SeverityNegative
	case total > 0 && float64(matched)/float64(total) >= 0.5:
		return types.SeverityPositive
	default:
		return types.SeverityNeutral
	}
}
