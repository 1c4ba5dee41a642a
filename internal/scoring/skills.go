package scoring

import (
	"fmt"
	"strings"

	"github.com/jonathan/ats-analyzer/internal/rules"
	"github.com/jonathan/ats-analyzer/internal/types"
)

// scoreSkills rates how many of the relevant skills the résumé shows. With a
// job description the relevant skills are the keywords it contains;
// otherwise they are every configured skill-bearing keyword.
func scoreSkills(in Input, r *rules.ScoringRules) (types.SkillsScore, []types.Explanation) {
	maxScore := r.BaseWeights.SkillsRelevance
	mr := in.Keywords
	exclude := excludedGroups(r)
	var explanations []types.Explanation

	matched, total := 0, 0
	if in.HasJobDescription {
		have := make(map[string]bool)
		for id, g := range mr.GlobalMatches {
			if exclude[id] {
				continue
			}
			for _, term := range g.Matched {
				have[term] = true
			}
		}
		seen := make(map[string]bool, len(in.JobKeywords))
		for _, k := range in.JobKeywords {
			if seen[k] {
				continue
			}
			seen[k] = true
			total++
			if have[k] {
				matched++
			}
		}
	} else {
		for id, g := range mr.GlobalMatches {
			if exclude[id] {
				continue
			}
			total += g.KeywordCount
			matched += g.UniqueCount
		}
		explanations = append(explanations, types.Explanation{
			Category: types.CategorySkillsRelevance,
			Message:  "No job description provided; skills are measured against the general keyword tables",
			Impact:   0,
			Severity: types.SeverityNegative,
		})
	}

	ratio := 0.0
	if total > 0 {
		ratio = float64(matched) / float64(total)
	}
	base := capAt(ladder(r.SkillsConfig.MatchRatioTiers, ratio), headroomRatio*maxScore)
	explanations = append(explanations, types.Explanation{
		Category: types.CategorySkillsRelevance,
		Message:  fmt.Sprintf("Matched %d of %d relevant skills", matched, total),
		Impact:   round2(base),
		Severity: ladderSeverity(base, maxScore*headroomRatio),
	})

	technical := technicalMatches(mr, r, exclude)
	tc := r.BonusConfig.TechnicalSkills
	bonus := capAt(capAt(float64(technical)*tc.PointsPerSkill, tc.MaxBonus), r.Caps.MaxSkillsBonus)
	if bonus > 0 {
		explanations = append(explanations, types.Explanation{
			Category: types.CategorySkillsRelevance,
			Message:  fmt.Sprintf("%d technical skills earn a concentration bonus", technical),
			Impact:   round2(bonus),
			Severity: types.SeverityPositive,
		})
	}

	score := round2(clamp(base+bonus, 0, maxScore))
	return types.SkillsScore{
		Score:              score,
		MaxScore:           maxScore,
		Percentage:         percentage(score, maxScore),
		MatchedSkills:      matched,
		TotalSkills:        total,
		MatchRatio:         round4(ratio),
		TechnicalSkills:    technical,
		TechnicalBonus:     round2(bonus),
		UsesJobDescription: in.HasJobDescription,
	}, explanations
}

// technicalMatches counts unique matches in groups tagged as technical by
// subcategory or role category.
func technicalMatches(mr *types.MatchResult, r *rules.ScoringRules, exclude map[string]bool) int {
	tags := make(map[string]bool, len(r.BonusConfig.TechnicalSkills.Tags))
	for _, t := range r.BonusConfig.TechnicalSkills.Tags {
		tags[strings.ToLower(t)] = true
	}
	n := 0
	for id, g := range mr.GlobalMatches {
		if exclude[id] {
			continue
		}
		if tags[strings.ToLower(g.Subcategory)] || tags[strings.ToLower(g.RoleCategory)] {
			n += g.UniqueCount
		}
	}
	return n
}
