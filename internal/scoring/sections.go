package scoring

import (
	"fmt"

	"github.com/jonathan/ats-analyzer/internal/rules"
	"github.com/jonathan/ats-analyzer/internal/types"
)

// defaultSectionWeight applies to sections absent from sectionWeights
const defaultSectionWeight = 1.0

// scoreSections scales the weight of found sections to the category maximum,
// then applies missing-section penalties and the coverage bonus.
func scoreSections(sr *types.SectionResult, r *rules.ScoringRules) (types.SectionsScore, []types.Explanation) {
	maxScore := r.BaseWeights.Sections
	var explanations []types.Explanation

	var totalWeight, foundWeight float64
	found := 0
	for _, s := range sr.Sections {
		w, ok := r.SectionWeights[s.Key]
		if !ok {
			w = defaultSectionWeight
		}
		if w < 0 {
			w = 0
		}
		totalWeight += w
		if s.Found {
			foundWeight += w
			found++
		}
	}

	base := 0.0
	if totalWeight > 0 {
		base = foundWeight / totalWeight * maxScore
	}
	explanations = append(explanations, types.Explanation{
		Category: types.CategorySections,
		Message:  fmt.Sprintf("Found %d of %d expected sections", found, len(sr.Sections)),
		Impact:   round2(base),
		Severity: foundSeverity(found, len(sr.Sections)),
	})

	missing := missingRequired(sr)
	penalty := 0.0
	for _, s := range missing {
		p := magnitude(r.MissingSectionPenalty)
		penalty += p
		explanations = append(explanations, types.Explanation{
			Category: types.CategorySections,
			Message:  fmt.Sprintf("Missing required section: %s", s.DisplayName),
			Impact:   -p,
			Severity: types.SeverityCritical,
		})
	}

	if len(missing) > 1 {
		p := float64(len(missing)-1) * magnitude(r.PenaltyConfig.MultipleMissingSections.PenaltyPerAdditional)
		if p > 0 {
			penalty += p
			explanations = append(explanations, types.Explanation{
				Category: types.CategorySections,
				Message:  fmt.Sprintf("%d required sections are missing", len(missing)),
				Impact:   -p,
				Severity: types.SeverityHigh,
			})
		}
	}

	coverage := 0.0
	if len(sr.Sections) > 0 {
		coverage = float64(found) / float64(len(sr.Sections))
	}
	bonus := 0.0
	cov := r.BonusConfig.SectionCoverage
	if cov.Bonus > 0 && cov.Threshold > 0 && coverage >= cov.Threshold {
		bonus = cov.Bonus
		explanations = append(explanations, types.Explanation{
			Category: types.CategorySections,
			Message:  fmt.Sprintf("Section coverage of %.0f%% earns a completeness bonus", coverage*100),
			Impact:   bonus,
			Severity: types.SeverityPositive,
		})
	}

	score := round2(clamp(base+bonus-penalty, 0, maxScore))
	keys := make([]string, 0, len(missing))
	for _, s := range missing {
		keys = append(keys, s.Key)
	}

	return types.SectionsScore{
		Score:           score,
		MaxScore:        maxScore,
		Percentage:      percentage(score, maxScore),
		FoundCount:      found,
		TotalCount:      len(sr.Sections),
		CoverageRatio:   round4(coverage),
		MissingRequired: keys,
	}, explanations
}

// missingRequired returns required sections without content in configured order
func missingRequired(sr *types.SectionResult) []types.Section {
	var missing []types.Section
	for _, s := range sr.Sections {
		if s.Required && !s.Found {
			if s.DisplayName == "" {
				s.DisplayName = s.Key
			}
			missing = append(missing, s)
		}
	}
	return missing
}

func foundSeverity(found, total int) string {
	switch {
	case total == 0 || found == 0:
		return types.SeverityNegative
	case float64(found)/float64(total) >= 0.5:
		return types.SeverityPositive
	default:
		return types.SeverityNeutral
	}
}
