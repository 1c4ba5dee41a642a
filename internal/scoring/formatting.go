package scoring

import (
	"fmt"

	"github.com/jonathan/ats-analyzer/internal/rules"
	"github.com/jonathan/ats-analyzer/internal/types"
)

// defaultFindingPenalty applies to findings absent from formattingPenaltyMap
const defaultFindingPenalty = 2.0

// findingLabels are the human-readable names of formatting findings
var findingLabels = map[string]string{
	types.FindingMultiColumn:         "Multi-column layout",
	types.FindingTables:              "Tables",
	types.FindingImagesOrIcons:       "Images or decorative icons",
	types.FindingExcessiveCaps:       "Excessive capitalization",
	types.FindingExcessiveWhitespace: "Excessive blank space",
	types.FindingInconsistentBullets: "Inconsistent bullet styles",
	types.FindingExceedsMaxPages:     "Document longer than the page limit",
}

func findingLabel(id string) string {
	if l, ok := findingLabels[id]; ok {
		return l
	}
	return id
}

// scoreFormatting starts from the category maximum and deducts the
// configured penalty of every finding.
func scoreFormatting(fr *types.FormattingResult, r *rules.ScoringRules) (types.FormattingScore, []types.Explanation) {
	maxScore := r.BaseWeights.Formatting
	var explanations []types.Explanation

	deductions := 0.0
	for _, id := range fr.RuleFindings {
		p, ok := r.FormattingPenaltyMap[id]
		if !ok {
			p = defaultFindingPenalty
		}
		p = magnitude(p)
		deductions += p
		explanations = append(explanations, types.Explanation{
			Category: types.CategoryFormatting,
			Message:  fmt.Sprintf("%s may confuse ATS parsers", findingLabel(id)),
			Impact:   -p,
			Severity: findingSeverity(p),
		})
	}
	deductions = capAt(deductions, magnitude(r.Caps.MaxFormattingPenalty))

	if len(fr.RuleFindings) == 0 {
		explanations = append(explanations, types.Explanation{
			Category: types.CategoryFormatting,
			Message:  "No ATS formatting risks detected",
			Impact:   0,
			Severity: types.SeverityPositive,
		})
	}

	score := round2(clamp(maxScore-deductions, 0, maxScore))
	findings := append([]string{}, fr.RuleFindings...)
	return types.FormattingScore{
		Score:        score,
		MaxScore:     maxScore,
		Percentage:   percentage(score, maxScore),
		Deductions:   -round2(deductions),
		FindingCount: len(findings),
		Findings:     findings,
	}, explanations
}

func findingSeverity(penalty float64) string {
	switch {
	case penalty >= 5:
		return types.SeverityHigh
	case penalty >= 3:
		return types.SeverityMedium
	default:
		return types.SeverityLow
	}
}
