package scoring

import (
	"fmt"
	"strings"

	"github.com/jonathan/ats-analyzer/internal/rules"
	"github.com/jonathan/ats-analyzer/internal/types"
)

// majorFindings are formatting risks that commonly break ATS parsing outright
var majorFindings = map[string]bool{
	types.FindingMultiColumn:   true,
	types.FindingTables:        true,
	types.FindingImagesOrIcons: true,
}

var findingAdvice = map[string]string{
	types.FindingMultiColumn:         "Use a single-column layout; ATS parsers read columns out of order",
	types.FindingTables:              "Replace tables with plain text lists",
	types.FindingImagesOrIcons:       "Remove icons and decorative symbols; ATS parsers cannot read them",
	types.FindingExcessiveCaps:       "Reserve all-caps for section headings",
	types.FindingExcessiveWhitespace: "Remove runs of blank lines",
	types.FindingInconsistentBullets: "Use one bullet style throughout",
	types.FindingExceedsMaxPages:     "Shorten the résumé to fit the page limit",
}

const (
	minActionVerbs  = 5
	minQuantified   = 2
	lowScoreBand    = 50
	middleScoreBand = 70
)

// recommend derives advice from structural facts only, so the same inputs
// always give the same text.
func recommend(in Input, b types.ScoreBreakdown, total float64, r *rules.ScoringRules) types.Recommendations {
	recs := types.Recommendations{Critical: []string{}, Improvements: []string{}}

	for _, s := range missingRequired(in.Sections) {
		recs.Critical = append(recs.Critical, fmt.Sprintf("Add a %q section", s.DisplayName))
	}
	for _, id := range in.Formatting.RuleFindings {
		advice, ok := findingAdvice[id]
		if !ok {
			advice = fmt.Sprintf("Fix formatting issue: %s", id)
		}
		if majorFindings[id] {
			recs.Critical = append(recs.Critical, advice)
		} else {
			recs.Improvements = append(recs.Improvements, advice)
		}
	}
	if n := len(in.Keywords.StuffingSignals); n > 0 {
		terms := make([]string, 0, n)
		for _, s := range in.Keywords.StuffingSignals {
			terms = append(terms, s.Keyword)
		}
		recs.Critical = append(recs.Critical, fmt.Sprintf("Reduce repetition of %s; repeated keywords read as stuffing", strings.Join(terms, ", ")))
	}

	if b.ExperienceQuality.ActionVerbCount < minActionVerbs {
		recs.Improvements = append(recs.Improvements, "Start more experience bullets with strong action verbs such as built, led or reduced")
	}
	if b.ExperienceQuality.QuantifiedCount < minQuantified {
		recs.Improvements = append(recs.Improvements, "Quantify results with numbers, percentages or amounts")
	}
	for _, id := range unmatchedRequiredGroups(in.Keywords, r) {
		recs.Improvements = append(recs.Improvements, fmt.Sprintf("Add relevant %s keywords", strings.ReplaceAll(id, "_", " ")))
	}

	switch {
	case total < lowScoreBand:
		recs.Improvements = append(recs.Improvements, "Restructure the résumé around standard sections and role-specific keywords")
	case total < middleScoreBand:
		recs.Improvements = append(recs.Improvements, "Tailor skills and experience wording to the target role")
	}
	if !in.HasJobDescription {
		recs.Improvements = append(recs.Improvements, "Provide a job description for a relevance-weighted skills score")
	}
	return recs
}
