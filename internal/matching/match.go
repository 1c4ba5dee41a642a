// Package matching counts configured keyword groups in a normalized résumé.
package matching

import (
	"math"
	"sort"
	"strings"

	"github.com/jonathan/ats-analyzer/internal/rules"
	"github.com/jonathan/ats-analyzer/internal/types"
)

const stage = "matching"

// Match counts every compiled keyword in the full text and, separately, in
// each found section. The two counts are independent: the full text also
// covers lines outside any section.
func Match(doc *types.NormalizedDocument, sections *types.SectionResult, kw *rules.CompiledKeywords) (*types.MatchResult, error) {
	if doc == nil {
		return nil, &types.InputError{Stage: stage, Field: "normalizedText", Message: "normalized document is required"}
	}
	if sections == nil || sections.Sections == nil {
		return nil, &types.InputError{Stage: stage, Field: "sections", Message: "section records are required"}
	}
	if kw == nil {
		return nil, &types.ConfigError{Code: types.CodeConfigInvalidStructure, Source: rules.DocKeywords, Message: "compiled keyword rules are required"}
	}

	result := &types.MatchResult{
		GlobalMatches:          make(map[string]types.GroupMatch, len(kw.Groups)),
		SectionMatches:         make(map[string]map[string]types.SectionGroupMatch),
		KeywordDensity:         make(map[string]float64, len(kw.Groups)),
		ActionVerbs:            types.ActionVerbs{Verbs: []string{}},
		QuantifiedAchievements: []types.QuantifiedAchievement{},
		StuffingSignals:        []types.StuffingSignal{},
		TotalTokens:            len(doc.Tokens),
	}

	termCounts := make(map[string]int)
	// Action verbs are repeated keywords too, so stuffing sees them even
	// though they stay out of the group map.
	repeatCounts := make(map[string]int)
	for _, g := range kw.Groups {
		gm := countGroup(doc.LowerText, g)
		for term, n := range gm.Counts {
			repeatCounts[term] = n
		}

		if g.ID == rules.ActionVerbGroup {
			result.ActionVerbs = types.ActionVerbs{Count: gm.UniqueCount, Verbs: gm.Matched}
			continue
		}

		result.GlobalMatches[g.ID] = gm
		result.KeywordDensity[g.ID] = density(gm.TotalCount, len(doc.Tokens))
		for term, n := range gm.Counts {
			termCounts[term] = n
		}
	}
	result.DistinctMatched = len(termCounts)

	for _, s := range sections.Sections {
		if !s.Found {
			continue
		}
		text := strings.ToLower(strings.Join(s.Content, "\n"))
		perGroup := make(map[string]types.SectionGroupMatch)
		for _, g := range kw.Groups {
			gm := countGroup(text, g)
			if gm.TotalCount == 0 {
				continue
			}
			perGroup[g.ID] = types.SectionGroupMatch{Matched: gm.Matched, Count: gm.TotalCount}
		}
		result.SectionMatches[s.Key] = perGroup
	}

	result.QuantifiedAchievements = FindAchievements(strings.Join(doc.LogicalLines, "\n"), kw.Achievements)

	if kw.StuffingEnabled {
		result.StuffingSignals = StuffingSignals(repeatCounts, kw.RepeatThreshold)
	}
	return result, nil
}

// countGroup counts each keyword of a group in text. Matched keeps the
// group's keyword order.
func countGroup(text string, g rules.CompiledGroup) types.GroupMatch {
	gm := types.GroupMatch{
		Matched:      []string{},
		Counts:       make(map[string]int),
		KeywordCount: len(g.Keywords),
		RoleCategory: g.RoleCategory,
		Subcategory:  g.Subcategory,
		Importance:   g.Importance,
		Weight:       g.Weight,
		Required:     g.Required,
	}
	for _, k := range g.Keywords {
		n := len(k.Pattern.FindAllStringIndex(text, -1))
		if n == 0 {
			continue
		}
		gm.Matched = append(gm.Matched, k.Term)
		gm.Counts[k.Term] = n
		gm.TotalCount += n
	}
	gm.UniqueCount = len(gm.Matched)
	return gm
}

// FindAchievements records each pattern that matches at least once, with
// its first match as the example.
func FindAchievements(text string, patterns []rules.CompiledPattern) []types.QuantifiedAchievement {
	found := []types.QuantifiedAchievement{}
	for _, p := range patterns {
		if m := p.Re.FindString(text); m != "" {
			found = append(found, types.QuantifiedAchievement{Pattern: p.Source, Example: strings.TrimSpace(m)})
		}
	}
	return found
}

// StuffingSignals flags every keyword counted more than threshold times, sorted by keyword.
func StuffingSignals(termCounts map[string]int, threshold int) []types.StuffingSignal {
	signals := []types.StuffingSignal{}
	if threshold <= 0 {
		return signals
	}
	for term, n := range termCounts {
		if n > threshold {
			signals = append(signals, types.StuffingSignal{Keyword: term, Count: n, Threshold: threshold})
		}
	}
	sort.Slice(signals, func(i, j int) bool { return signals[i].Keyword < signals[j].Keyword })
	return signals
}

// MatchedTerms returns the distinct keywords found in text across the
// given groups, sorted. It is used to build a job-description skill set.
func MatchedTerms(text string, kw *rules.CompiledKeywords, exclude map[string]bool) []string {
	lower := strings.ToLower(text)
	seen := make(map[string]bool)
	for _, g := range kw.Groups {
		if exclude[g.ID] {
			continue
		}
		for _, k := range g.Keywords {
			if !seen[k.Term] && k.Pattern.MatchString(lower) {
				seen[k.Term] = true
			}
		}
	}
	terms := make([]string, 0, len(seen))
	for t := range seen {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	return terms
}

func density(count, tokens int) float64 {
	if tokens == 0 {
		return 0
	}
	return math.Round(float64(count)/float64(tokens)*10000) / 10000
}
