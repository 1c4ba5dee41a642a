// Package sections assigns normalized résumé lines to the configured sections.
package sections

import (
	"strings"
	"unicode"

	"github.com/jonathan/ats-analyzer/internal/rules"
	"github.com/jonathan/ats-analyzer/internal/types"
)

const stage = "sections"

// Detect walks the lines in order and switches the current section whenever
// a line equals one of a section's heading aliases. Matching is exact after
// NormalizeHeading, so body text that merely mentions "education" does not
// start a section. Lines before the first recognized heading belong to no
// section and are only counted.
func Detect(lines []string, cfg []rules.SectionRule) (*types.SectionResult, error) {
	if lines == nil {
		return nil, &types.InputError{Stage: stage, Field: "lines", Message: "normalized lines are required"}
	}
	if len(cfg) == 0 {
		return nil, &types.InputError{Stage: stage, Field: "sections", Message: "at least one section must be configured"}
	}

	aliases := AliasIndex(cfg)
	result := &types.SectionResult{
		Sections:                make([]types.Section, len(cfg)),
		MissingRequiredSections: []string{},
	}
	for i, s := range cfg {
		result.Sections[i] = types.Section{
			Key:         s.Key,
			DisplayName: s.DisplayName,
			Required:    s.Required,
			Importance:  s.Importance,
			Content:     []string{},
		}
	}

	current := -1
	for _, line := range lines {
		if idx, ok := aliases[NormalizeHeading(line)]; ok {
			current = idx
			continue
		}
		if current < 0 {
			result.UnattributedLineCount++
			continue
		}
		result.Sections[current].Content = append(result.Sections[current].Content, line)
	}

	for i := range result.Sections {
		s := &result.Sections[i]
		s.Found = len(s.Content) > 0
		if s.Required && !s.Found {
			result.MissingRequiredSections = append(result.MissingRequiredSections, s.Key)
		}
	}
	return result, nil
}

// AliasIndex maps every normalized heading alias to the index of its
// section. When two sections share an alias the first configured wins.
func AliasIndex(cfg []rules.SectionRule) map[string]int {
	index := make(map[string]int)
	for i, s := range cfg {
		for _, h := range s.Headings {
			key := NormalizeHeading(h)
			if key == "" {
				continue
			}
			if _, exists := index[key]; !exists {
				index[key] = i
			}
		}
	}
	return index
}

// NormalizeHeading lower-cases a line, strips leading and trailing
// punctuation and collapses inner whitespace.
func NormalizeHeading(line string) string {
	trimmed := strings.TrimFunc(line, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
	return strings.Join(strings.Fields(strings.ToLower(trimmed)), " ")
}
