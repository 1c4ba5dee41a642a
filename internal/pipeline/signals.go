package pipeline

import (
	"strings"
	"unicode"

	"github.com/jonathan/ats-analyzer/internal/ingestion"
	"github.com/jonathan/ats-analyzer/internal/rules"
	"github.com/jonathan/ats-analyzer/internal/types"
)

const experienceSection = "experience"

// DeriveSignals reports experience quality facts and the contact fields found
// anywhere in the text.
func DeriveSignals(doc *types.NormalizedDocument, sr *types.SectionResult, mr *types.MatchResult) types.Signals {
	signals := types.Signals{ContactInfo: ingestion.ExtractContactInfo(doc.NormalizedText)}

	exp, ok := sr.Get(experienceSection)
	if !ok || !exp.Found {
		return signals
	}
	// any digit counts: "30%", "$2M", "12 engineers"
	signals.ExperienceHasQuantifiableResults = strings.IndexFunc(strings.Join(exp.Content, "\n"), unicode.IsDigit) >= 0

	if m, ok := mr.SectionMatches[experienceSection][rules.ActionVerbGroup]; ok && m.Count > 0 {
		signals.ExperienceUsesStrongActionVerbs = true
	}
	return signals
}
