package rules

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/jonathan/ats-analyzer/internal/types"
)

// MatchMode selects how a keyword is anchored when compiled
type MatchMode int

const (
	// ModeWordBoundary anchors the keyword at word boundaries
	ModeWordBoundary MatchMode = iota
	// ModePhrase anchors the outer edges and lets inner words span any whitespace or hyphen
	ModePhrase
	// ModePartial matches the keyword anywhere, including inside longer words
	ModePartial
)

// CompiledKeyword is a keyword with its precompiled pattern
type CompiledKeyword struct {
	Term    string
	Pattern *regexp.Regexp
}

// CompiledGroup is a keyword group ready for matching
type CompiledGroup struct {
	ID           string
	RoleCategory string
	Subcategory  string
	Importance   string
	Weight       float64
	Required     bool
	Keywords     []CompiledKeyword
}

// CompiledPattern is a quantified-achievement pattern
type CompiledPattern struct {
	Source string
	Re     *regexp.Regexp
}

// CompiledKeywords holds the keyword table with every pattern compiled once at load time.
type CompiledKeywords struct {
	Rules           *KeywordRules
	Groups          []CompiledGroup
	Achievements    []CompiledPattern
	StuffingEnabled bool
	RepeatThreshold int
}

// Group returns the compiled group with the given id.
func (c *CompiledKeywords) Group(id string) (CompiledGroup, bool) {
	for _, g := range c.Groups {
		if g.ID == id {
			return g, true
		}
	}
	return CompiledGroup{}, false
}

// defaultRepeatThreshold applies when stuffing detection is enabled without a threshold
const defaultRepeatThreshold = 8

// KeywordPattern builds the regular expression used to count a lower-cased keyword.
// Metacharacters in the keyword are escaped. A \b anchor is only added on a
// side where the keyword begins or ends with a word character, so terms such
// as "c++" or ".net" still match.
func KeywordPattern(term string, mode MatchMode) (*regexp.Regexp, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil, fmt.Errorf("empty keyword")
	}

	var body string
	switch mode {
	case ModePartial:
		return regexp.Compile(regexp.QuoteMeta(term))
	case ModePhrase:
		words := strings.Fields(term)
		quoted := make([]string, len(words))
		for i, w := range words {
			quoted[i] = regexp.QuoteMeta(w)
		}
		body = strings.Join(quoted, `[\s\-]+`)
	default:
		body = regexp.QuoteMeta(term)
	}

	runes := []rune(term)
	prefix, suffix := "", ""
	if isWordRune(runes[0]) {
		prefix = `\b`
	}
	if isWordRune(runes[len(runes)-1]) {
		suffix = `\b`
	}
	return regexp.Compile(prefix + body + suffix)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// modeFor picks the match mode for a term under the matching config
func modeFor(term string, cfg MatchingConfig) MatchMode {
	if cfg.AllowPartialMatches {
		return ModePartial
	}
	if cfg.EnablePhraseMatching && strings.Contains(strings.TrimSpace(term), " ") {
		return ModePhrase
	}
	return ModeWordBoundary
}

// expandGroup returns the deduplicated, lower-cased keyword set for a group in
// first-seen order, including synonyms when enabled.
func expandGroup(g KeywordGroup, enableSynonyms bool) []string {
	seen := make(map[string]bool)
	terms := make([]string, 0, len(g.Keywords))
	add := func(t string) {
		t = strings.Join(strings.Fields(strings.ToLower(t)), " ")
		if t == "" || seen[t] {
			return
		}
		seen[t] = true
		terms = append(terms, t)
	}

	for _, kw := range g.Keywords {
		add(kw)
	}
	if enableSynonyms && len(g.Synonyms) > 0 {
		// Iterate canonical keys in sorted order so expansion is deterministic
		keys := make([]string, 0, len(g.Synonyms))
		for k := range g.Synonyms {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			add(k)
			for _, syn := range g.Synonyms[k] {
				add(syn)
			}
		}
	}
	return terms
}

// CompileKeywords compiles every keyword and achievement pattern of the table.
// Identical term/mode pairs share one compiled expression.
func CompileKeywords(kr *KeywordRules) (*CompiledKeywords, error) {
	if kr == nil {
		return nil, &types.ConfigError{Code: types.CodeConfigInvalidStructure, Source: DocKeywords, Message: "keyword rules are nil"}
	}

	type memoKey struct {
		term string
		mode MatchMode
	}
	memo := make(map[memoKey]*regexp.Regexp)

	compiled := &CompiledKeywords{
		Rules:           kr,
		Groups:          make([]CompiledGroup, 0, len(kr.KeywordGroups)),
		StuffingEnabled: kr.Penalties.KeywordStuffing.Enabled,
		RepeatThreshold: kr.Penalties.KeywordStuffing.RepeatThreshold,
	}
	if compiled.StuffingEnabled && compiled.RepeatThreshold <= 0 {
		compiled.RepeatThreshold = defaultRepeatThreshold
	}

	seenGroups := make(map[string]bool)
	for _, g := range kr.KeywordGroups {
		if seenGroups[g.Group] {
			return nil, &types.ConfigError{
				Code:    types.CodeConfigInvalidStructure,
				Source:  DocKeywords,
				Message: fmt.Sprintf("duplicate keyword group %q", g.Group),
			}
		}
		seenGroups[g.Group] = true

		cg := CompiledGroup{
			ID:           g.Group,
			RoleCategory: g.RoleCategory,
			Subcategory:  g.Subcategory,
			Importance:   strings.ToLower(g.Importance),
			Weight:       g.Weight,
			Required:     g.Required,
		}
		if cg.Weight <= 0 {
			cg.Weight = 1
		}

		for _, term := range expandGroup(g, kr.MatchingConfig.EnableSynonyms) {
			key := memoKey{term: term, mode: modeFor(term, kr.MatchingConfig)}
			re, ok := memo[key]
			if !ok {
				var err error
				re, err = KeywordPattern(term, key.mode)
				if err != nil {
					return nil, &types.ConfigError{
						Code:    types.CodeConfigInvalidStructure,
						Source:  DocKeywords,
						Message: fmt.Sprintf("keyword %q in group %q cannot be compiled", term, g.Group),
						Cause:   err,
					}
				}
				memo[key] = re
			}
			cg.Keywords = append(cg.Keywords, CompiledKeyword{Term: term, Pattern: re})
		}
		compiled.Groups = append(compiled.Groups, cg)
	}

	sort.Slice(compiled.Groups, func(i, j int) bool {
		return compiled.Groups[i].ID < compiled.Groups[j].ID
	})

	for _, p := range kr.Bonuses.QuantifiedAchievements.Patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, &types.ConfigError{
				Code:    types.CodeConfigInvalidStructure,
				Source:  DocKeywords,
				Message: fmt.Sprintf("quantified achievement pattern %q is not a valid regular expression", p),
				Cause:   err,
			}
		}
		compiled.Achievements = append(compiled.Achievements, CompiledPattern{Source: p, Re: re})
	}

	return compiled, nil
}
