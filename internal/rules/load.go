package rules

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jonathan/ats-analyzer/internal/schemas"
	"github.com/jonathan/ats-analyzer/internal/types"
)

// defaultMaxPages applies when the formatting policy sets no page limit
const defaultMaxPages = 2

// Set is one loaded, validated and compiled generation of the rule tables
type Set struct {
	Sections   *SectionRules
	Keywords   *CompiledKeywords
	Formatting *FormattingRules
	Scoring    *ScoringRules
	Source     string
	LoadedAt   time.Time
}

// Versions reports the meta.version of each document.
func (s *Set) Versions() map[string]string {
	return map[string]string{
		DocSections:   s.Sections.Meta.Version,
		DocKeywords:   s.Keywords.Rules.Meta.Version,
		DocFormatting: s.Formatting.Meta.Version,
		DocScoring:    s.Scoring.Meta.Version,
	}
}

// Load reads every rule document from src and builds a Set.
func Load(ctx context.Context, src Source) (*Set, error) {
	raw := make(map[string][]byte, len(Documents))
	for _, doc := range Documents {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := src.Read(ctx, doc)
		if err != nil {
			return nil, &types.ConfigError{
				Code:    types.CodeConfigFileNotFound,
				Source:  doc,
				Message: fmt.Sprintf("rule document unavailable from %s", src.Name()),
				Cause:   err,
			}
		}
		raw[doc] = data
	}

	set, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	set.Source = src.Name()
	return set, nil
}

// Parse builds a Set from raw documents keyed by document name.
func Parse(raw map[string][]byte) (*Set, error) {
	for _, doc := range Documents {
		if _, ok := raw[doc]; !ok {
			return nil, &types.ConfigError{Code: types.CodeConfigFileNotFound, Source: doc, Message: "rule document missing"}
		}
	}

	sections, err := ParseSections(raw[DocSections])
	if err != nil {
		return nil, err
	}
	keywords, err := ParseKeywords(raw[DocKeywords])
	if err != nil {
		return nil, err
	}
	formatting, err := ParseFormatting(raw[DocFormatting])
	if err != nil {
		return nil, err
	}
	scoring, err := ParseScoring(raw[DocScoring])
	if err != nil {
		return nil, err
	}

	return &Set{
		Sections:   sections,
		Keywords:   keywords,
		Formatting: formatting,
		Scoring:    scoring,
		LoadedAt:   time.Now().UTC(),
	}, nil
}

// ParseSections decodes and validates the section rule table.
func ParseSections(data []byte) (*SectionRules, error) {
	var sr SectionRules
	if err := decode(DocSections, data, &sr); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(sr.Sections))
	for i, s := range sr.Sections {
		if seen[s.Key] {
			return nil, structureError(DocSections, fmt.Sprintf("duplicate section key %q", s.Key))
		}
		seen[s.Key] = true
		if s.DisplayName == "" {
			sr.Sections[i].DisplayName = s.Key
		}
	}
	return &sr, nil
}

// ParseKeywords decodes, validates and compiles the keyword rule table.
func ParseKeywords(data []byte) (*CompiledKeywords, error) {
	var kr KeywordRules
	if err := decode(DocKeywords, data, &kr); err != nil {
		return nil, err
	}
	return CompileKeywords(&kr)
}

// ParseFormatting decodes and validates the formatting policy.
func ParseFormatting(data []byte) (*FormattingRules, error) {
	var fr FormattingRules
	if err := decode(DocFormatting, data, &fr); err != nil {
		return nil, err
	}
	if fr.StructureRules.MaxPages <= 0 {
		fr.StructureRules.MaxPages = defaultMaxPages
	}
	return &fr, nil
}

// ParseScoring decodes and validates the scoring rules. Nested optional
// fields absent from the document keep their fallback values, but
// baseWeights and scoreScale are mandatory.
func ParseScoring(data []byte) (*ScoringRules, error) {
	sr := scoringFallbacks()
	if err := decode(DocScoring, data, sr); err != nil {
		return nil, err
	}
	if err := ValidateScoring(sr); err != nil {
		return nil, err
	}

	sort.SliceStable(sr.VerdictThresholds, func(i, j int) bool {
		return sr.VerdictThresholds[i].Min > sr.VerdictThresholds[j].Min
	})
	sortTiers(sr.ExperienceSignals.ActionVerbThresholds)
	sortTiers(sr.ExperienceSignals.QuantifiedThresholds)
	sortTiers(sr.SkillsConfig.MatchRatioTiers)
	return sr, nil
}

// ValidateScoring checks the semantic constraints a schema cannot express.
func ValidateScoring(sr *ScoringRules) error {
	if sr == nil {
		return structureError(DocScoring, "scoring rules are missing")
	}
	if sr.BaseWeights == nil {
		return structureError(DocScoring, "baseWeights is required")
	}
	bw := sr.BaseWeights
	if bw.Sections+bw.Keywords+bw.Formatting+bw.ExperienceQuality+bw.SkillsRelevance <= 0 {
		return structureError(DocScoring, "baseWeights must allocate at least one point")
	}
	if sr.ScoreScale == nil || sr.ScoreScale.Min == nil || sr.ScoreScale.Max == nil {
		return structureError(DocScoring, "scoreScale.min and scoreScale.max are required")
	}
	if *sr.ScoreScale.Min >= *sr.ScoreScale.Max {
		return structureError(DocScoring, fmt.Sprintf("scoreScale.min (%g) must be below scoreScale.max (%g)", *sr.ScoreScale.Min, *sr.ScoreScale.Max))
	}
	if len(sr.VerdictThresholds) == 0 {
		return structureError(DocScoring, "verdictThresholds must not be empty")
	}
	return nil
}

// decode runs the JSON, schema and struct decoding steps shared by every document
func decode(doc string, data []byte, into any) error {
	var probe any
	if err := json.Unmarshal(data, &probe); err != nil {
		return &types.ConfigError{
			Code:    types.CodeConfigInvalidJSON,
			Source:  doc,
			Message: "rule document is not valid JSON",
			Cause:   err,
		}
	}

	if err := schemas.ValidateDocument(doc, data); err != nil {
		var validationErr *schemas.ValidationError
		msg := "rule document failed schema validation"
		if errors.As(err, &validationErr) && len(validationErr.Errors) > 0 {
			first := validationErr.Errors[0]
			msg = fmt.Sprintf("%s: %s", first.Field, first.Message)
		}
		return &types.ConfigError{Code: types.CodeConfigInvalidStructure, Source: doc, Message: msg, Cause: err}
	}

	if err := json.Unmarshal(data, into); err != nil {
		return &types.ConfigError{
			Code:    types.CodeConfigInvalidStructure,
			Source:  doc,
			Message: "rule document does not match the expected shape",
			Cause:   err,
		}
	}
	return nil
}

func structureError(doc, msg string) error {
	return &types.ConfigError{Code: types.CodeConfigInvalidStructure, Source: doc, Message: msg}
}

// sortTiers orders a ladder highest threshold first
func sortTiers(tiers []Tier) {
	sort.SliceStable(tiers, func(i, j int) bool { return tiers[i].Min > tiers[j].Min })
}

// scoringFallbacks returns the values used for nested scoring fields a document omits
func scoringFallbacks() *ScoringRules {
	ratio := 0.8
	sr := &ScoringRules{
		SectionWeights:        map[string]float64{},
		MissingSectionPenalty: -4,
		KeywordWeights: map[string]float64{
			"very_high": 2,
			"high":      1.5,
			"medium":    1,
			"low":       0.5,
		},
		FormattingPenaltyMap: map[string]float64{
			types.FindingMultiColumn:         6,
			types.FindingTables:              5,
			types.FindingImagesOrIcons:       3,
			types.FindingExcessiveCaps:       2,
			types.FindingExcessiveWhitespace: 1,
			types.FindingInconsistentBullets: 1,
			types.FindingExceedsMaxPages:     3,
		},
		Caps: Caps{
			MaxKeywordBonus:      5,
			MaxFormattingPenalty: 15,
			MaxSkillsBonus:       2,
			MaxKeywordPenalty:    6,
		},
		ExperienceSignals: ExperienceSignals{
			ActionVerbThresholds: []Tier{{Min: 12, Score: 8}, {Min: 8, Score: 6}, {Min: 5, Score: 4}, {Min: 2, Score: 2}, {Min: 1, Score: 1}},
			ActionVerbMaxScore:   8,
			QuantifiedThresholds: []Tier{{Min: 5, Score: 5}, {Min: 3, Score: 4}, {Min: 2, Score: 3}, {Min: 1, Score: 2}},
			QuantifiedMaxScore:   5,
			BonusForExceptional:  2,
			ExceptionalRatio:     &ratio,
		},
		SkillsConfig: SkillsConfig{
			MatchRatioTiers: []Tier{{Min: 0.8, Score: 8.5}, {Min: 0.6, Score: 7}, {Min: 0.4, Score: 5}, {Min: 0.2, Score: 3}, {Min: 0.01, Score: 1}},
			ExcludeGroups:   []string{ActionVerbGroup},
		},
		VerdictThresholds: DefaultVerdictThresholds(),
	}
	sr.BonusConfig.SectionCoverage.Threshold = 0.75
	sr.BonusConfig.SectionCoverage.Bonus = 2
	sr.BonusConfig.KeywordDiversity.PointsPerGroup = 1
	sr.BonusConfig.KeywordDiversity.MaxBonus = 3
	sr.BonusConfig.HighImpactKeywords.PointsPerMatch = 0.5
	sr.BonusConfig.HighImpactKeywords.MaxBonus = 3
	sr.BonusConfig.HighImpactKeywords.Tiers = []string{"very_high", "high"}
	sr.BonusConfig.TechnicalSkills.PointsPerSkill = 0.5
	sr.BonusConfig.TechnicalSkills.MaxBonus = 2
	sr.BonusConfig.TechnicalSkills.Tags = []string{"technical", "programming", "framework", "database"}
	sr.PenaltyConfig.MultipleMissingSections.PenaltyPerAdditional = -3
	sr.PenaltyConfig.LowKeywordCoverage.Thresholds = []CoverageThreshold{{Below: 3, Penalty: -6}, {Below: 6, Penalty: -3}}
	sr.PenaltyConfig.KeywordStuffing.PenaltyPerViolation = -3
	sr.PenaltyConfig.KeywordStuffing.MaxPenalty = 10
	return sr
}

// DefaultVerdictThresholds is the seven-label verdict ladder, highest first.
func DefaultVerdictThresholds() []types.VerdictThreshold {
	return []types.VerdictThreshold{
		{Min: 90, Label: "Excellent"},
		{Min: 80, Label: "Very Good"},
		{Min: 70, Label: "Good"},
		{Min: 60, Label: "Fair"},
		{Min: 50, Label: "Needs Improvement"},
		{Min: 35, Label: "Poor"},
		{Min: 0, Label: "Very Poor"},
	}
}
