// Package rules loads, validates and caches the versioned rule tables that drive analysis.
package rules

import "github.com/jonathan/ats-analyzer/internal/types"

// Document names, one per rule table
const (
	DocSections   = "sections"
	DocKeywords   = "keywords"
	DocFormatting = "formatting"
	DocScoring    = "scoring"
)

// Documents lists every rule document in load order
var Documents = []string{DocSections, DocKeywords, DocFormatting, DocScoring}

// ActionVerbGroup is the keyword group surfaced separately as action verbs
const ActionVerbGroup = "action_verbs"

// Meta is the common header of every rule document
type Meta struct {
	Version        string `json:"version"`
	TargetAudience string `json:"targetAudience,omitempty"`
	Description    string `json:"description,omitempty"`
}

// SectionRule configures one résumé section and its heading aliases
type SectionRule struct {
	Key         string   `json:"key"`
	DisplayName string   `json:"displayName"`
	Required    bool     `json:"required"`
	Importance  string   `json:"importance"`
	Headings    []string `json:"headings"`
}

// SectionRules is the section rule table
type SectionRules struct {
	Meta     Meta          `json:"meta"`
	Sections []SectionRule `json:"sections"`
}

// MatchingConfig holds keyword matching mode flags
type MatchingConfig struct {
	EnableSynonyms       bool `json:"enableSynonyms"`
	EnablePhraseMatching bool `json:"enablePhraseMatching"`
	AllowPartialMatches  bool `json:"allowPartialMatches"`
}

// KeywordGroup is one configured group of keywords
type KeywordGroup struct {
	Group        string              `json:"group"`
	RoleCategory string              `json:"roleCategory"`
	Subcategory  string              `json:"subcategory"`
	Importance   string              `json:"importance"`
	Weight       float64             `json:"weight"`
	Required     bool                `json:"required"`
	Keywords     []string            `json:"keywords"`
	Synonyms     map[string][]string `json:"synonyms,omitempty"`
}

// KeywordBonuses holds achievement pattern configuration
type KeywordBonuses struct {
	QuantifiedAchievements struct {
		Patterns []string `json:"patterns"`
	} `json:"quantifiedAchievements"`
}

// KeywordPenalties holds stuffing detection configuration
type KeywordPenalties struct {
	KeywordStuffing struct {
		Enabled         bool `json:"enabled"`
		RepeatThreshold int  `json:"repeatThreshold"`
	} `json:"keywordStuffing"`
}

// KeywordRules is the keyword rule table
type KeywordRules struct {
	Meta           Meta             `json:"meta"`
	MatchingConfig MatchingConfig   `json:"matchingConfig"`
	KeywordGroups  []KeywordGroup   `json:"keywordGroups"`
	Bonuses        KeywordBonuses   `json:"bonuses"`
	Penalties      KeywordPenalties `json:"penalties"`
}

// ATSCompatibility lists layout features the policy tolerates
type ATSCompatibility struct {
	AllowMultiColumn bool `json:"allowMultiColumn"`
	AllowTables      bool `json:"allowTables"`
	AllowImages      bool `json:"allowImages"`
}

// StructureRules holds document structure limits
type StructureRules struct {
	MaxPages int `json:"maxPages"`
}

// FormattingRules is the formatting policy table
type FormattingRules struct {
	Meta             Meta             `json:"meta"`
	ATSCompatibility ATSCompatibility `json:"atsCompatibility"`
	StructureRules   StructureRules   `json:"structureRules"`
}

// BaseWeights are the maximum points of each score category
type BaseWeights struct {
	Sections          float64 `json:"sections"`
	Keywords          float64 `json:"keywords"`
	Formatting        float64 `json:"formatting"`
	ExperienceQuality float64 `json:"experience_quality"`
	SkillsRelevance   float64 `json:"skills_relevance"`
}

// ScoreScale bounds the final score
type ScoreScale struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

// Tier is one rung of a threshold ladder
type Tier struct {
	Min   float64 `json:"min"`
	Score float64 `json:"score"`
}

// CoverageThreshold applies Penalty when distinct matched keywords are below Below
type CoverageThreshold struct {
	Below   int     `json:"below"`
	Penalty float64 `json:"penalty"`
}

// BonusConfig configures the additive bonuses
type BonusConfig struct {
	SectionCoverage struct {
		Threshold float64 `json:"threshold"`
		Bonus     float64 `json:"bonus"`
	} `json:"sectionCoverage"`
	KeywordDiversity struct {
		PointsPerGroup float64 `json:"pointsPerGroup"`
		MaxBonus       float64 `json:"maxBonus"`
	} `json:"keywordDiversity"`
	HighImpactKeywords struct {
		PointsPerMatch float64  `json:"pointsPerMatch"`
		MaxBonus       float64  `json:"maxBonus"`
		Tiers          []string `json:"tiers"`
	} `json:"highImpactKeywords"`
	TechnicalSkills struct {
		PointsPerSkill float64  `json:"pointsPerSkill"`
		MaxBonus       float64  `json:"maxBonus"`
		Tags           []string `json:"tags"`
	} `json:"technicalSkills"`
}

// PenaltyConfig configures the negative adjustments. Penalty values are
// treated as magnitudes, so either sign may be used in the document.
type PenaltyConfig struct {
	MultipleMissingSections struct {
		PenaltyPerAdditional float64 `json:"penaltyPerAdditional"`
	} `json:"multipleMissingSections"`
	LowKeywordCoverage struct {
		Thresholds []CoverageThreshold `json:"thresholds"`
	} `json:"lowKeywordCoverage"`
	KeywordStuffing struct {
		PenaltyPerViolation float64 `json:"penaltyPerViolation"`
		MaxPenalty          float64 `json:"maxPenalty"`
	} `json:"keywordStuffing"`
}

// Caps bounds bonuses and penalties per category
type Caps struct {
	MaxKeywordBonus      float64 `json:"maxKeywordBonus"`
	MaxFormattingPenalty float64 `json:"maxFormattingPenalty"`
	MaxSkillsBonus       float64 `json:"maxSkillsBonus"`
	MaxKeywordPenalty    float64 `json:"maxKeywordPenalty"`
}

// ExperienceSignals configures the experience-quality ladders
type ExperienceSignals struct {
	ActionVerbThresholds []Tier   `json:"actionVerbThresholds"`
	ActionVerbMaxScore   float64  `json:"actionVerbMaxScore"`
	QuantifiedThresholds []Tier   `json:"quantifiedThresholds"`
	QuantifiedMaxScore   float64  `json:"quantifiedMaxScore"`
	BonusForExceptional  float64  `json:"bonusForExceptional"`
	ExceptionalRatio     *float64 `json:"exceptionalRatio,omitempty"`
}

// SkillsConfig configures skills relevance
type SkillsConfig struct {
	MatchRatioTiers []Tier   `json:"matchRatioTiers"`
	ExcludeGroups   []string `json:"excludeGroups"`
}

// ScoringRules is the scoring rule table
type ScoringRules struct {
	Meta                  Meta                     `json:"meta"`
	BaseWeights           *BaseWeights             `json:"baseWeights"`
	ScoreScale            *ScoreScale              `json:"scoreScale"`
	SectionWeights        map[string]float64       `json:"sectionWeights"`
	MissingSectionPenalty float64                  `json:"missingSectionPenalty"`
	BonusConfig           BonusConfig              `json:"bonusConfig"`
	PenaltyConfig         PenaltyConfig            `json:"penaltyConfig"`
	KeywordWeights        map[string]float64       `json:"keywordWeights"`
	FormattingPenaltyMap  map[string]float64       `json:"formattingPenaltyMap"`
	Caps                  Caps                     `json:"caps"`
	ExperienceSignals     ExperienceSignals        `json:"experienceSignals"`
	SkillsConfig          SkillsConfig             `json:"skillsConfig"`
	VerdictThresholds     []types.VerdictThreshold `json:"verdictThresholds"`
}

// MinScore returns the configured score floor.
func (r *ScoringRules) MinScore() float64 {
	return *r.ScoreScale.Min
}

// MaxScore returns the configured score ceiling.
func (r *ScoringRules) MaxScore() float64 {
	return *r.ScoreScale.Max
}
