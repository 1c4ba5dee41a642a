package types

import "time"

// Explanation severities
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
	SeverityPositive = "positive"
	SeverityNeutral  = "neutral"
	SeverityNegative = "negative"
)

// Score categories, also used as explanation categories
const (
	CategorySections          = "sections"
	CategoryKeywords          = "keywords"
	CategoryFormatting        = "formatting"
	CategoryExperienceQuality = "experience_quality"
	CategorySkillsRelevance   = "skills_relevance"
	CategoryPenalties         = "penalties"
	CategoryOverall           = "overall"
)

// Explanation is one entry in the scoring audit log. Impact is the signed
// point delta the entry contributed.
type Explanation struct {
	Category string  `json:"category"`
	Message  string  `json:"message"`
	Impact   float64 `json:"impact"`
	Severity string  `json:"severity"`
}

// SectionsScore is the sections sub-score
type SectionsScore struct {
	Score           float64  `json:"score"`
	MaxScore        float64  `json:"maxScore"`
	Percentage      float64  `json:"percentage"`
	FoundCount      int      `json:"foundCount"`
	TotalCount      int      `json:"totalCount"`
	CoverageRatio   float64  `json:"coverageRatio"`
	MissingRequired []string `json:"missingRequired"`
}

// KeywordsScore is the keywords sub-score
type KeywordsScore struct {
	Score             float64 `json:"score"`
	MaxScore          float64 `json:"maxScore"`
	Percentage        float64 `json:"percentage"`
	BaseScore         float64 `json:"baseScore"`
	Bonus             float64 `json:"bonus"`
	Penalty           float64 `json:"penalty"`
	MatchedGroups     int     `json:"matchedGroups"`
	TotalGroups       int     `json:"totalGroups"`
	DistinctMatched   int     `json:"distinctMatched"`
	HighImpactMatches int     `json:"highImpactMatches"`
}

// FormattingScore is the formatting sub-score
type FormattingScore struct {
	Score        float64  `json:"score"`
	MaxScore     float64  `json:"maxScore"`
	Percentage   float64  `json:"percentage"`
	Deductions   float64  `json:"deductions"`
	FindingCount int      `json:"findingCount"`
	Findings     []string `json:"findings"`
}

// ExperienceScore is the experience-quality sub-score
type ExperienceScore struct {
	Score            float64 `json:"score"`
	MaxScore         float64 `json:"maxScore"`
	Percentage       float64 `json:"percentage"`
	ActionVerbCount  int     `json:"actionVerbCount"`
	ActionVerbScore  float64 `json:"actionVerbScore"`
	QuantifiedCount  int     `json:"quantifiedCount"`
	QuantifiedScore  float64 `json:"quantifiedScore"`
	ExceptionalBonus float64 `json:"exceptionalBonus"`
}

// SkillsScore is the skills-relevance sub-score
type SkillsScore struct {
	Score              float64 `json:"score"`
	MaxScore           float64 `json:"maxScore"`
	Percentage         float64 `json:"percentage"`
	MatchedSkills      int     `json:"matchedSkills"`
	TotalSkills        int     `json:"totalSkills"`
	MatchRatio         float64 `json:"matchRatio"`
	TechnicalSkills    int     `json:"technicalSkills"`
	TechnicalBonus     float64 `json:"technicalBonus"`
	UsesJobDescription bool    `json:"usesJobDescription"`
}

// PenaltiesScore is the negative-only contribution. Score lies in [-MaxPenalty, 0].
type PenaltiesScore struct {
	Score           float64 `json:"score"`
	MaxScore        float64 `json:"maxScore"`
	MaxPenalty      float64 `json:"maxPenalty"`
	StuffingSignals int     `json:"stuffingSignals"`
}

// ScoreBreakdown holds every category sub-score
type ScoreBreakdown struct {
	Sections          SectionsScore   `json:"sections"`
	Keywords          KeywordsScore   `json:"keywords"`
	Formatting        FormattingScore `json:"formatting"`
	ExperienceQuality ExperienceScore `json:"experience_quality"`
	SkillsRelevance   SkillsScore     `json:"skills_relevance"`
	Penalties         PenaltiesScore  `json:"penalties"`
}

// Recommendations splits advice by urgency
type Recommendations struct {
	Critical     []string `json:"critical"`
	Improvements []string `json:"improvements"`
}

// VerdictThreshold is one rung of the verdict ladder
type VerdictThreshold struct {
	Min   float64 `json:"min"`
	Label string  `json:"label"`
}

// ScoreMeta describes how a score was produced
type ScoreMeta struct {
	ScoringVersion    string             `json:"scoringVersion"`
	Analyzer          string             `json:"analyzer"`
	Timestamp         time.Time          `json:"timestamp"`
	VerdictThresholds []VerdictThreshold `json:"verdictThresholds"`
}

// ScoreResult is the scoring engine's output contract
type ScoreResult struct {
	Score           float64         `json:"score"`
	Verdict         string          `json:"verdict"`
	Breakdown       ScoreBreakdown  `json:"breakdown"`
	Explanations    []Explanation   `json:"explanations"`
	Recommendations Recommendations `json:"recommendations"`
	Meta            ScoreMeta       `json:"meta"`
}

// Signals are derived facts reported alongside the score
type Signals struct {
	ExperienceHasQuantifiableResults bool        `json:"experienceHasQuantifiableResults"`
	ExperienceUsesStrongActionVerbs  bool        `json:"experienceUsesStrongActionVerbs"`
	ContactInfo                      ContactInfo `json:"contactInfo"`
}

// Analysis carries the intermediate stage outputs for transparency
type Analysis struct {
	Stats      DocumentStats    `json:"stats"`
	Truncated  bool             `json:"truncated"`
	Sections   SectionResult    `json:"sections"`
	Keywords   MatchResult      `json:"keywords"`
	Formatting FormattingResult `json:"formatting"`
	Signals    Signals          `json:"signals"`
}

// AnalysisReport is the full pipeline response: the score contract plus the analysis block
type AnalysisReport struct {
	ScoreResult
	Analysis Analysis `json:"analysis"`
}
