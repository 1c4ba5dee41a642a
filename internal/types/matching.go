package types

// GroupMatch summarizes how one keyword group matched the full text.
// Group metadata is carried along so scoring needs no access to the rule tables.
type GroupMatch struct {
	Matched      []string       `json:"matched"`
	Counts       map[string]int `json:"counts"`
	TotalCount   int            `json:"totalCount"`
	UniqueCount  int            `json:"uniqueCount"`
	KeywordCount int            `json:"keywordCount"`
	RoleCategory string         `json:"roleCategory,omitempty"`
	Subcategory  string         `json:"subcategory,omitempty"`
	Importance   string         `json:"importance"`
	Weight       float64        `json:"weight"`
	Required     bool           `json:"required"`
}

// SectionGroupMatch is a group's match inside a single section
type SectionGroupMatch struct {
	Matched []string `json:"matched"`
	Count   int      `json:"count"`
}

// ActionVerbs lists the distinct action verbs found
type ActionVerbs struct {
	Count int      `json:"count"`
	Verbs []string `json:"verbs"`
}

// QuantifiedAchievement records one achievement pattern that matched at least once
type QuantifiedAchievement struct {
	Pattern string `json:"pattern"`
	Example string `json:"example"`
}

// StuffingSignal flags a keyword repeated more often than the configured threshold
type StuffingSignal struct {
	Keyword   string `json:"keyword"`
	Count     int    `json:"count"`
	Threshold int    `json:"threshold"`
}

// MatchResult is the output of keyword matching
type MatchResult struct {
	GlobalMatches          map[string]GroupMatch                   `json:"globalMatches"`
	SectionMatches         map[string]map[string]SectionGroupMatch `json:"sectionMatches"`
	KeywordDensity         map[string]float64                      `json:"keywordDensity"`
	ActionVerbs            ActionVerbs                             `json:"actionVerbs"`
	QuantifiedAchievements []QuantifiedAchievement                 `json:"quantifiedAchievements"`
	StuffingSignals        []StuffingSignal                        `json:"stuffingSignals"`
	TotalTokens            int                                     `json:"totalTokens"`
	DistinctMatched        int                                     `json:"distinctMatched"`
}
