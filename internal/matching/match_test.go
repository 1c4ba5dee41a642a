package matching

import (
	"context"
	"strings"
	"testing"

	"github.com/jonathan/ats-analyzer/internal/ingestion"
	"github.com/jonathan/ats-analyzer/internal/rules"
	"github.com/jonathan/ats-analyzer/internal/sections"
	"github.com/jonathan/ats-analyzer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadDefaults(t *testing.T) *rules.Set {
	t.Helper()
	set, err := rules.Load(context.Background(), rules.EmbeddedSource{})
	require.NoError(t, err)
	return set
}

func analyze(t *testing.T, set *rules.Set, text string) *types.MatchResult {
	t.Helper()
	doc := ingestion.Normalize(text)
	secs, err := sections.Detect(doc.NormalizedLines, set.Sections.Sections)
	require.NoError(t, err)
	result, err := Match(doc, secs, set.Keywords)
	require.NoError(t, err)
	return result
}

func compile(t *testing.T, kr *rules.KeywordRules) *rules.CompiledKeywords {
	t.Helper()
	compiled, err := rules.CompileKeywords(kr)
	require.NoError(t, err)
	return compiled
}

func TestMatch_GlobalAndSectionCounts(t *testing.T) {
	set := loadDefaults(t)
	text := "Golang and Python developer\nEXPERIENCE\nBuilt Go services in golang with PostgreSQL and k8s.\nSKILLS\nPython, Docker, Kubernetes"

	result := analyze(t, set, text)

	langs := result.GlobalMatches["programming_languages"]
	assert.Equal(t, []string{"golang", "python"}, langs.Matched)
	assert.Equal(t, 2, langs.Counts["golang"])
	assert.Equal(t, 2, langs.Counts["python"])
	assert.Equal(t, 4, langs.TotalCount)
	assert.Equal(t, 2, langs.UniqueCount)
	assert.Equal(t, "very_high", langs.Importance)
	assert.True(t, langs.Required)

	// Section counts ignore the unattributed first line
	assert.Equal(t, 1, result.SectionMatches["experience"]["programming_languages"].Count)
	assert.Equal(t, 1, result.SectionMatches["skills"]["programming_languages"].Count)

	cloud := result.GlobalMatches["cloud_devops"]
	assert.ElementsMatch(t, []string{"docker", "kubernetes", "k8s"}, cloud.Matched)

	db := result.GlobalMatches["databases"]
	assert.Equal(t, []string{"postgresql"}, db.Matched)
	assert.NotContains(t, db.Matched, "postgres", "word boundary keeps postgres out of postgresql")

	_, hasVerbs := result.GlobalMatches[rules.ActionVerbGroup]
	assert.False(t, hasVerbs, "action verbs are surfaced separately")
	assert.Equal(t, 1, result.ActionVerbs.Count)
	assert.Equal(t, []string{"built"}, result.ActionVerbs.Verbs)
}

func TestMatch_Density(t *testing.T) {
	set := loadDefaults(t)
	result := analyze(t, set, "python python java rust")

	assert.Equal(t, 4, result.TotalTokens)
	assert.Equal(t, 1.0, result.KeywordDensity["programming_languages"])
	assert.Equal(t, 0.0, result.KeywordDensity["databases"])

	empty := analyze(t, set, "")
	assert.Equal(t, 0.0, empty.KeywordDensity["programming_languages"])
	assert.Equal(t, 0, empty.DistinctMatched)
}

func TestMatch_StuffingScenario(t *testing.T) {
	kr := &rules.KeywordRules{
		KeywordGroups: []rules.KeywordGroup{
			{Group: "languages", Importance: "high", Keywords: []string{"python", "java"}},
		},
	}
	kr.Penalties.KeywordStuffing.Enabled = true
	kr.Penalties.KeywordStuffing.RepeatThreshold = 5
	kw := compile(t, kr)

	text := strings.Repeat("python ", 15) + "java java java java java"
	doc := ingestion.Normalize(text)
	result, err := Match(doc, &types.SectionResult{Sections: []types.Section{}}, kw)
	require.NoError(t, err)

	require.Len(t, result.StuffingSignals, 1)
	assert.Equal(t, types.StuffingSignal{Keyword: "python", Count: 15, Threshold: 5}, result.StuffingSignals[0])
}

func TestMatch_StuffingIncludesActionVerbs(t *testing.T) {
	set := loadDefaults(t)
	threshold := set.Keywords.RepeatThreshold
	require.Greater(t, threshold, 0)

	text := "SKILLS\n" + strings.Repeat("python ", threshold+7) + strings.Repeat("\nled", threshold+3)
	result := analyze(t, set, text)

	assert.Equal(t, []types.StuffingSignal{
		{Keyword: "led", Count: threshold + 3, Threshold: threshold},
		{Keyword: "python", Count: threshold + 7, Threshold: threshold},
	}, result.StuffingSignals)

	assert.Equal(t, types.ActionVerbs{Count: 1, Verbs: []string{"led"}}, result.ActionVerbs)
	_, hasVerbs := result.GlobalMatches[rules.ActionVerbGroup]
	assert.False(t, hasVerbs)
	assert.Equal(t, 1, result.DistinctMatched, "verbs are not counted as matched keywords")
}

func TestMatch_StuffingDisabled(t *testing.T) {
	kw := compile(t, &rules.KeywordRules{
		KeywordGroups: []rules.KeywordGroup{{Group: "languages", Keywords: []string{"python"}}},
	})

	doc := ingestion.Normalize(strings.Repeat("python ", 50))
	result, err := Match(doc, &types.SectionResult{Sections: []types.Section{}}, kw)
	require.NoError(t, err)
	assert.Empty(t, result.StuffingSignals)
}

func TestMatch_QuantifiedAchievementsArePatternLevel(t *testing.T) {
	set := loadDefaults(t)
	result := analyze(t, set, "EXPERIENCE\nReduced latency by 30%.\nCut costs 12% and 40%.\nServed 2,000,000 users")

	patterns := make(map[string]string)
	for _, qa := range result.QuantifiedAchievements {
		patterns[qa.Pattern] = qa.Example
	}
	assert.Equal(t, "30%", patterns[`\d+(\.\d+)?\s?%`], "first occurrence is the example")
	assert.Contains(t, patterns, `\d[\d,.]*\+?\s?(users|customers|clients|requests|transactions|engineers|people)`)

	seen := make(map[string]bool)
	for _, qa := range result.QuantifiedAchievements {
		assert.False(t, seen[qa.Pattern], "pattern recorded once")
		seen[qa.Pattern] = true
	}
}

func TestMatch_PhraseAcrossWrappedLines(t *testing.T) {
	set := loadDefaults(t)
	result := analyze(t, set, "Experienced in applied machine\nlearning and rest-api design")

	assert.Contains(t, result.GlobalMatches["data_ml"].Matched, "machine learning")
	assert.Contains(t, result.GlobalMatches["methodologies"].Matched, "rest api")
}

func TestMatch_SymbolKeywords(t *testing.T) {
	set := loadDefaults(t)
	result := analyze(t, set, "C++, C# and .NET with Node.js")

	assert.Subset(t, result.GlobalMatches["programming_languages"].Matched, []string{"c++", "c#"})
	assert.Subset(t, result.GlobalMatches["frameworks"].Matched, []string{".net", "node.js"})
}

func TestMatch_Deterministic(t *testing.T) {
	set := loadDefaults(t)
	text := "SKILLS\nGo lang, golang, Python, AWS, Docker, Agile\nEXPERIENCE\nLed and shipped 3 launches"

	first := analyze(t, set, text)
	second := analyze(t, set, text)
	assert.Equal(t, first, second)
}

func TestMatch_InputErrors(t *testing.T) {
	set := loadDefaults(t)
	doc := ingestion.Normalize("text")
	secs := &types.SectionResult{Sections: []types.Section{}}

	tests := []struct {
		name string
		doc  *types.NormalizedDocument
		secs *types.SectionResult
		kw   *rules.CompiledKeywords
		code string
	}{
		{name: "no document", secs: secs, kw: set.Keywords, code: types.CodeInvalidInput},
		{name: "no sections", doc: doc, kw: set.Keywords, code: types.CodeInvalidInput},
		{name: "nil section slice", doc: doc, secs: &types.SectionResult{}, kw: set.Keywords, code: types.CodeInvalidInput},
		{name: "no rules", doc: doc, secs: secs, code: types.CodeConfigInvalidStructure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Match(tt.doc, tt.secs, tt.kw)
			require.Error(t, err)
			assert.Equal(t, tt.code, types.CodeOf(err))
		})
	}
}

func TestMatchedTerms(t *testing.T) {
	set := loadDefaults(t)
	terms := MatchedTerms("We need Golang, Kubernetes (k8s) and PostgreSQL. You led teams.", set.Keywords, map[string]bool{rules.ActionVerbGroup: true})

	assert.Equal(t, []string{"golang", "k8s", "kubernetes", "postgresql"}, terms)
}
