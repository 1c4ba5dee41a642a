package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/ats-analyzer/internal/pipeline/steps"
	"github.com/jonathan/ats-analyzer/internal/rules"
	"github.com/jonathan/ats-analyzer/internal/types"
)

const scenarioResume = "EXPERIENCE\nBuilt scalable systems reducing latency by 30%.\nEDUCATION\nBS Computer Science"

const fullResume = `JANE DOE
jane.doe@example.com | +1 (555) 123-4567 | linkedin.com/in/janedoe

SUMMARY
Backend engineer focused on distributed systems.

EXPERIENCE
- Built Golang services on Kubernetes handling 2M requests per day
- Reduced p99 latency by 40% by migrating to PostgreSQL
- Led a team of 6 engineers using Agile and code review

EDUCATION
BS Computer Science, State University

SKILLS
Golang, Python, Docker, Kubernetes, PostgreSQL, Redis, React
`

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestAnalyzer(opts Options) *Analyzer {
	if opts.Now == nil {
		opts.Now = func() time.Time { return fixedNow }
	}
	return New(rules.NewCache(rules.EmbeddedSource{}, nil), opts)
}

type failingProvider struct{ err error }

func (f failingProvider) Get(context.Context) (*rules.Set, error) { return nil, f.err }

func TestAnalyze_Scenario(t *testing.T) {
	a := newTestAnalyzer(Options{})

	report, err := a.Analyze(context.Background(), Request{Text: scenarioResume})
	require.NoError(t, err)

	missing := report.Analysis.Sections.MissingRequiredSections
	assert.Contains(t, missing, "skills")
	assert.Contains(t, missing, "contact")
	assert.NotContains(t, missing, "experience")
	assert.NotContains(t, missing, "education")

	assert.True(t, report.Analysis.Signals.ExperienceHasQuantifiableResults)
	assert.True(t, report.Analysis.Signals.ExperienceUsesStrongActionVerbs)
	assert.Contains(t, report.Analysis.Keywords.ActionVerbs.Verbs, "built")

	assert.GreaterOrEqual(t, report.Score, 10.0)
	assert.LessOrEqual(t, report.Score, 95.0)
	assert.NotEmpty(t, report.Verdict)
	assert.NotEmpty(t, report.Recommendations.Critical)
}

func TestAnalyze_FullResume(t *testing.T) {
	a := newTestAnalyzer(Options{})

	report, err := a.Analyze(context.Background(), Request{ID: "r1", Text: fullResume})
	require.NoError(t, err)

	assert.Equal(t, []string{"contact"}, report.Analysis.Sections.MissingRequiredSections)
	assert.Equal(t, "jane.doe@example.com", report.Analysis.Signals.ContactInfo.Email)
	assert.NotEmpty(t, report.Analysis.Signals.ContactInfo.Phone)
	assert.True(t, report.Analysis.Signals.ExperienceHasQuantifiableResults)
	assert.True(t, report.Analysis.Signals.ExperienceUsesStrongActionVerbs)
	assert.NotEmpty(t, report.Analysis.Keywords.QuantifiedAchievements)
	assert.Empty(t, report.Analysis.Formatting.RuleFindings)
	assert.Equal(t, 20.0, report.Breakdown.Formatting.Score)
	assert.Equal(t, fixedNow, report.Meta.Timestamp)
	assert.False(t, report.Analysis.Truncated)
}

func TestAnalyze_EmptyText(t *testing.T) {
	a := newTestAnalyzer(Options{})

	report, err := a.Analyze(context.Background(), Request{Text: ""})
	require.NoError(t, err)

	assert.Equal(t, 0, report.Analysis.Stats.WordCount)
	assert.Len(t, report.Analysis.Sections.MissingRequiredSections, 4)
	assert.Equal(t, 0.0, report.Breakdown.Sections.Score)
	assert.GreaterOrEqual(t, report.Score, 10.0)
	assert.False(t, report.Analysis.Signals.ExperienceHasQuantifiableResults)
}

func TestAnalyze_JobDescription(t *testing.T) {
	a := newTestAnalyzer(Options{})

	report, err := a.Analyze(context.Background(), Request{
		Text:           fullResume,
		JobDescription: "Looking for Golang, Python and Kubernetes engineers with PostgreSQL and Terraform",
	})
	require.NoError(t, err)

	skills := report.Breakdown.SkillsRelevance
	assert.True(t, skills.UsesJobDescription)
	assert.Equal(t, 5, skills.TotalSkills)
	assert.Equal(t, 4, skills.MatchedSkills)
	assert.NotContains(t, report.Recommendations.Improvements, "Provide a job description for a relevance-weighted skills score")
}

func TestJobKeywords(t *testing.T) {
	set, err := rules.Load(context.Background(), rules.EmbeddedSource{})
	require.NoError(t, err)

	got := JobKeywords("Looking for Golang, Python and Kubernetes engineers who built things with PostgreSQL", set)
	assert.Equal(t, []string{"golang", "kubernetes", "postgresql", "python"}, got)
	assert.Empty(t, JobKeywords("nothing relevant here", set))
}

func TestAnalyze_ProgressEvents(t *testing.T) {
	var events []ProgressEvent
	a := newTestAnalyzer(Options{OnProgress: func(e ProgressEvent) { events = append(events, e) }})

	_, err := a.Analyze(context.Background(), Request{ID: "req-1", Text: scenarioResume})
	require.NoError(t, err)

	require.Len(t, events, len(steps.Order()))
	for i, e := range events {
		assert.Equal(t, steps.Order()[i], e.Step)
		assert.Equal(t, i+1, e.Position)
		assert.Equal(t, len(steps.Order()), e.Total)
		assert.Equal(t, "req-1", e.RequestID)
		assert.NotEmpty(t, e.Category)
	}
}

func TestAnalyze_Truncation(t *testing.T) {
	a := newTestAnalyzer(Options{MaxTextBytes: 20})

	report, err := a.Analyze(context.Background(), Request{Text: fullResume})
	require.NoError(t, err)
	assert.True(t, report.Analysis.Truncated)
	assert.LessOrEqual(t, report.Analysis.Stats.WordCount, 4)
}

func TestAnalyze_Deterministic(t *testing.T) {
	a := newTestAnalyzer(Options{})

	first, err := a.Analyze(context.Background(), Request{Text: fullResume})
	require.NoError(t, err)
	second, err := a.Analyze(context.Background(), Request{Text: fullResume})
	require.NoError(t, err)

	x, err := json.Marshal(first)
	require.NoError(t, err)
	y, err := json.Marshal(second)
	require.NoError(t, err)
	assert.JSONEq(t, string(x), string(y))
}

func TestAnalyze_Errors(t *testing.T) {
	t.Run("rules unavailable", func(t *testing.T) {
		cfgErr := &types.ConfigError{Code: types.CodeConfigFileNotFound, Source: "scoring", Message: "missing"}
		a := New(failingProvider{err: cfgErr}, Options{})

		_, err := a.Analyze(context.Background(), Request{Text: scenarioResume})
		require.Error(t, err)
		assert.Equal(t, types.CodeConfigFileNotFound, types.CodeOf(err))
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := newTestAnalyzer(Options{}).Analyze(ctx, Request{Text: scenarioResume})
		assert.True(t, errors.Is(err, context.Canceled))
	})
}

func TestAnalyzeBatch_PreservesOrder(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]bool{}
	a := newTestAnalyzer(Options{Concurrency: 2, OnProgress: func(e ProgressEvent) {
		mu.Lock()
		seen[e.RequestID] = true
		mu.Unlock()
	}})

	reqs := make([]Request, 6)
	for i := range reqs {
		reqs[i] = Request{ID: fmt.Sprintf("item-%d", i), Text: strings.Repeat("EXPERIENCE\nBuilt things\n", i+1)}
	}

	items, err := a.AnalyzeBatch(context.Background(), reqs)
	require.NoError(t, err)
	require.Len(t, items, len(reqs))
	for i, item := range items {
		assert.Equal(t, i, item.Index)
		assert.Equal(t, reqs[i].ID, item.ID)
		assert.Nil(t, item.Error)
		require.NotNil(t, item.Report)
	}
	assert.Len(t, seen, len(reqs))
}

func TestAnalyzeBatch_RecordsItemErrors(t *testing.T) {
	cfgErr := &types.ConfigError{Code: types.CodeConfigInvalidJSON, Source: "keywords", Message: "bad json"}
	a := New(failingProvider{err: cfgErr}, Options{})

	items, err := a.AnalyzeBatch(context.Background(), []Request{{ID: "a"}, {ID: "b"}})
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, item := range items {
		assert.Nil(t, item.Report)
		require.NotNil(t, item.Error)
		assert.Equal(t, types.CodeConfigInvalidJSON, item.Error.Code)
	}
}

func TestAnalyzeBatch_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items, err := newTestAnalyzer(Options{}).AnalyzeBatch(ctx, []Request{{Text: scenarioResume}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, items, 1)
}

func TestDeriveSignals(t *testing.T) {
	sr := &types.SectionResult{Sections: []types.Section{
		{Key: "experience", Found: true, Content: []string{"Managed the team"}},
	}}
	mr := &types.MatchResult{SectionMatches: map[string]map[string]types.SectionGroupMatch{
		"experience": {rules.ActionVerbGroup: {Matched: []string{"managed"}, Count: 1}},
	}}
	doc := &types.NormalizedDocument{NormalizedText: "Managed the team"}

	s := DeriveSignals(doc, sr, mr)
	assert.False(t, s.ExperienceHasQuantifiableResults)
	assert.True(t, s.ExperienceUsesStrongActionVerbs)
	assert.False(t, s.ContactInfo.HasAny())

	s = DeriveSignals(doc, &types.SectionResult{Sections: []types.Section{}}, mr)
	assert.False(t, s.ExperienceUsesStrongActionVerbs)
}
