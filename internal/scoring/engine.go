// Package scoring turns stage outputs into a weighted, explained ATS score.
package scoring

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/jonathan/ats-analyzer/internal/rules"
	"github.com/jonathan/ats-analyzer/internal/types"
)

// DefaultAnalyzer names the engine in score metadata
const DefaultAnalyzer = "ats-analyzer/rules"

const stage = "scoring"

// Input bundles the upstream stage outputs the engine consumes
type Input struct {
	Sections   *types.SectionResult
	Keywords   *types.MatchResult
	Formatting *types.FormattingResult

	// JobKeywords are the configured keywords found in the job description.
	// They are only used when HasJobDescription is set.
	JobKeywords       []string
	HasJobDescription bool
}

// Engine scores analyses against one scoring rule table. It holds no
// per-request state and is safe for concurrent use.
type Engine struct {
	Rules    *rules.ScoringRules
	Analyzer string
	Now      func() time.Time
}

// NewEngine creates an engine using the wall clock.
func NewEngine(r *rules.ScoringRules) *Engine {
	return &Engine{Rules: r, Analyzer: DefaultAnalyzer, Now: time.Now}
}

// Score validates the rules and inputs, runs every category calculator and
// aggregates the result. Unexpected failures inside the calculators are
// returned as *types.InternalError.
func (e *Engine) Score(in Input) (result *types.ScoreResult, err error) {
	if err := rules.ValidateScoring(e.Rules); err != nil {
		var cfgErr *types.ConfigError
		if errors.As(err, &cfgErr) {
			return nil, err
		}
		return nil, &types.ConfigError{Code: types.CodeConfigInvalidStructure, Source: rules.DocScoring, Message: err.Error(), Cause: err}
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	defer func() {
		if rec := recover(); rec != nil {
			result = nil
			err = &types.InternalError{Stage: stage, Cause: fmt.Errorf("panic: %v", rec)}
		}
	}()

	return e.score(in)
}

func validateInput(in Input) error {
	switch {
	case in.Sections == nil || in.Sections.Sections == nil:
		return &types.InputError{Stage: stage, Field: "sections", Message: "section data is required"}
	case in.Keywords == nil || in.Keywords.GlobalMatches == nil:
		return &types.InputError{Stage: stage, Field: "keywords", Message: "keyword data is required"}
	case in.Formatting == nil || in.Formatting.RuleFindings == nil:
		return &types.InputError{Stage: stage, Field: "formatting", Message: "formatting data is required"}
	}
	return nil
}

func (e *Engine) score(in Input) (*types.ScoreResult, error) {
	r := e.Rules
	var explanations []types.Explanation

	sections, ex := scoreSections(in.Sections, r)
	explanations = append(explanations, ex...)
	keywords, ex := scoreKeywords(in.Keywords, r)
	explanations = append(explanations, ex...)
	formatting, ex := scoreFormatting(in.Formatting, r)
	explanations = append(explanations, ex...)
	experience, ex := scoreExperience(in.Keywords, r)
	explanations = append(explanations, ex...)
	skills, ex := scoreSkills(in, r)
	explanations = append(explanations, ex...)
	penalties, ex := scorePenalties(in.Keywords, r)
	explanations = append(explanations, ex...)

	raw := sections.Score + keywords.Score + formatting.Score + experience.Score + skills.Score + penalties.Score
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return nil, &types.InternalError{Stage: stage, Cause: fmt.Errorf("score is not a finite number: %v", raw)}
	}
	total := round2(clamp(raw, r.MinScore(), r.MaxScore()))

	thresholds := verdictLadder(r.VerdictThresholds)
	verdict := Verdict(thresholds, total)
	explanations = append(explanations, types.Explanation{
		Category: types.CategoryOverall,
		Message:  fmt.Sprintf("Overall score %.2f (%s)", total, verdict),
		Impact:   total,
		Severity: overallSeverity(total),
	})

	breakdown := types.ScoreBreakdown{
		Sections:          sections,
		Keywords:          keywords,
		Formatting:        formatting,
		ExperienceQuality: experience,
		SkillsRelevance:   skills,
		Penalties:         penalties,
	}

	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	analyzer := e.Analyzer
	if analyzer == "" {
		analyzer = DefaultAnalyzer
	}

	return &types.ScoreResult{
		Score:           total,
		Verdict:         verdict,
		Breakdown:       breakdown,
		Explanations:    explanations,
		Recommendations: recommend(in, breakdown, total, r),
		Meta: types.ScoreMeta{
			ScoringVersion:    r.Meta.Version,
			Analyzer:          analyzer,
			Timestamp:         now().UTC(),
			VerdictThresholds: thresholds,
		},
	}, nil
}

// Verdict maps a score onto a descending threshold ladder. Lower bounds are
// inclusive; a score below every bound gets the lowest label.
func Verdict(thresholds []types.VerdictThreshold, score float64) string {
	if len(thresholds) == 0 {
		return ""
	}
	for _, t := range thresholds {
		if score >= t.Min {
			return t.Label
		}
	}
	return thresholds[len(thresholds)-1].Label
}

// verdictLadder returns a descending copy of the configured thresholds
func verdictLadder(in []types.VerdictThreshold) []types.VerdictThreshold {
	out := make([]types.VerdictThreshold, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Min > out[j].Min })
	return out
}

func overallSeverity(score float64) string {
	switch {
	case score >= 70:
		return types.SeverityPositive
	case score >= 50:
		return types.SeverityNeutral
	default:
		return types.SeverityNegative
	}
}
