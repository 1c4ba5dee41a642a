// Package pipeline provides the high-level orchestration of one résumé analysis.
package pipeline

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/ats-analyzer/internal/formatting"
	"github.com/jonathan/ats-analyzer/internal/ingestion"
	"github.com/jonathan/ats-analyzer/internal/matching"
	"github.com/jonathan/ats-analyzer/internal/pipeline/steps"
	"github.com/jonathan/ats-analyzer/internal/rules"
	"github.com/jonathan/ats-analyzer/internal/scoring"
	"github.com/jonathan/ats-analyzer/internal/sections"
	"github.com/jonathan/ats-analyzer/internal/types"
)

// ProgressEvent represents a progress update during an analysis
type ProgressEvent struct {
	Step      string        `json:"step"`
	Category  string        `json:"category"`
	Position  int           `json:"position"`
	Total     int           `json:"total"`
	Message   string        `json:"message"`
	RequestID string        `json:"request_id,omitempty"`
	Elapsed   time.Duration `json:"elapsed"`
}

// ProgressCallback is called once per completed step
type ProgressCallback func(event ProgressEvent)

// RuleProvider supplies the rule set for an analysis. *rules.Cache implements it.
type RuleProvider interface {
	Get(ctx context.Context) (*rules.Set, error)
}

// Options holds configuration for an Analyzer
type Options struct {
	Logger       *zap.Logger
	MaxTextBytes int // 0 disables truncation
	Concurrency  int // batch worker limit, defaults to 4
	OnProgress   ProgressCallback
	Now          func() time.Time
}

// Request is one résumé to analyze
type Request struct {
	ID             string `json:"id,omitempty"`
	Text           string `json:"text"`
	JobDescription string `json:"job_description,omitempty"`
}

// Analyzer runs the analysis stages in order. It holds no per-request state
// and is safe for concurrent use.
type Analyzer struct {
	rules        RuleProvider
	logger       *zap.Logger
	maxTextBytes int
	concurrency  int
	onProgress   ProgressCallback
	now          func() time.Time
}

const defaultConcurrency = 4

// New creates an Analyzer that loads rules from rp.
func New(rp RuleProvider, opts Options) *Analyzer {
	a := &Analyzer{
		rules:        rp,
		logger:       opts.Logger,
		maxTextBytes: opts.MaxTextBytes,
		concurrency:  opts.Concurrency,
		onProgress:   opts.OnProgress,
		now:          opts.Now,
	}
	if a.logger == nil {
		a.logger = zap.NewNop()
	}
	if a.concurrency <= 0 {
		a.concurrency = defaultConcurrency
	}
	if a.now == nil {
		a.now = time.Now
	}
	return a
}

// run tracks the completed steps of one analysis
type run struct {
	a     *Analyzer
	ctx   context.Context
	req   Request
	start time.Time
	done  map[string]bool
}

// begin checks that every step the given one consumes has completed
func (r *run) begin(step string) error {
	if err := r.ctx.Err(); err != nil {
		return err
	}
	if err := steps.ValidateDependencies(r.done, step); err != nil {
		return &types.InternalError{Stage: step, Cause: err}
	}
	return nil
}

// finish records a completed step and calls the progress callback if configured
func (r *run) finish(step, message string) {
	r.done[step] = true
	if r.a.onProgress == nil {
		return
	}
	pos, total := steps.Position(step)
	r.a.onProgress(ProgressEvent{
		Step:      step,
		Category:  steps.StepRegistry[step].Category,
		Position:  pos,
		Total:     total,
		Message:   message,
		RequestID: r.req.ID,
		Elapsed:   time.Since(r.start),
	})
}

// Analyze runs normalization, section detection, keyword matching,
// formatting analysis and scoring over one résumé. Errors keep the
// taxonomy of the stage that raised them.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (*types.AnalysisReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r := &run{a: a, ctx: ctx, req: req, start: time.Now(), done: make(map[string]bool, len(steps.StepRegistry))}

	set, err := a.rules.Get(ctx)
	if err != nil {
		return nil, err
	}
	r.finish(steps.Rules, "Rules ready")

	text, truncated := ingestion.Truncate(req.Text, a.maxTextBytes)
	meta := ingestion.NewMetadata(text, truncated)
	log := a.logger.With(zap.String("request_id", req.ID), zap.String("text_hash", meta.ShortHash()))
	if truncated {
		log.Warn("résumé text truncated", zap.Int("bytes", len(req.Text)), zap.Int("limit", a.maxTextBytes))
	}

	doc := ingestion.Normalize(text)
	log.Debug("normalized", zap.Int("lines", doc.Stats.LineCount), zap.Int("words", doc.Stats.WordCount))
	r.finish(steps.Normalize, "Normalized text")

	if err := r.begin(steps.Sections); err != nil {
		return nil, err
	}
	sr, err := sections.Detect(doc.NormalizedLines, set.Sections.Sections)
	if err != nil {
		return nil, err
	}
	log.Debug("sections detected", zap.Int("found", sr.FoundCount()), zap.Strings("missing", sr.MissingRequiredSections))
	r.finish(steps.Sections, "Detected sections")

	if err := r.begin(steps.Keywords); err != nil {
		return nil, err
	}
	mr, err := matching.Match(doc, sr, set.Keywords)
	if err != nil {
		return nil, err
	}
	log.Debug("keywords matched", zap.Int("distinct", mr.DistinctMatched), zap.Int("stuffing_signals", len(mr.StuffingSignals)))
	r.finish(steps.Keywords, "Matched keywords")

	if err := r.begin(steps.Formatting); err != nil {
		return nil, err
	}
	layout := ingestion.LayoutText(text)
	fr, err := formatting.Analyze(layout, ingestion.LayoutLines(layout), set.Formatting)
	if err != nil {
		return nil, err
	}
	log.Debug("formatting analyzed", zap.Strings("findings", fr.RuleFindings))
	r.finish(steps.Formatting, "Analyzed formatting")

	if err := r.begin(steps.Scoring); err != nil {
		return nil, err
	}
	in := scoring.Input{Sections: sr, Keywords: mr, Formatting: fr}
	if jd := strings.TrimSpace(req.JobDescription); jd != "" {
		in.HasJobDescription = true
		in.JobKeywords = JobKeywords(jd, set)
	}

	engine := &scoring.Engine{Rules: set.Scoring, Analyzer: scoring.DefaultAnalyzer, Now: a.now}
	score, err := engine.Score(in)
	if err != nil {
		log.Error("scoring failed", zap.String("code", types.CodeOf(err)), zap.Error(err))
		return nil, err
	}
	r.finish(steps.Scoring, "Scored résumé")

	log.Info("analysis complete",
		zap.Float64("score", score.Score),
		zap.String("verdict", score.Verdict),
		zap.Duration("duration", time.Since(r.start)),
	)

	return &types.AnalysisReport{
		ScoreResult: *score,
		Analysis: types.Analysis{
			Stats:      doc.Stats,
			Truncated:  truncated,
			Sections:   *sr,
			Keywords:   *mr,
			Formatting: *fr,
			Signals:    DeriveSignals(doc, sr, mr),
		},
	}, nil
}

// JobKeywords returns the configured skill keywords found in a job
// description, skipping groups the scoring rules exclude from skills.
func JobKeywords(jobDescription string, set *rules.Set) []string {
	exclude := map[string]bool{rules.ActionVerbGroup: true}
	for _, g := range set.Scoring.SkillsConfig.ExcludeGroups {
		exclude[g] = true
	}
	jd := ingestion.Normalize(jobDescription)
	return matching.MatchedTerms(jd.LowerText, set.Keywords, exclude)
}
