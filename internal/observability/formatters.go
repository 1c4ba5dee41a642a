// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/ats-analyzer/internal/pipeline"
	"github.com/jonathan/ats-analyzer/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// truncate shortens s to at most n runes, marking the cut with "..."
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		line = truncate(line, boxWidth-4)
		// pad by runes so multi-byte glyphs keep the border aligned
		pad := boxWidth - 4 - utf8.RuneCountInString(line)
		fmt.Fprintf(p.out, "│ %s%s │\n", line, strings.Repeat(" ", pad))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintProgress writes one line per completed pipeline step.
//
//nolint:errcheck // writing to stderr; errors are not recoverable
func (p *Printer) PrintProgress(e pipeline.ProgressEvent) {
	fmt.Fprintf(p.out, "[%d/%d] %-10s %s (%s)\n", e.Position, e.Total, e.Category, e.Message, e.Elapsed.Round(100_000))
}

// PrintScore outputs the total, the verdict and every category sub-score.
func (p *Printer) PrintScore(report *types.AnalysisReport) {
	if report == nil {
		return
	}
	b := report.Breakdown

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Score:    %.2f\n", report.Score))
	sb.WriteString(fmt.Sprintf("Verdict:  %s\n", report.Verdict))
	if !report.Analysis.Signals.ContactInfo.HasAny() {
		sb.WriteString("Contact:  none found\n")
	}
	sb.WriteString("\n")
	sb.WriteString(scoreLine("Sections", b.Sections.Score, b.Sections.MaxScore))
	sb.WriteString(scoreLine("Keywords", b.Keywords.Score, b.Keywords.MaxScore))
	sb.WriteString(scoreLine("Formatting", b.Formatting.Score, b.Formatting.MaxScore))
	sb.WriteString(scoreLine("Experience", b.ExperienceQuality.Score, b.ExperienceQuality.MaxScore))
	sb.WriteString(scoreLine("Skills", b.SkillsRelevance.Score, b.SkillsRelevance.MaxScore))
	sb.WriteString(fmt.Sprintf("%-12s %6.2f (max -%.0f)", "Penalties", b.Penalties.Score, b.Penalties.MaxPenalty))

	p.printBox("ATS SCORE", sb.String())
}

func scoreLine(label string, score, maxScore float64) string {
	return fmt.Sprintf("%-12s %6.2f / %-4.0f\n", label, score, maxScore)
}

// PrintSections outputs detected sections and missing required ones.
func (p *Printer) PrintSections(sr *types.SectionResult) {
	if sr == nil {
		return
	}

	var sb strings.Builder
	for _, s := range sr.Sections {
		mark := "✗"
		if s.Found {
			mark = "✓"
		}
		req := ""
		if s.Required {
			req = " (required)"
		}
		sb.WriteString(fmt.Sprintf("%s %s%s: %d lines\n", mark, s.DisplayName, req, len(s.Content)))
	}
	if len(sr.MissingRequiredSections) > 0 {
		sb.WriteString(fmt.Sprintf("\nMissing: %s\n", strings.Join(sr.MissingRequiredSections, ", ")))
	}
	if sr.UnattributedLineCount > 0 {
		sb.WriteString(fmt.Sprintf("Lines before first heading: %d\n", sr.UnattributedLineCount))
	}

	p.printBox("SECTIONS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintKeywords outputs the best-matching keyword groups and stuffing signals.
func (p *Printer) PrintKeywords(mr *types.MatchResult) {
	if mr == nil {
		return
	}

	ids := make([]string, 0, len(mr.GlobalMatches))
	for id, gm := range mr.GlobalMatches {
		if gm.UniqueCount > 0 {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := mr.GlobalMatches[ids[i]], mr.GlobalMatches[ids[j]]
		if a.UniqueCount != b.UniqueCount {
			return a.UniqueCount > b.UniqueCount
		}
		return ids[i] < ids[j]
	})

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Distinct keywords: %d across %d groups\n\n", mr.DistinctMatched, len(ids)))

	count := min(len(ids), maxItemsToShow)
	for i := 0; i < count; i++ {
		gm := mr.GlobalMatches[ids[i]]
		sb.WriteString(fmt.Sprintf("• %s (%d/%d)\n", ids[i], gm.UniqueCount, gm.KeywordCount))
		sb.WriteString(fmt.Sprintf("  %s\n", truncate(strings.Join(gm.Matched, ", "), 50)))
	}
	if len(ids) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more groups\n", len(ids)-maxItemsToShow))
	}

	if mr.ActionVerbs.Count > 0 {
		sb.WriteString(fmt.Sprintf("\nAction verbs: %s\n", truncate(strings.Join(mr.ActionVerbs.Verbs, ", "), 40)))
	}
	for _, s := range mr.StuffingSignals {
		sb.WriteString(fmt.Sprintf("⚠ %q repeated %d times (limit %d)\n", s.Keyword, s.Count, s.Threshold))
	}

	p.printBox("KEYWORDS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintFormatting outputs formatting findings.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintFormatting(fr *types.FormattingResult) {
	if fr == nil || len(fr.RuleFindings) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "NO FORMATTING ISSUES FOUND")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d issues:\n\n", len(fr.RuleFindings)))
	for _, id := range fr.RuleFindings {
		sb.WriteString(fmt.Sprintf("⚠ %s\n", id))
	}
	sb.WriteString(fmt.Sprintf("\nEstimated pages: %d (max %d)", fr.StructureSignals.EstimatedPages, fr.StructureSignals.MaxPages))

	p.printBox("FORMATTING", sb.String())
}

// PrintRecommendations outputs critical fixes before improvements.
func (p *Printer) PrintRecommendations(rec types.Recommendations) {
	if len(rec.Critical) == 0 && len(rec.Improvements) == 0 {
		return
	}

	var sb strings.Builder
	if len(rec.Critical) > 0 {
		sb.WriteString("Critical:\n")
		for _, r := range rec.Critical {
			sb.WriteString(fmt.Sprintf("  ! %s\n", r))
		}
	}
	if len(rec.Improvements) > 0 {
		if len(rec.Critical) > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("Improvements:\n")
		count := min(len(rec.Improvements), maxItemsToShow)
		for _, r := range rec.Improvements[:count] {
			sb.WriteString(fmt.Sprintf("  • %s\n", r))
		}
		if len(rec.Improvements) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(rec.Improvements)-maxItemsToShow))
		}
	}

	p.printBox("RECOMMENDATIONS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintReport prints every box for one analysis.
func (p *Printer) PrintReport(report *types.AnalysisReport) {
	if report == nil {
		return
	}
	p.PrintScore(report)
	p.PrintSections(&report.Analysis.Sections)
	p.PrintKeywords(&report.Analysis.Keywords)
	p.PrintFormatting(&report.Analysis.Formatting)
	p.PrintRecommendations(report.Recommendations)
}
