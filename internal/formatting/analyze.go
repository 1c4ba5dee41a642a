// Package formatting flags layout risks that commonly break ATS parsing.
package formatting

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jonathan/ats-analyzer/internal/ingestion"
	"github.com/jonathan/ats-analyzer/internal/rules"
	"github.com/jonathan/ats-analyzer/internal/types"
)

const stage = "formatting"

// Heuristic thresholds
const (
	minColumnLines   = 3
	minColumnGaps    = 2
	minTableLines    = 2
	minCapsLines     = 3
	minCapsRunes     = 11
	linesPerPage     = 48
	defaultMaxPages  = 2
	tablePipeMinimum = 2
)

var (
	columnGapRe  = regexp.MustCompile(` {4,}`)
	blankRunRe   = regexp.MustCompile(`(?m)(^[ \t]*\n){3,}`)
	iconGlyphSet = map[rune]bool{
		'✓': true, '✔': true, '✗': true, '✘': true, '★': true, '☆': true, '✦': true, '✧': true,
		'➜': true, '➔': true, '→': true, '←': true, '⇒': true, '☎': true, '✉': true, '☐': true,
		'☑': true, '⚑': true, '✆': true, '⌂': true,
	}
)

// Analyze runs every layout heuristic over layout text and its lines. A
// finding is reported only when it is both detected and disallowed by the
// policy; the signals themselves are always filled in.
func Analyze(text string, lines []string, policy *rules.FormattingRules) (*types.FormattingResult, error) {
	if lines == nil {
		return nil, &types.InputError{Stage: stage, Field: "lines", Message: "layout lines are required"}
	}
	if policy == nil {
		return nil, &types.ConfigError{Code: types.CodeConfigInvalidStructure, Source: rules.DocFormatting, Message: "formatting policy is required"}
	}

	maxPages := policy.StructureRules.MaxPages
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}

	result := &types.FormattingResult{RuleFindings: []string{}}
	layout := &result.LayoutSignals
	font := &result.FontSignals
	structure := &result.StructureSignals

	bulletStyles := make(map[string]bool)
	nonBlank := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		nonBlank++

		if len(columnGapRe.FindAllStringIndex(trimmed, -1)) >= minColumnGaps {
			layout.ColumnGapLines++
		}
		if isTableLine(line) {
			layout.TableLines++
		}
		if isCapsLine(trimmed) {
			font.CapsLines++
		}
		if style := bulletStyle(trimmed); style != "" {
			bulletStyles[style] = true
		}
	}

	layout.IconCount = countIcons(text)
	layout.IconsDetected = layout.IconCount > 0
	layout.MultiColumnSuspected = layout.ColumnGapLines >= minColumnLines
	layout.TableSuspected = layout.TableLines >= minTableLines
	font.ExcessiveCaps = font.CapsLines >= minCapsLines

	structure.ExcessiveWhitespace = blankRunRe.MatchString(text)
	structure.BulletStyles = make([]string, 0, len(bulletStyles))
	for s := range bulletStyles {
		structure.BulletStyles = append(structure.BulletStyles, s)
	}
	sort.Strings(structure.BulletStyles)
	structure.InconsistentBullets = len(structure.BulletStyles) > 1
	structure.LineCount = nonBlank
	structure.EstimatedPages = EstimatePages(nonBlank)
	structure.MaxPages = maxPages

	compat := policy.ATSCompatibility
	add := func(flag bool, finding string) {
		if flag {
			result.RuleFindings = append(result.RuleFindings, finding)
		}
	}
	add(layout.MultiColumnSuspected && !compat.AllowMultiColumn, types.FindingMultiColumn)
	add(layout.TableSuspected && !compat.AllowTables, types.FindingTables)
	add(layout.IconsDetected && !compat.AllowImages, types.FindingImagesOrIcons)
	add(font.ExcessiveCaps, types.FindingExcessiveCaps)
	add(structure.ExcessiveWhitespace, types.FindingExcessiveWhitespace)
	add(structure.InconsistentBullets, types.FindingInconsistentBullets)
	add(structure.EstimatedPages > maxPages, types.FindingExceedsMaxPages)

	return result, nil
}

// EstimatePages approximates page count for a single-column layout.
func EstimatePages(lineCount int) int {
	if lineCount <= 0 {
		return 0
	}
	return int(math.Ceil(float64(lineCount) / linesPerPage))
}

func isTableLine(line string) bool {
	return strings.Count(line, "|") >= tablePipeMinimum || strings.Contains(line, "\t\t")
}

// isCapsLine is true for long lines with letters and no lower-case letters
func isCapsLine(trimmed string) bool {
	if utf8.RuneCountInString(trimmed) < minCapsRunes {
		return false
	}
	hasLetter := false
	for _, r := range trimmed {
		if unicode.IsLetter(r) {
			if unicode.IsLower(r) {
				return false
			}
			hasLetter = true
		}
	}
	return hasLetter
}

// bulletStyle returns the marker a bullet line starts with, or ""
func bulletStyle(trimmed string) string {
	if !ingestion.IsBulletLine(trimmed) {
		return ""
	}
	r, _ := utf8.DecodeRuneInString(trimmed)
	return string(r)
}

func countIcons(text string) int {
	n := 0
	for _, r := range text {
		if iconGlyphSet[r] || isPictograph(r) {
			n++
		}
	}
	return n
}

// isPictograph covers the emoji and pictograph blocks
func isPictograph(r rune) bool {
	return (r >= 0x1F300 && r <= 0x1FAFF) || (r >= 0x2600 && r <= 0x26FF) || (r >= 0x2700 && r <= 0x27BF && !isBulletGlyph(r))
}

func isBulletGlyph(r rune) bool {
	for _, b := range ingestion.BulletGlyphs {
		if r == b {
			return true
		}
	}
	return false
}
