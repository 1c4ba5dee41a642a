// Package ingestion normalizes raw résumé text into the document consumed by every analysis stage.
package ingestion

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jonathan/ats-analyzer/internal/types"
	"golang.org/x/text/unicode/norm"
)

// maxMergeRunes is the longest line that paragraph unwrap will fold into the previous one
const maxMergeRunes = 60

// maxHeadingRunes is the longest line still treated as a heading candidate
const maxHeadingRunes = 50

var (
	multiSpaceRe   = regexp.MustCompile(`[ \t]{2,}`)
	excessBlankRe  = regexp.MustCompile(`\n{3,}`)
	glyphReplacer  = strings.NewReplacer(glyphPairs()...)
	trailingPunct  = ":-| \t"
	terminalPunct  = ".!?;:"
	bulletPrefixes = []string{"- ", "* ", "+ "}
)

// glyphPairs maps bullet, dash, quote and invisible glyphs to their canonical form
func glyphPairs() []string {
	pairs := []string{
		// dashes and minus
		"\u2010", "-", "\u2011", "-", "\u2012", "-", "\u2013", "-", "\u2014", "-", "\u2015", "-", "\u2212", "-",
		// curly quotes
		"\u2018", "'", "\u2019", "'", "\u201a", "'", "\u201b", "'",
		"\u201c", "\"", "\u201d", "\"", "\u201e", "\"", "\u201f", "\"",
		// non-breaking spaces
		"\u00a0", " ", "\u202f", " ", "\u2007", " ",
		// zero-width characters
		"\u200b", "", "\u200c", "", "\u200d", "", "\u2060", "", "\ufeff", "",
	}
	for _, b := range BulletGlyphs {
		pairs = append(pairs, string(b), "-")
	}
	return pairs
}

// BulletGlyphs are the decorative bullet characters canonicalized to "-"
var BulletGlyphs = []rune{'•', '●', '▪', '■', '►', '◦', '‣', '○', '◆', '◇', '▸', '▹', '▶', '➢', '➤', '⁃', '∙', '□', '❖'}

// Normalize cleans raw extracted text and splits it into lines. It never
// fails: empty or unusable input yields an empty, well-formed document.
// Normalizing NormalizedText again yields the same document.
func Normalize(raw string) *types.NormalizedDocument {
	cleaned := CleanText(raw)

	lines := make([]string, 0, strings.Count(cleaned, "\n")+1)
	for _, line := range strings.Split(cleaned, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimRight(line, trailingPunct)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}

	logical := StructureLines(lines)
	normalized := strings.Join(lines, "\n")
	lower := strings.ToLower(strings.Join(logical, "\n"))

	return &types.NormalizedDocument{
		RawText:         raw,
		NormalizedText:  normalized,
		LowerText:       lower,
		NormalizedLines: lines,
		LogicalLines:    logical,
		Tokens:          Tokenize(lower),
		Stats: types.DocumentStats{
			WordCount: len(strings.Fields(normalized)),
			LineCount: len(lines),
		},
	}
}

// CleanText applies the character-level normalization steps and keeps line structure.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = unifyLineEndings(content)
	content = strings.ToValidUTF8(content, "")

	// Glyphs are mapped on both sides of NFKC: removing invisible characters
	// can enable new compositions, and NFKC can emit non-ASCII hyphens.
	content = glyphReplacer.Replace(content)
	content = norm.NFKC.String(content)
	content = glyphReplacer.Replace(content)

	content = multiSpaceRe.ReplaceAllString(content, " ")
	content = excessBlankRe.ReplaceAllString(content, "\n\n")

	return strings.TrimSpace(content)
}

// LayoutText prepares text for layout heuristics. Only line endings and
// invalid bytes are touched, so column gaps, bullet glyphs and blank-line
// runs survive.
func LayoutText(raw string) string {
	return strings.ToValidUTF8(unifyLineEndings(raw), "")
}

// LayoutLines splits layout text into lines, keeping blank lines.
func LayoutLines(layout string) []string {
	if layout == "" {
		return []string{}
	}
	return strings.Split(layout, "\n")
}

func unifyLineEndings(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// IsHeadingCandidate reports whether a line looks like a section heading:
// short, fully upper-case and made only of letters, spaces and '&'.
func IsHeadingCandidate(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || utf8.RuneCountInString(line) > maxHeadingRunes {
		return false
	}
	hasLetter := false
	for _, r := range line {
		switch {
		case unicode.IsLetter(r):
			if !unicode.IsUpper(r) {
				return false
			}
			hasLetter = true
		case r == ' ' || r == '&':
		default:
			return false
		}
	}
	return hasLetter
}

// IsBulletLine reports whether a line starts with a list marker
func IsBulletLine(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	for _, p := range bulletPrefixes {
		if strings.HasPrefix(trimmed, p) {
			return true
		}
	}
	r, _ := utf8.DecodeRuneInString(trimmed)
	for _, b := range BulletGlyphs {
		if r == b {
			return true
		}
	}
	return false
}

// StructureLines merges wrapped continuation lines into the line they
// continue. A line joins the buffered one when the buffer is not a heading
// and does not end in terminal punctuation, and the line itself is short,
// is neither a heading nor a bullet, and starts with a lower-case letter or
// digit.
func StructureLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	var buf string
	bufHeading := false

	flush := func() {
		if buf != "" {
			out = append(out, buf)
		}
	}

	for _, line := range lines {
		if buf != "" && !bufHeading && continues(buf, line) {
			buf += " " + line
			continue
		}
		flush()
		buf = line
		bufHeading = IsHeadingCandidate(line)
	}
	flush()
	return out
}

func continues(prev, line string) bool {
	if strings.ContainsAny(prev[len(prev)-1:], terminalPunct) {
		return false
	}
	if utf8.RuneCountInString(line) > maxMergeRunes || IsHeadingCandidate(line) || IsBulletLine(line) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(line)
	return unicode.IsLower(r) || unicode.IsDigit(r)
}

// Tokenize splits text into words on any rune that is not a letter or digit.
func Tokenize(text string) []string {
	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if tokens == nil {
		return []string{}
	}
	return tokens
}
