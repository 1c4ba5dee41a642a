// Package export writes analysis results to spreadsheet reports.
package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jonathan/ats-analyzer/internal/pipeline"
)

// Sheet names
const (
	SummarySheet      = "Summary"
	BreakdownSheet    = "Breakdown"
	ExplanationsSheet = "Explanations"
)

var breakdownHeaders = []string{
	"#", "ID", "Score", "Verdict",
	"Sections", "Keywords", "Formatting", "Experience", "Skills", "Penalties",
	"Critical", "Error",
}

var explanationHeaders = []string{"#", "ID", "Category", "Severity", "Impact", "Message"}

// ExportToExcel writes the batch results to outputPath, adding the .xlsx
// extension when missing, and returns the path written.
func ExportToExcel(items []pipeline.BatchItem, outputPath string) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	if !strings.HasSuffix(strings.ToLower(outputPath), ".xlsx") {
		outputPath += ".xlsx"
	}
	outputPath = filepath.Clean(outputPath)

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return "", err
	}
	for _, name := range []string{BreakdownSheet, ExplanationsSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return "", fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	styles, err := newStyles(f)
	if err != nil {
		return "", fmt.Errorf("failed to create styles: %w", err)
	}

	if err := writeSummary(f, styles, items); err != nil {
		return "", fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := writeBreakdown(f, styles, items); err != nil {
		return "", fmt.Errorf("failed to create breakdown sheet: %w", err)
	}
	if err := writeExplanations(f, styles, items); err != nil {
		return "", fmt.Errorf("failed to create explanations sheet: %w", err)
	}

	if err := f.SaveAs(outputPath); err != nil {
		return "", fmt.Errorf("failed to save Excel file: %w", err)
	}
	return outputPath, nil
}

type styles struct {
	header, label               int
	excellent, good, fair, poor int
}

func border() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
}

func newStyles(f *excelize.File) (*styles, error) {
	s := &styles{}
	var err error

	s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border(),
	})
	if err != nil {
		return nil, err
	}
	s.label, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	fills := []struct {
		dst   *int
		color string
	}{
		{&s.excellent, "C6EFCE"},
		{&s.good, "FFEB9C"},
		{&s.fair, "FFC7CE"},
		{&s.poor, "FF9999"},
	}
	for _, fl := range fills {
		*fl.dst, err = f.NewStyle(&excelize.Style{
			Fill:   excelize.Fill{Type: "pattern", Color: []string{fl.color}, Pattern: 1},
			Border: border(),
		})
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

// scoreStyle color-codes a row by total score
func (s *styles) scoreStyle(score float64) int {
	switch {
	case score >= 80:
		return s.excellent
	case score >= 60:
		return s.good
	case score >= 35:
		return s.fair
	default:
		return s.poor
	}
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func writeHeaders(f *excelize.File, sheet string, style int, headers []string) error {
	for i, h := range headers {
		c := cell(i+1, 1)
		if err := f.SetCellValue(sheet, c, h); err != nil {
			return err
		}
	}
	return f.SetCellStyle(sheet, cell(1, 1), cell(len(headers), 1), style)
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	return f.SetSheetRow(sheet, cell(1, row), &values)
}

func writeSummary(f *excelize.File, st *styles, items []pipeline.BatchItem) error {
	var analyzed, failed int
	var total float64
	verdicts := map[string]int{}
	order := []string{}
	for _, item := range items {
		if item.Report == nil {
			failed++
			continue
		}
		analyzed++
		total += item.Report.Score
		if _, ok := verdicts[item.Report.Verdict]; !ok {
			order = append(order, item.Report.Verdict)
		}
		verdicts[item.Report.Verdict]++
	}

	avg := 0.0
	if analyzed > 0 {
		avg = total / float64(analyzed)
	}

	rows := [][]any{
		{"Résumés", len(items)},
		{"Analyzed", analyzed},
		{"Failed", failed},
		{"Average score", fmt.Sprintf("%.2f", avg)},
	}
	for _, v := range order {
		rows = append(rows, []any{"Verdict: " + v, verdicts[v]})
	}

	if err := f.SetColWidth(SummarySheet, "A", "A", 24); err != nil {
		return err
	}
	for i, r := range rows {
		if err := writeRow(f, SummarySheet, i+1, r); err != nil {
			return err
		}
		if err := f.SetCellStyle(SummarySheet, cell(1, i+1), cell(1, i+1), st.label); err != nil {
			return err
		}
	}
	return nil
}

func writeBreakdown(f *excelize.File, st *styles, items []pipeline.BatchItem) error {
	if err := writeHeaders(f, BreakdownSheet, st.header, breakdownHeaders); err != nil {
		return err
	}
	if err := f.SetColWidth(BreakdownSheet, "B", "B", 24); err != nil {
		return err
	}
	if err := f.SetColWidth(BreakdownSheet, "L", "L", 40); err != nil {
		return err
	}

	for i, item := range items {
		row := i + 2
		values := []any{item.Index + 1, item.ID}
		style := st.poor

		if r := item.Report; r != nil {
			b := r.Breakdown
			values = append(values,
				r.Score, r.Verdict,
				b.Sections.Score, b.Keywords.Score, b.Formatting.Score,
				b.ExperienceQuality.Score, b.SkillsRelevance.Score, b.Penalties.Score,
				strings.Join(r.Recommendations.Critical, "; "), "",
			)
			style = st.scoreStyle(r.Score)
		} else {
			values = append(values, "", "", "", "", "", "", "", "", "", itemError(item.Error))
		}

		if err := writeRow(f, BreakdownSheet, row, values); err != nil {
			return err
		}
		if err := f.SetCellStyle(BreakdownSheet, cell(1, row), cell(len(breakdownHeaders), row), style); err != nil {
			return err
		}
	}
	return nil
}

func itemError(e *pipeline.ItemError) string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func writeExplanations(f *excelize.File, st *styles, items []pipeline.BatchItem) error {
	if err := writeHeaders(f, ExplanationsSheet, st.header, explanationHeaders); err != nil {
		return err
	}
	if err := f.SetColWidth(ExplanationsSheet, "F", "F", 80); err != nil {
		return err
	}

	row := 2
	for _, item := range items {
		if item.Report == nil {
			continue
		}
		for _, e := range item.Report.Explanations {
			values := []any{item.Index + 1, item.ID, e.Category, e.Severity, e.Impact, e.Message}
			if err := writeRow(f, ExplanationsSheet, row, values); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}
