package report

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jonathan/recruit-portal/internal/types"
)

// Sheet names.
const (
	SummarySheet = "Summary"
	RankedSheet  = "Ranked Candidates"
)

// Cell fills for pass and fail rows.
const (
	passFill = "C6EFCE"
	failFill = "FFC7CE"
)

var rankedHeaders = []string{"Rank", "Candidate", "Email", "Job", "Total Score", "Percentage", "Passing Score", "Result", "Recommendation"}

// Rank returns a copy of items ordered by percentage, highest first. Ties keep
// their original order.
func Rank(items []types.AssessmentShortlisted) []types.AssessmentShortlisted {
	ranked := slices.Clone(items)
	slices.SortStableFunc(ranked, func(a, b types.AssessmentShortlisted) int {
		return cmp.Compare(b.Percentage, a.Percentage)
	})
	return ranked
}

// ShortlistedWorkbook builds a workbook with a summary sheet and a ranked sheet.
// The caller owns the returned file and must Close it.
func ShortlistedWorkbook(items []types.AssessmentShortlisted, now time.Time) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		_ = f.Close()
		return nil, err
	}
	if _, err := f.NewSheet(RankedSheet); err != nil {
		_ = f.Close()
		return nil, err
	}

	ranked := Rank(items)
	if err := writeSummary(f, ranked, now); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := writeRanked(f, ranked); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to create ranked sheet: %w", err)
	}
	return f, nil
}

// WriteShortlisted streams the workbook to w.
func WriteShortlisted(w io.Writer, items []types.AssessmentShortlisted, now time.Time) error {
	f, err := ShortlistedWorkbook(items, now)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// ExportFilename names the downloaded workbook.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("assessments_%s.xlsx", now.Format("20060102_150405"))
}

func writeSummary(f *excelize.File, ranked []types.AssessmentShortlisted, now time.Time) error {
	const sheet = SummarySheet
	if err := f.SetColWidth(sheet, "A", "A", 25); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", "B", 40); err != nil {
		return err
	}

	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	label, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	if err := f.SetCellValue(sheet, "A1", "Assessment Results"); err != nil {
		return err
	}
	if err := f.MergeCell(sheet, "A1", "B1"); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "B1", header); err != nil {
		return err
	}

	passed := 0
	var total, highest, lowest float64
	for i, a := range ranked {
		if a.Passed() {
			passed++
		}
		total += a.Percentage
		if i == 0 || a.Percentage > highest {
			highest = a.Percentage
		}
		if i == 0 || a.Percentage < lowest {
			lowest = a.Percentage
		}
	}

	rows := [][2]any{
		{"Generated:", now.Format(TimestampLayout)},
		{"Total Candidates:", len(ranked)},
		{"Passed:", passed},
		{"Failed:", len(ranked) - passed},
	}
	if len(ranked) > 0 {
		rows = append(rows,
			[2]any{"Average Percentage:", fmt.Sprintf("%.2f", total/float64(len(ranked)))},
			[2]any{"Highest Percentage:", fmt.Sprintf("%.2f", highest)},
			[2]any{"Lowest Percentage:", fmt.Sprintf("%.2f", lowest)},
		)
	}

	for i, r := range rows {
		row := i + 3
		a, b := fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row)
		if err := f.SetCellValue(sheet, a, r[0]); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, a, a, label); err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, b, r[1]); err != nil {
			return err
		}
	}
	return nil
}

func writeRanked(f *excelize.File, ranked []types.AssessmentShortlisted) error {
	const sheet = RankedSheet
	widths := []float64{8, 25, 30, 25, 12, 12, 14, 10, 18}
	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return err
		}
	}

	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	if err != nil {
		return err
	}
	fill := func(color string) (int, error) {
		return f.NewStyle(&excelize.Style{
			Fill:   excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			Border: border,
		})
	}
	passStyle, err := fill(passFill)
	if err != nil {
		return err
	}
	failStyle, err := fill(failFill)
	if err != nil {
		return err
	}

	if err := f.SetSheetRow(sheet, "A1", &rankedHeaders); err != nil {
		return err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(rankedHeaders))
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", header); err != nil {
		return err
	}

	for i, a := range ranked {
		row := i + 2
		c := a.Profile()
		result := "Failed"
		style := failStyle
		if a.Passed() {
			result, style = "Passed", passStyle
		}
		values := []any{
			i + 1,
			orNA(c.Name),
			orNA(c.Email),
			orNA(a.JobTitle()),
			a.TotalScore,
			fmt.Sprintf("%.2f", a.Percentage),
			a.Passing(),
			result,
			orNA(types.Humanize(string(a.Recommendation()))),
		}
		start := fmt.Sprintf("A%d", row)
		if err := f.SetSheetRow(sheet, start, &values); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, start, fmt.Sprintf("%s%d", lastCol, row), style); err != nil {
			return err
		}
	}

	if len(ranked) > 0 {
		ref := fmt.Sprintf("A1:%s%d", lastCol, len(ranked)+1)
		if err := f.AutoFilter(sheet, ref, []excelize.AutoFilterOptions{}); err != nil {
			return err
		}
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
