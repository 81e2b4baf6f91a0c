package export

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fmuoria/interview-analyzer/internal/models"
	"github.com/xuri/excelize/v2"
)

const (
	summarySheet  = "Summary"
	cardsSheet    = "Score Cards"
	feedbackSheet = "Feedback"
)

// badgeGradients is the two-stop palette of each performance badge
var badgeGradients = map[models.Badge][2]string{
	models.BadgeExcellent: {"2196F3", "00C853"},
	models.BadgeGood:      {"43A047", "FBC02D"},
	models.BadgeAverage:   {"FBC02D", "E53935"},
	models.BadgePoor:      {"EF5350", "455A64"},
}

// BadgeColors returns the gradient stops of a badge as hex RGB without '#'
func BadgeColors(b models.Badge) (from, to string) {
	g, ok := badgeGradients[b]
	if !ok {
		g = badgeGradients[models.BadgePoor]
	}
	return g[0], g[1]
}

var thinBorder = []excelize.Border{
	{Type: "left", Color: "000000", Style: 1},
	{Type: "right", Color: "000000", Style: 1},
	{Type: "top", Color: "000000", Style: 1},
	{Type: "bottom", Color: "000000", Style: 1},
}

// ExportToExcel writes the reports to an .xlsx workbook at outputPath
func ExportToExcel(reports []models.Report, outputPath string) error {
	if !strings.HasSuffix(strings.ToLower(outputPath), ".xlsx") {
		outputPath = outputPath + ".xlsx"
	}
	outputPath = filepath.Clean(outputPath)

	f, err := buildWorkbook(reports)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(outputPath); err != nil {
		// fall back to a buffered write
		var buf bytes.Buffer
		if writeErr := f.Write(&buf); writeErr != nil {
			return fmt.Errorf("failed to save Excel file: direct save failed (%v), buffer write also failed: %w", err, writeErr)
		}

		if fileErr := os.WriteFile(outputPath, buf.Bytes(), 0644); fileErr != nil {
			return fmt.Errorf("failed to save Excel file: direct save failed (%v), file write failed: %w", err, fileErr)
		}
	}

	return nil
}

// WriteExcel streams the workbook to w
func WriteExcel(reports []models.Report, w io.Writer) error {
	f, err := buildWorkbook(reports)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write Excel workbook: %w", err)
	}
	return nil
}

func buildWorkbook(reports []models.Report) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		f.Close()
		return nil, err
	}
	for _, name := range []string{cardsSheet, feedbackSheet} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, err
		}
	}

	if err := createSummarySheet(f, summarySheet, reports); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := createCardsSheet(f, cardsSheet, reports); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create score cards sheet: %w", err)
	}
	if err := createFeedbackSheet(f, feedbackSheet, reports); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create feedback sheet: %w", err)
	}

	return f, nil
}

func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"2E5CFC"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    thinBorder,
	})
}

// badgeStyles builds one gradient cell style per badge
func badgeStyles(f *excelize.File) (map[models.Badge]int, error) {
	styles := make(map[models.Badge]int, len(badgeGradients))
	for badge := range badgeGradients {
		from, to := BadgeColors(badge)
		id, err := f.NewStyle(&excelize.Style{
			Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
			Fill:      excelize.Fill{Type: "gradient", Color: []string{from, to}, Shading: 0},
			Alignment: &excelize.Alignment{Horizontal: "center"},
			Border:    thinBorder,
		})
		if err != nil {
			return nil, err
		}
		styles[badge] = id
	}
	return styles, nil
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) error {
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, style)
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

// createSummarySheet lists one row per analyzed session
func createSummarySheet(f *excelize.File, sheet string, reports []models.Report) error {
	headers := []string{
		"Source", "Industry", "Subdomain", "Candidate Type", "Round Type",
		"Avg Score", "Avg Knowledge", "Recommendation", "Badge", "Knowledge Badge",
		"Speakers", "Generated",
	}

	hs, err := headerStyle(f)
	if err != nil {
		return err
	}
	if err := writeHeader(f, sheet, headers, hs); err != nil {
		return err
	}

	badges, err := badgeStyles(f)
	if err != nil {
		return err
	}

	f.SetColWidth(sheet, "A", "A", 28)
	f.SetColWidth(sheet, "B", "E", 16)
	f.SetColWidth(sheet, "F", "G", 13)
	f.SetColWidth(sheet, "H", "J", 17)
	f.SetColWidth(sheet, "K", "K", 10)
	f.SetColWidth(sheet, "L", "L", 20)

	for i, r := range reports {
		row := i + 2
		err := writeRow(f, sheet, row, []any{
			r.Source, r.Industry, r.Subdomain, r.CandidateType, r.RoundType,
			round1(r.Session.AvgScore), round1(r.Session.AvgKnowledge),
			string(r.Session.Recommendation), string(r.Session.Badge), string(r.Session.KnowledgeBadge),
			len(r.Cards), r.GeneratedAt.Local().Format("2006-01-02 15:04:05"),
		})
		if err != nil {
			return err
		}

		if style, ok := badges[r.Session.Badge]; ok {
			cell := fmt.Sprintf("I%d", row)
			f.SetCellStyle(sheet, cell, cell, style)
		}
	}

	footer := len(reports) + 3
	f.SetCellValue(sheet, fmt.Sprintf("A%d", footer), fmt.Sprintf("Exported %s", time.Now().Format("2006-01-02 15:04:05")))

	return nil
}

// createCardsSheet lists one row per speaker score card
func createCardsSheet(f *excelize.File, sheet string, reports []models.Report) error {
	headers := []string{
		"Source", "Speaker", "Tone", "Score", "Confidence", "Empathy",
		"Fillers", "Avg Sentence Length", "Knowledge", "Matched Keywords",
		"Keywords", "Summary",
	}

	hs, err := headerStyle(f)
	if err != nil {
		return err
	}
	if err := writeHeader(f, sheet, headers, hs); err != nil {
		return err
	}

	wrap, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return err
	}

	f.SetColWidth(sheet, "A", "B", 20)
	f.SetColWidth(sheet, "C", "I", 12)
	f.SetColWidth(sheet, "J", "K", 30)
	f.SetColWidth(sheet, "L", "L", 60)

	row := 2
	for _, r := range reports {
		for _, c := range r.Cards {
			err := writeRow(f, sheet, row, []any{
				r.Source, c.Speaker, string(c.Tone), round1(c.Score), round2(c.Confidence),
				c.EmpathyScore, c.NumFillers, c.AvgSentenceLength, round1(c.KnowledgeScore),
				strings.Join(c.MatchedKeywords, ", "), strings.Join(c.Keywords, ", "), c.Summary,
			})
			if err != nil {
				return err
			}
			f.SetCellStyle(sheet, fmt.Sprintf("J%d", row), fmt.Sprintf("L%d", row), wrap)
			row++
		}
	}

	return nil
}

// createFeedbackSheet lists pros, cons and the session summary of each report
func createFeedbackSheet(f *excelize.File, sheet string, reports []models.Report) error {
	headers := []string{"Source", "Recommendation", "Message", "Pros", "Cons", "Session Summary"}

	hs, err := headerStyle(f)
	if err != nil {
		return err
	}
	if err := writeHeader(f, sheet, headers, hs); err != nil {
		return err
	}

	wrap, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return err
	}

	f.SetColWidth(sheet, "A", "B", 20)
	f.SetColWidth(sheet, "C", "C", 45)
	f.SetColWidth(sheet, "D", "E", 50)
	f.SetColWidth(sheet, "F", "F", 70)

	for i, r := range reports {
		row := i + 2
		err := writeRow(f, sheet, row, []any{
			r.Source, string(r.Session.Recommendation), r.Session.Message,
			bulletList(r.Session.Pros), bulletList(r.Session.Cons), r.Session.Summary,
		})
		if err != nil {
			return err
		}
		f.SetCellStyle(sheet, fmt.Sprintf("C%d", row), fmt.Sprintf("F%d", row), wrap)
	}

	return nil
}

func bulletList(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "• " + item
	}
	return strings.Join(lines, "\n")
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
