package report

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spigell/applicant-screener/internal/routing"
	"github.com/spigell/applicant-screener/internal/storage"
	"github.com/xuri/excelize/v2"
)

const (
	summarySheet    = "Summary"
	applicantsSheet = "Applicants"
)

var applicantColumns = []string{
	"Rank", "Name", "Email", "Phone", "Source", "Position", "Score", "Decision",
	"Skills", "Experience", "Summary", "Strengths", "Red Flags", "Received At",
}

// ExportXLSX writes the records and their statistics to an Excel workbook.
// Records are expected in ranking order.
func ExportXLSX(records []storage.Record, threshold int, now time.Time, outputPath string) (string, error) {
	if !strings.HasSuffix(strings.ToLower(outputPath), ".xlsx") {
		outputPath += ".xlsx"
	}
	outputPath = filepath.Clean(outputPath)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return "", err
	}
	if _, err := f.NewSheet(applicantsSheet); err != nil {
		return "", err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return "", fmt.Errorf("create header style: %w", err)
	}

	if err := writeSummary(f, Compute(records, threshold, now), threshold, now, headerStyle); err != nil {
		return "", fmt.Errorf("write summary sheet: %w", err)
	}
	if err := writeApplicants(f, records, threshold, headerStyle); err != nil {
		return "", fmt.Errorf("write applicants sheet: %w", err)
	}

	if err := f.SaveAs(outputPath); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}
	return outputPath, nil
}

func writeSummary(f *excelize.File, stats Stats, threshold int, now time.Time, headerStyle int) error {
	rows := [][]any{
		{"Metric", "Value"},
		{"Generated At", now.UTC().Format(time.RFC3339)},
		{"Threshold", threshold},
		{"Total Candidates", stats.Total},
		{"Average Score", stats.AverageScore},
		{"Top Matches", stats.TopMatches},
		{"New Today", stats.NewToday},
		{"Pending", stats.Pending},
	}
	for _, decision := range []routing.Decision{routing.FastTrack, routing.ManualReview} {
		rows = append(rows, []any{"Decision: " + string(decision), stats.ByDecision[decision]})
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(summarySheet, "A", "A", 25); err != nil {
		return err
	}
	return f.SetCellStyle(summarySheet, "A1", "B1", headerStyle)
}

func writeApplicants(f *excelize.File, records []storage.Record, threshold int, headerStyle int) error {
	header := make([]any, len(applicantColumns))
	for i, c := range applicantColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(applicantsSheet, "A1", &header); err != nil {
		return err
	}

	for i, r := range records {
		a := r.Applicant
		row := []any{
			i + 1, a.Name, a.Email, a.Phone, a.Source, a.JobTitle, "", string(Verdict(r, threshold).Decision),
			strings.Join(a.Skills, ", "), a.Experience, "", "", "", a.ReceivedAt.UTC().Format(time.RFC3339),
		}
		if r.Scored() {
			row[6] = r.Result.Score
			row[10] = r.Result.Summary
			row[11] = strings.Join(r.Result.Strengths, ", ")
			row[12] = strings.Join(r.Result.RedFlags, ", ")
		} else {
			row[7] = "pending"
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(applicantsSheet, cell, &row); err != nil {
			return err
		}
	}

	last, err := excelize.ColumnNumberToName(len(applicantColumns))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(applicantsSheet, "B", last, 20); err != nil {
		return err
	}
	return f.SetCellStyle(applicantsSheet, "A1", last+"1", headerStyle)
}
