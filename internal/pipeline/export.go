package pipeline

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"mroparse/internal"
	"mroparse/internal/dataset"
)

// ExportDatasetXLSX writes the dataset, output columns included, as a
// single-sheet workbook. Blank cells are left unset to keep files small.
func ExportDatasetXLSX(ds *dataset.Dataset, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i, h := range ds.Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	for r, row := range ds.Rows {
		for c, value := range row {
			if value == "" {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			_ = f.SetCellValue(sheet, cell, value)
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

// ExportDatasetCSV is the plain-text fallback for callers that asked for
// a .csv output path.
func ExportDatasetCSV(ds *dataset.Dataset, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	out, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	w := csv.NewWriter(out)
	if err := w.Write(ds.Headers); err != nil {
		return err
	}
	for _, row := range ds.Rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// ExportDataset picks the writer from the output extension. Anything that
// is not .csv goes out as a workbook.
func ExportDataset(ds *dataset.Dataset, outputPath string) error {
	if filepath.Ext(outputPath) == ".csv" {
		return ExportDatasetCSV(ds, outputPath)
	}
	return ExportDatasetXLSX(ds, outputPath)
}

// ExportQAReport writes the audit workbook for one run: the cells the
// validator cleared, the candidates that fell under the threshold, and
// the run counters. Reviewers work this file, not the result sheet.
func ExportQAReport(outputPath string, recs []internal.CorrectionRecord, low []internal.LowConfidenceItem, stats internal.RunStats) error {
	f := excelize.NewFile()
	_ = f.SetSheetName(f.GetSheetName(0), "Corrections")

	writeRow := func(sheet string, rowNum int, values []any) {
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, rowNum)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	writeRow("Corrections", 1, []any{"row", "field", "old_value", "reason", "action"})
	for i, rec := range recs {
		writeRow("Corrections", i+2, []any{rec.Row, rec.Field, rec.OldValue, rec.Reason, rec.Action})
	}

	_, _ = f.NewSheet("LowConfidence")
	writeRow("LowConfidence", 1, []any{"row", "field", "candidate", "strategy", "confidence", "threshold"})
	for i, item := range low {
		writeRow("LowConfidence", i+2, []any{item.Row, item.Field, item.Value, string(item.Strategy), item.Confidence, stats.Threshold})
	}

	_, _ = f.NewSheet("Stats")
	statRows := [][]any{
		{"metric", "value"},
		{"rows", stats.Rows},
		{"archetype", string(stats.Archetype)},
		{"template", string(stats.Template)},
		{"threshold", stats.Threshold},
		{"skipped_non_product", stats.SkippedNonProduct},
		{"mfg_filled", stats.Mfg.Filled},
		{"mfg_above_threshold", stats.Mfg.AboveThreshold},
		{"mfg_below_threshold", stats.Mfg.BelowThreshold},
		{"mfg_mean_confidence", stats.Mfg.MeanConfidence},
		{"pn_filled", stats.PN.Filled},
		{"pn_above_threshold", stats.PN.AboveThreshold},
		{"pn_below_threshold", stats.PN.BelowThreshold},
		{"pn_mean_confidence", stats.PN.MeanConfidence},
		{"sim_filled", stats.SimFilled},
		{"corrections", len(recs)},
		{"low_confidence_items", len(low)},
	}
	for i, row := range statRows {
		writeRow("Stats", i+1, row)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

// QAReportPath derives the audit workbook path from the result path:
// results.xlsx gets results.qa.xlsx beside it.
func QAReportPath(outputPath string) string {
	ext := filepath.Ext(outputPath)
	base := outputPath[:len(outputPath)-len(ext)]
	return fmt.Sprintf("%s.qa.xlsx", base)
}
