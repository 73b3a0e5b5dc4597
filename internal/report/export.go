// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.yaml.in/yaml/v3"
)

// Export writes s to path. The extension selects the format: .yaml/.yml,
// .json or .xlsx.
func Export(path string, s Summary) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ExportYAML(path, s)
	case ".json":
		return ExportJSON(path, s)
	case ".xlsx":
		return ExportXLSX(path, s)
	}
	return fmt.Errorf("unsupported export extension %q: use .yaml, .json or .xlsx", filepath.Ext(path))
}

// ExportYAML writes s to path as YAML.
func ExportYAML(path string, s Summary) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportJSON writes s to path as indented JSON.
func ExportJSON(path string, s Summary) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

const (
	overviewSheet  = "Overview"
	documentsSheet = "Documents"
)

// ExportXLSX writes s to path as a workbook with an overview sheet and,
// when the results were split by document, a documents sheet.
func ExportXLSX(path string, s Summary) error {
	f := excelize.NewFile()
	defer f.Close()

	// The default sheet becomes the overview.
	if err := f.SetSheetName(f.GetSheetName(0), overviewSheet); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	overview := [][]any{
		{"Metric", "Value"},
		{"Run", s.RunID},
		{"Dataset", s.Dataset},
		{"Split attribute", string(s.SplitAttr)},
		{"References", s.Total},
		{"Accuracy", s.Accuracy},
		{"Precision", s.Precision},
		{"Recall", s.Recall},
		{"F1", s.F1},
		{"Unassigned references", s.Unassigned},
	}
	if a := s.DocumentAverages; a != nil {
		overview = append(overview,
			[]any{"Average precision", a.Precision},
			[]any{"Average recall", a.Recall},
			[]any{"Average F1", a.F1},
		)
	}
	overview = append(overview, []any{}, []any{"Outcome", "Count", "Fraction"})
	outcomeHeader := len(overview)
	for _, o := range s.Outcomes {
		overview = append(overview, []any{string(o.Outcome), o.Count, o.Fraction})
	}
	if err := writeRows(f, overviewSheet, overview, headerStyle, 1, outcomeHeader); err != nil {
		return err
	}
	if err := setColWidths(f, overviewSheet, colWidth{"A", "A", 24}, colWidth{"B", "C", 40}); err != nil {
		return err
	}

	if len(s.Documents) > 0 {
		if _, err := f.NewSheet(documentsSheet); err != nil {
			return fmt.Errorf("creating sheet: %w", err)
		}
		rows := [][]any{{"Document", "Correct", "GT", "Test", "Precision", "Recall", "F1"}}
		for _, d := range s.Documents {
			rows = append(rows, []any{d.Doc, d.Correct, d.GT, d.Test, d.Precision, d.Recall, d.F1})
		}
		if err := writeRows(f, documentsSheet, rows, headerStyle, 1); err != nil {
			return err
		}
		if err := setColWidths(f, documentsSheet, colWidth{"A", "A", 32}, colWidth{"B", "G", 12}); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

type colWidth struct {
	first, last string
	width       float64
}

func setColWidths(f *excelize.File, sheet string, widths ...colWidth) error {
	for _, w := range widths {
		if err := f.SetColWidth(sheet, w.first, w.last, w.width); err != nil {
			return fmt.Errorf("sizing %s columns %s:%s: %w", sheet, w.first, w.last, err)
		}
	}
	return nil
}

// writeRows writes rows starting at A1 and styles the given 1-based header
// rows.
func writeRows(f *excelize.File, sheet string, rows [][]any, style int, headerRows ...int) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, i+1, err)
		}
	}
	for _, r := range headerRows {
		first, _ := excelize.CoordinatesToCellName(1, r)
		last, _ := excelize.CoordinatesToCellName(len(rows[r-1]), r)
		if err := f.SetCellStyle(sheet, first, last, style); err != nil {
			return fmt.Errorf("styling %s header: %w", sheet, err)
		}
	}
	return nil
}
