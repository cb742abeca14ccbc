// =============================================================================
// PDF to XLSX Converter - XLSX Writer Module
// =============================================================================
//
// This module is responsible for generating the output workbook from the
// parsed and transformed records.
//
// WORKBOOK STRUCTURE:
//
//   Sheet 1 (report sheet name, e.g. "All Deals")
//     Row 1       Declared column names, in schema order
//     Row 2..n+1  One row per record
//
//   Sheet 2 "Summary"
//     Summary Statistics |
//     Total Rows         | n
//     Total Columns      | number of declared columns
//     Report Type        | SHEET NAME IN UPPER CASE
//     Generated Date     | 1/2/2006
//     Generated Time     | 3:04:05 PM
//
// Cell values are written as text so amounts keep their canonical form.
//
// =============================================================================

package xlsxwriter

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/PDF-to-XLSX-conversion/internal/types"
)

// SummarySheet is the name of the statistics sheet.
const SummarySheet = "Summary"

// maxSheetName is the Excel limit on sheet name length.
const maxSheetName = 31

// =============================================================================
// WRITE OPTIONS
// =============================================================================

// WriteOptions contains options for workbook generation.
type WriteOptions struct {
	// IncludeSummary adds the Summary sheet.
	// Default: true
	IncludeSummary bool

	// FreezeHeader keeps the header row visible while scrolling.
	// Default: true
	FreezeHeader bool

	// AutoFilter adds filter buttons to the header row.
	// Default: true
	AutoFilter bool

	// MinColumnWidth is the smallest data column width, in characters.
	// Columns are widened to fit their header.
	// Default: 12
	MinColumnWidth float64

	// Now is the generation time shown on the Summary sheet.
	// Default: time.Now at write time
	Now func() time.Time
}

// DefaultWriteOptions returns the default generation options.
func DefaultWriteOptions() WriteOptions {
	return WriteOptions{
		IncludeSummary: true,
		FreezeHeader:   true,
		AutoFilter:     true,
		MinColumnWidth: 12,
		Now:            time.Now,
	}
}

// Sheet is the data to export: one report's records under its schema.
type Sheet struct {
	// Name is the data sheet name.
	Name string

	// Columns is the export schema; its names form the header row.
	Columns types.Schema

	// Records are written in order, one row each.
	Records []types.Record
}

// =============================================================================
// WORKBOOK GENERATION
// =============================================================================

// Build creates the workbook in memory. The caller must Close it.
//
// PARAMETERS:
//   - sheet: The records and schema to export.
//   - options: The generation options.
//
// RETURNS:
//   - The workbook.
//   - An error if a sheet or cell cannot be written.
func Build(sheet Sheet, options WriteOptions) (*excelize.File, error) {
	f := excelize.NewFile()

	name := SheetName(sheet.Name)
	if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name data sheet: %w", err)
	}

	if err := writeDataSheet(f, name, sheet, options); err != nil {
		f.Close()
		return nil, err
	}

	if options.IncludeSummary {
		now := time.Now
		if options.Now != nil {
			now = options.Now
		}
		if err := writeSummarySheet(f, name, len(sheet.Records), len(sheet.Columns), now()); err != nil {
			f.Close()
			return nil, err
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

// WriteFile builds the workbook and saves it to path. A failed write
// leaves no partial file behind.
func WriteFile(path string, sheet Sheet, options WriteOptions) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create workbook: %w", err)
	}

	if err := Write(file, sheet, options); err != nil {
		file.Close()
		os.Remove(path)
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// Write builds the workbook and streams it to w.
func Write(w io.Writer, sheet Sheet, options WriteOptions) error {
	f, err := Build(sheet, options)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeDataSheet(f *excelize.File, name string, sheet Sheet, options WriteOptions) error {
	names := sheet.Columns.Names()
	if len(names) == 0 {
		return fmt.Errorf("sheet %q has no columns", name)
	}

	if err := setRow(f, name, 1, toCells(names)); err != nil {
		return err
	}
	for i, rec := range sheet.Records {
		if err := setRow(f, name, i+2, toCells(rec.Values(names))); err != nil {
			return err
		}
	}

	// Header styling.
	lastCol, err := excelize.ColumnNumberToName(len(names))
	if err != nil {
		return err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetCellStyle(name, "A1", lastCol+"1", style); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, n := range names {
		col, _ := excelize.ColumnNumberToName(i + 1)
		width := max(options.MinColumnWidth, float64(len(n)+2))
		if err := f.SetColWidth(name, col, col, width); err != nil {
			return fmt.Errorf("failed to set width of column %s: %w", col, err)
		}
	}

	if options.FreezeHeader {
		err := f.SetPanes(name, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		})
		if err != nil {
			return fmt.Errorf("failed to freeze header: %w", err)
		}
	}

	if options.AutoFilter {
		ref := fmt.Sprintf("A1:%s%d", lastCol, len(sheet.Records)+1)
		if err := f.AutoFilter(name, ref, nil); err != nil {
			return fmt.Errorf("failed to add filter: %w", err)
		}
	}

	return nil
}

func writeSummarySheet(f *excelize.File, dataSheet string, rows, columns int, now time.Time) error {
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	summary := [][]interface{}{
		{"Summary Statistics", ""},
		{"Total Rows", rows},
		{"Total Columns", columns},
		{"Report Type", strings.ToUpper(dataSheet)},
		{"Generated Date", now.Format("1/2/2006")},
		{"Generated Time", now.Format("3:04:05 PM")},
	}
	for i, row := range summary {
		if err := setRow(f, SummarySheet, i+1, row); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(SummarySheet, "A", "A", 20); err != nil {
		return err
	}
	return f.SetColWidth(SummarySheet, "B", "B", 30)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// SheetName makes name usable as an Excel sheet name: forbidden characters
// are replaced, the length is capped and the Summary name is avoided.
func SheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, strings.TrimSpace(name))

	if runes := []rune(name); len(runes) > maxSheetName {
		name = string(runes[:maxSheetName])
	}
	if name == "" || strings.EqualFold(name, SummarySheet) {
		return "Report"
	}
	return name
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d of %s: %w", row, sheet, err)
	}
	return nil
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
