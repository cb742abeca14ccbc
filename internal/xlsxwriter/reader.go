package xlsxwriter

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// SheetInfo describes one sheet of an exported workbook.
type SheetInfo struct {
	Name string

	// Header is the first row.
	Header []string

	// DataRows counts the non-empty rows after the header.
	DataRows int
}

// WorkbookInfo is what Inspect reads back from a workbook.
type WorkbookInfo struct {
	Path   string
	Sheets []SheetInfo

	// Summary holds the label/value pairs of the Summary sheet, if any.
	Summary map[string]string
}

// Inspect opens a workbook and reports its sheets, headers and summary.
func Inspect(path string) (*WorkbookInfo, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	info := &WorkbookInfo{Path: path}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", name, err)
		}

		if name == SummarySheet {
			info.Summary = make(map[string]string)
			for _, row := range rows {
				if len(row) == 0 || row[0] == "" {
					continue
				}
				value := ""
				if len(row) > 1 {
					value = row[1]
				}
				info.Summary[row[0]] = value
			}
		}

		sheet := SheetInfo{Name: name}
		for i, row := range rows {
			if i == 0 {
				sheet.Header = row
				continue
			}
			if !isRowEmpty(row) {
				sheet.DataRows++
			}
		}
		info.Sheets = append(info.Sheets, sheet)
	}

	return info, nil
}

// ReadHeaders returns the header row of the first sheet.
func ReadHeaders(path string) ([]string, error) {
	info, err := Inspect(path)
	if err != nil {
		return nil, err
	}
	if len(info.Sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}
	return info.Sheets[0].Header, nil
}

func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}
