// =============================================================================
// PDF to XLSX Converter - CSV Writer Module
// =============================================================================
//
// This module writes parsed records as CSV, for downstream tools that do not
// read workbooks. The header row is the report's declared column list and
// every record is written in that column order.
//
// Rows are written through gocsv's SafeCSVWriter. Read parses an exported
// file back against the same schema; the inspect command uses it.
//
// =============================================================================

package csvwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/ginjaninja78/PDF-to-XLSX-conversion/internal/types"
)

// Write writes the header and one row per record to w.
//
// PARAMETERS:
//   - w: The destination.
//   - columns: The export schema; its names form the header row.
//   - records: The records to write.
//
// RETURNS:
//   - An error if writing fails.
func Write(w io.Writer, columns types.Schema, records []types.Record) error {
	names := columns.Names()
	if len(names) == 0 {
		return fmt.Errorf("no columns to write")
	}

	writer := gocsv.NewSafeCSVWriter(csv.NewWriter(w))

	if err := writer.Write(names); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, rec := range records {
		if err := writer.Write(rec.Values(names)); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i+1, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

// WriteFile writes the records to a new file at path.
func WriteFile(path string, columns types.Schema, records []types.Record) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}

	if err := Write(file, columns, records); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Read loads records written by Write. Columns missing from the file keep
// their schema default; columns outside the schema are ignored.
func Read(r io.Reader, columns types.Schema) ([]types.Record, error) {
	rows, err := gocsv.CSVToMaps(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}

	records := make([]types.Record, 0, len(rows))
	for _, row := range rows {
		rec := types.NewRecord(columns)
		for name, value := range row {
			rec.Set(name, value)
		}
		records = append(records, rec)
	}
	return records, nil
}
