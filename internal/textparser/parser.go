// =============================================================================
// PDF to XLSX Converter - Text Dump Parser
// =============================================================================
//
// This module reads plain-text dumps of report PDFs, as produced by
// "Save as text" or pdftotext, into the line list the report parsers work
// on. It handles:
//   - UTF-8 byte order marks
//   - Windows and old Mac line endings
//   - Form feeds between pages
//   - Very long lines
//
// Lines are trimmed and blank lines are dropped, which is the same shape
// pdftext produces from a real PDF.
//
// =============================================================================

package textparser

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ginjaninja78/PDF-to-XLSX-conversion/internal/types"
)

// maxLineSize bounds a single line; report dumps never come close.
const maxLineSize = 1 << 20

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// =============================================================================
// TEXT DATA STRUCTURE
// =============================================================================

// TextData represents a parsed text dump.
type TextData struct {
	// Lines are the trimmed, non-empty lines in file order.
	Lines []string

	// SourceFile is the path to the source file, if any.
	SourceFile string

	// RawLineCount is the number of lines read, blank ones included.
	RawLineCount int

	// PageCount is the number of form-feed separated pages.
	PageCount int
}

// Document returns the data as parser input.
func (d *TextData) Document() types.Document {
	return types.NewDocument(d.Lines)
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a text dump from disk.
//
// PARAMETERS:
//   - filePath: The path to the text file.
//
// RETURNS:
//   - A pointer to the TextData struct containing the lines.
//   - An error if the file cannot be read.
func Parse(filePath string) (*TextData, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open text file: %w", err)
	}
	defer file.Close()

	data, err := Read(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filePath, err)
	}
	data.SourceFile = filePath
	return data, nil
}

// Read reads a text dump from r.
func Read(r io.Reader) (*TextData, error) {
	reader := bufio.NewReader(r)

	// Skip a UTF-8 BOM if present.
	if head, err := reader.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		reader.Discard(len(utf8BOM))
	}

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	scanner.Split(splitLines)

	data := &TextData{PageCount: 1}
	for scanner.Scan() {
		raw := scanner.Text()
		data.RawLineCount++

		pages := strings.Split(raw, "\f")
		data.PageCount += len(pages) - 1
		for _, part := range pages {
			if line := strings.TrimSpace(part); line != "" {
				data.Lines = append(data.Lines, line)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return data, nil
}

// splitLines is bufio.ScanLines that also accepts a lone '\r' as a line end.
func splitLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\r' {
			if i+1 < len(data) {
				if data[i+1] == '\n' {
					return i + 2, data[:i], nil
				}
				return i + 1, data[:i], nil
			}
			if !atEOF {
				// Need more data to know whether "\r\n" follows.
				return 0, nil, nil
			}
		}
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
