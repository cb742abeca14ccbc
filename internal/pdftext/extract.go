// =============================================================================
// PDF to XLSX Converter - PDF Text Extraction
// =============================================================================
//
// This module reads PDF pages with ledongthuc/pdf and hands their positioned
// text fragments to GroupLines.
//
// =============================================================================

// Package pdftext turns PDF pages into print lines: positioned text
// fragments are grouped by rounded vertical coordinate, ordered top to
// bottom, and concatenated left to right with synthetic spacing for wide
// horizontal gaps.
package pdftext

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ledongthuc/pdf"
)

// ErrNotPDF is returned when the input does not carry a PDF header.
var ErrNotPDF = errors.New("not a PDF document")

// headerWindow is how far into the file the %PDF- marker is searched.
const headerWindow = 1024

// ExtractFile reads every page of the PDF at path and returns its lines.
func ExtractFile(ctx context.Context, path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat PDF: %w", err)
	}
	return Extract(ctx, f, info.Size())
}

// Extract reads every page of a PDF and returns the grouped lines of all
// pages in order. Cancellation is checked between pages.
func Extract(ctx context.Context, r io.ReaderAt, size int64) ([]string, error) {
	head := make([]byte, min(size, headerWindow))
	if _, err := r.ReadAt(head, 0); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read PDF header: %w", err)
	}
	if !bytes.Contains(head, []byte("%PDF-")) {
		return nil, ErrNotPDF
	}

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF reader: %w", err)
	}

	var lines []string
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		frags, err := pageFragments(page)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		lines = append(lines, GroupLines(frags)...)
	}
	return lines, nil
}

// pageFragments collects the positioned text of one page. The PDF library
// panics on some malformed content streams; that is reported as an error.
func pageFragments(page pdf.Page) (frags []Fragment, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unreadable content stream: %v", r)
		}
	}()

	for _, t := range page.Content().Text {
		frags = append(frags, Fragment{X: t.X, Y: t.Y, W: t.W, S: t.S})
	}
	return frags, nil
}
