// =============================================================================
// PDF to XLSX Converter - Chart of Accounts Parser
// =============================================================================
//
// This module parses the Chart of Accounts report variant.
//
// LINE LAYOUT:
//   1000 CASH IN BANK  1  0  A 2  A  B  Y 10 20 F1 12345
//   Count MTD 3 YTD 12   Beg Bal: 100.00  MTD Bal: 50.00  YTD Bal: 150.00
//
// Page headers and company banners are skipped.
//
// =============================================================================

// Package accounts parses the Chart of Accounts report: one account per
// line, optionally followed by a line of counts and balances.
package accounts

import (
	"regexp"
	"strings"

	"github.com/ginjaninja78/PDF-to-XLSX-conversion/internal/amount"
	"github.com/ginjaninja78/PDF-to-XLSX-conversion/internal/types"
)

// ReportID is the registry key of the Chart of Accounts report.
const ReportID = "chart_of_accounts"

// Field names, in export order.
const (
	FieldNumber      = "Account Number"
	FieldDescription = "Description"
	FieldCtrl        = "Ctrl"
	FieldFwd         = "Fwd"
	FieldID          = "ID"
	FieldDept        = "Dept"
	FieldTyp         = "Typ"
	FieldSubTyp      = "Sub Typ"
	FieldChainRef    = "Chain Ref"
	FieldChain       = "Chain"
	FieldSrt1        = "Srt1"
	FieldSrt2        = "Srt2"
	FieldFin1        = "Fin1"
	FieldCountMTD    = "Count MTD"
	FieldCountYTD    = "Count YTD"
	FieldBegBal      = "Beg Bal"
	FieldMTDBal      = "MTD Bal"
	FieldYTDBal      = "YTD Bal"
)

// Schema is the fixed column set of the Chart of Accounts report.
var Schema = types.Schema{
	{Name: FieldNumber, Kind: types.KindIdentifier, Pattern: `^\d{4,6}$`},
	{Name: FieldDescription, Kind: types.KindText},
	{Name: FieldCtrl, Kind: types.KindCounter},
	{Name: FieldFwd, Kind: types.KindCounter},
	{Name: FieldID, Kind: types.KindText},
	{Name: FieldDept, Kind: types.KindCounter},
	{Name: FieldTyp, Kind: types.KindText},
	{Name: FieldSubTyp, Kind: types.KindText},
	{Name: FieldChainRef, Kind: types.KindText},
	{Name: FieldChain, Kind: types.KindText, Default: "N"},
	{Name: FieldSrt1, Kind: types.KindText},
	{Name: FieldSrt2, Kind: types.KindText},
	{Name: FieldFin1, Kind: types.KindText},
	{Name: FieldCountMTD, Kind: types.KindCounter},
	{Name: FieldCountYTD, Kind: types.KindCounter},
	{Name: FieldBegBal, Kind: types.KindAmount},
	{Name: FieldMTDBal, Kind: types.KindAmount},
	{Name: FieldYTDBal, Kind: types.KindAmount},
}

// DefaultBanners are the page-furniture fragments that never start an
// account.
var DefaultBanners = []string{
	"Page",
	"CHART OF ACCOUNTS",
	"Reports/Acct",
	"Financial Statements",
	"Sorted by Department",
	"Dtl a/c Sort Post",
}

var (
	accountLine = regexp.MustCompile(`^(\d{4,6})\s+(.+)`)
	dataColumns = regexp.MustCompile(`\s{2,}([0-3])\s+([0-3])\s+([A-Z]?)\s*(\d)\s+([A-Z])\s+([A-Z])`)
	chainRef    = regexp.MustCompile(`^\d{5}$`)
	flagDigit   = regexp.MustCompile(`^[0-3]$`)
	singleUpper = regexp.MustCompile(`^[A-Z]$`)
	countLine   = regexp.MustCompile(`Count MTD\s+(\d+)\s+YTD\s+(\d+)`)
	balanceLine = regexp.MustCompile(`Beg Bal:\s*(-?[\d,.]+).*?MTD Bal:\s*(-?[\d,.]+).*?YTD Bal:\s*(-?[\d,.]+)`)
)

// Parser parses Chart of Accounts documents.
type Parser struct {
	banners []string
}

// NewParser creates a parser that skips lines containing any of the
// given banners in addition to DefaultBanners.
func NewParser(extraBanners ...string) *Parser {
	banners := append(append([]string{}, DefaultBanners...), extraBanners...)
	return &Parser{banners: banners}
}

func (p *Parser) isBanner(line string) bool {
	for _, b := range p.banners {
		if b != "" && strings.Contains(line, b) {
			return true
		}
	}
	return false
}

// Parse walks the lines and returns one record per account line. A line of
// counts or balances right after an account is merged into it.
func (p *Parser) Parse(lines []string) types.Result {
	res := types.Result{Strategy: types.StrategyNone}

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if line == "" || p.isBanner(line) {
			continue
		}
		m := accountLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		rec := types.NewRecord(Schema)
		rec.SourceLine = i + 1
		rec.Set(FieldNumber, m[1])
		decodeColumns(rec, m[2])

		if i+1 < len(lines) && applyTotals(rec, lines[i+1]) {
			i++
		}
		res.Records = append(res.Records, rec)
	}

	if !res.Empty() {
		res.Strategy = types.StrategyStrict
	}
	return res
}

// decodeColumns fills the description and the flag columns from the text
// following the account number.
func decodeColumns(rec types.Record, rest string) {
	if loc := dataColumns.FindStringSubmatchIndex(rest); loc != nil {
		group := func(n int) string { return rest[loc[2*n]:loc[2*n+1]] }

		rec.Set(FieldDescription, strings.TrimSpace(rest[:loc[0]]))
		rec.Set(FieldCtrl, group(1))
		rec.Set(FieldFwd, group(2))
		rec.Set(FieldID, group(3))
		rec.Set(FieldDept, group(4))
		rec.Set(FieldTyp, group(5))
		rec.Set(FieldSubTyp, group(6))

		tail := strings.Fields(rest[loc[1]:])
		for i, name := range []string{FieldChain, FieldSrt1, FieldSrt2, FieldFin1} {
			if i < len(tail) {
				rec.Set(name, tail[i])
			}
		}
		for _, tok := range tail {
			if chainRef.MatchString(tok) {
				rec.Set(FieldChainRef, tok)
			}
		}
		return
	}

	// Without aligned columns the description runs up to the first flag
	// digit and the remaining tokens are taken by position.
	parts := strings.Fields(rest)
	end := len(parts)
	for i, tok := range parts {
		if flagDigit.MatchString(tok) {
			end = i
			break
		}
	}
	rec.Set(FieldDescription, strings.Join(parts[:end], " "))

	data := parts[end:]
	names := []string{FieldCtrl, FieldFwd}
	if len(data) > 2 && singleUpper.MatchString(data[2]) {
		names = append(names, FieldID)
	}
	names = append(names, FieldDept, FieldTyp, FieldSubTyp, FieldChain, FieldSrt1, FieldSrt2)
	for i, name := range names {
		if i < len(data) {
			rec.Set(name, data[i])
		}
	}
}

// applyTotals merges a counts or balances line into rec and reports whether
// the line was one.
func applyTotals(rec types.Record, line string) bool {
	consumed := false
	if m := countLine.FindStringSubmatch(line); m != nil {
		rec.Set(FieldCountMTD, m[1])
		rec.Set(FieldCountYTD, m[2])
		consumed = true
	}
	if m := balanceLine.FindStringSubmatch(line); m != nil {
		rec.Set(FieldBegBal, amount.Format(m[1]))
		rec.Set(FieldMTDBal, amount.Format(m[2]))
		rec.Set(FieldYTDBal, amount.Format(m[3]))
		consumed = true
	}
	return consumed || strings.Contains(line, "Count MTD") || strings.Contains(line, "Beg Bal:")
}

// Source exposes the Chart of Accounts parser to the report registry.
type Source struct {
	parser *Parser
}

// NewSource creates the Chart of Accounts report source.
func NewSource(extraBanners ...string) *Source {
	return &Source{parser: NewParser(extraBanners...)}
}

// ID returns "chart_of_accounts".
func (s *Source) ID() string { return ReportID }

// Label is the report title as printed on the PDF.
func (s *Source) Label() string { return "Chart of Accounts" }

// SheetName names the data sheet of exported workbooks.
func (s *Source) SheetName() string { return "Chart of Accounts" }

// Columns returns the account export schema.
func (s *Source) Columns() types.Schema { return Schema }

// Parse extracts accounts from the document lines.
func (s *Source) Parse(doc types.Document) types.Result {
	return s.parser.Parse(doc.Lines)
}
