// =============================================================================
// PDF to XLSX Converter - All Deals Fallback Extractor
// =============================================================================
//
// This module recovers deals from text the strict grammar does not
// recognize. It searches the whole text for header-shaped matches and
// fills the remaining fields from a window of characters after each match.
// When nothing matches, a token scan over deal numbers is tried last.
//
// =============================================================================

package deals

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ginjaninja78/PDF-to-XLSX-conversion/internal/amount"
	"github.com/ginjaninja78/PDF-to-XLSX-conversion/internal/types"
)

var (
	looseHeader   = regexp.MustCompile(`(\d+)\s*[-–]\s*(\d{7})[^\n]*`)
	looseCustomer = regexp.MustCompile(`^\s+([A-Z][A-Z,.'\s]*[A-Z,.])\s`)
	looseStock    = regexp.MustCompile(`^\s*([A-Z0-9]{3,10})(?:\s|$)`)
	looseDate     = regexp.MustCompile(`\d{2}/\d{2}/\d{2,4}`)
	loosePerson   = regexp.MustCompile(`[A-Z][a-z]+,[A-Z][a-z]+`)
	looseYear     = regexp.MustCompile(`\s(20\d{2})\s`)
	looseMake     = regexp.MustCompile(`(?i)\s(Ford|Chevrolet|Chevy|Toyota|Honda|Nissan|Dodge|Ram|Jeep|Chrysler|ISUZU|Peterbilt)`)
	looseKeyed    = regexp.MustCompile(`\s([YN])\s`)
	sevenDigits   = regexp.MustCompile(`^\d{7}$`)
)

const unknownCustomer = "Unknown"

// ParseLoose extracts deals from text whose layout does not follow the
// five-line block grammar. It searches the whole text for "<count> -
// <deal #>" occurrences and recovers what it can around each one. When that
// finds nothing, every standalone seven-digit token preceded by a count is
// taken as a deal.
//
// ParseLoose never panics; an internal failure yields an empty result.
func (p *Parser) ParseLoose(text string) (res types.Result) {
	ctx := looseContext(text)
	res = types.Result{Strategy: types.StrategyNone, Status: ctx.Status, Location: ctx.Location}

	defer func() {
		if r := recover(); r != nil {
			slog.Warn("loose extraction aborted", "panic", r)
			res.Records = nil
			res.Strategy = types.StrategyNone
		}
	}()

	if records := p.scanMatches(text, ctx); len(records) > 0 {
		res.Records = records
		res.Strategy = types.StrategyLoose
		return res
	}
	if records := scanTokens(text, ctx); len(records) > 0 {
		res.Records = records
		res.Strategy = types.StrategyTokenScan
	}
	return res
}

func (p *Parser) scanMatches(text string, ctx Context) []types.Record {
	var records []types.Record

	for _, m := range looseHeader.FindAllStringSubmatchIndex(text, -1) {
		rec := newRecord(ctx)
		rec.Set(FieldCount, text[m[2]:m[3]])
		rec.Set(FieldDealNumber, text[m[4]:m[5]])

		line := text[m[0]:m[1]]
		rest := text[m[5]:m[1]]

		customer := unknownCustomer
		if cm := looseCustomer.FindStringSubmatchIndex(rest); cm != nil {
			customer = strings.TrimSpace(rest[cm[2]:cm[3]])
			rest = rest[cm[3]:]
		}
		rec.Set(FieldCustomer, customer)

		if sm := looseStock.FindStringSubmatch(rest); sm != nil {
			rec.Set(FieldStock, sm[1])
		}

		amounts := amountToken.FindAllString(line, 2)
		if len(amounts) > 0 {
			rec.Set(FieldVehicleGross, amount.Format(amounts[0]))
		}
		if len(amounts) > 1 {
			rec.Set(FieldFinanceReserve, amount.Format(amounts[1]))
		}

		p.fillFromWindow(rec, window(text, m[0], p.opts.ProximityWindow))
		records = append(records, rec)
	}
	return records
}

// fillFromWindow runs the independent single-shot searches over the text
// following a match.
func (p *Parser) fillFromWindow(rec types.Record, area string) {
	dates := looseDate.FindAllString(area, 2)
	if len(dates) > 0 {
		rec.Set(FieldAccountingDate, dates[0])
	}
	if len(dates) > 1 {
		rec.Set(FieldSaleDate, dates[1])
	}

	if person := loosePerson.FindString(area); person != "" {
		rec.Set(FieldSalesperson1, person)
	}

	switch {
	case strings.Contains(area, "New "):
		rec.Set(FieldNewUsed, "New")
	case strings.Contains(area, "Used "):
		rec.Set(FieldNewUsed, "Used")
	}

	for _, kind := range []string{"Finance", "Cash", "Lease"} {
		if strings.Contains(area, kind) {
			rec.Set(FieldDealType, kind)
			break
		}
	}

	if m := looseYear.FindStringSubmatch(area); m != nil {
		rec.Set(FieldYear, m[1])
	}
	if m := looseMake.FindStringSubmatch(area); m != nil {
		rec.Set(FieldMake, m[1])
	}
	if m := looseKeyed.FindStringSubmatch(area); m != nil {
		rec.Set(FieldAccountingKeyed, m[1])
	}
}

// window returns up to size characters of text starting at byte offset from.
func window(text string, from, size int) string {
	end := from
	for n := 0; n < size && end < len(text); n++ {
		_, width := utf8.DecodeRuneInString(text[end:])
		end += width
	}
	return text[from:end]
}

func scanTokens(text string, ctx Context) []types.Record {
	var records []types.Record

	tokens := strings.Fields(text)
	for i, tok := range tokens {
		if !sevenDigits.MatchString(tok) {
			continue
		}

		count := ""
		switch {
		case i > 0 && digitsOnly.MatchString(tokens[i-1]):
			count = tokens[i-1]
		case i > 1 && digitsOnly.MatchString(tokens[i-2]):
			count = tokens[i-2]
		}
		if count == "" {
			continue
		}

		rec := newRecord(ctx)
		rec.Set(FieldCount, count)
		rec.Set(FieldDealNumber, tok)
		rec.Set(FieldCustomer, unknownCustomer)
		if i+1 < len(tokens) {
			rec.Set(FieldCustomer, tokens[i+1])
		}
		if i+2 < len(tokens) {
			rec.Set(FieldStock, tokens[i+2])
		}
		records = append(records, rec)
	}
	return records
}
