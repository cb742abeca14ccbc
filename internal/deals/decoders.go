package deals

import (
	"regexp"
	"strings"

	"github.com/ginjaninja78/PDF-to-XLSX-conversion/internal/amount"
	"github.com/ginjaninja78/PDF-to-XLSX-conversion/internal/types"
)

// The four lines after a header are decoded by token class rather than
// column offsets. Each decoder reads from an immutable token slice starting
// at pos and returns what it recognized together with the position after the
// last token it consumed. Tokens it does not understand are left in place.

var (
	shortDate    = regexp.MustCompile(`^\d{2}/\d{2}/\d{2}$`)
	fourDigits   = regexp.MustCompile(`^\d{4}$`)
	digitsOnly   = regexp.MustCompile(`^\d+$`)
	newUsed      = regexp.MustCompile(`(?i)^(New|Used)$`)
	dealTypeWord = regexp.MustCompile(`(?i)^(Finance|Cash|Lease)$`)
	keyedFlag    = regexp.MustCompile(`^[YyNn]$`)
)

// fieldSet is an ordered list of recognized field values.
type fieldSet []fieldValue

type fieldValue struct {
	name  string
	value string
}

func (fs *fieldSet) add(name, value string) {
	*fs = append(*fs, fieldValue{name: name, value: value})
}

// apply copies the recognized values onto rec.
func (fs fieldSet) apply(rec types.Record) {
	for _, f := range fs {
		rec.Set(f.name, f.value)
	}
}

// Get returns the recognized value of a field.
func (fs fieldSet) Get(name string) (string, bool) {
	for _, f := range fs {
		if f.name == name {
			return f.value, true
		}
	}
	return "", false
}

func next(tokens []string, pos int) (string, bool) {
	if pos >= len(tokens) {
		return "", false
	}
	return tokens[pos], true
}

// takeAmounts normalizes up to len(names) consecutive tokens as amounts.
func takeAmounts(fs *fieldSet, tokens []string, pos int, names ...string) int {
	for _, name := range names {
		tok, ok := next(tokens, pos)
		if !ok {
			break
		}
		fs.add(name, amount.Format(tok))
		pos++
	}
	return pos
}

// takeUntilAmount joins tokens up to the first canonical amount.
func takeUntilAmount(tokens []string, pos int) (string, int) {
	start := pos
	for pos < len(tokens) && !amount.IsCanonical(tokens[pos]) {
		pos++
	}
	return strings.Join(tokens[start:pos], " "), pos
}

// decodeSalesLine reads the accounting date, salespeople, new/used flag,
// vehicle type, days in stock, rebates and service contracts.
func decodeSalesLine(tokens []string, pos int) (fieldSet, int) {
	var fs fieldSet

	if tok, ok := next(tokens, pos); ok && shortDate.MatchString(tok) {
		fs.add(FieldAccountingDate, tok)
		pos++
	}

	var people []string
	for pos < len(tokens) && !newUsed.MatchString(tokens[pos]) {
		if strings.Contains(tokens[pos], ",") && len(people) < 2 {
			people = append(people, tokens[pos])
		}
		pos++
	}
	if len(people) > 0 {
		fs.add(FieldSalesperson1, people[0])
	}
	if len(people) > 1 {
		fs.add(FieldSalesperson2, people[1])
	}

	if tok, ok := next(tokens, pos); ok {
		fs.add(FieldNewUsed, capitalize(tok))
		pos++
	}
	if tok, ok := next(tokens, pos); ok {
		fs.add(FieldType, capitalize(tok))
		pos++
	}
	if tok, ok := next(tokens, pos); ok && digitsOnly.MatchString(tok) {
		fs.add(FieldDays, tok)
		pos++
	}

	pos = takeAmounts(&fs, tokens, pos, FieldRebates, FieldServiceContract)
	return fs, pos
}

// decodeVehicleLine reads the sale date, model year, make, incentives and
// credit insurance.
func decodeVehicleLine(tokens []string, pos int) (fieldSet, int) {
	var fs fieldSet

	if tok, ok := next(tokens, pos); ok && shortDate.MatchString(tok) {
		fs.add(FieldSaleDate, tok)
		pos++
	}
	if tok, ok := next(tokens, pos); ok && fourDigits.MatchString(tok) {
		fs.add(FieldYear, tok)
		pos++
	}

	var maker string
	maker, pos = takeUntilAmount(tokens, pos)
	if maker != "" {
		fs.add(FieldMake, maker)
	}

	pos = takeAmounts(&fs, tokens, pos, FieldIncentives, FieldCreditInsurance)
	return fs, pos
}

// decodeDealLine reads the deal type, sales manager, model, holdback and the
// add-on package total.
func decodeDealLine(tokens []string, pos int) (fieldSet, int) {
	var fs fieldSet

	if tok, ok := next(tokens, pos); ok && dealTypeWord.MatchString(tok) {
		fs.add(FieldDealType, capitalize(tok))
		pos++
	}
	if tok, ok := next(tokens, pos); ok && strings.Contains(tok, ",") {
		fs.add(FieldSalesManager, tok)
		pos++
	}

	var model string
	model, pos = takeUntilAmount(tokens, pos)
	if model != "" {
		fs.add(FieldModel, model)
	}

	pos = takeAmounts(&fs, tokens, pos, FieldHoldback, FieldAddOns)
	return fs, pos
}

// decodeTotalsLine reads the accounting-keyed flag, finance manager and the
// four closing amounts.
func decodeTotalsLine(tokens []string, pos int) (fieldSet, int) {
	var fs fieldSet

	// A first token that is not a Y/N flag stays available for the fields
	// that follow.
	if tok, ok := next(tokens, pos); ok && keyedFlag.MatchString(tok) {
		fs.add(FieldAccountingKeyed, strings.ToUpper(tok))
		pos++
	}
	if tok, ok := next(tokens, pos); ok && strings.Contains(tok, ",") {
		fs.add(FieldFinanceManager, tok)
		pos++
	}

	pos = takeAmounts(&fs, tokens, pos,
		FieldSalePrice, FieldSalesGross, FieldFinanceGross, FieldGrandTotal)
	return fs, pos
}

// lineDecoders are applied in order to the lines following a header.
var lineDecoders = [...]func([]string, int) (fieldSet, int){
	decodeSalesLine,
	decodeVehicleLine,
	decodeDealLine,
	decodeTotalsLine,
}
