package deals

import (
	"regexp"
	"strings"

	"github.com/ginjaninja78/PDF-to-XLSX-conversion/internal/amount"
	"github.com/ginjaninja78/PDF-to-XLSX-conversion/internal/types"
)

var (
	headerPattern = regexp.MustCompile(
		`^(\d+)\s*-\s*(\d{7})\s+(.+?)\s+([A-Z0-9]+)\s+(-?[\d,]+\.\d{2})\s+(-?[\d,]+\.\d{2})(.*)$`)

	// headerShape is the looser test the trailer scan uses to spot the next
	// record without requiring a full match.
	headerShape = regexp.MustCompile(`^\d+\s*-\s*\d{7}\b`)

	amountToken = regexp.MustCompile(`-?[\d,]+\.\d{2}`)
)

// MatchHeader reports whether line starts a record and, if so, returns the
// record pre-populated with the document context and the header fields.
//
// When the line holds at least four amount-shaped tokens, the last two are
// taken as the running totals, wherever they sit in the line.
func MatchHeader(line string, ctx Context) (types.Record, bool) {
	m := headerPattern.FindStringSubmatch(line)
	if m == nil {
		return types.Record{}, false
	}

	rec := newRecord(ctx)
	rec.Set(FieldCount, m[1])
	rec.Set(FieldDealNumber, m[2])
	rec.Set(FieldCustomer, strings.TrimSpace(m[3]))
	rec.Set(FieldStock, m[4])
	rec.Set(FieldVehicleGross, amount.Format(m[5]))
	rec.Set(FieldFinanceReserve, amount.Format(m[6]))

	if amounts := amountToken.FindAllString(line, -1); len(amounts) >= 4 {
		rec.Set(FieldSalesRunning, amount.Format(amounts[len(amounts)-2]))
		rec.Set(FieldFinanceRunning, amount.Format(amounts[len(amounts)-1]))
	}
	return rec, true
}

func newRecord(ctx Context) types.Record {
	rec := types.NewRecord(Schema)
	rec.Set(FieldStatus, ctx.Status)
	rec.Set(FieldLocation, ctx.Location)
	return rec
}
