// =============================================================================
// PDF to XLSX Converter - Amount Normalizer
// =============================================================================
//
// This module turns report amounts such as "1234.5", "-50" or "$1,000.00"
// into the canonical form "1,234.50". Unparseable text becomes "0.00".
//
// =============================================================================

// Package amount normalizes free-form monetary text into the canonical
// signed, comma-grouped, two-decimal form used by every export column of
// kind amount.
package amount

import (
	"regexp"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Zero is the canonical value for absent or unreadable amounts.
const Zero = "0.00"

var (
	nonNumeric = regexp.MustCompile(`[^0-9.\-]`)
	canonical  = regexp.MustCompile(`^-?[\d,]+\.\d{2}$`)

	// formatter renders integer cents as 1,234.56 with a leading "-" for
	// negative values.
	formatter = money.NewFormatter(2, ".", ",", "", "1")

	hundred = decimal.NewFromInt(100)

	// Cents beyond this no longer fit an int64.
	maxCents = decimal.New(9, 18)
)

// Format normalizes value to a canonical amount. It never fails: anything
// that is not a number after cleaning becomes "0.00".
//
//	Format("-1234.5")   == "-1,234.50"
//	Format("1,234.567") == "1,234.57"
//	Format("abc")       == "0.00"
func Format(value string) string {
	d, ok := Parse(value)
	if !ok {
		return Zero
	}
	d = d.Round(2)

	cents := d.Mul(hundred)
	if cents.Abs().GreaterThanOrEqual(maxCents) {
		return formatLarge(d)
	}
	return formatter.Format(cents.IntPart())
}

// Parse cleans value the way Format does and returns the number it holds.
func Parse(value string) (decimal.Decimal, bool) {
	s := nonNumeric.ReplaceAllString(value, "")
	if s == "" || s == "-" {
		return decimal.Zero, false
	}

	neg := strings.HasPrefix(s, "-")
	body := strings.TrimPrefix(s, "-")
	if strings.HasPrefix(body, ".") {
		body = "0" + body
	}
	if strings.HasSuffix(body, ".") {
		body += "0"
	}
	if neg {
		body = "-" + body
	}

	d, err := decimal.NewFromString(body)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// IsCanonical reports whether token already has the two-decimal amount shape
// used by report layouts, e.g. "1,200.00" or "-35.10".
func IsCanonical(token string) bool {
	return canonical.MatchString(token)
}

// formatLarge renders values whose cents overflow int64.
func formatLarge(d decimal.Decimal) string {
	fixed := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if d.IsNegative() {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}
