// =============================================================================
// PDF to XLSX Converter - All Deals Parser
// =============================================================================
//
// This module walks the print lines of an All Deals report and assembles one
// record per deal block.
//
// DEAL BLOCK LAYOUT:
//   1. Header     : count - deal# customer stock gross reserve [running]
//   2. Sales line : accounting date, salespeople, N/U, type, days
//   3. Vehicle    : sale date, year, make, incentives, credit ins
//   4. Deal line  : deal type, managers, model, holdback, add-ons
//   5. Totals     : keyed flag, finance manager, price and gross totals
//   then optional "Trade:" and "Duebill" lines
//
// The walk stops at the "Totals and Averages" marker.
//
// =============================================================================

// Package deals parses the All Deals report: a sequence of five-line deal
// blocks, each opened by a header line and optionally followed by Trade and
// Duebill annotations, terminated by a "Totals and Averages" section.
//
// Parsing never fails. Unrecognized lines are skipped, malformed tokens keep
// their field's default and a document without any recognizable deal yields
// an empty result.
package deals

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ginjaninja78/PDF-to-XLSX-conversion/internal/types"
)

// Options are the heuristic windows used while scanning a document.
type Options struct {
	// StatusWindow is the number of leading lines searched for the status.
	StatusWindow int

	// LocationLookahead is the number of lines after the totals marker
	// searched for the location label.
	LocationLookahead int

	// ProximityWindow is the number of characters after a loose match
	// searched for secondary fields.
	ProximityWindow int
}

// DefaultOptions returns the windows that fit the standard report layout.
func DefaultOptions() Options {
	return Options{
		StatusWindow:      20,
		LocationLookahead: 8,
		ProximityWindow:   500,
	}
}

// withDefaults replaces non-positive windows by their defaults.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.StatusWindow <= 0 {
		o.StatusWindow = d.StatusWindow
	}
	if o.LocationLookahead <= 0 {
		o.LocationLookahead = d.LocationLookahead
	}
	if o.ProximityWindow <= 0 {
		o.ProximityWindow = d.ProximityWindow
	}
	return o
}

// Parser holds the options of one report configuration. It has no mutable
// state and may be shared between goroutines.
type Parser struct {
	opts Options
}

// NewParser creates a parser with the given windows.
func NewParser(opts Options) *Parser {
	return &Parser{opts: opts.withDefaults()}
}

// Options returns the effective windows.
func (p *Parser) Options() Options {
	return p.opts
}

var (
	tradeLine   = regexp.MustCompile(`(?i)^Trade:`)
	duebillLine = regexp.MustCompile(`(?i)^Duebill`)
)

// decoderLines is the number of fixed lines following every header.
const decoderLines = 4

// ParseStrict walks the lines looking for deal headers, decodes the four
// lines following each header and collects trailing annotations. The walk
// ends at the totals marker. Counts are repaired before returning.
func (p *Parser) ParseStrict(lines []string) types.Result {
	ctx := ExtractContext(lines, p.opts)
	res := types.Result{
		Strategy: types.StrategyNone,
		Status:   ctx.Status,
		Location: ctx.Location,
	}

	for i := 0; i < len(lines); i++ {
		if totalsMarker.MatchString(lines[i]) {
			break
		}
		rec, ok := MatchHeader(lines[i], ctx)
		if !ok {
			continue
		}
		rec.SourceLine = i + 1

		terminated := false
		for n, decode := range lineDecoders {
			idx := i + 1 + n
			if idx >= len(lines) {
				break
			}
			if totalsMarker.MatchString(lines[idx]) {
				terminated = true
				break
			}
			fs, _ := decode(strings.Fields(lines[idx]), 0)
			fs.apply(rec)
		}
		res.Records = append(res.Records, rec)
		if terminated {
			break
		}

		i = scanTrailer(lines, i+1+decoderLines, rec) - 1
	}

	if !res.Empty() {
		res.Strategy = types.StrategyStrict
		RepairCounts(res.Records)
	}
	return res
}

// scanTrailer captures Trade and Duebill lines starting at from and returns
// the index of the first line it did not consume.
func scanTrailer(lines []string, from int, rec types.Record) int {
	i := from
	for ; i < len(lines); i++ {
		l := lines[i]
		if totalsMarker.MatchString(l) || headerShape.MatchString(l) {
			break
		}
		switch {
		case tradeLine.MatchString(l):
			rec.Set(FieldTradeInfo, l)
		case duebillLine.MatchString(l):
			rec.Set(FieldDuebill, l)
		default:
			return i
		}
	}
	return i
}

// RepairCounts replaces every non-numeric Count with the record's 1-based
// position. Numeric counts are kept as they are.
func RepairCounts(records []types.Record) {
	for i, rec := range records {
		if !digitsOnly.MatchString(rec.Get(FieldCount)) {
			rec.Set(FieldCount, strconv.Itoa(i+1))
		}
	}
}

// Parse runs the strict walk and falls back to loose extraction when it
// finds nothing.
func (p *Parser) Parse(doc types.Document) types.Result {
	if res := p.ParseStrict(doc.Lines); !res.Empty() {
		return res
	}
	return p.ParseLoose(doc.FullText())
}
