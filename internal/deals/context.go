package deals

import (
	"regexp"
	"strings"
)

// Context is the document-wide metadata copied into every record.
type Context struct {
	Status   string
	Location string
}

var (
	statusPattern = regexp.MustCompile(`(?i)\b(Processed|Pending|Completed)\b`)
	totalsMarker  = regexp.MustCompile(`(?i)Totals\s+and\s+Averages`)
	summaryLine   = regexp.MustCompile(`Totals|Averages|Count|Total|Average|Grand|\d`)
	threeLetters  = regexp.MustCompile(`[A-Za-z]{3,}`)
	loosePlace    = regexp.MustCompile(`(?i)LOCATION\s*#?\s*:?\s*(\d+)`)
)

// ExtractContext scans the document for its status and location labels.
//
// The status is the first status keyword within the first opts.StatusWindow
// lines. The location is the first plain, mostly alphabetic line within
// opts.LocationLookahead lines after the "Totals and Averages" marker.
// Missing signals leave the field empty. Non-positive windows take their
// defaults.
func ExtractContext(lines []string, opts Options) Context {
	opts = opts.withDefaults()
	var ctx Context

	window := min(opts.StatusWindow, len(lines))
	head := strings.Join(lines[:window], " ")
	if m := statusPattern.FindStringSubmatch(head); m != nil {
		ctx.Status = capitalize(m[1])
	}

	totalsIdx := -1
	for i, l := range lines {
		if totalsMarker.MatchString(l) {
			totalsIdx = i
			break
		}
	}
	if totalsIdx == -1 {
		return ctx
	}

	last := min(len(lines)-1, totalsIdx+opts.LocationLookahead)
	for i := totalsIdx + 1; i <= last; i++ {
		l := strings.TrimSpace(lines[i])
		if l == "" || summaryLine.MatchString(l) {
			continue
		}
		if threeLetters.MatchString(l) {
			ctx.Location = l
			break
		}
	}
	return ctx
}

// looseContext is the context used by the fallback extractor: it assumes a
// processed report and only recognizes numbered locations.
func looseContext(text string) Context {
	ctx := Context{Status: "Processed", Location: "Unknown"}
	if m := loosePlace.FindStringSubmatch(text); m != nil {
		ctx.Location = "Location " + m[1]
	}
	return ctx
}

func capitalize(s string) string {
	if s == "" {
		return ""
	}
	lower := strings.ToLower(s)
	return strings.ToUpper(lower[:1]) + lower[1:]
}
