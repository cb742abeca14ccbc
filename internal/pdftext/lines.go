package pdftext

import (
	"math"
	"sort"
	"strings"
)

// Fragment is one piece of positioned text on a page. Y grows upwards, as in
// PDF user space.
type Fragment struct {
	X, Y float64
	W    float64
	S    string
}

const (
	// rowTolerance is the vertical bucket size; fragments whose rounded Y
	// falls in the same bucket share a line.
	rowTolerance = 2.0

	// A horizontal gap wider than wideGap is padded with one space per
	// gapUnit, up to maxPad spaces.
	wideGap = 10.0
	gapUnit = 5.0
	maxPad  = 5

	// wordGap separates glyph runs that the PDF positions apart without an
	// explicit space character.
	wordGap = 1.5
)

// GroupLines reconstructs print lines from fragments. Lines are returned top
// to bottom, trimmed, with empty lines dropped.
func GroupLines(frags []Fragment) []string {
	rows := make(map[float64][]Fragment)
	for _, f := range frags {
		y := math.Floor(f.Y/rowTolerance+0.5) * rowTolerance
		rows[y] = append(rows[y], f)
	}

	keys := make([]float64, 0, len(rows))
	for y := range rows {
		keys = append(keys, y)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(keys)))

	lines := make([]string, 0, len(keys))
	for _, y := range keys {
		row := rows[y]
		sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })
		if l := combine(row); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// combine concatenates the fragments of one row, ordered by X.
func combine(row []Fragment) string {
	var b strings.Builder
	lastX := 0.0
	for _, f := range row {
		gap := f.X - lastX
		if b.Len() > 0 {
			switch {
			case gap > wideGap:
				b.WriteString(strings.Repeat(" ", min(int(gap/gapUnit), maxPad)))
			case gap > wordGap && !endsWithSpace(&b) && !strings.HasPrefix(f.S, " "):
				b.WriteByte(' ')
			}
		}
		b.WriteString(f.S)
		lastX = f.X + f.W
	}
	return strings.TrimSpace(b.String())
}

func endsWithSpace(b *strings.Builder) bool {
	s := b.String()
	return s != "" && s[len(s)-1] == ' '
}
