package extractor

import (
	"math"
	"strings"

	"github.com/insightdelivered/statement-tables/internal/models"
)

// span is a run of text on one line with its horizontal extent. Units are
// PDF points for the library backend and character columns for pdftotext.
type span struct {
	start, end float64
	text       string
}

func (s span) center() float64 {
	return (s.start + s.end) / 2
}

func (s span) overlap(o span) float64 {
	return math.Min(s.end, o.end) - math.Max(s.start, o.start)
}

// buildGrid aligns ragged lines of spans onto a common set of columns.
// Column anchors come from the line with the most spans; every span of every
// other line goes to the anchor it overlaps most, or failing that the one
// with the nearest center. Spans landing in the same column are joined.
func buildGrid(lines [][]span) models.Grid {
	var anchors []span
	for _, l := range lines {
		if len(l) > len(anchors) {
			anchors = l
		}
	}
	if len(anchors) == 0 {
		return nil
	}

	var grid models.Grid
	for _, l := range lines {
		if len(l) == 0 {
			continue
		}
		row := make([]string, len(anchors))
		for _, s := range l {
			col := findColumnIndex(s, anchors)
			row[col] = strings.TrimSpace(joinCell(row[col], s.text))
		}
		grid = append(grid, row)
	}
	return grid
}

func findColumnIndex(s span, anchors []span) int {
	best, bestOverlap := -1, 0.0
	for i, a := range anchors {
		if ov := s.overlap(a); ov > bestOverlap {
			best, bestOverlap = i, ov
		}
	}
	if best >= 0 {
		return best
	}

	best, bestDist := 0, math.Inf(1)
	for i, a := range anchors {
		if d := math.Abs(s.center() - a.center()); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func joinCell(cell, text string) string {
	if cell == "" {
		return text
	}
	return cell + " " + text
}

// usableGrid reports whether a grid can possibly hold a header and a row.
func usableGrid(g models.Grid) bool {
	return len(g) >= 2 && len(g[0]) >= 2
}
