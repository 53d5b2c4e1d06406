package extractor

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/insightdelivered/statement-tables/internal/models"
)

// LibraryBackend reads positioned text with the ledongthuc/pdf library and
// rebuilds one grid per page from the text coordinates.
type LibraryBackend struct {
	// ColumnGap is the horizontal gap, in multiples of the font size, that
	// separates two cells on the same row. Zero means 1.0.
	ColumnGap float64
}

func (b *LibraryBackend) Name() string {
	return "pdf"
}

// Extract opens the PDF and returns a grid for every page that looks like a
// table. Pages whose text decodes to garbage (custom font encodings) are
// rejected so the next backend gets a chance.
func (b *LibraryBackend) Extract(ctx context.Context, path string) (grids []models.Grid, err error) {
	defer func() {
		if r := recover(); r != nil {
			grids, err = nil, fmt.Errorf("PDF library crashed: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	numPages := r.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}

	var pageTexts []string
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		lines := b.pageLines(page)
		if len(lines) == 0 {
			continue
		}
		pageTexts = append(pageTexts, linesText(lines))

		if g := buildGrid(lines); usableGrid(g) {
			grids = append(grids, g)
		}
	}

	if !isReadableText(pageTexts) {
		return nil, nil
	}
	return grids, nil
}

// pageLines returns the page's rows as spans. GetTextByRow gives the best
// grouping; Content() with Y bucketing is the fallback when it fails.
func (b *LibraryBackend) pageLines(page pdf.Page) [][]span {
	rows, err := page.GetTextByRow()
	if err == nil && len(rows) > 0 {
		var lines [][]span
		for _, row := range rows {
			if l := b.cells(row.Content); len(l) > 0 {
				lines = append(lines, l)
			}
		}
		return lines
	}

	content := page.Content()
	if len(content.Text) == 0 {
		return nil
	}

	// Group text by Y coordinate (row), rounding to absorb baseline jitter
	rowMap := make(map[int][]pdf.Text)
	for _, t := range content.Text {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		yKey := int(math.Round(t.Y))
		rowMap[yKey] = append(rowMap[yKey], t)
	}

	// PDF Y grows bottom-to-top
	yKeys := make([]int, 0, len(rowMap))
	for y := range rowMap {
		yKeys = append(yKeys, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(yKeys)))

	var lines [][]span
	for _, y := range yKeys {
		if l := b.cells(rowMap[y]); len(l) > 0 {
			lines = append(lines, l)
		}
	}
	return lines
}

// cells merges the text pieces of one row into cells, splitting wherever the
// gap to the previous piece exceeds the column gap.
func (b *LibraryBackend) cells(texts []pdf.Text) []span {
	items := make([]pdf.Text, 0, len(texts))
	for _, t := range texts {
		if t.S != "" {
			items = append(items, t)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].X < items[j].X
	})

	gapFactor := b.ColumnGap
	if gapFactor <= 0 {
		gapFactor = 1.0
	}

	var out []span
	var cur *span
	var sb strings.Builder
	flush := func() {
		if cur == nil {
			return
		}
		cur.text = strings.TrimSpace(sb.String())
		if cur.text != "" {
			out = append(out, *cur)
		}
		cur = nil
		sb.Reset()
	}

	for _, t := range items {
		size := t.FontSize
		if size <= 0 {
			size = 10
		}
		width := t.W
		if width <= 0 {
			// Width is missing for some fonts; estimate half an em per rune.
			width = size * 0.5 * float64(utf8.RuneCountInString(t.S))
		}

		if cur != nil {
			gap := t.X - cur.end
			if gap > size*gapFactor {
				flush()
			} else if gap > size*0.15 && !strings.HasSuffix(sb.String(), " ") {
				sb.WriteByte(' ')
			}
		}
		if cur == nil {
			cur = &span{start: t.X, end: t.X}
		}
		sb.WriteString(t.S)
		if end := t.X + width; end > cur.end {
			cur.end = end
		}
	}
	flush()
	return out
}

func linesText(lines [][]span) string {
	var sb strings.Builder
	for _, l := range lines {
		for i, s := range l {
			if i > 0 {
				sb.WriteByte('\t')
			}
			sb.WriteString(s.text)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
