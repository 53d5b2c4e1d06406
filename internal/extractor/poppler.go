package extractor

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/insightdelivered/statement-tables/internal/models"
)

// PopplerBackend shells out to pdftotext (poppler-utils) in layout mode and
// splits each line into cells on runs of two or more spaces.
type PopplerBackend struct {
	// Binary is the pdftotext executable; empty means "pdftotext" on PATH.
	Binary string
}

func (b *PopplerBackend) Name() string {
	return "pdftotext"
}

func (b *PopplerBackend) binary() string {
	if b.Binary == "" {
		return "pdftotext"
	}
	return b.Binary
}

// Extract runs pdftotext once for the whole document; pages come back
// separated by form feeds.
func (b *PopplerBackend) Extract(ctx context.Context, path string) ([]models.Grid, error) {
	bin, err := exec.LookPath(b.binary())
	if err != nil {
		return nil, fmt.Errorf("%w: pdftotext not available: %v", ErrBackendUnavailable, err)
	}

	out, err := exec.CommandContext(ctx, bin, "-layout", path, "-").Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext failed: %w", err)
	}

	return layoutGrids(string(out)), nil
}

// cellPattern matches text runs whose words are separated by single spaces.
var cellPattern = regexp.MustCompile(`\S+(?: \S+)*`)

// layoutGrids converts pdftotext -layout output into one grid per page.
func layoutGrids(text string) []models.Grid {
	var grids []models.Grid
	for _, page := range strings.Split(text, "\f") {
		var lines [][]span
		for _, line := range strings.Split(page, "\n") {
			line = strings.ReplaceAll(line, "\t", "    ")
			if l := layoutSpans(line); len(l) > 0 {
				lines = append(lines, l)
			}
		}
		if g := buildGrid(lines); usableGrid(g) {
			grids = append(grids, g)
		}
	}
	return grids
}

// layoutSpans splits a fixed-width line into cells measured in rune columns.
func layoutSpans(line string) []span {
	var spans []span
	for _, loc := range cellPattern.FindAllStringIndex(line, -1) {
		start := utf8.RuneCountInString(line[:loc[0]])
		text := line[loc[0]:loc[1]]
		spans = append(spans, span{
			start: float64(start),
			end:   float64(start + utf8.RuneCountInString(text)),
			text:  text,
		})
	}
	return spans
}
