package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/insightdelivered/statement-tables/internal/models"
)

var (
	ErrNoHeaderFound     = errors.New("no transaction header found")
	ErrIncompleteColumns = errors.New("missing required columns")
)

// nonTransactionPattern matches Date cells of carry-forward lines that sit
// inside the transaction table but are not transactions.
var nonTransactionPattern = regexp.MustCompile(`(?i)important notice|closing balance`)

// Column ties a grid column to the canonical field its header label maps to.
type Column struct {
	Index int
	Label string
	Field string
}

// Header describes the located header row of one table.
type Header struct {
	Index   int
	Columns []Column
}

// Field returns the grid column mapped to the given canonical field, or -1.
func (h Header) Field(name string) int {
	for _, c := range h.Columns {
		if c.Field == name {
			return c.Index
		}
	}
	return -1
}

// isHeaderRow checks for a "Date" label plus at least one amount label.
// Matching is case-sensitive so that "Transaction date:" annotations and
// lower-case description text never qualify.
func isHeaderRow(row []string) bool {
	parts := make([]string, len(row))
	for i, cell := range row {
		parts[i] = strings.TrimSpace(cell)
	}
	joined := strings.Join(parts, " ")
	if !strings.Contains(joined, "Date") {
		return false
	}
	return strings.Contains(joined, "Withdrawal") ||
		strings.Contains(joined, "Deposit") ||
		strings.Contains(joined, "Balance")
}

// canonicalField maps a source header label onto a canonical field name.
func canonicalField(label string) string {
	l := strings.ToLower(strings.TrimSpace(label))
	switch {
	case l == "":
		return ""
	case strings.Contains(l, "date"):
		return models.FieldDate
	case strings.Contains(l, "description") || strings.Contains(l, "desc"):
		return models.FieldDescription
	case strings.Contains(l, "withdraw"):
		return models.FieldWithdrawal
	case strings.Contains(l, "deposit"):
		return models.FieldDeposit
	case strings.Contains(l, "balance"):
		return models.FieldBalance
	}
	return ""
}

// LocateHeader finds the first row that looks like the transaction header and
// maps its labels to canonical fields. Rows are scanned from index 0, so a
// backend that emits the header first is resolved on the first check.
func LocateHeader(grid models.Grid) (Header, error) {
	idx := -1
	for i, row := range grid {
		if isHeaderRow(row) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Header{}, ErrNoHeaderFound
	}

	h := Header{Index: idx}
	claimed := make(map[string]bool)
	for col, label := range grid[idx] {
		field := canonicalField(label)
		if field == "" || claimed[field] {
			continue
		}
		claimed[field] = true
		h.Columns = append(h.Columns, Column{Index: col, Label: strings.TrimSpace(label), Field: field})
	}

	var missing []string
	for _, f := range models.Fields {
		if !claimed[f] {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return h, fmt.Errorf("%w: %s", ErrIncompleteColumns, strings.Join(missing, ", "))
	}
	return h, nil
}

// BodyRows converts the rows after the header into canonical RawRows.
// Repeated header rows and carry-forward lines ("Important notice",
// "Closing balance") are dropped; every value is trimmed.
func BodyRows(grid models.Grid, h Header) []models.RawRow {
	var rows []models.RawRow
	for i := h.Index + 1; i < len(grid); i++ {
		src := grid[i]
		row := make(models.RawRow, len(h.Columns))
		for _, c := range h.Columns {
			if c.Index < len(src) {
				row[c.Field] = strings.TrimSpace(src[c.Index])
			} else {
				row[c.Field] = ""
			}
		}

		date := row[models.FieldDate]
		if date == "Date" || nonTransactionPattern.MatchString(date) {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}
