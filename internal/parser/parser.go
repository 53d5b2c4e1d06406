// Package parser rebuilds transaction records from extracted statement
// tables: header location, row reassembly and cross-table merging.
package parser

import (
	"github.com/insightdelivered/statement-tables/internal/models"
)

// TableResult is the outcome of parsing one extracted table.
type TableResult struct {
	Index        int
	Header       Header
	Transactions []models.Transaction
	DebugLines   []models.DebugLine
}

// ParseTable locates the header of one grid and reassembles the rows below
// it. It returns ErrNoHeaderFound or ErrIncompleteColumns (wrapped) when the
// grid is not a transaction table; callers skip such tables.
func ParseTable(index int, grid models.Grid) (*TableResult, error) {
	h, err := LocateHeader(grid)
	if err != nil {
		return nil, err
	}

	txns, trace := Reassemble(index, BodyRows(grid, h))
	return &TableResult{
		Index:        index,
		Header:       h,
		Transactions: txns,
		DebugLines:   trace,
	}, nil
}
