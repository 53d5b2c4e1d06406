// Package document turns one statement PDF into its final, ordered list of
// transactions: extraction, per-table parsing and cross-table merging.
package document

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/insightdelivered/statement-tables/internal/extractor"
	"github.com/insightdelivered/statement-tables/internal/logger"
	"github.com/insightdelivered/statement-tables/internal/models"
	"github.com/insightdelivered/statement-tables/internal/parser"
)

var (
	// ErrNoTablesFound means no backend produced any table content.
	ErrNoTablesFound = errors.New("no tables found")
	// ErrNoValidTransactions means every table was skipped or yielded no
	// records.
	ErrNoValidTransactions = errors.New("no valid transactions")
)

// Extractor is the extraction collaborator; extractor.Chain satisfies it.
type Extractor interface {
	Extract(ctx context.Context, path string) (string, []models.Grid, error)
}

// Driver processes single documents. It holds no per-document state and is
// safe for concurrent use.
type Driver struct {
	Extractor   Extractor
	DateLayouts []string
}

// NewDriver returns a Driver over the given extractor.
func NewDriver(ex Extractor, dateLayouts []string) *Driver {
	return &Driver{Extractor: ex, DateLayouts: dateLayouts}
}

// Process extracts, parses and merges one document. When no backend could
// run at all the extractor.ErrBackendUnavailable error is returned as is,
// never as ErrNoTablesFound. On ErrNoValidTransactions
// the partially filled Statement is still returned so callers can report the
// table counts.
func (d *Driver) Process(ctx context.Context, path string) (*models.Statement, error) {
	log := logger.FromContext(ctx).With().Str("document", path).Logger()

	backend, grids, err := d.Extractor.Extract(ctx, path)
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, err
		case errors.Is(err, extractor.ErrBackendUnavailable):
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrNoTablesFound, err)
	}
	if len(grids) == 0 {
		return nil, ErrNoTablesFound
	}

	stmt := &models.Statement{
		Source:      path,
		Backend:     backend,
		TablesFound: len(grids),
	}
	log.Debug().Str("backend", backend).Int("tables", len(grids)).Msg("tables extracted")

	var tables [][]models.Transaction
	for i, grid := range grids {
		res, err := parser.ParseTable(i, grid)
		if err != nil {
			stmt.TablesSkipped++
			log.Warn().Int("table", i).Err(err).Msg("table skipped")
			continue
		}
		stmt.DebugLines = append(stmt.DebugLines, res.DebugLines...)
		logTrace(log, res.DebugLines)
		tables = append(tables, res.Transactions)
	}

	stmt.Transactions = parser.Merge(tables, d.DateLayouts)
	if len(stmt.Transactions) == 0 {
		return stmt, ErrNoValidTransactions
	}

	log.Info().
		Str("backend", backend).
		Int("tables", stmt.TablesFound).
		Int("skipped", stmt.TablesSkipped).
		Int("transactions", len(stmt.Transactions)).
		Msg("document parsed")
	return stmt, nil
}

func logTrace(log zerolog.Logger, lines []models.DebugLine) {
	if log.GetLevel() > zerolog.DebugLevel {
		return
	}
	for _, dl := range lines {
		log.Debug().
			Int("table", dl.Table).
			Int("row", dl.RowNum).
			Str("result", dl.Result).
			Str("method", dl.Method).
			Msg(dl.Text)
	}
}
