// Package extractor turns statement PDFs into ragged text grids, one per
// page, using an ordered list of interchangeable backends.
package extractor

import (
	"context"
	"errors"
	"fmt"

	"github.com/insightdelivered/statement-tables/internal/logger"
	"github.com/insightdelivered/statement-tables/internal/models"
)

var (
	// ErrBackendUnavailable means a backend cannot run at all on this host
	// (missing binary), as opposed to running and finding nothing.
	ErrBackendUnavailable = errors.New("extraction backend unavailable")
	// ErrNoTables means every available backend ran but produced no table.
	ErrNoTables = errors.New("no tables found")
)

// Backend extracts table grids from a document.
type Backend interface {
	// Name identifies the backend in logs and results.
	Name() string
	// Extract returns the grids found in the document at path.
	Extract(ctx context.Context, path string) ([]models.Grid, error)
}

// Chain tries backends in order and keeps the first one that yields tables.
type Chain []Backend

// DefaultChain returns the PDF library backend followed by pdftotext.
func DefaultChain(pdftotextPath string) Chain {
	return Chain{
		&LibraryBackend{},
		&PopplerBackend{Binary: pdftotextPath},
	}
}

// Extract returns the name of the backend that produced data and its grids.
func (c Chain) Extract(ctx context.Context, path string) (string, []models.Grid, error) {
	log := logger.FromContext(ctx)

	var unavailable, failed []error
	for _, b := range c {
		if err := ctx.Err(); err != nil {
			return "", nil, err
		}

		grids, err := b.Extract(ctx, path)
		if errors.Is(err, ErrBackendUnavailable) {
			log.Debug().Str("backend", b.Name()).Err(err).Msg("backend unavailable")
			unavailable = append(unavailable, err)
			continue
		}
		if err != nil {
			log.Warn().Str("backend", b.Name()).Err(err).Msg("backend failed")
			failed = append(failed, fmt.Errorf("%s: %w", b.Name(), err))
			continue
		}
		if len(grids) == 0 {
			log.Debug().Str("backend", b.Name()).Msg("backend found no tables")
			continue
		}

		log.Debug().Str("backend", b.Name()).Int("tables", len(grids)).Msg("tables extracted")
		return b.Name(), grids, nil
	}

	if len(unavailable) == len(c) {
		if len(unavailable) == 0 {
			return "", nil, ErrBackendUnavailable
		}
		return "", nil, fmt.Errorf("%w: %w", ErrBackendUnavailable, errors.Join(unavailable...))
	}
	if len(failed) > 0 {
		return "", nil, fmt.Errorf("%w: %w", ErrNoTables, errors.Join(failed...))
	}
	return "", nil, ErrNoTables
}
