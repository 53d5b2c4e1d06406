// Package batch runs the document driver over every statement in a folder,
// isolating per-document failures and writing the output artifacts.
package batch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/insightdelivered/statement-tables/internal/logger"
	"github.com/insightdelivered/statement-tables/internal/models"
)

// Processor turns one document into a statement; document.Driver
// satisfies it.
type Processor interface {
	Process(ctx context.Context, path string) (*models.Statement, error)
}

// Writer persists one statement; the writer package's CSV and XLSX writers
// satisfy it.
type Writer interface {
	Ext() string
	WriteToFile(path string, stmt *models.Statement) error
}

// Failure records one document that could not be processed.
type Failure struct {
	Document string
	Err      error
}

// Summary is the outcome of one run.
type Summary struct {
	RunID     string
	Found     int
	Processed int
	Failed    int
	Failures  []Failure
	Outputs   []string
	Elapsed   time.Duration
}

// Print writes the human-readable run summary.
func (s *Summary) Print(w io.Writer) {
	fmt.Fprintln(w, "PROCESSING SUMMARY")
	fmt.Fprintf(w, "Run ID: %s\n", s.RunID)
	fmt.Fprintf(w, "Total documents found: %d\n", s.Found)
	fmt.Fprintf(w, "Successfully processed: %d\n", s.Processed)
	fmt.Fprintf(w, "Failed: %d\n", s.Failed)
	for _, f := range s.Failures {
		fmt.Fprintf(w, "  - %s: %v\n", filepath.Base(f.Document), f.Err)
	}
}

// Orchestrator processes all documents of an input folder.
type Orchestrator struct {
	Processor   Processor
	Writers     []Writer
	OutputDir   string
	Extension   string
	Concurrency int
}

type result struct {
	outputs []string
	err     error
}

// Run discovers documents in inputDir and processes each one. The only error
// it returns is a *ConfigurationError; per-document failures are counted in
// the summary.
func (o *Orchestrator) Run(ctx context.Context, inputDir string) (*Summary, error) {
	ext := o.Extension
	if ext == "" {
		ext = ".pdf"
	}
	files, err := Discover(inputDir, ext)
	if err != nil {
		return nil, err
	}
	return o.RunFiles(ctx, files)
}

// RunFiles processes an explicit list of documents.
func (o *Orchestrator) RunFiles(ctx context.Context, files []string) (*Summary, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := logger.FromContext(ctx).With().Str("run_id", runID).Logger()
	ctx = logger.WithContext(ctx, log)

	if len(files) == 0 {
		return nil, &ConfigurationError{Msg: "no input documents"}
	}
	for _, f := range files {
		if info, err := os.Stat(f); err != nil || info.IsDir() {
			return nil, &ConfigurationError{Msg: fmt.Sprintf("input file %q not found", f), Err: err}
		}
	}
	if err := os.MkdirAll(o.OutputDir, 0o755); err != nil {
		return nil, &ConfigurationError{Msg: fmt.Sprintf("cannot create output folder %q", o.OutputDir), Err: err}
	}

	log.Info().Int("documents", len(files)).Msg("batch started")

	limit := o.Concurrency
	if limit < 1 {
		limit = 1
	}
	results := make([]result, len(files))

	var g errgroup.Group
	g.SetLimit(limit)
	for i, path := range files {
		g.Go(func() error {
			outputs, err := o.processOne(ctx, path)
			results[i] = result{outputs: outputs, err: err}
			return nil
		})
	}
	g.Wait()

	summary := &Summary{RunID: runID, Found: len(files)}
	for i, r := range results {
		if r.err != nil {
			summary.Failed++
			summary.Failures = append(summary.Failures, Failure{Document: files[i], Err: r.err})
			continue
		}
		summary.Processed++
		summary.Outputs = append(summary.Outputs, r.outputs...)
	}
	summary.Elapsed = time.Since(start)

	log.Info().
		Int("found", summary.Found).
		Int("processed", summary.Processed).
		Int("failed", summary.Failed).
		Dur("elapsed", summary.Elapsed).
		Msg("batch finished")
	return summary, nil
}

// processOne is the per-document fault boundary: errors and panics are
// logged with the document's identity and returned, never propagated.
func (o *Orchestrator) processOne(ctx context.Context, path string) (outputs []string, err error) {
	log := logger.FromContext(ctx).With().Str("document", path).Logger()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
			log.Error().Str("stack", string(debug.Stack())).Err(err).Msg("document processing panicked")
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stmt, err := o.Processor.Process(logger.WithContext(ctx, log), path)
	if err != nil {
		log.Error().Err(err).Msg("document failed")
		return nil, err
	}

	base := filepath.Join(o.OutputDir, OutputName(path))
	for _, w := range o.Writers {
		out := base + w.Ext()
		if err := w.WriteToFile(out, stmt); err != nil {
			log.Error().Err(err).Str("output", out).Msg("write failed")
			return nil, fmt.Errorf("writing %s: %w", out, err)
		}
		outputs = append(outputs, out)
	}

	log.Info().Int("transactions", len(stmt.Transactions)).Strs("outputs", outputs).Msg("document processed")
	return outputs, nil
}
