package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/insightdelivered/statement-tables/internal/analysis"
	"github.com/insightdelivered/statement-tables/internal/batch"
	"github.com/insightdelivered/statement-tables/internal/writer"
)

var (
	analyzeAfter  bool
	includeHeader bool
	noXLSX        bool
	noCSV         bool
)

var convertCmd = &cobra.Command{
	Use:   "convert [file.pdf ...]",
	Short: "Convert statement PDFs into XLSX and CSV transaction tables",
	Long: `convert processes every statement in the input folder (or the files given
as arguments). A document that fails is reported and skipped; the run only
fails when the input folder is missing or holds no statements.`,
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().String("input", "", "Folder holding the statement PDFs")
	convertCmd.Flags().String("output", "", "Folder for the converted files")
	convertCmd.Flags().String("ext", "", "Statement file extension")
	convertCmd.Flags().Int("concurrency", 0, "Documents processed in parallel")
	convertCmd.Flags().String("pdftotext", "", "Path to the pdftotext binary")
	convertCmd.Flags().String("report", "", "Analysis workbook file name (with --analyze)")
	convertCmd.Flags().Int("top", 0, "Merchants listed per ranking (with --analyze)")
	convertCmd.Flags().BoolVar(&analyzeAfter, "analyze", false, "Build the analysis report after converting")
	convertCmd.Flags().BoolVar(&includeHeader, "header", false, "Prefix CSVs with # metadata rows")
	convertCmd.Flags().BoolVar(&noXLSX, "no-xlsx", false, "Skip the XLSX output")
	convertCmd.Flags().BoolVar(&noCSV, "no-csv", false, "Skip the CSV output")
}

func runConvert(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	var writers []batch.Writer
	if cfg.WriteXLSX && !noXLSX {
		writers = append(writers, &writer.XLSXWriter{})
	}
	if cfg.WriteCSV && !noCSV {
		writers = append(writers, &writer.CSVWriter{IncludeHeader: includeHeader})
	}

	o := &batch.Orchestrator{
		Processor:   newDriver(cfg),
		Writers:     writers,
		OutputDir:   cfg.OutputDir,
		Extension:   cfg.Extension,
		Concurrency: cfg.Concurrency,
	}

	var (
		summary *batch.Summary
		err     error
	)
	if len(args) > 0 {
		summary, err = o.RunFiles(ctx, args)
	} else {
		summary, err = o.Run(ctx, cfg.InputDir)
	}
	if err != nil {
		return err
	}

	fmt.Println()
	summary.Print(os.Stdout)

	if analyzeAfter {
		if cfg.WriteCSV && !noCSV {
			runAnalysis(cmd)
		} else {
			log.Warn().Msg("analysis needs CSV output; skipped")
		}
	}
	return nil
}

// runAnalysis is best effort after a conversion run: a failure is logged,
// not returned.
func runAnalysis(cmd *cobra.Command) {
	report, err := analysis.Run(commandContext(cmd), analysisOptions())
	if err != nil {
		log.Error().Err(err).Msg("analysis failed")
		return
	}
	fmt.Println()
	report.PrintSummary(os.Stdout)
	fmt.Printf("Output saved to: %s\n", cfg.ReportPath())
}

func analysisOptions() analysis.Options {
	return analysis.Options{
		Dir:          cfg.OutputDir,
		ReportPath:   cfg.ReportPath(),
		TopMerchants: cfg.TopMerchants,
		Categories:   cfg.Categories,
		DateLayouts:  cfg.DateLayouts,
	}
}
