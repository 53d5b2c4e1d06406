// Package cmd wires the command-line interface.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/insightdelivered/statement-tables/internal/batch"
	"github.com/insightdelivered/statement-tables/internal/config"
	"github.com/insightdelivered/statement-tables/internal/document"
	"github.com/insightdelivered/statement-tables/internal/extractor"
	"github.com/insightdelivered/statement-tables/internal/logger"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string
	verbose   bool

	cfg *config.Config
	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "statement-tables",
	Short: "Rebuild transaction tables from bank statement PDFs",
	Long: `statement-tables extracts the transaction table from every statement PDF
in a folder, reassembles rows that the PDF layout split across lines,
merges pages, and writes one spreadsheet and one CSV per statement.

Examples:
  statement-tables convert                          # every PDF in statement_folder
  statement-tables convert --input in --output out  # custom folders
  statement-tables convert jan.pdf feb.pdf          # explicit files
  statement-tables convert --analyze                # convert, then build the report
  statement-tables analyze                          # report over existing CSVs
  statement-tables serve --addr :8080               # HTTP upload API`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the CLI. Per-document failures never reach here; only
// configuration problems and command-level errors exit nonzero.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to the YAML config file (default statements.yaml if present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: console or json")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Shorthand for --log-level=debug")
}

// loadConfig layers defaults, the config file, .env, STATEMENTS_* variables
// and finally explicitly set flags.
func loadConfig(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	c, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if err := c.ApplyEnv(os.LookupEnv); err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		c.LogLevel = logLevel
	}
	if verbose {
		c.LogLevel = "debug"
	}
	if flags.Changed("log-format") {
		c.LogFormat = logFormat
	}
	if err := applyCommandFlags(cmd, c); err != nil {
		return err
	}

	if err := c.Validate(); err != nil {
		return &batch.ConfigurationError{Msg: "invalid configuration", Err: err}
	}

	cfg = c
	log = logger.New(c.LogLevel, c.LogFormat)
	return nil
}

// applyCommandFlags copies subcommand flags that were set on the command
// line into the config.
func applyCommandFlags(cmd *cobra.Command, c *config.Config) error {
	flags := cmd.Flags()

	strs := map[string]*string{
		"input":     &c.InputDir,
		"output":    &c.OutputDir,
		"ext":       &c.Extension,
		"pdftotext": &c.PdftotextPath,
		"report":    &c.ReportFile,
		"addr":      &c.ListenAddr,
	}
	for name, dst := range strs {
		if !flags.Changed(name) {
			continue
		}
		v, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	ints := map[string]*int{
		"concurrency": &c.Concurrency,
		"top":         &c.TopMerchants,
	}
	for name, dst := range ints {
		if !flags.Changed(name) {
			continue
		}
		v, err := flags.GetInt(name)
		if err != nil {
			return err
		}
		*dst = v
	}
	return nil
}

func newDriver(c *config.Config) *document.Driver {
	return document.NewDriver(extractor.DefaultChain(c.PdftotextPath), c.DateLayouts)
}

func commandContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return logger.WithContext(ctx, log)
}
