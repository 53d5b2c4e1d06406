package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/insightdelivered/statement-tables/internal/analysis"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Summarize converted CSVs into a multi-sheet XLSX report",
	Long: `analyze loads every CSV in the output folder, categorizes transactions by
keyword, and writes monthly, category and top-merchant summaries to the
analysis workbook. The statement period is read from the _YYYYMM suffix of
each CSV file name.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := analysis.Run(commandContext(cmd), analysisOptions())
		if err != nil {
			return err
		}
		report.PrintSummary(os.Stdout)
		fmt.Printf("Output saved to: %s\n", cfg.ReportPath())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().String("output", "", "Folder holding the converted CSVs")
	analyzeCmd.Flags().String("report", "", "Report file name; relative names go in the output folder")
	analyzeCmd.Flags().Int("top", 0, "Merchants listed per ranking")
}
