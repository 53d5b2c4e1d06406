package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-tables/internal/models"
)

// CSVWriter writes transactions to CSV format.
type CSVWriter struct {
	// IncludeHeader adds "#"-prefixed metadata rows (source, backend) before
	// the column header. Readers must treat '#' as a comment character.
	IncludeHeader bool
}

// Ext is the file extension the writer produces.
func (w *CSVWriter) Ext() string { return ".csv" }

// WriteToFile writes transactions to a CSV file at the given path.
func (w *CSVWriter) WriteToFile(path string, stmt *models.Statement) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}

	if err := w.Write(f, stmt); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Write writes transactions in CSV format to the given writer.
func (w *CSVWriter) Write(out io.Writer, stmt *models.Statement) error {
	writer := csv.NewWriter(out)

	if w.IncludeHeader {
		if stmt.Source != "" {
			writer.Write([]string{"# Source", stmt.Source})
		}
		if stmt.Backend != "" {
			writer.Write([]string{"# Backend", stmt.Backend})
		}
	}

	if err := writer.Write(models.Fields); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, txn := range stmt.Transactions {
		row := []string{
			txn.Date,
			txn.Description,
			FormatAmount(txn.Withdrawal),
			FormatAmount(txn.Deposit),
			FormatAmount(txn.Balance),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// FormatAmount renders an amount with exactly two decimals.
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
