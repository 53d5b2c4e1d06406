package writer

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/insightdelivered/statement-tables/internal/models"
)

// TransactionsSheet is the sheet name used for the transaction table.
const TransactionsSheet = "Transactions"

// XLSXWriter writes transactions to a single-sheet Excel workbook.
type XLSXWriter struct{}

// Ext is the file extension the writer produces.
func (w *XLSXWriter) Ext() string { return ".xlsx" }

// WriteToFile writes the workbook to path.
func (w *XLSXWriter) WriteToFile(path string, stmt *models.Statement) error {
	f, err := w.build(stmt)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %q: %w", path, err)
	}
	return nil
}

// Write streams the workbook to out.
func (w *XLSXWriter) Write(out io.Writer, stmt *models.Statement) error {
	f, err := w.build(stmt)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (w *XLSXWriter) build(stmt *models.Statement) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", TransactionsSheet); err != nil {
		f.Close()
		return nil, err
	}

	rows := make([][]interface{}, 0, len(stmt.Transactions))
	for _, txn := range stmt.Transactions {
		rows = append(rows, []interface{}{
			txn.Date,
			txn.Description,
			txn.Withdrawal.Round(2).InexactFloat64(),
			txn.Deposit.Round(2).InexactFloat64(),
			txn.Balance.Round(2).InexactFloat64(),
		})
	}

	if err := WriteTable(f, TransactionsSheet, models.Fields, rows, []int{3, 4, 5}); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// WriteTable fills sheet with a bold header row followed by rows. Columns
// listed in moneyCols (1-based) get a two-decimal number format. The header
// row is frozen.
func WriteTable(f *excelize.File, sheet string, header []string, rows [][]interface{}, moneyCols []int) error {
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return err
	}

	hdr := make([]interface{}, len(header))
	for i, h := range header {
		hdr[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &hdr); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if len(rows) > 0 {
		for _, col := range moneyCols {
			top, _ := excelize.CoordinatesToCellName(col, 2)
			bottom, _ := excelize.CoordinatesToCellName(col, len(rows)+1)
			if err := f.SetCellStyle(sheet, top, bottom, moneyStyle); err != nil {
				return err
			}
		}
	}

	for i, h := range header {
		name, _ := excelize.ColumnNumberToName(i + 1)
		width := float64(len(h) + 4)
		if width < 14 {
			width = 14
		}
		if h == models.FieldDescription {
			width = 48
		}
		if err := f.SetColWidth(sheet, name, name, width); err != nil {
			return err
		}
	}

	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
