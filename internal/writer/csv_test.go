package writer

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/insightdelivered/statement-tables/internal/models"
)

func testStatement() *models.Statement {
	return &models.Statement{
		Source:  "statement_folder/Acme-Statement-202508.pdf",
		Backend: "pdf",
		Transactions: []models.Transaction{
			{
				Date:        "01 Aug 25",
				Description: "CARD PAYMENT TESCO",
				Withdrawal:  decimal.RequireFromString("25.99"),
				Balance:     decimal.RequireFromString("1234.56"),
			},
			{
				Date:        "02 Aug 25",
				Description: "SALARY, AUGUST",
				Deposit:     decimal.RequireFromString("2500"),
				Balance:     decimal.RequireFromString("3734.56"),
			},
		},
	}
}

func TestCSVWriter_Write(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{IncludeHeader: true}
	if err := w.Write(&buf, testStatement()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()

	if !strings.Contains(output, "# Source") {
		t.Error("expected source metadata header")
	}
	if !strings.Contains(output, "Date,Description,Withdrawal,Deposit,Balance") {
		t.Error("expected column headers")
	}
	if !strings.Contains(output, "01 Aug 25,CARD PAYMENT TESCO,25.99,0.00,1234.56") {
		t.Errorf("expected first transaction row, got:\n%s", output)
	}
	if !strings.Contains(output, `"SALARY, AUGUST",0.00,2500.00,3734.56`) {
		t.Errorf("expected quoted description, got:\n%s", output)
	}

	lines := strings.Split(strings.TrimSpace(output), "\n")
	// 2 metadata lines + 1 header + 2 transactions = 5
	if len(lines) != 5 {
		t.Errorf("expected 5 lines, got %d", len(lines))
	}
}

func TestCSVWriter_WriteNoHeader(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{}
	if err := w.Write(&buf, testStatement()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	if strings.Contains(output, "# Source") {
		t.Error("should not have metadata when header=false")
	}
	if !strings.HasPrefix(output, "Date,Description,Withdrawal,Deposit,Balance\n") {
		t.Error("expected column headers on the first line")
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"25.99", "25.99"},
		{"1234.5", "1234.50"},
		{"0", "0.00"},
		{"-45", "-45.00"},
		{"2.005", "2.01"},
	}

	for _, tt := range tests {
		got := FormatAmount(decimal.RequireFromString(tt.input))
		if got != tt.expected {
			t.Errorf("FormatAmount(%s): got %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestXLSXWriter_WriteToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	if err := (&XLSXWriter{}).WriteToFile(path, testStatement()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("failed to reopen workbook: %v", err)
	}
	defer f.Close()

	if sheets := f.GetSheetList(); len(sheets) != 1 || sheets[0] != TransactionsSheet {
		t.Fatalf("got sheets %v, want [%s]", sheets, TransactionsSheet)
	}

	rows, err := f.GetRows(TransactionsSheet, excelize.Options{RawCellValue: true})
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if strings.Join(rows[0], ",") != "Date,Description,Withdrawal,Deposit,Balance" {
		t.Errorf("header: got %v", rows[0])
	}
	if rows[1][1] != "CARD PAYMENT TESCO" || rows[1][2] != "25.99" {
		t.Errorf("first row: got %v", rows[1])
	}
	if rows[2][3] != "2500" {
		t.Errorf("deposit cell: got %q, want 2500", rows[2][3])
	}
}
