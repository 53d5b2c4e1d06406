package parser

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-tables/internal/models"
)

func txn(date, desc string, table, rowIdx int) models.Transaction {
	return models.Transaction{
		Date:        date,
		Description: desc,
		Withdrawal:  decimal.RequireFromString("1.00"),
		TableIndex:  table,
		RowIndex:    rowIdx,
	}
}

func dates(txns []models.Transaction) []string {
	out := make([]string, len(txns))
	for i, t := range txns {
		out[i] = t.Date
	}
	return out
}

func TestMergeDeduplicatesAcrossTables(t *testing.T) {
	first := txn("01 Aug 25", "SHOP A", 0, 4)
	dup := txn("01 Aug 25", "SHOP A", 1, 0)
	dup.Withdrawal = decimal.RequireFromString("1") // same value, different scale

	got := Merge([][]models.Transaction{{first}, {dup}}, nil)
	if len(got) != 1 {
		t.Fatalf("expected 1 record after dedup, got %d", len(got))
	}
	if got[0].TableIndex != 0 || got[0].RowIndex != 4 {
		t.Errorf("expected first occurrence to win, got origin (%d,%d)", got[0].TableIndex, got[0].RowIndex)
	}
}

func TestMergeKeepsNearDuplicates(t *testing.T) {
	a := txn("01 Aug 25", "SHOP A", 0, 0)
	b := txn("01 Aug 25", "SHOP A", 0, 1)
	b.Balance = decimal.RequireFromString("10")

	got := Merge([][]models.Transaction{{a, b}}, nil)
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
}

func TestMergeOrdering(t *testing.T) {
	tables := [][]models.Transaction{
		{
			txn("03 Aug 25", "C", 0, 0),
			txn("01 Aug 25", "A2", 0, 1),
			txn("garbage", "X", 0, 2),
		},
		{
			txn("01 Aug 25", "A1", 1, 0),
		},
	}

	got := Merge(tables, nil)
	want := []string{"01 Aug 25", "01 Aug 25", "03 Aug 25", "garbage"}
	gotDates := dates(got)
	for i := range want {
		if gotDates[i] != want[i] {
			t.Fatalf("got order %v, want %v", gotDates, want)
		}
	}
	// Same-date records keep document order: table 0 before table 1.
	if got[0].Description != "A2" || got[1].Description != "A1" {
		t.Errorf("same-date tie-break wrong: %q then %q", got[0].Description, got[1].Description)
	}
}

func TestMergeExtraLayoutsKeepDefaults(t *testing.T) {
	tables := [][]models.Transaction{
		{
			txn("2025-08-03", "ISO", 0, 0),
			txn("02 Aug 25", "DEFAULT", 0, 1),
		},
	}

	got := Merge(tables, []string{"2006-01-02"})
	want := []string{"DEFAULT", "ISO"}
	for i, w := range want {
		if got[i].Description != w {
			t.Fatalf("position %d: got %q, want %q", i, got[i].Description, w)
		}
	}
}

func TestMergeFallsBackToDocumentOrder(t *testing.T) {
	tables := [][]models.Transaction{
		{txn("n/a", "B", 0, 1), txn("n/a", "A", 0, 0)},
		{txn("??", "C", 1, 0)},
	}

	got := Merge(tables, nil)
	want := []string{"A", "B", "C"}
	for i, w := range want {
		if got[i].Description != w {
			t.Fatalf("position %d: got %q, want %q", i, got[i].Description, w)
		}
	}
}

func TestParseTable(t *testing.T) {
	grid := models.Grid{
		{"Deposits statement", "", "", "", ""},
		{"Date", "Description", "Withdrawal", "Deposit", "Balance"},
		{"01 Aug 25", "SHOP A", "", "", ""},
		{"", "Transaction date: 01 Aug 25", "50.00", "", "900.00"},
		{"Closing balance", "", "", "", "900.00"},
	}

	res, err := ParseTable(5, grid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Header.Index != 1 {
		t.Errorf("header index: got %d, want 1", res.Header.Index)
	}
	if len(res.Transactions) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(res.Transactions))
	}
	if res.Transactions[0].TableIndex != 5 {
		t.Errorf("table index: got %d, want 5", res.Transactions[0].TableIndex)
	}
}

func TestParseTableNoHeader(t *testing.T) {
	_, err := ParseTable(0, models.Grid{{"just", "text"}})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}
