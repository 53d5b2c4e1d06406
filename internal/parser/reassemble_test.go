package parser

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-tables/internal/models"
)

func row(date, desc, withdrawal, deposit, balance string) models.RawRow {
	return models.RawRow{
		models.FieldDate:        date,
		models.FieldDescription: desc,
		models.FieldWithdrawal:  withdrawal,
		models.FieldDeposit:     deposit,
		models.FieldBalance:     balance,
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertTxn(t *testing.T, got models.Transaction, date, desc, withdrawal, deposit, balance string) {
	t.Helper()
	if got.Date != date {
		t.Errorf("date: got %q, want %q", got.Date, date)
	}
	if got.Description != desc {
		t.Errorf("description: got %q, want %q", got.Description, desc)
	}
	if !got.Withdrawal.Equal(dec(withdrawal)) {
		t.Errorf("withdrawal: got %s, want %s", got.Withdrawal, withdrawal)
	}
	if !got.Deposit.Equal(dec(deposit)) {
		t.Errorf("deposit: got %s, want %s", got.Deposit, deposit)
	}
	if !got.Balance.Equal(dec(balance)) {
		t.Errorf("balance: got %s, want %s", got.Balance, balance)
	}
}

func TestReassembleAnnotationCarriesAmounts(t *testing.T) {
	rows := []models.RawRow{
		row("01 Aug 25", "SHOP A", "", "", ""),
		row("", "Transaction date: 01 Aug 25", "50.00", "", "900.00"),
	}

	txns, _ := Reassemble(0, rows)
	if len(txns) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(txns))
	}
	assertTxn(t, txns[0], "01 Aug 25", "SHOP A", "50", "0", "900")
}

func TestReassembleContinuation(t *testing.T) {
	rows := []models.RawRow{
		row("02 Aug 25", "DUITNOW TRANSFER", "10.00", "", "890.00"),
		row("", "to  JOHN DOE", "", "", ""),
		row("", "ref 998877", "", "", ""),
	}

	txns, trace := Reassemble(0, rows)
	if len(txns) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(txns))
	}
	assertTxn(t, txns[0], "02 Aug 25", "DUITNOW TRANSFER to  JOHN DOE ref 998877", "10", "0", "890")

	if len(trace) != 3 || trace[1].Result != "continuation" {
		t.Errorf("unexpected trace: %+v", trace)
	}
}

func TestReassembleContinuationOverridesAmounts(t *testing.T) {
	rows := []models.RawRow{
		row("03 Aug 25", "SALARY", "", "0.00", ""),
		row("", "ACME SDN BHD", "", "3,000.00", "3,890.00"),
	}

	txns, _ := Reassemble(0, rows)
	if len(txns) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(txns))
	}
	assertTxn(t, txns[0], "03 Aug 25", "SALARY ACME SDN BHD", "0", "3000", "3890")
}

func TestReassembleAnnotationDoesNotClobber(t *testing.T) {
	rows := []models.RawRow{
		row("04 Aug 25", "CAFE", "12.00", "", "878.00"),
		row("", "Transaction date: 03 Aug 25", "", "", ""),
	}

	txns, trace := Reassemble(0, rows)
	if len(txns) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(txns))
	}
	assertTxn(t, txns[0], "04 Aug 25", "CAFE", "12", "0", "878")
	if trace[1].Method != "amounts-kept" {
		t.Errorf("expected amounts-kept, got %q", trace[1].Method)
	}
}

func TestReassembleAnnotationCorrectsPopulatedAmounts(t *testing.T) {
	rows := []models.RawRow{
		row("04 Aug 25", "CAFE", "1.00", "", ""),
		row("", "Transaction date: 03 Aug 25", "12.00", "", "878.00"),
	}

	txns, _ := Reassemble(0, rows)
	assertTxn(t, txns[0], "04 Aug 25", "CAFE", "12", "0", "878")
}

func TestReassembleLookAhead(t *testing.T) {
	tests := []struct {
		name      string
		rows      []models.RawRow
		wantCount int
		wantDesc  string
		wantW     string
		wantB     string
	}{
		{
			name: "amounts-only row after blank",
			rows: []models.RawRow{
				row("05 Aug 25", "GRAB-EC", "", "", ""),
				row("", "", "", "", ""),
				row("", "", "8.50", "", "869.50"),
			},
			wantCount: 1,
			wantDesc:  "GRAB-EC",
			wantW:     "8.5",
			wantB:     "869.5",
		},
		{
			name: "continuation folded before annotation",
			rows: []models.RawRow{
				row("05 Aug 25", "QR PAYMENT", "", "", ""),
				row("", "NASI LEMAK", "", "", ""),
				row("", "Transaction date: 05 Aug 25", "6.00", "", "863.50"),
			},
			wantCount: 1,
			wantDesc:  "QR PAYMENT NASI LEMAK",
			wantW:     "6",
			wantB:     "863.5",
		},
		{
			name: "nothing within window",
			rows: []models.RawRow{
				row("05 Aug 25", "PENDING", "", "", ""),
				row("", "", "", "", ""),
				row("", "", "", "", ""),
				row("", "", "", "", ""),
				row("", "", "1.00", "", "2.00"),
			},
			wantCount: 1,
			wantDesc:  "PENDING",
			wantW:     "0",
			wantB:     "0",
		},
		{
			name: "dashes are not amounts",
			rows: []models.RawRow{
				row("05 Aug 25", "FEE", "", "", ""),
				row("", "", "-", "-", "-"),
			},
			wantCount: 1,
			wantDesc:  "FEE",
			wantW:     "0",
			wantB:     "0",
		},
		{
			name: "dated row inside the window is passed over",
			rows: []models.RawRow{
				row("05 Aug 25", "FIRST", "", "", ""),
				row("06 Aug 25", "SECOND", "10.00", "", "990.00"),
				row("", "Transaction date: 05 Aug 25", "50.00", "", "900.00"),
			},
			wantCount: 1,
			wantDesc:  "FIRST",
			wantW:     "50",
			wantB:     "900",
		},
		{
			name: "dated row kept when window finds nothing",
			rows: []models.RawRow{
				row("05 Aug 25", "FIRST", "", "", ""),
				row("06 Aug 25", "SECOND", "3.00", "", "10.00"),
			},
			wantCount: 2,
			wantDesc:  "FIRST",
			wantW:     "0",
			wantB:     "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txns, _ := Reassemble(0, tt.rows)
			if len(txns) != tt.wantCount {
				t.Fatalf("expected %d transactions, got %d", tt.wantCount, len(txns))
			}
			assertTxn(t, txns[0], "05 Aug 25", tt.wantDesc, tt.wantW, "0", tt.wantB)
		})
	}
}

func TestReassembleLookAheadConsumesRows(t *testing.T) {
	rows := []models.RawRow{
		row("05 Aug 25", "GRAB-EC", "", "", ""),
		row("", "", "8.50", "", "869.50"),
		row("", "Transaction date: 05 Aug 25", "99.00", "", "1.00"),
	}

	txns, trace := Reassemble(0, rows)
	if len(txns) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(txns))
	}
	// The amounts-only row is consumed by the look-ahead, so the following
	// annotation row is then merged as usual.
	assertTxn(t, txns[0], "05 Aug 25", "GRAB-EC", "99", "0", "1")
	if trace[1].Result != "consumed" {
		t.Errorf("expected consumed row in trace, got %+v", trace[1])
	}
}

func TestReassembleSkipsBlankAndOrphanRows(t *testing.T) {
	rows := []models.RawRow{
		row("", "", "", "", ""),
		row("", "Transaction date: 01 Aug 25", "5.00", "", ""),
		row("", "dangling text", "", "", ""),
		row("07 Aug 25", "PROFIT EARNED", "", "0.12", "900.12"),
		row("", "", "", "", "  "),
		row("", "", "0.01", "", ""),
	}

	txns, trace := Reassemble(3, rows)
	if len(txns) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(txns))
	}
	assertTxn(t, txns[0], "07 Aug 25", "PROFIT EARNED", "0", "0.12", "900.12")

	wantResults := []string{"blank", "orphan", "orphan", "transaction", "blank", "orphan"}
	if len(trace) != len(wantResults) {
		t.Fatalf("expected %d trace lines, got %d", len(wantResults), len(trace))
	}
	for i, want := range wantResults {
		if trace[i].Result != want {
			t.Errorf("trace[%d]: got %q, want %q", i, trace[i].Result, want)
		}
		if trace[i].Table != 3 {
			t.Errorf("trace[%d]: got table %d, want 3", i, trace[i].Table)
		}
	}
}

func TestReassembleOriginTags(t *testing.T) {
	rows := []models.RawRow{
		row("01 Aug 25", "A", "1.00", "", ""),
		row("02 Aug 25", "B", "2.00", "", ""),
		row("03 Aug 25", "C", "3.00", "", ""),
	}

	txns, _ := Reassemble(2, rows)
	for i, txn := range txns {
		if txn.TableIndex != 2 || txn.RowIndex != i {
			t.Errorf("txn %d: got origin (%d,%d), want (2,%d)", i, txn.TableIndex, txn.RowIndex, i)
		}
	}
}
