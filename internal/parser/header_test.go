package parser

import (
	"errors"
	"testing"

	"github.com/insightdelivered/statement-tables/internal/models"
)

func TestLocateHeader(t *testing.T) {
	tests := []struct {
		name      string
		grid      models.Grid
		wantIndex int
		wantErr   error
	}{
		{
			name: "header on first row",
			grid: models.Grid{
				{"Date", "Description", "Withdrawal (RM)", "Deposit (RM)", "Balance (RM)"},
				{"01 Aug 25", "SHOP A", "50.00", "", "900.00"},
			},
			wantIndex: 0,
		},
		{
			name: "header below account block",
			grid: models.Grid{
				{"Account number", "1000073282", "", "", ""},
				{"Statement period", "Aug 2025", "", "", ""},
				{"Transaction Date", "Desc", "Withdraw", "Deposit", "Balance"},
			},
			wantIndex: 2,
		},
		{
			name: "no header",
			grid: models.Grid{
				{"Important notice", "Please check your statement", "", "", ""},
			},
			wantErr: ErrNoHeaderFound,
		},
		{
			name: "lower-case date label does not qualify",
			grid: models.Grid{
				{"", "Transaction date: 01 Aug 25", "Balance", "", ""},
			},
			wantErr: ErrNoHeaderFound,
		},
		{
			name: "missing deposit column",
			grid: models.Grid{
				{"Date", "Description", "Withdrawal", "Balance"},
			},
			wantIndex: 0,
			wantErr:   ErrIncompleteColumns,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := LocateHeader(tt.grid)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("got error %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if h.Index != tt.wantIndex {
				t.Errorf("got index %d, want %d", h.Index, tt.wantIndex)
			}
			for _, f := range models.Fields {
				if h.Field(f) < 0 {
					t.Errorf("field %s not mapped", f)
				}
			}
		})
	}
}

func TestCanonicalField(t *testing.T) {
	tests := []struct {
		label    string
		expected string
	}{
		{"Date", models.FieldDate},
		{"Posting date", models.FieldDate},
		{"Transaction Description", models.FieldDescription},
		{"DESC", models.FieldDescription},
		{"Withdrawal (RM)", models.FieldWithdrawal},
		{"Withdraw", models.FieldWithdrawal},
		{"Deposit", models.FieldDeposit},
		{"Balance", models.FieldBalance},
		{"Ref", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			if got := canonicalField(tt.label); got != tt.expected {
				t.Errorf("canonicalField(%q): got %q, want %q", tt.label, got, tt.expected)
			}
		})
	}
}

func TestLocateHeaderFirstLabelWins(t *testing.T) {
	grid := models.Grid{
		{"Date", "Value Date", "Description", "Withdrawal", "Deposit", "Balance"},
	}
	h, err := LocateHeader(grid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := h.Field(models.FieldDate); got != 0 {
		t.Errorf("date column: got %d, want 0", got)
	}
	if got := h.Field(models.FieldDescription); got != 2 {
		t.Errorf("description column: got %d, want 2", got)
	}
}

func TestBodyRows(t *testing.T) {
	grid := models.Grid{
		{"Date", "Description", "Withdrawal", "Deposit", "Balance"},
		{" 01 Aug 25 ", " SHOP A ", "", "", ""},
		{"Date", "Description", "Withdrawal", "Deposit", "Balance"},
		{"Closing balance", "", "", "", "900.00"},
		{"IMPORTANT NOTICE", "text", "", "", ""},
		{"02 Aug 25", "SHORT"},
	}
	h, err := LocateHeader(grid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows := BodyRows(grid, h)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][models.FieldDate] != "01 Aug 25" || rows[0][models.FieldDescription] != "SHOP A" {
		t.Errorf("row not trimmed: %#v", rows[0])
	}
	if v, ok := rows[1][models.FieldBalance]; !ok || v != "" {
		t.Errorf("short row should read missing cells as empty, got %q (present=%v)", v, ok)
	}
}
