package models

import "github.com/shopspring/decimal"

// Canonical column names shared by the header locator, the reassembly engine
// and the writers.
const (
	FieldDate        = "Date"
	FieldDescription = "Description"
	FieldWithdrawal  = "Withdrawal"
	FieldDeposit     = "Deposit"
	FieldBalance     = "Balance"
)

// Fields lists the canonical columns in output order.
var Fields = []string{FieldDate, FieldDescription, FieldWithdrawal, FieldDeposit, FieldBalance}

// Grid is one extracted table: a rectangular grid of text cells with no
// implied header location.
type Grid [][]string

// RawRow is a post-header table row keyed by canonical field name.
// Values are trimmed cell text; a missing column reads as "".
type RawRow map[string]string

// Transaction is one reconstructed statement line.
type Transaction struct {
	Date        string          `json:"date"` // statement-native, e.g. "01 Aug 25"
	Description string          `json:"description"`
	Withdrawal  decimal.Decimal `json:"withdrawal"`
	Deposit     decimal.Decimal `json:"deposit"`
	Balance     decimal.Decimal `json:"balance"`

	// Origin metadata, used only for ordering.
	TableIndex int `json:"-"`
	RowIndex   int `json:"-"`
}

// HasAmounts reports whether any of the three amount fields is nonzero.
func (t Transaction) HasAmounts() bool {
	return !t.Withdrawal.IsZero() || !t.Deposit.IsZero() || !t.Balance.IsZero()
}

// Key is the composite identity used for cross-table deduplication.
func (t Transaction) Key() string {
	return t.Date + "|" + t.Description + "|" + t.Withdrawal.String() + "|" + t.Deposit.String() + "|" + t.Balance.String()
}

// DebugLine captures what the reassembly engine did with each input row.
type DebugLine struct {
	Table  int    `json:"table"`
	RowNum int    `json:"rowNum"`
	Text   string `json:"text"`
	Result string `json:"result"` // "blank", "annotation", "continuation", "transaction", "orphan"
	Method string `json:"method,omitempty"`
}

// Statement holds the reconstructed records of one source document.
type Statement struct {
	Source        string
	Backend       string
	TablesFound   int
	TablesSkipped int
	Transactions  []Transaction
	DebugLines    []DebugLine
}
