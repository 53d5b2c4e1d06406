package parser

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-tables/internal/models"
)

// lookAheadWindow bounds how many rows after a transaction-start row are
// inspected for its missing amounts.
const lookAheadWindow = 3

// amounts is the normalized withdrawal/deposit/balance triple of one row.
type amounts struct {
	withdrawal, deposit, balance decimal.Decimal
}

func rowAmounts(row models.RawRow) amounts {
	return amounts{
		withdrawal: NormalizeAmount(row[models.FieldWithdrawal]),
		deposit:    NormalizeAmount(row[models.FieldDeposit]),
		balance:    NormalizeAmount(row[models.FieldBalance]),
	}
}

func (a amounts) nonzero() bool {
	return !a.withdrawal.IsZero() || !a.deposit.IsZero() || !a.balance.IsZero()
}

func (a amounts) applyTo(txn *models.Transaction) {
	txn.Withdrawal = a.withdrawal
	txn.Deposit = a.deposit
	txn.Balance = a.balance
}

// amountCellsBlank reports whether all three raw amount cells are empty,
// which distinguishes "not yet known" from a printed zero.
func amountCellsBlank(row models.RawRow) bool {
	return isBlank(row[models.FieldWithdrawal]) &&
		isBlank(row[models.FieldDeposit]) &&
		isBlank(row[models.FieldBalance])
}

// carriesAmountText reports whether a row holds any usable amount text;
// a lone dash placeholder does not count.
func carriesAmountText(row models.RawRow) bool {
	if rowAmounts(row).nonzero() {
		return true
	}
	for _, f := range []string{models.FieldWithdrawal, models.FieldDeposit, models.FieldBalance} {
		v := strings.TrimSpace(row[f])
		if v != "" && v != "-" {
			return true
		}
	}
	return false
}

// Reassembler rebuilds logical transactions from the body rows of one table.
// It walks the rows with an explicit cursor because a single step may consume
// several rows (look-ahead) and peeking must not mutate state.
type Reassembler struct {
	table int
	rows  []models.RawRow
	out   []models.Transaction
	trace []models.DebugLine
}

// NewReassembler prepares a reassembler for the rows of the given table.
func NewReassembler(table int, rows []models.RawRow) *Reassembler {
	return &Reassembler{table: table, rows: rows}
}

// Reassemble runs the state machine over every row and returns the table's
// transactions tagged with their origin, plus a per-row trace.
func (r *Reassembler) Reassemble() ([]models.Transaction, []models.DebugLine) {
	for i := 0; i < len(r.rows); {
		row := r.rows[i]
		date := row[models.FieldDate]
		desc := row[models.FieldDescription]

		switch {
		case date == "" && desc == "":
			// Stray footers can leave amount artifacts here; they never
			// form a record on their own.
			if amountCellsBlank(row) {
				r.note(i, "blank", "")
			} else {
				r.note(i, "orphan", "amounts-without-text")
			}
			i++
		case date == "" && IsAnnotation(desc):
			r.mergeAnnotation(i)
			i++
		case date == "":
			r.appendContinuation(i)
			i++
		default:
			i = r.startTransaction(i)
		}
	}

	return r.finish(), r.trace
}

// last returns the record currently accumulating, or nil before the first
// transaction-start row.
func (r *Reassembler) last() *models.Transaction {
	if len(r.out) == 0 {
		return nil
	}
	return &r.out[len(r.out)-1]
}

// mergeAnnotation moves the amounts of a "Transaction date:" line onto the
// previous record. A zero-amount annotation must not clobber amounts that
// are already populated.
func (r *Reassembler) mergeAnnotation(i int) {
	prev := r.last()
	if prev == nil {
		r.note(i, "orphan", "annotation-before-transaction")
		return
	}

	a := rowAmounts(r.rows[i])
	if !prev.HasAmounts() || a.nonzero() {
		a.applyTo(prev)
		r.note(i, "annotation", "amounts-merged")
		return
	}
	r.note(i, "annotation", "amounts-kept")
}

// appendContinuation extends the previous record's description. Amount text
// on a continuation line overrides the matching field of that record.
func (r *Reassembler) appendContinuation(i int) {
	prev := r.last()
	if prev == nil {
		r.note(i, "orphan", "continuation-before-transaction")
		return
	}

	row := r.rows[i]
	prev.Description = joinText(prev.Description, strings.TrimSpace(row[models.FieldDescription]))

	method := "description"
	if v := row[models.FieldWithdrawal]; !isBlank(v) {
		prev.Withdrawal = NormalizeAmount(v)
		method = "description+amounts"
	}
	if v := row[models.FieldDeposit]; !isBlank(v) {
		prev.Deposit = NormalizeAmount(v)
		method = "description+amounts"
	}
	if v := row[models.FieldBalance]; !isBlank(v) {
		prev.Balance = NormalizeAmount(v)
		method = "description+amounts"
	}
	r.note(i, "continuation", method)
}

// startTransaction opens a new record at row i and returns the next cursor
// position. When the row has no amount text at all, up to lookAheadWindow
// following rows are searched for the line that carries the amounts.
func (r *Reassembler) startTransaction(i int) int {
	row := r.rows[i]
	txn := models.Transaction{
		Date:        row[models.FieldDate],
		Description: NormalizeDescription(row[models.FieldDescription]),
	}
	a := rowAmounts(row)
	a.applyTo(&txn)

	next := i + 1
	method := ""
	if !a.nonzero() && amountCellsBlank(row) {
		if consumed, ok := r.lookAhead(i, &txn); ok {
			next = consumed + 1
			method = "look-ahead"
		}
	}

	r.out = append(r.out, txn)
	r.note(i, "transaction", method)
	for j := i + 1; j < next; j++ {
		r.note(j, "consumed", "look-ahead")
	}
	return next
}

// lookAhead searches the window after row i for an undated annotation line,
// or an undated amounts-only line, and adopts its amounts. Every row in
// between is consumed with it: undated continuation text is folded into the
// description, dated rows are passed over and dropped. It returns the index
// of the consumed row.
func (r *Reassembler) lookAhead(i int, txn *models.Transaction) (int, bool) {
	var folded []string
	for step := 1; step <= lookAheadWindow && i+step < len(r.rows); step++ {
		j := i + step
		ahead := r.rows[j]
		if ahead[models.FieldDate] != "" {
			continue
		}

		desc := ahead[models.FieldDescription]
		if IsAnnotation(desc) || (desc == "" && carriesAmountText(ahead)) {
			rowAmounts(ahead).applyTo(txn)
			for _, text := range folded {
				txn.Description = joinText(txn.Description, text)
			}
			return j, true
		}
		if desc != "" {
			folded = append(folded, strings.TrimSpace(desc))
		}
	}
	return 0, false
}

// finish drops records without date and description and stamps the origin
// used for cross-table ordering.
func (r *Reassembler) finish() []models.Transaction {
	var kept []models.Transaction
	for _, txn := range r.out {
		if txn.Date == "" && txn.Description == "" {
			continue
		}
		txn.TableIndex = r.table
		txn.RowIndex = len(kept)
		kept = append(kept, txn)
	}
	return kept
}

func (r *Reassembler) note(i int, result, method string) {
	row := r.rows[i]
	var parts []string
	for _, f := range models.Fields {
		if v := row[f]; v != "" {
			parts = append(parts, v)
		}
	}
	text := strings.Join(parts, " | ")
	// Truncate long lines for debug display
	if len(text) > 120 {
		text = text[:120] + "..."
	}
	r.trace = append(r.trace, models.DebugLine{
		Table:  r.table,
		RowNum: i + 1,
		Text:   text,
		Result: result,
		Method: method,
	})
}

// Reassemble is a convenience wrapper around Reassembler for one table.
func Reassemble(table int, rows []models.RawRow) ([]models.Transaction, []models.DebugLine) {
	return NewReassembler(table, rows).Reassemble()
}
