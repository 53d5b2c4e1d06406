package parser

import (
	"sort"
	"time"

	"github.com/insightdelivered/statement-tables/internal/models"
)

// Merge combines the per-table outputs of one document. Exact duplicates
// (same date, description and amounts), typically a transaction repeated on
// two overlapping pages, are dropped keeping the first occurrence. The rest
// are ordered by date, then table index, then row index, with unparseable
// dates last. If no date parses at all, document order is used. extraLayouts
// are tried after DefaultDateLayouts.
func Merge(tables [][]models.Transaction, extraLayouts []string) []models.Transaction {
	layouts := DateLayouts(extraLayouts)

	seen := make(map[string]bool)
	var merged []models.Transaction
	for _, table := range tables {
		for _, txn := range table {
			key := txn.Key()
			if seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, txn)
		}
	}

	type keyed struct {
		txn    models.Transaction
		when   time.Time
		parsed bool
	}
	items := make([]keyed, len(merged))
	anyParsed := false
	for i, txn := range merged {
		when, ok := ParseDate(txn.Date, layouts)
		items[i] = keyed{txn: txn, when: when, parsed: ok}
		anyParsed = anyParsed || ok
	}

	sort.SliceStable(items, func(a, b int) bool {
		x, y := items[a], items[b]
		if anyParsed {
			if x.parsed != y.parsed {
				return x.parsed
			}
			if x.parsed && !x.when.Equal(y.when) {
				return x.when.Before(y.when)
			}
		}
		if x.txn.TableIndex != y.txn.TableIndex {
			return x.txn.TableIndex < y.txn.TableIndex
		}
		return x.txn.RowIndex < y.txn.RowIndex
	})

	out := make([]models.Transaction, len(items))
	for i, it := range items {
		out[i] = it.txn
	}
	return out
}
