package analysis

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// MonthlySummary aggregates one statement period.
type MonthlySummary struct {
	Year             int
	Month            int
	Withdrawals      decimal.Decimal
	Deposits         decimal.Decimal
	NetFlow          decimal.Decimal
	Count            int
	DaysWithSpending int
	AvgDailySpending decimal.Decimal
	ByCategory       map[string]decimal.Decimal
}

// Label renders the period as "January 2025".
func (m MonthlySummary) Label() string {
	return time.Date(m.Year, time.Month(m.Month), 1, 0, 0, 0, 0, time.UTC).Format("January 2006")
}

// Monthly groups records by (year, month) of their source file. Records
// without a period are left out.
func Monthly(records []Record) []MonthlySummary {
	type key struct{ year, month int }
	groups := make(map[key]*MonthlySummary)
	days := make(map[key]map[string]bool)

	for _, r := range records {
		if r.Year == 0 || r.Month == 0 {
			continue
		}
		k := key{r.Year, r.Month}
		m, ok := groups[k]
		if !ok {
			m = &MonthlySummary{Year: r.Year, Month: r.Month, ByCategory: make(map[string]decimal.Decimal)}
			groups[k] = m
			days[k] = make(map[string]bool)
		}
		m.Withdrawals = m.Withdrawals.Add(r.Withdrawal)
		m.Deposits = m.Deposits.Add(r.Deposit)
		m.Count++
		m.ByCategory[r.Category] = m.ByCategory[r.Category].Add(r.Withdrawal)
		if r.HasDate && r.Withdrawal.IsPositive() {
			days[k][r.When.Format("2006-01-02")] = true
		}
	}

	out := make([]MonthlySummary, 0, len(groups))
	for k, m := range groups {
		m.NetFlow = m.Deposits.Sub(m.Withdrawals)
		m.DaysWithSpending = len(days[k])
		if m.DaysWithSpending > 0 {
			m.AvgDailySpending = m.Withdrawals.Div(decimal.NewFromInt(int64(m.DaysWithSpending)))
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}

// CategorySummary aggregates spending for one category across all records.
type CategorySummary struct {
	Category   string
	Total      decimal.Decimal
	Count      int
	Average    decimal.Decimal
	Percentage decimal.Decimal
}

// Categories summarizes spending per category, largest first.
func Categories(records []Record) []CategorySummary {
	totals := make(map[string]*CategorySummary)
	all := decimal.Zero
	for _, r := range records {
		c, ok := totals[r.Category]
		if !ok {
			c = &CategorySummary{Category: r.Category}
			totals[r.Category] = c
		}
		c.Total = c.Total.Add(r.Withdrawal)
		c.Count++
		all = all.Add(r.Withdrawal)
	}
	all = all.Abs()

	out := make([]CategorySummary, 0, len(totals))
	for _, c := range totals {
		c.Total = c.Total.Abs()
		c.Average = c.Total.Div(decimal.NewFromInt(int64(c.Count)))
		if all.IsPositive() {
			c.Percentage = c.Total.Div(all).Mul(hundred)
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Total.Equal(out[j].Total) {
			return out[i].Total.GreaterThan(out[j].Total)
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// MerchantStat is one row of a merchant ranking.
type MerchantStat struct {
	Rank     int
	Merchant string
	Spending decimal.Decimal
	Count    int
	Deposits decimal.Decimal
}

var spaces = regexp.MustCompile(`\s+`)

// MerchantName is the description text before the first " - ", with
// whitespace collapsed.
func MerchantName(desc string) string {
	merchant, _, _ := strings.Cut(desc, " - ")
	merchant = strings.TrimSpace(spaces.ReplaceAllString(merchant, " "))
	if merchant == "" {
		return "Unknown"
	}
	return merchant
}

// TopMerchants ranks merchants by total spending and by transaction count,
// keeping the first n of each.
func TopMerchants(records []Record, n int) (bySpending, byFrequency []MerchantStat) {
	stats := make(map[string]*MerchantStat)
	for _, r := range records {
		name := MerchantName(r.Description)
		s, ok := stats[name]
		if !ok {
			s = &MerchantStat{Merchant: name}
			stats[name] = s
		}
		s.Spending = s.Spending.Add(r.Withdrawal)
		s.Deposits = s.Deposits.Add(r.Deposit)
		s.Count++
	}

	all := make([]MerchantStat, 0, len(stats))
	for _, s := range stats {
		s.Spending = s.Spending.Abs()
		all = append(all, *s)
	}

	bySpending = rank(all, n, func(a, b MerchantStat) bool {
		if !a.Spending.Equal(b.Spending) {
			return a.Spending.GreaterThan(b.Spending)
		}
		return a.Merchant < b.Merchant
	})
	byFrequency = rank(all, n, func(a, b MerchantStat) bool {
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if !a.Spending.Equal(b.Spending) {
			return a.Spending.GreaterThan(b.Spending)
		}
		return a.Merchant < b.Merchant
	})
	return bySpending, byFrequency
}

func rank(stats []MerchantStat, n int, less func(a, b MerchantStat) bool) []MerchantStat {
	sorted := make([]MerchantStat, len(stats))
	copy(sorted, stats)
	sort.Slice(sorted, func(i, j int) bool { return less(sorted[i], sorted[j]) })
	if n > 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	for i := range sorted {
		sorted[i].Rank = i + 1
	}
	return sorted
}
