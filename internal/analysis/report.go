// Package analysis aggregates converted statement CSVs into period,
// category and merchant summaries and renders them as a workbook.
package analysis

import (
	"context"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/insightdelivered/statement-tables/internal/logger"
	"github.com/insightdelivered/statement-tables/internal/writer"
)

// Report sheet names.
const (
	SheetTransactions = "All Transactions"
	SheetMonthly      = "Monthly Summary"
	SheetCategories   = "Category Summary"
	SheetTopSpending  = "Top Merchants (Spending)"
	SheetTopFrequency = "Top Merchants (Frequency)"
)

// Options configures one analysis run.
type Options struct {
	Dir          string
	ReportPath   string
	TopMerchants int
	Categories   []Category
	DateLayouts  []string
}

// Report holds every computed view of the records.
type Report struct {
	Records      []Record
	Monthly      []MonthlySummary
	Categories   []CategorySummary
	TopSpending  []MerchantStat
	TopFrequency []MerchantStat
	// CategoryNames fixes the per-category column order of the monthly sheet.
	CategoryNames []string
}

// Analyze computes all summaries over already prepared records.
func Analyze(records []Record, c *Categorizer, topN int) *Report {
	r := &Report{
		Records:       records,
		Monthly:       Monthly(records),
		Categories:    Categories(records),
		CategoryNames: c.Names(),
	}
	r.TopSpending, r.TopFrequency = TopMerchants(records, topN)
	return r
}

// Totals returns overall withdrawals and deposits.
func (r *Report) Totals() (withdrawals, deposits decimal.Decimal) {
	for _, rec := range r.Records {
		withdrawals = withdrawals.Add(rec.Withdrawal)
		deposits = deposits.Add(rec.Deposit)
	}
	return withdrawals.Abs(), deposits
}

// Run loads the CSVs in opts.Dir, builds the report and writes it to
// opts.ReportPath when set.
func Run(ctx context.Context, opts Options) (*Report, error) {
	log := logger.FromContext(ctx)

	raw, skipped, err := LoadDir(opts.Dir)
	for name, ferr := range skipped {
		log.Warn().Str("file", name).Err(ferr).Msg("CSV skipped")
	}
	if err != nil {
		return nil, err
	}

	c := NewCategorizer(opts.Categories)
	records := Prepare(raw, c, opts.DateLayouts)
	log.Info().Int("loaded", len(raw)).Int("transactions", len(records)).Msg("transactions prepared")

	report := Analyze(records, c, opts.TopMerchants)
	if opts.ReportPath != "" {
		if err := report.WriteXLSX(opts.ReportPath); err != nil {
			return nil, err
		}
		log.Info().Str("report", opts.ReportPath).Msg("report written")
	}
	return report, nil
}

// WriteXLSX renders the report as a multi-sheet workbook.
func (r *Report) WriteXLSX(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheets := []sheet{
		r.transactionsSheet(),
		r.monthlySheet(),
		r.categorySheet(),
		merchantSheet(SheetTopSpending, r.TopSpending),
		merchantSheet(SheetTopFrequency, r.TopFrequency),
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return err
		}
		if err := writer.WriteTable(f, s.name, s.header, s.rows, s.moneyCols); err != nil {
			return fmt.Errorf("sheet %q: %w", s.name, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report %q: %w", path, err)
	}
	return nil
}

type sheet struct {
	name      string
	header    []string
	rows      [][]interface{}
	moneyCols []int
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func (r *Report) transactionsSheet() sheet {
	s := sheet{
		name:      SheetTransactions,
		header:    []string{"Date", "Description", "Category", "Withdrawal", "Deposit", "Balance", "Year", "Month", "Source_File"},
		moneyCols: []int{4, 5, 6},
	}
	for _, rec := range r.Records {
		var year, month interface{}
		if rec.Year != 0 {
			year, month = rec.Year, rec.Month
		}
		s.rows = append(s.rows, []interface{}{
			rec.Date, rec.Description, rec.Category,
			money(rec.Withdrawal), money(rec.Deposit), money(rec.Balance),
			year, month, rec.SourceFile,
		})
	}
	return s
}

func (r *Report) monthlySheet() sheet {
	s := sheet{
		name: SheetMonthly,
		header: []string{"Year", "Month", "Month_Name", "Total_Withdrawals", "Total_Deposits",
			"Net_Cash_Flow", "Number_of_Transactions", "Days_with_Spending", "Avg_Daily_Spending"},
		moneyCols: []int{4, 5, 6, 9},
	}
	for i := range r.CategoryNames {
		s.header = append(s.header, r.CategoryNames[i])
		s.moneyCols = append(s.moneyCols, 10+i)
	}
	for _, m := range r.Monthly {
		row := []interface{}{
			m.Year, m.Month, m.Label(),
			money(m.Withdrawals), money(m.Deposits), money(m.NetFlow),
			m.Count, m.DaysWithSpending, money(m.AvgDailySpending),
		}
		for _, name := range r.CategoryNames {
			row = append(row, money(m.ByCategory[name]))
		}
		s.rows = append(s.rows, row)
	}
	return s
}

func (r *Report) categorySheet() sheet {
	s := sheet{
		name:      SheetCategories,
		header:    []string{"Category", "Total_Spending", "Number_of_Transactions", "Avg_Transaction_Amount", "Percentage_of_Total"},
		moneyCols: []int{2, 4, 5},
	}
	for _, c := range r.Categories {
		s.rows = append(s.rows, []interface{}{
			c.Category, money(c.Total), c.Count, money(c.Average), money(c.Percentage),
		})
	}
	return s
}

func merchantSheet(name string, stats []MerchantStat) sheet {
	s := sheet{
		name:      name,
		header:    []string{"Rank", "Merchant", "Total_Spending", "Transaction_Count", "Total_Deposits"},
		moneyCols: []int{3, 5},
	}
	for _, m := range stats {
		s.rows = append(s.rows, []interface{}{m.Rank, m.Merchant, money(m.Spending), m.Count, money(m.Deposits)})
	}
	return s
}

// PrintSummary writes the plain-text analysis summary.
func (r *Report) PrintSummary(w io.Writer) {
	withdrawals, deposits := r.Totals()
	fmt.Fprintln(w, "ANALYSIS SUMMARY")
	fmt.Fprintf(w, "Total Transactions: %d\n", len(r.Records))
	fmt.Fprintf(w, "Total Withdrawals: %s\n", withdrawals.StringFixed(2))
	fmt.Fprintf(w, "Total Deposits: %s\n", deposits.StringFixed(2))
	fmt.Fprintf(w, "Net Cash Flow: %s\n", deposits.Sub(withdrawals).StringFixed(2))
	fmt.Fprintln(w, "Top Categories:")
	for i, c := range r.Categories {
		if i == 5 {
			break
		}
		fmt.Fprintf(w, "  %s: %s (%s%%)\n", c.Category, c.Total.StringFixed(2), c.Percentage.StringFixed(1))
	}
}
