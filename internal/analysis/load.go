package analysis

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/insightdelivered/statement-tables/internal/models"
	"github.com/insightdelivered/statement-tables/internal/parser"
)

// ErrNoData means the folder holds no loadable transaction CSVs.
var ErrNoData = errors.New("no transaction files found")

// Record is one transaction enriched for reporting.
type Record struct {
	models.Transaction
	Category   string
	Year       int // 0 when the source file carries no period
	Month      int
	SourceFile string
	When       time.Time
	HasDate    bool
}

var periodSuffix = regexp.MustCompile(`_(\d{4})(\d{2})\.csv$`)

// PeriodFromFilename reads the statement period from names such as
// "1000073282_202501.csv".
func PeriodFromFilename(name string) (year, month int, ok bool) {
	m := periodSuffix.FindStringSubmatch(strings.ToLower(name))
	if m == nil {
		return 0, 0, false
	}
	year, _ = strconv.Atoi(m[1])
	month, _ = strconv.Atoi(m[2])
	if month < 1 || month > 12 {
		return 0, 0, false
	}
	return year, month, true
}

// LoadDir reads every CSV in dir in name order. A file that fails to parse
// is reported in skipped and does not stop the load.
func LoadDir(dir string) (records []Record, skipped map[string]error, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %q: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, nil, fmt.Errorf("%w in %q", ErrNoData, dir)
	}
	sort.Strings(names)

	skipped = make(map[string]error)
	for _, name := range names {
		recs, err := loadFile(filepath.Join(dir, name))
		if err != nil {
			skipped[name] = err
			continue
		}
		records = append(records, recs...)
	}
	if len(records) == 0 && len(skipped) == len(names) {
		return nil, skipped, fmt.Errorf("%w in %q", ErrNoData, dir)
	}
	return records, skipped, nil
}

func loadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadCSV(f, filepath.Base(path))
}

// LoadCSV parses one transaction CSV as written by the writer package.
// Columns are located by name; unparseable amounts read as zero.
func LoadCSV(r io.Reader, source string) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}
	for _, f := range []string{models.FieldDate, models.FieldDescription} {
		if _, ok := cols[f]; !ok {
			return nil, fmt.Errorf("missing %s column", f)
		}
	}

	year, month, _ := PeriodFromFilename(source)
	cell := func(row []string, field string) string {
		i, ok := cols[field]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var out []Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, Record{
			Transaction: models.Transaction{
				Date:        strings.TrimSpace(cell(row, models.FieldDate)),
				Description: strings.TrimSpace(cell(row, models.FieldDescription)),
				Withdrawal:  parser.NormalizeAmount(cell(row, models.FieldWithdrawal)),
				Deposit:     parser.NormalizeAmount(cell(row, models.FieldDeposit)),
				Balance:     parser.NormalizeAmount(cell(row, models.FieldBalance)),
			},
			Year:       year,
			Month:      month,
			SourceFile: source,
		})
	}
	return out, nil
}

var balanceLine = regexp.MustCompile(`(?i)opening balance|closing balance`)

// Prepare drops balance carry-forward lines, assigns categories, parses
// dates and orders the records by date with undated records last. Dates are
// parsed with the default layouts plus extraLayouts.
func Prepare(records []Record, c *Categorizer, extraLayouts []string) []Record {
	layouts := parser.DateLayouts(extraLayouts)

	out := make([]Record, 0, len(records))
	for _, r := range records {
		if balanceLine.MatchString(r.Description) {
			continue
		}
		r.Category = c.Categorize(r.Description)
		r.When, r.HasDate = parser.ParseDate(r.Date, layouts)
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.HasDate != b.HasDate {
			return a.HasDate
		}
		return a.HasDate && a.When.Before(b.When)
	})
	return out
}
