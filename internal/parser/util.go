package parser

import (
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// Ringgit prefix, stripped wherever it appears (e.g. "RM1,234.56", "-RM 45.00").
	currencyPattern = regexp.MustCompile(`(?i)RM\s*`)

	// "Transaction date: 02 Aug 25" stamp interleaved into the description column.
	annotationTail   = regexp.MustCompile(`(?is)transaction\s+date\s*:.*$`)
	annotationPrefix = regexp.MustCompile(`(?i)^\s*transaction\s+date\s*:`)

	whitespaceRun = regexp.MustCompile(`\s+`)
)

// symbolStripper removes currency symbols, thousands separators and spaces
// (including the Unicode variants PDF extraction tends to produce).
var symbolStripper = strings.NewReplacer(
	"£", "",
	"$", "",
	"€", "",
	",", "",
	" ", "",
	"\u00A0", "",
)

// dashStripper removes the placeholder glyphs statements print in empty
// amount columns: hyphen, en-dash and em-dash.
var dashStripper = strings.NewReplacer(
	"-", "",
	"\u2013", "",
	"\u2014", "",
)

// DefaultDateLayouts are tried in order when parsing a statement date.
// The first one matches the "01 Aug 25" style the tables carry.
var DefaultDateLayouts = []string{
	"2 Jan 06",
	"2 Jan 2006",
	"2/1/2006",
	"2/1/06",
	"2-Jan-06",
	"2-Jan-2006",
}

// DateLayouts returns DefaultDateLayouts followed by any extra layouts not
// already in it.
func DateLayouts(extra []string) []string {
	out := append([]string(nil), DefaultDateLayouts...)
	for _, l := range extra {
		if l != "" && !slices.Contains(out, l) {
			out = append(out, l)
		}
	}
	return out
}

// NormalizeAmount converts a raw amount cell like "RM1,234.56" or "-RM45.00"
// to a decimal. It never fails: blank, placeholder and unparseable input
// all yield zero.
func NormalizeAmount(raw string) decimal.Decimal {
	if raw == "" || raw == "-" {
		return decimal.Zero
	}

	s := strings.TrimSpace(raw)
	// The sign has to be read before dash placeholders are removed.
	negative := strings.HasPrefix(s, "-")

	s = currencyPattern.ReplaceAllString(s, "")
	s = symbolStripper.Replace(s)
	if negative {
		s = strings.TrimPrefix(s, "-")
	}
	s = strings.TrimSpace(dashStripper.Replace(s))

	if s == "" {
		return decimal.Zero
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	if negative {
		return d.Neg()
	}
	return d
}

// NormalizeDescription drops a trailing "Transaction date: ..." annotation
// and collapses whitespace runs to single spaces.
func NormalizeDescription(raw string) string {
	s := annotationTail.ReplaceAllString(raw, "")
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// IsAnnotation reports whether a description cell is a secondary date stamp
// line rather than transaction text.
func IsAnnotation(desc string) bool {
	return annotationPrefix.MatchString(desc)
}

// ParseDate parses a statement date using the first layout that fits.
func ParseDate(s string, layouts []string) (time.Time, bool) {
	s = whitespaceRun.ReplaceAllString(strings.TrimSpace(s), " ")
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// isBlank reports whether a raw cell carries no text.
func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// joinText appends extra to base with a single separating space.
func joinText(base, extra string) string {
	switch {
	case extra == "":
		return base
	case base == "":
		return extra
	}
	return base + " " + extra
}
