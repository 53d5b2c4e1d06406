package extractor

import (
	"strings"
	"unicode"
)

const (
	minPageText     = 50
	minPlainASCII   = 0.6
	amountPunctuals = ".,-/:()'\"%&*+#"
)

// tableVocabulary holds words a decoded transaction-table page carries in
// its header or carry-forward lines. Pages from fonts the library cannot map
// decode into accented noise that contains none of them.
var tableVocabulary = []string{
	"date", "description", "withdrawal", "deposit", "balance",
	"transaction", "opening", "closing", "brought forward", "carried forward",
	"total",
}

// plainASCIIRatio is the share of runes that are ASCII letters, digits,
// whitespace or the punctuation amounts and dates use. Identity-encoded fonts
// decode into Latin-1 letters, so unicode.IsLetter would accept them.
func plainASCIIRatio(pages []string) float64 {
	var total, plain int
	for _, page := range pages {
		for _, r := range page {
			total++
			switch {
			case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r)):
				plain++
			case strings.ContainsRune(amountPunctuals, r):
				plain++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(plain) / float64(total)
}

func hasTableVocabulary(pages []string) bool {
	text := strings.ToLower(strings.Join(pages, " "))
	for _, w := range tableVocabulary {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// isReadableText reports whether the library decoded real table text rather
// than font noise. When it did not, the chain moves on to pdftotext.
func isReadableText(pages []string) bool {
	n := 0
	for _, p := range pages {
		n += len(strings.TrimSpace(p))
	}
	return n > minPageText &&
		plainASCIIRatio(pages) > minPlainASCII &&
		hasTableVocabulary(pages)
}
