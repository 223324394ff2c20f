package outline

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dgallion1/bookbuild/internal/booktree"
)

// Scanned books are full of decimal numbers that look exactly like section
// numbering: dosages ("0.2 mg/kg"), ages ("1.5 years"), plain quantities.
// Each filter rule rejects one such shape; rules run in order and the first
// hit wins.

type filterRule struct {
	name   string
	reject func(text string, key booktree.Key) bool
}

var (
	reDosageUnit = regexp.MustCompile(`(?i)\d+\.\d+\s*(mg|ml|kg|g|lb|cc)\b`)
	rePercent    = regexp.MustCompile(`\d+\.\d+\s*%`)
	reAgeUnit    = regexp.MustCompile(`(?i)\d+\.\d+\s*(year|month|week|day|hour)`)
	reDecimal    = regexp.MustCompile(`^0\.\d+\s`)
)

// Quotation marks a legitimate title may open with, straight or curly.
const titleQuotes = "\"'“”‘’"

var filterRules = []filterRule{
	{"dosage-unit", func(text string, _ booktree.Key) bool {
		return reDosageUnit.MatchString(text) || rePercent.MatchString(text)
	}},
	{"age-unit", func(text string, _ booktree.Key) bool {
		return reAgeUnit.MatchString(text)
	}},
	{"decimal-quantity", func(text string, _ booktree.Key) bool {
		return reDecimal.MatchString(text)
	}},
	{"chapter-zero", func(_ string, key booktree.Key) bool {
		return key.Chapter == 0
	}},
	{"short-title", func(text string, _ booktree.Key) bool {
		return utf8.RuneCountInString(StripNumbering(text)) < 3
	}},
	{"lowercase-title", func(text string, _ booktree.Key) bool {
		title := StripNumbering(text)
		if title == "" {
			return false // already rejected by short-title
		}
		r, _ := utf8.DecodeRuneInString(title)
		return !unicode.IsUpper(r) && !strings.ContainsRune(titleQuotes, r)
	}},
}

// FalsePositive reports whether a numbering+title pair is ordinary prose
// rather than a heading, and which rule rejected it.
func FalsePositive(text string, key booktree.Key) (string, bool) {
	for _, rule := range filterRules {
		if rule.reject(text, key) {
			return rule.name, true
		}
	}
	return "", false
}
