package outline

import (
	"regexp"
	"strings"
)

var (
	reLeaderTail   = regexp.MustCompile(`\s*\.{2,}\s*\d+\s*$`)
	reWhitespace   = regexp.MustCompile(`\s+`)
	reOCRDigitOne  = regexp.MustCompile(`\b[Il](\d)`)
	reOCRDigitZero = regexp.MustCompile(`\b[Oo](\d)`)
	reNumberPrefix = regexp.MustCompile(`^\d+\.\s*\d+(?:\.\s*\d+)?\s*`)
)

// StripDecoration removes the leader-dot run and trailing page number from a
// TOC line and collapses whitespace: "1.2 Foo ...... 17" -> "1.2 Foo".
func StripDecoration(text string) string {
	text = reLeaderTail.ReplaceAllString(text, "")
	text = reWhitespace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// NormalizeTitle prepares text for fuzzy comparison: common OCR digit
// confusions fixed (I/l before a digit read as 1, O as 0), case folded,
// whitespace collapsed.
func NormalizeTitle(text string) string {
	if text == "" {
		return ""
	}
	text = reOCRDigitOne.ReplaceAllString(text, "1$1")
	text = reOCRDigitZero.ReplaceAllString(text, "0$1")
	text = strings.ToLower(text)
	text = reWhitespace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// StripNumbering removes a leading dotted numbering ("3.1 ", "24.1.6 ",
// also with stray spaces like "3. 1") leaving only the title text.
func StripNumbering(text string) string {
	return reNumberPrefix.ReplaceAllString(text, "")
}
