// Package heading parses chapter/section/subsection heading candidates out
// of noisy body text: OCR digit confusions, "Chapter N" prefixes, headings
// merged with preceding prose, and titles split across layout lines.
package heading

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dgallion1/bookbuild/internal/booktree"
)

// Candidate is a parsed, not-yet-confirmed heading. Text keeps the full
// (numbering + title) form the aligner compares against the TOC.
type Candidate struct {
	Key  booktree.Key
	Text string
}

// MaxLookahead bounds how many following elements may contribute
// continuation lines to a split heading.
const MaxLookahead = 5

var (
	reLeaderTail   = regexp.MustCompile(`\s*\.{2,}.*$`)
	reChapterDot   = regexp.MustCompile(`(?i)^Chapter\s+(\d+)\.0\s+(.+)$`)
	reChapterColon = regexp.MustCompile(`(?i)^Chapter\s+(\d+):\s+(.+)$`)
	reEmbedded     = regexp.MustCompile(`\D\.(\d+\.\d+(?:\.\d+)?)\s+[A-Z]`)

	reOCRLeadOne    = regexp.MustCompile(`^[Il](\d)`)
	reOCRSectionOne = regexp.MustCompile(`^(\d+)\.[Il]`)
	reOCRSubOne     = regexp.MustCompile(`^(\d+)\.(\d+)\.[Il]`)
	reSplitNumber   = regexp.MustCompile(`^(\d+)\.\s+(\d+)`)

	reBareNumbering = regexp.MustCompile(`^\d+\.\d+(?:\.\d+)?$`)
	reNewHeading    = regexp.MustCompile(`^\d+\.`)

	reSubsection = regexp.MustCompile(`(?s)^(\d+)\.(\d+)\.(\d+)\s*(.*)$`)
	reSection    = regexp.MustCompile(`(?s)^(\d+)\.(\d+)\s*(.*)$`)
)

// cleanups run in order before number matching. Each one repairs a specific
// extraction artifact and is testable on its own.
var cleanups = []struct {
	name  string
	apply func(string) string
}{
	{"leader-tail", func(s string) string {
		return strings.TrimSpace(reLeaderTail.ReplaceAllString(s, ""))
	}},
	{"chapter-prefix", func(s string) string {
		if m := reChapterDot.FindStringSubmatch(s); m != nil {
			return m[1] + ".0 " + m[2]
		}
		if m := reChapterColon.FindStringSubmatch(s); m != nil {
			return m[1] + ".0 " + m[2]
		}
		return s
	}},
	{"embedded-numbering", func(s string) string {
		// A heading glued onto the end of a sentence: truncate to where
		// the numbering starts.
		if idx := reEmbedded.FindStringSubmatchIndex(s); idx != nil {
			return s[idx[2]:]
		}
		return s
	}},
	{"ocr-digits", func(s string) string {
		s = reOCRLeadOne.ReplaceAllString(s, "1$1")
		s = reOCRSectionOne.ReplaceAllString(s, "$1.1")
		s = reOCRSubOne.ReplaceAllString(s, "$1.$2.1")
		s = reSplitNumber.ReplaceAllString(s, "$1.$2")
		return s
	}},
}

// Extract attempts to parse a heading candidate from one text fragment.
// lookahead holds the text of up to MaxLookahead following elements; when
// the fragment is a bare numbering with no title, continuation lines are
// appended until one starts its own digit-dot pattern.
func Extract(text string, lookahead []string) (Candidate, bool) {
	for _, c := range cleanups {
		text = c.apply(text)
	}
	if text == "" {
		return Candidate{}, false
	}

	if reBareNumbering.MatchString(text) {
		for i, next := range lookahead {
			if i >= MaxLookahead {
				break
			}
			next = strings.TrimSpace(next)
			if next == "" || reNewHeading.MatchString(next) {
				break
			}
			text += " " + next
		}
	}

	if m := reSubsection.FindStringSubmatch(text); m != nil {
		return Candidate{
			Key:  booktree.Key{Chapter: atoi(m[1]), Section: atoi(m[2]), Subsection: atoi(m[3])},
			Text: text,
		}, true
	}
	if m := reSection.FindStringSubmatch(text); m != nil {
		return Candidate{
			Key:  booktree.Key{Chapter: atoi(m[1]), Section: atoi(m[2]), Subsection: booktree.NoSubsection},
			Text: text,
		}, true
	}
	return Candidate{}, false
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
