// Package outline extracts a document's own table of contents into the
// expected heading sequence that guides body alignment, and carries the
// shared title normalization and false-positive heuristics.
package outline

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dgallion1/bookbuild/internal/booktree"
)

// Entry is one expected heading from the table of contents. The sequence is
// built once, in document order, and read-only afterward. It is not
// deduplicated: a noisy TOC stays noisy.
type Entry struct {
	Index           int
	Key             booktree.Key
	Kind            booktree.EntryKind
	Title           string
	NormalizedTitle string
}

// TitleOnly returns the normalized title with its numbering prefix removed,
// the form used for fuzzy containment matching.
func (e Entry) TitleOnly() string {
	return StripNumbering(e.NormalizedTitle)
}

const (
	// A run of five or more leader dots marks the start of the TOC block.
	leaderRun = "....."
	// TOC mode ends after this many consecutive non-empty elements that
	// neither carry leader dots nor look like numbered entries.
	tocEndRun = 50
)

var (
	reTOCNumbered   = regexp.MustCompile(`^\d+\.\d+`)
	reTOCChapter    = regexp.MustCompile(`^(\d+)\.\s*0\s+(.+)$`)
	reTOCSection    = regexp.MustCompile(`^(\d+)\.\s*(\d+)\s+(.+)$`)
	reTOCSubsection = regexp.MustCompile(`^(\d+)\.\s*(\d+)\.\s*(\d+)\s+(.+)$`)
)

func hasLeaderDots(text string) bool {
	return strings.Contains(text, leaderRun) ||
		strings.Contains(strings.ReplaceAll(text, " ", ""), leaderRun)
}

// Extract scans the content stream for the TOC block and parses it into the
// expected sequence. Entries rejected by the false-positive filter are
// dropped; everything else is kept as-is, duplicates included.
func Extract(elems []booktree.Element) []Entry {
	var entries []Entry
	inTOC := false
	consecutive := 0

	for _, el := range elems {
		if el.Kind != booktree.KindText {
			continue
		}
		text := strings.TrimSpace(el.Text)

		if hasLeaderDots(text) {
			inTOC = true
			consecutive = 0
		}

		// Leave TOC mode once real content runs for a while.
		if inTOC && text != "" && !strings.Contains(text, "...") {
			if !reTOCNumbered.MatchString(text) {
				consecutive++
				if consecutive > tocEndRun {
					break
				}
				continue
			}
			consecutive = 0
		}

		if !inTOC || text == "" {
			continue
		}

		if e, ok := parseEntry(StripDecoration(text)); ok {
			e.Index = len(entries)
			entries = append(entries, e)
		}
	}
	return entries
}

// TOCEnd returns the index of the last element that still belongs to the
// TOC block, so body parsing can skip the outline itself. It returns -1
// when the stream carries no TOC at all.
func TOCEnd(elems []booktree.Element) int {
	end := -1
	inTOC := false
	consecutive := 0
	for i, el := range elems {
		if el.Kind != booktree.KindText {
			continue
		}
		text := strings.TrimSpace(el.Text)
		if text != "" && hasLeaderDots(text) {
			inTOC = true
			end = i
			consecutive = 0
		} else if inTOC && text != "" {
			consecutive++
			if consecutive > tocEndRun {
				break
			}
		}
	}
	return end
}

func parseEntry(text string) (Entry, bool) {
	if m := reTOCChapter.FindStringSubmatch(text); m != nil {
		key := booktree.Key{Chapter: atoi(m[1]), Section: 0, Subsection: booktree.NoSubsection}
		return newEntry(key, text)
	}
	if m := reTOCSection.FindStringSubmatch(text); m != nil && atoi(m[2]) > 0 {
		key := booktree.Key{Chapter: atoi(m[1]), Section: atoi(m[2]), Subsection: booktree.NoSubsection}
		return newEntry(key, text)
	}
	if m := reTOCSubsection.FindStringSubmatch(text); m != nil {
		key := booktree.Key{Chapter: atoi(m[1]), Section: atoi(m[2]), Subsection: atoi(m[3])}
		return newEntry(key, text)
	}
	return Entry{}, false
}

func newEntry(key booktree.Key, text string) (Entry, bool) {
	if _, bad := FalsePositive(text, key); bad {
		return Entry{}, false
	}
	return Entry{
		Key:             key,
		Kind:            key.Kind(),
		Title:           text,
		NormalizedTitle: NormalizeTitle(text),
	}, true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
