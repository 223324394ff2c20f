// Package align reconciles heading candidates found in the body of a
// document against the expected sequence extracted from its table of
// contents. The alignment is a deliberate single-pass, greedy state machine:
// every decision is first-match and the cursor never rewinds, so identical
// input always yields identical output.
package align

import (
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/bookbuild/internal/booktree"
	"github.com/dgallion1/bookbuild/internal/heading"
	"github.com/dgallion1/bookbuild/internal/outline"
)

// fuzzyWindow is how many upcoming expected entries a mismatched candidate
// may relocate to by title similarity.
const fuzzyWindow = 5

// minTitleLen is the shortest normalized title-only text allowed to drive a
// fuzzy or orphan title match.
const minTitleLen = 3

// Stats counts alignment outcomes so the caller can judge structural
// coverage. Nothing here is fatal; the aligner always yields a best-effort
// tree.
type Stats struct {
	Exact     int // accepted at the cursor
	Relocated int // accepted via fuzzy title relocation
	Orphans   int // accepted out of expected order
	Filtered  int // candidates dropped by the false-positive filter
	Rejected  int // candidates that failed every acceptance path
}

// Accepted is the total number of confirmed headings.
func (s Stats) Accepted() int { return s.Exact + s.Relocated + s.Orphans }

// Aligner holds all mutable parse state: the cursor into the expected
// sequence, the currently open structural unit, and the growing tree.
// Create one per parse; Run resets it, so an instance may be reused.
type Aligner struct {
	expected   []outline.Entry
	exceptions outline.Exceptions

	cursor  int
	current booktree.Key
	open    bool
	tree    *booktree.Tree
	stats   Stats
}

// New creates an aligner for one expected sequence and exception table.
// Both inputs are read-only for the life of the aligner.
func New(expected []outline.Entry, exceptions outline.Exceptions) *Aligner {
	if exceptions == nil {
		exceptions = outline.Exceptions{}
	}
	return &Aligner{expected: expected, exceptions: exceptions}
}

// Run consumes the body content stream, strictly in order, and returns the
// tree of confirmed structural units. Elements before the first confirmed
// heading have no home and are dropped.
func (a *Aligner) Run(elems []booktree.Element) *booktree.Tree {
	a.cursor = 0
	a.open = false
	a.current = booktree.Key{}
	a.tree = booktree.NewTree()
	a.stats = Stats{}

	for i, el := range elems {
		a.consume(el, lookahead(elems, i))
	}
	return a.tree
}

// Stats returns the outcome counters of the last Run.
func (a *Aligner) Stats() Stats { return a.stats }

// Cursor returns the alignment cursor position of the last Run.
func (a *Aligner) Cursor() int { return a.cursor }

// lookahead collects the text of up to MaxLookahead elements following i,
// stopping at the first non-text element. It never advances the cursor.
func lookahead(elems []booktree.Element, i int) []string {
	var out []string
	for j := i + 1; j < len(elems) && len(out) < heading.MaxLookahead; j++ {
		if elems[j].Kind != booktree.KindText {
			break
		}
		out = append(out, elems[j].Text)
	}
	return out
}

func (a *Aligner) consume(el booktree.Element, lookahead []string) {
	if el.Kind == booktree.KindText {
		if cand, ok := heading.Extract(el.Text, lookahead); ok {
			if _, bad := outline.FalsePositive(cand.Text, cand.Key); bad {
				a.stats.Filtered++
				a.content(el)
				return
			}
			key := a.exceptions.Apply(cand.Key)
			if placed, ok := a.place(key, cand.Text); ok {
				a.current = placed
				a.open = true
				a.tree.Append(placed, el)
				return
			}
			a.stats.Rejected++
			a.content(el)
			return
		}
	}
	a.content(el)
}

// content appends a non-heading element to the currently open unit, or
// drops it when nothing is open yet.
func (a *Aligner) content(el booktree.Element) {
	if !a.open {
		return
	}
	a.tree.Append(a.current, el)
}

// place runs the acceptance paths in order: exact match at the cursor,
// fuzzy title relocation within the lookahead window, then orphan
// validation against the whole expected sequence. First match wins; there
// is no backtracking. The returned key is the node the heading confirms,
// which for a fuzzy relocation is the TOC's numbering, not the parsed one.
func (a *Aligner) place(key booktree.Key, title string) (booktree.Key, bool) {
	if a.cursor < len(a.expected) && a.expected[a.cursor].Key == key {
		a.cursor++
		a.stats.Exact++
		return nodeKey(key), true
	}

	candTitle := outline.StripNumbering(outline.NormalizeTitle(title))
	longEnough := utf8.RuneCountInString(candTitle) > minTitleLen

	if longEnough {
		limit := min(a.cursor+fuzzyWindow, len(a.expected))
		for i := a.cursor; i < limit; i++ {
			if titlesOverlap(candTitle, a.expected[i].TitleOnly()) {
				a.cursor = i + 1
				a.stats.Relocated++
				return nodeKey(a.expected[i].Key), true
			}
		}
	}

	// Out of expected order, but maybe still a real heading: the numbering
	// must exist somewhere in the TOC and the title must agree. The first
	// numbering match decides; the cursor does not move.
	for _, e := range a.expected {
		if e.Key == key {
			if longEnough && titlesOverlap(candTitle, e.TitleOnly()) {
				a.stats.Orphans++
				return nodeKey(key), true
			}
			break
		}
	}
	return booktree.Key{}, false
}

// titlesOverlap is the substring-containment test used by both the fuzzy
// and orphan paths.
func titlesOverlap(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// nodeKey maps a confirmed heading to its structural unit. A chapter
// heading opens the chapter node (clearing section and subsection), a
// section heading opens the section node (clearing the subsection).
func nodeKey(key booktree.Key) booktree.Key {
	switch key.Kind() {
	case booktree.KindChapter:
		return booktree.Key{Chapter: key.Chapter, Section: 0, Subsection: booktree.NoSubsection}
	case booktree.KindSection:
		return booktree.Key{Chapter: key.Chapter, Section: key.Section, Subsection: booktree.NoSubsection}
	default:
		return key
	}
}
