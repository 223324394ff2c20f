// Package booktree holds the structural data model shared by the content
// stream producers, the aligner, and the exporters: opaque content elements,
// chapter/section/subsection keys, and the tree of confirmed nodes.
package booktree

import (
	"fmt"
	"sort"
)

// ElementKind tags the payload variant of an Element.
type ElementKind string

const (
	KindText  ElementKind = "text"
	KindTable ElementKind = "table"
	KindImage ElementKind = "image"
)

// Image is an extracted inline image: raw bytes plus whatever descriptive
// text the source format carried.
type Image struct {
	Index       int    // 1-based running index within the document
	Data        []byte
	ContentType string
	Alt         string
	Caption     string
}

// Element is one unit of document content, produced by a docstream source
// and consumed exactly once, in order.
type Element struct {
	Kind     ElementKind
	Text     string     // KindText
	Table    [][]string // KindTable, row-major cell text
	Image    *Image     // KindImage
	Position int        // index in the source document, for diagnostics
}

// NoSubsection marks a Key that addresses a chapter or section level.
const NoSubsection = -1

// Key addresses one structural unit. Section 0 is the chapter heading
// itself; Subsection is NoSubsection unless the key names a subsection.
type Key struct {
	Chapter    int
	Section    int
	Subsection int
}

// EntryKind classifies a key by its numbering shape.
type EntryKind string

const (
	KindChapter    EntryKind = "chapter"
	KindSection    EntryKind = "section"
	KindSubsection EntryKind = "subsection"
)

// Kind derives the structural level from the numbering shape.
func (k Key) Kind() EntryKind {
	switch {
	case k.Section == 0:
		return KindChapter
	case k.Subsection == NoSubsection:
		return KindSection
	default:
		return KindSubsection
	}
}

// String renders the dotted numbering, e.g. "3.2" or "3.2.1".
func (k Key) String() string {
	if k.Subsection == NoSubsection {
		return fmt.Sprintf("%d.%d", k.Chapter, k.Section)
	}
	return fmt.Sprintf("%d.%d.%d", k.Chapter, k.Section, k.Subsection)
}

// Less orders keys by chapter, section, subsection.
func (k Key) Less(o Key) bool {
	if k.Chapter != o.Chapter {
		return k.Chapter < o.Chapter
	}
	if k.Section != o.Section {
		return k.Section < o.Section
	}
	return k.Subsection < o.Subsection
}

// Node accumulates the ordered content of one confirmed structural unit.
type Node struct {
	Key      Key
	Elements []Element
}

// Tree is the map of confirmed structural units. Nodes are created lazily on
// first confirmation and only ever grow; arrival order of keys is preserved
// alongside the map.
type Tree struct {
	nodes map[Key]*Node
	order []Key
}

func NewTree() *Tree {
	return &Tree{nodes: make(map[Key]*Node)}
}

// Node returns the accumulator for key, creating it on first use.
func (t *Tree) Node(key Key) *Node {
	if n, ok := t.nodes[key]; ok {
		return n
	}
	n := &Node{Key: key}
	t.nodes[key] = n
	t.order = append(t.order, key)
	return n
}

// Lookup returns the node for key without creating it.
func (t *Tree) Lookup(key Key) (*Node, bool) {
	n, ok := t.nodes[key]
	return n, ok
}

// Append adds el to the node for key, creating the node if needed.
func (t *Tree) Append(key Key, el Element) {
	n := t.Node(key)
	n.Elements = append(n.Elements, el)
}

// Len reports the number of distinct confirmed keys.
func (t *Tree) Len() int {
	return len(t.order)
}

// Keys returns the distinct confirmed keys in confirmation order.
func (t *Tree) Keys() []Key {
	out := make([]Key, len(t.order))
	copy(out, t.order)
	return out
}

// SortedKeys returns the confirmed keys in numbering order, for export.
func (t *Tree) SortedKeys() []Key {
	out := t.Keys()
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// Chapters returns the distinct chapter numbers in ascending order.
func (t *Tree) Chapters() []int {
	seen := make(map[int]bool)
	var out []int
	for _, k := range t.order {
		if !seen[k.Chapter] {
			seen[k.Chapter] = true
			out = append(out, k.Chapter)
		}
	}
	sort.Ints(out)
	return out
}

// Sections returns the distinct section numbers (>0) confirmed under a
// chapter, ascending.
func (t *Tree) Sections(chapter int) []int {
	seen := make(map[int]bool)
	var out []int
	for _, k := range t.order {
		if k.Chapter == chapter && k.Section > 0 && !seen[k.Section] {
			seen[k.Section] = true
			out = append(out, k.Section)
		}
	}
	sort.Ints(out)
	return out
}

// Subsections returns the distinct subsection numbers confirmed under a
// chapter/section pair, ascending.
func (t *Tree) Subsections(chapter, section int) []int {
	seen := make(map[int]bool)
	var out []int
	for _, k := range t.order {
		if k.Chapter == chapter && k.Section == section && k.Subsection != NoSubsection && !seen[k.Subsection] {
			seen[k.Subsection] = true
			out = append(out, k.Subsection)
		}
	}
	sort.Ints(out)
	return out
}
