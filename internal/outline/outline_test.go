package outline

import (
	"testing"

	"github.com/dgallion1/bookbuild/internal/booktree"
)

func textEl(s string) booktree.Element {
	return booktree.Element{Kind: booktree.KindText, Text: s}
}

func tocSample() []booktree.Element {
	return []booktree.Element{
		textEl("A Practical Guide"),
		textEl("Table of Contents"),
		textEl("1.0 Introduction .......... 1"),
		textEl("1.1 History of the Practice .......... 2"),
		textEl("1.2 Scope and Terminology .......... 5"),
		textEl("2.0 Immunology .......... 9"),
		textEl("2.1 Vaccination Protocols .......... 10"),
		textEl("2.1.1 Core Vaccines .......... 11"),
	}
}

func TestExtract(t *testing.T) {
	entries := Extract(tocSample())
	if len(entries) != 6 {
		t.Fatalf("got %d entries, want 6", len(entries))
	}

	want := []struct {
		key   booktree.Key
		kind  booktree.EntryKind
		title string
	}{
		{booktree.Key{Chapter: 1, Section: 0, Subsection: booktree.NoSubsection}, booktree.KindChapter, "1.0 Introduction"},
		{booktree.Key{Chapter: 1, Section: 1, Subsection: booktree.NoSubsection}, booktree.KindSection, "1.1 History of the Practice"},
		{booktree.Key{Chapter: 1, Section: 2, Subsection: booktree.NoSubsection}, booktree.KindSection, "1.2 Scope and Terminology"},
		{booktree.Key{Chapter: 2, Section: 0, Subsection: booktree.NoSubsection}, booktree.KindChapter, "2.0 Immunology"},
		{booktree.Key{Chapter: 2, Section: 1, Subsection: booktree.NoSubsection}, booktree.KindSection, "2.1 Vaccination Protocols"},
		{booktree.Key{Chapter: 2, Section: 1, Subsection: 1}, booktree.KindSubsection, "2.1.1 Core Vaccines"},
	}
	for i, w := range want {
		e := entries[i]
		if e.Key != w.key || e.Kind != w.kind || e.Title != w.title {
			t.Fatalf("entry %d = %+v, want %+v", i, e, w)
		}
		if e.Index != i {
			t.Fatalf("entry %d has index %d", i, e.Index)
		}
	}
}

func TestExtractKeepsDuplicates(t *testing.T) {
	elems := []booktree.Element{
		textEl("1.1 Repeated Entry .......... 2"),
		textEl("1.1 Repeated Entry .......... 2"),
	}
	entries := Extract(elems)
	if len(entries) != 2 {
		t.Fatalf("duplicates must be kept, got %d entries", len(entries))
	}
}

func TestExtractDropsFalsePositives(t *testing.T) {
	elems := []booktree.Element{
		textEl("1.1 Housing Requirements .......... 3"),
		textEl("0.5 mg per dose .......... 4"),
		textEl("1.2 ab .......... 5"),
	}
	entries := Extract(elems)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1: %+v", len(entries), entries)
	}
	if entries[0].Title != "1.1 Housing Requirements" {
		t.Fatalf("kept the wrong entry: %q", entries[0].Title)
	}
}

func TestExtractNoTOC(t *testing.T) {
	elems := []booktree.Element{
		textEl("Plain prose with no leader dots."),
		textEl("1.1 Looks numbered but appears before any TOC marker"),
	}
	if entries := Extract(elems); len(entries) != 0 {
		t.Fatalf("got %d entries outside any TOC", len(entries))
	}
}

func TestExtractSkipsNonText(t *testing.T) {
	elems := []booktree.Element{
		{Kind: booktree.KindTable, Table: [][]string{{"1.1 Not a TOC line"}}},
		textEl("1.1 Real Entry .......... 2"),
	}
	entries := Extract(elems)
	if len(entries) != 1 || entries[0].Title != "1.1 Real Entry" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestTOCEnd(t *testing.T) {
	elems := tocSample()
	elems = append(elems, textEl("1.0 Introduction"), textEl("Opening prose."))
	end := TOCEnd(elems)
	if end != 7 {
		t.Fatalf("TOCEnd = %d, want 7", end)
	}
}

func TestTOCEndNoTOC(t *testing.T) {
	elems := []booktree.Element{
		textEl("No outline here."),
		textEl("Just prose."),
	}
	if end := TOCEnd(elems); end != -1 {
		t.Fatalf("TOCEnd = %d, want -1", end)
	}
}

func TestTitleOnly(t *testing.T) {
	e := Entry{NormalizedTitle: NormalizeTitle("2.1 Vaccination Protocols")}
	if got := e.TitleOnly(); got != "vaccination protocols" {
		t.Fatalf("TitleOnly = %q", got)
	}
}
