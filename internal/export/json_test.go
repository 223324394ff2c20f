package export

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgallion1/bookbuild/internal/booktree"
	"github.com/dgallion1/bookbuild/internal/config"
	"github.com/dgallion1/bookbuild/internal/outline"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func chapterKey(ch int) booktree.Key {
	return booktree.Key{Chapter: ch, Section: 0, Subsection: booktree.NoSubsection}
}

func sectionKey(ch, sec int) booktree.Key {
	return booktree.Key{Chapter: ch, Section: sec, Subsection: booktree.NoSubsection}
}

func entry(key booktree.Key, title string) outline.Entry {
	return outline.Entry{Key: key, Kind: key.Kind(), Title: title, NormalizedTitle: outline.NormalizeTitle(title)}
}

func sampleExpected() []outline.Entry {
	return []outline.Entry{
		entry(chapterKey(1), "1.0 Introduction"),
		entry(sectionKey(1, 1), "1.1 History of the Practice"),
		entry(booktree.Key{Chapter: 1, Section: 1, Subsection: 1}, "1.1.1 Early Records"),
		entry(sectionKey(1, 2), "1.2 Scope"),
	}
}

func sampleTree() *booktree.Tree {
	tree := booktree.NewTree()
	tree.Append(chapterKey(1), booktree.Element{Kind: booktree.KindText, Text: "1.0 Introduction"})
	tree.Append(chapterKey(1), booktree.Element{Kind: booktree.KindText, Text: "Opening prose."})
	tree.Append(sectionKey(1, 1), booktree.Element{Kind: booktree.KindText, Text: "Section prose."})
	tree.Append(sectionKey(1, 1), booktree.Element{Kind: booktree.KindTable, Table: [][]string{{"a", "b"}, {"c", "d"}}})
	tree.Append(booktree.Key{Chapter: 1, Section: 1, Subsection: 1}, booktree.Element{Kind: booktree.KindText, Text: "Subsection prose."})
	tree.Append(sectionKey(1, 2), booktree.Element{Kind: booktree.KindText, Text: "Scope prose."})
	return tree
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	root := t.TempDir()
	return config.Config{
		Book: config.Book{
			CanonicalID:      "practical-guide",
			Language:         "eng",
			Title:            "A Practical Guide",
			IsOriginal:       true,
			PicturesLocation: "root",
		},
		ExportDir:      filepath.Join(root, "export"),
		MarkdownDir:    filepath.Join(root, "export_md"),
		EnableMarkdown: false,
	}
}

func TestTitleMapLastWins(t *testing.T) {
	key := sectionKey(1, 1)
	m := TitleMap([]outline.Entry{
		entry(key, "1.1 First Title"),
		entry(key, "1.1 Second Title"),
	})
	if m[key] != "1.1 Second Title" {
		t.Fatalf("got %q", m[key])
	}
}

func TestDocumentOrder(t *testing.T) {
	order := documentOrder(sampleTree(), TitleMap(sampleExpected()))

	wantFiles := []string{
		"01_introduction/00_intro",
		"01_introduction/01_history_of_the_practice",
		"01_introduction/01_01_early_records",
		"01_introduction/02_scope",
	}
	if len(order) != len(wantFiles) {
		t.Fatalf("got %d units, want %d", len(order), len(wantFiles))
	}
	for i, want := range wantFiles {
		got := order[i].DirName + "/" + order[i].FileName
		if got != want {
			t.Fatalf("unit %d = %q, want %q", i, got, want)
		}
	}
}

func TestDocumentOrderFallbackTitles(t *testing.T) {
	tree := booktree.NewTree()
	tree.Append(sectionKey(4, 2), booktree.Element{Kind: booktree.KindText, Text: "x"})
	order := documentOrder(tree, map[booktree.Key]string{})

	if len(order) != 2 {
		t.Fatalf("got %d units, want 2", len(order))
	}
	if order[0].DirName != "04_chapter_4" {
		t.Fatalf("chapter dir = %q", order[0].DirName)
	}
	if order[1].FileName != "02_untitled" {
		t.Fatalf("section file = %q", order[1].FileName)
	}
}

func TestExport(t *testing.T) {
	cfg := testConfig(t)
	exp := New(cfg, discardLogger())
	if err := exp.Export(sampleTree(), sampleExpected()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bookDir := filepath.Join(cfg.ExportDir, "eng", "practical-guide")
	for _, rel := range []string{
		"01_introduction/00_intro.json",
		"01_introduction/01_history_of_the_practice.json",
		"01_introduction/01_01_early_records.json",
		"01_introduction/02_scope.json",
		"_book.toml",
		"index.json",
	} {
		if _, err := os.Stat(filepath.Join(bookDir, rel)); err != nil {
			t.Fatalf("missing %s: %v", rel, err)
		}
	}

	var doc sectionDoc
	readJSON(t, filepath.Join(bookDir, "01_introduction/01_history_of_the_practice.json"), &doc)
	if doc.ID != "practical-guide/01_introduction/01_history_of_the_practice" {
		t.Fatalf("id = %q", doc.ID)
	}
	if doc.Title != "History of the Practice" {
		t.Fatalf("title = %q", doc.Title)
	}
	if doc.SectionID != "introduction/history_of_the_practice" {
		t.Fatalf("section_id = %q", doc.SectionID)
	}
	if len(doc.Links) != 2 {
		t.Fatalf("links = %+v", doc.Links)
	}
	if doc.Links[0].Type != "previous" || doc.Links[0].Target != "practical-guide/01_introduction/00_intro" {
		t.Fatalf("previous link = %+v", doc.Links[0])
	}
	if doc.Links[1].Type != "next" || doc.Links[1].Target != "practical-guide/01_introduction/01_01_early_records" {
		t.Fatalf("next link = %+v", doc.Links[1])
	}
	if len(doc.Content) != 2 {
		t.Fatalf("content = %+v", doc.Content)
	}

	var idx bookIndex
	readJSON(t, filepath.Join(bookDir, "index.json"), &idx)
	if idx.BookTitle != "A Practical Guide" {
		t.Fatalf("book title = %q", idx.BookTitle)
	}
	if idx.TotalChapters != 1 || idx.TotalSections != 3 {
		t.Fatalf("totals = %d chapters, %d sections", idx.TotalChapters, idx.TotalSections)
	}
}

func TestExportFirstAndLastLinks(t *testing.T) {
	cfg := testConfig(t)
	exp := New(cfg, discardLogger())
	if err := exp.Export(sampleTree(), sampleExpected()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bookDir := filepath.Join(cfg.ExportDir, "eng", "practical-guide")

	var first, last sectionDoc
	readJSON(t, filepath.Join(bookDir, "01_introduction/00_intro.json"), &first)
	readJSON(t, filepath.Join(bookDir, "01_introduction/02_scope.json"), &last)

	if len(first.Links) != 1 || first.Links[0].Type != "next" {
		t.Fatalf("first doc links = %+v", first.Links)
	}
	if len(last.Links) != 1 || last.Links[0].Type != "previous" {
		t.Fatalf("last doc links = %+v", last.Links)
	}
}

func TestExportChapterWithoutIntro(t *testing.T) {
	cfg := testConfig(t)
	tree := booktree.NewTree()
	tree.Append(sectionKey(2, 1), booktree.Element{Kind: booktree.KindText, Text: "Only section content."})

	exp := New(cfg, discardLogger())
	expected := []outline.Entry{
		entry(chapterKey(2), "2.0 Immunology"),
		entry(sectionKey(2, 1), "2.1 Vaccination Protocols"),
	}
	if err := exp.Export(tree, expected); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bookDir := filepath.Join(cfg.ExportDir, "eng", "practical-guide")
	if _, err := os.Stat(filepath.Join(bookDir, "02_immunology", "00_intro.json")); !os.IsNotExist(err) {
		t.Fatal("intro file written for a chapter with no content")
	}
	if _, err := os.Stat(filepath.Join(bookDir, "02_immunology", "01_vaccination_protocols.json")); err != nil {
		t.Fatalf("section file missing: %v", err)
	}
}

func TestExportWritesPictures(t *testing.T) {
	cfg := testConfig(t)
	png := append(append([]byte{}, 0x89, 'P', 'N', 'G'), []byte("fake-body")...)
	tree := booktree.NewTree()
	tree.Append(chapterKey(1), booktree.Element{Kind: booktree.KindText, Text: "1.0 Introduction"})
	tree.Append(chapterKey(1), booktree.Element{
		Kind:  booktree.KindImage,
		Image: &booktree.Image{Index: 1, Data: png, ContentType: "image/png", Alt: "herd at pasture"},
	})

	exp := New(cfg, discardLogger())
	if err := exp.Export(tree, sampleExpected()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	picPath := filepath.Join(cfg.ExportDir, "pictures", "eng", "practical-guide", "introduction", "intro", "image_001.png")
	if _, err := os.Stat(picPath); err != nil {
		t.Fatalf("picture missing: %v", err)
	}

	manifestPath := filepath.Join(cfg.ExportDir, "pictures", "eng", "practical-guide", "manifest.json")
	var manifest map[string]manifestEntry
	readJSON(t, manifestPath, &manifest)
	got, ok := manifest["introduction/intro/image_001.png"]
	if !ok {
		t.Fatalf("manifest entry missing: %v", manifest)
	}
	if got.Alt != "herd at pasture" {
		t.Fatalf("alt = %q", got.Alt)
	}

	var doc sectionDoc
	readJSON(t, filepath.Join(cfg.ExportDir, "eng", "practical-guide", "01_introduction", "00_intro.json"), &doc)
	if len(doc.Content) != 2 {
		t.Fatalf("content = %+v", doc.Content)
	}
}

func readJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("unmarshal %s: %v", path, err)
	}
}
