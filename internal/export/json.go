// Package export writes a parsed book tree to disk: the sectioned JSON layout
// with navigation links, extracted pictures with a manifest, the _book.toml
// manifest, and an optional Markdown rendition.
package export

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dgallion1/bookbuild/internal/booktree"
	"github.com/dgallion1/bookbuild/internal/config"
	"github.com/dgallion1/bookbuild/internal/outline"
)

// Exporter writes one book. It is not safe for concurrent use; a run is a
// single pass over the tree.
type Exporter struct {
	cfg config.Config
	log *slog.Logger

	manifest map[string]manifestEntry
}

func New(cfg config.Config, log *slog.Logger) *Exporter {
	return &Exporter{cfg: cfg, log: log, manifest: make(map[string]manifestEntry)}
}

type link struct {
	Type   string `json:"type"`
	Target string `json:"target"`
}

// sectionDoc is the JSON document for one structural unit.
type sectionDoc struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	SectionID string `json:"section_id"`
	Links     []link `json:"links"`
	Content   []any  `json:"content"`
}

type paragraphItem struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type tableCell struct {
	Text string `json:"text"`
}

type tableRow struct {
	Cells []tableCell `json:"cells"`
}

type tableItem struct {
	Type string     `json:"type"`
	Rows []tableRow `json:"rows"`
}

type imageItem struct {
	Type    string `json:"type"`
	Path    string `json:"path"`
	Alt     string `json:"alt"`
	Caption string `json:"caption"`
}

type manifestEntry struct {
	Alt     string `json:"alt"`
	Caption string `json:"caption"`
}

// unit is one entry of the export document order: a chapter intro, a
// section, or a subsection, with its resolved title and file naming.
type unit struct {
	Key         booktree.Key
	Title       string
	DirName     string
	FileName    string
	ChapterSlug string
	SectionSlug string
	SubSlug     string
}

// sectionPath is the human-readable pictures path for the unit.
func (u unit) sectionPath() string {
	return SectionID(u.ChapterSlug, u.SectionSlug, u.SubSlug)
}

func (u unit) docID(bookID string) string {
	return bookID + "/" + u.DirName + "/" + u.FileName
}

// TitleMap resolves each confirmed key to its TOC title. Later duplicate
// entries win, matching the one-pass build of the original outline.
func TitleMap(expected []outline.Entry) map[booktree.Key]string {
	m := make(map[booktree.Key]string, len(expected))
	for _, e := range expected {
		m[e.Key] = e.Title
	}
	return m
}

// documentOrder lists every unit of the tree in reading order: per chapter
// the intro first, then sections, each followed by its subsections.
func documentOrder(tree *booktree.Tree, titles map[booktree.Key]string) []unit {
	var order []unit
	for _, ch := range tree.Chapters() {
		chKey := booktree.Key{Chapter: ch, Section: 0, Subsection: booktree.NoSubsection}
		chTitle := titleOr(titles, chKey, fmt.Sprintf("Chapter %d", ch))
		chSlug := Slugify(chTitle)
		dirName := fmt.Sprintf("%02d_%s", ch, chSlug)

		order = append(order, unit{
			Key:         chKey,
			Title:       chTitle,
			DirName:     dirName,
			FileName:    "00_intro",
			ChapterSlug: chSlug,
		})

		for _, sec := range tree.Sections(ch) {
			secKey := booktree.Key{Chapter: ch, Section: sec, Subsection: booktree.NoSubsection}
			secTitle := titleOr(titles, secKey, fmt.Sprintf("%d.%d", ch, sec))
			secSlug := Slugify(secTitle)

			order = append(order, unit{
				Key:         secKey,
				Title:       secTitle,
				DirName:     dirName,
				FileName:    fmt.Sprintf("%02d_%s", sec, secSlug),
				ChapterSlug: chSlug,
				SectionSlug: secSlug,
			})

			for _, sub := range tree.Subsections(ch, sec) {
				subKey := booktree.Key{Chapter: ch, Section: sec, Subsection: sub}
				subTitle := titleOr(titles, subKey, fmt.Sprintf("%d.%d.%d", ch, sec, sub))
				subSlug := Slugify(subTitle)

				order = append(order, unit{
					Key:         subKey,
					Title:       subTitle,
					DirName:     dirName,
					FileName:    fmt.Sprintf("%02d_%02d_%s", sec, sub, subSlug),
					ChapterSlug: chSlug,
					SectionSlug: secSlug,
					SubSlug:     subSlug,
				})
			}
		}
	}
	return order
}

func titleOr(titles map[booktree.Key]string, key booktree.Key, fallback string) string {
	if t, ok := titles[key]; ok {
		return t
	}
	return fallback
}

// Export writes the whole book. The output directories are cleaned first so
// repeated builds of the same input are byte-identical.
func (e *Exporter) Export(tree *booktree.Tree, expected []outline.Entry) error {
	titles := TitleMap(expected)
	order := documentOrder(tree, titles)

	bookID := e.cfg.Book.CanonicalID
	lang := e.cfg.Book.Language
	bookDir := filepath.Join(e.cfg.ExportDir, lang, bookID)

	if err := cleanDir(bookDir); err != nil {
		return err
	}
	if e.cfg.Book.PicturesLocation == "root" {
		if err := os.RemoveAll(filepath.Join(e.cfg.ExportDir, "pictures", lang, bookID)); err != nil {
			return fmt.Errorf("clean pictures dir: %w", err)
		}
	}
	if e.cfg.EnableMarkdown {
		if err := cleanDir(e.cfg.MarkdownDir); err != nil {
			return err
		}
	}

	for i, u := range order {
		node, ok := tree.Lookup(u.Key)
		// A chapter may exist only through its sections; there is no intro
		// file to write then.
		if u.Key.Kind() == booktree.KindChapter && (!ok || len(node.Elements) == 0) {
			continue
		}

		var elements []booktree.Element
		if ok {
			elements = node.Elements
		}

		content, err := e.buildContent(u, elements)
		if err != nil {
			return err
		}

		doc := sectionDoc{
			ID:        u.docID(bookID),
			Title:     CleanTitle(u.Title),
			SectionID: u.sectionPath(),
			Links:     e.links(order, i, bookID),
			Content:   content,
		}

		dir := filepath.Join(bookDir, u.DirName)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create chapter dir: %w", err)
		}
		if err := writeJSON(filepath.Join(dir, u.FileName+".json"), doc); err != nil {
			return err
		}
		e.log.Info("wrote section", "file", u.DirName+"/"+u.FileName+".json", "items", len(content))

		if e.cfg.EnableMarkdown && ok {
			if err := e.writeMarkdown(u, elements); err != nil {
				return err
			}
		}
	}

	if err := e.writeBookTOML(bookDir); err != nil {
		return err
	}
	if err := e.writeIndex(bookDir, tree, titles, order); err != nil {
		return err
	}
	if len(e.manifest) > 0 {
		if err := e.writeManifest(bookDir); err != nil {
			return err
		}
	}
	if e.cfg.EnableMarkdown {
		if err := e.writeMarkdownIndex(tree); err != nil {
			return err
		}
	}
	return nil
}

// buildContent converts a node's elements to JSON content items, saving
// images to the pictures tree as it goes.
func (e *Exporter) buildContent(u unit, elements []booktree.Element) ([]any, error) {
	content := make([]any, 0, len(elements))
	for _, el := range elements {
		switch el.Kind {
		case booktree.KindText:
			content = append(content, paragraphItem{Type: "paragraph", Text: el.Text})
		case booktree.KindTable:
			item := tableItem{Type: "table"}
			for _, row := range el.Table {
				tr := tableRow{Cells: make([]tableCell, 0, len(row))}
				for _, cell := range row {
					tr.Cells = append(tr.Cells, tableCell{Text: cell})
				}
				item.Rows = append(item.Rows, tr)
			}
			content = append(content, item)
		case booktree.KindImage:
			if el.Image == nil || len(el.Image.Data) == 0 {
				continue
			}
			name, err := writeImage(e.picturesDir(u), el.Image.Index, el.Image.Data, el.Image.ContentType)
			if err != nil {
				return nil, err
			}
			logical := "pictures/" + u.sectionPath() + "/" + name
			content = append(content, imageItem{
				Type:    "image",
				Path:    logical,
				Alt:     el.Image.Alt,
				Caption: el.Image.Caption,
			})
			e.manifest[u.sectionPath()+"/"+name] = manifestEntry{
				Alt:     el.Image.Alt,
				Caption: el.Image.Caption,
			}
		}
	}
	return content, nil
}

// picturesDir resolves the physical pictures directory for a unit under the
// configured layout.
func (e *Exporter) picturesDir(u unit) string {
	lang := e.cfg.Book.Language
	bookID := e.cfg.Book.CanonicalID
	sectionPath := filepath.FromSlash(u.sectionPath())
	switch e.cfg.Book.PicturesLocation {
	case "book":
		return filepath.Join(e.cfg.ExportDir, lang, bookID, "pictures", sectionPath)
	case "chapter":
		return filepath.Join(e.cfg.ExportDir, lang, bookID, u.ChapterSlug, "pictures")
	default: // root
		return filepath.Join(e.cfg.ExportDir, "pictures", lang, bookID, sectionPath)
	}
}

func (e *Exporter) links(order []unit, i int, bookID string) []link {
	links := []link{}
	if i > 0 {
		links = append(links, link{Type: "previous", Target: order[i-1].docID(bookID)})
	}
	if i < len(order)-1 {
		links = append(links, link{Type: "next", Target: order[i+1].docID(bookID)})
	}
	return links
}

// writeBookTOML writes the _book.toml manifest.
func (e *Exporter) writeBookTOML(bookDir string) error {
	b := e.cfg.Book
	lines := fmt.Sprintf("canonical_id = %q\nlanguage = %q\ntitle = %q\nis_original = %t\n",
		b.CanonicalID, b.Language, b.Title, b.IsOriginal)
	if !b.IsOriginal && b.OriginalLanguage != "" {
		lines += fmt.Sprintf("original_language = %q\n", b.OriginalLanguage)
	}
	if err := os.WriteFile(filepath.Join(bookDir, "_book.toml"), []byte(lines), 0o644); err != nil {
		return fmt.Errorf("write _book.toml: %w", err)
	}
	return nil
}

type indexSection struct {
	SectionNumber int    `json:"section_number"`
	Title         string `json:"title"`
	Path          string `json:"path"`
}

type indexChapter struct {
	Number        int            `json:"number"`
	Title         string         `json:"title"`
	Sections      []indexSection `json:"sections"`
	TotalSections int            `json:"total_sections"`
}

type bookIndex struct {
	BookTitle     string         `json:"book_title"`
	Chapters      []indexChapter `json:"chapters"`
	TotalChapters int            `json:"total_chapters"`
	TotalSections int            `json:"total_sections"`
}

// writeIndex writes index.json, the navigation skeleton the browsing server
// reads.
func (e *Exporter) writeIndex(bookDir string, tree *booktree.Tree, titles map[booktree.Key]string, order []unit) error {
	paths := make(map[booktree.Key]string, len(order))
	for _, u := range order {
		paths[u.Key] = u.DirName + "/" + u.FileName + ".json"
	}

	idx := bookIndex{BookTitle: e.cfg.Book.Title}
	for _, ch := range tree.Chapters() {
		chKey := booktree.Key{Chapter: ch, Section: 0, Subsection: booktree.NoSubsection}
		chapter := indexChapter{
			Number: ch,
			Title:  titleOr(titles, chKey, fmt.Sprintf("Chapter %d", ch)),
		}
		chapter.Sections = append(chapter.Sections, indexSection{
			SectionNumber: 0,
			Title:         chapter.Title,
			Path:          paths[chKey],
		})
		for _, sec := range tree.Sections(ch) {
			secKey := booktree.Key{Chapter: ch, Section: sec, Subsection: booktree.NoSubsection}
			chapter.Sections = append(chapter.Sections, indexSection{
				SectionNumber: sec,
				Title:         titleOr(titles, secKey, fmt.Sprintf("%d.%d", ch, sec)),
				Path:          paths[secKey],
			})
		}
		chapter.TotalSections = len(chapter.Sections)
		idx.TotalSections += chapter.TotalSections
		idx.Chapters = append(idx.Chapters, chapter)
	}
	idx.TotalChapters = len(idx.Chapters)

	return writeJSON(filepath.Join(bookDir, "index.json"), idx)
}

func (e *Exporter) writeManifest(bookDir string) error {
	var dir string
	if e.cfg.Book.PicturesLocation == "root" {
		dir = filepath.Join(e.cfg.ExportDir, "pictures", e.cfg.Book.Language, e.cfg.Book.CanonicalID)
	} else {
		dir = filepath.Join(bookDir, "pictures")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create manifest dir: %w", err)
	}
	return writeJSON(filepath.Join(dir, "manifest.json"), e.manifest)
}

func cleanDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("clean %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
