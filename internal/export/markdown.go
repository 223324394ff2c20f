package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/bookbuild/internal/booktree"
)

// writeMarkdown renders one unit as a Markdown file with breadcrumb
// navigation, under export_md/chapter_NN/.
func (e *Exporter) writeMarkdown(u unit, elements []booktree.Element) error {
	chapterDir := fmt.Sprintf("chapter_%02d", u.Key.Chapter)
	dir := filepath.Join(e.cfg.MarkdownDir, chapterDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create markdown dir: %w", err)
	}

	var name string
	switch u.Key.Kind() {
	case booktree.KindChapter:
		name = "intro.md"
	case booktree.KindSection:
		name = fmt.Sprintf("section_%02d.md", u.Key.Section)
	default:
		name = fmt.Sprintf("section_%02d_%02d.md", u.Key.Section, u.Key.Subsection)
	}

	var b strings.Builder
	b.WriteString("<link rel=\"stylesheet\" href=\"../style.css\">\n\n")

	nav := []string{"[Home](../README.md)", fmt.Sprintf("[Chapter %d](intro.md)", u.Key.Chapter)}
	if u.Key.Kind() != booktree.KindChapter {
		nav = append(nav, fmt.Sprintf("Section %d", u.Key.Section))
	}
	if u.Key.Kind() == booktree.KindSubsection {
		nav = append(nav, fmt.Sprintf("Subsection %d", u.Key.Subsection))
	}
	b.WriteString(strings.Join(nav, " → "))
	b.WriteString("\n\n---\n\n")

	switch u.Key.Kind() {
	case booktree.KindChapter:
		fmt.Fprintf(&b, "# Chapter %d: %s\n\n", u.Key.Chapter, CleanTitle(u.Title))
	case booktree.KindSection:
		fmt.Fprintf(&b, "# %d.%d %s\n\n", u.Key.Chapter, u.Key.Section, CleanTitle(u.Title))
	default:
		fmt.Fprintf(&b, "# %d.%d.%d %s\n\n", u.Key.Chapter, u.Key.Section, u.Key.Subsection, CleanTitle(u.Title))
	}

	for _, el := range elements {
		switch el.Kind {
		case booktree.KindText:
			b.WriteString(el.Text)
			b.WriteString("\n\n")
		case booktree.KindTable:
			if md := markdownTable(el.Table); md != "" {
				b.WriteString(md)
				b.WriteString("\n\n")
			}
		case booktree.KindImage:
			if el.Image == nil || len(el.Image.Data) == 0 {
				continue
			}
			picDir := filepath.Join(dir, "pictures")
			fileName, err := writeImage(picDir, el.Image.Index, el.Image.Data, el.Image.ContentType)
			if err != nil {
				return err
			}
			fmt.Fprintf(&b, "![Image](pictures/%s)\n\n", fileName)
		}
	}

	b.WriteString("\n---\n\n")
	b.WriteString("<div class=\"nav-links\">\n")
	b.WriteString("<a href=\"../README.md\">← Back to Index</a>\n")
	fmt.Fprintf(&b, "<a href=\"intro.md\">Chapter %d Home</a>\n", u.Key.Chapter)
	b.WriteString("</div>\n")

	if err := os.WriteFile(filepath.Join(dir, name), []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}
	return nil
}

// markdownTable renders a cell grid as a pipe table, first row as header.
func markdownTable(grid [][]string) string {
	if len(grid) == 0 {
		return ""
	}
	var lines []string
	for i, row := range grid {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = strings.ReplaceAll(strings.TrimSpace(cell), "\n", " ")
		}
		lines = append(lines, "| "+strings.Join(cells, " | ")+" |")
		if i == 0 {
			seps := make([]string, len(row))
			for j := range seps {
				seps[j] = "---"
			}
			lines = append(lines, "| "+strings.Join(seps, " | ")+" |")
		}
	}
	return strings.Join(lines, "\n")
}

// writeMarkdownIndex writes README.md and style.css for the Markdown tree.
func (e *Exporter) writeMarkdownIndex(tree *booktree.Tree) error {
	var b strings.Builder
	b.WriteString("# Book Content - Markdown Format\n\n")
	b.WriteString("This directory contains the book content in Markdown format, generated from the source document.\n\n")
	b.WriteString("## Chapters\n\n")

	for _, ch := range tree.Chapters() {
		fmt.Fprintf(&b, "### [Chapter %d](chapter_%02d/intro.md)\n\n", ch, ch)
		for _, sec := range tree.Sections(ch) {
			fmt.Fprintf(&b, "- [%d.%d](chapter_%02d/section_%02d.md)\n", ch, sec, ch, sec)
			for _, sub := range tree.Subsections(ch, sec) {
				fmt.Fprintf(&b, "  - [%d.%d.%d](chapter_%02d/section_%02d_%02d.md)\n", ch, sec, sub, ch, sec, sub)
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("---\n\nOpen any `.md` file in a Markdown viewer, or run `bookbuild serve` for the browsable version.\n")

	if err := os.WriteFile(filepath.Join(e.cfg.MarkdownDir, "README.md"), []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write markdown index: %w", err)
	}
	if err := os.WriteFile(filepath.Join(e.cfg.MarkdownDir, "style.css"), []byte(styleCSS), 0o644); err != nil {
		return fmt.Errorf("write style.css: %w", err)
	}
	return nil
}

const styleCSS = `body {
    font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif;
    line-height: 1.6;
    color: #2c3e50;
    max-width: 800px;
    margin: 0 auto;
    padding: 2rem;
}

h1 {
    border-bottom: 3px solid #3498db;
    padding-bottom: 0.5rem;
}

table {
    border-collapse: collapse;
    width: 100%;
    margin: 1.5rem 0;
}

th {
    background-color: #2c3e50;
    color: white;
    padding: 0.75rem;
    text-align: left;
}

td {
    padding: 0.75rem;
    border: 1px solid #e0e0e0;
}

tr:nth-child(even) {
    background-color: #f9f9f9;
}

.nav-links {
    display: flex;
    justify-content: space-between;
    margin: 2rem 0;
    padding: 1rem;
    background-color: #f5f5f5;
    border-radius: 5px;
}

img {
    max-width: 100%;
}
`
