package docstream

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/dgallion1/bookbuild/internal/booktree"
	"github.com/fumiama/go-docx"
)

// DOCXSource reads .docx files. Body items are walked in document order so
// paragraphs, tables, and inline images come out exactly as they appear on
// the page.
type DOCXSource struct{}

// reCellHeading matches a table cell that carries a section heading, like
// "3.1 Nutrition" or "24.1.6 Dosing".
var reCellHeading = regexp.MustCompile(`^\d+\.\d+(?:\.\d+)?\s+`)

// reCellHeadingLine finds heading starts inside a multi-entry cell.
var reCellHeadingLine = regexp.MustCompile(`(?m)^\d+\.\d+(?:\.\d+)?\s+`)

func (s *DOCXSource) Elements(r io.Reader, filename string) ([]booktree.Element, error) {
	// go-docx needs a ReadSeeker+size, so write to temp file.
	tmp, err := os.CreateTemp("", "bookbuild-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, int64(size))
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	var elems []booktree.Element
	imageIndex := 0

	for _, item := range doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			// Inline images come out before the paragraph text, matching
			// their visual position above the caption line.
			for _, img := range paragraphImages(doc, it, &imageIndex) {
				elems = append(elems, booktree.Element{
					Kind:     booktree.KindImage,
					Image:    img,
					Position: len(elems),
				})
			}
			if text := paragraphText(it); text != "" {
				elems = append(elems, booktree.Element{
					Kind:     booktree.KindText,
					Text:     text,
					Position: len(elems),
				})
			}
		case *docx.Table:
			elems = appendTable(elems, it)
		}
	}

	return elems, nil
}

func paragraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

// paragraphImages extracts the inline drawings of a paragraph as image
// elements, resolving their relationship IDs to media bytes.
func paragraphImages(doc *docx.Docx, para *docx.Paragraph, index *int) []*booktree.Image {
	var images []*booktree.Image
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			d, ok := rc.(*docx.Drawing)
			if !ok {
				continue
			}
			embed, caption := drawingRef(d)
			if embed == "" {
				continue
			}
			data, contentType := resolveMedia(doc, embed)
			if data == nil {
				continue
			}
			*index++
			images = append(images, &booktree.Image{
				Index:       *index,
				Data:        data,
				ContentType: contentType,
				Caption:     caption,
			})
		}
	}
	return images
}

// drawingRef digs the blip relationship ID and docPr caption out of an
// inline or anchored drawing.
func drawingRef(d *docx.Drawing) (embed, caption string) {
	var graphic *docx.AGraphic
	switch {
	case d.Inline != nil:
		graphic = d.Inline.Graphic
		if d.Inline.DocPr != nil {
			caption = d.Inline.DocPr.Name
		}
	case d.Anchor != nil:
		graphic = d.Anchor.Graphic
	}
	if graphic == nil || graphic.GraphicData == nil || graphic.GraphicData.Pic == nil {
		return "", caption
	}
	pic := graphic.GraphicData.Pic
	if pic.BlipFill == nil {
		return "", caption
	}
	return pic.BlipFill.Blip.Embed, caption
}

func resolveMedia(doc *docx.Docx, embed string) (data []byte, contentType string) {
	target, err := doc.ReferTarget(embed)
	if err != nil {
		return nil, ""
	}
	media := doc.Media(strings.TrimPrefix(target, "media/"))
	if media == nil {
		return nil, ""
	}
	return media.Data, contentTypeForName(target)
}

func contentTypeForName(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".png"):
		return "image/png"
	case strings.HasSuffix(lower, ".jpg"), strings.HasSuffix(lower, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(lower, ".gif"):
		return "image/gif"
	case strings.HasSuffix(lower, ".wmf"):
		return "image/x-wmf"
	default:
		return "application/octet-stream"
	}
}

// appendTable emits a table either as one grid element or, when cells carry
// section headings (layout tables used as multi-column section starts), as
// per-entry heading text elements.
func appendTable(elems []booktree.Element, table *docx.Table) []booktree.Element {
	grid := tableGrid(table)

	hasHeadings := false
	for _, row := range grid {
		for _, cell := range row {
			if reCellHeading.MatchString(cell) {
				hasHeadings = true
				break
			}
		}
		if hasHeadings {
			break
		}
	}

	if !hasHeadings {
		if len(grid) > 0 {
			elems = append(elems, booktree.Element{
				Kind:     booktree.KindTable,
				Table:    grid,
				Position: len(elems),
			})
		}
		return elems
	}

	for _, row := range grid {
		for _, cell := range row {
			if !reCellHeading.MatchString(cell) {
				continue
			}
			for _, entry := range splitCellHeadings(cell) {
				elems = append(elems, booktree.Element{
					Kind:     booktree.KindText,
					Text:     entry,
					Position: len(elems),
				})
			}
		}
	}
	return elems
}

func tableGrid(table *docx.Table) [][]string {
	var grid [][]string
	for _, row := range table.TableRows {
		var cells []string
		for _, cell := range row.TableCells {
			var parts []string
			for _, para := range cell.Paragraphs {
				if t := paragraphText(para); t != "" {
					parts = append(parts, t)
				}
			}
			cells = append(cells, strings.Join(parts, "\n"))
		}
		if len(cells) > 0 {
			grid = append(grid, cells)
		}
	}
	return grid
}

// splitCellHeadings splits a cell holding several "N.M Title" entries into
// one string per entry.
func splitCellHeadings(cell string) []string {
	cell = strings.TrimSpace(cell)
	starts := reCellHeadingLine.FindAllStringIndex(cell, -1)
	if len(starts) == 0 {
		return nil
	}
	var out []string
	for i, loc := range starts {
		end := len(cell)
		if i+1 < len(starts) {
			end = starts[i+1][0]
		}
		part := strings.TrimSpace(cell[loc[0]:end])
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
