package docstream

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/bookbuild/internal/booktree"
	"golang.org/x/net/html"
)

// HTMLSource reads HTML files: block elements become text elements, tables
// become grids, and img tags carry their alt text through (no bytes; HTML
// images are external references).
type HTMLSource struct{}

func (s *HTMLSource) Elements(r io.Reader, filename string) ([]booktree.Element, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var elems []booktree.Element
	imageIndex := 0

	appendText := func(t string) {
		t = strings.TrimSpace(t)
		if t == "" {
			return
		}
		elems = append(elems, booktree.Element{
			Kind:     booktree.KindText,
			Text:     t,
			Position: len(elems),
		})
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "nav", "footer", "header":
				return
			case "table":
				if grid := htmlTableGrid(n); len(grid) > 0 {
					elems = append(elems, booktree.Element{
						Kind:     booktree.KindTable,
						Table:    grid,
						Position: len(elems),
					})
				}
				return
			case "img":
				imageIndex++
				elems = append(elems, booktree.Element{
					Kind: booktree.KindImage,
					Image: &booktree.Image{
						Index: imageIndex,
						Alt:   attrValue(n, "alt"),
					},
					Position: len(elems),
				})
				return
			case "p", "li", "blockquote", "h1", "h2", "h3", "h4", "h5", "h6":
				appendText(textContent(n))
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	if body := findBody(doc); body != nil {
		walk(body)
	} else {
		walk(doc)
	}
	return elems, nil
}

func htmlTableGrid(table *html.Node) [][]string {
	var grid [][]string
	var walkRows func(*html.Node)
	walkRows = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			var cells []string
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
					cells = append(cells, textContent(c))
				}
			}
			if len(cells) > 0 {
				grid = append(grid, cells)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walkRows(c)
		}
	}
	walkRows(table)
	return grid
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func attrValue(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
