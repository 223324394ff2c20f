package docstream

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/bookbuild/internal/booktree"
)

// TextSource reads plain text files. Each non-blank line becomes one text
// element, matching the line-oriented layout of OCR dumps.
type TextSource struct{}

func (s *TextSource) Elements(r io.Reader, filename string) ([]booktree.Element, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var elems []booktree.Element
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		elems = append(elems, booktree.Element{
			Kind:     booktree.KindText,
			Text:     line,
			Position: len(elems),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return elems, nil
}
