// Package docstream turns source documents into the flat, ordered content
// element stream the structural parser consumes. Each source handles one
// file format; the core never touches file formats itself.
package docstream

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/bookbuild/internal/booktree"
)

// Source produces the ordered element stream for one input format.
type Source interface {
	Elements(r io.Reader, filename string) ([]booktree.Element, error)
}

// SupportedExtensions lists file extensions bookbuild can read.
var SupportedExtensions = map[string]bool{
	".docx": true,
	".pdf":  true,
	".html": true,
	".htm":  true,
	".txt":  true,
}

// ForFile returns the appropriate source for a filename.
func ForFile(filename string) (Source, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".docx":
		return &DOCXSource{}, nil
	case ".pdf":
		return &PDFSource{FallbackPdftotext: true}, nil
	case ".html", ".htm":
		return &HTMLSource{}, nil
	case ".txt":
		return &TextSource{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}
