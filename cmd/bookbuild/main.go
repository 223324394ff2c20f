// Command bookbuild converts a scanned book document into a structured
// chapter/section/subsection tree, guided by the document's own table of
// contents, and exports it as JSON and Markdown.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bookbuild",
	Short: "TOC-guided book structure recovery",
	Long: `bookbuild reads a book document (docx, pdf, html, txt), extracts its table
of contents, aligns the noisy body headings against it, and writes the
resulting chapter/section/subsection tree as JSON and Markdown.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, nil))
}
