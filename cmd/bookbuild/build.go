package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/dgallion1/bookbuild/internal/align"
	"github.com/dgallion1/bookbuild/internal/booktree"
	"github.com/dgallion1/bookbuild/internal/config"
	"github.com/dgallion1/bookbuild/internal/docstream"
	"github.com/dgallion1/bookbuild/internal/export"
	"github.com/dgallion1/bookbuild/internal/outline"
)

var (
	buildInput      string
	buildBookConfig string
	buildExceptions string
	buildExportDir  string
	buildNoMarkdown bool
)

var (
	summaryStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Parse a book document and export its structure",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()

		cfg, err := config.Load(buildBookConfig)
		if err != nil {
			return err
		}
		if buildExceptions != "" {
			cfg.ExceptionsFile = buildExceptions
		}
		if buildExportDir != "" {
			cfg.ExportDir = buildExportDir
		}
		if buildNoMarkdown {
			cfg.EnableMarkdown = false
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		elems, err := readElements(buildInput, cfg)
		if err != nil {
			return err
		}
		log.Info("loaded document", "file", buildInput, "elements", len(elems))

		fillBookDefaults(&cfg.Book, buildInput, elems)

		exceptions, err := outline.LoadExceptions(cfg.ExceptionsFile)
		if err != nil {
			return err
		}
		if len(exceptions) > 0 {
			log.Info("loaded exceptions", "count", len(exceptions))
		}

		expected := outline.Extract(elems)
		log.Info("extracted outline", "entries", len(expected))

		body := elems[outline.TOCEnd(elems)+1:]
		aligner := align.New(expected, exceptions)
		tree := aligner.Run(body)
		stats := aligner.Stats()
		log.Info("aligned structure",
			"confirmed", stats.Accepted(),
			"exact", stats.Exact,
			"relocated", stats.Relocated,
			"orphans", stats.Orphans,
			"filtered", stats.Filtered,
			"rejected", stats.Rejected,
			"chapters", len(tree.Chapters()),
		)

		if err := export.New(cfg, log).Export(tree, expected); err != nil {
			return err
		}

		printSummary(cmd, cfg, tree, expected, stats)
		return nil
	},
}

func init() {
	buildCmd.Flags().StringVarP(&buildInput, "input", "i", "original-book.docx", "Source document (docx, pdf, html, txt)")
	buildCmd.Flags().StringVar(&buildBookConfig, "book-config", "book_config.toml", "Book metadata TOML file")
	buildCmd.Flags().StringVar(&buildExceptions, "exceptions", "", "Numbering exceptions file (wrong = correct lines)")
	buildCmd.Flags().StringVarP(&buildExportDir, "out", "o", "", "Export directory (default \"export\")")
	buildCmd.Flags().BoolVar(&buildNoMarkdown, "no-markdown", false, "Skip the Markdown export")
	rootCmd.AddCommand(buildCmd)
}

func readElements(input string, cfg config.Config) ([]booktree.Element, error) {
	source, err := docstream.ForFile(input)
	if err != nil {
		return nil, err
	}
	if pdf, ok := source.(*docstream.PDFSource); ok {
		pdf.FallbackPdftotext = cfg.PDFFallbackPdftotext
	}
	f, err := os.Open(input)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()
	return source.Elements(f, input)
}

// fillBookDefaults fills the title and canonical id from the document when
// the book config does not set them: the first substantial text element
// stands in for the title.
func fillBookDefaults(book *config.Book, input string, elems []booktree.Element) {
	if book.Title == "" {
		seen := 0
		for _, el := range elems {
			if el.Kind != booktree.KindText {
				continue
			}
			seen++
			if seen > 10 {
				break
			}
			text := strings.TrimSpace(el.Text)
			if len(text) > 3 && !strings.HasPrefix(strings.ToLower(text), "by ") {
				book.Title = text
				break
			}
		}
	}
	if book.Title == "" {
		book.Title = "Untitled Book"
	}
	if book.CanonicalID == "" {
		book.CanonicalID = export.Slugify(book.Title)
	}
	if book.CanonicalID == "" || book.CanonicalID == "untitled" {
		book.CanonicalID = "unknown-book"
	}
}

func printSummary(cmd *cobra.Command, cfg config.Config, tree *booktree.Tree, expected []outline.Entry, stats align.Stats) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)\n", cfg.Book.Title, cfg.Book.CanonicalID)
	fmt.Fprintf(&b, "TOC entries:  %d\n", len(expected))
	fmt.Fprintf(&b, "Confirmed:    %s\n", successStyle.Render(fmt.Sprintf("%d", stats.Accepted())))
	if stats.Rejected > 0 || stats.Filtered > 0 {
		fmt.Fprintf(&b, "Dropped:      %s\n", warnStyle.Render(fmt.Sprintf("%d rejected, %d filtered", stats.Rejected, stats.Filtered)))
	}
	fmt.Fprintf(&b, "Chapters:     %d\n", len(tree.Chapters()))
	fmt.Fprintf(&b, "Output:       %s", cfg.ExportDir)
	fmt.Fprintln(cmd.OutOrStdout(), summaryStyle.Render(b.String()))
}
