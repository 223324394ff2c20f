package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/bookbuild/internal/booktree"
	"github.com/dgallion1/bookbuild/internal/config"
	"github.com/dgallion1/bookbuild/internal/outline"
)

var (
	tocInput      string
	tocBookConfig string
)

var tocCmd = &cobra.Command{
	Use:   "toc",
	Short: "Print the table of contents extracted from a document",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(tocBookConfig)
		if err != nil {
			return err
		}

		elems, err := readElements(tocInput, cfg)
		if err != nil {
			return err
		}

		expected := outline.Extract(elems)
		if len(expected) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no table of contents found")
			return nil
		}

		out := cmd.OutOrStdout()
		for _, entry := range expected {
			indent := ""
			switch entry.Key.Kind() {
			case booktree.KindSection:
				indent = "  "
			case booktree.KindSubsection:
				indent = "    "
			}
			title := entry.Title
			if strings.TrimSpace(title) == "" {
				title = "(untitled)"
			}
			fmt.Fprintf(out, "%s%-10s %s\n", indent, entry.Key.String(), title)
		}
		fmt.Fprintf(out, "\n%d entries\n", len(expected))
		return nil
	},
}

func init() {
	tocCmd.Flags().StringVarP(&tocInput, "input", "i", "original-book.docx", "Source document (docx, pdf, html, txt)")
	tocCmd.Flags().StringVar(&tocBookConfig, "book-config", "book_config.toml", "Book metadata TOML file")
	rootCmd.AddCommand(tocCmd)
}
