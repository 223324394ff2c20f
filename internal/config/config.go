package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Book is the per-book metadata, loaded from book_config.toml with
// DOCX-derived fallbacks filled in by the caller.
type Book struct {
	CanonicalID      string `toml:"canonical_id"`
	Language         string `toml:"language"`
	Title            string `toml:"title"`
	IsOriginal       bool   `toml:"is_original"`
	OriginalLanguage string `toml:"original_language"`

	// PicturesLocation controls the exported image layout:
	// root, book, or chapter.
	PicturesLocation string `toml:"pictures_location"`
}

// Config carries everything a build run needs.
type Config struct {
	Book Book

	ExportDir      string
	MarkdownDir    string
	ExceptionsFile string
	EnableMarkdown bool

	// Serve
	Port string

	// PDF
	PDFFallbackPdftotext bool
}

// Load builds the run configuration from defaults, the optional TOML book
// config at bookConfigPath, and environment overrides, in that order.
func Load(bookConfigPath string) (Config, error) {
	cfg := Config{
		Book: Book{
			Language:         "eng",
			IsOriginal:       true,
			PicturesLocation: "root",
		},
		ExportDir:      envOr("BOOKBUILD_EXPORT_DIR", "export"),
		MarkdownDir:    envOr("BOOKBUILD_MARKDOWN_DIR", "export_md"),
		ExceptionsFile: envOr("BOOKBUILD_EXCEPTIONS", "conf/exceptions.conf"),
		EnableMarkdown: envBool("BOOKBUILD_MARKDOWN", true),

		Port: envOr("PORT", "8090"),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if bookConfigPath != "" {
		if _, err := os.Stat(bookConfigPath); err == nil {
			if _, err := toml.DecodeFile(bookConfigPath, &cfg.Book); err != nil {
				return cfg, fmt.Errorf("load %s: %w", bookConfigPath, err)
			}
		}
	}

	if v := os.Getenv("BOOKBUILD_LANGUAGE"); v != "" {
		cfg.Book.Language = v
	}
	if cfg.Book.Language == "" {
		cfg.Book.Language = "eng"
	}
	if cfg.Book.PicturesLocation == "" {
		cfg.Book.PicturesLocation = "root"
	}

	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Book.PicturesLocation {
	case "root", "book", "chapter":
	default:
		return fmt.Errorf("pictures_location must be root, book, or chapter, got %q", c.Book.PicturesLocation)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
