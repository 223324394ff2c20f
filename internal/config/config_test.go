package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Book.Language != "eng" {
		t.Fatalf("language = %q", cfg.Book.Language)
	}
	if !cfg.Book.IsOriginal {
		t.Fatal("is_original should default to true")
	}
	if cfg.Book.PicturesLocation != "root" {
		t.Fatalf("pictures_location = %q", cfg.Book.PicturesLocation)
	}
	if cfg.ExportDir != "export" || cfg.MarkdownDir != "export_md" {
		t.Fatalf("dirs = %q, %q", cfg.ExportDir, cfg.MarkdownDir)
	}
	if !cfg.EnableMarkdown {
		t.Fatal("markdown export should default on")
	}
	if cfg.Port != "8090" {
		t.Fatalf("port = %q", cfg.Port)
	}
}

func TestLoadBookConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "book_config.toml")
	toml := `canonical_id = "practical-guide"
language = "spa"
title = "Guía Práctica"
is_original = false
original_language = "eng"
pictures_location = "chapter"
`
	if err := os.WriteFile(path, []byte(toml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Book.CanonicalID != "practical-guide" {
		t.Fatalf("canonical_id = %q", cfg.Book.CanonicalID)
	}
	if cfg.Book.Language != "spa" {
		t.Fatalf("language = %q", cfg.Book.Language)
	}
	if cfg.Book.Title != "Guía Práctica" {
		t.Fatalf("title = %q", cfg.Book.Title)
	}
	if cfg.Book.IsOriginal {
		t.Fatal("is_original should be false")
	}
	if cfg.Book.OriginalLanguage != "eng" {
		t.Fatalf("original_language = %q", cfg.Book.OriginalLanguage)
	}
	if cfg.Book.PicturesLocation != "chapter" {
		t.Fatalf("pictures_location = %q", cfg.Book.PicturesLocation)
	}
}

func TestLoadMissingBookConfig(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("a missing book config must not be an error: %v", err)
	}
	if cfg.Book.Language != "eng" {
		t.Fatalf("language = %q", cfg.Book.Language)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("BOOKBUILD_EXPORT_DIR", "/tmp/out")
	t.Setenv("BOOKBUILD_MARKDOWN", "false")
	t.Setenv("BOOKBUILD_LANGUAGE", "fra")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ExportDir != "/tmp/out" {
		t.Fatalf("export dir = %q", cfg.ExportDir)
	}
	if cfg.EnableMarkdown {
		t.Fatal("markdown export should be off")
	}
	if cfg.Book.Language != "fra" {
		t.Fatalf("language = %q", cfg.Book.Language)
	}
}

func TestValidate(t *testing.T) {
	cfg := Config{Book: Book{PicturesLocation: "root"}}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg.Book.PicturesLocation = "elsewhere"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for bad pictures_location")
	}
}
