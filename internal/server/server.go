// Package server serves an exported book tree over HTTP: the JSON layout as
// static files, and the Markdown rendition rendered to HTML on the fly.
package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/bookbuild/internal/export"
)

// Server exposes one export tree for browsing.
type Server struct {
	router      chi.Router
	exportDir   string
	markdownDir string
	log         *slog.Logger
}

// New creates and configures the HTTP server over the given export
// directories.
func New(exportDir, markdownDir string, log *slog.Logger) *Server {
	s := &Server{
		exportDir:   exportDir,
		markdownDir: markdownDir,
		log:         log,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)
	r.Get("/books", s.handleListBooks)
	r.Handle("/files/*", http.StripPrefix("/files/", http.FileServer(http.Dir(s.exportDir))))
	r.Get("/md/*", s.handleMarkdown)

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

type bookRef struct {
	Language string `json:"language"`
	ID       string `json:"id"`
	Index    string `json:"index"`
}

// handleListBooks walks export/{lang}/{book_id} and lists every book that
// carries an index.json.
func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	var books []bookRef
	langs, err := os.ReadDir(s.exportDir)
	if err != nil && !os.IsNotExist(err) {
		http.Error(w, `{"error":"cannot read export dir"}`, http.StatusInternalServerError)
		return
	}
	for _, lang := range langs {
		if !lang.IsDir() || lang.Name() == "pictures" {
			continue
		}
		ids, err := os.ReadDir(filepath.Join(s.exportDir, lang.Name()))
		if err != nil {
			continue
		}
		for _, id := range ids {
			if !id.IsDir() {
				continue
			}
			idxPath := filepath.Join(s.exportDir, lang.Name(), id.Name(), "index.json")
			if _, err := os.Stat(idxPath); err != nil {
				continue
			}
			books = append(books, bookRef{
				Language: lang.Name(),
				ID:       id.Name(),
				Index:    path.Join("/files", lang.Name(), id.Name(), "index.json"),
			})
		}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(books)
}

// handleMarkdown serves files from the markdown export; .md files are
// rendered to HTML, everything else (pictures, css) is served raw.
func (s *Server) handleMarkdown(w http.ResponseWriter, r *http.Request) {
	rel := chi.URLParam(r, "*")
	clean := filepath.Clean(filepath.FromSlash(rel))
	if clean == "." || strings.HasPrefix(clean, "..") {
		http.NotFound(w, r)
		return
	}
	full := filepath.Join(s.markdownDir, clean)

	if !strings.HasSuffix(clean, ".md") {
		http.ServeFile(w, r, full)
		return
	}

	src, err := os.ReadFile(full)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	body, err := export.RenderHTML(src)
	if err != nil {
		s.log.Error("render markdown", "path", rel, "error", err)
		http.Error(w, "render error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, "<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"></head><body>\n%s</body></html>\n", body)
}
