// Package extract provides the per-format text extractors the index engine
// consumes. An extractor turns file content into raw tokens; which extractor
// handles a file is decided by its extension.
package extract

import (
	"errors"
	"io"
	"path/filepath"
	"slices"
	"strings"
)

// ErrBinaryContent is returned when a file registered as text holds binary data.
var ErrBinaryContent = errors.New("binary content")

// TextExtractor turns the content of one file into a sequence of raw tokens.
type TextExtractor interface {
	ExtractTokens(r io.Reader) ([]string, error)
}

// Registry maps file extensions to extractors.
type Registry struct {
	extractors map[string]TextExtractor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{extractors: make(map[string]TextExtractor)}
}

// DefaultRegistry returns a registry with the built-in extractors:
// plain text for .txt and .md, HTML for .html and .xhtml.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	text := NewPlainTextExtractor()
	html := NewHTMLExtractor()
	r.Register(".txt", text)
	r.Register(".md", text)
	r.Register(".html", html)
	r.Register(".xhtml", html)
	return r
}

// Register associates an extension (with or without the leading dot) with an extractor.
// Extensions are matched case-insensitively.
func (r *Registry) Register(ext string, extractor TextExtractor) {
	r.extractors[normalizeExt(ext)] = extractor
}

// Lookup returns the extractor registered for the extension of path.
func (r *Registry) Lookup(path string) (TextExtractor, bool) {
	ext := filepath.Ext(path)
	if ext == "" {
		return nil, false
	}
	extractor, ok := r.extractors[normalizeExt(ext)]
	return extractor, ok
}

// Extensions returns the registered extensions in sorted order.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.extractors))
	for ext := range r.extractors {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// IsBinary checks if the content appears to be binary by looking for null bytes
// in the first 512 bytes. This is a heuristic used by git and other tools.
func IsBinary(content []byte) bool {
	checkLen := min(len(content), 512)

	for i := range checkLen {
		if content[i] == 0 {
			return true
		}
	}
	return false
}
