// Package search exposes a read-only query surface over a loaded index,
// used by the MCP tools of the serve command.
package search

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/sha1n/termdex/internal/config"
	"github.com/sha1n/termdex/internal/domain"
	"github.com/sha1n/termdex/internal/extract"
	"github.com/sha1n/termdex/internal/tokenizer"
)

var (
	// ErrEmptyQuery indicates a query without any indexable term.
	ErrEmptyQuery = errors.New("query has no searchable terms")

	// ErrNotIndexed indicates a read of a path that is not in the index.
	ErrNotIndexed = errors.New("document is not indexed")
)

// Index is the read side of the index engine.
type Index interface {
	Query(query string, n int) []domain.DocumentScore
	GetInfo() domain.IndexInfo
	Document(path string) (domain.Document, bool)
	Path() string
}

// DocumentContent is the content of an indexed document.
type DocumentContent struct {
	Document  domain.Document
	Text      string
	Size      int64
	Truncated bool
}

// Service answers queries against an index that is not mutated while serving.
type Service struct {
	index        Index
	cache        *lru.Cache[string, []domain.DocumentScore]
	maxResults   int
	maxReadBytes int64
}

// NewService creates a search service.
func NewService(index Index, settings *config.Settings) (*Service, error) {
	if index == nil {
		return nil, fmt.Errorf("index cannot be nil")
	}
	if settings == nil {
		return nil, fmt.Errorf("settings cannot be nil")
	}

	cache, err := lru.New[string, []domain.DocumentScore](settings.Query.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create query cache: %w", err)
	}

	return &Service{
		index:        index,
		cache:        cache,
		maxResults:   settings.Query.MaxResults,
		maxReadBytes: settings.Serve.MaxReadBytes,
	}, nil
}

// MaxResults returns the default result limit.
func (s *Service) MaxResults() int {
	return s.maxResults
}

// Query returns up to limit ranked documents. A non-positive limit uses the
// configured default. Rankings are cached by normalized query terms.
func (s *Service) Query(query string, limit int) ([]domain.DocumentScore, error) {
	key := strings.Join(tokenizer.Terms(query), " ")
	if key == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		limit = s.maxResults
	}

	ranked, ok := s.cache.Get(key)
	if !ok {
		ranked = s.index.Query(key, 0)
		s.cache.Add(key, ranked)
	}

	// Copy so callers cannot modify the cached ranking
	return slices.Clone(ranked[:min(limit, len(ranked))]), nil
}

// Info returns index statistics.
func (s *Service) Info() domain.IndexInfo {
	return s.index.GetInfo()
}

// IndexPath returns the snapshot the index was loaded from.
func (s *Service) IndexPath() string {
	return s.index.Path()
}

// ReadDocument returns the content of an indexed document, truncated to the
// configured maximum. Paths that are not in the index cannot be read.
func (s *Service) ReadDocument(path string) (*DocumentContent, error) {
	doc, ok := s.index.Document(filepath.Clean(path))
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotIndexed, path)
	}

	f, err := os.Open(doc.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat document: %w", err)
	}

	content, err := io.ReadAll(io.LimitReader(f, s.maxReadBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	if extract.IsBinary(content) {
		return nil, extract.ErrBinaryContent
	}

	return &DocumentContent{
		Document:  doc,
		Text:      string(content),
		Size:      info.Size(),
		Truncated: info.Size() > int64(len(content)),
	}, nil
}
