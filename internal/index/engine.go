// Package index implements the inverted index engine: document registration,
// term postings, ranked retrieval and JSON snapshot persistence.
//
// An Engine is not safe for concurrent mutation, and the snapshot file is not
// locked: running several processes against one index file is unsupported.
package index

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"syscall"

	"github.com/sha1n/termdex/internal/domain"
	"github.com/sha1n/termdex/internal/extract"
	"github.com/sha1n/termdex/internal/scoring"
	"github.com/sha1n/termdex/internal/tokenizer"
)

// Engine owns the inverted index and the document store.
type Engine struct {
	path       string
	model      scoring.Model
	extractors *extract.Registry
	postings   *Postings
	docs       *DocumentStore
}

// Open loads the snapshot at path, or starts an empty index when the file is
// missing or empty. A malformed snapshot fails with ErrCorruptIndex.
func Open(path string, model scoring.Model, extractors *extract.Registry) (*Engine, error) {
	if model == nil {
		return nil, fmt.Errorf("scoring model cannot be nil")
	}
	if extractors == nil {
		return nil, fmt.Errorf("extractor registry cannot be nil")
	}

	postings, docs, err := loadSnapshot(path)
	if err != nil {
		return nil, err
	}

	return &Engine{
		path:       path,
		model:      model,
		extractors: extractors,
		postings:   postings,
		docs:       docs,
	}, nil
}

// Path returns the snapshot path.
func (e *Engine) Path() string {
	return e.path
}

// Save writes the whole index to the snapshot path atomically.
func (e *Engine) Save() error {
	return saveSnapshot(e.path, e.postings, e.docs)
}

// Add indexes a file, or every file below a directory.
// Files with no registered extractor are skipped, and per-file failures are
// reported without aborting the batch.
func (e *Engine) Add(path string) (Report, error) {
	abs, info, err := resolve(path)
	if err != nil {
		return Report{}, err
	}

	var report Report
	if info.IsDir() {
		e.addDirectory(abs, &report)
	} else {
		e.addFile(abs, info, &report)
	}

	slog.Info("Add complete", "path", abs, "indexed", len(report.Indexed), "skipped", len(report.Skipped), "failed", len(report.Failed))
	return report, nil
}

// Remove drops a file, or every indexed document below a directory, from the index.
// Paths that were never indexed are ignored; paths that do not exist fail with ErrInvalidPath.
func (e *Engine) Remove(path string) (Report, error) {
	abs, info, err := resolve(path)
	if err != nil {
		return Report{}, err
	}

	var report Report
	if info.IsDir() {
		for _, doc := range e.docs.All() {
			if isBelow(abs, doc.Path) {
				e.removeDocument(doc, &report)
			}
		}
	} else if id, ok := e.docs.IDOf(abs); ok {
		doc, _ := e.docs.Get(id)
		e.removeDocument(doc, &report)
	}

	slog.Info("Remove complete", "path", abs, "removed", len(report.Removed))
	return report, nil
}

// Prune removes every document whose file no longer exists.
// Returns the number of documents removed.
func (e *Engine) Prune() int {
	var report Report
	for _, doc := range e.docs.All() {
		if _, err := os.Stat(doc.Path); isMissing(err) {
			e.removeDocument(doc, &report)
		}
	}

	slog.Info("Prune complete", "removed", len(report.Removed))
	return len(report.Removed)
}

// Refresh re-indexes every document whose file changed since it was indexed.
// Missing files are left for Prune.
func (e *Engine) Refresh() Report {
	var report Report
	for _, doc := range e.docs.All() {
		info, err := os.Stat(doc.Path)
		if err != nil {
			if !isMissing(err) {
				e.fail(&report, doc.Path, err)
			}
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}
		if info.ModTime().UTC().After(doc.ModifiedDate) {
			e.addFile(doc.Path, info, &report)
		}
	}

	slog.Info("Refresh complete", "reindexed", len(report.Indexed), "failed", len(report.Failed))
	return report
}

// CalculateDocumentScores ranks every document containing at least one query term.
//
// Each occurrence of an indexed query term adds the model score of that term to
// every document in its postings. Accumulated scores are divided by the document
// length. Results are sorted by score descending, then by path ascending.
func (e *Engine) CalculateDocumentScores(query string) []domain.DocumentScore {
	documentCount := e.docs.Len()
	scores := make(map[string]float64)

	for term := range tokenizer.ExtractTerms(query) {
		postings := e.postings.Postings(term)
		df := len(postings)
		if df == 0 {
			continue
		}
		for id, tf := range postings {
			doc, ok := e.docs.Get(id)
			if !ok {
				continue
			}
			scores[id] += e.model.CalculateScore(scoring.TermStats{
				Term:              term,
				Document:          doc,
				TermFrequency:     tf,
				DocumentFrequency: df,
				DocumentCount:     documentCount,
			})
		}
	}

	results := make([]domain.DocumentScore, 0, len(scores))
	for id, score := range scores {
		doc, _ := e.docs.Get(id)
		if doc.Length > 0 {
			score /= float64(doc.Length)
		}
		results = append(results, domain.DocumentScore{Path: doc.Path, Score: score})
	}

	slices.SortFunc(results, func(a, b domain.DocumentScore) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return strings.Compare(a.Path, b.Path)
	})
	return results
}

// Query returns at most n ranked results. A non-positive n returns all of them.
func (e *Engine) Query(query string, n int) []domain.DocumentScore {
	results := e.CalculateDocumentScores(query)
	if n > 0 && len(results) > n {
		results = results[:n]
	}
	return results
}

// GetInfo returns index statistics.
func (e *Engine) GetInfo() domain.IndexInfo {
	return domain.IndexInfo{
		DocumentCount: e.docs.Len(),
		TermCount:     e.postings.Len(),
	}
}

// TermFrequency returns the number of times term occurs in the document indexed for path.
func (e *Engine) TermFrequency(term, path string) int {
	id, ok := e.docs.IDOf(path)
	if !ok {
		return 0
	}
	return e.postings.TermFrequency(term, id)
}

// DocumentFrequency returns the number of documents containing term.
func (e *Engine) DocumentFrequency(term string) int {
	return e.postings.DocumentFrequency(term)
}

// Document returns the document indexed for path.
func (e *Engine) Document(path string) (domain.Document, bool) {
	id, ok := e.docs.IDOf(path)
	if !ok {
		return domain.Document{}, false
	}
	return e.docs.Get(id)
}

// Documents returns every indexed document ordered by path.
func (e *Engine) Documents() []domain.Document {
	return e.docs.All()
}

func (e *Engine) addDirectory(root string, report *Report) {
	// A trailing separator makes WalkDir follow root when it is a symlink.
	// Entries are still reported under the link path.
	walkRoot := root
	if !strings.HasSuffix(walkRoot, string(filepath.Separator)) {
		walkRoot += string(filepath.Separator)
	}

	// The callback never returns an error, so neither does WalkDir.
	_ = filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			e.fail(report, path, err)
			return nil
		}
		if d.IsDir() {
			return nil
		}

		// Stat follows symlinks so linked files are indexed under their link path
		info, err := os.Stat(path)
		if err != nil {
			e.fail(report, path, err)
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		e.addFile(path, info, report)
		return nil
	})
}

func (e *Engine) addFile(path string, info fs.FileInfo, report *Report) {
	extractor, ok := e.extractors.Lookup(path)
	if !ok {
		slog.Warn("Skipped file with unknown extension", "path", path, "extension", filepath.Ext(path))
		report.Skipped = append(report.Skipped, FileError{Path: path, Err: ErrUnsupportedFormat})
		return
	}

	tokens, err := extractFile(extractor, path)
	if err != nil {
		e.fail(report, path, err)
		return
	}

	counts := make(map[string]int)
	for _, token := range tokens {
		counts[token]++
	}

	doc, created := e.docs.Register(path, len(tokens), info.ModTime().UTC())
	if !created {
		// Re-indexing replaces the previous counts entirely
		e.postings.RemoveDocument(doc.ID)
	}
	for term, count := range counts {
		e.postings.SetFrequency(term, doc.ID, count)
	}

	slog.Debug("Indexed", "path", path, "length", doc.Length, "terms", len(counts), "new", created)
	report.Indexed = append(report.Indexed, path)
}

func (e *Engine) removeDocument(doc domain.Document, report *Report) {
	e.postings.RemoveDocument(doc.ID)
	e.docs.Delete(doc.ID)
	slog.Debug("Removed from index", "path", doc.Path)
	report.Removed = append(report.Removed, doc.Path)
}

func (e *Engine) fail(report *Report, path string, err error) {
	slog.Error("Failed to process file", "path", path, "error", err)
	report.Failed = append(report.Failed, FileError{Path: path, Err: err})
}

func extractFile(extractor extract.TextExtractor, path string) (tokens []string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return extractor.ExtractTokens(f)
}

// resolve returns the absolute form of path and its file info. Only regular
// files and directories are accepted.
func resolve(path string) (string, fs.FileInfo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", nil, fmt.Errorf("%s is %w", path, ErrInvalidPath)
	}
	info, err := os.Stat(abs)
	if err != nil || !(info.IsDir() || info.Mode().IsRegular()) {
		return "", nil, fmt.Errorf("%s is %w", path, ErrInvalidPath)
	}
	return abs, info, nil
}

// isBelow reports whether path lies strictly inside dir. Both must be clean absolute paths.
func isBelow(dir, path string) bool {
	prefix := dir
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(path, prefix)
}

// isMissing reports whether a stat error means the path is gone.
func isMissing(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}
