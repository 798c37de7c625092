package index

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sha1n/termdex/internal/domain"
)

// SnapshotFilename is the default snapshot filename.
const SnapshotFilename = "index.json"

// snapshot is the persisted shape of the index. Pointers distinguish a missing
// or null section from an empty one.
type snapshot struct {
	Terms *map[string]map[string]int `json:"_terms"`
	Files *map[string]domain.Document `json:"_files"`
}

// loadSnapshot reads a snapshot from disk. A missing or empty file yields an empty index.
func loadSnapshot(path string) (*Postings, *DocumentStore, error) {
	postings := NewPostings()
	docs := NewDocumentStore()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return postings, docs, nil
		}
		return nil, nil, fmt.Errorf("failed to read index file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return postings, docs, nil
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, nil, corruptIndex(path, err.Error())
	}
	if snap.Terms == nil || *snap.Terms == nil {
		return nil, nil, corruptIndex(path, `missing "_terms"`)
	}
	if snap.Files == nil || *snap.Files == nil {
		return nil, nil, corruptIndex(path, `missing "_files"`)
	}

	for id, doc := range *snap.Files {
		if doc.Path == "" {
			return nil, nil, corruptIndex(path, fmt.Sprintf("document %s has no path", id))
		}
		if doc.Length < 0 {
			return nil, nil, corruptIndex(path, fmt.Sprintf("document %s has negative length %d", id, doc.Length))
		}
		if _, dup := docs.IDOf(doc.Path); dup {
			return nil, nil, corruptIndex(path, fmt.Sprintf("duplicate document path %s", doc.Path))
		}
		doc.ID = id
		docs.put(doc)
	}

	lengths := make(map[string]int, docs.Len())
	for term, postingsOfTerm := range *snap.Terms {
		for id, count := range postingsOfTerm {
			if _, ok := docs.Get(id); !ok {
				return nil, nil, corruptIndex(path, fmt.Sprintf("term %q references unknown document %s", term, id))
			}
			if count <= 0 {
				return nil, nil, corruptIndex(path, fmt.Sprintf("term %q has non-positive frequency %d", term, count))
			}
			postings.SetFrequency(term, id, count)
			lengths[id] += count
		}
	}

	// A document's length is the sum of its term frequencies
	for id, doc := range docs.docs {
		if lengths[id] != doc.Length {
			return nil, nil, corruptIndex(path, fmt.Sprintf("document %s has length %d but %d indexed terms", id, doc.Length, lengths[id]))
		}
	}

	return postings, docs, nil
}

// saveSnapshot writes the snapshot to disk atomically.
// Uses write-to-temp + rename so an interrupted save never leaves a truncated index.
func saveSnapshot(path string, postings *Postings, docs *DocumentStore) error {
	files := make(map[string]domain.Document, docs.Len())
	for id, doc := range docs.docs {
		files[id] = doc
	}
	snap := snapshot{Terms: &postings.terms, Files: &files}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}

	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}

	// Write to temporary file in the same directory so the rename stays on one filesystem
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create index temp file: %w", err)
	}
	tempPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tempPath) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("failed to write index temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("failed to sync index temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("failed to close index temp file: %w", err)
	}
	if err := os.Chmod(tempPath, 0644); err != nil {
		cleanup()
		return fmt.Errorf("failed to set index file mode: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tempPath, path); err != nil {
		cleanup()
		return fmt.Errorf("failed to rename index file: %w", err)
	}

	return nil
}

func corruptIndex(path, reason string) error {
	return fmt.Errorf("%w: %s is invalid (%s); please try re-creating the index", ErrCorruptIndex, path, reason)
}
