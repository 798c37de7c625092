package index

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sha1n/termdex/internal/domain"
)

// DocumentStore maps document IDs to documents and paths back to IDs.
type DocumentStore struct {
	docs  map[string]domain.Document
	paths map[string]string
}

// NewDocumentStore creates an empty document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		docs:  make(map[string]domain.Document),
		paths: make(map[string]string),
	}
}

// Register records the indexed state of path. An already known path keeps its ID
// and has its length and modification time updated in place; a new path gets a
// freshly generated ID. The second return value reports whether the document is new.
func (s *DocumentStore) Register(path string, length int, modified time.Time) (domain.Document, bool) {
	if id, ok := s.paths[path]; ok {
		doc := s.docs[id]
		doc.Length = length
		doc.ModifiedDate = modified
		s.docs[id] = doc
		return doc, false
	}

	doc := domain.Document{
		ID:           newDocumentID(),
		Path:         path,
		Length:       length,
		ModifiedDate: modified,
	}
	s.put(doc)
	return doc, true
}

// IDOf returns the ID of an indexed path.
func (s *DocumentStore) IDOf(path string) (string, bool) {
	id, ok := s.paths[path]
	return id, ok
}

// Get returns a document by ID.
func (s *DocumentStore) Get(id string) (domain.Document, bool) {
	doc, ok := s.docs[id]
	return doc, ok
}

// Delete removes a document and its reverse path entry.
func (s *DocumentStore) Delete(id string) {
	doc, ok := s.docs[id]
	if !ok {
		return
	}
	delete(s.paths, doc.Path)
	delete(s.docs, id)
}

// All returns every document ordered by path.
func (s *DocumentStore) All() []domain.Document {
	docs := make([]domain.Document, 0, len(s.docs))
	for _, doc := range s.docs {
		docs = append(docs, doc)
	}
	slices.SortFunc(docs, func(a, b domain.Document) int {
		return strings.Compare(a.Path, b.Path)
	})
	return docs
}

// Len returns the number of documents.
func (s *DocumentStore) Len() int {
	return len(s.docs)
}

func (s *DocumentStore) put(doc domain.Document) {
	s.docs[doc.ID] = doc
	s.paths[doc.Path] = doc.ID
}

// newDocumentID returns 32 lowercase hex characters.
func newDocumentID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
