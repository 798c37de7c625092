// Package scoring holds the relevance models used to rank query results.
package scoring

import (
	"math"

	"github.com/sha1n/termdex/internal/domain"
)

// TermStats carries the statistics a model needs to score one term against one document.
// The engine resolves them, so models never hold a reference to the index.
type TermStats struct {
	Term     string
	Document domain.Document

	// TermFrequency is the raw number of occurrences of Term in Document.
	TermFrequency int

	// DocumentFrequency is the number of documents containing Term. Always > 0.
	DocumentFrequency int

	// DocumentCount is the total number of indexed documents.
	DocumentCount int
}

// Model computes the relevance contribution of a (term, document) pair.
type Model interface {
	CalculateScore(stats TermStats) float64
}

// ModelFunc adapts a plain function to the Model interface.
type ModelFunc func(stats TermStats) float64

// CalculateScore calls f(stats).
func (f ModelFunc) CalculateScore(stats TermStats) float64 {
	return f(stats)
}

// TfIdf scores with a log-dampened term frequency times the inverse document frequency.
type TfIdf struct{}

// NewTfIdf creates a TF-IDF model.
func NewTfIdf() *TfIdf {
	return &TfIdf{}
}

// CalculateScore returns log10(1+tf) * log10(N/df).
// A term found in every document scores exactly 0.
func (m *TfIdf) CalculateScore(stats TermStats) float64 {
	return m.tf(stats) * m.idf(stats)
}

func (m *TfIdf) tf(stats TermStats) float64 {
	return math.Log10(1 + float64(stats.TermFrequency))
}

func (m *TfIdf) idf(stats TermStats) float64 {
	if stats.DocumentFrequency <= 0 {
		return 0
	}
	return math.Log10(float64(stats.DocumentCount) / float64(stats.DocumentFrequency))
}
