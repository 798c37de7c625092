package extract

import (
	"fmt"
	"html"
	"io"

	"github.com/blevesearch/bleve/v2/analysis"
	blevehtml "github.com/blevesearch/bleve/v2/analysis/char/html"

	"github.com/sha1n/termdex/internal/tokenizer"
)

// HTMLExtractor strips markup before tokenizing.
// Tags are replaced by whitespace so text on either side of a tag never merges.
type HTMLExtractor struct {
	tags analysis.CharFilter
}

// NewHTMLExtractor creates an HTML extractor backed by bleve's html char filter.
func NewHTMLExtractor() *HTMLExtractor {
	// The html char filter constructor ignores both the config and the cache.
	filter, err := blevehtml.CharFilterConstructor(nil, nil)
	if err != nil {
		panic(fmt.Sprintf("html char filter: %v", err))
	}
	return &HTMLExtractor{tags: filter}
}

// ExtractTokens removes tags, decodes entities and tokenizes the remaining text.
func (e *HTMLExtractor) ExtractTokens(r io.Reader) ([]string, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read content: %w", err)
	}
	if IsBinary(content) {
		return nil, ErrBinaryContent
	}

	text := html.UnescapeString(string(e.tags.Filter(content)))
	return tokenizer.Terms(text), nil
}
