package extract

import (
	"fmt"
	"io"

	"github.com/sha1n/termdex/internal/tokenizer"
)

// PlainTextExtractor handles plain text formats.
type PlainTextExtractor struct{}

// NewPlainTextExtractor creates a plain text extractor.
func NewPlainTextExtractor() *PlainTextExtractor {
	return &PlainTextExtractor{}
}

// ExtractTokens reads the whole content and tokenizes it.
func (e *PlainTextExtractor) ExtractTokens(r io.Reader) ([]string, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read content: %w", err)
	}
	if IsBinary(content) {
		return nil, ErrBinaryContent
	}
	return tokenizer.Terms(string(content)), nil
}
