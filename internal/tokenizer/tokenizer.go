// Package tokenizer turns raw text into normalized index terms.
//
// The same tokenizer is used for documents and queries so both sides of a
// lookup agree on term normalization.
package tokenizer

import (
	"iter"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinTermLength is the length a token must exceed to become a term.
// Shorter tokens (including every punctuation token) are dropped.
const MinTermLength = 2

// ExtractTerms returns a lazy sequence of lowercased terms found in text.
//
// A letter starts a token that absorbs the following letters and digits,
// a digit starts a token of digits only, and any other rune is a token on its
// own. So "abc123" is one term while "123abc" yields "123" and "abc".
// The sequence can be ranged over repeatedly with identical results.
func ExtractTerms(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		pos := 0
		for pos < len(text) {
			pos = skipWhile(text, pos, unicode.IsSpace)
			if pos >= len(text) {
				return
			}

			r, size := utf8.DecodeRuneInString(text[pos:])
			var next int
			switch {
			case unicode.IsLetter(r):
				next = skipWhile(text, pos, isLetterOrDigit)
			case unicode.IsDigit(r):
				next = skipWhile(text, pos, unicode.IsDigit)
			default:
				next = pos + size
			}

			token := text[pos:next]
			pos = next
			if utf8.RuneCountInString(token) <= MinTermLength {
				continue
			}
			if !yield(strings.ToLower(token)) {
				return
			}
		}
	}
}

// Terms collects ExtractTerms into a slice.
func Terms(text string) []string {
	var terms []string
	for term := range ExtractTerms(text) {
		terms = append(terms, term)
	}
	return terms
}

// skipWhile returns the byte offset of the first rune at or after pos that
// does not satisfy pred.
func skipWhile(text string, pos int, pred func(rune) bool) int {
	for pos < len(text) {
		r, size := utf8.DecodeRuneInString(text[pos:])
		if !pred(r) {
			break
		}
		pos += size
	}
	return pos
}

func isLetterOrDigit(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
