// Package chunker splits text into token-bounded windows.
package chunker

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrInvalidMaxTokens is returned when the window size is not positive.
var ErrInvalidMaxTokens = errors.New("max tokens must be positive")

// Tokenizer encodes text into tokens and decodes tokens back to the exact bytes they cover.
type Tokenizer interface {
	Encode(text string) []int
	Decode(tokens []int) string
}

// Chunker cuts text into consecutive, non-overlapping token windows.
type Chunker struct {
	tok Tokenizer
}

// New returns a Chunker backed by tok.
func New(tok Tokenizer) *Chunker {
	return &Chunker{tok: tok}
}

// Split encodes text once and decodes consecutive windows of at most maxTokens tokens.
// A window that would end inside a multi-byte character gives its trailing tokens
// to the next window, so every chunk is valid UTF-8 when text is. If a single
// character needs more than maxTokens tokens, that window grows to hold it.
// Concatenating the result reproduces text.
func (c *Chunker) Split(text string, maxTokens int) ([]string, error) {
	if maxTokens <= 0 {
		return nil, fmt.Errorf("split: %w (got %d)", ErrInvalidMaxTokens, maxTokens)
	}
	if text == "" {
		return []string{}, nil
	}

	tokens := c.tok.Encode(text)
	chunks := make([]string, 0, (len(tokens)+maxTokens-1)/maxTokens)
	for start := 0; start < len(tokens); {
		end := min(start+maxTokens, len(tokens))
		chunk := c.tok.Decode(tokens[start:end])
		for end-start > 1 && splitsRune(chunk) {
			end--
			chunk = c.tok.Decode(tokens[start:end])
		}
		for end < len(tokens) && splitsRune(chunk) {
			end++
			chunk = c.tok.Decode(tokens[start:end])
		}
		chunks = append(chunks, chunk)
		start = end
	}
	return chunks, nil
}

// splitsRune reports whether s ends with an incomplete UTF-8 sequence.
func splitsRune(s string) bool {
	for i := len(s) - 1; i >= 0 && i >= len(s)-utf8.UTFMax; i-- {
		if utf8.RuneStart(s[i]) {
			return !utf8.FullRuneInString(s[i:])
		}
	}
	return false
}

// CountTokens returns the number of tokens in text.
func (c *Chunker) CountTokens(text string) int {
	return len(c.tok.Encode(text))
}
