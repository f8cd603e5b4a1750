// Package text prepares input text for the synthesis backend.
//
// The Google Translate speech endpoint rejects requests longer than a fixed
// number of characters, so longer input is split into pieces that end on
// natural boundaries wherever possible.
package text

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxChars is the longest piece the translate_tts endpoint accepts.
const DefaultMaxChars = 100

const whitespaceRegexPattern = `\s+`

// Boundary classes, strongest first.
const (
	sentenceEnders = ".!?;:।॥…"
	clauseEnders   = ",،、，"
)

// Tokenizer splits text into backend-sized pieces.
type Tokenizer struct {
	MaxChars int

	whitespacePattern *regexp.Regexp
}

// NewTokenizer creates a tokenizer producing pieces of at most maxChars runes.
// A non-positive maxChars selects DefaultMaxChars.
func NewTokenizer(maxChars int) *Tokenizer {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	return &Tokenizer{
		MaxChars:          maxChars,
		whitespacePattern: regexp.MustCompile(whitespaceRegexPattern),
	}
}

// Normalize collapses every whitespace run into a single space and trims the ends.
func (t *Tokenizer) Normalize(text string) string {
	return strings.TrimSpace(t.whitespacePattern.ReplaceAllString(text, " "))
}

// Split normalizes text and cuts it into pieces no longer than MaxChars runes.
// Cuts prefer sentence punctuation, then clause punctuation, then spaces; a
// run with none of those is cut hard at the limit. Whitespace-only input
// yields no pieces.
func (t *Tokenizer) Split(text string) []string {
	remaining := t.Normalize(text)

	var pieces []string

	for remaining != "" {
		if utf8.RuneCountInString(remaining) <= t.MaxChars {
			pieces = append(pieces, remaining)

			break
		}

		cut := t.cutIndex(remaining)

		piece := strings.TrimSpace(remaining[:cut])
		if piece != "" {
			pieces = append(pieces, piece)
		}

		remaining = strings.TrimSpace(remaining[cut:])
	}

	return pieces
}

// cutIndex returns the byte offset at which the window of MaxChars runes at the
// start of text should end.
func (t *Tokenizer) cutIndex(text string) int {
	window := prefixRunes(text, t.MaxChars)

	if idx := lastBoundary(window, func(r rune) bool {
		return strings.ContainsRune(sentenceEnders, r)
	}); idx > 0 {
		return idx
	}

	if idx := lastBoundary(window, func(r rune) bool {
		return strings.ContainsRune(clauseEnders, r)
	}); idx > 0 {
		return idx
	}

	if idx := lastBoundary(window, unicode.IsSpace); idx > 0 {
		return idx
	}

	return len(window)
}

// lastBoundary returns the byte offset just past the last rune in s matching
// isBoundary, or 0 if there is none.
func lastBoundary(s string, isBoundary func(rune) bool) int {
	for idx := len(s); idx > 0; {
		r, size := utf8.DecodeLastRuneInString(s[:idx])
		if isBoundary(r) {
			return idx
		}

		idx -= size
	}

	return 0
}

// prefixRunes returns the first n runes of s.
func prefixRunes(s string, n int) string {
	count := 0

	for idx := range s {
		if count == n {
			return s[:idx]
		}

		count++
	}

	return s
}
