package model

import (
	"strings"
	"unicode/utf8"
)

// Text is the immutable input of an analysis.
// Offsets into a Text are rune offsets, never byte offsets.
type Text struct {
	raw   string
	runes []rune
	words int
}

// NewText wraps raw content and derives its counts
func NewText(raw string) Text {
	return Text{
		raw:   raw,
		runes: []rune(raw),
		words: len(strings.Fields(raw)),
	}
}

// Raw returns the original content
func (t Text) Raw() string { return t.raw }

// Runes returns the rune view of the content. Callers must not modify it.
func (t Text) Runes() []rune { return t.runes }

// WordCount is the number of whitespace-separated words
func (t Text) WordCount() int { return t.words }

// CharCount is the number of characters (runes)
func (t Text) CharCount() int { return len(t.runes) }

// Slice returns the substring between rune offsets start and end.
// Out of range offsets are clamped.
func (t Text) Slice(start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(t.runes) {
		end = len(t.runes)
	}
	if start >= end {
		return ""
	}
	return string(t.runes[start:end])
}

// Index returns the rune offset of the first occurrence of sub, or -1
func (t Text) Index(sub string) int {
	i := strings.Index(t.raw, sub)
	if i < 0 {
		return -1
	}
	return utf8.RuneCountInString(t.raw[:i])
}

// Sentence is a trimmed substring of a Text starting at Start (rune offset)
type Sentence struct {
	Text  string `json:"text"`
	Start int    `json:"start"`
}

// Len returns the sentence length in runes
func (s Sentence) Len() int {
	return utf8.RuneCountInString(s.Text)
}

// End returns the rune offset right after the sentence
func (s Sentence) End() int {
	return s.Start + s.Len()
}
