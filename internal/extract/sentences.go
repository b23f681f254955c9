package extract

import (
	"strings"
	"unicode"

	"github.com/ppiankov/antiplagiat/internal/model"
)

// Minimum sentence lengths (characters) per consumer
const (
	MinSentenceGeneral  = 20
	MinSentenceScoring  = 30
	MinSentenceSemantic = 30
	MinSentenceSearch   = 50
)

// SplitSentences splits text on runs of '.', '!' and '?', trims each fragment
// and keeps fragments of at least minLen characters. Start offsets are rune
// offsets into text, and each Sentence.Text equals that span of text.
func SplitSentences(text string, minLen int) []model.Sentence {
	runes := []rune(text)
	var sentences []model.Sentence

	emit := func(from, to int) {
		for from < to && unicode.IsSpace(runes[from]) {
			from++
		}
		for to > from && unicode.IsSpace(runes[to-1]) {
			to--
		}
		if to-from >= minLen && to > from {
			sentences = append(sentences, model.Sentence{
				Text:  string(runes[from:to]),
				Start: from,
			})
		}
	}

	segStart := 0
	for i := 0; i < len(runes); i++ {
		if !isTerminator(runes[i]) {
			continue
		}
		emit(segStart, i)

		// Swallow the whole run of terminators ("?!", "...")
		j := i
		for j < len(runes) && isTerminator(runes[j]) {
			j++
		}
		segStart = j
		i = j - 1
	}
	emit(segStart, len(runes))

	return sentences
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// Sentences returns the plain sentence strings of text for the given minimum length
func Sentences(text string, minLen int) []string {
	split := SplitSentences(text, minLen)
	out := make([]string, 0, len(split))
	for _, s := range split {
		out = append(out, s.Text)
	}
	return out
}

// Tokenize lowercases text and splits it on whitespace
func Tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// LowerRunes lowercases rune by rune so the result has the same rune
// length as the input and offsets stay aligned.
func LowerRunes(runes []rune) []rune {
	out := make([]rune, len(runes))
	for i, r := range runes {
		out[i] = unicode.ToLower(r)
	}
	return out
}
