// Package match turns candidate matches into the reconciled, scored and
// source-attributed parts of a detection result.
package match

import (
	"github.com/ppiankov/antiplagiat/internal/corpus"
	"github.com/ppiankov/antiplagiat/internal/extract"
	"github.com/ppiankov/antiplagiat/internal/model"
)

// LexicalMatcher finds known domain phrases in text
type LexicalMatcher struct {
	phrases [][]rune
	meta    []corpus.Phrase
}

// NewLexicalMatcher builds a matcher over the given phrases
func NewLexicalMatcher(phrases []corpus.Phrase) *LexicalMatcher {
	m := &LexicalMatcher{}
	for _, p := range phrases {
		if p.Text == "" {
			continue
		}
		m.phrases = append(m.phrases, extract.LowerRunes([]rune(p.Text)))
		m.meta = append(m.meta, p)
	}
	return m
}

// Find returns one lexical match per non-overlapping, case-insensitive
// occurrence of each phrase. Occurrences that touch an excluded range are
// skipped.
func (m *LexicalMatcher) Find(text model.Text, excluded extract.Exclusions) []model.Match {
	lower := extract.LowerRunes(text.Runes())
	var matches []model.Match

	for i, phrase := range m.phrases {
		for pos := 0; pos+len(phrase) <= len(lower); {
			if !hasPrefixAt(lower, phrase, pos) {
				pos++
				continue
			}

			end := pos + len(phrase)
			if !excluded.Covers(pos, end) {
				matches = append(matches, model.Match{
					Start:      pos,
					End:        end,
					Text:       text.Slice(pos, end),
					SourceID:   m.meta[i].SourceID,
					Similarity: m.meta[i].Similarity,
					Kind:       model.MatchLexical,
				})
			}
			pos = end
		}
	}

	return matches
}

func hasPrefixAt(s, prefix []rune, at int) bool {
	if at+len(prefix) > len(s) {
		return false
	}
	for j, r := range prefix {
		if s[at+j] != r {
			return false
		}
	}
	return true
}
