package extract

import (
	"strings"
	"unicode"
)

// Span is a half-open rune range [Start, End)
type Span struct {
	Start int
	End   int
}

// Overlaps reports whether the two spans share at least one rune
func (s Span) Overlaps(start, end int) bool {
	return start < s.End && s.Start < end
}

// Exclusions is a set of text ranges that must not produce matches
type Exclusions []Span

// Covers reports whether [start, end) overlaps any excluded range
func (e Exclusions) Covers(start, end int) bool {
	for _, s := range e {
		if s.Overlaps(start, end) {
			return true
		}
	}
	return false
}

// bibliographyHeadings are compared against a whole lowercased line
var bibliographyHeadings = []string{
	"список литературы",
	"список использованной литературы",
	"список источников",
	"литература",
	"библиография",
	"references",
	"bibliography",
	"works cited",
	"әдебиеттер",
	"әдебиеттер тізімі",
	"пайдаланылған әдебиеттер",
}

// FindExclusions computes the excluded ranges of text
func FindExclusions(text string, quotes, bibliography bool) Exclusions {
	runes := []rune(text)
	var out Exclusions
	if quotes {
		out = append(out, QuotedSpans(runes)...)
	}
	if bibliography {
		if start := BibliographyStart(runes); start >= 0 {
			out = append(out, Span{Start: start, End: len(runes)})
		}
	}
	return out
}

// QuotedSpans returns the spans enclosed in «», “”, „“ or straight double
// quotes, quote marks included. Unterminated quotes are ignored.
func QuotedSpans(runes []rune) []Span {
	var spans []Span
	open := -1
	var closer rune

	for i, r := range runes {
		if open >= 0 {
			if r == closer {
				spans = append(spans, Span{Start: open, End: i + 1})
				open = -1
			}
			continue
		}
		switch r {
		case '«':
			open, closer = i, '»'
		case '“':
			open, closer = i, '”'
		case '„':
			open, closer = i, '“'
		case '"':
			open, closer = i, '"'
		}
	}
	return spans
}

// BibliographyStart returns the rune offset of the first line that is a
// bibliography heading, or -1.
func BibliographyStart(runes []rune) int {
	lineStart := 0
	for i := 0; i <= len(runes); i++ {
		if i < len(runes) && runes[i] != '\n' {
			continue
		}
		if isBibliographyHeading(string(runes[lineStart:i])) {
			return lineStart
		}
		lineStart = i + 1
	}
	return -1
}

func isBibliographyHeading(line string) bool {
	line = strings.ToLower(strings.TrimSpace(line))
	line = strings.TrimFunc(line, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsDigit(r) || unicode.IsSpace(r)
	})
	for _, h := range bibliographyHeadings {
		if line == h {
			return true
		}
	}
	return false
}
