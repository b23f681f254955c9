package score

import (
	"strings"

	"github.com/ppiankov/antiplagiat/internal/extract"
)

// DefaultNGramSize is the window length used when none is configured
const DefaultNGramSize = 5

// NGramStats are the inputs of the n-gram repetition score
type NGramStats struct {
	Tokens   int
	Windows  int
	Repeated int // Distinct windows seen more than once
}

// NGramRepetition returns the share of distinct n-token windows that occur
// more than once, capped at 1. Texts with fewer than n tokens score 0.
func NGramRepetition(text string, n int) float64 {
	score, _ := ngramRepetition(text, n)
	return score
}

func ngramRepetition(text string, n int) (float64, NGramStats) {
	if n <= 0 {
		n = DefaultNGramSize
	}

	tokens := extract.Tokenize(text)
	stats := NGramStats{Tokens: len(tokens)}
	if len(tokens) < n {
		return 0, stats
	}

	stats.Windows = len(tokens) - n + 1
	counts := make(map[string]int, stats.Windows)
	for i := 0; i < stats.Windows; i++ {
		counts[strings.Join(tokens[i:i+n], " ")]++
	}

	for _, c := range counts {
		if c > 1 {
			stats.Repeated++
		}
	}

	score := float64(stats.Repeated) / float64(stats.Windows)
	if score > 1 {
		score = 1
	}
	return score, stats
}
