package score

import (
	"strings"

	"github.com/ppiankov/antiplagiat/internal/extract"
)

// stopWords is the small bilingual stop-word set used for density
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {},
	"и": {}, "в": {}, "на": {}, "с": {}, "по": {}, "для": {},
	"что": {}, "как": {}, "это": {}, "все": {},
}

// Heuristic thresholds and sub-scores
const (
	lowVarianceThreshold = 20.0
	lowVarianceScore     = 0.6
	highVarianceScore    = 0.2
	highDiversityRatio   = 0.7
	highDiversityScore   = 0.5
	normalDiversityScore = 0.2
	highStopWordRatio    = 0.3
	highStopWordScore    = 0.4
	normalStopWordScore  = 0.1
)

// HeuristicStats are the inputs of the style heuristic score.
// A nil pointer means the sub-score could not be computed.
type HeuristicStats struct {
	Sentences        int
	Words            int
	LengthVariance   *float64
	LexicalDiversity *float64
	StopWordRatio    *float64
	SubScores        []float64
}

// StyleHeuristic averages whichever of the sentence-length variance,
// lexical diversity and stop-word density sub-scores can be computed.
// Note that high lexical diversity counts as suspicious.
func StyleHeuristic(text string) float64 {
	score, _ := styleHeuristic(text)
	return score
}

func styleHeuristic(text string) (float64, HeuristicStats) {
	var stats HeuristicStats

	sentences := extract.Sentences(text, extract.MinSentenceScoring)
	stats.Sentences = len(sentences)
	if len(sentences) > 0 {
		v := wordCountVariance(sentences)
		stats.LengthVariance = &v
		if v < lowVarianceThreshold {
			stats.SubScores = append(stats.SubScores, lowVarianceScore)
		} else {
			stats.SubScores = append(stats.SubScores, highVarianceScore)
		}
	}

	words := extract.Tokenize(text)
	stats.Words = len(words)
	if len(words) > 0 {
		unique := make(map[string]struct{}, len(words))
		stop := 0
		for _, w := range words {
			unique[w] = struct{}{}
			if _, ok := stopWords[w]; ok {
				stop++
			}
		}

		diversity := float64(len(unique)) / float64(len(words))
		stats.LexicalDiversity = &diversity
		if diversity > highDiversityRatio {
			stats.SubScores = append(stats.SubScores, highDiversityScore)
		} else {
			stats.SubScores = append(stats.SubScores, normalDiversityScore)
		}

		ratio := float64(stop) / float64(len(words))
		stats.StopWordRatio = &ratio
		if ratio > highStopWordRatio {
			stats.SubScores = append(stats.SubScores, highStopWordScore)
		} else {
			stats.SubScores = append(stats.SubScores, normalStopWordScore)
		}
	}

	if len(stats.SubScores) == 0 {
		return 0, stats
	}
	return mean(stats.SubScores), stats
}

// wordCountVariance is the population variance of per-sentence word counts
func wordCountVariance(sentences []string) float64 {
	counts := make([]float64, len(sentences))
	for i, s := range sentences {
		counts[i] = float64(len(strings.Fields(s)))
	}

	avg := mean(counts)
	var sum float64
	for _, c := range counts {
		sum += (c - avg) * (c - avg)
	}
	return sum / float64(len(counts))
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
