package score

import (
	"fmt"

	"github.com/ppiankov/antiplagiat/internal/extract"
	"github.com/ppiankov/antiplagiat/internal/model"
)

// Local is the text-internal suspicion estimate and its breakdown
type Local struct {
	Suspicion   float64        // Mean of the three scores, 0-1
	NGram       float64        // 0-1
	Fingerprint float64        // 0-1
	Heuristic   float64        // 0-0.6
	Signals     []model.Signal // Transparent inputs, never affect Suspicion
}

// Scorer calculates the local suspicion value and generates signals
type Scorer struct {
	ngramSize int
}

// NewScorer creates a new scorer; ngramSize <= 0 uses the default
func NewScorer(ngramSize int) *Scorer {
	if ngramSize <= 0 {
		ngramSize = DefaultNGramSize
	}
	return &Scorer{ngramSize: ngramSize}
}

// Calculate runs the three local scorers and averages them without weights
func (s *Scorer) Calculate(text string) Local {
	ngram, ngramStats := ngramRepetition(text, s.ngramSize)
	fingerprint, fpStats := fingerprintSuspicion(extract.SplitSentences(text, extract.MinSentenceScoring))
	heuristic, hStats := styleHeuristic(text)

	return Local{
		Suspicion:   (ngram + fingerprint + heuristic) / 3,
		NGram:       ngram,
		Fingerprint: fingerprint,
		Heuristic:   heuristic,
		Signals: []model.Signal{
			s.ngramSignal(ngram, ngramStats),
			fingerprintSignal(fingerprint, fpStats),
			heuristicSignal(heuristic, hStats),
		},
	}
}

func (s *Scorer) ngramSignal(score float64, stats NGramStats) model.Signal {
	severity := model.SeverityInfo
	if score > 0.3 {
		severity = model.SeverityCritical
	} else if score > 0.1 {
		severity = model.SeverityWarning
	}

	return model.Signal{
		Type:        model.SignalNGramRepetition,
		Severity:    severity,
		Description: fmt.Sprintf("%d of %d %d-word windows repeat", stats.Repeated, stats.Windows, s.ngramSize),
		Data: map[string]interface{}{
			"n":        s.ngramSize,
			"tokens":   stats.Tokens,
			"windows":  stats.Windows,
			"repeated": stats.Repeated,
			"score":    score,
			"formula":  "min(repeated_distinct_windows / total_windows, 1)",
		},
	}
}

func fingerprintSignal(score float64, stats FingerprintStats) model.Signal {
	severity := model.SeverityInfo
	if score > 0.3 {
		severity = model.SeverityCritical
	} else if score > 0 {
		severity = model.SeverityWarning
	}

	return model.Signal{
		Type:        model.SignalFingerprintUniqueness,
		Severity:    severity,
		Description: fmt.Sprintf("%d unique fingerprints across %d sentences", stats.Unique, stats.Fingerprints),
		Data: map[string]interface{}{
			"sentences":    stats.Sentences,
			"fingerprints": stats.Fingerprints,
			"unique":       stats.Unique,
			"score":        score,
			"formula":      "1 - unique_fingerprints / fingerprints",
		},
	}
}

func heuristicSignal(score float64, stats HeuristicStats) model.Signal {
	data := map[string]interface{}{
		"sentences":  stats.Sentences,
		"words":      stats.Words,
		"sub_scores": stats.SubScores,
		"score":      score,
		"formula":    "mean(variance<20 ? 0.6 : 0.2, diversity>0.7 ? 0.5 : 0.2, stop_ratio>0.3 ? 0.4 : 0.1)",
	}
	if stats.LengthVariance != nil {
		data["length_variance"] = *stats.LengthVariance
	}
	if stats.LexicalDiversity != nil {
		data["lexical_diversity"] = *stats.LexicalDiversity
	}
	if stats.StopWordRatio != nil {
		data["stop_word_ratio"] = *stats.StopWordRatio
	}

	severity := model.SeverityInfo
	if score >= 0.4 {
		severity = model.SeverityWarning
	}

	return model.Signal{
		Type:        model.SignalStyleHeuristics,
		Severity:    severity,
		Description: fmt.Sprintf("Style heuristics averaged over %d sub-scores", len(stats.SubScores)),
		Data:        data,
	}
}
