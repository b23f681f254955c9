package score

import (
	"crypto/md5"
	"encoding/hex"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/antiplagiat/internal/extract"
	"github.com/ppiankov/antiplagiat/internal/model"
)

// Fingerprint returns the digest of a sentence's significant tokens
// (longer than 3 characters) in sorted order, and false when the
// sentence has no such tokens.
func Fingerprint(sentence string) (string, bool) {
	var words []string
	for _, w := range extract.Tokenize(sentence) {
		if utf8.RuneCountInString(w) > 3 {
			words = append(words, w)
		}
	}
	if len(words) == 0 {
		return "", false
	}

	sort.Strings(words)
	sum := md5.Sum([]byte(strings.Join(words, " ")))
	return hex.EncodeToString(sum[:]), true
}

// FingerprintStats are the inputs of the fingerprint uniqueness score
type FingerprintStats struct {
	Sentences    int
	Fingerprints int
	Unique       int
}

// FingerprintSuspicion returns 1 - unique/total over sentence fingerprints.
// No sentences, or no fingerprintable sentences, score 0.
func FingerprintSuspicion(sentences []model.Sentence) float64 {
	score, _ := fingerprintSuspicion(sentences)
	return score
}

func fingerprintSuspicion(sentences []model.Sentence) (float64, FingerprintStats) {
	stats := FingerprintStats{Sentences: len(sentences)}
	seen := make(map[string]struct{}, len(sentences))

	for _, s := range sentences {
		fp, ok := Fingerprint(s.Text)
		if !ok {
			continue
		}
		stats.Fingerprints++
		seen[fp] = struct{}{}
	}
	stats.Unique = len(seen)

	if stats.Fingerprints == 0 {
		return 0, stats
	}
	return 1 - float64(stats.Unique)/float64(stats.Fingerprints), stats
}
