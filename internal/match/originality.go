package match

import (
	"math"

	"github.com/ppiankov/antiplagiat/internal/model"
)

// Originality converts reconciled matches into a 0-100 percentage.
// With no matches it falls back to 100 - suspicion*50.
func Originality(matches []model.Match, totalChars int, suspicion float64) float64 {
	if len(matches) == 0 {
		return Round2(math.Max(0, 100-suspicion*50))
	}
	if totalChars <= 0 {
		return 0
	}

	matched := 0
	for _, m := range matches {
		matched += m.Len()
	}
	return Round2(math.Max(0, 100-float64(matched)/float64(totalChars)*100))
}

// Round2 rounds to two decimal places
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}
