package match

import (
	"sort"

	"github.com/ppiankov/antiplagiat/internal/model"
)

type span struct{ start, end int }

// Reconcile keeps one match per (start, end) span, the one with the highest
// similarity; on equal similarity the first seen wins. The result is
// ordered by span so that reconciling it again returns the same slice.
func Reconcile(matches []model.Match) []model.Match {
	if len(matches) == 0 {
		return nil
	}

	best := make(map[span]int, len(matches))
	var out []model.Match
	for _, m := range matches {
		key := span{m.Start, m.End}
		if i, ok := best[key]; ok {
			if m.Similarity > out[i].Similarity {
				out[i] = m
			}
			continue
		}
		best[key] = len(out)
		out = append(out, m)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].End < out[j].End
	})
	return out
}
