package match

import (
	"sort"

	"github.com/ppiankov/antiplagiat/internal/corpus"
	"github.com/ppiankov/antiplagiat/internal/model"
)

// Sources groups matches by source id into match counts and average
// similarity, most matched first. Ties keep first-seen order. Ids the
// directory cannot resolve are dropped.
func Sources(matches []model.Match, dir corpus.Directory) []model.Source {
	type group struct {
		info  model.SourceInfo
		count int
		total float64
	}

	index := make(map[string]int)
	var groups []*group
	for _, m := range matches {
		i, ok := index[m.SourceID]
		if !ok {
			info, found := dir.Lookup(m.SourceID)
			if !found {
				continue
			}
			i = len(groups)
			index[m.SourceID] = i
			groups = append(groups, &group{info: info})
		}
		groups[i].count++
		groups[i].total += m.Similarity
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].count > groups[j].count
	})

	out := make([]model.Source, 0, len(groups))
	for _, g := range groups {
		out = append(out, model.Source{
			SourceInfo:    g.info,
			MatchCount:    g.count,
			AvgSimilarity: Round2(g.total / float64(g.count)),
		})
	}
	return out
}
