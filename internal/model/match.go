package model

// Match is a span of the analyzed text judged similar to a source
type Match struct {
	Start      int       `json:"start"`      // Rune offset, inclusive
	End        int       `json:"end"`        // Rune offset, exclusive
	Text       string    `json:"text"`       // Matched text
	SourceID   string    `json:"source_id"`  // Known source id or URL-derived id
	Similarity float64   `json:"similarity"` // 0..1
	Kind       MatchKind `json:"kind"`       // How the match was found
}

// Len returns the span length in runes
func (m Match) Len() int {
	return m.End - m.Start
}

// MatchKind classifies how a match was produced
type MatchKind string

const (
	MatchLexical     MatchKind = "lexical"      // Known phrase found in text
	MatchSemanticAI  MatchKind = "semantic_ai"  // Paraphrase confirmed by an LLM
	MatchGoogleExact MatchKind = "google_exact" // Exact-phrase web search hit
)

// Located reports whether matches of this kind must index into the analyzed text.
// Web search hits use a synthetic span.
func (k MatchKind) Located() bool {
	return k != MatchGoogleExact
}

// SourceInfo is the self-describing metadata of a source
type SourceInfo struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	URL    string `json:"url"`
	Domain string `json:"domain"`
}

// Source is an aggregated source entry in a result
type Source struct {
	SourceInfo
	MatchCount    int     `json:"match_count"`
	AvgSimilarity float64 `json:"avg_similarity"`
}
