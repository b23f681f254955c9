// Package corpus holds the static reference data the detector matches against:
// the known-source directory, the reference passages used for paraphrase
// checks and the phrase list used for lexical matching.
package corpus

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"

	"github.com/ppiankov/antiplagiat/internal/model"
)

// Known source ids
const (
	SourceWikiAI       = "1"
	SourceHabrML       = "2"
	SourceCyberLeninka = "3"
	SourceWikiNeural   = "4"
	SourceMediumDL     = "5"
)

var knownSources = []model.SourceInfo{
	{ID: SourceWikiAI, Title: "Wikipedia - Искусственный интеллект", URL: "https://ru.wikipedia.org/wiki/Искусственный_интеллект", Domain: "wikipedia.org"},
	{ID: SourceHabrML, Title: "Habr - Машинное обучение", URL: "https://habr.com/ru/hub/machine_learning/", Domain: "habr.com"},
	{ID: SourceCyberLeninka, Title: "CyberLeninka - Нейронные сети", URL: "https://cyberleninka.ru/article/n/neyronnye-seti", Domain: "cyberleninka.ru"},
	{ID: SourceWikiNeural, Title: "Wikipedia - Neural Networks", URL: "https://en.wikipedia.org/wiki/Neural_network", Domain: "wikipedia.org"},
	{ID: SourceMediumDL, Title: "Medium - Deep Learning", URL: "https://medium.com/topic/deep-learning", Domain: "medium.com"},
}

// Passage is a short representative text of a known source
type Passage struct {
	SourceID string
	Text     string
}

var referencePassages = []Passage{
	{SourceWikiAI, "Искусственный интеллект - это область компьютерных наук, занимающаяся созданием интеллектуальных машин."},
	{SourceHabrML, "Машинное обучение является подмножеством искусственного интеллекта и фокусируется на обучении компьютеров."},
	{SourceCyberLeninka, "Нейронные сети - это вычислительные системы, вдохновленные биологическими нейронными сетями мозга."},
	{SourceWikiNeural, "Neural networks are computing systems inspired by biological neural networks in the brain."},
	{SourceMediumDL, "Deep learning is a subset of machine learning that uses neural networks with multiple layers."},
}

// Phrase is a known domain phrase bound to the source it is attributed to
type Phrase struct {
	Text       string // Lowercase
	SourceID   string
	Similarity float64
}

var phrases = []Phrase{
	{"искусственный интеллект", SourceWikiAI, 0.92},
	{"машинное обучение", SourceHabrML, 0.9},
	{"нейронные сети", SourceCyberLeninka, 0.9},
	{"глубокое обучение", SourceHabrML, 0.88},
	{"обработка естественного языка", SourceWikiAI, 0.88},
	{"neural network", SourceWikiNeural, 0.9},
	{"deep learning", SourceMediumDL, 0.9},
	{"machine learning", SourceHabrML, 0.88},
}

// Directory resolves source ids to metadata
type Directory interface {
	Lookup(id string) (model.SourceInfo, bool)
}

// Static is the built-in reference corpus
type Static struct {
	byID map[string]model.SourceInfo
}

// Default returns the built-in corpus
func Default() *Static {
	byID := make(map[string]model.SourceInfo, len(knownSources))
	for _, s := range knownSources {
		byID[s.ID] = s
	}
	return &Static{byID: byID}
}

// Lookup returns the metadata of a known source
func (c *Static) Lookup(id string) (model.SourceInfo, bool) {
	s, ok := c.byID[id]
	return s, ok
}

// Sources lists the known sources in id order
func (c *Static) Sources() []model.SourceInfo {
	out := make([]model.SourceInfo, len(knownSources))
	copy(out, knownSources)
	return out
}

// Passages returns the first n reference passages (all when n <= 0)
func (c *Static) Passages(n int) []Passage {
	if n <= 0 || n > len(referencePassages) {
		n = len(referencePassages)
	}
	out := make([]Passage, n)
	copy(out, referencePassages[:n])
	return out
}

// Phrases returns the lexical phrase list
func (c *Static) Phrases() []Phrase {
	out := make([]Phrase, len(phrases))
	copy(out, phrases)
	return out
}

// WebSourceID derives a stable id for an externally discovered URL
func WebSourceID(rawURL string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(rawURL)))
	return "web-" + hex.EncodeToString(sum[:8])
}

// DomainOf returns the host of rawURL without a leading "www."
func DomainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// Discovered holds sources found at match time, keyed by id
type Discovered map[string]model.SourceInfo

// Lookup returns the metadata of a discovered source
func (d Discovered) Lookup(id string) (model.SourceInfo, bool) {
	s, ok := d[id]
	return s, ok
}

// Chain resolves an id against each directory in turn
type Chain []Directory

// Lookup returns the first directory hit
func (c Chain) Lookup(id string) (model.SourceInfo, bool) {
	for _, d := range c {
		if d == nil {
			continue
		}
		if s, ok := d.Lookup(id); ok {
			return s, true
		}
	}
	return model.SourceInfo{}, false
}
