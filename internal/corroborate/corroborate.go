// Package corroborate asks the external search and paraphrase capabilities
// about the most suspicious texts. Every capability failure is logged and
// dropped; corroboration never fails an analysis.
package corroborate

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/ppiankov/antiplagiat/internal/corpus"
	"github.com/ppiankov/antiplagiat/internal/extract"
	"github.com/ppiankov/antiplagiat/internal/llm"
	"github.com/ppiankov/antiplagiat/internal/logger"
	"github.com/ppiankov/antiplagiat/internal/metrics"
	"github.com/ppiankov/antiplagiat/internal/model"
	"github.com/ppiankov/antiplagiat/internal/search"
	"github.com/ppiankov/antiplagiat/internal/telemetry"
)

// Similarity constants of externally produced matches
const (
	SearchSimilarity          = 0.95
	DefaultSemanticSimilarity = 0.8
	ParaphraseThreshold       = 0.7
)

// Capability labels used in logs and metrics
const (
	CapabilitySearch     = "search"
	CapabilityParaphrase = "paraphrase"
)

// Paraphraser compares a reference passage with a candidate sentence.
// llm.Comparer satisfies it.
type Paraphraser interface {
	IsEnabled() bool
	Compare(ctx context.Context, reference, candidate string) (*llm.Verdict, error)
}

// Outcome is what corroboration contributes to a result
type Outcome struct {
	Matches      []model.Match
	Discovered   corpus.Discovered // Web sources found by search, keyed by source id
	ExternalUsed bool              // At least one external call succeeded
	Calls        int               // External calls attempted
}

// Corroborator runs the gated search and paraphrase sub-paths
type Corroborator struct {
	searcher    search.Searcher
	paraphraser Paraphraser
	passages    []corpus.Passage
	cfg         model.DetectionConfig
	metrics     *metrics.Metrics
	tracer      trace.Tracer
	log         *logrus.Entry
}

// Option configures a Corroborator
type Option func(*Corroborator)

// WithSearcher enables the exact-phrase search sub-path
func WithSearcher(s search.Searcher) Option {
	return func(c *Corroborator) { c.searcher = s }
}

// WithParaphraser enables the paraphrase sub-path
func WithParaphraser(p Paraphraser) Option {
	return func(c *Corroborator) { c.paraphraser = p }
}

// WithPassages replaces the reference passages. By default the first
// ReferencePassages entries of the built-in corpus are used.
func WithPassages(passages []corpus.Passage) Option {
	return func(c *Corroborator) { c.passages = passages }
}

// WithMetrics records external calls
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Corroborator) { c.metrics = m }
}

// WithTracer sets the tracer used for corroboration spans
func WithTracer(t trace.Tracer) Option {
	return func(c *Corroborator) {
		if t != nil {
			c.tracer = t
		}
	}
}

// New creates a Corroborator. Zero fields of cfg take the defaults.
func New(cfg model.DetectionConfig, opts ...Option) *Corroborator {
	cfg = withDefaults(cfg)
	c := &Corroborator{
		cfg:    cfg,
		tracer: noop.NewTracerProvider().Tracer(telemetry.TracerName),
		log:    logger.GetLogger().WithField("component", "corroborate"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.passages == nil {
		c.passages = corpus.Default().Passages(cfg.ReferencePassages)
	}
	return c
}

func withDefaults(cfg model.DetectionConfig) model.DetectionConfig {
	def := model.DefaultDetectionConfig()
	if cfg.SuspicionThreshold <= 0 {
		cfg.SuspicionThreshold = def.SuspicionThreshold
	}
	if cfg.SentenceBudget <= 0 {
		cfg.SentenceBudget = def.SentenceBudget
	}
	if cfg.SearchMinChars <= 0 {
		cfg.SearchMinChars = def.SearchMinChars
	}
	if cfg.SemanticMinChars <= 0 {
		cfg.SemanticMinChars = def.SemanticMinChars
	}
	if cfg.SearchQueryMaxChars <= 0 {
		cfg.SearchQueryMaxChars = def.SearchQueryMaxChars
	}
	if cfg.SearchMaxResults <= 0 {
		cfg.SearchMaxResults = def.SearchMaxResults
	}
	if cfg.ReferencePassages <= 0 {
		cfg.ReferencePassages = def.ReferencePassages
	}
	return cfg
}

func (c *Corroborator) searchEnabled() bool {
	return c.searcher != nil
}

func (c *Corroborator) paraphraseEnabled() bool {
	return c.paraphraser != nil && c.paraphraser.IsEnabled() && len(c.passages) > 0
}

// Enabled reports whether at least one sub-path is wired
func (c *Corroborator) Enabled() bool {
	return c != nil && (c.searchEnabled() || c.paraphraseEnabled())
}

// ShouldRun is the gate: deep mode requested, suspicion strictly above the
// threshold and a capability configured.
func (c *Corroborator) ShouldRun(opts model.AnalyzeOptions, suspicion float64) bool {
	return opts.ExternalRequested() && suspicion > c.threshold() && c.Enabled()
}

func (c *Corroborator) threshold() float64 {
	if c == nil {
		return model.DefaultDetectionConfig().SuspicionThreshold
	}
	return c.cfg.SuspicionThreshold
}

// Run corroborates text when the gate opens. A closed gate makes no calls
// and returns an empty Outcome.
func (c *Corroborator) Run(ctx context.Context, text model.Text, suspicion float64, opts model.AnalyzeOptions) Outcome {
	if !c.ShouldRun(opts, suspicion) {
		return Outcome{}
	}

	ctx, span := c.tracer.Start(ctx, "corroborate", trace.WithAttributes(
		telemetry.AttrSuspicion.Float64(suspicion),
		attribute.Bool("antiplagiat.search_enabled", c.searchEnabled()),
		attribute.Bool("antiplagiat.paraphrase_enabled", c.paraphraseEnabled()),
	))
	defer span.End()

	out := Outcome{Discovered: corpus.Discovered{}}

	if c.searchEnabled() {
		sentences := Budget(extract.SplitSentences(text.Raw(), c.cfg.SearchMinChars), c.cfg.SentenceBudget)
		c.runSearch(ctx, sentences, &out)
	}
	if c.paraphraseEnabled() {
		sentences := Budget(extract.SplitSentences(text.Raw(), c.cfg.SemanticMinChars), c.cfg.SentenceBudget)
		c.runParaphrase(ctx, text, sentences, &out)
	}

	span.SetAttributes(
		telemetry.AttrMatches.Int(len(out.Matches)),
		telemetry.AttrExternalUsed.Bool(out.ExternalUsed),
		attribute.Int("antiplagiat.external_calls", out.Calls),
	)
	return out
}

// Budget keeps the first n qualifying sentences
func Budget(sentences []model.Sentence, n int) []model.Sentence {
	if n >= 0 && len(sentences) > n {
		return sentences[:n]
	}
	return sentences
}

// Query builds the quoted exact-phrase query for sentence, truncated to maxChars runes
func Query(sentence string, maxChars int) string {
	if maxChars > 0 && utf8.RuneCountInString(sentence) > maxChars {
		sentence = string([]rune(sentence)[:maxChars])
	}
	return `"` + sentence + `"`
}

// runSearch stops after the first query that returns results
func (c *Corroborator) runSearch(ctx context.Context, sentences []model.Sentence, out *Outcome) {
	for i, s := range sentences {
		if ctx.Err() != nil {
			return
		}

		out.Calls++
		results, err := c.searcher.Search(ctx, Query(s.Text, c.cfg.SearchQueryMaxChars), c.cfg.SearchMaxResults)
		if err != nil {
			c.metrics.ExternalCall(CapabilitySearch, metrics.OutcomeError)
			c.log.WithFields(logrus.Fields{"sentence": i, "error": err}).Warn("Search failed, skipping sentence")
			continue
		}
		c.metrics.ExternalCall(CapabilitySearch, metrics.OutcomeOK)
		out.ExternalUsed = true

		if len(results) == 0 {
			continue
		}
		for _, r := range results {
			id := corpus.WebSourceID(r.URL)
			out.Matches = append(out.Matches, model.Match{
				Start:      0,
				End:        s.Len(),
				Text:       s.Text,
				SourceID:   id,
				Similarity: SearchSimilarity,
				Kind:       model.MatchGoogleExact,
			})
			domain := r.DisplayDomain
			if domain == "" {
				domain = corpus.DomainOf(r.URL)
			}
			out.Discovered[id] = model.SourceInfo{ID: id, Title: r.Title, URL: r.URL, Domain: domain}
		}
		c.log.WithFields(logrus.Fields{"sentence": i, "results": len(results)}).Debug("Exact phrase found on the web")
		return
	}
}

func (c *Corroborator) runParaphrase(ctx context.Context, text model.Text, sentences []model.Sentence, out *Outcome) {
	for i, s := range sentences {
		for _, p := range c.passages {
			if ctx.Err() != nil {
				return
			}

			out.Calls++
			verdict, err := c.paraphraser.Compare(ctx, p.Text, s.Text)
			if err != nil {
				outcome := metrics.OutcomeError
				if errors.Is(err, llm.ErrMalformedVerdict) {
					outcome = metrics.OutcomeInvalid
				}
				c.metrics.ExternalCall(CapabilityParaphrase, outcome)
				c.log.WithFields(logrus.Fields{"sentence": i, "source_id": p.SourceID, "error": err}).Warn("Paraphrase check failed, skipping")
				continue
			}
			c.metrics.ExternalCall(CapabilityParaphrase, metrics.OutcomeOK)
			out.ExternalUsed = true

			m, ok := semanticMatch(text, s, p, verdict)
			if !ok {
				continue
			}
			out.Matches = append(out.Matches, m)
		}
	}
}

// semanticMatch turns a verdict into a match located at the sentence's first
// occurrence in text
func semanticMatch(text model.Text, s model.Sentence, p corpus.Passage, v *llm.Verdict) (model.Match, bool) {
	if v == nil || !(v.IsParaphrase || v.Similarity > ParaphraseThreshold) {
		return model.Match{}, false
	}

	start := text.Index(s.Text)
	if start < 0 {
		return model.Match{}, false
	}

	similarity := v.Similarity
	if !v.HasSimilarity {
		similarity = DefaultSemanticSimilarity
	}
	return model.Match{
		Start:      start,
		End:        start + s.Len(),
		Text:       s.Text,
		SourceID:   p.SourceID,
		Similarity: similarity,
		Kind:       model.MatchSemanticAI,
	}, true
}

// String summarizes an outcome for logs
func (o Outcome) String() string {
	return fmt.Sprintf("matches=%d calls=%d external_used=%t", len(o.Matches), o.Calls, o.ExternalUsed)
}
