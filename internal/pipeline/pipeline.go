// Package pipeline runs a complete analysis: validation, local scoring,
// lexical matching, optional external corroboration and the combined result.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"

	"github.com/ppiankov/antiplagiat/internal/cache"
	"github.com/ppiankov/antiplagiat/internal/corpus"
	"github.com/ppiankov/antiplagiat/internal/corroborate"
	"github.com/ppiankov/antiplagiat/internal/extract"
	"github.com/ppiankov/antiplagiat/internal/extract/adapters"
	"github.com/ppiankov/antiplagiat/internal/llm"
	"github.com/ppiankov/antiplagiat/internal/logger"
	"github.com/ppiankov/antiplagiat/internal/match"
	"github.com/ppiankov/antiplagiat/internal/metrics"
	"github.com/ppiankov/antiplagiat/internal/model"
	"github.com/ppiankov/antiplagiat/internal/score"
	"github.com/ppiankov/antiplagiat/internal/search"
	"github.com/ppiankov/antiplagiat/internal/telemetry"
	"github.com/ppiankov/antiplagiat/internal/util"
	"github.com/ppiankov/antiplagiat/internal/worker"
)

// Pipeline orchestrates the analysis of one text
type Pipeline struct {
	scorer       *score.Scorer
	lexical      *match.LexicalMatcher
	corpus       *corpus.Static
	corroborator *corroborate.Corroborator
	fetcher      *Fetcher
	registry     *adapters.Registry
	defaults     model.AnalyzeOptions
	metrics      *metrics.Metrics
	tracer       trace.Tracer
	log          *logrus.Entry

	searcher    search.Searcher
	paraphraser corroborate.Paraphraser
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithSearcher wires the exact-phrase search capability
func WithSearcher(s search.Searcher) Option {
	return func(p *Pipeline) { p.searcher = s }
}

// WithParaphraser wires the paraphrase capability
func WithParaphraser(c corroborate.Paraphraser) Option {
	return func(p *Pipeline) { p.paraphraser = c }
}

// WithMetrics records analyses in m
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithTracer replaces the global tracer
func WithTracer(t trace.Tracer) Option {
	return func(p *Pipeline) { p.tracer = t }
}

// WithFetcher replaces the URL fetcher
func WithFetcher(f *Fetcher) Option {
	return func(p *Pipeline) { p.fetcher = f }
}

// WithDefaultOptions sets the options used by Check
func WithDefaultOptions(opts model.AnalyzeOptions) Option {
	return func(p *Pipeline) { p.defaults = opts }
}

// NewPipeline creates a pipeline. Without WithSearcher or WithParaphraser
// no external call is ever made.
func NewPipeline(cfg *model.Config, opts ...Option) *Pipeline {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}

	static := corpus.Default()
	p := &Pipeline{
		scorer:   score.NewScorer(cfg.Detection.NGramSize),
		lexical:  match.NewLexicalMatcher(static.Phrases()),
		corpus:   static,
		registry: adapters.NewRegistry(),
		defaults: model.DefaultAnalyzeOptions(),
		tracer:   telemetry.Tracer(),
		log:      logger.GetLogger().WithField("component", "pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.fetcher == nil {
		p.fetcher = newConfiguredFetcher(cfg)
	}

	var cOpts []corroborate.Option
	if p.searcher != nil {
		cOpts = append(cOpts, corroborate.WithSearcher(p.searcher))
	}
	if p.paraphraser != nil {
		cOpts = append(cOpts, corroborate.WithParaphraser(p.paraphraser))
	}
	cOpts = append(cOpts, corroborate.WithMetrics(p.metrics), corroborate.WithTracer(p.tracer))
	p.corroborator = corroborate.New(cfg.Detection, cOpts...)

	return p
}

func newConfiguredFetcher(cfg *model.Config) *Fetcher {
	var fOpts []FetcherOption
	if cfg.HTTP.RespectRobots {
		fOpts = append(fOpts, WithRobots(util.NewRobotsChecker(cfg.HTTP.UserAgent, cfg.HTTP.Timeout)))
	}
	if cfg.RateLimiting.RequestsPerSecond > 0 {
		fOpts = append(fOpts, WithFetchLimiter(worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)))
	}
	return NewFetcher(cfg.HTTP, fOpts...)
}

// CapabilityOptions builds the external capabilities described by cfg.
// A capability that fails to initialize is logged and left out.
func CapabilityOptions(cfg *model.Config) []Option {
	log := logger.GetLogger().WithField("component", "pipeline")
	var opts []Option

	if cfg.Search.Configured() {
		var sOpts []search.Option
		c, err := cache.New(cfg.Cache)
		if err != nil {
			log.Warnf("Search cache disabled: %v", err)
		} else if c != nil {
			sOpts = append(sOpts, search.WithCache(c, cfg.Search.CacheTTL))
		}
		if cfg.RateLimiting.RequestsPerSecond > 0 {
			sOpts = append(sOpts, search.WithLimiter(worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)))
		}

		s, err := search.NewGoogleSearcher(cfg.Search, sOpts...)
		if err != nil {
			log.Warnf("Search capability disabled: %v", err)
		} else {
			opts = append(opts, WithSearcher(s))
		}
	}

	if cfg.LLM.Provider != "" {
		comparer, err := llm.NewComparer(llm.ConfigFromModel(cfg.LLM, cfg.HTTP))
		if err != nil {
			log.Warnf("Paraphrase capability disabled: %v", err)
		} else {
			opts = append(opts, WithParaphraser(comparer))
		}
	}

	return opts
}

// Analyze validates raw and returns its detection result. Validation errors
// are returned before any work starts; external failures never fail an analysis.
func (p *Pipeline) Analyze(ctx context.Context, raw string, opts model.AnalyzeOptions) (*model.DetectionResult, error) {
	start := time.Now()

	if err := model.Validate(raw, opts); err != nil {
		p.metrics.ObserveAnalysis(string(opts.Mode), metrics.OutcomeInvalid, time.Since(start))
		return nil, err
	}
	opts.Mode, _ = model.ParseMode(string(opts.Mode))
	opts.Lang, _ = model.ParseLang(string(opts.Lang))

	ctx, span := p.tracer.Start(ctx, "analyze", trace.WithAttributes(
		telemetry.AttrMode.String(string(opts.Mode)),
		telemetry.AttrLang.String(string(opts.Lang)),
	))
	defer span.End()
	defer p.metrics.TrackInFlight()()

	text := model.NewText(raw)
	local := p.scorer.Calculate(raw)

	excluded := extract.FindExclusions(raw, opts.ExcludeQuotes, opts.ExcludeBibliography)
	candidates := p.lexical.Find(text, excluded)

	outcome := p.corroborator.Run(ctx, text, local.Suspicion, opts)
	candidates = append(candidates, outcome.Matches...)

	matches := match.Reconcile(candidates)
	if matches == nil {
		matches = []model.Match{}
	}
	sources := match.Sources(matches, corpus.Chain{outcome.Discovered, p.corpus})

	result := &model.DetectionResult{
		Originality:    match.Originality(matches, text.CharCount(), local.Suspicion),
		Matches:        matches,
		Sources:        sources,
		LocalSuspicion: local.Suspicion,
		ExternalUsed:   outcome.ExternalUsed,
		TotalWords:     text.WordCount(),
		TotalChars:     text.CharCount(),
		Signals:        local.Signals,
	}

	span.SetAttributes(
		telemetry.AttrChars.Int(result.TotalChars),
		telemetry.AttrSuspicion.Float64(result.LocalSuspicion),
		telemetry.AttrOriginality.Float64(result.Originality),
		telemetry.AttrMatches.Int(len(result.Matches)),
		telemetry.AttrExternalUsed.Bool(result.ExternalUsed),
	)
	p.record(opts.Mode, result, time.Since(start))

	p.log.WithFields(logrus.Fields{
		"mode":          opts.Mode,
		"chars":         result.TotalChars,
		"suspicion":     result.LocalSuspicion,
		"originality":   result.Originality,
		"matches":       len(result.Matches),
		"external_used": result.ExternalUsed,
		"duration":      time.Since(start),
	}).Debug("Analysis complete")

	return result, nil
}

func (p *Pipeline) record(mode model.Mode, result *model.DetectionResult, took time.Duration) {
	if p.metrics == nil {
		return
	}
	p.metrics.ObserveAnalysis(string(mode), metrics.OutcomeOK, took)
	counts := make(map[model.MatchKind]int)
	for _, m := range result.Matches {
		counts[m.Kind]++
	}
	for kind, n := range counts {
		p.metrics.MatchesFound(string(kind), n)
	}
}

// Document is an analyzed file or page
type Document struct {
	Source string                 `json:"source"`
	Title  string                 `json:"title"`
	Result *model.DetectionResult `json:"result"`
}

// AnalyzeURL fetches rawURL, extracts its text and analyzes it
func (p *Pipeline) AnalyzeURL(ctx context.Context, rawURL string, opts model.AnalyzeOptions) (*Document, error) {
	fetched, err := p.fetcher.FetchWithRetry(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	return p.analyzeBytes(ctx, fetched.Body, fetched.FinalURL, fetched.ContentType, opts)
}

// AnalyzeFile reads a local document and analyzes its text
func (p *Pipeline) AnalyzeFile(ctx context.Context, path string, opts model.AnalyzeOptions) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return p.analyzeBytes(ctx, data, path, "", opts)
}

func (p *Pipeline) analyzeBytes(ctx context.Context, data []byte, name, contentType string, opts model.AnalyzeOptions) (*Document, error) {
	doc, err := p.registry.Extract(data, name, contentType)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}
	if strings.TrimSpace(doc.Text) == "" {
		return nil, errors.New("extract text: document has no text")
	}

	result, err := p.Analyze(ctx, doc.Text, opts)
	if err != nil {
		return nil, err
	}
	return &Document{Source: name, Title: doc.Title, Result: result}, nil
}

// Check analyzes a URL or file path with the default options
func (p *Pipeline) Check(ctx context.Context, input string) (*model.DetectionResult, error) {
	var (
		doc *Document
		err error
	)
	if IsURL(input) {
		doc, err = p.AnalyzeURL(ctx, input, p.defaults)
	} else {
		doc, err = p.AnalyzeFile(ctx, input, p.defaults)
	}
	if err != nil {
		return nil, err
	}
	return doc.Result, nil
}

// IsURL reports whether input is an http(s) URL
func IsURL(input string) bool {
	return strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://")
}

// Sources lists the known-source directory
func (p *Pipeline) Sources() []model.SourceInfo {
	return p.corpus.Sources()
}

// ExternalEnabled reports whether deep mode can reach any capability
func (p *Pipeline) ExternalEnabled() bool {
	return p.corroborator.Enabled()
}

// Paraphraser returns the wired paraphrase capability, or nil
func (p *Pipeline) Paraphraser() corroborate.Paraphraser {
	return p.paraphraser
}
