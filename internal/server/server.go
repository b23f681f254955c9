// Package server exposes the analysis pipeline over HTTP: submit a text,
// poll or delete its result, and inspect the service.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	httpLogger "github.com/chi-middleware/logrus-logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/ppiankov/antiplagiat/internal/corroborate"
	"github.com/ppiankov/antiplagiat/internal/logger"
	"github.com/ppiankov/antiplagiat/internal/metrics"
	"github.com/ppiankov/antiplagiat/internal/model"
	"github.com/ppiankov/antiplagiat/internal/store"
)

const (
	MaxRequestSize    = 5 << 20
	ReadHeaderTimeout = 5 * time.Second
)

// Analyzer is the part of the pipeline the server needs
type Analyzer interface {
	Analyze(ctx context.Context, raw string, opts model.AnalyzeOptions) (*model.DetectionResult, error)
	Sources() []model.SourceInfo
	ExternalEnabled() bool
	Paraphraser() corroborate.Paraphraser
}

// Server runs analyses in the background and serves their records
type Server struct {
	analyzer Analyzer
	store    store.Store
	metrics  *metrics.Metrics
	cfg      model.ServerConfig
	version  string

	validate *validator.Validate
	submit   *rate.Limiter
	slots    chan struct{}
	tasks    sync.WaitGroup
	mu       sync.Mutex
	active   map[string]*task
	baseCtx  context.Context
	cancel   context.CancelFunc
	now      func() time.Time
	log      *logrus.Entry
}

// Option configures a Server
type Option func(*Server)

// WithMetrics exposes m on /metrics and records task transitions
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithVersion sets the version reported by /health
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// New creates a server. Zero config values take the defaults.
func New(analyzer Analyzer, st store.Store, cfg model.ServerConfig, opts ...Option) *Server {
	def := model.DefaultConfig().Server
	if cfg.Addr == "" {
		cfg.Addr = def.Addr
	}
	if cfg.MaxInFlight <= 0 {
		cfg.MaxInFlight = def.MaxInFlight
	}
	if cfg.AnalyzeTimeout <= 0 {
		cfg.AnalyzeTimeout = def.AnalyzeTimeout
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = def.ShutdownTimeout
	}

	limit := rate.Inf
	if cfg.SubmitRPS > 0 {
		limit = rate.Limit(cfg.SubmitRPS)
	}
	burst := cfg.SubmitBurst
	if burst <= 0 {
		burst = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		analyzer: analyzer,
		store:    st,
		cfg:      cfg,
		version:  "dev",
		validate: validator.New(),
		submit:   rate.NewLimiter(limit, burst),
		slots:    make(chan struct{}, cfg.MaxInFlight),
		active:   make(map[string]*task),
		baseCtx:  ctx,
		cancel:   cancel,
		now:      time.Now,
		log:      logger.GetLogger().WithField("component", "server"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the chi router with every route
func (s *Server) Router() http.Handler {
	router := chi.NewRouter()
	router.Use(httpLogger.Logger("router", logger.GetLogger()))
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Heartbeat("/healthz"))
	router.Use(middleware.RequestSize(MaxRequestSize))

	router.Get("/health", s.handleHealth)
	if s.metrics != nil {
		router.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/check", s.handleSubmit)
		r.Route("/check/{taskID}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Delete("/", s.handleDelete)
		})
		r.Get("/sources", s.handleSources)
		r.Post("/ai/compare", s.handleCompare)
	})

	return router
}

// Run serves until ctx is cancelled, then shuts down gracefully and waits
// for running analyses
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("Listening on %s", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	if waitErr := s.Shutdown(shutdownCtx); err == nil {
		err = waitErr
	}
	return err
}

// Shutdown cancels background analyses and waits for them to record their outcome
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()
	done := make(chan struct{})
	go func() {
		s.tasks.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for analyses: %w", ctx.Err())
	}
}

// Wait blocks until every submitted analysis has finished
func (s *Server) Wait() {
	s.tasks.Wait()
}
