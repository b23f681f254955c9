// Package metrics exposes Prometheus instrumentation for analyses and tasks.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels
const (
	OutcomeOK      = "ok"
	OutcomeError   = "error"
	OutcomeInvalid = "invalid"
	OutcomeEmpty   = "empty"
)

// Metrics holds the collectors of one process. All methods are safe on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	Analyses      *prometheus.CounterVec
	Duration      *prometheus.HistogramVec
	ExternalCalls *prometheus.CounterVec
	Matches       *prometheus.CounterVec
	Tasks         *prometheus.CounterVec
	InFlight      prometheus.Gauge
}

// New creates a registry with the antiplagiat collectors plus Go and process collectors
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Analyses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "antiplagiat_analyses_total",
			Help: "Analyses run, by mode and outcome",
		}, []string{"mode", "outcome"}),
		Duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "antiplagiat_analysis_duration_seconds",
			Help:    "Wall time of a single analysis",
			Buckets: []float64{0.005, 0.025, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"mode"}),
		ExternalCalls: f.NewCounterVec(prometheus.CounterOpts{
			Name: "antiplagiat_external_calls_total",
			Help: "Calls to the search and paraphrase capabilities, by outcome",
		}, []string{"capability", "outcome"}),
		Matches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "antiplagiat_matches_total",
			Help: "Reconciled matches reported, by kind",
		}, []string{"kind"}),
		Tasks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "antiplagiat_tasks_total",
			Help: "Check tasks reaching a status",
		}, []string{"status"}),
		InFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "antiplagiat_analyses_in_flight",
			Help: "Analyses currently running",
		}),
	}
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveAnalysis records one finished analysis
func (m *Metrics) ObserveAnalysis(mode, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.Analyses.WithLabelValues(mode, outcome).Inc()
	m.Duration.WithLabelValues(mode).Observe(took.Seconds())
}

// ExternalCall records one search or paraphrase call
func (m *Metrics) ExternalCall(capability, outcome string) {
	if m == nil {
		return
	}
	m.ExternalCalls.WithLabelValues(capability, outcome).Inc()
}

// MatchesFound adds n matches of kind
func (m *Metrics) MatchesFound(kind string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.Matches.WithLabelValues(kind).Add(float64(n))
}

// TaskStatus counts a task entering status
func (m *Metrics) TaskStatus(status string) {
	if m == nil {
		return
	}
	m.Tasks.WithLabelValues(status).Inc()
}

// TrackInFlight increments the in-flight gauge and returns its decrement
func (m *Metrics) TrackInFlight() func() {
	if m == nil {
		return func() {}
	}
	m.InFlight.Inc()
	return m.InFlight.Dec
}
