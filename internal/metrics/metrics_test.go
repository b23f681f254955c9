package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Record(t *testing.T) {
	m := New()

	m.ObserveAnalysis("deep", OutcomeOK, 120*time.Millisecond)
	m.ObserveAnalysis("deep", OutcomeOK, 80*time.Millisecond)
	m.ExternalCall("search", OutcomeError)
	m.MatchesFound("lexical", 3)
	m.MatchesFound("lexical", 0)
	m.TaskStatus("completed")

	if got := testutil.ToFloat64(m.Analyses.WithLabelValues("deep", OutcomeOK)); got != 2 {
		t.Errorf("expected 2 analyses, got %v", got)
	}
	if got := testutil.ToFloat64(m.ExternalCalls.WithLabelValues("search", OutcomeError)); got != 1 {
		t.Errorf("expected 1 failed search call, got %v", got)
	}
	if got := testutil.ToFloat64(m.Matches.WithLabelValues("lexical")); got != 3 {
		t.Errorf("expected 3 lexical matches, got %v", got)
	}

	done := m.TrackInFlight()
	if got := testutil.ToFloat64(m.InFlight); got != 1 {
		t.Errorf("expected 1 in flight, got %v", got)
	}
	done()
	if got := testutil.ToFloat64(m.InFlight); got != 0 {
		t.Errorf("expected 0 in flight, got %v", got)
	}
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.TaskStatus("pending")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	if !strings.Contains(body, `antiplagiat_tasks_total{status="pending"} 1`) {
		t.Errorf("expected task counter in exposition, got:\n%s", body)
	}
	if !strings.Contains(body, "go_goroutines") {
		t.Error("expected Go runtime collector output")
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAnalysis("fast", OutcomeOK, time.Second)
	m.ExternalCall("paraphrase", OutcomeOK)
	m.MatchesFound("semantic_ai", 1)
	m.TaskStatus("failed")
	m.TrackInFlight()()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 404 {
		t.Errorf("expected 404 from nil metrics handler, got %d", rec.Code)
	}
}
