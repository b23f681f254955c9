package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/ppiankov/antiplagiat/internal/model"
	"github.com/ppiankov/antiplagiat/internal/pipeline"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"essays/first draft.docx", "essays_first-draft"},
		{"https://example.com/a/b?q=1", "example.com_a_b_q=1"},
		{"notes.txt", "notes"},
		{"///", "result"},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	long := sanitizeFilename(strings.Repeat("я", 150))
	if n := len([]rune(long)); n != 100 {
		t.Errorf("long name has %d runes, want 100", n)
	}
}

func TestUniqueName(t *testing.T) {
	used := make(map[string]int)
	got := []string{uniqueName("a", used), uniqueName("b", used), uniqueName("a", used), uniqueName("a", used)}
	want := []string{"a", "b", "a-2", "a-3"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("name %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestAnalyzeOptions(t *testing.T) {
	opts, err := analyzeOptions("DEEP", "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Mode != model.ModeDeep || opts.Lang != model.LangEN {
		t.Errorf("got %s/%s, want deep/en", opts.Mode, opts.Lang)
	}
	if !opts.ExcludeQuotes || !opts.ExcludeBibliography {
		t.Error("exclusions should default to on")
	}

	if _, err := analyzeOptions("thorough", "en"); err == nil {
		t.Error("expected error for unknown mode")
	}
	if _, err := analyzeOptions("fast", "de"); err == nil {
		t.Error("expected error for unknown language")
	}
}

func TestPreview(t *testing.T) {
	if got := preview("a  b\n c", 10); got != "a b c" {
		t.Errorf("preview collapsed = %q", got)
	}
	if got := preview("абвгдеёжз", 3); got != "абв…" {
		t.Errorf("preview truncated = %q", got)
	}
}

func TestPrintSummary(t *testing.T) {
	doc := &pipeline.Document{
		Source: "essay.txt",
		Title:  "Essay",
		Result: &model.DetectionResult{
			Originality:    84.14,
			LocalSuspicion: 0.21,
			TotalWords:     40,
			TotalChars:     290,
			Matches: []model.Match{
				{Start: 0, End: 12, Text: "known phrase", SourceID: "wiki", Similarity: 1, Kind: model.MatchLexical},
			},
			Sources: []model.Source{
				{SourceInfo: model.SourceInfo{ID: "wiki", Title: "Wikipedia", URL: "https://wikipedia.org"}, MatchCount: 1, AvgSimilarity: 1},
			},
		},
	}

	var buf bytes.Buffer
	printSummary(&buf, doc)
	out := buf.String()

	for _, want := range []string{"Essay (essay.txt)", "84.14%", "Matches (1)", "known phrase", "Sources (1)", "Wikipedia"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	prev := cfgFile
	cfgFile = filepath.Join(t.TempDir(), "missing.yaml")
	t.Cleanup(func() { cfgFile = prev })

	t.Setenv("ANTIPLAGIAT_SERVER_ADDR", ":9999")
	t.Setenv("ANTIPLAGIAT_STORE_TTL", "2h")
	t.Setenv("GOOGLE_SEARCH_API_KEY", "key")
	t.Setenv("GOOGLE_SEARCH_CX", "cx")
	t.Setenv("DATABASE_URL", "postgres://localhost/antiplagiat")

	initConfig()
	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}

	if cfg.Server.Addr != ":9999" {
		t.Errorf("server addr = %q", cfg.Server.Addr)
	}
	if cfg.Store.TTL != 2*time.Hour {
		t.Errorf("store ttl = %v", cfg.Store.TTL)
	}
	if !cfg.Search.Configured() {
		t.Error("search should be configured from GOOGLE_SEARCH_* variables")
	}
	if cfg.Store.PGDSN != "postgres://localhost/antiplagiat" {
		t.Errorf("pg dsn = %q", cfg.Store.PGDSN)
	}
	if cfg.Detection.NGramSize != 5 {
		t.Errorf("defaults lost: ngram size = %d", cfg.Detection.NGramSize)
	}
}
