package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// MockProvider implements the Provider interface for testing
type MockProvider struct {
	name      string
	available bool
	verdict   *Verdict
	err       error
	lastReq   CompareRequest
}

func (m *MockProvider) Name() string {
	return m.name
}

func (m *MockProvider) Compare(ctx context.Context, req CompareRequest) (*Verdict, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.verdict, nil
}

func (m *MockProvider) IsAvailable(ctx context.Context) bool {
	return m.available
}

func TestNewComparer_DisabledProvider(t *testing.T) {
	comparer, err := NewComparer(Config{Provider: ""})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if comparer.IsEnabled() {
		t.Error("Expected comparer to be disabled")
	}
	if comparer.ProviderName() != "" {
		t.Error("Expected empty provider name when disabled")
	}

	_, err = comparer.Compare(context.Background(), "a", "b")
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("Expected ErrDisabled, got %v", err)
	}
}

func TestNewComparer_UnknownProvider(t *testing.T) {
	if _, err := NewComparer(Config{Provider: "bard"}); err == nil {
		t.Error("Expected error for unknown provider")
	}
}

func TestComparer_NilReceiver(t *testing.T) {
	var comparer *Comparer
	if comparer.IsEnabled() {
		t.Error("Expected nil comparer to be disabled")
	}
	if comparer.IsAvailable(context.Background()) {
		t.Error("Expected nil comparer to be unavailable")
	}
}

func TestComparer_Compare_Success(t *testing.T) {
	mock := &MockProvider{
		name:      "test-provider",
		available: true,
		verdict:   &Verdict{IsParaphrase: true, Similarity: 0.9, HasSimilarity: true},
	}
	comparer := NewComparerWithProvider(mock, Config{Model: "test-model", MaxTokens: 200})

	verdict, err := comparer.Compare(context.Background(), "reference", "candidate")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !verdict.IsParaphrase {
		t.Error("Expected paraphrase verdict")
	}
	if mock.lastReq.Reference != "reference" || mock.lastReq.Candidate != "candidate" {
		t.Errorf("Unexpected request: %+v", mock.lastReq)
	}
	if mock.lastReq.Model != "test-model" || mock.lastReq.MaxTokens != 200 {
		t.Errorf("Expected configured model and tokens, got %+v", mock.lastReq)
	}
	if comparer.ProviderName() != "test-provider" {
		t.Errorf("Expected provider name, got %s", comparer.ProviderName())
	}
}

func TestComparer_Compare_ProviderError(t *testing.T) {
	mock := &MockProvider{name: "test-provider", err: errors.New("API rate limit exceeded")}
	comparer := NewComparerWithProvider(mock, Config{})

	_, err := comparer.Compare(context.Background(), "a", "b")
	if err == nil || !strings.Contains(err.Error(), "rate limit") {
		t.Errorf("Expected provider error, got %v", err)
	}
}

func TestBuildComparePrompt(t *testing.T) {
	prompt := BuildComparePrompt("первый текст", "второй текст")

	for _, want := range []string{"Текст 1: первый текст", "Текст 2: второй текст", "is_paraphrase", "similarity", "explanation"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Expected prompt to contain %q", want)
		}
	}
}

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		name       string
		reply      string
		wantErr    bool
		paraphrase bool
		similarity float64
		hasSim     bool
	}{
		{"plain", `{"is_paraphrase": true, "similarity": 0.75}`, false, true, 0.75, true},
		{"wrapped in prose", "Ответ:\n```json\n{\"is_paraphrase\": false, \"similarity\": 0.1}\n```", false, false, 0.1, true},
		{"similarity missing", `{"is_paraphrase": true}`, false, true, 0, false},
		{"similarity clamped", `{"is_paraphrase": true, "similarity": 1.7}`, false, true, 1, true},
		{"negative clamped", `{"similarity": -0.5}`, false, false, 0, true},
		{"no json", "the texts are similar", true, false, 0, false},
		{"broken json", `{"is_paraphrase": tru}`, true, false, 0, false},
		{"empty object", `{}`, true, false, 0, false},
		{"reversed braces", `} nothing {`, true, false, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ParseVerdict(tt.reply)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedVerdict) {
					t.Fatalf("Expected ErrMalformedVerdict, got %v", err)
				}
			} else if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if v == nil {
				t.Fatal("Expected a verdict even on error")
			}
			if v.IsParaphrase != tt.paraphrase || v.Similarity != tt.similarity || v.HasSimilarity != tt.hasSim {
				t.Errorf("Got %+v, want paraphrase=%v similarity=%v has=%v", v, tt.paraphrase, tt.similarity, tt.hasSim)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Provider != "" {
		t.Error("Expected provider to be disabled by default")
	}
	if config.Timeout != 30 {
		t.Errorf("Expected timeout 30, got %d", config.Timeout)
	}
	if config.MaxTokens != 500 {
		t.Errorf("Expected max tokens 500, got %d", config.MaxTokens)
	}
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		provider string
		apiKey   string
		wantName string
		wantErr  bool
	}{
		{"openai", "k", "openai", false},
		{"OpenRouter", "k", "openrouter", false},
		{"claude", "k", "anthropic", false},
		{"ollama", "", "ollama", false},
		{"openai", "", "", true},
		{"unknown", "k", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			p, err := NewProvider(Config{Provider: tt.provider, APIKey: tt.apiKey})
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expected error=%v, got %v", tt.wantErr, err)
			}
			if err == nil && p.Name() != tt.wantName {
				t.Errorf("Expected name %s, got %s", tt.wantName, p.Name())
			}
		})
	}
}
