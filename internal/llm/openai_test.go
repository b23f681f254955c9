package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
)

func chatResponse(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		ID:      "chatcmpl-123",
		Object:  "chat.completion",
		Created: 1677652288,
		Model:   "gpt-4o-mini",
		Choices: []openai.ChatCompletionChoice{
			{
				Index: 0,
				Message: openai.ChatCompletionMessage{
					Role:    "assistant",
					Content: content,
				},
				FinishReason: "stop",
			},
		},
	}
}

func TestOpenAIProvider_Compare_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Expected path /chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Expected Authorization header Bearer test-key, got %s", r.Header.Get("Authorization"))
		}

		var req openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		if len(req.Messages) != 2 || !strings.Contains(req.Messages[1].Content, "парафразом") {
			t.Errorf("Expected paraphrase prompt, got %+v", req.Messages)
		}

		_ = json.NewEncoder(w).Encode(chatResponse("Вот ответ: {\"is_paraphrase\": true, \"similarity\": 0.86, \"explanation\": \"близко\"}"))
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "gpt-4o-mini",
		Timeout: 5,
	})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	verdict, err := provider.Compare(context.Background(), CompareRequest{Reference: "a", Candidate: "b"})
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if !verdict.IsParaphrase || verdict.Similarity != 0.86 || !verdict.HasSimilarity {
		t.Errorf("Unexpected verdict: %+v", verdict)
	}
	if verdict.Model != "gpt-4o-mini" {
		t.Errorf("Expected model gpt-4o-mini, got %s", verdict.Model)
	}
}

func TestOpenAIProvider_Compare_MalformedReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(chatResponse("I cannot decide."))
	}))
	defer server.Close()

	provider, _ := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})

	verdict, err := provider.Compare(context.Background(), CompareRequest{Reference: "a", Candidate: "b"})
	if !errors.Is(err, ErrMalformedVerdict) {
		t.Fatalf("Expected ErrMalformedVerdict, got %v", err)
	}
	if verdict == nil || verdict.IsParaphrase || verdict.Similarity != 0 {
		t.Errorf("Expected conservative verdict, got %+v", verdict)
	}
}

func TestOpenAIProvider_Compare_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": {"message": "Internal Server Error", "type": "server_error"}}`))
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	if _, err := provider.Compare(context.Background(), CompareRequest{}); err == nil {
		t.Fatal("Expected error, got nil")
	}
}

func TestOpenAIProvider_Compare_RateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "Rate limit exceeded", "type": "rate_limit_error"}}`))
	}))
	defer server.Close()

	provider, _ := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})

	if _, err := provider.Compare(context.Background(), CompareRequest{}); err == nil {
		t.Fatal("Expected error, got nil")
	}
}

func TestOpenAIProvider_Compare_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	provider, _ := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 1})

	// The caller's deadline wins over the provider timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := provider.Compare(ctx, CompareRequest{}); err == nil {
		t.Fatal("Expected timeout error, got nil")
	}
}

func TestOpenRouterProvider_Headers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Title") != "Antiplagiat" {
			t.Errorf("Expected X-Title header, got %q", r.Header.Get("X-Title"))
		}
		if r.Header.Get("HTTP-Referer") == "" {
			t.Error("Expected HTTP-Referer header")
		}
		_ = json.NewEncoder(w).Encode(chatResponse(`{"is_paraphrase": false}`))
	}))
	defer server.Close()

	provider, err := NewOpenRouterProvider(Config{APIKey: "test-key", BaseURL: server.URL, Model: "google/gemini-2.0-flash-exp:free"})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}
	if provider.Name() != "openrouter" {
		t.Errorf("Expected name openrouter, got %s", provider.Name())
	}

	verdict, err := provider.Compare(context.Background(), CompareRequest{Reference: "a", Candidate: "b"})
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if verdict.HasSimilarity {
		t.Error("Expected similarity to be reported missing")
	}
}

func TestOpenAIProvider_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/models" {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"data": [{"id": "gpt-4o-mini"}]}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	if !provider.IsAvailable(context.Background()) {
		t.Error("Expected available to be true")
	}

	server.Config.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	if provider.IsAvailable(context.Background()) {
		t.Error("Expected available to be false on error")
	}
}

func TestNewOpenAIProvider_RequiresKey(t *testing.T) {
	if _, err := NewOpenAIProvider(Config{}); err == nil {
		t.Error("Expected error without API key")
	}
}
