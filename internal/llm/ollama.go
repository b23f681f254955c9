package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/antiplagiat/internal/logger"
)

const defaultOllamaURL = "http://localhost:11434"

// OllamaProvider judges paraphrases with a local model through /api/generate
type OllamaProvider struct {
	baseURL    string
	httpClient *http.Client
	config     Config
}

type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	System  string        `json:"system,omitempty"`
	Format  string        `json:"format,omitempty"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options,omitempty"`
}

type ollamaOptions struct {
	Temperature float32 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func describeOllamaError(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) != nil {
		return ""
	}
	return e.Error
}

// NewOllamaProvider needs no key; local models get a longer default timeout
func NewOllamaProvider(config Config) (*OllamaProvider, error) {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	return &OllamaProvider{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: newHTTPClient(config, 60*time.Second),
		config:     config,
	}, nil
}

func (p *OllamaProvider) Name() string {
	return "ollama"
}

// IsAvailable checks that the daemon answers /api/tags
func (p *OllamaProvider) IsAvailable(ctx context.Context) bool {
	log := logger.GetLogger().WithField("provider", "ollama")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/tags", nil)
	if err != nil {
		log.Warnf("availability check failed: %v", err)
		return false
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		log.Warnf("availability check failed (connection to %s): %v", p.baseURL, err)
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		log.Warnf("availability check failed (HTTP %d from %s)", resp.StatusCode, p.baseURL)
		return false
	}
	return true
}

// Compare asks for JSON-formatted output so the verdict parses reliably
func (p *OllamaProvider) Compare(ctx context.Context, req CompareRequest) (*Verdict, error) {
	model := resolveModel(req.Model, p.config.Model, "")
	if model == "" {
		return nil, fmt.Errorf("ollama model must be specified (e.g., llama3.1:8b, mistral)")
	}

	in := ollamaRequest{
		Model:  model,
		Prompt: BuildComparePrompt(req.Reference, req.Candidate),
		System: systemPrompt,
		Format: "json",
		Options: ollamaOptions{
			Temperature: p.config.Temperature,
			NumPredict:  resolveMaxTokens(req.MaxTokens, p.config.MaxTokens),
		},
	}
	var out ollamaResponse
	if err := postJSON(ctx, p.httpClient, p.baseURL+"/api/generate", nil, in, &out, describeOllamaError); err != nil {
		return nil, fmt.Errorf("ollama API error: %w", err)
	}

	verdict, err := ParseVerdict(out.Response)
	verdict.Model = model
	return verdict, err
}
