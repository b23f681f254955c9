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

const (
	defaultAnthropicModel = "claude-3-5-haiku-20241022"
	anthropicVersion      = "2023-06-01"
)

// AnthropicProvider judges paraphrases with the Messages API
type AnthropicProvider struct {
	baseURL    string
	header     http.Header
	httpClient *http.Client
	config     Config
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Messages    []anthropicMessage `json:"messages"`
	System      string             `json:"system,omitempty"`
	Temperature float32            `json:"temperature,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Model string `json:"model"`
}

// text joins the text blocks of a reply
func (r anthropicResponse) text() string {
	var b strings.Builder
	for _, block := range r.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String()
}

func describeAnthropicError(body []byte) string {
	var e struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &e) != nil || e.Error.Message == "" {
		return ""
	}
	return e.Error.Type + " - " + e.Error.Message
}

// NewAnthropicProvider requires an API key
func NewAnthropicProvider(config Config) (*AnthropicProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}

	header := http.Header{}
	header.Set("x-api-key", config.APIKey)
	header.Set("anthropic-version", anthropicVersion)

	return &AnthropicProvider{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		header:     header,
		httpClient: newHTTPClient(config, 30*time.Second),
		config:     config,
	}, nil
}

func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// IsAvailable sends a minimal Messages call
func (p *AnthropicProvider) IsAvailable(ctx context.Context) bool {
	ping := anthropicRequest{
		Model:     resolveModel("", p.config.Model, defaultAnthropicModel),
		MaxTokens: 10,
		Messages:  []anthropicMessage{{Role: "user", Content: "Hi"}},
	}
	if _, err := p.send(ctx, ping); err != nil {
		logger.GetLogger().WithField("provider", "anthropic").Warnf("API check failed: %v", err)
		return false
	}
	return true
}

// Compare sends the paraphrase prompt with the judge instructions as the system prompt
func (p *AnthropicProvider) Compare(ctx context.Context, req CompareRequest) (*Verdict, error) {
	model := resolveModel(req.Model, p.config.Model, defaultAnthropicModel)

	resp, err := p.send(ctx, anthropicRequest{
		Model:     model,
		MaxTokens: resolveMaxTokens(req.MaxTokens, p.config.MaxTokens),
		System:    systemPrompt,
		Messages: []anthropicMessage{
			{Role: "user", Content: BuildComparePrompt(req.Reference, req.Candidate)},
		},
		Temperature: p.config.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic API error: %w", err)
	}
	if len(resp.Content) == 0 {
		return nil, fmt.Errorf("no content in anthropic response")
	}

	verdict, err := ParseVerdict(resp.text())
	verdict.Model = model
	return verdict, err
}

func (p *AnthropicProvider) send(ctx context.Context, req anthropicRequest) (*anthropicResponse, error) {
	var resp anthropicResponse
	if err := postJSON(ctx, p.httpClient, p.baseURL+"/v1/messages", p.header, req, &resp, describeAnthropicError); err != nil {
		return nil, err
	}
	return &resp, nil
}
