package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/ppiankov/antiplagiat/internal/logger"
	"github.com/ppiankov/antiplagiat/internal/util"
)

// OpenRouterBaseURL is the OpenAI-compatible OpenRouter endpoint
const OpenRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenAIProvider implements the Provider interface for OpenAI-compatible chat APIs
type OpenAIProvider struct {
	client *openai.Client
	config Config
	name   string
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	return newOpenAICompatible("openai", config, nil)
}

// NewOpenRouterProvider creates an OpenAI-compatible provider pointed at OpenRouter
func NewOpenRouterProvider(config Config) (*OpenAIProvider, error) {
	if config.BaseURL == "" {
		config.BaseURL = OpenRouterBaseURL
	}
	headers := http.Header{}
	headers.Set("HTTP-Referer", "https://github.com/ppiankov/antiplagiat")
	headers.Set("X-Title", "Antiplagiat")
	return newOpenAICompatible("openrouter", config, headers)
}

func newOpenAICompatible(name string, config Config, headers http.Header) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("%s API key is required", name)
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(config.BaseURL, "/")
	}

	transport := &http.Transport{
		Proxy: util.NewProxyFunc(config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
	}
	clientConfig.HTTPClient = &http.Client{
		Transport: &headerTransport{base: transport, headers: headers},
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
		name:   name,
	}, nil
}

// headerTransport adds fixed headers to every request
type headerTransport struct {
	base    http.RoundTripper
	headers http.Header
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if len(t.headers) == 0 {
		return t.base.RoundTrip(req)
	}
	req = req.Clone(req.Context())
	for k, vs := range t.headers {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}
	return t.base.RoundTrip(req)
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return p.name
}

// IsAvailable checks if the provider is properly configured
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	// Listing models is the lightest authenticated call
	_, err := p.client.ListModels(ctx)
	if err != nil {
		logger.GetLogger().WithField("provider", p.name).Warnf("API check failed: %v", err)
		return false
	}
	return true
}

// Compare runs the paraphrase prompt through the Chat Completions API
func (p *OpenAIProvider) Compare(ctx context.Context, req CompareRequest) (*Verdict, error) {
	model := resolveModel(req.Model, p.config.Model, openai.GPT4oMini)

	timeout := time.Duration(p.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	temperature := p.config.Temperature
	if temperature == 0 {
		temperature = 0.3
	}

	chatReq := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: BuildComparePrompt(req.Reference, req.Candidate)},
		},
		MaxTokens:   resolveMaxTokens(req.MaxTokens, p.config.MaxTokens),
		Temperature: temperature,
	}

	resp, err := p.client.CreateChatCompletion(ctxWithTimeout, chatReq)
	if err != nil {
		return nil, fmt.Errorf("%s API error: %w", p.name, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from %s", p.name)
	}

	verdict, err := ParseVerdict(resp.Choices[0].Message.Content)
	verdict.Model = model
	return verdict, err
}
