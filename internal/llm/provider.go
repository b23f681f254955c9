package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Compare asks the model whether the candidate paraphrases the reference
	Compare(ctx context.Context, req CompareRequest) (*Verdict, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// CompareRequest is one reference/candidate pair
type CompareRequest struct {
	Reference string
	Candidate string

	// Model overrides the configured model (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// Verdict is the model's judgement for a CompareRequest
type Verdict struct {
	IsParaphrase bool    `json:"is_paraphrase"`
	Similarity   float64 `json:"similarity"`
	Explanation  string  `json:"explanation,omitempty"`

	// HasSimilarity is false when the model omitted the similarity field
	HasSimilarity bool `json:"-"`

	Model string `json:"model,omitempty"`
}

// ErrMalformedVerdict is returned when the model reply holds no usable JSON verdict
var ErrMalformedVerdict = errors.New("malformed verdict")

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "openrouter", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/OpenRouter/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	Timeout int // seconds

	MaxTokens   int
	Temperature float32

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:    "", // Disabled by default
		Timeout:     30,
		MaxTokens:   500,
		Temperature: 0.3,
	}
}

const systemPrompt = "You compare texts for paraphrase and reply with a single JSON object."

// BuildComparePrompt constructs the paraphrase comparison prompt
func BuildComparePrompt(reference, candidate string) string {
	return fmt.Sprintf(`Сравни два текста и определи, является ли второй текст парафразом первого.

Текст 1: %s

Текст 2: %s

Ответь в формате JSON:
{
  "is_paraphrase": true/false,
  "similarity": 0.0-1.0,
  "explanation": "краткое объяснение"
}`, reference, candidate)
}

// ParseVerdict extracts the outermost JSON object from a model reply.
// On failure it returns ErrMalformedVerdict together with the
// conservative verdict {IsParaphrase: false, Similarity: 0}.
func ParseVerdict(reply string) (*Verdict, error) {
	conservative := &Verdict{}

	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return conservative, fmt.Errorf("%w: no JSON object in reply", ErrMalformedVerdict)
	}

	var raw struct {
		IsParaphrase *bool    `json:"is_paraphrase"`
		Similarity   *float64 `json:"similarity"`
		Explanation  string   `json:"explanation"`
	}
	if err := json.Unmarshal([]byte(reply[start:end+1]), &raw); err != nil {
		return conservative, fmt.Errorf("%w: %v", ErrMalformedVerdict, err)
	}
	if raw.IsParaphrase == nil && raw.Similarity == nil {
		return conservative, fmt.Errorf("%w: verdict fields missing", ErrMalformedVerdict)
	}

	v := &Verdict{Explanation: strings.TrimSpace(raw.Explanation)}
	if raw.IsParaphrase != nil {
		v.IsParaphrase = *raw.IsParaphrase
	}
	if raw.Similarity != nil {
		v.HasSimilarity = true
		v.Similarity = clamp01(*raw.Similarity)
	}
	return v, nil
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func resolveModel(req, configured, fallback string) string {
	if req != "" {
		return req
	}
	if configured != "" {
		return configured
	}
	return fallback
}

func resolveMaxTokens(req, configured int) int {
	if req > 0 {
		return req
	}
	if configured > 0 {
		return configured
	}
	return 500
}
