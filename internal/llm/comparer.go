package llm

import (
	"context"
	"errors"
	"fmt"
)

// ErrDisabled is returned by Comparer.Compare when no provider is configured
var ErrDisabled = errors.New("paraphrase comparison disabled")

// Comparer wraps an optional Provider. A nil provider means the
// paraphrase capability is not configured.
type Comparer struct {
	provider Provider
	config   Config
}

// NewComparer builds a Comparer from config. An empty provider name yields
// a disabled Comparer, not an error.
func NewComparer(config Config) (*Comparer, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, fmt.Errorf("create LLM provider: %w", err)
	}
	return &Comparer{provider: provider, config: config}, nil
}

// NewComparerWithProvider wraps an existing provider
func NewComparerWithProvider(provider Provider, config Config) *Comparer {
	return &Comparer{provider: provider, config: config}
}

// IsEnabled returns true if a provider is configured
func (c *Comparer) IsEnabled() bool {
	return c != nil && c.provider != nil
}

// ProviderName returns the name of the configured provider
func (c *Comparer) ProviderName() string {
	if !c.IsEnabled() {
		return ""
	}
	return c.provider.Name()
}

// IsAvailable reports whether the provider answers
func (c *Comparer) IsAvailable(ctx context.Context) bool {
	return c.IsEnabled() && c.provider.IsAvailable(ctx)
}

// Compare asks the provider whether candidate paraphrases reference.
// A malformed model reply is returned as the conservative verdict together
// with an error wrapping ErrMalformedVerdict.
func (c *Comparer) Compare(ctx context.Context, reference, candidate string) (*Verdict, error) {
	if !c.IsEnabled() {
		return nil, ErrDisabled
	}

	verdict, err := c.provider.Compare(ctx, CompareRequest{
		Reference: reference,
		Candidate: candidate,
		Model:     c.config.Model,
		MaxTokens: c.config.MaxTokens,
	})
	if err != nil {
		return verdict, fmt.Errorf("%s compare: %w", c.provider.Name(), err)
	}
	return verdict, nil
}
