package llm

import (
	"context"
	"fmt"
)

// Options selects and configures a provider backend.
type Options struct {
	Provider string // "ollama", "openai", "anthropic", "gemini"
	BaseURL  string // used by ollama/openai-compatible endpoints
	APIKey   string
}

const defaultOllamaURL = "http://localhost:11434/v1"

// New constructs a Provider from options. The zero value yields a local
// Ollama-compatible provider.
func New(ctx context.Context, opts Options) (Provider, error) {
	switch opts.Provider {
	case "", "ollama":
		base := opts.BaseURL
		if base == "" {
			base = defaultOllamaURL
		}
		return NewCompatibleProvider(base, opts.APIKey), nil
	case "openai":
		if opts.BaseURL != "" {
			return NewCompatibleProvider(opts.BaseURL, opts.APIKey), nil
		}
		return NewOpenAIProvider(opts.APIKey), nil
	case "anthropic":
		return NewAnthropicProvider(opts.APIKey), nil
	case "gemini":
		return NewGeminiProvider(ctx, opts.APIKey)
	default:
		return nil, fmt.Errorf("unknown provider '%s' (expected ollama, openai, anthropic, or gemini)", opts.Provider)
	}
}
