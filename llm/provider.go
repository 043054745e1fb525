// Package llm holds the HTTP clients for the external embedding and
// generation services.
package llm

import (
	"context"
	"fmt"
	"time"
)

// Provider is the interface for model interactions.
type Provider interface {
	// Generate produces a completion for a single prompt.
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)

	// Embed generates embeddings for a batch of texts.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// GenerateRequest is a single-turn completion request.
type GenerateRequest struct {
	System      string  `json:"system,omitempty"`
	Prompt      string  `json:"prompt"`
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
}

// GenerateResponse is the response from a completion.
type GenerateResponse struct {
	Content          string `json:"content"`
	Model            string `json:"model"`
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	TotalTokens      int    `json:"total_tokens"`
}

// Config configures a provider. EmbedModel falls back to Model when empty.
// EmbedTimeout and GenerateTimeout bound a single HTTP attempt for the
// respective operation; embedding calls are cheap and get a short deadline,
// generation gets a longer one. Zero means the defaults.
type Config struct {
	Provider        string        `json:"provider" yaml:"provider"` // ollama, openai, custom
	Model           string        `json:"model" yaml:"model"`
	EmbedModel      string        `json:"embed_model" yaml:"embed_model"`
	BaseURL         string        `json:"base_url" yaml:"base_url"`
	APIKey          string        `json:"api_key" yaml:"api_key"`
	EmbedTimeout    time.Duration `json:"embed_timeout" yaml:"embed_timeout"`
	GenerateTimeout time.Duration `json:"generate_timeout" yaml:"generate_timeout"`
}

// NewProvider creates a provider from configuration.
func NewProvider(cfg Config) (Provider, error) {
	if cfg.EmbedModel == "" {
		cfg.EmbedModel = cfg.Model
	}
	switch cfg.Provider {
	case "ollama":
		return NewOllama(cfg), nil
	case "openai":
		return NewOpenAI(cfg), nil
	case "custom":
		return NewOpenAICompat(cfg), nil
	case "":
		return nil, fmt.Errorf("llm provider not specified")
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}
