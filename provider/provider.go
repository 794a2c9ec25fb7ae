package provider

import (
	"context"
	"errors"
	"time"

	gemini_provider "github.com/veritas-health/medresearch/provider/gemini"
	openai_provider "github.com/veritas-health/medresearch/provider/openai"
)

// Client represents different LLM providers
type Client string

const (
	OpenAI Client = "openai"
	Gemini Client = "gemini"
)

// Provider is the interface that all LLM implementations must satisfy
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
	CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error)
}

// Options carries per-provider settings resolved from config.
// EmbeddingDimension is requested from the backend so vectors match the
// store's collection schema; 0 leaves the model's native size.
type Options struct {
	APIKey             string
	CompletionModel    string
	EmbeddingModel     string
	EmbeddingDimension int
	Temperature        float64
	MaxTokens          int
	Timeout            time.Duration
}

// NewProvider creates a new LLM client. An empty API key is an error here;
// callers that can run without a generative backend decide that themselves.
func NewProvider(client Client, opts Options) (Provider, error) {
	if opts.APIKey == "" {
		return nil, errors.New("api key not set")
	}
	if opts.Timeout == 0 {
		opts.Timeout = 60 * time.Second
	}
	switch client {
	case OpenAI:
		return openai_provider.NewOpenAIClient(
			opts.APIKey,
			opts.CompletionModel,
			opts.EmbeddingModel,
			opts.EmbeddingDimension,
			opts.Temperature,
			opts.MaxTokens,
			opts.Timeout,
		), nil
	case Gemini:
		return gemini_provider.NewGeminiClient(
			opts.APIKey,
			opts.CompletionModel,
			opts.EmbeddingModel,
			opts.EmbeddingDimension,
			opts.Timeout,
		), nil
	default:
		return nil, errors.New("unsupported LLM provider")
	}
}
