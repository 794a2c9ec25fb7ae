package web_search

import (
	"context"
	"errors"

	"github.com/veritas-health/medresearch/tools/web_search/brave"
	"github.com/veritas-health/medresearch/tools/web_search/models"
	"github.com/veritas-health/medresearch/tools/web_search/serper"
)

// WebSearcher queries an external search provider. Implementations return
// an error on any non-success status so callers can apply their own
// recovery; they never fabricate content.
type WebSearcher interface {
	Discover(ctx context.Context, q string, k int) ([]models.Result, error)
}

type Provider string

const (
	SerperProvider Provider = "serper"
	BraveProvider  Provider = "brave"
)

var ErrUnsupportedProvider = errors.New("unsupported web search provider")

func NewWebSearcher(provider Provider, apiKey string) (WebSearcher, error) {
	switch provider {
	case SerperProvider:
		return serper.Search{ApiKey: apiKey}, nil
	case BraveProvider:
		return brave.Search{ApiKey: apiKey}, nil
	default:
		return nil, ErrUnsupportedProvider
	}
}
