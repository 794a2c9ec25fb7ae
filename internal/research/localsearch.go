package research

import (
	"context"
	"log"

	"github.com/veritas-health/medresearch/internal/vectorstore"
	"github.com/veritas-health/medresearch/models"
	"github.com/veritas-health/medresearch/utils"
)

// Embedder maps a single text to its vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorSearcher is the nearest-neighbor query surface of the vector store.
type VectorSearcher interface {
	Query(ctx context.Context, collection string, vector []float32, limit int) ([]vectorstore.Hit, error)
}

// LocalSearchClient embeds a query and searches the document store. A store
// or embedder failure yields an empty result set, not fabricated content:
// an absent store is a configuration fact, not a transient fault.
type LocalSearchClient struct {
	embedder Embedder
	store    VectorSearcher
	logger   *log.Logger
}

func NewLocalSearchClient(embedder Embedder, store VectorSearcher) *LocalSearchClient {
	return &LocalSearchClient{
		embedder: embedder,
		store:    store,
		logger:   log.New(log.Writer(), "[LOCALSEARCH] ", log.LstdFlags),
	}
}

// Search returns up to limit document hits for the query, best match first.
func (c *LocalSearchClient) Search(ctx context.Context, query, collection string, limit int) []models.SearchResult {
	if limit <= 0 {
		limit = 5
	}
	vector, err := c.embedder.Embed(ctx, query)
	if err != nil {
		c.logger.Printf("embedding query failed: %v", err)
		return nil
	}

	hits, err := c.store.Query(ctx, collection, vector, limit)
	if err != nil {
		c.logger.Printf("vector store query failed: %v", err)
		return nil
	}

	results := make([]models.SearchResult, 0, len(hits))
	for _, hit := range hits {
		results = append(results, models.SearchResult{
			Title:          utils.Str(hit.Payload["title"]),
			URL:            utils.Str(hit.Payload["source"]),
			Snippet:        utils.Str(hit.Payload["content"]),
			Domain:         "local_database",
			RelevanceScore: hit.Score,
			Kind:           models.SourceKindDocument,
		})
	}
	return results
}
