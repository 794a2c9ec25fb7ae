package embedding

import (
	"context"
	"errors"
	"fmt"

	"github.com/panjf2000/ants/v2"

	"github.com/veritas-health/medresearch/models"
	"github.com/veritas-health/medresearch/provider"
)

// Embedding maps text to fixed-dimension vectors through the configured
// provider. Calls are executed on a bounded worker pool so a slow embedding
// request occupies a pool worker, not the request goroutine's scheduler slot.
type Embedding struct {
	provider  provider.Provider
	pool      *ants.Pool
	dimension int
}

var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// NewEmbedding creates the embedding façade. workers bounds concurrent
// provider calls; dimension is the expected vector size (0 disables the check).
func NewEmbedding(p provider.Provider, workers, dimension int) (*Embedding, error) {
	if workers <= 0 {
		workers = 4
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("creating embedding pool: %w", err)
	}
	return &Embedding{provider: p, pool: pool, dimension: dimension}, nil
}

// Embed returns the vector for a single text.
func (e *Embedding) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedMany(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 {
		return nil, errors.New("provider returned no embedding")
	}
	return vecs[0], nil
}

// EmbedMany embeds a batch of texts on the worker pool and waits for the
// result or context cancellation, whichever comes first.
func (e *Embedding) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if e.provider == nil {
		return nil, models.ErrNoProvider
	}

	type result struct {
		vecs [][]float32
		err  error
	}
	done := make(chan result, 1)
	if err := e.pool.Submit(func() {
		vecs, err := e.provider.CreateEmbedding(ctx, texts)
		done <- result{vecs, err}
	}); err != nil {
		return nil, fmt.Errorf("submitting embedding task: %w", err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return nil, r.err
		}
		if e.dimension > 0 {
			for _, v := range r.vecs {
				if len(v) != e.dimension {
					return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(v), e.dimension)
				}
			}
		}
		return r.vecs, nil
	}
}

// Release shuts the worker pool down.
func (e *Embedding) Release() {
	e.pool.Release()
}
