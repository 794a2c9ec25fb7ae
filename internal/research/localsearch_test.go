package research

import (
	"context"
	"errors"
	"testing"

	"github.com/veritas-health/medresearch/internal/vectorstore"
	"github.com/veritas-health/medresearch/models"
)

type stubEmbedder struct {
	vec []float32
	err error
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return s.vec, s.err
}

type stubVectorStore struct {
	hits    []vectorstore.Hit
	err     error
	queries int
	upserts int
}

func (s *stubVectorStore) Query(ctx context.Context, collection string, vector []float32, limit int) ([]vectorstore.Hit, error) {
	s.queries++
	return s.hits, s.err
}

func (s *stubVectorStore) Upsert(ctx context.Context, collection, id string, vector []float32, payload map[string]any) error {
	s.upserts++
	return s.err
}

func TestLocalSearchMapsPayloads(t *testing.T) {
	t.Parallel()
	store := &stubVectorStore{hits: []vectorstore.Hit{
		{Score: 0.92, Payload: map[string]any{"title": "Cardiology Notes", "content": "ST elevation...", "source": "upload/cardio.pdf"}},
		{Score: 0.41, Payload: map[string]any{}},
	}}
	client := NewLocalSearchClient(&stubEmbedder{vec: []float32{0.1, 0.2}}, store)

	results := client.Search(context.Background(), "chest pain", DocumentCollection, 5)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Title != "Cardiology Notes" || results[0].RelevanceScore != 0.92 {
		t.Fatalf("first hit mapped wrong: %+v", results[0])
	}
	if results[0].Kind != models.SourceKindDocument {
		t.Fatalf("kind = %q, want document", results[0].Kind)
	}
	// Missing payload fields default to empty strings, not errors.
	if results[1].Title != "" || results[1].Snippet != "" || results[1].URL != "" {
		t.Fatalf("missing payload fields must default empty: %+v", results[1])
	}
}

func TestLocalSearchEmptyOnEmbedderError(t *testing.T) {
	t.Parallel()
	store := &stubVectorStore{hits: []vectorstore.Hit{{Score: 1}}}
	client := NewLocalSearchClient(&stubEmbedder{err: errors.New("model not loaded")}, store)

	results := client.Search(context.Background(), "q", DocumentCollection, 5)
	if len(results) != 0 {
		t.Fatalf("expected empty results, got %d", len(results))
	}
	if store.queries != 0 {
		t.Fatalf("store must not be queried when embedding fails")
	}
}

func TestLocalSearchEmptyOnStoreError(t *testing.T) {
	t.Parallel()
	store := &stubVectorStore{err: errors.New("connection refused")}
	client := NewLocalSearchClient(&stubEmbedder{vec: []float32{1}}, store)

	results := client.Search(context.Background(), "q", DocumentCollection, 5)
	if len(results) != 0 {
		t.Fatalf("expected empty results on store error, got %d", len(results))
	}
}
