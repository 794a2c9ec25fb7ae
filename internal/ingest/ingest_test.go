package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/veritas-health/medresearch/internal/research"
)

type stubEmbedder struct {
	vec   []float32
	err   error
	calls int
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	s.calls++
	return s.vec, s.err
}

type stubStore struct {
	err        error
	calls      int
	collection string
	id         string
	payload    map[string]any
}

func (s *stubStore) Upsert(ctx context.Context, collection, id string, vector []float32, payload map[string]any) error {
	s.calls++
	s.collection = collection
	s.id = id
	s.payload = payload
	return s.err
}

func TestIngestRejectsUnsupportedExtension(t *testing.T) {
	t.Parallel()
	embedder := &stubEmbedder{vec: []float32{1}}
	store := &stubStore{}
	p := NewPipeline(embedder, store, t.TempDir())

	_, err := p.Ingest(context.Background(), "notes.exe", []byte("MZ"))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("err = %v, want ErrUnsupportedType", err)
	}
	if store.calls != 0 {
		t.Fatalf("store touched %d times before validation", store.calls)
	}
	if embedder.calls != 0 {
		t.Fatalf("embedder touched %d times before validation", embedder.calls)
	}
}

func TestIngestIndexesDocument(t *testing.T) {
	t.Parallel()
	store := &stubStore{}
	dir := t.TempDir()
	p := NewPipeline(&stubEmbedder{vec: []float32{0.1, 0.2}}, store, dir)

	id, err := p.Ingest(context.Background(), "cardiology.pdf", []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if id == "" || id != store.id {
		t.Fatalf("returned id %q must match upserted id %q", id, store.id)
	}
	if store.collection != research.DocumentCollection {
		t.Fatalf("collection = %q, want %q", store.collection, research.DocumentCollection)
	}
	for _, key := range []string{"filename", "content", "source", "title", "upload_date"} {
		if _, ok := store.payload[key]; !ok {
			t.Fatalf("payload missing %q: %v", key, store.payload)
		}
	}
	if store.payload["source"] != "upload/cardiology.pdf" {
		t.Fatalf("source = %v", store.payload["source"])
	}

	// Staged file is cleaned up once indexing settles.
	if _, err := os.Stat(filepath.Join(dir, "cardiology.pdf")); !os.IsNotExist(err) {
		t.Fatalf("staged file left behind: %v", err)
	}
}

func TestIngestPropagatesStoreFailure(t *testing.T) {
	t.Parallel()
	store := &stubStore{err: errors.New("qdrant down")}
	p := NewPipeline(&stubEmbedder{vec: []float32{1}}, store, t.TempDir())

	_, err := p.Ingest(context.Background(), "a.txt", []byte("hello"))
	if err == nil {
		t.Fatalf("a dropped write must surface as an error")
	}
}

func TestIngestPropagatesEmbedderFailure(t *testing.T) {
	t.Parallel()
	store := &stubStore{}
	p := NewPipeline(&stubEmbedder{err: errors.New("no provider")}, store, t.TempDir())

	_, err := p.Ingest(context.Background(), "a.txt", []byte("hello"))
	if err == nil {
		t.Fatalf("embedding failure must surface as an error")
	}
	if store.calls != 0 {
		t.Fatalf("store must not be written without an embedding")
	}
}

func TestIngestAcceptsAllowedExtensionsCaseInsensitive(t *testing.T) {
	t.Parallel()
	p := NewPipeline(&stubEmbedder{vec: []float32{1}}, &stubStore{}, t.TempDir())
	for _, name := range []string{"a.PDF", "b.Docx", "c.txt"} {
		if _, err := p.Ingest(context.Background(), name, []byte("data")); err != nil {
			t.Fatalf("Ingest(%s): %v", name, err)
		}
	}
}
