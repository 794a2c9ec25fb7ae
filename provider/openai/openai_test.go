package openai_provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCreateEmbeddingRequestsConfiguredDimension(t *testing.T) {
	t.Parallel()
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"data":[{"object":"embedding","embedding":[0.1,0.2,0.3],"index":0}]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient("k", "gpt-4o-mini", "text-embedding-3-small", 384, 0, 0, time.Second)
	c.embeddingURL = srv.URL

	vecs, err := c.CreateEmbedding(context.Background(), []string{"chest pain"})
	if err != nil {
		t.Fatalf("CreateEmbedding: %v", err)
	}
	if len(vecs) != 1 || len(vecs[0]) != 3 {
		t.Fatalf("vecs = %v", vecs)
	}
	if gotBody["model"] != "text-embedding-3-small" {
		t.Fatalf("model = %v", gotBody["model"])
	}
	if gotBody["dimensions"] != float64(384) {
		t.Fatalf("dimensions = %v, want 384", gotBody["dimensions"])
	}
}

func TestCreateEmbeddingOmitsDimensionWhenUnset(t *testing.T) {
	t.Parallel()
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient("k", "", "text-embedding-3-small", 0, 0, 0, time.Second)
	c.embeddingURL = srv.URL

	if _, err := c.CreateEmbedding(context.Background(), []string{"q"}); err != nil {
		t.Fatalf("CreateEmbedding: %v", err)
	}
	if _, ok := gotBody["dimensions"]; ok {
		t.Fatalf("dimensions must be omitted when unset: %v", gotBody)
	}
}
