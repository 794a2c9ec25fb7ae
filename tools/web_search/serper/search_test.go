package serper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDiscoverMapsOrganicResults(t *testing.T) {
	t.Parallel()
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-KEY")
		_, _ = w.Write([]byte(`{"organic":[
			{"title":"Chest Pain Causes","link":"https://example.org/a","snippet":"overview"},
			{"title":"Second","link":"https://example.org/b","snippet":"more"},
			{"title":"Third","link":"https://example.org/c","snippet":"extra"}
		]}`))
	}))
	defer srv.Close()

	s := Search{ApiKey: "k", BaseURL: srv.URL}
	results, err := s.Discover(context.Background(), "chest pain", 2)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if gotKey != "k" {
		t.Fatalf("X-API-KEY = %q", gotKey)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want k=2", len(results))
	}
	if results[0].Title != "Chest Pain Causes" || results[0].URL != "https://example.org/a" {
		t.Fatalf("first result = %+v", results[0])
	}
}

func TestDiscoverErrorStatus(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	s := Search{ApiKey: "bad", BaseURL: srv.URL}
	if _, err := s.Discover(context.Background(), "q", 5); err == nil {
		t.Fatalf("expected error on non-200 status")
	}
}
