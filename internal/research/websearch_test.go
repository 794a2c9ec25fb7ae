package research

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/veritas-health/medresearch/models"
	"github.com/veritas-health/medresearch/tools/web_search/serper"
)

func TestSearchMapsProviderHits(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"organic":[
			{"title":"Chest Pain Overview","link":"https://www.nhs.uk/conditions/chest-pain/","snippet":"Causes of chest pain."},
			{"title":"Angina","link":"https://www.mayoclinic.org/angina","snippet":"Angina symptoms."}
		]}`))
	}))
	defer srv.Close()

	client := NewWebSearchClient(serper.Search{ApiKey: "k", BaseURL: srv.URL}, time.Second)
	results := client.Search(context.Background(), "chest pain", 10)

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Domain != "www.nhs.uk" {
		t.Fatalf("domain = %q, want www.nhs.uk", results[0].Domain)
	}
	if results[0].RelevanceScore != 1.0 {
		t.Fatalf("score = %v, want default 1.0", results[0].RelevanceScore)
	}
	if results[0].Kind != models.SourceKindWeb {
		t.Fatalf("kind = %q, want web", results[0].Kind)
	}
}

func TestSearchFallsBackOnServerError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewWebSearchClient(serper.Search{ApiKey: "k", BaseURL: srv.URL}, time.Second)
	results := client.Search(context.Background(), "diabetes", 10)

	if len(results) != 3 {
		t.Fatalf("expected the 3 canned fallback results, got %d", len(results))
	}
	wantDomains := []string{"mayoclinic.org", "pubmed.ncbi.nlm.nih.gov", "who.int"}
	wantScores := []float64{1.0, 0.9, 0.8}
	for i, r := range results {
		if r.Domain != wantDomains[i] {
			t.Fatalf("result %d domain = %q, want %q", i, r.Domain, wantDomains[i])
		}
		if r.RelevanceScore != wantScores[i] {
			t.Fatalf("result %d score = %v, want %v", i, r.RelevanceScore, wantScores[i])
		}
		if r.Kind != models.SourceKindWeb {
			t.Fatalf("result %d kind = %q, want web", i, r.Kind)
		}
	}
}

func TestSearchFallsBackOnUnreachableProvider(t *testing.T) {
	t.Parallel()
	// Closed server: the transport error must degrade, never raise.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewWebSearchClient(serper.Search{ApiKey: "k", BaseURL: srv.URL}, time.Second)
	results := client.Search(context.Background(), "asthma", 5)
	if len(results) != 3 {
		t.Fatalf("expected fallback results, got %d", len(results))
	}
}

func TestFallbackResultsInterpolateQuery(t *testing.T) {
	t.Parallel()
	results := FallbackResults("migraine")
	for i, r := range results {
		if !strings.Contains(r.Title, "migraine") && !strings.Contains(r.Snippet, "migraine") {
			t.Fatalf("result %d does not mention the query: %+v", i, r)
		}
	}
}
