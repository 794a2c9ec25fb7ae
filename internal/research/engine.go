package research

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/veritas-health/medresearch/models"
)

// DocumentCollection is the vector store collection holding uploaded documents.
const DocumentCollection = "medical_documents"

// WebContentCollection holds indexed web content; ensured at startup even
// though ingestion currently writes only documents.
const WebContentCollection = "web_content"

// Engine fans one query out to the web and local search branches, joins
// them, and synthesizes the answer. There is no cross-request caching: every
// query re-embeds, re-searches, and re-synthesizes.
type Engine struct {
	web           *WebSearchClient
	local         *LocalSearchClient
	synth         *Synthesizer
	maxWebResults int
	localLimit    int
	branchTimeout time.Duration
	logger        *log.Logger
}

type EngineOptions struct {
	MaxWebResults int
	LocalLimit    int
	BranchTimeout time.Duration
}

func NewEngine(web *WebSearchClient, local *LocalSearchClient, synth *Synthesizer, opts EngineOptions) *Engine {
	if opts.MaxWebResults <= 0 {
		opts.MaxWebResults = 10
	}
	if opts.LocalLimit <= 0 {
		opts.LocalLimit = 5
	}
	if opts.BranchTimeout <= 0 {
		opts.BranchTimeout = 45 * time.Second
	}
	return &Engine{
		web:           web,
		local:         local,
		synth:         synth,
		maxWebResults: opts.MaxWebResults,
		localLimit:    opts.LocalLimit,
		branchTimeout: opts.BranchTimeout,
		logger:        log.New(log.Writer(), "[RESEARCH] ", log.LstdFlags),
	}
}

// Research answers one query. Both branches run concurrently, each bounded
// by its own timeout so a slow branch degrades its own contribution instead
// of stalling the other. A request with both flags off still yields an
// Answer over an empty context.
func (e *Engine) Research(ctx context.Context, req models.ChatRequest) (models.Answer, Outcome) {
	queriesTotal.Inc()

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	var (
		wg         sync.WaitGroup
		webResults []models.SearchResult
		locResults []models.SearchResult
	)

	if req.IncludeWebSearch {
		wg.Add(1)
		go func() {
			defer wg.Done()
			branchCtx, cancel := context.WithTimeout(ctx, e.branchTimeout)
			defer cancel()
			webResults = e.web.Search(branchCtx, req.Message, e.maxWebResults)
		}()
	}
	if req.IncludeLocalSearch {
		wg.Add(1)
		go func() {
			defer wg.Done()
			branchCtx, cancel := context.WithTimeout(ctx, e.branchTimeout)
			defer cancel()
			locResults = e.local.Search(branchCtx, req.Message, DocumentCollection, e.localLimit)
		}()
	}
	wg.Wait()

	e.logger.Printf("query %q: %d web, %d local results", req.Message, len(webResults), len(locResults))

	asm := Assemble(webResults, locResults)
	answer, outcome := e.synth.Synthesize(ctx, req.Message, asm)
	answer.SessionID = sessionID
	return answer, outcome
}

// LocalOnly runs just the document search, for the search endpoint.
func (e *Engine) LocalOnly(ctx context.Context, query string, limit int) []models.SearchResult {
	return e.local.Search(ctx, query, DocumentCollection, limit)
}
