package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/veritas-health/medresearch/config"
	"github.com/veritas-health/medresearch/internal/ingest"
	"github.com/veritas-health/medresearch/internal/research"
	"github.com/veritas-health/medresearch/internal/session"
	"github.com/veritas-health/medresearch/internal/session/inmemory"
	redis_session "github.com/veritas-health/medresearch/internal/session/redis"
	"github.com/veritas-health/medresearch/internal/vectorstore"
	"github.com/veritas-health/medresearch/models"
	"github.com/veritas-health/medresearch/provider"
	"github.com/veritas-health/medresearch/tools/embedding"
	web_search "github.com/veritas-health/medresearch/tools/web_search"
)

// Run wires the service together and serves until the listener fails.
func Run(cfg *config.Config) error {
	logger := log.New(log.Writer(), "[SERVER] ", log.LstdFlags)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	// Unified HTTP error handler with structured JSON and logging
	httpLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		httpLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Cookie"},
		AllowCredentials: true,
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Vector store: collections are ensured idempotently; a store that is
	// down at boot only degrades local search, so log and continue.
	store := vectorstore.NewClient(vectorstore.Config{
		URL:     cfg.Qdrant.URL,
		APIKey:  cfg.Qdrant.APIKey,
		Timeout: cfg.Qdrant.Timeout,
	})
	initCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for _, collection := range []string{research.DocumentCollection, research.WebContentCollection} {
		if err := store.EnsureCollection(initCtx, collection, cfg.Qdrant.Dimension); err != nil {
			logger.Printf("ensuring collection %s: %v", collection, err)
		}
	}

	// Generative backend is optional: without a credential the synthesizer
	// stays on its fallback path for the process lifetime.
	var llm provider.Provider
	if cfg.LLM.APIKey != "" {
		var err error
		llm, err = provider.NewProvider(provider.Client(cfg.LLM.Provider), provider.Options{
			APIKey:             cfg.LLM.APIKey,
			CompletionModel:    cfg.LLM.CompletionModel,
			EmbeddingModel:     cfg.LLM.EmbeddingModel,
			EmbeddingDimension: cfg.Qdrant.Dimension,
			Temperature:        cfg.LLM.Temperature,
			MaxTokens:          cfg.LLM.MaxTokens,
			Timeout:            cfg.LLM.Timeout,
		})
		if err != nil {
			return fmt.Errorf("configuring llm provider: %w", err)
		}
	} else {
		logger.Printf("no llm api key configured; responses use the deterministic fallback")
	}

	embedder, err := embedding.NewEmbedding(llm, 4, cfg.Qdrant.Dimension)
	if err != nil {
		return err
	}
	defer embedder.Release()

	searcher, err := web_search.NewWebSearcher(web_search.Provider(cfg.WebSearch.Provider), cfg.WebSearch.APIKey)
	if err != nil {
		return fmt.Errorf("configuring web search: %w", err)
	}

	engine := research.NewEngine(
		research.NewWebSearchClient(searcher, cfg.WebSearch.Timeout),
		research.NewLocalSearchClient(embedder, store),
		research.NewSynthesizer(llm),
		research.EngineOptions{MaxWebResults: cfg.WebSearch.MaxResults},
	)

	var sessions session.Store
	switch cfg.Session.Backend {
	case "redis":
		sessions, err = redis_session.NewRedisSessionStore(
			fmt.Sprintf("%s:%s", cfg.Session.Redis.Host, cfg.Session.Redis.Port),
			cfg.Session.Redis.Password,
			cfg.Session.Redis.DB,
			cfg.Session.TTL,
		)
		if err != nil {
			return err
		}
	default:
		sessions = inmemory.NewInMemorySessionStore(cfg.Session.TTL)
	}

	pipeline := ingest.NewPipeline(embedder, store, cfg.Uploads.Dir)

	api := e.Group("/api")
	ah := &APIHandler{Engine: engine, Sessions: sessions, Pipeline: pipeline}
	ah.Register(api)

	wh := &WSHandler{Engine: engine, Sessions: sessions, Registry: NewChannelRegistry()}
	e.GET("/ws/:client_id", wh.Serve)

	addr := cfg.General.Listen
	if addr == "" {
		addr = ":2000"
	}
	logger.Printf("listening on %s", addr)
	return e.Start(addr)
}

// recordExchange appends a completed query/response pair to session history.
// History is auxiliary; failures are logged, never surfaced.
func recordExchange(sessions session.Store, logger *log.Logger, answer models.Answer, query string) {
	sess, err := sessions.Ensure(answer.SessionID)
	if err != nil || sess == nil {
		if err != nil {
			logger.Printf("session %s: %v", answer.SessionID, err)
		}
		return
	}
	if err := sess.Append(models.Exchange{Query: query, Response: answer.Response, CreatedAt: answer.Timestamp}); err != nil {
		logger.Printf("recording exchange for session %s: %v", answer.SessionID, err)
	}
}
