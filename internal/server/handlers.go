package server

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/veritas-health/medresearch/internal/ingest"
	"github.com/veritas-health/medresearch/internal/research"
	"github.com/veritas-health/medresearch/internal/session"
	"github.com/veritas-health/medresearch/models"
)

// APIHandler serves the request/response surface: one-shot chat, document
// upload and local-only search.
type APIHandler struct {
	Engine   *research.Engine
	Sessions session.Store
	Pipeline *ingest.Pipeline

	logger *log.Logger
}

func (h *APIHandler) Register(g *echo.Group) {
	h.logger = log.New(log.Writer(), "[API] ", log.LstdFlags)
	g.GET("/health", h.health)
	g.POST("/chat", h.chat)
	g.POST("/upload", h.upload)
	g.GET("/search", h.search)
}

func (h *APIHandler) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *APIHandler) chat(c echo.Context) error {
	// Search flags default to enabled when the caller omits them.
	var req struct {
		Message            string `json:"message"`
		SessionID          string `json:"session_id"`
		IncludeWebSearch   *bool  `json:"include_web_search"`
		IncludeLocalSearch *bool  `json:"include_local_search"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Message == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message required")
	}

	chatReq := models.ChatRequest{
		Message:            req.Message,
		SessionID:          req.SessionID,
		IncludeWebSearch:   req.IncludeWebSearch == nil || *req.IncludeWebSearch,
		IncludeLocalSearch: req.IncludeLocalSearch == nil || *req.IncludeLocalSearch,
	}

	start := time.Now()
	answer, _ := h.Engine.Research(c.Request().Context(), chatReq)
	requestDuration.Observe(time.Since(start).Seconds())

	recordExchange(h.Sessions, h.logger, answer, chatReq.Message)
	return c.JSON(http.StatusOK, answer)
}

func (h *APIHandler) upload(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file required")
	}
	src, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	documentID, err := h.Pipeline.Ingest(c.Request().Context(), fileHeader.Filename, data)
	if err != nil {
		if errors.Is(err, ingest.ErrUnsupportedType) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message":     "Document uploaded and indexed successfully",
		"document_id": documentID,
		"filename":    fileHeader.Filename,
	})
}

func (h *APIHandler) search(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "q required")
	}
	limit := 10
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = parsed
	}

	results := h.Engine.LocalOnly(c.Request().Context(), q, limit)
	if results == nil {
		// Clients expect a list even when local search degrades.
		results = []models.SearchResult{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"results": results,
		"total":   len(results),
	})
}
