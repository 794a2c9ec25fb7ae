package models

import (
	"errors"
	"time"
)

// ErrNoProvider is returned when no generative backend is configured.
var ErrNoProvider = errors.New("no generative provider configured")

// SourceKind tags where a search result came from.
type SourceKind string

const (
	SourceKindWeb      SourceKind = "web"
	SourceKindDocument SourceKind = "document"
)

// SearchResult is a single ranked hit from either the web search provider
// or the local vector store. Immutable once produced.
type SearchResult struct {
	Title          string     `json:"title"`
	URL            string     `json:"url"`
	Snippet        string     `json:"snippet"`
	Domain         string     `json:"domain"`
	RelevanceScore float64    `json:"relevance_score"`
	Kind           SourceKind `json:"kind"`
}

// Source is the attribution attached to an Answer, one per citation index.
type Source struct {
	Title  string     `json:"title"`
	URL    string     `json:"url"`
	Domain string     `json:"domain"`
	Kind   SourceKind `json:"type"`
}

// Answer is the final synthesized response for one query.
type Answer struct {
	Response  string    `json:"response"`
	Sources   []Source  `json:"sources"`
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatRequest is the one-shot chat submission payload.
type ChatRequest struct {
	Message            string `json:"message"`
	SessionID          string `json:"session_id,omitempty"`
	IncludeWebSearch   bool   `json:"include_web_search"`
	IncludeLocalSearch bool   `json:"include_local_search"`
}

// Exchange is one completed query/response pair kept in session history.
type Exchange struct {
	Query     string    `json:"query"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"created_at"`
}
