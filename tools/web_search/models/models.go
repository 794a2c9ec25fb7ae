package models

// Result is a single raw hit from a web search provider, before scoring.
type Result struct {
	Title   string
	URL     string
	Snippet string
}
