package research

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "medresearch_queries_total",
		Help: "Number of research queries processed.",
	})
	webSearchFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "medresearch_web_search_fallbacks_total",
		Help: "Number of web searches served from the canned fallback set.",
	})
	synthesisFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "medresearch_synthesis_fallbacks_total",
		Help: "Number of answers rendered without the generative backend.",
	})
)
