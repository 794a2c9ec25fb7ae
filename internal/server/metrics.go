package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "medresearch_chat_request_seconds",
		Help:    "End-to-end latency of one-shot chat requests.",
		Buckets: prometheus.DefBuckets,
	})
	openChannels = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "medresearch_open_channels",
		Help: "Number of currently registered streaming channels.",
	})
)
