// Package metrics provides Prometheus metrics for the ragchat service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the service.
type Metrics struct {
	// Chat turn metrics
	ChatTurnsTotal   *prometheus.CounterVec
	ChatTurnDuration *prometheus.HistogramVec

	// Streaming metrics
	StreamChunksTotal   prometheus.Counter
	StreamPersistsTotal prometheus.Counter
	StreamInterruptions prometheus.Counter
	StreamsInFlight     prometheus.Gauge

	// Retrieval metrics
	SearchRequestsTotal prometheus.Counter
	SearchDuration      prometheus.Histogram
	SearchResultsTotal  prometheus.Counter
	DocumentsAddedTotal prometheus.Counter
}

// New creates and registers all collectors on the default registry.
func New() *Metrics {
	m := &Metrics{}

	m.ChatTurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ragchat_chat_turns_total",
			Help: "Total number of chat turns",
		},
		[]string{"mode", "outcome"},
	)
	m.ChatTurnDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ragchat_chat_turn_duration_seconds",
			Help:    "Duration of chat turns in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"mode"},
	)

	m.StreamChunksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ragchat_stream_chunks_total",
		Help: "Total number of streamed chunks emitted",
	})
	m.StreamPersistsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ragchat_stream_persists_total",
		Help: "Total number of partial-content persists during streaming",
	})
	m.StreamInterruptions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ragchat_stream_interruptions_total",
		Help: "Total number of streams ending abnormally",
	})
	m.StreamsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ragchat_streams_in_flight",
		Help: "Number of streaming turns currently running",
	})

	m.SearchRequestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ragchat_search_requests_total",
		Help: "Total number of vector search requests",
	})
	m.SearchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ragchat_search_duration_seconds",
		Help:    "Duration of vector searches in seconds",
		Buckets: prometheus.DefBuckets,
	})
	m.SearchResultsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ragchat_search_results_total",
		Help: "Total number of retrieval results returned",
	})
	m.DocumentsAddedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ragchat_documents_added_total",
		Help: "Total number of documents added to the vector store",
	})

	return m
}
