package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Run metrics
	RunsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chorus_runs_started_total",
			Help: "Total number of orchestration runs started",
		},
	)

	RunsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chorus_runs_completed_total",
			Help: "Total number of orchestration runs completed",
		},
		[]string{"status"},
	)

	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chorus_run_duration_seconds",
			Help:    "End-to-end run duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
	)

	// Agent metrics
	AgentExecutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chorus_agent_executions_total",
			Help: "Total number of agent executions",
		},
		[]string{"agent_id", "status"},
	)

	AgentExecutionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chorus_agent_execution_duration_ms",
			Help:    "Agent execution duration in milliseconds",
			Buckets: []float64{100, 500, 1000, 2000, 5000, 10000, 30000},
		},
		[]string{"agent_id"},
	)

	// Retrieval metrics
	RetrievalDocuments = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chorus_retrieval_documents",
			Help:    "Number of documents kept per retrieval after deduplication",
			Buckets: []float64{0, 1, 2, 3, 5, 10},
		},
		[]string{"source_tag"},
	)

	RetrievalDuplicatesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chorus_retrieval_duplicates_dropped_total",
			Help: "Total duplicate documents dropped during retrieval",
		},
		[]string{"source_tag"},
	)

	RetrievalDegraded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chorus_retrieval_degraded_total",
			Help: "Total retrievals that degraded to a placeholder context",
		},
		[]string{"source_tag"},
	)

	// Outbound capability metrics
	VectorSearches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chorus_vector_searches_total",
			Help: "Total vector store searches",
		},
		[]string{"collection", "status"},
	)

	VectorSearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chorus_vector_search_duration_seconds",
			Help:    "Vector store search duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"collection"},
	)

	EmbeddingRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chorus_embedding_requests_total",
			Help: "Total embedding requests by outcome",
		},
		[]string{"model", "status"},
	)

	EmbeddingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chorus_embedding_duration_seconds",
			Help:    "Embedding request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"model"},
	)

	GenerationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chorus_generation_requests_total",
			Help: "Total generation requests by outcome",
		},
		[]string{"provider", "status"},
	)

	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chorus_generation_duration_seconds",
			Help:    "Generation request duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"provider"},
	)
)

// RecordVectorSearchMetrics records a vector search outcome and latency
func RecordVectorSearchMetrics(collection, status string, seconds float64) {
	VectorSearches.WithLabelValues(collection, status).Inc()
	if status == "ok" {
		VectorSearchDuration.WithLabelValues(collection).Observe(seconds)
	}
}

// RecordEmbeddingMetrics records an embedding request outcome and latency
func RecordEmbeddingMetrics(model, status string, seconds float64) {
	EmbeddingRequests.WithLabelValues(model, status).Inc()
	if status == "ok" || status == "batch_ok" {
		EmbeddingDuration.WithLabelValues(model).Observe(seconds)
	}
}

// RecordGenerationMetrics records a generation request outcome and latency
func RecordGenerationMetrics(provider, status string, seconds float64) {
	GenerationRequests.WithLabelValues(provider, status).Inc()
	if status == "ok" {
		GenerationDuration.WithLabelValues(provider).Observe(seconds)
	}
}
