// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	AgentQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_queries_total",
			Help: "Agent queries processed, by classified intent",
		},
		[]string{"intent"},
	)

	AgentQueryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "agent_query_duration_seconds",
			Help:    "End-to-end agent query latency",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30},
		},
	)

	RetrievalPath = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_retrieval_path_total",
			Help: "Knowledge retrievals by the tier that produced the result",
		},
		[]string{"path"},
	)

	EmbedCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_embed_cache_lookups_total",
			Help: "Embedding cache lookups by outcome",
		},
		[]string{"tier", "result"},
	)

	ContextLookupFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_context_lookup_failures_total",
			Help: "Structured context lookups replaced by an explanatory line",
		},
		[]string{"lookup"},
	)

	GenerationFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_generation_fallback_total",
			Help: "Model calls replaced by deterministic fallback text",
		},
		[]string{"reason"},
	)

	ParserDefaults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_parser_defaults_total",
			Help: "Reply sections filled with a default",
		},
		[]string{"field"},
	)

	CatastrophicFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "agent_catastrophic_total",
			Help: "Queries answered with the generic response after an unexpected failure",
		},
	)

	MessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_messages_sent_total",
			Help: "Outbound agent messages by channel and status",
		},
		[]string{"channel", "status"},
	)

	ModelRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_model_requests_total",
			Help: "HTTP requests to the model provider by response status",
		},
		[]string{"provider", "status"},
	)

	ModelRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agent_model_request_duration_seconds",
			Help:    "Model provider HTTP round trip latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)
)
