package metrics

import "github.com/prometheus/client_golang/prometheus"

// Index engine metrics.
var (
	IndexRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "index_requests_total",
			Help:      "Total number of search index requests",
		},
		[]string{"op", "status"}, // status: HTTP code or "transport_error"
	)

	IndexRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "index_request_duration_seconds",
			Help:      "Search index request duration in seconds",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"op"},
	)
)

// Keyword extraction metrics.
var (
	NLURequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "nlu_requests_total",
			Help:      "NLU slot extraction attempts by outcome",
		},
		[]string{"provider", "outcome"}, // found / empty / failed
	)

	KeywordExtractionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "keyword_extractions_total",
			Help:      "Query keyword extractions by the tier that produced them",
		},
		[]string{"tier"}, // wildcard / nlu / fallback
	)

	KeywordCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "keyword_cache_total",
			Help:      "NLU keyword cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

// Ingestion metrics.
var (
	IngestedPhotosTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "ingested_photos_total",
			Help:      "Photos processed by the ingestion pipeline",
		},
		[]string{"status"}, // indexed / rejected / error
	)

	CustomLabelsDegradedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "custom_labels_degraded_total",
			Help:      "Ingestions where custom labels could not be read and an empty list was used",
		},
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers index, keyword and ingestion metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(IndexRequestsTotal)
	prometheus.MustRegister(IndexRequestDuration)
	prometheus.MustRegister(NLURequestsTotal)
	prometheus.MustRegister(KeywordExtractionsTotal)
	prometheus.MustRegister(KeywordCacheTotal)
	prometheus.MustRegister(IngestedPhotosTotal)
	prometheus.MustRegister(CustomLabelsDegradedTotal)
	pipelineMetricsRegistered = true
}
