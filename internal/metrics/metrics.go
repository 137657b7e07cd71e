// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Build and search outcomes used as label values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultSkipped = "skipped"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Index Metrics
	IndexBuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "synapse_index_build_duration_seconds",
			Help:    "Duration of index builds, refreshes and updates in seconds",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"operation"}, // build, refresh, update
	)

	IndexOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "synapse_index_operations_total",
			Help: "Total number of index mutations by outcome",
		},
		[]string{"operation", "result"},
	)

	IndexVectors = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "synapse_index_vectors",
			Help: "Number of vectors in the active index",
		},
	)

	IndexStrategy = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "synapse_index_strategy",
			Help: "Active index strategy (1 for the active kind, 0 otherwise)",
		},
		[]string{"kind"}, // flat, ivf
	)

	IndexClusters = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "synapse_index_clusters",
			Help: "IVF parameters of the active index",
		},
		[]string{"param"}, // nlist, nprobe
	)

	IndexLastBuild = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "synapse_index_last_build_timestamp",
			Help: "Unix timestamp of the last successful full build",
		},
	)

	// Search and Recommendation Metrics
	SearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "synapse_search_duration_seconds",
			Help:    "Duration of similarity searches including query embedding",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "synapse_recommend_requests_total",
			Help: "Total number of recommendation requests by outcome",
		},
		[]string{"result"}, // success, invalid, not_ready, failure
	)

	RecommendationsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "synapse_recommendations_total",
			Help: "Total number of recommendations returned by content type",
		},
		[]string{"content_type"}, // course, blog, forum, other
	)

	// Embedding Metrics
	EmbeddingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "synapse_embedding_duration_seconds",
			Help:    "Duration of embedding provider calls in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider"},
	)

	EmbeddingTexts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "synapse_embedding_texts_total",
			Help: "Total number of texts sent to embedding providers",
		},
		[]string{"provider"},
	)

	EmbeddingErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "synapse_embedding_errors_total",
			Help: "Total number of failed embedding provider calls",
		},
		[]string{"provider"},
	)

	EmbeddingCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "synapse_embedding_cache_hits_total",
			Help: "Total number of embedding cache hits",
		},
		[]string{"tier"}, // memory, disk
	)

	EmbeddingCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "synapse_embedding_cache_misses_total",
			Help: "Total number of texts not found in any embedding cache tier",
		},
	)

	// Content Store Metrics
	StoreFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "synapse_store_fetch_duration_seconds",
			Help:    "Duration of content store fetches in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "collection"},
	)

	StoreFetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "synapse_store_fetch_errors_total",
			Help: "Total number of failed content store fetches",
		},
		[]string{"backend", "collection"},
	)

	StoreDocuments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "synapse_store_documents_total",
			Help: "Total number of documents read from content stores",
		},
		[]string{"backend", "collection"},
	)

	// Content Event Metrics
	ContentEventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "synapse_content_events_consumed_total",
			Help: "Total number of content events handled by outcome",
		},
		[]string{"topic", "result"},
	)

	ContentEventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "synapse_content_events_published_total",
			Help: "Total number of content events published",
		},
		[]string{"topic"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordIndexOperation records the outcome of a build, refresh or update.
func RecordIndexOperation(operation string, duration time.Duration, err error) {
	IndexBuildDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		IndexOperationsTotal.WithLabelValues(operation, ResultFailure).Inc()
		return
	}
	IndexOperationsTotal.WithLabelValues(operation, ResultSuccess).Inc()
}

// SetActiveIndex publishes the shape of the index now serving searches.
func SetActiveIndex(kind string, vectors, nlist, nprobe int) {
	IndexVectors.Set(float64(vectors))
	for _, k := range []string{"flat", "ivf"} {
		v := 0.0
		if k == kind {
			v = 1
		}
		IndexStrategy.WithLabelValues(k).Set(v)
	}
	IndexClusters.WithLabelValues("nlist").Set(float64(nlist))
	IndexClusters.WithLabelValues("nprobe").Set(float64(nprobe))
}

// MarkIndexBuilt records the time of a successful full build.
func MarkIndexBuilt(at time.Time) {
	IndexLastBuild.Set(float64(at.Unix()))
}

// RecordSearch records the latency of one similarity search.
func RecordSearch(duration time.Duration) {
	SearchDuration.Observe(duration.Seconds())
}

// RecordRecommendations adds per content type result counts.
func RecordRecommendations(typeCounts map[string]int) {
	for contentType, n := range typeCounts {
		if n > 0 {
			RecommendationsServed.WithLabelValues(contentType).Add(float64(n))
		}
	}
}

// RecordEmbedding records a provider call covering texts inputs.
func RecordEmbedding(provider string, texts int, duration time.Duration, err error) {
	EmbeddingDuration.WithLabelValues(provider).Observe(duration.Seconds())
	EmbeddingTexts.WithLabelValues(provider).Add(float64(texts))
	if err != nil {
		EmbeddingErrors.WithLabelValues(provider).Inc()
	}
}

// RecordEmbeddingCache records hits per tier and texts missing from all tiers.
func RecordEmbeddingCache(memoryHits, diskHits, misses int) {
	if memoryHits > 0 {
		EmbeddingCacheHits.WithLabelValues("memory").Add(float64(memoryHits))
	}
	if diskHits > 0 {
		EmbeddingCacheHits.WithLabelValues("disk").Add(float64(diskHits))
	}
	if misses > 0 {
		EmbeddingCacheMisses.Add(float64(misses))
	}
}

// RecordStoreFetch records a content store read.
func RecordStoreFetch(backend, collection string, documents int, duration time.Duration, err error) {
	StoreFetchDuration.WithLabelValues(backend, collection).Observe(duration.Seconds())
	if err != nil {
		StoreFetchErrors.WithLabelValues(backend, collection).Inc()
		return
	}
	StoreDocuments.WithLabelValues(backend, collection).Add(float64(documents))
}

// RecordContentEvent records a handled content event.
func RecordContentEvent(topic string, err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}
	ContentEventsConsumed.WithLabelValues(topic, result).Inc()
}

// RecordContentPublish records a published content event.
func RecordContentPublish(topic string) {
	ContentEventsPublished.WithLabelValues(topic).Inc()
}
