// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

/*
Package metrics provides Prometheus metrics for the recommendation service.

All collectors are registered on the default registry through promauto and
exposed at /metrics by promhttp.

# Available Metrics

API Metrics:
  - api_requests_total: requests by method, endpoint, status_code
  - api_request_duration_seconds: latency by method, endpoint
  - api_active_requests: in-flight requests
  - api_rate_limit_hits_total: rejections by endpoint

Index Metrics:
  - synapse_index_build_duration_seconds: build, refresh and update latency
  - synapse_index_operations_total: mutations by operation and result
  - synapse_index_vectors: vectors in the active index
  - synapse_index_strategy: 1 for the active kind (flat, ivf)
  - synapse_index_clusters: nlist and nprobe of the active index
  - synapse_index_last_build_timestamp: last successful full build

Recommendation Metrics:
  - synapse_search_duration_seconds: similarity search latency
  - synapse_recommend_requests_total: requests by result
  - synapse_recommendations_total: results by content_type

Embedding Metrics:
  - synapse_embedding_duration_seconds, synapse_embedding_texts_total,
    synapse_embedding_errors_total: provider calls by provider
  - synapse_embedding_cache_hits_total: hits by tier (memory, disk)
  - synapse_embedding_cache_misses_total: texts sent to the provider

Store and Event Metrics:
  - synapse_store_fetch_duration_seconds, synapse_store_fetch_errors_total,
    synapse_store_documents_total: by backend and collection
  - synapse_content_events_consumed_total: by topic and result
  - synapse_content_events_published_total: by topic

Circuit Breaker Metrics:
  - circuit_breaker_state: 0=closed, 1=half-open, 2=open
  - circuit_breaker_requests_total: by name and result
  - circuit_breaker_consecutive_failures
  - circuit_breaker_state_transitions_total: by name, from_state, to_state
*/
package metrics
