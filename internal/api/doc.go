// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

/*
Package api exposes the recommendation service over HTTP using the chi
router.

Routes:

	POST /api/recommend       topics → enriched recommendations
	POST /api/refresh-index   rebuild the index from the content store
	GET  /api/index/stats     index strategy and size
	POST /api/index/items     append documents to the live index
	GET  /health              index readiness and dependency status
	GET  /health/live         liveness probe
	GET  /health/ready        readiness probe (503 until the first build)
	GET  /metrics             Prometheus metrics
	GET  /swagger/*           OpenAPI description and Swagger UI

Middleware, outermost first: request ID, real IP, Prometheus metrics,
access log, panic recovery, CORS. The /api group adds per-IP rate limiting
through httprate; all /api routes except refresh-index also get the
configured request timeout.

Error responses share one body:

	{
	  "status": "error",
	  "detail": "No topics provided",
	  "error": {"code": "BAD_REQUEST", "message": "No topics provided", "request_id": "..."}
	}

Codes map to the recommendation error taxonomy: VALIDATION_ERROR and
BAD_REQUEST (400), SERVICE_UNAVAILABLE (503, with Retry-After),
UPSTREAM_FAILURE and INTERNAL_ERROR (500).
*/
package api
