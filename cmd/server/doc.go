// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

/*
Command server runs the Synapse recommendation service.

On start it loads configuration, opens the content store and the embedding
provider, and runs three supervised layers:

	RootSupervisor ("synapse")
	├── data-layer:      index scheduler (initial build, periodic refresh)
	├── messaging-layer: content event processor (EVENTS_ENABLED=true)
	└── api-layer:       HTTP server

The API answers 503 until the first index build completes.

# Configuration

Settings come from defaults, an optional config.yaml and environment
variables, highest priority last. Common variables:

	HTTP_PORT=8000
	LOG_LEVEL=info                   # trace, debug, info, warn, error
	LOG_FORMAT=json                  # json or console

	STORE_BACKEND=mongo              # mongo, duckdb or memory
	MONGODB_URI=mongodb://localhost:27017
	DATABASE_NAME=synapse
	COURSES_COLL=courses
	BLOGS_COLL=blogs
	FORUMS_COLL=forums

	EMBEDDING_PROVIDER=ollama        # hash, ollama or openai
	EMBEDDING_BASE_URL=http://localhost:11434
	EMBEDDING_MODEL=nomic-embed-text
	EMBEDDING_DIMENSIONS=768

	RECOMMEND_REFRESH_INTERVAL=1h    # 0 disables scheduled refreshes

	EVENTS_ENABLED=true
	EVENTS_TRANSPORT=nats            # gochannel or nats
	NATS_EMBEDDED=true

# Signals

SIGINT and SIGTERM cancel the tree. /health/ready turns 503 for
HTTP_DRAIN_DELAY (default 0), then the HTTP server drains in-flight
requests for HTTP_SHUTDOWN_TIMEOUT, the event router stops, and the store and
embedding cache are closed.
*/
package main
