// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

/*
Package config loads and validates service configuration.

# Configuration Sources

Configuration is layered with Koanf v2, later layers winning:
  - Built-in defaults (defaultConfig)
  - YAML file from CONFIG_PATH, ./config.yaml or /etc/synapse/config.yaml
  - Environment variables listed in envMappings

# Sections

  - server: HTTP listener (HTTP_PORT defaults to 8000)
  - api: CORS origins, rate limiting, request timeout
  - logging: zerolog level and format
  - store: content backend (memory, mongo, duckdb), collection names
    (COURSES_COLL, BLOGS_COLL, FORUMS_COLL) and per-collection limits
  - embedding: provider (hash, ollama, openai), cache and circuit breaker
  - index: exact/IVF strategy thresholds and k-means settings
  - recommend: request limits, startup build, refresh schedule
  - events: content event router transport (gochannel or NATS)

# Example

	cfg, err := config.Load()
	if err != nil {
	    logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

A minimal config.yaml for a MongoDB deployment:

	store:
	  backend: mongo
	  mongo:
	    uri: mongodb://mongo:27017
	    database: synapse
	embedding:
	  provider: ollama
	  base_url: http://ollama:11434
	  model: all-minilm
*/
package config
