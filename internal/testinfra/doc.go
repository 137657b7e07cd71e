// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

// Package testinfra provides test infrastructure for integration testing.
//
// Everything here is behind the integration build tag:
//
//	go test -tags integration ./...
//
// # MongoDB
//
// StartMongo runs a disposable MongoDB server with testcontainers-go and
// registers cleanup on the test:
//
//	func TestMongoFetch(t *testing.T) {
//	    mongo := testinfra.StartMongo(t)
//	    src, err := store.NewMongo(ctx, &config.MongoConfig{URI: mongo.URI, Database: "synapse_test"})
//	    ...
//	}
//
// Tests are skipped when Docker is not available.
//
// # Embedding Server
//
// MockEmbeddingServer answers the Ollama and OpenAI embedding endpoints with
// deterministic vectors and records every request, for exercising remote
// providers end to end without a model.
package testinfra
