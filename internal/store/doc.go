// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

// Package store reads content collections from a document store.
//
// Backends:
//   - Mongo: one MongoDB collection per content type (find().limit(n)).
//   - DuckDB: a content_documents table of JSON documents keyed by
//     collection and id, read in insertion order.
//   - Memory: in-process documents for tests and offline demos.
//
// Every backend normalizes documents with content.FromDocument and records
// fetch latency, document counts and errors in Prometheus.
package store
