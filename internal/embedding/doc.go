// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

/*
Package embedding turns content and query text into dense vectors.

# Providers

  - HashProvider: deterministic feature hashing of unigrams and bigrams.
    Needs no network or model files and is the default.
  - OllamaProvider: a local Ollama server (/api/embeddings).
  - OpenAIProvider: any OpenAI-compatible /embeddings endpoint, batched.

# Decorators

New assembles the stack from configuration. Remote providers sit behind a
GuardedProvider (golang.org/x/time/rate limiter plus a sony/gobreaker
circuit breaker). Every provider is instrumented with Prometheus metrics and
may be wrapped by a CachedProvider holding an LRU memory tier and an
optional BadgerDB disk tier.

When the breaker is open, calls fail fast with ErrUnavailable. Responses
with the wrong vector count or dimension fail with ErrBadResponse.
*/
package embedding
