// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

/*
Package recommend implements topic-based content recommendation over a
vector index.

# Components

  - IndexEngine: embeds content, chooses an exact or IVF index by corpus
    size, and answers nearest-neighbour searches. States are Empty,
    Building and Ready.
  - Engine: validates requests, searches the index and enriches each hit
    into a Recommendation (image, topic, defaults, truncated description).
  - Lifecycle: loads courses, blogs and forums from a Source, falls back to
    a built-in sample catalogue when the store is empty, and (re)builds.

# Concurrency

The served index is an immutable snapshot behind an atomic pointer. Search
loads it once and runs without locks. Build and Update take a single
mutator slot, prepare a new snapshot and publish it with one store, so a
search never observes a partial index and a failed mutation changes nothing.

# Errors

ErrInvalidInput, ErrNotReady and ErrUpstream classify failures; callers use
errors.Is. An empty corpus is not an error.

# Scores

Similarity is normalized within each result set: 1 - d/max(d). The nearest
hit scores highest and the farthest scores 0, so scores from different
queries or limits are not comparable.
*/
package recommend
