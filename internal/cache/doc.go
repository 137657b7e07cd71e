// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

/*
Package cache provides a generic, thread-safe LRU cache with optional TTL
and a BadgerDB-backed VectorStore for vectors that should survive restarts.

The embedding layer uses it to memoize text-to-vector lookups so repeated
queries for the same topics skip the model call.

# Usage

	c := cache.NewLRU[string, []float32](10000, time.Hour)
	c.Add(key, vector)
	if v, ok := c.Get(key); ok {
	    return v
	}

# Statistics

Stats reports hits, misses, evictions and the current size. HitRate turns
the counters into a percentage for logging and metrics.

# Persistent Vectors

VectorStore encodes each vector as little-endian float32s under a caller
chosen key. Entries may carry a TTL; expired entries read as misses.

	store, err := cache.OpenVectorStore("/data/embeddings", 30*24*time.Hour)
	if err != nil {
	    return err
	}
	defer store.Close()
*/
package cache
