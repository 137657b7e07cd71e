// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

/*
Package vectorindex provides nearest-neighbour search over dense float32
vectors using squared Euclidean distance.

# Strategies

Two index kinds are available:

  - Flat: exact search, every stored vector is compared with the query
  - IVF: inverted file, vectors are grouped under k-means centroids and a
    query scans only the nprobe closest groups

Params.Plan picks the strategy from the corpus size. Corpora smaller than
ExactThreshold (1000 by default) use Flat. Larger corpora use IVF with

	nlist  = min(MaxClusters, count/ClusterDivisor)
	nprobe = min(MaxProbe, nlist)

# Positions

Every stored vector has a position equal to its insertion order. Callers
keep a parallel slice of metadata and map hits back through Hit.Position.

# Concurrency

Add mutates an index in place and must not race with Search. Extend
produces a new index that shares storage with the receiver, so a published
index can be searched while its successor is being built.

# Usage

	idx, plan, err := vectorindex.Build(vectors, vectorindex.DefaultParams())
	if err != nil {
	    return err
	}
	hits, err := idx.Search(query, 10)
*/
package vectorindex
