// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

package vectorindex

import "fmt"

// IVF is an inverted-file index. Training partitions the space into nlist
// clusters; each stored vector lives in the list of its nearest centroid and
// a query scans only the nprobe lists whose centroids are closest to it.
//
// Results are approximate. A query may return fewer than k hits when the
// probed lists hold fewer than k vectors.
type IVF struct {
	dim        int
	nlist      int
	nprobe     int
	iterations int
	seed       int64

	centroids [][]float32
	vectors   [][]float32
	lists     [][]int
}

// NewIVF creates an untrained IVF index.
func NewIVF(dim, nlist, nprobe, iterations int, seed int64) (*IVF, error) {
	if nlist < 1 {
		return nil, fmt.Errorf("nlist must be at least 1, got %d", nlist)
	}
	if nprobe < 1 || nprobe > nlist {
		return nil, fmt.Errorf("nprobe must be in [1, %d], got %d", nlist, nprobe)
	}
	if iterations < 1 {
		iterations = 1
	}
	return &IVF{
		dim:        dim,
		nlist:      nlist,
		nprobe:     nprobe,
		iterations: iterations,
		seed:       seed,
	}, nil
}

func (x *IVF) Kind() Kind     { return KindIVF }
func (x *IVF) Dimension() int { return x.dim }
func (x *IVF) Len() int       { return len(x.vectors) }
func (x *IVF) Trained() bool  { return x.centroids != nil }

// NList reports the number of clusters.
func (x *IVF) NList() int { return x.nlist }

// NProbe reports the number of clusters scanned per query.
func (x *IVF) NProbe() int { return x.nprobe }

// Train computes the cluster centroids. It requires at least nlist vectors.
func (x *IVF) Train(vectors [][]float32) error {
	if err := checkDims(vectors, x.dim); err != nil {
		return err
	}
	centroids, err := kmeans(vectors, x.nlist, x.iterations, x.seed)
	if err != nil {
		return err
	}
	x.centroids = centroids
	x.lists = make([][]int, x.nlist)
	return nil
}

// Add assigns each vector to the list of its nearest centroid.
func (x *IVF) Add(vectors [][]float32) error {
	if !x.Trained() {
		return ErrNotTrained
	}
	if err := checkDims(vectors, x.dim); err != nil {
		return err
	}
	for _, v := range vectors {
		pos := len(x.vectors)
		x.vectors = append(x.vectors, cloneVector(v))
		c, _ := nearest(x.centroids, v)
		x.lists[c] = append(x.lists[c], pos)
	}
	return nil
}

// Extend returns a new IVF index sharing the receiver's centroids and
// stored vectors, with vectors appended.
func (x *IVF) Extend(vectors [][]float32) (Index, error) {
	if !x.Trained() {
		return nil, ErrNotTrained
	}

	n := len(x.vectors)
	lists := make([][]int, len(x.lists))
	for i, l := range x.lists {
		lists[i] = l[:len(l):len(l)]
	}
	next := &IVF{
		dim:        x.dim,
		nlist:      x.nlist,
		nprobe:     x.nprobe,
		iterations: x.iterations,
		seed:       x.seed,
		centroids:  x.centroids,
		vectors:    x.vectors[:n:n],
		lists:      lists,
	}
	if err := next.Add(vectors); err != nil {
		return nil, err
	}
	return next, nil
}

// Search probes the nprobe nearest clusters and returns the k nearest
// vectors found in them.
func (x *IVF) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != x.dim {
		return nil, fmt.Errorf("%w: query has %d, index has %d", ErrDimensionMismatch, len(query), x.dim)
	}
	if !x.Trained() {
		return nil, ErrNotTrained
	}
	if k > len(x.vectors) {
		k = len(x.vectors)
	}
	if k <= 0 {
		return []Hit{}, nil
	}

	probe := newTopK(x.nprobe)
	for c, centroid := range x.centroids {
		probe.push(Hit{Position: c, Distance: squaredL2(query, centroid)})
	}

	top := newTopK(k)
	for _, cluster := range probe.sorted() {
		for _, pos := range x.lists[cluster.Position] {
			top.push(Hit{Position: pos, Distance: squaredL2(query, x.vectors[pos])})
		}
	}
	return top.sorted(), nil
}
