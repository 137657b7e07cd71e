// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

package vectorindex

import "fmt"

// Flat is an exact index. Every search scans all stored vectors.
type Flat struct {
	dim     int
	vectors [][]float32
}

// NewFlat creates an empty exact index.
func NewFlat(dim int) *Flat {
	return &Flat{dim: dim}
}

func (f *Flat) Kind() Kind     { return KindFlat }
func (f *Flat) Dimension() int { return f.dim }
func (f *Flat) Len() int       { return len(f.vectors) }
func (f *Flat) Trained() bool  { return true }

// Train is a no-op; exact search needs no training.
func (f *Flat) Train(_ [][]float32) error { return nil }

// Add appends copies of vectors.
func (f *Flat) Add(vectors [][]float32) error {
	if err := checkDims(vectors, f.dim); err != nil {
		return err
	}
	for _, v := range vectors {
		f.vectors = append(f.vectors, cloneVector(v))
	}
	return nil
}

// Extend returns a new flat index with vectors appended.
func (f *Flat) Extend(vectors [][]float32) (Index, error) {
	n := len(f.vectors)
	next := &Flat{dim: f.dim, vectors: f.vectors[:n:n]}
	if err := next.Add(vectors); err != nil {
		return nil, err
	}
	return next, nil
}

// Search scans every vector and keeps the k nearest.
func (f *Flat) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != f.dim {
		return nil, fmt.Errorf("%w: query has %d, index has %d", ErrDimensionMismatch, len(query), f.dim)
	}
	if k > len(f.vectors) {
		k = len(f.vectors)
	}
	if k <= 0 {
		return []Hit{}, nil
	}

	top := newTopK(k)
	for pos, v := range f.vectors {
		top.push(Hit{Position: pos, Distance: squaredL2(query, v)})
	}
	return top.sorted(), nil
}

func checkDims(vectors [][]float32, dim int) error {
	for i, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("%w: vector %d has %d, index has %d", ErrDimensionMismatch, i, len(v), dim)
		}
	}
	return nil
}

func cloneVector(v []float32) []float32 {
	out := make([]float32, len(v))
	copy(out, v)
	return out
}
