// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

package vectorindex

import (
	"errors"
	"fmt"
)

// Kind names an index strategy.
type Kind string

const (
	// KindFlat compares the query against every stored vector.
	KindFlat Kind = "flat"

	// KindIVF partitions vectors into clusters and scans only the nearest ones.
	KindIVF Kind = "ivf"
)

var (
	// ErrDimensionMismatch is returned when a vector does not match the index dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrNotTrained is returned when vectors are added to an untrained IVF index.
	ErrNotTrained = errors.New("index is not trained")

	// ErrTrainingSet is returned when the training sample cannot produce the requested clusters.
	ErrTrainingSet = errors.New("insufficient training vectors")
)

// Hit is one search result: the insertion position of a stored vector and
// its squared L2 distance to the query.
type Hit struct {
	Position int
	Distance float32
}

// Index is a searchable collection of fixed-dimension vectors.
//
// Positions are assigned in insertion order starting at zero and never
// change. Implementations are not safe for concurrent mutation; callers
// serialize Train and Add and may run Search concurrently once no mutation
// is in flight.
type Index interface {
	// Kind reports the index strategy.
	Kind() Kind

	// Dimension reports the vector dimension.
	Dimension() int

	// Len reports the number of stored vectors.
	Len() int

	// Trained reports whether vectors may be added.
	Trained() bool

	// Train prepares the index using a representative sample.
	Train(vectors [][]float32) error

	// Add appends vectors in place. Their positions continue from Len().
	Add(vectors [][]float32) error

	// Extend returns a new index holding the receiver's vectors followed by
	// vectors. The receiver is left unchanged and stays safe for concurrent
	// searches. Stored vectors are shared, not copied.
	Extend(vectors [][]float32) (Index, error)

	// Search returns at most k hits ordered by ascending distance, ties
	// broken by ascending position.
	Search(query []float32, k int) ([]Hit, error)
}

// Params configures strategy selection and approximate search breadth.
type Params struct {
	// ExactThreshold is the corpus size from which the IVF strategy is used.
	ExactThreshold int `json:"exact_threshold"`

	// MaxClusters caps the number of IVF clusters (nlist).
	MaxClusters int `json:"max_clusters"`

	// ClusterDivisor derives nlist from the corpus size: count / ClusterDivisor.
	ClusterDivisor int `json:"cluster_divisor"`

	// MaxProbe caps the number of clusters scanned per query (nprobe).
	MaxProbe int `json:"max_probe"`

	// TrainIterations bounds the k-means refinement passes.
	TrainIterations int `json:"train_iterations"`

	// Seed makes clustering reproducible.
	Seed int64 `json:"seed"`
}

// DefaultParams returns the standard strategy parameters.
func DefaultParams() Params {
	return Params{
		ExactThreshold:  1000,
		MaxClusters:     100,
		ClusterDivisor:  10,
		MaxProbe:        10,
		TrainIterations: 20,
		Seed:            42,
	}
}

// Validate checks the parameters for consistency.
func (p Params) Validate() error {
	if p.ExactThreshold < 1 {
		return fmt.Errorf("exact_threshold must be at least 1, got %d", p.ExactThreshold)
	}
	if p.MaxClusters < 1 {
		return fmt.Errorf("max_clusters must be at least 1, got %d", p.MaxClusters)
	}
	if p.ClusterDivisor < 1 {
		return fmt.Errorf("cluster_divisor must be at least 1, got %d", p.ClusterDivisor)
	}
	if p.MaxProbe < 1 {
		return fmt.Errorf("max_probe must be at least 1, got %d", p.MaxProbe)
	}
	if p.TrainIterations < 1 {
		return fmt.Errorf("train_iterations must be at least 1, got %d", p.TrainIterations)
	}
	return nil
}

// Plan is the strategy chosen for a corpus.
type Plan struct {
	Kind   Kind `json:"kind"`
	NList  int  `json:"nlist,omitempty"`
	NProbe int  `json:"nprobe,omitempty"`
}

// Plan selects the strategy for a corpus of count vectors. Below
// ExactThreshold the flat index is used. Otherwise
// nlist = min(MaxClusters, count/ClusterDivisor) and
// nprobe = min(MaxProbe, nlist).
func (p Params) Plan(count int) Plan {
	if count < p.ExactThreshold {
		return Plan{Kind: KindFlat}
	}

	nlist := minInt(p.MaxClusters, count/p.ClusterDivisor)
	if nlist < 1 {
		nlist = 1
	}
	return Plan{
		Kind:   KindIVF,
		NList:  nlist,
		NProbe: minInt(p.MaxProbe, nlist),
	}
}

// New creates an empty index for plan.
func New(dim int, plan Plan, p Params) (Index, error) {
	if dim < 1 {
		return nil, fmt.Errorf("dimension must be positive, got %d", dim)
	}

	switch plan.Kind {
	case KindFlat:
		return NewFlat(dim), nil
	case KindIVF:
		return NewIVF(dim, plan.NList, plan.NProbe, p.TrainIterations, p.Seed)
	default:
		return nil, fmt.Errorf("unknown index kind %q", plan.Kind)
	}
}

// Build creates an index for vectors according to p, training it when the
// strategy requires it, and adds all vectors in order.
func Build(vectors [][]float32, p Params) (Index, Plan, error) {
	if len(vectors) == 0 {
		return nil, Plan{}, fmt.Errorf("build index: %w", ErrTrainingSet)
	}

	plan := p.Plan(len(vectors))
	idx, err := New(len(vectors[0]), plan, p)
	if err != nil {
		return nil, plan, err
	}

	if !idx.Trained() {
		if err := idx.Train(vectors); err != nil {
			return nil, plan, fmt.Errorf("train %s index: %w", plan.Kind, err)
		}
	}

	if err := idx.Add(vectors); err != nil {
		return nil, plan, fmt.Errorf("add vectors: %w", err)
	}

	return idx, plan, nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
