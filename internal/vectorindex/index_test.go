// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

package vectorindex

import (
	"errors"
	"math/rand"
	"testing"
)

func TestParamsPlan(t *testing.T) {
	t.Parallel()

	p := DefaultParams()
	tests := []struct {
		count int
		want  Plan
	}{
		{count: 1, want: Plan{Kind: KindFlat}},
		{count: 999, want: Plan{Kind: KindFlat}},
		{count: 1000, want: Plan{Kind: KindIVF, NList: 100, NProbe: 10}},
		{count: 1500, want: Plan{Kind: KindIVF, NList: 100, NProbe: 10}},
		{count: 50000, want: Plan{Kind: KindIVF, NList: 100, NProbe: 10}},
	}
	for _, tt := range tests {
		if got := p.Plan(tt.count); got != tt.want {
			t.Errorf("Plan(%d) = %+v, want %+v", tt.count, got, tt.want)
		}
	}

	small := Params{ExactThreshold: 20, MaxClusters: 100, ClusterDivisor: 10, MaxProbe: 10, TrainIterations: 5}
	if got := small.Plan(45); got != (Plan{Kind: KindIVF, NList: 4, NProbe: 4}) {
		t.Errorf("Plan(45) = %+v, want ivf/4/4", got)
	}
}

func TestParamsValidate(t *testing.T) {
	t.Parallel()

	if err := DefaultParams().Validate(); err != nil {
		t.Fatalf("DefaultParams().Validate() = %v", err)
	}

	bad := DefaultParams()
	bad.ClusterDivisor = 0
	if err := bad.Validate(); err == nil {
		t.Error("Validate() with zero divisor = nil, want error")
	}
}

func TestFlatSearchOrdering(t *testing.T) {
	t.Parallel()

	idx := NewFlat(2)
	vectors := [][]float32{{3, 0}, {1, 0}, {0, 0}, {1, 0}, {2, 0}}
	if err := idx.Add(vectors); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	hits, err := idx.Search([]float32{0, 0}, 4)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	want := []Hit{{2, 0}, {1, 1}, {3, 1}, {4, 4}}
	if len(hits) != len(want) {
		t.Fatalf("len(hits) = %d, want %d", len(hits), len(want))
	}
	for i := range want {
		if hits[i] != want[i] {
			t.Errorf("hits[%d] = %+v, want %+v", i, hits[i], want[i])
		}
	}
}

func TestFlatSearchClampsK(t *testing.T) {
	t.Parallel()

	idx := NewFlat(1)
	_ = idx.Add([][]float32{{1}, {2}})

	hits, err := idx.Search([]float32{0}, 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 2 {
		t.Errorf("len(hits) = %d, want 2", len(hits))
	}

	hits, _ = idx.Search([]float32{0}, 0)
	if len(hits) != 0 {
		t.Errorf("Search(k=0) returned %d hits", len(hits))
	}
}

func TestDimensionMismatch(t *testing.T) {
	t.Parallel()

	idx := NewFlat(3)
	if err := idx.Add([][]float32{{1, 2}}); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("Add() error = %v, want ErrDimensionMismatch", err)
	}
	if _, err := idx.Search([]float32{1}, 1); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("Search() error = %v, want ErrDimensionMismatch", err)
	}
}

func TestFlatExtendLeavesReceiverUnchanged(t *testing.T) {
	t.Parallel()

	base := NewFlat(1)
	_ = base.Add([][]float32{{0}, {1}})

	next, err := base.Extend([][]float32{{0.5}})
	if err != nil {
		t.Fatalf("Extend() error = %v", err)
	}
	if base.Len() != 2 {
		t.Errorf("base.Len() = %d, want 2", base.Len())
	}
	if next.Len() != 3 {
		t.Errorf("next.Len() = %d, want 3", next.Len())
	}

	hits, _ := next.Search([]float32{0.5}, 1)
	if hits[0].Position != 2 {
		t.Errorf("nearest position = %d, want 2", hits[0].Position)
	}

	// A second extension of the same base must not see the first.
	other, _ := base.Extend([][]float32{{9}})
	hits, _ = other.Search([]float32{0.5}, 3)
	for _, h := range hits {
		if h.Position == 2 && h.Distance != 8.5*8.5 {
			t.Errorf("sibling extension shares appended vector: %+v", h)
		}
	}
}

func TestBuildChoosesStrategy(t *testing.T) {
	t.Parallel()

	p := Params{ExactThreshold: 50, MaxClusters: 8, ClusterDivisor: 10, MaxProbe: 2, TrainIterations: 10, Seed: 1}

	idx, plan, err := Build(randomVectors(20, 4, 1), p)
	if err != nil {
		t.Fatalf("Build(20) error = %v", err)
	}
	if idx.Kind() != KindFlat || plan.Kind != KindFlat {
		t.Errorf("Build(20) kind = %s/%s, want flat", idx.Kind(), plan.Kind)
	}

	idx, plan, err = Build(randomVectors(100, 4, 2), p)
	if err != nil {
		t.Fatalf("Build(100) error = %v", err)
	}
	if idx.Kind() != KindIVF {
		t.Errorf("Build(100) kind = %s, want ivf", idx.Kind())
	}
	if plan.NList != 8 || plan.NProbe != 2 {
		t.Errorf("plan = %+v, want nlist 8 nprobe 2", plan)
	}
	if idx.Len() != 100 {
		t.Errorf("Len() = %d, want 100", idx.Len())
	}
}

func TestBuildEmpty(t *testing.T) {
	t.Parallel()

	if _, _, err := Build(nil, DefaultParams()); !errors.Is(err, ErrTrainingSet) {
		t.Errorf("Build(nil) error = %v, want ErrTrainingSet", err)
	}
}

func randomVectors(n, dim int, seed int64) [][]float32 {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // test data
	out := make([][]float32, n)
	for i := range out {
		v := make([]float32, dim)
		for j := range v {
			v[j] = rng.Float32()
		}
		out[i] = v
	}
	return out
}
