// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

package vectorindex

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"
)

// clusteredVectors returns n vectors scattered tightly around `centers`
// well-separated points. Vector i belongs to center i % centers.
func clusteredVectors(n, centers, dim int, seed int64) [][]float32 {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // test data
	out := make([][]float32, n)
	for i := range out {
		c := i % centers
		v := make([]float32, dim)
		for j := range v {
			v[j] = rng.Float32() * 0.1
		}
		v[c%dim] += float32(10 * (c/dim + 1))
		out[i] = v
	}
	return out
}

func TestIVFRequiresTraining(t *testing.T) {
	t.Parallel()

	idx, err := NewIVF(2, 2, 1, 5, 1)
	if err != nil {
		t.Fatalf("NewIVF() error = %v", err)
	}
	if idx.Trained() {
		t.Fatal("new IVF index reports trained")
	}
	if err := idx.Add([][]float32{{1, 1}}); !errors.Is(err, ErrNotTrained) {
		t.Errorf("Add() error = %v, want ErrNotTrained", err)
	}
	if err := idx.Train([][]float32{{1, 1}}); !errors.Is(err, ErrTrainingSet) {
		t.Errorf("Train(1 vector) error = %v, want ErrTrainingSet", err)
	}
}

func TestNewIVFRejectsBadProbe(t *testing.T) {
	t.Parallel()

	if _, err := NewIVF(2, 4, 5, 5, 1); err == nil {
		t.Error("NewIVF(nprobe > nlist) = nil error")
	}
	if _, err := NewIVF(2, 0, 0, 5, 1); err == nil {
		t.Error("NewIVF(nlist 0) = nil error")
	}
}

func TestIVFFindsOwnCluster(t *testing.T) {
	t.Parallel()

	const dim = 8
	vectors := clusteredVectors(400, 8, dim, 7)
	idx, err := NewIVF(dim, 8, 2, 20, 42)
	if err != nil {
		t.Fatalf("NewIVF() error = %v", err)
	}
	if err := idx.Train(vectors); err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	if err := idx.Add(vectors); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	for q := 0; q < 8; q++ {
		hits, err := idx.Search(vectors[q], 5)
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		if len(hits) != 5 {
			t.Fatalf("len(hits) = %d, want 5", len(hits))
		}
		if hits[0].Position != q || hits[0].Distance != 0 {
			t.Errorf("query %d: best hit = %+v, want itself at distance 0", q, hits[0])
		}
		for _, h := range hits {
			if h.Position%8 != q%8 {
				t.Errorf("query %d: hit %d from another cluster", q, h.Position)
			}
		}
		for i := 1; i < len(hits); i++ {
			if worse(hits[i-1], hits[i]) {
				t.Errorf("query %d: hits out of order at %d", q, i)
			}
		}
	}
}

func TestIVFMatchesFlatForFullProbe(t *testing.T) {
	t.Parallel()

	vectors := randomVectors(200, 6, 3)
	ivf, _ := NewIVF(6, 5, 5, 10, 9)
	if err := ivf.Train(vectors); err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	_ = ivf.Add(vectors)

	flat := NewFlat(6)
	_ = flat.Add(vectors)

	query := randomVectors(1, 6, 99)[0]
	got, _ := ivf.Search(query, 10)
	want, _ := flat.Search(query, 10)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("IVF with nprobe == nlist = %+v, want %+v", got, want)
	}
}

func TestIVFDeterministic(t *testing.T) {
	t.Parallel()

	vectors := randomVectors(300, 4, 5)
	query := randomVectors(1, 4, 6)[0]
	p := Params{ExactThreshold: 10, MaxClusters: 10, ClusterDivisor: 10, MaxProbe: 3, TrainIterations: 15, Seed: 42}

	first, _, err := Build(vectors, p)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	second, _, _ := Build(vectors, p)

	a, _ := first.Search(query, 10)
	b, _ := second.Search(query, 10)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("same seed produced different results: %+v vs %+v", a, b)
	}
}

func TestIVFExtend(t *testing.T) {
	t.Parallel()

	vectors := clusteredVectors(40, 4, 4, 11)
	idx, _ := NewIVF(4, 4, 1, 10, 42)
	if err := idx.Train(vectors); err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	_ = idx.Add(vectors)

	extra := []float32{10, 0, 0, 0}
	next, err := idx.Extend([][]float32{extra})
	if err != nil {
		t.Fatalf("Extend() error = %v", err)
	}
	if idx.Len() != 40 || next.Len() != 41 {
		t.Fatalf("Len() = %d/%d, want 40/41", idx.Len(), next.Len())
	}

	hits, _ := next.Search(extra, 1)
	if hits[0].Position != 40 {
		t.Errorf("best hit = %+v, want appended vector at 40", hits[0])
	}
	hits, _ = idx.Search(extra, 41)
	for _, h := range hits {
		if h.Position == 40 {
			t.Error("receiver sees vector appended by Extend")
		}
	}
}

func TestIVFSearchMayReturnFewerThanK(t *testing.T) {
	t.Parallel()

	vectors := clusteredVectors(20, 2, 2, 13)
	idx, _ := NewIVF(2, 2, 1, 10, 42)
	_ = idx.Train(vectors)
	_ = idx.Add(vectors)

	hits, err := idx.Search(vectors[0], 20)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 10 {
		t.Errorf("len(hits) = %d, want the 10 vectors of the probed cluster", len(hits))
	}
}
