// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

package vectorindex

import "sort"

// squaredL2 returns the squared Euclidean distance between a and b.
// Both slices must have the same length.
func squaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// topK keeps the k smallest hits seen so far in a bounded max-heap.
// The root is the current worst hit, so a new candidate only needs one
// comparison to be rejected.
type topK struct {
	k    int
	hits []Hit
}

func newTopK(k int) *topK {
	return &topK{k: k, hits: make([]Hit, 0, k)}
}

// worse reports whether a ranks after b: larger distance, or equal distance
// and larger position.
func worse(a, b Hit) bool {
	if a.Distance != b.Distance {
		return a.Distance > b.Distance
	}
	return a.Position > b.Position
}

func (t *topK) push(h Hit) {
	if t.k <= 0 {
		return
	}
	if len(t.hits) < t.k {
		t.hits = append(t.hits, h)
		t.bubbleUp(len(t.hits) - 1)
		return
	}
	if !worse(t.hits[0], h) {
		return
	}
	t.hits[0] = h
	t.bubbleDown(0)
}

func (t *topK) bubbleUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !worse(t.hits[i], t.hits[parent]) {
			return
		}
		t.hits[i], t.hits[parent] = t.hits[parent], t.hits[i]
		i = parent
	}
}

func (t *topK) bubbleDown(i int) {
	n := len(t.hits)
	for {
		largest := i
		left, right := 2*i+1, 2*i+2
		if left < n && worse(t.hits[left], t.hits[largest]) {
			largest = left
		}
		if right < n && worse(t.hits[right], t.hits[largest]) {
			largest = right
		}
		if largest == i {
			return
		}
		t.hits[i], t.hits[largest] = t.hits[largest], t.hits[i]
		i = largest
	}
}

// sorted returns the kept hits ordered best first.
func (t *topK) sorted() []Hit {
	out := make([]Hit, len(t.hits))
	copy(out, t.hits)
	sort.Slice(out, func(i, j int) bool { return worse(out[j], out[i]) })
	return out
}
