// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

package vectorindex

import (
	"fmt"
	"math/rand"
)

// kmeans clusters vectors into k centroids using k-means++ seeding followed
// by Lloyd iterations. The same seed and input always produce the same
// centroids. A cluster that loses all members keeps its previous centroid.
func kmeans(vectors [][]float32, k, iterations int, seed int64) ([][]float32, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: need at least one cluster", ErrTrainingSet)
	}
	if len(vectors) < k {
		return nil, fmt.Errorf("%w: %d vectors for %d clusters", ErrTrainingSet, len(vectors), k)
	}

	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // clustering, not security
	centroids := seedCentroids(vectors, k, rng)
	dim := len(vectors[0])
	assign := make([]int, len(vectors))
	for i := range assign {
		assign[i] = -1
	}

	for iter := 0; iter < iterations; iter++ {
		changed := 0
		for i, v := range vectors {
			c, _ := nearest(centroids, v)
			if assign[i] != c {
				assign[i] = c
				changed++
			}
		}
		if changed == 0 {
			break
		}

		sums := make([][]float64, k)
		counts := make([]int, k)
		for i, v := range vectors {
			c := assign[i]
			if sums[c] == nil {
				sums[c] = make([]float64, dim)
			}
			for j, x := range v {
				sums[c][j] += float64(x)
			}
			counts[c]++
		}
		for c := range centroids {
			if counts[c] == 0 {
				continue
			}
			for j := range centroids[c] {
				centroids[c][j] = float32(sums[c][j] / float64(counts[c]))
			}
		}
	}

	return centroids, nil
}

// seedCentroids picks k initial centroids with k-means++: each new centroid
// is drawn with probability proportional to its squared distance from the
// closest centroid chosen so far.
func seedCentroids(vectors [][]float32, k int, rng *rand.Rand) [][]float32 {
	centroids := make([][]float32, 0, k)
	centroids = append(centroids, cloneVector(vectors[rng.Intn(len(vectors))]))

	dist := make([]float64, len(vectors))
	for i, v := range vectors {
		dist[i] = float64(squaredL2(v, centroids[0]))
	}

	for len(centroids) < k {
		var total float64
		for _, d := range dist {
			total += d
		}

		next := 0
		if total > 0 {
			target := rng.Float64() * total
			for i, d := range dist {
				target -= d
				if target <= 0 && d > 0 {
					next = i
					break
				}
				next = i
			}
		} else {
			// All remaining vectors coincide with a centroid.
			next = rng.Intn(len(vectors))
		}

		c := cloneVector(vectors[next])
		centroids = append(centroids, c)
		for i, v := range vectors {
			if d := float64(squaredL2(v, c)); d < dist[i] {
				dist[i] = d
			}
		}
	}

	return centroids
}

// nearest returns the index of the centroid closest to v and its distance.
func nearest(centroids [][]float32, v []float32) (int, float32) {
	best, bestDist := 0, squaredL2(v, centroids[0])
	for c := 1; c < len(centroids); c++ {
		if d := squaredL2(v, centroids[c]); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, bestDist
}
