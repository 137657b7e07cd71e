// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// HashModel is the model name reported by HashProvider.
const HashModel = "feature-hash-v1"

// HashProvider is a deterministic, offline embedder based on feature hashing.
//
// Text is lower-cased and split on anything that is not a letter or digit.
// Each token and each adjacent token pair is hashed into one of dim buckets
// with a hash-derived sign, then the vector is L2-normalized. Texts sharing
// vocabulary land close together, which is enough for topic matching
// without a model server.
type HashProvider struct {
	dim int
}

// NewHashProvider returns a hashing embedder producing dim-length vectors.
func NewHashProvider(dim int) *HashProvider {
	if dim < 1 {
		dim = 384
	}
	return &HashProvider{dim: dim}
}

func (h *HashProvider) Dimension() int { return h.dim }
func (h *HashProvider) Model() string  { return HashModel }

func (h *HashProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return h.vector(text), nil
}

func (h *HashProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = h.vector(text)
	}
	return out, nil
}

func (h *HashProvider) vector(text string) []float32 {
	v := make([]float64, h.dim)
	tokens := tokenize(text)
	for i, tok := range tokens {
		h.add(v, tok, 1)
		if i > 0 {
			h.add(v, tokens[i-1]+" "+tok, 0.5)
		}
	}

	var norm float64
	for _, x := range v {
		norm += x * x
	}
	out := make([]float32, h.dim)
	if norm == 0 {
		return out
	}
	norm = math.Sqrt(norm)
	for i, x := range v {
		out[i] = float32(x / norm)
	}
	return out
}

func (h *HashProvider) add(v []float64, feature string, weight float64) {
	hasher := fnv.New64a()
	_, _ = hasher.Write([]byte(feature))
	sum := hasher.Sum64()

	bucket := int(sum % uint64(h.dim))
	if sum>>63 == 1 {
		weight = -weight
	}
	v[bucket] += weight
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
