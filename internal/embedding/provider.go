// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

package embedding

import (
	"context"
	"errors"
	"fmt"
)

// Provider turns text into fixed-dimension vectors.
//
// EmbedBatch returns exactly one vector per input text, in input order, all
// of length Dimension(). Implementations are safe for concurrent use.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
	Model() string
}

// Pinger is implemented by providers that can check connectivity without
// running inference.
type Pinger interface {
	Ping(ctx context.Context) error
}

var (
	// ErrBadResponse is returned when a provider answers with the wrong
	// number of vectors or vectors of the wrong dimension.
	ErrBadResponse = errors.New("embedding provider returned an invalid response")

	// ErrUnavailable is returned when the circuit breaker rejects a call.
	ErrUnavailable = errors.New("embedding provider unavailable")
)

// checkBatch verifies a batch response against the request.
func checkBatch(vectors [][]float32, want, dim int) error {
	if len(vectors) != want {
		return fmt.Errorf("%w: got %d vectors for %d texts", ErrBadResponse, len(vectors), want)
	}
	for i, v := range vectors {
		if v == nil {
			return fmt.Errorf("%w: missing vector %d", ErrBadResponse, i)
		}
		if dim > 0 && len(v) != dim {
			return fmt.Errorf("%w: vector %d has dimension %d, want %d", ErrBadResponse, i, len(v), dim)
		}
	}
	return nil
}

// Ping checks p when it supports it.
func Ping(ctx context.Context, p Provider) error {
	if pinger, ok := p.(Pinger); ok {
		return pinger.Ping(ctx)
	}
	return nil
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}
