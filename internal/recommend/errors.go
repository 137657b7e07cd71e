// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

package recommend

import "errors"

var (
	// ErrNotReady is returned when no index build has completed yet.
	ErrNotReady = errors.New("recommendation index not ready")

	// ErrInvalidInput is returned for empty topics or an out-of-range limit.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUpstream wraps failures of the embedding provider or content store.
	ErrUpstream = errors.New("upstream failure")
)

// outcome maps an error to the result label used in request metrics.
func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrInvalidInput):
		return "invalid"
	case errors.Is(err, ErrNotReady):
		return "not_ready"
	default:
		return "failure"
	}
}
