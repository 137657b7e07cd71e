// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/synapse/internal/config"
	"github.com/tomtom215/synapse/internal/logging"
	"github.com/tomtom215/synapse/internal/metrics"
)

// GuardedProvider wraps a remote provider with a client-side rate limiter
// and a circuit breaker. Each batch counts as one breaker request.
//
// The breaker uses wall-clock time for its interval and timeout. Tests
// that need an open circuit trip it with failures rather than faking time.
type GuardedProvider struct {
	next    Provider
	cb      *gobreaker.CircuitBreaker[[][]float32]
	limiter *rate.Limiter
	name    string
}

// NewGuardedProvider wraps next. A nil breaker config or a disabled one
// leaves the breaker out; a zero rate leaves the limiter out.
func NewGuardedProvider(next Provider, cfg *config.EmbeddingConfig) *GuardedProvider {
	g := &GuardedProvider{
		next: next,
		name: "embedding-" + next.Model(),
	}

	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	if cfg.Breaker.Enabled {
		g.cb = newBreaker(g.name, &cfg.Breaker)
	}
	return g
}

func newBreaker(name string, cfg *config.BreakerConfig) *gobreaker.CircuitBreaker[[][]float32] {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)

	logger := logging.WithComponent("embedding")

	return gobreaker.NewCircuitBreaker[[][]float32](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			if failureRatio >= cfg.FailureRatio {
				logger.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("[CIRCUIT BREAKER] Opening circuit")
				return true
			}
			return false
		},

		// Context cancellation is the caller giving up, not the provider failing.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			logger.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).
				Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})
}

func (g *GuardedProvider) Dimension() int { return g.next.Dimension() }
func (g *GuardedProvider) Model() string  { return g.next.Model() }

// State reports the breaker state, or "disabled".
func (g *GuardedProvider) State() string {
	if g.cb == nil {
		return "disabled"
	}
	return stateToString(g.cb.State())
}

func (g *GuardedProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := g.execute(ctx, func() ([][]float32, error) {
		v, err := g.next.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		return [][]float32{v}, nil
	})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (g *GuardedProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return g.execute(ctx, func() ([][]float32, error) {
		return g.next.EmbedBatch(ctx, texts)
	})
}

// Ping bypasses the breaker so health checks can observe recovery.
func (g *GuardedProvider) Ping(ctx context.Context) error {
	return Ping(ctx, g.next)
}

func (g *GuardedProvider) execute(ctx context.Context, fn func() ([][]float32, error)) ([][]float32, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("embedding rate limiter: %w", err)
		}
	}
	if g.cb == nil {
		return fn()
	}

	result, err := g.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(g.name, "rejected").Inc()
			logging.Ctx(ctx).Warn().Err(err).Str("breaker", g.name).Msg("[CIRCUIT BREAKER] Request rejected")
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		metrics.CircuitBreakerRequests.WithLabelValues(g.name, "failure").Inc()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(g.name).
			Set(float64(g.cb.Counts().ConsecutiveFailures))
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(g.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(g.name).Set(0)
	return result, nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// instrumented records latency and error metrics for every call.
type instrumented struct {
	Provider
	name string
}

func (m instrumented) Embed(ctx context.Context, text string) ([]float32, error) {
	start := time.Now()
	v, err := m.Provider.Embed(ctx, text)
	metrics.RecordEmbedding(m.name, 1, time.Since(start), err)
	return v, err
}

func (m instrumented) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	start := time.Now()
	v, err := m.Provider.EmbedBatch(ctx, texts)
	metrics.RecordEmbedding(m.name, len(texts), time.Since(start), err)
	return v, err
}

func (m instrumented) Ping(ctx context.Context) error {
	return Ping(ctx, m.Provider)
}
