// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

package api

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/tomtom215/synapse/internal/content"
	"github.com/tomtom215/synapse/internal/recommend"
	"github.com/tomtom215/synapse/internal/store"
)

// Pinger is a dependency reported by /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// ContentPublisher queues content for asynchronous indexing.
// *events.Publisher satisfies it.
type ContentPublisher interface {
	PublishUpsert(ctx context.Context, collection string, docs []content.Document) error
	PublishRefresh(ctx context.Context, reason string) error
}

// Handler serves the recommendation API.
type Handler struct {
	engine       *recommend.Engine
	lifecycle    *recommend.Lifecycle
	writer       store.Writer
	publisher    ContentPublisher
	dependencies map[string]Pinger
	buildTimeout time.Duration
	startTime    time.Time
	draining     atomic.Bool
}

// HandlerOption configures optional Handler collaborators.
type HandlerOption func(*Handler)

// WithWriter persists documents posted to /api/index/items before they are
// indexed, so they survive the next refresh.
func WithWriter(w store.Writer) HandlerOption {
	return func(h *Handler) { h.writer = w }
}

// WithPublisher makes /api/index/items queue documents as content events
// instead of indexing them in the request.
func WithPublisher(p ContentPublisher) HandlerOption {
	return func(h *Handler) { h.publisher = p }
}

// WithDependency adds a named dependency to /health.
func WithDependency(name string, p Pinger) HandlerOption {
	return func(h *Handler) { h.dependencies[name] = p }
}

// WithBuildTimeout bounds /api/refresh-index. The default is ten minutes.
func WithBuildTimeout(d time.Duration) HandlerOption {
	return func(h *Handler) {
		if d > 0 {
			h.buildTimeout = d
		}
	}
}

// NewHandler creates the API handler.
func NewHandler(engine *recommend.Engine, lifecycle *recommend.Lifecycle, opts ...HandlerOption) (*Handler, error) {
	if engine == nil || lifecycle == nil {
		return nil, fmt.Errorf("engine and lifecycle are required")
	}
	h := &Handler{
		engine:       engine,
		lifecycle:    lifecycle,
		dependencies: make(map[string]Pinger),
		buildTimeout: 10 * time.Minute,
		startTime:    time.Now(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}
