// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomtom215/synapse/internal/logging"
)

const defaultShutdownTimeout = 10 * time.Second

// HTTPServerOption configures an HTTPServerService.
type HTTPServerOption func(*HTTPServerService)

// WithDrain registers fn to run when shutdown begins, before in-flight
// requests are drained. The API handler's Drain is the usual hook.
func WithDrain(fn func()) HTTPServerOption {
	return func(h *HTTPServerService) {
		if fn != nil {
			h.drainHooks = append(h.drainHooks, fn)
		}
	}
}

// WithDrainDelay keeps serving for d after the drain hooks ran, giving load
// balancers time to see the failing readiness probe. The delay counts
// against the shutdown timeout.
func WithDrainDelay(d time.Duration) HTTPServerOption {
	return func(h *HTTPServerService) {
		if d > 0 {
			h.drainDelay = d
		}
	}
}

// HTTPServerService runs the API server under supervision.
//
// Serve binds the listener itself: a bind failure is returned to the
// supervisor, which retries with backoff, and Addr reports the bound address
// even when the configured port is 0. Cancelling the Serve context drains
// the server:
//
//  1. drain hooks run (readiness turns 503)
//  2. the server keeps serving for the drain delay
//  3. http.Server.Shutdown waits for in-flight recommend and refresh calls
//
// Steps 2 and 3 share the shutdown timeout.
type HTTPServerService struct {
	server          *http.Server
	shutdownTimeout time.Duration
	drainDelay      time.Duration
	drainHooks      []func()

	addr       atomic.Pointer[string]
	listening  chan struct{}
	listenOnce sync.Once
}

// NewHTTPServerService wraps server. A non-positive timeout becomes 10s and a
// drain delay that would use up the whole timeout is ignored.
func NewHTTPServerService(server *http.Server, shutdownTimeout time.Duration, opts ...HTTPServerOption) *HTTPServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}
	h := &HTTPServerService{
		server:          server,
		shutdownTimeout: shutdownTimeout,
		listening:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.drainDelay >= h.shutdownTimeout {
		h.drainDelay = 0
	}
	return h
}

// Addr returns the address the server is bound to, or "" before the first
// successful bind.
func (h *HTTPServerService) Addr() string {
	if p := h.addr.Load(); p != nil {
		return *p
	}
	return ""
}

// Listening is closed once the server has bound its listener.
func (h *HTTPServerService) Listening() <-chan struct{} {
	return h.listening
}

// Serve implements suture.Service.
func (h *HTTPServerService) Serve(ctx context.Context) error {
	log := logging.WithComponent("http")

	ln, err := (&net.ListenConfig{}).Listen(ctx, "tcp", h.server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", h.server.Addr, err)
	}
	addr := ln.Addr().String()
	h.addr.Store(&addr)
	h.listenOnce.Do(func() { close(h.listening) })
	log.Info().Str("addr", addr).Msg("HTTP server listening")

	errCh := make(chan error, 1)
	go func() {
		errCh <- h.server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)

	case <-ctx.Done():
	}

	// ctx is done; shutdown runs on its own deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
	defer cancel()

	for _, fn := range h.drainHooks {
		fn()
	}
	if h.drainDelay > 0 {
		log.Info().Dur("delay", h.drainDelay).Msg("Draining before shutdown")
		select {
		case <-time.After(h.drainDelay):
		case err := <-errCh:
			// The server died while draining; nothing left to shut down.
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server failed while draining: %w", err)
			}
			return ctx.Err()
		}
	}

	if err := h.server.Shutdown(shutdownCtx); err != nil {
		_ = h.server.Close()
		<-errCh
		return fmt.Errorf("http server shutdown: %w", err)
	}
	<-errCh
	log.Info().Msg("HTTP server stopped")
	return ctx.Err()
}

// String names the service in supervisor logs.
func (h *HTTPServerService) String() string {
	return "http-server"
}
