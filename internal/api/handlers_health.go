// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

package api

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"
)

const dependencyTimeout = 2 * time.Second

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status       string            `json:"status"`
	IndexTrained bool              `json:"index_trained"`
	TotalContent int               `json:"total_content"`
	State        string            `json:"state"`
	Uptime       float64           `json:"uptime_seconds"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// Health handles GET /health. Status is "unhealthy" only while no index has
// been built; dependency failures are reported but do not change it.
// @Summary Service health
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	idx := h.engine.Index()
	ready := idx.Ready()

	status := "healthy"
	if !ready {
		status = "unhealthy"
	}

	respondJSON(w, http.StatusOK, &HealthResponse{
		Status:       status,
		IndexTrained: ready,
		TotalContent: idx.Len(),
		State:        string(idx.State()),
		Uptime:       time.Since(h.startTime).Seconds(),
		Dependencies: h.checkDependencies(r.Context()),
	})
}

// HealthLive handles GET /health/live.
// @Summary Liveness probe
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health/live [get]
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// Drain makes /health/ready report 503 from now on so load balancers stop
// routing here before the server shuts down. Other endpoints keep serving.
func (h *Handler) Drain() {
	h.draining.Store(true)
}

// HealthReady handles GET /health/ready: 200 once an index serves
// searches, 503 before and while draining.
// @Summary Readiness probe
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} ErrorResponse
// @Router /health/ready [get]
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if h.draining.Load() {
		respondError(w, r, http.StatusServiceUnavailable, &APIError{
			Code:    ErrCodeServiceUnavailable,
			Message: "Server is shutting down",
		}, nil)
		return
	}
	if !h.engine.Index().Ready() {
		respondError(w, r, http.StatusServiceUnavailable, &APIError{
			Code:    ErrCodeServiceUnavailable,
			Message: "Recommendation index not built yet",
		}, nil)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// checkDependencies pings every dependency concurrently and reports "ok" or
// the error text per name.
func (h *Handler) checkDependencies(ctx context.Context) map[string]string {
	if len(h.dependencies) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, dependencyTimeout)
	defer cancel()

	names := make([]string, 0, len(h.dependencies))
	for name := range h.dependencies {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]string, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, p Pinger) {
			defer wg.Done()
			if err := p.Ping(ctx); err != nil {
				results[i] = err.Error()
				return
			}
			results[i] = "ok"
		}(i, h.dependencies[name])
	}
	wg.Wait()

	out := make(map[string]string, len(names))
	for i, name := range names {
		out[name] = results[i]
	}
	return out
}
