// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

package api

import (
	"net/http"

	"github.com/tomtom215/synapse/internal/recommend"
)

const maxRecommendBody = 64 << 10

// RecommendRequest is the body of POST /api/recommend. A missing limit
// selects the configured default. Missing or blank topics are rejected by
// the engine so every such request gets the same message.
type RecommendRequest struct {
	Topics []string `json:"topics" validate:"max=50,dive,max=200"`
	Limit  *int     `json:"limit,omitempty" validate:"omitempty,gte=1"`
}

// Recommend handles POST /api/recommend.
// @Summary Recommend content for topics
// @Tags Recommendations
// @Accept json
// @Produce json
// @Param request body RecommendRequest true "Topics and optional limit"
// @Success 200 {object} recommend.Response
// @Failure 400 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /api/recommend [post]
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	if !h.engine.Index().Ready() {
		respondEngineError(w, r, recommend.ErrNotReady)
		return
	}

	var req RecommendRequest
	if !decodeJSON(w, r, maxRecommendBody, &req) {
		return
	}

	limit := 0
	if req.Limit != nil {
		limit = *req.Limit
	}

	resp, err := h.engine.Recommend(r.Context(), req.Topics, limit)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}
