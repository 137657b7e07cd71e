// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/synapse/internal/content"
	"github.com/tomtom215/synapse/internal/logging"
	"github.com/tomtom215/synapse/internal/recommend"
)

const maxItemsBody = 8 << 20

// RefreshIndex handles POST /api/refresh-index. The rebuild runs to
// completion even if the client disconnects; the previous index keeps
// serving until the new one is swapped in.
// @Summary Rebuild the index
// @Tags Index
// @Produce json
// @Success 200 {object} StatusResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/refresh-index [post]
func (h *Handler) RefreshIndex(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), h.buildTimeout)
	defer cancel()

	total, err := h.lifecycle.Refresh(ctx)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, &APIError{
			Code:    refreshErrorCode(err),
			Message: "Index refresh failed; previous index remains active",
		}, err)
		return
	}

	respondJSON(w, http.StatusOK, &StatusResponse{Status: "success", TotalContent: total})
}

func refreshErrorCode(err error) string {
	if errors.Is(err, recommend.ErrUpstream) {
		return ErrCodeUpstreamFailure
	}
	return ErrCodeInternalError
}

// IndexStats handles GET /api/index/stats.
// @Summary Index statistics
// @Tags Index
// @Produce json
// @Success 200 {object} recommend.IndexStats
// @Router /api/index/stats [get]
func (h *Handler) IndexStats(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, h.engine.Index().Stats())
}

// AddItemsRequest is the body of POST /api/index/items. The content type
// comes from ContentType, else from the collection name.
type AddItemsRequest struct {
	ContentType string             `json:"content_type,omitempty" validate:"omitempty,content_type"`
	Collection  string             `json:"collection,omitempty" validate:"omitempty,max=128"`
	Items       []content.Document `json:"items" validate:"required,min=1,max=1000"`
}

// AddItems handles POST /api/index/items. Documents are persisted when a
// writer is configured and a collection is named, then either appended to
// the live index (200) or queued as a content event (202).
// @Summary Add content items
// @Tags Index
// @Accept json
// @Produce json
// @Param request body AddItemsRequest true "Documents to index"
// @Success 200 {object} StatusResponse
// @Success 202 {object} StatusResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /api/index/items [post]
func (h *Handler) AddItems(w http.ResponseWriter, r *http.Request) {
	var req AddItemsRequest
	if !decodeJSON(w, r, maxItemsBody, &req) {
		return
	}

	t := content.Type(req.ContentType)
	if req.ContentType == "" {
		t = h.lifecycle.TypeOf(req.Collection)
	}

	if h.writer != nil && req.Collection != "" {
		if err := h.writer.Insert(r.Context(), req.Collection, req.Items); err != nil {
			respondError(w, r, http.StatusInternalServerError, &APIError{
				Code:    ErrCodeUpstreamFailure,
				Message: "Failed to store content",
			}, err)
			return
		}
	}

	if h.publisher != nil {
		h.queueItems(w, r, &req, t)
		return
	}

	if !h.engine.Index().Ready() {
		respondEngineError(w, r, recommend.ErrNotReady)
		return
	}

	items := content.FromDocuments(req.Items, t)
	total, err := h.lifecycle.Update(r.Context(), items)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}

	added := len(items)
	respondJSON(w, http.StatusOK, &StatusResponse{Status: "success", Added: &added, TotalContent: total})
}

func (h *Handler) queueItems(w http.ResponseWriter, r *http.Request, req *AddItemsRequest, t content.Type) {
	// Events carry only a collection. When it is missing or maps to another
	// type, the content type name is sent instead; TypeOf maps it back.
	collection := req.Collection
	if collection == "" || (req.ContentType != "" && h.lifecycle.TypeOf(collection) != t) {
		collection = string(t)
	}

	if err := h.publisher.PublishUpsert(r.Context(), collection, req.Items); err != nil {
		respondError(w, r, http.StatusInternalServerError, &APIError{
			Code:    ErrCodeInternalError,
			Message: "Failed to queue content",
		}, err)
		return
	}

	queued := len(req.Items)
	logging.Ctx(r.Context()).Info().
		Str("collection", collection).
		Int("queued", queued).
		Msg("Content queued for indexing")
	respondJSON(w, http.StatusAccepted, &StatusResponse{
		Status:       "accepted",
		Queued:       &queued,
		TotalContent: h.engine.Index().Len(),
	})
}
