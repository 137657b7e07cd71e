// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/synapse/internal/logging"
	"github.com/tomtom215/synapse/internal/recommend"
	"github.com/tomtom215/synapse/internal/validation"
)

// Error codes for API responses
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeValidation         = validation.CodeValidationError
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeUpstreamFailure    = "UPSTREAM_FAILURE"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// retryAfterSeconds is sent with 503 responses while the index builds.
const retryAfterSeconds = "5"

// ErrorResponse is the body of every failed request. Detail repeats the
// message for clients that only read the top-level field.
type ErrorResponse struct {
	Status string    `json:"status"`
	Detail string    `json:"detail"`
	Error  *APIError `json:"error"`
}

// APIError represents an error response.
type APIError struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// StatusResponse acknowledges index mutations.
type StatusResponse struct {
	Status       string `json:"status"`
	TotalContent int    `json:"total_content"`
	Added        *int   `json:"added,omitempty"`
	Queued       *int   `json:"queued,omitempty"`
}

// respondJSON writes v as JSON with the given status.
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondError writes an error body. err, when present, is logged with the
// request's IDs and never sent to the client.
func respondError(w http.ResponseWriter, r *http.Request, status int, apiErr *APIError, err error) {
	apiErr.RequestID = logging.RequestIDFromContext(r.Context())

	if err != nil {
		event := logging.Ctx(r.Context()).Warn()
		if status >= http.StatusInternalServerError {
			event = logging.Ctx(r.Context()).Error()
		}
		event.Err(err).
			Str("code", apiErr.Code).
			Int("status", status).
			Str("path", r.URL.Path).
			Msg("API error")
	}

	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", retryAfterSeconds)
	}
	respondJSON(w, status, &ErrorResponse{
		Status: "error",
		Detail: apiErr.Message,
		Error:  apiErr,
	})
}

// respondEngineError maps recommendation errors onto HTTP statuses.
func respondEngineError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, recommend.ErrInvalidInput):
		respondError(w, r, http.StatusBadRequest,
			&APIError{Code: ErrCodeBadRequest, Message: invalidInputMessage(err)}, err)
	case errors.Is(err, recommend.ErrNotReady):
		respondError(w, r, http.StatusServiceUnavailable,
			&APIError{Code: ErrCodeServiceUnavailable, Message: "Recommendation system not ready"}, err)
	case errors.Is(err, recommend.ErrUpstream):
		respondError(w, r, http.StatusInternalServerError,
			&APIError{Code: ErrCodeUpstreamFailure, Message: "Upstream service failed"}, err)
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, r, http.StatusInternalServerError,
			&APIError{Code: ErrCodeInternalError, Message: "Request timed out"}, err)
	default:
		respondError(w, r, http.StatusInternalServerError,
			&APIError{Code: ErrCodeInternalError, Message: "Internal server error"}, err)
	}
}

// invalidInputMessage strips the sentinel prefix so clients see only the
// reason, e.g. "no topics provided".
func invalidInputMessage(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, recommend.ErrInvalidInput.Error()+": "); i >= 0 {
		msg = msg[i+len(recommend.ErrInvalidInput.Error())+2:]
	}
	if msg == "" {
		return "Invalid input"
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}

// decodeJSON reads a bounded JSON body into v and validates it. It writes
// the error response itself and reports whether decoding succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, v interface{}) bool {
	body := http.MaxBytesReader(w, r.Body, maxBytes)
	defer body.Close()

	if err := json.NewDecoder(body).Decode(v); err != nil {
		msg := "Invalid JSON body"
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			msg = fmt.Sprintf("Request body exceeds %d bytes", maxBytes)
		case errors.Is(err, io.EOF):
			msg = "Request body is empty"
		}
		respondError(w, r, http.StatusBadRequest, &APIError{Code: ErrCodeBadRequest, Message: msg}, err)
		return false
	}

	if verr := validation.ValidateStruct(v); verr != nil {
		apiErr := verr.ToAPIError()
		respondError(w, r, http.StatusBadRequest, &APIError{
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Details: apiErr.Details,
		}, verr)
		return false
	}
	return true
}
