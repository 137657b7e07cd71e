// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

// Package validation validates API request bodies with go-playground/validator
// v10 through a shared, lazily built validator.
//
// Errors name fields by their json tag and convert to the API's
// VALIDATION_ERROR body:
//
//	type RecommendRequest struct {
//	    Topics []string `json:"topics" validate:"required,min=1,max=20,dive,notblank"`
//	    Limit  int      `json:"limit"  validate:"gte=0"`
//	}
//
//	if err := validation.ValidateStruct(&req); err != nil {
//	    apiErr := err.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	    return
//	}
package validation
