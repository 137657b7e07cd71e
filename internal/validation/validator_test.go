// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

package validation

import (
	"strings"
	"testing"
)

type recommendRequest struct {
	Topics []string `json:"topics" validate:"required,min=1,max=3,dive,notblank"`
	Limit  int      `json:"limit" validate:"gte=0,lte=50"`
}

type itemsRequest struct {
	ContentType string `json:"content_type" validate:"omitempty,content_type"`
	Title       string `json:"title,omitempty" validate:"omitempty,max=5"`
	Internal    string `json:"-" validate:"omitempty,oneof=a b"`
}

func TestGetValidator_Singleton(t *testing.T) {
	if v1, v2 := GetValidator(), GetValidator(); v1 == nil || v1 != v2 {
		t.Error("GetValidator() should return one non-nil instance")
	}
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name      string
		input     interface{}
		wantField string
		wantMsg   string
	}{
		{"valid", &recommendRequest{Topics: []string{"ai"}, Limit: 5}, "", ""},
		{"missing topics", &recommendRequest{}, "topics", "topics is required"},
		{"empty topics", &recommendRequest{Topics: []string{}}, "topics", "topics must be at least 1 items"},
		{"too many topics", &recommendRequest{Topics: []string{"a", "b", "c", "d"}}, "topics", "topics must be at most 3 items"},
		{"blank topic", &recommendRequest{Topics: []string{"ai", "  "}}, "topics[1]", "topics[1] must not be blank"},
		{"negative limit", &recommendRequest{Topics: []string{"ai"}, Limit: -1}, "limit", "limit must be greater than or equal to 0"},
		{"limit too high", &recommendRequest{Topics: []string{"ai"}, Limit: 51}, "limit", "limit must be less than or equal to 50"},
		{"valid content type", &itemsRequest{ContentType: "blog"}, "", ""},
		{"unknown content type", &itemsRequest{ContentType: "video"}, "content_type", "content_type must be one of: course, blog, forum"},
		{"string max", &itemsRequest{Title: "too long"}, "title", "title must be at most 5 characters"},
		{"json dash uses field name", &itemsRequest{Internal: "c"}, "Internal", "Internal must be one of: a b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.input)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("ValidateStruct() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("ValidateStruct() = nil, want error")
			}
			if len(err.Errors()) != 1 {
				t.Fatalf("errors = %v, want exactly one", err.Errors())
			}
			fe := err.Errors()[0]
			if fe.Field() != tt.wantField {
				t.Errorf("Field() = %q, want %q", fe.Field(), tt.wantField)
			}
			if fe.Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", fe.Error(), tt.wantMsg)
			}
		})
	}
}

func TestToAPIError(t *testing.T) {
	single := ValidateStruct(&recommendRequest{})
	apiErr := single.ToAPIError()
	if apiErr.Code != CodeValidationError || apiErr.Message != "topics is required" {
		t.Errorf("single = %+v", apiErr)
	}
	if apiErr.Details["field"] != "topics" {
		t.Errorf("Details[field] = %v, want topics", apiErr.Details["field"])
	}

	multi := ValidateStruct(&itemsRequest{ContentType: "video", Title: "too long"})
	apiErr = multi.ToAPIError()
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok || len(fields) != 2 {
		t.Fatalf("Details[fields] = %v, want 2 entries", apiErr.Details["fields"])
	}
	if !strings.Contains(apiErr.Message, "content_type") || !strings.Contains(apiErr.Message, "title") {
		t.Errorf("Message = %q, want both fields", apiErr.Message)
	}

	empty := &RequestValidationError{}
	if got := empty.ToAPIError(); got.Message != "Validation failed" {
		t.Errorf("empty Message = %q", got.Message)
	}
	if empty.Error() != "validation failed" {
		t.Errorf("empty Error() = %q", empty.Error())
	}
}
