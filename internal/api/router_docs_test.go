// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

package api

import (
	"net/http"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
)

func TestRouter_SwaggerDoc(t *testing.T) {
	t.Parallel()
	s := newReadyServer(t, testDocs())

	rec := s.do(http.MethodGet, "/swagger/doc.json", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("doc.json status = %d, want %d", rec.Code, http.StatusOK)
	}

	var doc struct {
		Swagger string                                `json:"swagger"`
		Info    struct{ Title string }                `json:"info"`
		Paths   map[string]map[string]json.RawMessage `json:"paths"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("doc.json is not valid JSON: %v", err)
	}
	if doc.Swagger != "2.0" || doc.Info.Title != "Synapse API" {
		t.Errorf("doc header = (%q, %q), want (2.0, Synapse API)", doc.Swagger, doc.Info.Title)
	}

	// Every API and health route must be documented under its method.
	routes, ok := s.router.(chi.Routes)
	if !ok {
		t.Fatalf("router %T does not expose its routes", s.router)
	}
	err := chi.Walk(routes, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		if route == "/metrics" || strings.HasPrefix(route, "/swagger/") {
			return nil
		}
		if _, ok := doc.Paths[route][strings.ToLower(method)]; !ok {
			t.Errorf("%s %s missing from doc.json", method, route)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("chi.Walk() error = %v", err)
	}
}

func TestRouter_SwaggerUI(t *testing.T) {
	t.Parallel()
	s := newReadyServer(t, testDocs())

	rec := s.do(http.MethodGet, "/swagger/index.html", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("index.html status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "swagger-ui") {
		t.Error("index.html does not mount the Swagger UI")
	}
}
