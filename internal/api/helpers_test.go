// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/synapse/internal/config"
	"github.com/tomtom215/synapse/internal/content"
	"github.com/tomtom215/synapse/internal/embedding"
	"github.com/tomtom215/synapse/internal/recommend"
	"github.com/tomtom215/synapse/internal/store"
)

// toggleSource wraps a store and fails every fetch while fail is set.
type toggleSource struct {
	*store.Memory
	fail atomic.Bool
}

func (s *toggleSource) Fetch(ctx context.Context, collection string, limit int) ([]content.Item, error) {
	if s.fail.Load() {
		return nil, errors.New("connection refused")
	}
	return s.Memory.Fetch(ctx, collection, limit)
}

type published struct {
	collection string
	docs       []content.Document
}

// fakePublisher records queued content.
type fakePublisher struct {
	mu       sync.Mutex
	upserts  []published
	refreshs []string
	err      error
}

func (p *fakePublisher) PublishUpsert(_ context.Context, collection string, docs []content.Document) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.upserts = append(p.upserts, published{collection: collection, docs: docs})
	return nil
}

func (p *fakePublisher) PublishRefresh(_ context.Context, reason string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refreshs = append(p.refreshs, reason)
	return p.err
}

type testServer struct {
	handler   *Handler
	router    http.Handler
	source    *toggleSource
	lifecycle *recommend.Lifecycle
}

// newTestServer builds the full router over a hash-embedding index backed
// by an in-memory store. The index is not built.
func newTestServer(t *testing.T, docs map[string][]content.Document, apiCfg *config.APIConfig, opts ...HandlerOption) *testServer {
	t.Helper()

	idx, err := recommend.NewIndexEngine(embedding.NewHashProvider(64), recommend.DefaultConfig().Index, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewIndexEngine() error = %v", err)
	}
	engine, err := recommend.NewEngine(idx, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	src := &toggleSource{Memory: store.NewMemory(docs)}
	lc := recommend.NewLifecycle(idx, src, nil, zerolog.Nop())

	h, err := NewHandler(engine, lc, opts...)
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}

	if apiCfg == nil {
		apiCfg = &config.APIConfig{RateLimitDisabled: true, RequestTimeout: 5 * time.Second}
	}
	return &testServer{handler: h, router: NewRouter(h, apiCfg), source: src, lifecycle: lc}
}

// newReadyServer is newTestServer with the index built from docs, or from
// the sample catalogue when docs is empty.
func newReadyServer(t *testing.T, docs map[string][]content.Document, opts ...HandlerOption) *testServer {
	t.Helper()
	s := newTestServer(t, docs, nil, opts...)
	if _, err := s.lifecycle.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	return s
}

func (s *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	decodeBody(t, rec, &resp)
	if resp.Error == nil {
		t.Fatalf("error body missing error object: %s", rec.Body.String())
	}
	return resp
}

func testDocs() map[string][]content.Document {
	return map[string][]content.Document{
		"courses": {
			{"_id": "c1", "title": "Machine Learning Foundations", "tags": []interface{}{"AI", "ML"}, "difficulty": "Beginner"},
			{"_id": "c2", "title": "Kubernetes in Production", "tags": "DevOps", "duration_hours": 12.5},
		},
		"blogs": {
			{"_id": "b1", "title": "Designing Neural Networks", "tags": []interface{}{"AI"}, "author": "Ada"},
		},
		"forums": {
			{"_id": "f1", "title": "Help with React hooks", "labels": []interface{}{"React"}, "replies": 4},
		},
	}
}
