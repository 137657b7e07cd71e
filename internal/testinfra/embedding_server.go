// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

//go:build integration

package testinfra

import (
	"hash/fnv"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/goccy/go-json"
)

// EmbeddingCapture is one request received by MockEmbeddingServer.
type EmbeddingCapture struct {
	Path   string
	Auth   string
	Inputs []string
}

// MockEmbeddingServer fakes the Ollama (/api/embeddings, /api/tags) and
// OpenAI (/embeddings, /models) endpoints. Vectors are derived from an
// FNV hash of the input, so equal texts always get equal vectors.
type MockEmbeddingServer struct {
	Server    *httptest.Server
	Dimension int

	mu       sync.Mutex
	captures []EmbeddingCapture

	// FailStatus, when non-zero, is returned for every embedding request.
	FailStatus int
}

// NewMockEmbeddingServer starts a server producing dim-length vectors and
// closes it when the test ends.
func NewMockEmbeddingServer(t *testing.T, dim int) *MockEmbeddingServer {
	t.Helper()

	m := &MockEmbeddingServer{Dimension: dim}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/embeddings", m.handleOllama)
	mux.HandleFunc("/embeddings", m.handleOpenAI)
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"models":[]}`))
	})
	mux.HandleFunc("/models", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	})

	m.Server = httptest.NewServer(mux)
	t.Cleanup(m.Server.Close)
	return m
}

// URL returns the server base URL.
func (m *MockEmbeddingServer) URL() string {
	return m.Server.URL
}

// Captures returns a copy of the recorded requests.
func (m *MockEmbeddingServer) Captures() []EmbeddingCapture {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]EmbeddingCapture, len(m.captures))
	copy(out, m.captures)
	return out
}

// EmbeddedTexts returns the total number of texts embedded so far.
func (m *MockEmbeddingServer) EmbeddedTexts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.captures {
		n += len(c.Inputs)
	}
	return n
}

func (m *MockEmbeddingServer) record(r *http.Request, inputs []string) {
	m.mu.Lock()
	m.captures = append(m.captures, EmbeddingCapture{
		Path:   r.URL.Path,
		Auth:   r.Header.Get("Authorization"),
		Inputs: inputs,
	})
	m.mu.Unlock()
}

func (m *MockEmbeddingServer) handleOllama(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt string `json:"prompt"`
	}
	body, _ := io.ReadAll(r.Body)
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	m.record(r, []string{req.Prompt})

	if m.FailStatus != 0 {
		http.Error(w, "unavailable", m.FailStatus)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"embedding": m.vector(req.Prompt)})
}

func (m *MockEmbeddingServer) handleOpenAI(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Input []string `json:"input"`
	}
	body, _ := io.ReadAll(r.Body)
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	m.record(r, req.Input)

	if m.FailStatus != 0 {
		w.WriteHeader(m.FailStatus)
		_, _ = w.Write([]byte(`{"error":{"message":"unavailable","type":"server_error"}}`))
		return
	}

	data := make([]map[string]interface{}, len(req.Input))
	for i, text := range req.Input {
		data[i] = map[string]interface{}{"index": i, "embedding": m.vector(text)}
	}
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": data})
}

func (m *MockEmbeddingServer) vector(text string) []float64 {
	v := make([]float64, m.Dimension)
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum64()
	for i := range v {
		seed ^= seed << 13
		seed ^= seed >> 7
		seed ^= seed << 17
		v[i] = float64(seed%2000)/1000 - 1
	}
	return v
}
