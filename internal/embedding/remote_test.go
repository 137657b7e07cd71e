// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

package embedding

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/synapse/internal/config"
)

func TestOllamaProvider_Embed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var req ollamaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Model != "all-minilm" {
			t.Errorf("model = %q, want all-minilm", req.Model)
		}
		_ = json.NewEncoder(w).Encode(ollamaResponse{Embedding: []float64{float64(len(req.Prompt)), 1, 0}})
	}))
	defer server.Close()

	p := NewOllamaProvider(&config.EmbeddingConfig{BaseURL: server.URL + "/", Dimensions: 3})

	vectors, err := p.EmbedBatch(context.Background(), []string{"ab", "abcd"})
	if err != nil {
		t.Fatalf("EmbedBatch() error = %v", err)
	}
	if len(vectors) != 2 || vectors[0][0] != 2 || vectors[1][0] != 4 {
		t.Errorf("EmbedBatch() = %v, want per-text vectors in order", vectors)
	}
}

func TestOllamaProvider_DimensionMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(ollamaResponse{Embedding: []float64{1, 2}})
	}))
	defer server.Close()

	p := NewOllamaProvider(&config.EmbeddingConfig{BaseURL: server.URL, Dimensions: 3})
	if _, err := p.Embed(context.Background(), "x"); !errors.Is(err, ErrBadResponse) {
		t.Errorf("Embed() error = %v, want ErrBadResponse", err)
	}
}

func TestOllamaProvider_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	p := NewOllamaProvider(&config.EmbeddingConfig{BaseURL: server.URL})
	_, err := p.Embed(context.Background(), "x")
	if err == nil || !strings.Contains(err.Error(), "model not found") {
		t.Errorf("Embed() error = %v, want server message", err)
	}
}

func TestOllamaProvider_Ping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	defer server.Close()

	if err := Ping(context.Background(), NewOllamaProvider(&config.EmbeddingConfig{BaseURL: server.URL})); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestNewOpenAIProvider_RequiresKey(t *testing.T) {
	if _, err := NewOpenAIProvider(&config.EmbeddingConfig{}); err == nil {
		t.Error("NewOpenAIProvider() without API key should fail")
	}
}

func TestNewOpenAIProvider_NativeDimension(t *testing.T) {
	p, err := NewOpenAIProvider(&config.EmbeddingConfig{APIKey: "k", Model: "text-embedding-3-large"})
	if err != nil {
		t.Fatalf("NewOpenAIProvider() error = %v", err)
	}
	if p.Dimension() != 3072 {
		t.Errorf("Dimension() = %d, want 3072", p.Dimension())
	}
}

func TestOpenAIProvider_EmbedBatch(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q, want Bearer secret", got)
		}
		var req openAIRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Dimensions != 2 {
			t.Errorf("dimensions = %d, want 2", req.Dimensions)
		}

		// Answer in reverse order; the client must place vectors by index.
		var resp openAIResponse
		for i := len(req.Input) - 1; i >= 0; i-- {
			resp.Data = append(resp.Data, struct {
				Embedding []float64 `json:"embedding"`
				Index     int       `json:"index"`
			}{Embedding: []float64{float64(len(req.Input[i])), 0}, Index: i})
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	p, err := NewOpenAIProvider(&config.EmbeddingConfig{
		BaseURL:    server.URL,
		APIKey:     "secret",
		Dimensions: 2,
		BatchSize:  2,
	})
	if err != nil {
		t.Fatalf("NewOpenAIProvider() error = %v", err)
	}

	vectors, err := p.EmbedBatch(context.Background(), []string{"a", "bb", "ccc"})
	if err != nil {
		t.Fatalf("EmbedBatch() error = %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("requests = %d, want 2 batches", calls.Load())
	}
	for i, want := range []float32{1, 2, 3} {
		if vectors[i][0] != want {
			t.Errorf("vectors[%d][0] = %v, want %v", i, vectors[i][0], want)
		}
	}
}

func TestOpenAIProvider_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid api key","type":"auth"}}`))
	}))
	defer server.Close()

	p, _ := NewOpenAIProvider(&config.EmbeddingConfig{BaseURL: server.URL, APIKey: "bad"})
	_, err := p.Embed(context.Background(), "x")
	if err == nil || !strings.Contains(err.Error(), "invalid api key") {
		t.Errorf("Embed() error = %v, want API error message", err)
	}
}

func TestOpenAIProvider_MissingVector(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"embedding":[1,2],"index":0}]}`))
	}))
	defer server.Close()

	p, _ := NewOpenAIProvider(&config.EmbeddingConfig{BaseURL: server.URL, APIKey: "k", Dimensions: 2})
	if _, err := p.EmbedBatch(context.Background(), []string{"a", "b"}); !errors.Is(err, ErrBadResponse) {
		t.Errorf("EmbedBatch() error = %v, want ErrBadResponse", err)
	}
}

// failingProvider fails every call and counts them.
type failingProvider struct {
	calls atomic.Int32
}

func (f *failingProvider) Embed(context.Context, string) ([]float32, error) {
	f.calls.Add(1)
	return nil, errors.New("connection refused")
}

func (f *failingProvider) EmbedBatch(context.Context, []string) ([][]float32, error) {
	f.calls.Add(1)
	return nil, errors.New("connection refused")
}

func (f *failingProvider) Dimension() int { return 4 }
func (f *failingProvider) Model() string  { return "failing" }

func TestGuardedProvider_OpensCircuit(t *testing.T) {
	next := &failingProvider{}
	g := NewGuardedProvider(next, &config.EmbeddingConfig{
		Breaker: config.BreakerConfig{
			Enabled:      true,
			MaxRequests:  1,
			Interval:     time.Minute,
			Timeout:      time.Hour,
			MinRequests:  3,
			FailureRatio: 0.5,
		},
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := g.EmbedBatch(ctx, []string{"x"}); err == nil || errors.Is(err, ErrUnavailable) {
			t.Fatalf("call %d error = %v, want provider failure", i, err)
		}
	}
	if g.State() != "open" {
		t.Fatalf("State() = %q, want open", g.State())
	}

	_, err := g.Embed(ctx, "x")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("Embed() with open circuit error = %v, want ErrUnavailable", err)
	}
	if next.calls.Load() != 3 {
		t.Errorf("provider calls = %d, want 3 (rejected call must not reach provider)", next.calls.Load())
	}
}

func TestGuardedProvider_CanceledContextDoesNotTrip(t *testing.T) {
	g := NewGuardedProvider(NewHashProvider(4), &config.EmbeddingConfig{
		RequestsPerSecond: 1000,
		Burst:             1,
		Breaker: config.BreakerConfig{
			Enabled:      true,
			MaxRequests:  1,
			Interval:     time.Minute,
			Timeout:      time.Hour,
			MinRequests:  1,
			FailureRatio: 0.1,
		},
	})

	if _, err := g.Embed(context.Background(), "ok"); err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if g.State() != "closed" {
		t.Errorf("State() = %q, want closed", g.State())
	}
}

func TestGuardedProvider_Disabled(t *testing.T) {
	g := NewGuardedProvider(NewHashProvider(4), &config.EmbeddingConfig{})
	if g.State() != "disabled" {
		t.Errorf("State() = %q, want disabled", g.State())
	}
	if _, err := g.Embed(context.Background(), "x"); err != nil {
		t.Errorf("Embed() error = %v", err)
	}
}
