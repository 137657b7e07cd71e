// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

package recommend

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/synapse/internal/content"
	"github.com/tomtom215/synapse/internal/vectorindex"
)

// keywordProvider embeds text as keyword counts over a fixed vocabulary,
// which makes distances easy to reason about in tests.
type keywordProvider struct {
	vocab []string

	mu      sync.Mutex
	batches [][]string
	failing atomic.Bool
	gate    chan struct{} // when set, EmbedBatch waits for it to close
}

var errProviderDown = errors.New("provider down")

func newKeywordProvider() *keywordProvider {
	return &keywordProvider{vocab: []string{"ai", "web", "cloud", "data"}}
}

func (p *keywordProvider) vector(text string) []float32 {
	v := make([]float32, len(p.vocab))
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		for i, w := range p.vocab {
			if tok == w {
				v[i]++
			}
		}
	}
	return v
}

func (p *keywordProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if p.failing.Load() {
		return nil, errProviderDown
	}
	return p.vector(text), nil
}

func (p *keywordProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if p.gate != nil {
		select {
		case <-p.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if p.failing.Load() {
		return nil, errProviderDown
	}
	p.mu.Lock()
	p.batches = append(p.batches, append([]string(nil), texts...))
	p.mu.Unlock()

	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = p.vector(t)
	}
	return out, nil
}

func (p *keywordProvider) Dimension() int { return len(p.vocab) }
func (p *keywordProvider) Model() string  { return "keywords" }

func (p *keywordProvider) embeddedTexts() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, b := range p.batches {
		n += len(b)
	}
	return n
}

func scenarioItems() []content.Item {
	return []content.Item{
		{ID: "1", Title: "Intro to AI", Category: "AI"},
		{ID: "2", Title: "Web Basics", Category: "Web"},
		{ID: "3", Title: "AI Deep Dive", Category: "AI"},
	}
}

func newTestIndex(t *testing.T, p *keywordProvider) *IndexEngine {
	t.Helper()
	e, err := NewIndexEngine(p, vectorindex.DefaultParams(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewIndexEngine() error = %v", err)
	}
	return e
}

// memorySource serves fixed items per collection.
type memorySource struct {
	items map[string][]content.Item
	err   error
	calls atomic.Int32
}

func (s *memorySource) Fetch(_ context.Context, collection string, limit int) ([]content.Item, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	items := s.items[collection]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}
