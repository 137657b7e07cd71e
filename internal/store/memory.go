// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

package store

import (
	"context"
	"sync"

	"github.com/tomtom215/synapse/internal/config"
	"github.com/tomtom215/synapse/internal/content"
)

// Memory is an in-process store. It starts with the given documents and
// accepts inserts; nothing is persisted.
type Memory struct {
	mu          sync.RWMutex
	collections map[string][]content.Document
}

// NewMemory creates a store seeded with docs keyed by collection.
func NewMemory(docs map[string][]content.Document) *Memory {
	m := &Memory{collections: make(map[string][]content.Document, len(docs))}
	for name, d := range docs {
		m.collections[name] = append([]content.Document(nil), d...)
	}
	return m
}

func (m *Memory) Backend() string { return config.StoreMemory }

func (m *Memory) Fetch(ctx context.Context, collection string, limit int) ([]content.Item, error) {
	if limit < 0 {
		return nil, ErrInvalidLimit
	}
	return recordFetch(m.Backend(), collection, func() ([]content.Item, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m.mu.RLock()
		docs := m.collections[collection]
		if limit > 0 && len(docs) > limit {
			docs = docs[:limit]
		}
		items := make([]content.Item, len(docs))
		for i, d := range docs {
			items[i] = content.FromDocument(d)
		}
		m.mu.RUnlock()
		return items, nil
	})
}

// Insert appends docs to collection.
func (m *Memory) Insert(_ context.Context, collection string, docs []content.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections[collection] = append(m.collections[collection], docs...)
	return nil
}

func (m *Memory) Ping(context.Context) error { return nil }
func (m *Memory) Close() error               { return nil }
