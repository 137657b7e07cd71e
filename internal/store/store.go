// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/synapse/internal/config"
	"github.com/tomtom215/synapse/internal/content"
	"github.com/tomtom215/synapse/internal/metrics"
)

// ErrInvalidLimit is returned when Fetch is called with a negative limit.
var ErrInvalidLimit = errors.New("fetch limit must not be negative")

// Source is a document store holding content collections.
type Source interface {
	// Fetch returns up to limit items from collection in store order.
	// A limit of zero returns every item.
	Fetch(ctx context.Context, collection string, limit int) ([]content.Item, error)

	// Ping checks connectivity.
	Ping(ctx context.Context) error

	// Backend names the implementation for logs and metrics.
	Backend() string

	Close() error
}

// Writer is implemented by sources that accept new documents.
type Writer interface {
	Insert(ctx context.Context, collection string, docs []content.Document) error
}

// New opens the backend selected by cfg.
func New(ctx context.Context, cfg *config.StoreConfig) (Source, error) {
	switch cfg.Backend {
	case config.StoreMongo:
		return NewMongo(ctx, &cfg.Mongo)
	case config.StoreDuckDB:
		return NewDuckDB(&cfg.DuckDB)
	case config.StoreMemory, "":
		return NewMemory(nil), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// recordFetch wraps a fetch with metrics.
func recordFetch(backend, collection string, fetch func() ([]content.Item, error)) ([]content.Item, error) {
	start := time.Now()
	items, err := fetch()
	metrics.RecordStoreFetch(backend, collection, len(items), time.Since(start), err)
	return items, err
}
