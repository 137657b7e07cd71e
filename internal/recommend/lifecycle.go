// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/synapse/internal/content"
	"github.com/tomtom215/synapse/internal/logging"
)

// Source fetches content from a document store.
type Source interface {
	// Fetch returns up to limit items from collection.
	Fetch(ctx context.Context, collection string, limit int) ([]content.Item, error)
}

// Collection is one store collection loaded into the index.
type Collection struct {
	Type  content.Type
	Name  string
	Limit int
}

// DefaultCollections returns courses (1000), blogs (1000) and forums (500),
// loaded in that order.
func DefaultCollections() []Collection {
	return []Collection{
		{Type: content.TypeCourse, Name: "courses", Limit: 1000},
		{Type: content.TypeBlog, Name: "blogs", Limit: 1000},
		{Type: content.TypeForum, Name: "forums", Limit: 500},
	}
}

// Lifecycle loads content from a Source and (re)builds the index from it.
type Lifecycle struct {
	index       *IndexEngine
	source      Source
	collections []Collection
	logger      zerolog.Logger
}

// NewLifecycle creates a lifecycle manager. Collections with an empty name
// are skipped when loading.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewLifecycle(index *IndexEngine, source Source, collections []Collection, logger zerolog.Logger) *Lifecycle {
	if len(collections) == 0 {
		collections = DefaultCollections()
	}
	return &Lifecycle{
		index:       index,
		source:      source,
		collections: collections,
		logger:      logger.With().Str("component", "lifecycle").Logger(),
	}
}

// Index returns the index engine rebuilt by this lifecycle.
func (l *Lifecycle) Index() *IndexEngine { return l.index }

// TypeOf maps a collection name to its content type. Names that are not
// configured collections are accepted when they spell a content type
// ("course", "blog", "forum"); anything else gets the default type.
func (l *Lifecycle) TypeOf(collection string) content.Type {
	for _, c := range l.collections {
		if c.Name != "" && c.Name == collection {
			return c.Type
		}
	}
	if t := content.Type(collection); t.Valid() {
		return t
	}
	return content.DefaultType
}

// Update adds items to the live index without a full rebuild.
func (l *Lifecycle) Update(ctx context.Context, items []content.Item) (int, error) {
	return l.index.Update(ctx, items)
}

// Initialize performs the first build. It returns the number of indexed items.
func (l *Lifecycle) Initialize(ctx context.Context) (int, error) {
	l.logger.Info().Msg("Initializing recommendation index")
	return l.rebuild(ctx, "initialize")
}

// Refresh reloads all collections and swaps in a freshly built index.
// Searches in flight finish on the previous index.
func (l *Lifecycle) Refresh(ctx context.Context) (int, error) {
	l.logger.Info().Msg("Refreshing recommendation index")
	return l.rebuild(ctx, "refresh")
}

func (l *Lifecycle) rebuild(ctx context.Context, op string) (int, error) {
	start := time.Now()
	items, sample, err := l.Load(ctx)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("operation", op).Msg("Loading content failed")
		return 0, err
	}

	if err := l.index.Build(ctx, items); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	total := l.index.Len()
	l.logger.Info().
		Str("operation", op).
		Int("total_content", total).
		Bool("sample", sample).
		Dur("duration", time.Since(start)).
		Msg("Recommendation index ready")
	return total, nil
}

// Load fetches every configured collection, tags items with their content
// type and concatenates them in collection order. When the store holds no
// content at all the built-in sample set is returned and sample is true.
func (l *Lifecycle) Load(ctx context.Context) (items []content.Item, sample bool, err error) {
	for _, c := range l.collections {
		if c.Name == "" {
			continue
		}
		fetched, err := l.source.Fetch(ctx, c.Name, c.Limit)
		if err != nil {
			return nil, false, fmt.Errorf("%w: fetch %s: %w", ErrUpstream, c.Name, err)
		}
		l.logger.Info().Str("collection", c.Name).Str("content_type", string(c.Type)).
			Int("count", len(fetched)).Msg("Loaded content")
		items = append(items, content.TagAll(fetched, c.Type)...)
	}

	if len(items) == 0 {
		l.logger.Warn().Msg("No content found in store; using sample data")
		return content.SampleItems(), true, nil
	}
	return items, false, nil
}
