// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

package recommend

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/synapse/internal/content"
	"github.com/tomtom215/synapse/internal/embedding"
	"github.com/tomtom215/synapse/internal/metrics"
	"github.com/tomtom215/synapse/internal/vectorindex"
)

// State is the lifecycle state of an IndexEngine.
type State string

const (
	StateEmpty    State = "empty"
	StateBuilding State = "building"
	StateReady    State = "ready"
)

// snapshot is one published index together with its content mapping.
// Snapshots are never mutated after publication; items[i] is the content
// stored at vector position i.
type snapshot struct {
	index   vectorindex.Index
	items   []content.Item
	plan    vectorindex.Plan
	builtAt time.Time
}

// Result is one search hit.
type Result struct {
	Item     content.Item
	Score    float64
	Distance float32
}

// IndexStats describes the served index.
type IndexStats struct {
	State        State      `json:"state"`
	Trained      bool       `json:"is_trained"`
	TotalVectors int        `json:"total_vectors"`
	TotalContent int        `json:"total_content"`
	Dimension    int        `json:"dimension"`
	Strategy     string     `json:"strategy,omitempty"`
	NList        int        `json:"nlist,omitempty"`
	NProbe       int        `json:"nprobe,omitempty"`
	Model        string     `json:"model"`
	BuiltAt      *time.Time `json:"built_at,omitempty"`
}

// IndexEngine embeds content and answers nearest-neighbour queries over it.
//
// Searches load the current snapshot with a single atomic read and never
// wait for mutators. Build and Update are serialized; each prepares a new
// snapshot off to the side and publishes it with one pointer swap, so a
// failed mutation leaves the served snapshot untouched.
type IndexEngine struct {
	provider embedding.Provider
	params   vectorindex.Params
	logger   zerolog.Logger

	current  atomic.Pointer[snapshot]
	mutator  chan struct{}
	building atomic.Bool
}

// NewIndexEngine creates an empty engine.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewIndexEngine(provider embedding.Provider, params vectorindex.Params, logger zerolog.Logger) (*IndexEngine, error) {
	if provider == nil {
		return nil, fmt.Errorf("embedding provider is required")
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid index params: %w", err)
	}
	return &IndexEngine{
		provider: provider,
		params:   params,
		logger:   logger.With().Str("component", "index").Logger(),
		mutator:  make(chan struct{}, 1),
	}, nil
}

// State reports Building while a build or update runs, otherwise Ready
// once a build has completed, otherwise Empty.
func (e *IndexEngine) State() State {
	if e.building.Load() {
		return StateBuilding
	}
	if e.current.Load() != nil {
		return StateReady
	}
	return StateEmpty
}

// Ready reports whether a build has completed. It stays true during a rebuild.
func (e *IndexEngine) Ready() bool {
	return e.current.Load() != nil
}

// Len returns the number of indexed items, or zero before the first build.
func (e *IndexEngine) Len() int {
	if s := e.current.Load(); s != nil {
		return len(s.items)
	}
	return 0
}

// Stats describes the served snapshot.
func (e *IndexEngine) Stats() IndexStats {
	stats := IndexStats{
		State:     e.State(),
		Dimension: e.provider.Dimension(),
		Model:     e.provider.Model(),
	}
	s := e.current.Load()
	if s == nil {
		return stats
	}
	stats.Trained = s.index.Trained()
	stats.TotalVectors = s.index.Len()
	stats.TotalContent = len(s.items)
	stats.Dimension = s.index.Dimension()
	stats.Strategy = string(s.plan.Kind)
	stats.NList = s.plan.NList
	stats.NProbe = s.plan.NProbe
	builtAt := s.builtAt
	stats.BuiltAt = &builtAt
	return stats
}

// Items returns a copy of the content mapping.
func (e *IndexEngine) Items() []content.Item {
	s := e.current.Load()
	if s == nil {
		return nil
	}
	out := make([]content.Item, len(s.items))
	copy(out, s.items)
	return out
}

func (e *IndexEngine) lock(ctx context.Context) error {
	select {
	case e.mutator <- struct{}{}:
		e.building.Store(true)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for index mutator: %w", ctx.Err())
	}
}

func (e *IndexEngine) unlock() {
	e.building.Store(false)
	<-e.mutator
}

// Build replaces the served index with one built from items. An empty
// slice is a no-op that leaves the current state as it is.
//
// Items without a valid content type are tagged with the default type.
// The strategy follows Params.Plan for len(items).
func (e *IndexEngine) Build(ctx context.Context, items []content.Item) error {
	if len(items) == 0 {
		e.logger.Warn().Msg("Build called with no content; keeping current index")
		metrics.IndexOperationsTotal.WithLabelValues("build", metrics.ResultSkipped).Inc()
		return nil
	}

	if err := e.lock(ctx); err != nil {
		return err
	}
	defer e.unlock()

	start := time.Now()
	next, err := e.build(ctx, items)
	metrics.RecordIndexOperation("build", time.Since(start), err)
	if err != nil {
		e.logger.Error().Err(err).Int("items", len(items)).Msg("Index build failed; previous index kept")
		return err
	}

	e.publish(next)
	e.logger.Info().
		Int("items", len(next.items)).
		Str("strategy", string(next.plan.Kind)).
		Int("nlist", next.plan.NList).
		Int("nprobe", next.plan.NProbe).
		Dur("duration", time.Since(start)).
		Msg("Index built")
	return nil
}

func (e *IndexEngine) build(ctx context.Context, items []content.Item) (*snapshot, error) {
	mapping := make([]content.Item, len(items))
	for i := range items {
		mapping[i] = items[i].EnsureType()
	}

	vectors, err := e.embed(ctx, mapping)
	if err != nil {
		return nil, err
	}

	idx, plan, err := vectorindex.Build(vectors, e.params)
	if err != nil {
		return nil, fmt.Errorf("build %s index: %w", plan.Kind, err)
	}

	return &snapshot{
		index:   idx,
		items:   mapping,
		plan:    plan,
		builtAt: time.Now().UTC(),
	}, nil
}

// Update appends items to the served index without re-embedding existing
// content. The strategy chosen by the last Build is kept. It returns the
// new total.
func (e *IndexEngine) Update(ctx context.Context, items []content.Item) (int, error) {
	if err := e.lock(ctx); err != nil {
		return 0, err
	}
	defer e.unlock()

	cur := e.current.Load()
	if cur == nil {
		return 0, ErrNotReady
	}
	if len(items) == 0 {
		return len(cur.items), nil
	}

	start := time.Now()
	next, err := e.extend(ctx, cur, items)
	metrics.RecordIndexOperation("update", time.Since(start), err)
	if err != nil {
		e.logger.Error().Err(err).Int("items", len(items)).Msg("Index update failed; previous index kept")
		return len(cur.items), err
	}

	e.publish(next)
	e.logger.Info().
		Int("added", len(items)).
		Int("total", len(next.items)).
		Msg("Index updated")
	return len(next.items), nil
}

func (e *IndexEngine) extend(ctx context.Context, cur *snapshot, items []content.Item) (*snapshot, error) {
	added := make([]content.Item, len(items))
	for i := range items {
		added[i] = items[i].EnsureType()
	}

	vectors, err := e.embed(ctx, added)
	if err != nil {
		return nil, err
	}

	idx, err := cur.index.Extend(vectors)
	if err != nil {
		return nil, fmt.Errorf("extend index: %w", err)
	}

	n := len(cur.items)
	return &snapshot{
		index:   idx,
		items:   append(cur.items[:n:n], added...),
		plan:    cur.plan,
		builtAt: cur.builtAt,
	}, nil
}

func (e *IndexEngine) embed(ctx context.Context, items []content.Item) ([][]float32, error) {
	texts := content.BuildTexts(items)
	start := time.Now()
	vectors, err := e.provider.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: embed batch of %d: %w", ErrUpstream, len(texts), err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: embedding provider returned %d vectors for %d texts", ErrUpstream, len(vectors), len(texts))
	}
	e.logger.Debug().Int("texts", len(texts)).Dur("duration", time.Since(start)).Msg("Embedded content")
	return vectors, nil
}

func (e *IndexEngine) publish(s *snapshot) {
	e.current.Store(s)
	metrics.SetActiveIndex(string(s.plan.Kind), s.index.Len(), s.plan.NList, s.plan.NProbe)
	metrics.MarkIndexBuilt(time.Now())
}

// Search returns up to k items nearest to the space-joined topics.
//
// Scores are normalized within the result set: score = 1 - d/max(d), with
// max(d) taken as 1 when every distance is zero. The nearest hit therefore
// scores highest and the farthest returned hit scores 0 unless all
// distances are equal. Scores are not comparable across queries.
func (e *IndexEngine) Search(ctx context.Context, topics []string, k int) ([]Result, error) {
	if !hasTopic(topics) {
		return nil, fmt.Errorf("%w: topics must not be empty", ErrInvalidInput)
	}
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be at least 1, got %d", ErrInvalidInput, k)
	}

	s := e.current.Load()
	if s == nil {
		return nil, ErrNotReady
	}

	start := time.Now()
	query, err := e.provider.Embed(ctx, content.QueryText(topics))
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %w", ErrUpstream, err)
	}

	hits, err := s.index.Search(query, k)
	if err != nil {
		return nil, fmt.Errorf("%w: search index: %w", ErrUpstream, err)
	}
	metrics.RecordSearch(time.Since(start))

	return score(hits, s.items), nil
}

// score converts ascending-distance hits to results. Positions outside the
// mapping are dropped.
func score(hits []vectorindex.Hit, items []content.Item) []Result {
	var maxDist float32
	for _, h := range hits {
		if h.Distance > maxDist {
			maxDist = h.Distance
		}
	}
	if maxDist <= 0 {
		maxDist = 1
	}

	results := make([]Result, 0, len(hits))
	for _, h := range hits {
		if h.Position < 0 || h.Position >= len(items) {
			continue
		}
		sim := 1 - float64(h.Distance)/float64(maxDist)
		if sim < 0 {
			sim = 0
		}
		results = append(results, Result{
			Item:     items[h.Position],
			Score:    sim,
			Distance: h.Distance,
		})
	}
	return results
}

func hasTopic(topics []string) bool {
	for _, t := range topics {
		if strings.TrimSpace(t) != "" {
			return true
		}
	}
	return false
}
