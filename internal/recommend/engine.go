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
	"github.com/tomtom215/synapse/internal/metrics"
)

// TypeCounts tallies recommendations by content type.
type TypeCounts struct {
	Course int `json:"course"`
	Blog   int `json:"blog"`
	Forum  int `json:"forum"`
	Other  int `json:"other"`
}

func (c *TypeCounts) add(t string) {
	switch content.Type(t) {
	case content.TypeCourse:
		c.Course++
	case content.TypeBlog:
		c.Blog++
	case content.TypeForum:
		c.Forum++
	default:
		c.Other++
	}
}

func (c TypeCounts) asMap() map[string]int {
	return map[string]int{
		string(content.TypeCourse): c.Course,
		string(content.TypeBlog):   c.Blog,
		string(content.TypeForum):  c.Forum,
		"other":                    c.Other,
	}
}

// Response is the result of a Recommend call.
type Response struct {
	Recommendations []Recommendation `json:"recommendations"`
	Total           int              `json:"total"`
	TypeCounts      TypeCounts       `json:"-"`
}

// Engine answers topic-based recommendation requests from an IndexEngine.
// It is safe for concurrent use.
type Engine struct {
	index  *IndexEngine
	config *Config
	logger zerolog.Logger
}

// NewEngine creates a recommendation engine over index.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(index *IndexEngine, cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if index == nil {
		return nil, fmt.Errorf("index engine is required")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Engine{
		index:  index,
		config: cfg,
		logger: logger.With().Str("component", "recommend").Logger(),
	}, nil
}

// Index returns the underlying index engine.
func (e *Engine) Index() *IndexEngine { return e.index }

// Config returns the engine configuration.
func (e *Engine) Config() *Config { return e.config }

// Recommend returns up to limit enriched recommendations for topics.
// A limit of zero selects the configured default.
func (e *Engine) Recommend(ctx context.Context, topics []string, limit int) (*Response, error) {
	if limit == 0 {
		limit = e.config.DefaultLimit
	}
	if limit < 1 || limit > e.config.MaxLimit {
		metrics.RecommendRequests.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("%w: limit must be between 1 and %d, got %d", ErrInvalidInput, e.config.MaxLimit, limit)
	}
	if !hasTopic(topics) {
		metrics.RecommendRequests.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("%w: no topics provided", ErrInvalidInput)
	}

	start := time.Now()
	results, err := e.index.Search(ctx, topics, limit)
	if err != nil {
		metrics.RecommendRequests.WithLabelValues(outcome(err)).Inc()
		return nil, err
	}

	resp := &Response{Recommendations: make([]Recommendation, len(results))}
	for i := range results {
		rec := Enrich(&results[i])
		resp.Recommendations[i] = rec
		resp.TypeCounts.add(rec.ContentType)
	}
	resp.Total = len(resp.Recommendations)

	metrics.RecommendRequests.WithLabelValues(metrics.ResultSuccess).Inc()
	metrics.RecordRecommendations(resp.TypeCounts.asMap())

	e.logger.Info().
		Str("request_id", logging.RequestIDFromContext(ctx)).
		Strs("topics", topics).
		Int("returned", resp.Total).
		Int("courses", resp.TypeCounts.Course).
		Int("blogs", resp.TypeCounts.Blog).
		Int("forums", resp.TypeCounts.Forum).
		Int("other", resp.TypeCounts.Other).
		Dur("duration", time.Since(start)).
		Msg("Recommendations served")

	return resp, nil
}
