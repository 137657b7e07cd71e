// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

package embedding

import (
	"fmt"
	"io"

	"github.com/tomtom215/synapse/internal/config"
	"github.com/tomtom215/synapse/internal/logging"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New builds the configured provider stack:
//
//	cache -> instrumentation -> breaker/limiter -> ollama|openai
//	cache -> instrumentation -> hash
//
// The returned closer releases the disk cache and must be closed on shutdown.
func New(cfg *config.EmbeddingConfig) (Provider, io.Closer, error) {
	var (
		base   Provider
		remote bool
	)

	switch cfg.Provider {
	case config.EmbeddingHash, "":
		base = NewHashProvider(cfg.Dimensions)
	case config.EmbeddingOllama:
		base = NewOllamaProvider(cfg)
		remote = true
	case config.EmbeddingOpenAI:
		p, err := NewOpenAIProvider(cfg)
		if err != nil {
			return nil, nil, err
		}
		base = p
		remote = true
	default:
		return nil, nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}

	var p Provider = base
	if remote {
		p = NewGuardedProvider(p, cfg)
	}
	name := cfg.Provider
	if name == "" {
		name = config.EmbeddingHash
	}
	p = instrumented{Provider: p, name: name}

	var closer io.Closer = nopCloser{}
	if cfg.Cache.Enabled {
		cached, err := NewCachedProvider(p, &cfg.Cache)
		if err != nil {
			return nil, nil, fmt.Errorf("embedding cache: %w", err)
		}
		p = cached
		closer = cached
	}

	log := logging.WithComponent("embedding")
	log.Info().
		Str("provider", name).
		Str("model", p.Model()).
		Int("dimension", p.Dimension()).
		Bool("cache", cfg.Cache.Enabled).
		Bool("disk_cache", cfg.Cache.Enabled && cfg.Cache.Path != "").
		Msg("Embedding provider ready")

	return p, closer, nil
}
