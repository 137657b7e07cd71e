// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/tomtom215/synapse/internal/cache"
	"github.com/tomtom215/synapse/internal/config"
	"github.com/tomtom215/synapse/internal/logging"
	"github.com/tomtom215/synapse/internal/metrics"
)

// CachedProvider memoizes embeddings in an in-memory LRU and, optionally,
// a BadgerDB store. Only texts missing from both tiers reach the wrapped
// provider, in one batch.
//
// Keys combine the model name and a SHA-256 of the text, so switching
// models never serves stale vectors.
type CachedProvider struct {
	next   Provider
	memory *cache.LRU[string, []float32]
	disk   *cache.VectorStore
}

// NewCachedProvider wraps next. A non-empty cfg.Path enables the disk tier.
func NewCachedProvider(next Provider, cfg *config.EmbeddingCacheConfig) (*CachedProvider, error) {
	c := &CachedProvider{
		next:   next,
		memory: cache.NewLRU[string, []float32](cfg.Size, cfg.TTL),
	}
	if cfg.Path != "" {
		disk, err := cache.OpenVectorStore(cfg.Path, cfg.TTL)
		if err != nil {
			return nil, err
		}
		c.disk = disk
	}
	return c, nil
}

func (c *CachedProvider) Dimension() int { return c.next.Dimension() }
func (c *CachedProvider) Model() string  { return c.next.Model() }

// Stats returns the memory tier counters.
func (c *CachedProvider) Stats() cache.Stats { return c.memory.Stats() }

func (c *CachedProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch serves what it can from the cache tiers and embeds the rest.
// Duplicate texts in one batch are embedded once.
func (c *CachedProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	keys := make([]string, len(texts))
	var memHits, diskHits int

	var diskKeys []string
	var diskIdx []int
	for i, text := range texts {
		keys[i] = c.key(text)
		if v, ok := c.memory.Get(keys[i]); ok {
			out[i] = v
			memHits++
			continue
		}
		diskKeys = append(diskKeys, keys[i])
		diskIdx = append(diskIdx, i)
	}

	if c.disk != nil && len(diskKeys) > 0 {
		found, err := c.disk.GetMany(diskKeys)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("Embedding disk cache read failed")
		} else {
			dim := c.next.Dimension()
			for j, v := range found {
				if v == nil || (dim > 0 && len(v) != dim) {
					continue
				}
				i := diskIdx[j]
				out[i] = v
				c.memory.Add(keys[i], v)
				diskHits++
			}
		}
	}

	// Group remaining positions by key so each distinct text is embedded once.
	var missTexts, missKeys []string
	missPositions := make(map[string][]int)
	for i := range texts {
		if out[i] != nil {
			continue
		}
		if _, seen := missPositions[keys[i]]; !seen {
			missTexts = append(missTexts, texts[i])
			missKeys = append(missKeys, keys[i])
		}
		missPositions[keys[i]] = append(missPositions[keys[i]], i)
	}
	metrics.RecordEmbeddingCache(memHits, diskHits, len(missTexts))

	if len(missTexts) == 0 {
		return out, nil
	}

	vectors, err := c.next.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if err := checkBatch(vectors, len(missTexts), c.next.Dimension()); err != nil {
		return nil, err
	}

	for j, v := range vectors {
		c.memory.Add(missKeys[j], v)
		for _, i := range missPositions[missKeys[j]] {
			out[i] = v
		}
	}
	if c.disk != nil {
		if err := c.disk.PutMany(missKeys, vectors); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("Embedding disk cache write failed")
		}
	}
	return out, nil
}

func (c *CachedProvider) Ping(ctx context.Context) error {
	return Ping(ctx, c.next)
}

// Close closes the disk tier.
func (c *CachedProvider) Close() error {
	if c.disk == nil {
		return nil
	}
	return c.disk.Close()
}

func (c *CachedProvider) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return c.next.Model() + ":" + hex.EncodeToString(sum[:])
}
