// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

package config

import (
	"fmt"
	"strings"
)

// Validate checks that required configuration is present and consistent.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateAPI,
		c.validateLogging,
		c.validateStore,
		c.validateEmbedding,
		c.validateIndex,
		c.validateRecommend,
		c.validateEvents,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if c.Server.DrainDelay < 0 || (c.Server.ShutdownTimeout > 0 && c.Server.DrainDelay >= c.Server.ShutdownTimeout) {
		return fmt.Errorf("HTTP_DRAIN_DELAY must be non-negative and shorter than HTTP_SHUTDOWN_TIMEOUT")
	}
	switch c.Server.Environment {
	case "development", "staging", "production":
		return nil
	default:
		return fmt.Errorf("ENVIRONMENT must be one of: development, staging, production")
	}
}

func (c *Config) validateAPI() error {
	if c.API.RateLimitDisabled {
		return nil
	}
	if c.API.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQS must be at least 1, got %d", c.API.RateLimitReqs)
	}
	if c.API.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

// ShouldWarnAboutCORS reports a wildcard origin in production.
func (c *Config) ShouldWarnAboutCORS() bool {
	if !c.IsProduction() {
		return false
	}
	for _, origin := range c.API.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

func (c *Config) validateLogging() error {
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

func (c *Config) validateStore() error {
	s := c.Store
	if s.Collections.Courses == "" || s.Collections.Blogs == "" || s.Collections.Forums == "" {
		return fmt.Errorf("COURSES_COLL, BLOGS_COLL and FORUMS_COLL must not be empty")
	}
	if s.Limits.Courses < 0 || s.Limits.Blogs < 0 || s.Limits.Forums < 0 {
		return fmt.Errorf("collection limits must not be negative")
	}

	switch s.Backend {
	case StoreMemory:
		return nil
	case StoreMongo:
		if s.Mongo.URI == "" {
			return fmt.Errorf("MONGODB_URI is required when STORE_BACKEND=mongo")
		}
		if err := validateMongoURI(s.Mongo.URI); err != nil {
			return err
		}
		if s.Mongo.Database == "" {
			return fmt.Errorf("DATABASE_NAME is required when STORE_BACKEND=mongo")
		}
		return nil
	case StoreDuckDB:
		if s.DuckDB.Path == "" {
			return fmt.Errorf("DUCKDB_PATH is required when STORE_BACKEND=duckdb")
		}
		return nil
	default:
		return fmt.Errorf("STORE_BACKEND must be one of: mongo, duckdb, memory")
	}
}

func (c *Config) validateEmbedding() error {
	e := c.Embedding
	if e.BatchSize < 1 {
		return fmt.Errorf("EMBEDDING_BATCH_SIZE must be at least 1, got %d", e.BatchSize)
	}
	if e.RequestsPerSecond < 0 {
		return fmt.Errorf("EMBEDDING_REQUESTS_PER_SECOND must not be negative")
	}
	if e.Cache.Enabled && e.Cache.Size < 1 {
		return fmt.Errorf("EMBEDDING_CACHE_SIZE must be at least 1 when the cache is enabled")
	}
	if e.Breaker.Enabled && (e.Breaker.FailureRatio <= 0 || e.Breaker.FailureRatio > 1) {
		return fmt.Errorf("embedding.breaker.failure_ratio must be in (0, 1]")
	}

	switch e.Provider {
	case EmbeddingHash:
		if e.Dimensions < 1 {
			return fmt.Errorf("EMBEDDING_DIMENSIONS must be at least 1 for the hash provider")
		}
		return nil
	case EmbeddingOllama:
		if e.BaseURL != "" {
			return validateHTTPURL(e.BaseURL, "EMBEDDING_BASE_URL")
		}
		return nil
	case EmbeddingOpenAI:
		if e.APIKey == "" {
			return fmt.Errorf("EMBEDDING_API_KEY is required when EMBEDDING_PROVIDER=openai")
		}
		if e.BaseURL != "" {
			return validateHTTPURL(e.BaseURL, "EMBEDDING_BASE_URL")
		}
		return nil
	default:
		return fmt.Errorf("EMBEDDING_PROVIDER must be one of: hash, ollama, openai")
	}
}

func (c *Config) validateIndex() error {
	i := c.Index
	checks := []struct {
		name  string
		value int
	}{
		{"INDEX_EXACT_THRESHOLD", i.ExactThreshold},
		{"INDEX_MAX_CLUSTERS", i.MaxClusters},
		{"INDEX_CLUSTER_DIVISOR", i.ClusterDivisor},
		{"INDEX_MAX_PROBE", i.MaxProbe},
		{"INDEX_KMEANS_ITERATIONS", i.KMeansIterations},
	}
	for _, chk := range checks {
		if chk.value < 1 {
			return fmt.Errorf("%s must be at least 1, got %d", chk.name, chk.value)
		}
	}
	return nil
}

func (c *Config) validateRecommend() error {
	r := c.Recommend
	if r.MaxLimit < 1 {
		return fmt.Errorf("RECOMMEND_MAX_LIMIT must be at least 1, got %d", r.MaxLimit)
	}
	if r.DefaultLimit < 1 || r.DefaultLimit > r.MaxLimit {
		return fmt.Errorf("RECOMMEND_DEFAULT_LIMIT must be between 1 and %d, got %d", r.MaxLimit, r.DefaultLimit)
	}
	if r.RefreshInterval < 0 {
		return fmt.Errorf("RECOMMEND_REFRESH_INTERVAL must not be negative")
	}
	if r.BuildTimeout <= 0 {
		return fmt.Errorf("RECOMMEND_BUILD_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateEvents() error {
	e := c.Events
	if !e.Enabled {
		return nil
	}
	if e.UpsertTopic == "" || e.RefreshTopic == "" {
		return fmt.Errorf("event topics must not be empty")
	}
	if e.MaxRetries < 0 {
		return fmt.Errorf("EVENTS_MAX_RETRIES must not be negative")
	}

	switch e.Transport {
	case TransportGoChannel:
		return nil
	case TransportNATS:
		if e.EmbeddedServer {
			if e.StoreDir == "" {
				return fmt.Errorf("NATS_STORE_DIR is required with the embedded NATS server")
			}
			return nil
		}
		return validateNATSURL(e.NATSURL)
	default:
		return fmt.Errorf("EVENTS_TRANSPORT must be one of: gochannel, nats")
	}
}
