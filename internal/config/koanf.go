// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists config file locations in priority order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/synapse/config.yaml",
	"/etc/synapse/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8000,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		API: APIConfig{
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			RequestTimeout:  30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Store: StoreConfig{
			Backend: StoreMemory,
			Collections: CollectionsConfig{
				Courses: "courses",
				Blogs:   "blogs",
				Forums:  "forums",
			},
			Limits: LimitsConfig{
				Courses: 1000,
				Blogs:   1000,
				Forums:  500,
			},
			Mongo: MongoConfig{
				URI:      "",
				Database: "synapse",
				Timeout:  10 * time.Second,
			},
			DuckDB: DuckDBConfig{
				Path:      "/data/synapse.duckdb",
				MaxMemory: "1GB",
			},
		},
		Embedding: EmbeddingConfig{
			Provider:   EmbeddingHash,
			Dimensions: 384,
			Timeout:    30 * time.Second,
			BatchSize:  64,
			Burst:      1,
			Cache: EmbeddingCacheConfig{
				Enabled: true,
				Size:    10000,
				TTL:     24 * time.Hour,
			},
			Breaker: BreakerConfig{
				Enabled:      true,
				MaxRequests:  3,
				Interval:     time.Minute,
				Timeout:      2 * time.Minute,
				MinRequests:  10,
				FailureRatio: 0.6,
			},
		},
		Index: IndexConfig{
			ExactThreshold:   1000,
			MaxClusters:      100,
			ClusterDivisor:   10,
			MaxProbe:         10,
			KMeansIterations: 20,
			Seed:             42,
		},
		Recommend: RecommendConfig{
			DefaultLimit:    10,
			MaxLimit:        50,
			BuildOnStartup:  true,
			RefreshInterval: 0,
			BuildTimeout:    10 * time.Minute,
		},
		Events: EventsConfig{
			Enabled:              false,
			Transport:            TransportGoChannel,
			NATSURL:              "nats://127.0.0.1:4222",
			EmbeddedServer:       true,
			StoreDir:             "/data/nats/jetstream",
			MaxMemory:            256 << 20,
			MaxStore:             1 << 30,
			StreamName:           "SYNAPSE_CONTENT",
			DurableName:          "synapse-indexer",
			UpsertTopic:          "content.upserted",
			RefreshTopic:         "content.refresh",
			MaxRetries:           3,
			RetryInitialInterval: 500 * time.Millisecond,
			RetryMaxInterval:     10 * time.Second,
		},
	}
}

// LoadWithKoanf loads configuration in three layers:
//
//  1. Defaults: defaultConfig()
//  2. Config File: optional YAML file
//  3. Environment Variables: override any mapped setting
//
// The result is validated before it is returned.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// MONGODB_URI -> store.mongo.uri, HTTP_PORT -> server.port
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns CONFIG_PATH when it exists, else the first existing
// default path, else "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are parsed from comma-separated strings when they come
// from the environment.
var sliceConfigPaths = []string{
	"api.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lower-cased) to koanf paths.
// Unmapped variables are ignored.
var envMappings = map[string]string{
	// Server
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"http_drain_delay":      "server.drain_delay",
	"environment":           "server.environment",

	// API
	"cors_origins":        "api.cors_origins",
	"rate_limit_reqs":     "api.rate_limit_reqs",
	"rate_limit_window":   "api.rate_limit_window",
	"disable_rate_limit":  "api.rate_limit_disabled",
	"api_request_timeout": "api.request_timeout",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Content store
	"store_backend":     "store.backend",
	"courses_coll":      "store.collections.courses",
	"blogs_coll":        "store.collections.blogs",
	"forums_coll":       "store.collections.forums",
	"courses_limit":     "store.limits.courses",
	"blogs_limit":       "store.limits.blogs",
	"forums_limit":      "store.limits.forums",
	"mongodb_uri":       "store.mongo.uri",
	"database_name":     "store.mongo.database",
	"mongodb_timeout":   "store.mongo.timeout",
	"duckdb_path":       "store.duckdb.path",
	"duckdb_max_memory": "store.duckdb.max_memory",
	"duckdb_threads":    "store.duckdb.threads",

	// Embedding
	"embedding_provider":            "embedding.provider",
	"embedding_base_url":            "embedding.base_url",
	"embedding_model":               "embedding.model",
	"embedding_api_key":             "embedding.api_key",
	"embedding_dimensions":          "embedding.dimensions",
	"embedding_timeout":             "embedding.timeout",
	"embedding_batch_size":          "embedding.batch_size",
	"embedding_requests_per_second": "embedding.requests_per_second",
	"embedding_burst":               "embedding.burst",
	"embedding_cache_enabled":       "embedding.cache.enabled",
	"embedding_cache_size":          "embedding.cache.size",
	"embedding_cache_ttl":           "embedding.cache.ttl",
	"embedding_cache_path":          "embedding.cache.path",
	"embedding_breaker_enabled":     "embedding.breaker.enabled",

	// Index
	"index_exact_threshold":   "index.exact_threshold",
	"index_max_clusters":      "index.max_clusters",
	"index_cluster_divisor":   "index.cluster_divisor",
	"index_max_probe":         "index.max_probe",
	"index_kmeans_iterations": "index.kmeans_iterations",
	"index_seed":              "index.seed",

	// Recommend
	"recommend_default_limit":    "recommend.default_limit",
	"recommend_max_limit":        "recommend.max_limit",
	"recommend_build_on_startup": "recommend.build_on_startup",
	"recommend_refresh_interval": "recommend.refresh_interval",
	"recommend_build_timeout":    "recommend.build_timeout",

	// Content events
	"events_enabled":       "events.enabled",
	"events_transport":     "events.transport",
	"nats_url":             "events.nats_url",
	"nats_embedded":        "events.embedded_server",
	"nats_store_dir":       "events.store_dir",
	"nats_max_memory":      "events.max_memory",
	"nats_max_store":       "events.max_store",
	"nats_stream_name":     "events.stream_name",
	"nats_durable_name":    "events.durable_name",
	"events_upsert_topic":  "events.upsert_topic",
	"events_refresh_topic": "events.refresh_topic",
	"events_max_retries":   "events.max_retries",
}

// envTransformFunc maps an environment variable name to a koanf path, or ""
// to skip it.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
