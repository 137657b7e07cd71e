// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

package config

import "time"

// Config holds all service configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: defaultConfig()
//  2. Config File: optional YAML file (CONFIG_PATH or DefaultConfigPaths)
//  3. Environment Variables: explicit mapping in envTransformFunc
//
// Config is immutable after Load and safe for concurrent reads.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	API       APIConfig       `koanf:"api"`
	Logging   LoggingConfig   `koanf:"logging"`
	Store     StoreConfig     `koanf:"store"`
	Embedding EmbeddingConfig `koanf:"embedding"`
	Index     IndexConfig     `koanf:"index"`
	Recommend RecommendConfig `koanf:"recommend"`
	Events    EventsConfig    `koanf:"events"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	DrainDelay      time.Duration `koanf:"drain_delay"` // readiness reports 503 this long before shutdown
	Environment     string        `koanf:"environment"` // development, staging, production
}

// APIConfig holds HTTP API behaviour: CORS, rate limiting and per-request deadlines.
type APIConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	RequestTimeout    time.Duration `koanf:"request_timeout"`
}

// LoggingConfig holds logging settings for zerolog.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Store backends.
const (
	StoreMongo  = "mongo"
	StoreDuckDB = "duckdb"
	StoreMemory = "memory"
)

// StoreConfig selects where content documents are read from.
//
// The three collections are read in order courses, blogs, forums, each
// capped by its limit.
type StoreConfig struct {
	Backend     string            `koanf:"backend"`
	Collections CollectionsConfig `koanf:"collections"`
	Limits      LimitsConfig      `koanf:"limits"`
	Mongo       MongoConfig       `koanf:"mongo"`
	DuckDB      DuckDBConfig      `koanf:"duckdb"`
}

// CollectionsConfig names the collection (or DuckDB partition) per content type.
type CollectionsConfig struct {
	Courses string `koanf:"courses"`
	Blogs   string `koanf:"blogs"`
	Forums  string `koanf:"forums"`
}

// LimitsConfig caps how many documents are read per collection.
type LimitsConfig struct {
	Courses int `koanf:"courses"`
	Blogs   int `koanf:"blogs"`
	Forums  int `koanf:"forums"`
}

// MongoConfig holds MongoDB connection settings.
type MongoConfig struct {
	URI      string        `koanf:"uri"`
	Database string        `koanf:"database"`
	Timeout  time.Duration `koanf:"timeout"`
}

// DuckDBConfig holds settings for the embedded DuckDB document store.
type DuckDBConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = NumCPU
}

// Embedding providers.
const (
	EmbeddingHash   = "hash"
	EmbeddingOllama = "ollama"
	EmbeddingOpenAI = "openai"
)

// EmbeddingConfig selects and tunes the text embedding provider.
//
// Remote providers (ollama, openai) are wrapped with a rate limiter and a
// circuit breaker; any provider can sit behind the two-tier cache.
type EmbeddingConfig struct {
	Provider          string               `koanf:"provider"`
	BaseURL           string               `koanf:"base_url"`
	Model             string               `koanf:"model"`
	APIKey            string               `koanf:"api_key"`
	Dimensions        int                  `koanf:"dimensions"`
	Timeout           time.Duration        `koanf:"timeout"`
	BatchSize         int                  `koanf:"batch_size"`
	RequestsPerSecond float64              `koanf:"requests_per_second"` // 0 disables limiting
	Burst             int                  `koanf:"burst"`
	Cache             EmbeddingCacheConfig `koanf:"cache"`
	Breaker           BreakerConfig        `koanf:"breaker"`
}

// EmbeddingCacheConfig configures the in-memory LRU and the optional
// on-disk BadgerDB tier. An empty Path disables the disk tier.
type EmbeddingCacheConfig struct {
	Enabled bool          `koanf:"enabled"`
	Size    int           `koanf:"size"`
	TTL     time.Duration `koanf:"ttl"`
	Path    string        `koanf:"path"`
}

// BreakerConfig mirrors gobreaker.Settings.
type BreakerConfig struct {
	Enabled      bool          `koanf:"enabled"`
	MaxRequests  uint32        `koanf:"max_requests"`
	Interval     time.Duration `koanf:"interval"`
	Timeout      time.Duration `koanf:"timeout"`
	MinRequests  uint32        `koanf:"min_requests"`
	FailureRatio float64       `koanf:"failure_ratio"`
}

// IndexConfig holds vector index strategy parameters.
type IndexConfig struct {
	ExactThreshold   int   `koanf:"exact_threshold"`
	MaxClusters      int   `koanf:"max_clusters"`
	ClusterDivisor   int   `koanf:"cluster_divisor"`
	MaxProbe         int   `koanf:"max_probe"`
	KMeansIterations int   `koanf:"kmeans_iterations"`
	Seed             int64 `koanf:"seed"`
}

// RecommendConfig controls request limits and the index lifecycle.
type RecommendConfig struct {
	DefaultLimit    int           `koanf:"default_limit"`
	MaxLimit        int           `koanf:"max_limit"`
	BuildOnStartup  bool          `koanf:"build_on_startup"`
	RefreshInterval time.Duration `koanf:"refresh_interval"` // 0 disables periodic refresh
	BuildTimeout    time.Duration `koanf:"build_timeout"`
}

// Event transports.
const (
	TransportGoChannel = "gochannel"
	TransportNATS      = "nats"
)

// EventsConfig configures the content event router.
type EventsConfig struct {
	Enabled        bool   `koanf:"enabled"`
	Transport      string `koanf:"transport"`
	NATSURL        string `koanf:"nats_url"`
	EmbeddedServer bool   `koanf:"embedded_server"`
	StoreDir       string `koanf:"store_dir"`
	MaxMemory      int64  `koanf:"max_memory"`
	MaxStore       int64  `koanf:"max_store"`
	StreamName     string `koanf:"stream_name"`
	DurableName    string `koanf:"durable_name"`
	UpsertTopic    string `koanf:"upsert_topic"`
	RefreshTopic   string `koanf:"refresh_topic"`

	MaxRetries           int           `koanf:"max_retries"`
	RetryInitialInterval time.Duration `koanf:"retry_initial_interval"`
	RetryMaxInterval     time.Duration `koanf:"retry_max_interval"`
}

// Load loads configuration using Koanf v2.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
