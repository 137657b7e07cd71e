// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

package recommend

import (
	"fmt"

	"github.com/tomtom215/synapse/internal/vectorindex"
)

// Config contains the settings of the recommendation core.
type Config struct {
	// DefaultLimit is used when a request does not specify a limit.
	DefaultLimit int `json:"default_limit"`

	// MaxLimit is the largest limit a request may ask for.
	MaxLimit int `json:"max_limit"`

	// Index selects and tunes the vector index strategy.
	Index vectorindex.Params `json:"index"`
}

// DefaultConfig returns a Config with the standard limits and index parameters.
func DefaultConfig() *Config {
	return &Config{
		DefaultLimit: 10,
		MaxLimit:     50,
		Index:        vectorindex.DefaultParams(),
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.MaxLimit < 1 {
		return fmt.Errorf("max_limit must be at least 1, got %d", c.MaxLimit)
	}
	if c.DefaultLimit < 1 || c.DefaultLimit > c.MaxLimit {
		return fmt.Errorf("default_limit must be in [1, %d], got %d", c.MaxLimit, c.DefaultLimit)
	}
	if err := c.Index.Validate(); err != nil {
		return fmt.Errorf("index: %w", err)
	}
	return nil
}
