// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/synapse/internal/logging"
)

// IndexBuilder builds and rebuilds the recommendation index.
// *recommend.Lifecycle satisfies it.
type IndexBuilder interface {
	Initialize(ctx context.Context) (int, error)
	Refresh(ctx context.Context) (int, error)
}

// IndexSchedulerConfig controls the index schedule.
type IndexSchedulerConfig struct {
	// RefreshInterval is the time between scheduled refreshes. Zero
	// disables them.
	RefreshInterval time.Duration

	// RetryInterval is the wait between failed initial builds.
	// Default: 30s
	RetryInterval time.Duration

	// BuildTimeout bounds each build.
	// Default: 10m
	BuildTimeout time.Duration

	// SkipInitialBuild leaves the first build to the first refresh tick or
	// to an explicit refresh request.
	SkipInitialBuild bool
}

// IndexSchedulerService performs the initial index build and then
// refreshes the index on a fixed interval.
//
// The initial build is retried until it succeeds; until then the API
// answers 503. A failed scheduled refresh is logged and leaves the served
// index in place.
type IndexSchedulerService struct {
	builder IndexBuilder
	config  IndexSchedulerConfig
	logger  zerolog.Logger
	name    string
	built   bool
}

// NewIndexSchedulerService creates the scheduler.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewIndexSchedulerService(builder IndexBuilder, cfg IndexSchedulerConfig, logger zerolog.Logger) *IndexSchedulerService {
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 30 * time.Second
	}
	if cfg.BuildTimeout <= 0 {
		cfg.BuildTimeout = 10 * time.Minute
	}
	return &IndexSchedulerService{
		builder: builder,
		config:  cfg,
		logger:  logger.With().Str("service", "index-scheduler").Logger(),
		name:    "index-scheduler",
	}
}

// Serve implements suture.Service. A restart after the first successful
// build does not rebuild immediately.
func (s *IndexSchedulerService) Serve(ctx context.Context) error {
	if !s.built && !s.config.SkipInitialBuild {
		if err := s.initialize(ctx); err != nil {
			return err
		}
		s.built = true
	}

	if s.config.RefreshInterval <= 0 {
		s.logger.Info().Msg("Scheduled index refresh disabled")
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.config.RefreshInterval)
	defer ticker.Stop()

	s.logger.Info().Dur("refresh_interval", s.config.RefreshInterval).Msg("Index scheduler running")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

// initialize retries the first build until it succeeds or ctx ends.
func (s *IndexSchedulerService) initialize(ctx context.Context) error {
	for attempt := 1; ; attempt++ {
		buildCtx, cancel := context.WithTimeout(logging.ContextWithNewCorrelationID(ctx), s.config.BuildTimeout)
		total, err := s.builder.Initialize(buildCtx)
		cancel()
		if err == nil {
			s.logger.Info().Int("total_content", total).Int("attempt", attempt).Msg("Initial index build complete")
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		s.logger.Warn().Err(err).
			Int("attempt", attempt).
			Dur("retry_in", s.config.RetryInterval).
			Msg("Initial index build failed")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.config.RetryInterval):
		}
	}
}

func (s *IndexSchedulerService) refresh(ctx context.Context) {
	buildCtx, cancel := context.WithTimeout(logging.ContextWithNewCorrelationID(ctx), s.config.BuildTimeout)
	defer cancel()

	start := time.Now()
	total, err := s.builder.Refresh(buildCtx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Scheduled index refresh failed; previous index remains active")
		return
	}
	s.logger.Info().Int("total_content", total).Dur("duration", time.Since(start)).Msg("Scheduled index refresh complete")
}

// String implements fmt.Stringer for suture's logs.
func (s *IndexSchedulerService) String() string {
	return s.name
}
