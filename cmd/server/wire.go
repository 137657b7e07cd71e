// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tomtom215/synapse/internal/api"
	"github.com/tomtom215/synapse/internal/config"
	"github.com/tomtom215/synapse/internal/content"
	"github.com/tomtom215/synapse/internal/embedding"
	"github.com/tomtom215/synapse/internal/events"
	"github.com/tomtom215/synapse/internal/logging"
	"github.com/tomtom215/synapse/internal/recommend"
	"github.com/tomtom215/synapse/internal/store"
	"github.com/tomtom215/synapse/internal/supervisor"
	"github.com/tomtom215/synapse/internal/supervisor/services"
	"github.com/tomtom215/synapse/internal/vectorindex"
)

// components holds everything main wires together. Close releases them in
// reverse order of construction.
type components struct {
	source        store.Source
	provider      embedding.Provider
	providerClose io.Closer
	index         *recommend.IndexEngine
	engine        *recommend.Engine
	lifecycle     *recommend.Lifecycle
	transport     *events.Transport
	processor     *events.Processor
	handler       *api.Handler
	router        http.Handler
}

// buildComponents opens the store, the embedding provider and the optional
// event transport, then assembles the recommendation core and the API.
func buildComponents(ctx context.Context, cfg *config.Config) (_ *components, err error) {
	c := &components{}
	defer func() {
		if err != nil {
			c.Close()
		}
	}()

	c.source, err = store.New(ctx, &cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Backend, err)
	}
	logging.Info().Str("backend", c.source.Backend()).Msg("Content store opened")

	c.provider, c.providerClose, err = embedding.New(&cfg.Embedding)
	if err != nil {
		return nil, fmt.Errorf("create embedding provider: %w", err)
	}
	logging.Info().
		Str("provider", cfg.Embedding.Provider).
		Str("model", c.provider.Model()).
		Int("dimension", c.provider.Dimension()).
		Msg("Embedding provider ready")

	rcfg := recommendConfig(cfg)
	c.index, err = recommend.NewIndexEngine(c.provider, rcfg.Index, logging.WithComponent("index"))
	if err != nil {
		return nil, err
	}
	c.engine, err = recommend.NewEngine(c.index, rcfg, logging.WithComponent("recommend"))
	if err != nil {
		return nil, err
	}
	c.lifecycle = recommend.NewLifecycle(c.index, c.source, collections(&cfg.Store), logging.WithComponent("lifecycle"))

	opts := []api.HandlerOption{
		api.WithBuildTimeout(cfg.Recommend.BuildTimeout),
		api.WithDependency("store", c.source),
	}
	if w, ok := c.source.(store.Writer); ok {
		opts = append(opts, api.WithWriter(w))
	}
	if cfg.Embedding.Provider != config.EmbeddingHash && cfg.Embedding.Provider != "" {
		provider := c.provider
		opts = append(opts, api.WithDependency("embedding", api.PingFunc(func(ctx context.Context) error {
			return embedding.Ping(ctx, provider)
		})))
	}

	if cfg.Events.Enabled {
		eventsLogger := logging.WithComponent("events")
		c.transport, err = events.NewTransport(ctx, &cfg.Events, logging.NewWatermillAdapter(eventsLogger))
		if err != nil {
			return nil, fmt.Errorf("create %s transport: %w", cfg.Events.Transport, err)
		}
		c.processor, err = events.NewProcessor(&cfg.Events, c.transport, c.lifecycle, eventsLogger)
		if err != nil {
			return nil, fmt.Errorf("create event processor: %w", err)
		}
		opts = append(opts, api.WithPublisher(events.NewPublisher(&cfg.Events, c.transport.Publisher)))
		logging.Info().Str("transport", c.transport.Kind).Msg("Content events enabled")
	}

	c.handler, err = api.NewHandler(c.engine, c.lifecycle, opts...)
	if err != nil {
		return nil, err
	}
	c.router = api.NewRouter(c.handler, &cfg.API)
	return c, nil
}

// Close releases the transport, the embedding cache and the store.
func (c *components) Close() {
	var errs []error
	if c.processor != nil {
		errs = append(errs, c.processor.Close())
	}
	if c.transport != nil {
		errs = append(errs, c.transport.Close())
	}
	if c.providerClose != nil {
		errs = append(errs, c.providerClose.Close())
	}
	if c.source != nil {
		errs = append(errs, c.source.Close())
	}
	if err := errors.Join(errs...); err != nil {
		logging.Error().Err(err).Msg("Error releasing components")
	}
}

// addServices registers the index scheduler, the event processor and the
// HTTP server with the supervisor tree.
func (c *components) addServices(tree *supervisor.SupervisorTree, cfg *config.Config) (*http.Server, error) {
	scheduler := services.NewIndexSchedulerService(c.lifecycle, services.IndexSchedulerConfig{
		RefreshInterval:  cfg.Recommend.RefreshInterval,
		BuildTimeout:     cfg.Recommend.BuildTimeout,
		SkipInitialBuild: !cfg.Recommend.BuildOnStartup,
	}, logging.WithComponent("scheduler"))
	if _, err := tree.Add(supervisor.LayerData, scheduler); err != nil {
		return nil, err
	}

	if c.processor != nil {
		if _, err := tree.Add(supervisor.LayerMessaging, services.NewEventProcessorService(c.processor)); err != nil {
			return nil, err
		}
	}

	server := newHTTPServer(&cfg.Server, c.router)
	httpSvc := services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout,
		services.WithDrain(c.handler.Drain),
		services.WithDrainDelay(cfg.Server.DrainDelay),
	)
	if _, err := tree.Add(supervisor.LayerAPI, httpSvc); err != nil {
		return nil, err
	}
	return server, nil
}

func newHTTPServer(cfg *config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Timeout,
		IdleTimeout:       60 * time.Second,
	}
}

// recommendConfig maps the request limits and index parameters.
func recommendConfig(cfg *config.Config) *recommend.Config {
	return &recommend.Config{
		DefaultLimit: cfg.Recommend.DefaultLimit,
		MaxLimit:     cfg.Recommend.MaxLimit,
		Index: vectorindex.Params{
			ExactThreshold:  cfg.Index.ExactThreshold,
			MaxClusters:     cfg.Index.MaxClusters,
			ClusterDivisor:  cfg.Index.ClusterDivisor,
			MaxProbe:        cfg.Index.MaxProbe,
			TrainIterations: cfg.Index.KMeansIterations,
			Seed:            cfg.Index.Seed,
		},
	}
}

// collections lists the configured collections in load order. An empty
// name disables its content type.
func collections(cfg *config.StoreConfig) []recommend.Collection {
	return []recommend.Collection{
		{Type: content.TypeCourse, Name: cfg.Collections.Courses, Limit: cfg.Limits.Courses},
		{Type: content.TypeBlog, Name: cfg.Collections.Blogs, Limit: cfg.Limits.Blogs},
		{Type: content.TypeForum, Name: cfg.Collections.Forums, Limit: cfg.Limits.Forums},
	}
}
