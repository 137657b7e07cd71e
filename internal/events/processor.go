// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/rs/zerolog"

	"github.com/tomtom215/synapse/internal/config"
	"github.com/tomtom215/synapse/internal/content"
	"github.com/tomtom215/synapse/internal/logging"
	"github.com/tomtom215/synapse/internal/metrics"
	"github.com/tomtom215/synapse/internal/recommend"
)

// Indexer is the part of the index lifecycle driven by content events.
// *recommend.Lifecycle satisfies it.
type Indexer interface {
	TypeOf(collection string) content.Type
	Update(ctx context.Context, items []content.Item) (int, error)
	Refresh(ctx context.Context) (int, error)
}

// Processor routes content events to the index.
type Processor struct {
	router  *message.Router
	indexer Indexer
	cfg     config.EventsConfig
	logger  zerolog.Logger
}

// NewProcessor builds the router and registers the upsert and refresh
// handlers. Call Run to start consuming.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewProcessor(cfg *config.EventsConfig, transport *Transport, indexer Indexer, logger zerolog.Logger) (*Processor, error) {
	logger = logger.With().Str("component", "events").Logger()
	wmLogger := logging.NewWatermillAdapter(logger)

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: 30 * time.Second}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	// Outer to inner: poison queue, panic recovery, retry.
	poison, err := middleware.PoisonQueue(transport.Publisher, PoisonTopic)
	if err != nil {
		return nil, fmt.Errorf("create poison queue middleware: %w", err)
	}
	router.AddMiddleware(poison, middleware.Recoverer)

	if cfg.MaxRetries > 0 {
		retry := middleware.Retry{
			MaxRetries:      cfg.MaxRetries,
			InitialInterval: cfg.RetryInitialInterval,
			MaxInterval:     cfg.RetryMaxInterval,
			Multiplier:      2,
			Logger:          wmLogger,
		}
		router.AddMiddleware(retry.Middleware)
	}

	p := &Processor{
		router:  router,
		indexer: indexer,
		cfg:     *cfg,
		logger:  logger,
	}

	upsertSub, err := transport.Subscriber("upsert")
	if err != nil {
		return nil, err
	}
	refreshSub, err := transport.Subscriber("refresh")
	if err != nil {
		return nil, err
	}
	router.AddConsumerHandler("content-upserted", cfg.UpsertTopic, upsertSub, p.handleUpserted)
	router.AddConsumerHandler("content-refresh", cfg.RefreshTopic, refreshSub, p.handleRefresh)

	return p, nil
}

// Run consumes events until ctx is canceled.
func (p *Processor) Run(ctx context.Context) error {
	p.logger.Info().
		Str("upsert_topic", p.cfg.UpsertTopic).
		Str("refresh_topic", p.cfg.RefreshTopic).
		Msg("Content event router starting")
	return p.router.Run(ctx)
}

// Running is closed once every handler is subscribed.
func (p *Processor) Running() chan struct{} {
	return p.router.Running()
}

// Close stops the router.
func (p *Processor) Close() error {
	return p.router.Close()
}

func (p *Processor) handleUpserted(msg *message.Message) error {
	ctx := messageContext(msg)
	err := p.upsert(ctx, msg)
	metrics.RecordContentEvent(p.cfg.UpsertTopic, err)
	return p.settle(ctx, msg, err)
}

func (p *Processor) upsert(ctx context.Context, msg *message.Message) error {
	ev, err := decodeUpserted(msg.Payload)
	if err != nil {
		return err
	}

	t := p.indexer.TypeOf(ev.Collection)
	items := content.FromDocuments(ev.Items, t)
	total, err := p.indexer.Update(ctx, items)
	if err != nil {
		return err
	}

	logging.Ctx(ctx).Info().
		Str("collection", ev.Collection).
		Str("content_type", string(t)).
		Int("added", len(items)).
		Int("total_content", total).
		Msg("Content upsert applied")
	return nil
}

func (p *Processor) handleRefresh(msg *message.Message) error {
	ctx := messageContext(msg)
	err := p.refresh(ctx, msg)
	metrics.RecordContentEvent(p.cfg.RefreshTopic, err)
	return p.settle(ctx, msg, err)
}

func (p *Processor) refresh(ctx context.Context, msg *message.Message) error {
	ev, err := decodeRefresh(msg.Payload)
	if err != nil {
		return err
	}

	total, err := p.indexer.Refresh(ctx)
	if err != nil {
		return err
	}

	logging.Ctx(ctx).Info().
		Str("reason", ev.Reason).
		Int("total_content", total).
		Msg("Index refreshed from event")
	return nil
}

// settle decides whether a failed message is retried. Malformed payloads
// and updates arriving before the first build are acknowledged and dropped;
// the next full build picks the content up from the store.
func (p *Processor) settle(ctx context.Context, msg *message.Message, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrInvalidEvent):
		logging.Ctx(ctx).Warn().Err(err).Str("message_uuid", msg.UUID).Msg("Dropping invalid content event")
		return nil
	case errors.Is(err, recommend.ErrNotReady):
		logging.Ctx(ctx).Warn().Str("message_uuid", msg.UUID).Msg("Index not built yet; dropping content event")
		return nil
	default:
		logging.Ctx(ctx).Error().Err(err).Str("message_uuid", msg.UUID).Msg("Content event failed")
		return err
	}
}

func messageContext(msg *message.Message) context.Context {
	ctx := msg.Context()
	if id := msg.Metadata.Get(MetadataCorrelationID); id != "" {
		return logging.ContextWithCorrelationID(ctx, id)
	}
	return logging.ContextWithNewCorrelationID(ctx)
}
