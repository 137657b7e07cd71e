// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

package events

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/synapse/internal/config"
	"github.com/tomtom215/synapse/internal/content"
	"github.com/tomtom215/synapse/internal/logging"
	"github.com/tomtom215/synapse/internal/metrics"
)

// Publisher emits content events.
type Publisher struct {
	publisher    message.Publisher
	upsertTopic  string
	refreshTopic string
}

// NewPublisher creates a publisher for the topics in cfg.
func NewPublisher(cfg *config.EventsConfig, pub message.Publisher) *Publisher {
	return &Publisher{
		publisher:    pub,
		upsertTopic:  cfg.UpsertTopic,
		refreshTopic: cfg.RefreshTopic,
	}
}

// PublishUpsert announces documents added to collection.
func (p *Publisher) PublishUpsert(ctx context.Context, collection string, docs []content.Document) error {
	if collection == "" {
		return fmt.Errorf("%w: collection is required", ErrInvalidEvent)
	}
	msg, err := newMessage(&ContentUpserted{Collection: collection, Items: docs})
	if err != nil {
		return err
	}
	msg.Metadata.Set(MetadataCollection, collection)
	return p.publish(ctx, p.upsertTopic, msg)
}

// PublishRefresh requests a full index rebuild.
func (p *Publisher) PublishRefresh(ctx context.Context, reason string) error {
	msg, err := newMessage(&RefreshRequested{Reason: reason})
	if err != nil {
		return err
	}
	return p.publish(ctx, p.refreshTopic, msg)
}

func (p *Publisher) publish(ctx context.Context, topic string, msg *message.Message) error {
	msg.SetContext(ctx)
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		msg.Metadata.Set(MetadataCorrelationID, id)
	} else if id := logging.RequestIDFromContext(ctx); id != "" {
		msg.Metadata.Set(MetadataCorrelationID, id)
	}
	// JetStream deduplicates on this header; other transports ignore it.
	msg.Metadata.Set(natsgo.MsgIdHdr, msg.UUID)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	metrics.RecordContentPublish(topic)
	return nil
}
