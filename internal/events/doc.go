// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

/*
Package events keeps the recommendation index in step with the content
stores through asynchronous messages.

Two topics are consumed by a Watermill router:

  - content.upserted: {"collection": "...", "items": [documents]}. Items are
    tagged with the collection's content type and appended to the live index.
  - content.refresh: {"reason": "..."}. The index is rebuilt from the store
    and swapped in atomically.

Messages travel either over an in-process gochannel (single instance, tests)
or NATS JetStream through watermill-nats, optionally against an embedded
nats-server. Handler errors are retried with exponential backoff; messages
that still fail are routed to the poison topic.

Usage:

	transport, err := events.NewTransport(ctx, &cfg.Events, logger)
	processor, err := events.NewProcessor(&cfg.Events, transport, lifecycle, logger)
	go processor.Run(ctx)

	pub := events.NewPublisher(&cfg.Events, transport.Publisher)
	err = pub.PublishRefresh(ctx, "manual")
*/
package events
