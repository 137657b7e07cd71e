// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

package events

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/tomtom215/synapse/internal/config"
)

// PoisonTopic receives messages that still fail after all retries.
const PoisonTopic = "content.poison"

// Transport bundles the publisher and subscriber factory for one message
// backend.
type Transport struct {
	Kind      string
	Publisher message.Publisher

	newSubscriber func(consumer string) (message.Subscriber, error)

	mu      sync.Mutex
	closers []func() error
	closed  bool
}

// Subscriber returns a subscriber for the named consumer. With NATS each
// consumer gets its own durable; the in-process channel shares one.
func (t *Transport) Subscriber(consumer string) (message.Subscriber, error) {
	sub, err := t.newSubscriber(consumer)
	if err != nil {
		return nil, err
	}
	t.onClose(sub.Close)
	return sub, nil
}

func (t *Transport) onClose(fn func() error) {
	t.mu.Lock()
	t.closers = append(t.closers, fn)
	t.mu.Unlock()
}

// Close releases subscribers, the publisher, the NATS connection and the
// embedded server, in reverse order of creation.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true

	var errs []error
	for i := len(t.closers) - 1; i >= 0; i-- {
		if err := t.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewTransport creates the transport selected by cfg.Transport.
func NewTransport(ctx context.Context, cfg *config.EventsConfig, logger watermill.LoggerAdapter) (*Transport, error) {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	switch cfg.Transport {
	case "", config.TransportGoChannel:
		return NewGoChannelTransport(logger), nil
	case config.TransportNATS:
		return newNATSTransport(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unknown event transport %q", cfg.Transport)
	}
}

// NewGoChannelTransport creates an in-process transport. Messages published
// while no handler is subscribed are dropped.
func NewGoChannelTransport(logger watermill.LoggerAdapter) *Transport {
	ch := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 64,
	}, logger)

	t := &Transport{
		Kind:      config.TransportGoChannel,
		Publisher: ch,
		newSubscriber: func(string) (message.Subscriber, error) {
			return nopCloseSubscriber{ch}, nil
		},
	}
	t.onClose(ch.Close)
	return t
}

// nopCloseSubscriber lets several consumers share one GoChannel, which is
// closed once by the transport.
type nopCloseSubscriber struct {
	message.Subscriber
}

func (nopCloseSubscriber) Close() error { return nil }

func newNATSTransport(ctx context.Context, cfg *config.EventsConfig, logger watermill.LoggerAdapter) (*Transport, error) {
	t := &Transport{Kind: config.TransportNATS}
	natsURL := cfg.NATSURL

	if cfg.EmbeddedServer {
		host, port, err := splitNATSURL(natsURL)
		if err != nil {
			return nil, err
		}
		srv, err := NewEmbeddedServer(&EmbeddedServerConfig{
			Host:      host,
			Port:      port,
			StoreDir:  cfg.StoreDir,
			MaxMemory: cfg.MaxMemory,
			MaxStore:  cfg.MaxStore,
		})
		if err != nil {
			return nil, err
		}
		t.onClose(func() error { srv.Shutdown(); return nil })
		natsURL = srv.ClientURL()
		logger.Info("Embedded NATS server started", watermill.LogFields{"url": natsURL})
	}

	if err := ensureStream(ctx, natsURL, cfg); err != nil {
		_ = t.Close()
		return nil, err
	}

	natsOpts := connectOptions(logger)
	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         natsURL,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: false,
			TrackMsgId:    true,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}, logger)
	if err != nil {
		_ = t.Close()
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}
	t.Publisher = pub
	t.onClose(pub.Close)

	t.newSubscriber = func(consumer string) (message.Subscriber, error) {
		sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
			URL:              natsURL,
			SubscribersCount: 1,
			AckWaitTimeout:   30 * time.Second,
			CloseTimeout:     30 * time.Second,
			NatsOptions:      natsOpts,
			Unmarshaler:      &wmNats.NATSMarshaler{},
			JetStream: wmNats.JetStreamConfig{
				AutoProvision: false,
				SubscribeOptions: []natsgo.SubOpt{
					natsgo.BindStream(cfg.StreamName),
					natsgo.MaxDeliver(cfg.MaxRetries + 2),
					natsgo.DeliverNew(),
				},
				DurablePrefix: cfg.DurableName + "-" + consumer,
			},
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("create watermill subscriber %s: %w", consumer, err)
		}
		return sub, nil
	}
	return t, nil
}

func connectOptions(logger watermill.LoggerAdapter) []natsgo.Option {
	return []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}
}

// ensureStream creates or updates the JetStream stream holding the content
// topics and the poison topic.
func ensureStream(ctx context.Context, natsURL string, cfg *config.EventsConfig) error {
	nc, err := natsgo.Connect(natsURL, natsgo.Timeout(10*time.Second))
	if err != nil {
		return fmt.Errorf("connect to NATS: %w", err)
	}
	defer nc.Close()

	js, err := jetstream.New(nc)
	if err != nil {
		return fmt.Errorf("create JetStream context: %w", err)
	}

	streamCfg := jetstream.StreamConfig{
		Name:       cfg.StreamName,
		Subjects:   []string{cfg.UpsertTopic, cfg.RefreshTopic, PoisonTopic},
		Retention:  jetstream.LimitsPolicy,
		Storage:    jetstream.FileStorage,
		MaxAge:     7 * 24 * time.Hour,
		Duplicates: 2 * time.Minute,
		Discard:    jetstream.DiscardOld,
	}

	_, err = js.Stream(ctx, cfg.StreamName)
	switch {
	case err == nil:
		if _, err := js.UpdateStream(ctx, streamCfg); err != nil {
			return fmt.Errorf("update stream %s: %w", cfg.StreamName, err)
		}
	case errors.Is(err, jetstream.ErrStreamNotFound):
		if _, err := js.CreateStream(ctx, streamCfg); err != nil {
			return fmt.Errorf("create stream %s: %w", cfg.StreamName, err)
		}
	default:
		return fmt.Errorf("check stream %s: %w", cfg.StreamName, err)
	}
	return nil
}

// splitNATSURL extracts the listen address for the embedded server from
// the configured client URL.
func splitNATSURL(raw string) (string, int, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", 0, fmt.Errorf("parse NATS URL: %w", err)
	}
	port := 4222
	if p := u.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil {
			return "", 0, fmt.Errorf("parse NATS port: %w", err)
		}
	}
	return u.Hostname(), port, nil
}
