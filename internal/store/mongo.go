// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/tomtom215/synapse/internal/config"
	"github.com/tomtom215/synapse/internal/content"
	"github.com/tomtom215/synapse/internal/logging"
)

// Mongo reads content collections from a MongoDB database.
type Mongo struct {
	client  *mongo.Client
	db      *mongo.Database
	timeout time.Duration
}

// NewMongo connects to cfg.URI and verifies the connection.
func NewMongo(ctx context.Context, cfg *config.MongoConfig) (*Mongo, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	// Nested documents decode as bson.M so images.cover_image is a map.
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	m := &Mongo{
		client:  client,
		db:      client.Database(cfg.Database),
		timeout: timeout,
	}
	if err := m.Ping(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	log := logging.WithComponent("store")
	log.Info().
		Str("database", cfg.Database).
		Msg("Connected to MongoDB")
	return m, nil
}

func (m *Mongo) Backend() string { return config.StoreMongo }

// Fetch runs find().limit(limit) on collection.
func (m *Mongo) Fetch(ctx context.Context, collection string, limit int) ([]content.Item, error) {
	if limit < 0 {
		return nil, ErrInvalidLimit
	}
	return recordFetch(m.Backend(), collection, func() ([]content.Item, error) {
		ctx, cancel := context.WithTimeout(ctx, m.timeout)
		defer cancel()

		findOpts := options.Find()
		if limit > 0 {
			findOpts.SetLimit(int64(limit))
		}

		cursor, err := m.db.Collection(collection).Find(ctx, bson.M{}, findOpts)
		if err != nil {
			return nil, fmt.Errorf("find in %s: %w", collection, err)
		}
		defer cursor.Close(ctx)

		var docs []bson.M
		if err := cursor.All(ctx, &docs); err != nil {
			return nil, fmt.Errorf("decode %s: %w", collection, err)
		}

		items := make([]content.Item, len(docs))
		for i, d := range docs {
			items[i] = content.FromDocument(content.Document(d))
		}
		return items, nil
	})
}

// Insert adds docs to collection.
func (m *Mongo) Insert(ctx context.Context, collection string, docs []content.Document) error {
	if len(docs) == 0 {
		return nil
	}
	batch := make([]interface{}, len(docs))
	for i, d := range docs {
		batch[i] = bson.M(d)
	}
	if _, err := m.db.Collection(collection).InsertMany(ctx, batch); err != nil {
		return fmt.Errorf("insert into %s: %w", collection, err)
	}
	return nil
}

func (m *Mongo) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	if err := m.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("ping mongodb: %w", err)
	}
	return nil
}

func (m *Mongo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	return m.client.Disconnect(ctx)
}
