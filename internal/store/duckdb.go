// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/synapse/internal/config"
	"github.com/tomtom215/synapse/internal/content"
	"github.com/tomtom215/synapse/internal/logging"
)

var duckdbSchema = []string{
	`CREATE SEQUENCE IF NOT EXISTS content_documents_seq`,
	`CREATE TABLE IF NOT EXISTS content_documents (
		collection VARCHAR NOT NULL,
		id         VARCHAR NOT NULL,
		seq        BIGINT  NOT NULL DEFAULT nextval('content_documents_seq'),
		doc        VARCHAR NOT NULL,
		PRIMARY KEY (collection, id)
	)`,
}

// DuckDB stores content documents as JSON text in a single
// content_documents table partitioned by collection name.
type DuckDB struct {
	conn *sql.DB
}

// NewDuckDB opens (or creates) the database at cfg.Path. An empty path or
// ":memory:" opens an in-memory database.
func NewDuckDB(cfg *config.DuckDBConfig) (*DuckDB, error) {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
			}
		}
	}

	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	maxMemory := cfg.MaxMemory
	if maxMemory == "" {
		maxMemory = "1GB"
	}

	connStr := fmt.Sprintf("%s?threads=%d&max_memory=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
		path, threads, maxMemory)
	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	for _, stmt := range duckdbSchema {
		if _, err := conn.Exec(stmt); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	log := logging.WithComponent("store")
	log.Info().Str("path", path).Msg("Opened DuckDB content store")
	return &DuckDB{conn: conn}, nil
}

func (d *DuckDB) Backend() string { return config.StoreDuckDB }

// Fetch returns documents of collection in insertion order.
func (d *DuckDB) Fetch(ctx context.Context, collection string, limit int) ([]content.Item, error) {
	if limit < 0 {
		return nil, ErrInvalidLimit
	}
	return recordFetch(d.Backend(), collection, func() ([]content.Item, error) {
		query := `SELECT id, doc FROM content_documents WHERE collection = ? ORDER BY seq`
		args := []interface{}{collection}
		if limit > 0 {
			query += ` LIMIT ?`
			args = append(args, limit)
		}

		rows, err := d.conn.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", collection, err)
		}
		defer rows.Close()

		var items []content.Item
		for rows.Next() {
			var id, raw string
			if err := rows.Scan(&id, &raw); err != nil {
				return nil, fmt.Errorf("scan %s: %w", collection, err)
			}
			var doc content.Document
			if err := json.Unmarshal([]byte(raw), &doc); err != nil {
				return nil, fmt.Errorf("decode document %s/%s: %w", collection, id, err)
			}
			if _, ok := doc["_id"]; !ok {
				doc["_id"] = id
			}
			items = append(items, content.FromDocument(doc))
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("iterate %s: %w", collection, err)
		}
		return items, nil
	})
}

// Insert upserts docs into collection. Documents without an _id get a
// generated UUID. Replacing a document keeps its original position.
func (d *DuckDB) Insert(ctx context.Context, collection string, docs []content.Document) error {
	if len(docs) == 0 {
		return nil
	}

	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO content_documents (collection, id, doc) VALUES (?, ?, ?)
		ON CONFLICT (collection, id) DO UPDATE SET doc = EXCLUDED.doc`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, doc := range docs {
		id := content.FromDocument(doc).ID
		if id == "" {
			id = uuid.NewString()
		}
		raw, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("encode document %s: %w", id, err)
		}
		if _, err := stmt.ExecContext(ctx, collection, id, string(raw)); err != nil {
			return fmt.Errorf("insert document %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Count returns the number of documents in collection.
func (d *DuckDB) Count(ctx context.Context, collection string) (int, error) {
	var n int
	err := d.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM content_documents WHERE collection = ?`, collection).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	return n, nil
}

func (d *DuckDB) Ping(ctx context.Context) error {
	return d.conn.PingContext(ctx)
}

func (d *DuckDB) Close() error {
	return d.conn.Close()
}
