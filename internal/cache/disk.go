// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

package cache

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
)

// ErrCorruptVector is returned when a stored value is not a whole number
// of float32s.
var ErrCorruptVector = errors.New("stored vector is corrupt")

// VectorStore persists float32 vectors in BadgerDB keyed by string.
type VectorStore struct {
	db  *badger.DB
	ttl time.Duration
}

// OpenVectorStore opens (or creates) a vector store at path. An empty path
// keeps the data in memory, which is only useful in tests.
func OpenVectorStore(path string, ttl time.Duration) (*VectorStore, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(path)
		opts.Compression = options.Snappy
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}
	return &VectorStore{db: db, ttl: ttl}, nil
}

// GetMany looks up keys in one read transaction. Missing or corrupt entries
// are returned as nil.
func (s *VectorStore) GetMany(keys []string) ([][]float32, error) {
	out := make([][]float32, len(keys))
	err := s.db.View(func(txn *badger.Txn) error {
		for i, key := range keys {
			item, err := txn.Get([]byte(key))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			if err := item.Value(func(val []byte) error {
				v, err := decodeVector(val)
				if err != nil {
					return nil //nolint:nilerr // corrupt entries are treated as misses
				}
				out[i] = v
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read vectors: %w", err)
	}
	return out, nil
}

// PutMany stores vectors under keys using a write batch.
func (s *VectorStore) PutMany(keys []string, vectors [][]float32) error {
	if len(keys) != len(vectors) {
		return fmt.Errorf("put vectors: %d keys for %d vectors", len(keys), len(vectors))
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for i, key := range keys {
		e := badger.NewEntry([]byte(key), encodeVector(vectors[i]))
		if s.ttl > 0 {
			e = e.WithTTL(s.ttl)
		}
		if err := wb.SetEntry(e); err != nil {
			return fmt.Errorf("put vector: %w", err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("flush vectors: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *VectorStore) Close() error {
	return s.db.Close()
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(x))
	}
	return buf
}

func decodeVector(buf []byte) ([]float32, error) {
	if len(buf)%4 != 0 {
		return nil, ErrCorruptVector
	}
	v := make([]float32, len(buf)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
	}
	return v, nil
}
