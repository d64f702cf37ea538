// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

package store

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/culturemap/internal/logging"
	"github.com/tomtom215/culturemap/internal/metrics"
)

// Key prefixes for BadgerDB storage
const (
	venueKeyPrefix      = "venue:"
	venueExtKeyPrefix   = "venue_eid:"
	eventKeyPrefix      = "event:"
	eventExtKeyPrefix   = "event_eid:"
	eventVenueKeyPrefix = "event_venue:"
)

// Backend names, also used as the metrics label.
const (
	BackendBadger = "badger"
	BackendMemory = "memory"
)

// batchSize bounds the records written per transaction to stay under
// Badger's transaction size limit.
const batchSize = 256

var (
	// ErrStoreClosed is returned by every operation after Close.
	ErrStoreClosed = errors.New("store is closed")
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("record not found")
)

// Options configures a BadgerStore.
type Options struct {
	// Backend is BackendBadger (on disk at Path) or BackendMemory.
	Backend string
	Path    string
}

// BadgerStore persists venues and events as JSON documents in BadgerDB,
// with secondary keys for the external IDs and the event-to-venue relation.
// It is safe for concurrent use; every batch runs in Badger transactions.
type BadgerStore struct {
	db      *badger.DB
	backend string
	closed  atomic.Bool
}

// Open opens a store for the given backend.
func Open(opts Options) (*BadgerStore, error) {
	var bopts badger.Options
	switch opts.Backend {
	case BackendBadger, "":
		if opts.Path == "" {
			return nil, fmt.Errorf("badger store requires a path")
		}
		bopts = badger.DefaultOptions(opts.Path)
		opts.Backend = BackendBadger
	case BackendMemory:
		bopts = badger.DefaultOptions("").WithInMemory(true)
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
	bopts.Logger = nil // Suppress BadgerDB logs

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}

	logging.Info().Str("backend", opts.Backend).Str("path", opts.Path).Msg("Store opened")
	return &BadgerStore{db: db, backend: opts.Backend}, nil
}

// OpenInMemory opens a store that keeps everything in memory.
func OpenInMemory() (*BadgerStore, error) {
	return Open(Options{Backend: BackendMemory})
}

// Backend returns the backend name.
func (s *BadgerStore) Backend() string {
	return s.backend
}

// Close closes the underlying database. Further calls return ErrStoreClosed.
func (s *BadgerStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.db.Close()
}

// Ping reports whether the store can serve reads.
func (s *BadgerStore) Ping(ctx context.Context) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	return s.db.View(func(_ *badger.Txn) error { return nil })
}

// check is run at the start of every operation.
func (s *BadgerStore) check(ctx context.Context) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}
	return ctx.Err()
}

// observe records the duration and outcome of one gateway operation.
func (s *BadgerStore) observe(op string, start time.Time, err error) {
	metrics.RecordStoreOperation(s.backend, op, time.Since(start), err)
}

// chunks splits n items into [start,end) ranges of at most batchSize.
func chunks(n int) [][2]int {
	var out [][2]int
	for start := 0; start < n; start += batchSize {
		end := start + batchSize
		if end > n {
			end = n
		}
		out = append(out, [2]int{start, end})
	}
	return out
}

// scanKeys calls fn for every key under prefix, without values.
func scanKeys(txn *badger.Txn, prefix []byte, fn func(key []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		if err := fn(it.Item().KeyCopy(nil)); err != nil {
			return err
		}
	}
	return nil
}

// getIndex reads a string value stored under key, returning "" when absent.
func getIndex(txn *badger.Txn, key []byte) (string, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return "", err
	}
	return string(val), nil
}

// deleteKey deletes key, ignoring a missing key.
func deleteKey(txn *badger.Txn, key []byte) error {
	if err := txn.Delete(key); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return err
	}
	return nil
}

// gcDiscardRatio is the share of a value log file that must be garbage
// before Badger rewrites it.
const gcDiscardRatio = 0.5

// Maintain runs value log garbage collection until no file qualifies.
// It is a no-op for the in-memory backend.
func (s *BadgerStore) Maintain(ctx context.Context) (err error) {
	defer func(start time.Time) { s.observe("value_log_gc", start, err) }(time.Now())
	if err = s.check(ctx); err != nil {
		return err
	}

	for {
		if err = ctx.Err(); err != nil {
			return err
		}
		err = s.db.RunValueLogGC(gcDiscardRatio)
		switch {
		case errors.Is(err, badger.ErrNoRewrite), errors.Is(err, badger.ErrGCInMemoryMode):
			return nil
		case err != nil:
			return fmt.Errorf("run value log gc: %w", err)
		}
	}
}
