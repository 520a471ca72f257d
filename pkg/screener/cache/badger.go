package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const keyPrefix = "cache:"

// BadgerStore persists entries in BadgerDB so a restarted backend starts warm.
// Entries also carry a Badger TTL so stale payloads are collected.
type BadgerStore struct {
	db  *badger.DB
	ttl time.Duration
}

// OpenBadger opens (or creates) a Badger database at dir. An empty dir opens
// an in-memory database.
func OpenBadger(dir string, ttl time.Duration) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger cache: %w", err)
	}
	return NewBadgerStore(db, ttl)
}

// NewBadgerStore wraps an open database. ttl <= 0 stores entries without expiry.
func NewBadgerStore(db *badger.DB, ttl time.Duration) (*BadgerStore, error) {
	if db == nil {
		return nil, errors.New("badger db is required")
	}
	return &BadgerStore{db: db, ttl: ttl}, nil
}

func (s *BadgerStore) Get(_ context.Context, key string) (Entry, error) {
	var e Entry
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &e)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Entry{}, ErrMiss
	}
	if err != nil {
		return Entry{}, fmt.Errorf("badger get %s: %w", key, err)
	}
	return e, nil
}

func (s *BadgerStore) Set(_ context.Context, key string, e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		be := badger.NewEntry([]byte(keyPrefix+key), data)
		if s.ttl > 0 {
			be = be.WithTTL(s.ttl)
		}
		return txn.SetEntry(be)
	})
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
