/*
Package badger provides a Badger-backed implementation of generic.Store.

PURPOSE:
  Embedded LSM key/value backend for installs that prefer a directory of
  value-log files over a SQLite database (-store=badger). Values are the
  same JSON documents the other backends keep.

ATOMIC BATCHES:
  PutBatch() sets every key inside one read-write transaction.

USAGE:
  store, err := badger.New(badger.Options{Path: "./data/badger"})
  store, err := badger.New(badger.Options{InMemory: true}) // tests

SEE ALSO:
  - generic/store.go: Interface definition
  - store/sqlite/sqlite.go: SQLite implementation
*/
package badger

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	bdg "github.com/dgraph-io/badger/v4"
	"github.com/warp/timesheet-engine/generic"
)

// Options configures the database.
type Options struct {
	// Path is the database directory. Empty uses in-memory mode.
	Path string
	// InMemory forces in-memory mode regardless of Path.
	InMemory bool
}

// Store implements generic.Store on a Badger database.
type Store struct {
	db *bdg.DB
}

func New(opts Options) (*Store, error) {
	var bopts bdg.Options
	if opts.InMemory || opts.Path == "" {
		bopts = bdg.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(opts.Path, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", opts.Path, err)
		}
		bopts = bdg.DefaultOptions(opts.Path)
	}
	bopts = bopts.WithLoggingLevel(bdg.ERROR)

	db, err := bdg.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}
	if bopts.InMemory {
		log.Printf("[Store] badger opened in memory")
	} else {
		log.Printf("[Store] badger opened at %s", opts.Path)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(txn *bdg.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, bdg.ErrKeyNotFound) {
		return nil, generic.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return out, nil
}

func (s *Store) Put(_ context.Context, key string, value []byte) error {
	err := s.db.Update(func(txn *bdg.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// PutBatch writes all values in one transaction.
func (s *Store) PutBatch(_ context.Context, values map[string][]byte) error {
	err := s.db.Update(func(txn *bdg.Txn) error {
		for k, v := range values {
			if err := txn.Set([]byte(k), v); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write batch: %w", err)
	}
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	err := s.db.Update(func(txn *bdg.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Keys lists keys in Badger's iteration order, which is ascending bytewise.
func (s *Store) Keys(_ context.Context) ([]string, error) {
	keys := []string{}
	err := s.db.View(func(txn *bdg.Txn) error {
		opts := bdg.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	return keys, nil
}

func (s *Store) Reset(_ context.Context) error {
	if err := s.db.DropAll(); err != nil {
		return fmt.Errorf("failed to reset badger: %w", err)
	}
	log.Printf("[Store] badger reset")
	return nil
}

var _ generic.Store = (*Store)(nil)
