/*
store.go - Persistence interface for JSON-encoded records

PURPOSE:
  Defines the boundary between the engine and whatever keeps its state.
  The engine only ever needs a small key/value store whose values are JSON
  documents: the entry list, the pay period list, the current period id and
  a handful of settings. Typed access lives one level up (tracker.Repository).

KEY INTERFACE:
  Store: Get / Put / PutBatch / Delete / Keys / Reset

ATOMIC BATCHES:
  PutBatch() writes several keys all-or-nothing. Deleting the current pay
  period rewrites both "payPeriods" and "currentPeriodId"; either both land
  or neither does.

IMPLEMENTATIONS:
  - generic/store/memory.go: In-memory for testing
  - store/sqlite/sqlite.go: SQLite records table
  - store/badger/badger.go: Badger LSM key/value store

EXAMPLE:
  raw, err := store.Get(ctx, "timeEntries")
  if errors.Is(err, generic.ErrKeyNotFound) {
      // nothing stored yet, use defaults
  }
*/
package generic

import "context"

// Store persists raw JSON values by key. Implementations must be safe for
// concurrent use; Get returns ErrKeyNotFound for absent keys.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error

	// PutBatch writes all values atomically.
	PutBatch(ctx context.Context, values map[string][]byte) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys lists stored keys in ascending order.
	Keys(ctx context.Context) ([]string, error)

	// Reset drops every key.
	Reset(ctx context.Context) error

	Close() error
}
