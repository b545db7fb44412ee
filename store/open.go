/*
Package store selects a generic.Store backend by name.

BACKENDS:
  sqlite  (default) single database file, ":memory:" for throwaway runs
  badger  directory of LSM files
  memory  process-local map, lost on exit

SEE ALSO:
  - store/sqlite/sqlite.go
  - store/badger/badger.go
  - generic/store/memory.go
*/
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/warp/timesheet-engine/generic"
	memstore "github.com/warp/timesheet-engine/generic/store"
	"github.com/warp/timesheet-engine/store/badger"
	"github.com/warp/timesheet-engine/store/sqlite"
)

// AppName names the XDG data directory.
const AppName = "timesheet"

// Backend names accepted by Open.
const (
	SQLite = "sqlite"
	Badger = "badger"
	Memory = "memory"
)

// DefaultPath returns the default location of a backend's data under the
// XDG data home.
func DefaultPath(kind string) string {
	if strings.EqualFold(kind, Badger) {
		return filepath.Join(xdg.DataHome, AppName, "badger")
	}
	return filepath.Join(xdg.DataHome, AppName, "timesheet.db")
}

// Open opens the named backend at path. An empty path uses DefaultPath.
func Open(kind, path string) (generic.Store, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind == "" {
		kind = SQLite
	}
	if path == "" && kind != Memory {
		path = DefaultPath(kind)
	}

	switch kind {
	case SQLite:
		if path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
		s, err := sqlite.New(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case Badger:
		s, err := badger.New(badger.Options{Path: path})
		if err != nil {
			return nil, err
		}
		return s, nil
	case Memory:
		return memstore.NewMemory(), nil
	}
	return nil, fmt.Errorf("%w: unknown store %q (use sqlite, badger or memory)", generic.ErrInvalidValue, kind)
}
