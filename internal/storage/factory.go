package storage

import (
	"errors"
	"fmt"
	"strings"
)

// Backend names accepted by Open.
const (
	KindMemory = "memory"
	KindSQLite = "sqlite"
)

var ErrUnsupportedStore = errors.New("unsupported store backend")

// Open returns the run store named by kind, matched case-insensitively. An
// empty kind selects DefaultStoreKind. sqlitePath is only read by the sqlite
// backend.
func Open(kind, sqlitePath string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "":
		return Open(DefaultStoreKind(), sqlitePath)
	case KindMemory:
		return NewMemoryStore(), nil
	case KindSQLite:
		return newSQLiteStore(sqlitePath)
	default:
		return nil, fmt.Errorf("%w: %q (want %s or %s)", ErrUnsupportedStore, kind, KindMemory, KindSQLite)
	}
}

// Close releases stores that hold resources; the memory store has none.
func Close(store Store) error {
	if closer, ok := store.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
