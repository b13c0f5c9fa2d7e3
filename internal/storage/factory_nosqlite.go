//go:build !sqlite

package storage

import "fmt"

func DefaultStoreKind() string {
	return KindMemory
}

func newSQLiteStore(string) (Store, error) {
	return nil, fmt.Errorf("%w: %s is not compiled in, rebuild with -tags sqlite", ErrUnsupportedStore, KindSQLite)
}
