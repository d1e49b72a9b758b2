// Package storage holds small per-visitor preference values.
//
// Values are addressed by (namespace, key). The namespace is the visitor
// cookie id, the key a preference name such as "theme". Two
// implementations exist: SQLite for the server and an in-memory map for
// tests and for running without a writable disk.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no value is stored.
var ErrNotFound = errors.New("key not found")

// Store is a namespaced string key-value store.
type Store interface {
	Get(ctx context.Context, namespace, key string) (string, error)
	Set(ctx context.Context, namespace, key, value string) error
	Delete(ctx context.Context, namespace, key string) error
	Close() error
}
