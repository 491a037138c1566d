// Package storage persists serialized carts in a key-value store.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no value is stored under the key.
var ErrNotFound = errors.New("key not found")

// DefaultPrefix namespaces cart keys.
const DefaultPrefix = "cart"

// Store is a minimal key-value store for serialized carts.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Key returns the storage key of a session's cart.
func Key(prefix, sessionID string) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return prefix + ":" + sessionID
}
