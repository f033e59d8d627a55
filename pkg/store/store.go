// Package store defines the persistent key-value contract the mobile core
// relies on for durable state, together with the built-in adapters: an
// in-memory map, a Redis-backed store, and an on-device SQLite store.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("store: key not found")

// Store is the abstract persistent key-value map. All values are strings;
// callers encode structured data (JSON) themselves. Implementations must be
// safe for concurrent use.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
}
