// internal/repository/kv_store.go
package repository

import (
	"context"
)

// KVStore is the durable medium behind the persistence store.
// Implementations must be safe for concurrent use.
type KVStore interface {
	// Get returns the value stored under key. found is false when the key is absent.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Close releases the underlying medium.
	Close() error
}

// BatchSetter is implemented by stores that can write several keys at once.
// SetMany either stores every entry or none of them.
type BatchSetter interface {
	SetMany(ctx context.Context, entries map[string]string) error
}
