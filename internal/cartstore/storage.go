package cartstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Storage.Read when no durable copy exists yet.
var ErrNotFound = errors.New("cart storage: entry not found")

// Storage is the durable copy of one cart: a single versioned entry holding
// the JSON-encoded line array, plus a change feed carrying payloads written
// by anyone other than this instance (another tab, another server).
type Storage interface {
	// Read returns the stored payload, or ErrNotFound when absent.
	Read(ctx context.Context) ([]byte, error)

	// Write replaces the stored payload and notifies other watchers of the
	// same entry. A storage never notifies itself.
	Write(ctx context.Context, data []byte) error

	// Watch returns a channel of externally written payloads. The channel
	// closes when ctx is cancelled or the storage is closed.
	Watch(ctx context.Context) (<-chan []byte, error)

	// Close releases the storage. Watch channels close; further calls fail
	// or no-op.
	Close() error
}
