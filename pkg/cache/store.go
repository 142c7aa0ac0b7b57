package cache

import (
	"context"
	"errors"
)

var (
	// ErrCacheMiss indicates the key is absent or the entry has expired.
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates a stored entry could not be decoded.
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// Store is the cache backend contract. Implementations must treat an entry
// whose TTL has elapsed as absent and may evict it lazily during Get.
// Set derives the storage TTL from the entry's ExpiresAt; entries that are
// already expired are not stored.
type Store interface {
	// Get returns the live entry for key, or ErrCacheMiss.
	Get(ctx context.Context, key string) (*Entry, error)

	// Set stores entry under key, overwriting any previous entry.
	Set(ctx context.Context, key string, entry *Entry) error

	// Delete removes the entry for key. Absent keys are not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes every entry.
	Clear(ctx context.Context) error
}
