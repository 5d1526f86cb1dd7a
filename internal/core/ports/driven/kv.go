package driven

import "context"

// KVStore is a byte-addressable key-value cache. Values are replaced
// wholesale; there are no partial updates and no TTLs - staleness is
// caller-driven.
//
// Implementations may include:
//   - Upstash Redis over its REST API
//   - a local SQLite database (dev / offline mode)
//   - an in-memory map (tests)
type KVStore interface {
	// Get returns the value for key. The second return is false when the
	// key is absent; an error indicates the cache itself was unreachable.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key, overwriting any prior value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
