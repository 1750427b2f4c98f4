// Package store defines the byte-store abstraction backing QueryCache.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly
// the same []byte previously passed to Set for a key (no prepended/appended
// metadata, no re-encoding, no mutation). If a store performs internal
// transforms (e.g. compression), they MUST be fully reversed so that the
// bytes returned by Get are identical to the bytes provided to Set.
//
// The default store (memory.Store) holds entries for the life of the
// process: no TTL, no eviction, no size bound. Bounded stores (ristretto,
// bigcache, redis) may evict or refuse entries; the cache treats both as
// ordinary misses.
package store

import "context"

// Store is a minimal byte store. Must be safe for concurrent use.
type Store interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key. Returns ok=false when the store rejected
	// the write (admission policy, pressure); that is not an error.
	Set(ctx context.Context, key string, value []byte) (ok bool, err error)

	// Del removes a key (best-effort).
	Del(ctx context.Context, key string) error

	// Close releases resources.
	Close(ctx context.Context) error
}
