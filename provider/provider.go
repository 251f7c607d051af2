// Package provider defines the storage abstraction used by cacheloader.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly the
// same []byte that was previously passed to Set for a key. The loader stores
// either a codec payload or the not-found sentinel under "<namespace>:<key>";
// a store that rewrote values would turn negative entries into decode failures.
//
// Every operation addresses a single key. Loaders never issue multi-key reads,
// so providers backed by a sharded store stay cluster-safe.
package provider

import (
	"context"
	"time"
)

// Provider is a minimal byte store with per-entry TTLs.
// Must be safe for concurrent use.
type Provider interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value with the given TTL; ttl <= 0 means no expiry.
	// Returns ok=false when the store refused the write.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) (ok bool, err error)

	// Del removes a key and reports whether an entry was actually removed.
	Del(ctx context.Context, key string) (removed bool, err error)

	// Close releases resources.
	Close(ctx context.Context) error
}
