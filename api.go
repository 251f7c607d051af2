package cacheloader

import (
	"context"
	"time"

	c "github.com/unkn0wn-root/cacheloader/codec"
	pr "github.com/unkn0wn-root/cacheloader/provider"
	"github.com/unkn0wn-root/cacheloader/registry"
)

// Result is the outcome for one key: a value, or an error.
// Not-found outcomes carry an error matching ErrNotFound.
type Result[V any] struct {
	Value V
	Err   error
}

// BatchFunc is the underlying source. It receives deduplicated keys and must
// return exactly one Result per key, in the same order.
type BatchFunc[K, V any] func(ctx context.Context, keys []K) []Result[V]

// Loader resolves keys through the cache and, for misses, the batch source.
// A Loader is safe for concurrent use; each LoadMany call is an independent
// resolution cycle.
type Loader[K, V any] interface {
	// Name is the cache namespace ("name" or "name-suffix").
	Name() string

	// LoadMany resolves keys in one cycle. The returned slice is aligned 1:1
	// with keys, duplicates included. The error is non-nil only for usage
	// errors (ErrNoKeys); per-key failures are carried in Result.Err.
	LoadMany(ctx context.Context, keys []K) ([]Result[V], error)

	// Load resolves a single key (a one-key cycle).
	Load(ctx context.Context, key K) (V, error)

	// Clear deletes the cache entries of keys and returns how many were removed.
	Clear(ctx context.Context, keys ...K) (int, error)

	// Prime stores value for key with the standard TTL. If err is non-nil
	// nothing is written and Prime reports false.
	Prime(ctx context.Context, key K, value V, err error) (bool, error)

	Close(context.Context) error
}

// Options configure a Loader.
// Name, Provider and Codec are required; others have sensible defaults.
type Options[K, V any] struct {
	// Required
	Name     string // namespace, e.g. "user", "profile"
	Provider pr.Provider
	Codec    c.Codec[V]

	Suffix string // appended as "name-suffix", e.g. a schema version

	// Deserialize replaces Codec.Decode when the key is needed to rebuild a value.
	Deserialize func(key K, raw []byte) (V, error)

	TTL         time.Duration // cached values; 0 => 10m
	NotFoundTTL time.Duration // not-found sentinels; 0 => 60s, must be shorter than TTL

	KeyFunc  KeyFunc[K]        // nil => fmt.Sprint(key)
	NotFound func(K) error     // nil (or a nil result) => *NotFoundError for sentinel hits
	Logger   Logger            // if nil, NopLogger is used
	Hooks    Hooks             // if nil, NopHooks is used
	Registry registry.Registry // nil => registry.Default

	CloseProvider bool // set true only if this loader exclusively owns the provider
}

func New[K, V any](fetch BatchFunc[K, V], opts Options[K, V]) (Loader[K, V], error) {
	return newLoader[K, V](fetch, opts)
}
