// Package cacheloader implements a batched, deduplicating cache-through loader.
// A Loader sits between callers asking for values by key and a slow source that
// is only reachable through batch fetches. Every resolution cycle reads the
// external cache once per unique key, calls the source at most once for the
// keys that missed, writes the fresh results back and hands one outcome to
// every requested key, duplicates included.
//
// Components:
//   - Provider: byte store with per-entry TTL (e.g. Redis, go-cache, Ristretto).
//   - Codec[V]: (de)serializes V <-> []byte.
//   - BatchFunc[K, V]: the underlying source, called with deduplicated keys.
//   - Registry: remembers namespace names in use and warns on reuse.
//
// Keys:
//
//	<name>[-<suffix>]:<normalized key>
//
// Values are stored as the codec payload, or as the not-found sentinel
// (NotFoundSentinel) with the shorter NotFoundTTL:
//
//	ld, _ := cacheloader.New(fetchUsers, cacheloader.Options[int, User]{
//	    Name:     "user",
//	    Provider: redisProvider,
//	    Codec:    codec.JSON[User]{},
//	    TTL:      10 * time.Minute,
//	})
//	res, err := ld.LoadMany(ctx, []int{1, 2, 1})
package cacheloader
