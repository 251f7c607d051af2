package cacheloader

import "fmt"

// KeyFunc normalizes a key before it becomes part of a cache key. It must be a
// pure function of the key: keys that normalize identically share one cache
// entry and one source fetch.
type KeyFunc[K any] func(K) string

// Namespace returns the cache namespace for a loader name and optional suffix.
func Namespace(name, suffix string) string {
	if suffix == "" {
		return name
	}
	return name + "-" + suffix
}

// EncodeKey maps key to "<namespace>:<normalized>". Without fn the key's
// natural string form (fmt.Sprint, so fmt.Stringer is honoured) is used.
func EncodeKey[K any](namespace string, key K, fn KeyFunc[K]) string {
	if fn != nil {
		return namespace + ":" + fn(key)
	}
	return namespace + ":" + fmt.Sprint(key)
}
