package cacheloader

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The loader calls them on hot paths.
type Hooks interface {
	// A resolution cycle finished.
	// hits/notFound/misses are counted over unique cache keys.
	CycleDone(namespace string, requested, unique, hits, notFound, misses int)

	// The batch func was called with n keys.
	SourceFetched(namespace string, n int)

	// The batch func returned a result slice of the wrong length.
	SourceMismatch(namespace string, want, got int)

	// Provider Get failed; the key was treated as a miss.
	ReadError(storageKey string, err error)

	// A write-back or prime failed or was refused (err == nil on refusal).
	// notFound is true for sentinel writes.
	WriteFailed(storageKey string, notFound bool, err error)

	// An entry was deleted because it could not be decoded.
	SelfHeal(storageKey, reason string)

	// A loader was created under a namespace that was already registered.
	NamespaceReused(namespace string)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) CycleDone(string, int, int, int, int, int) {}
func (NopHooks) SourceFetched(string, int)                 {}
func (NopHooks) SourceMismatch(string, int, int)           {}
func (NopHooks) ReadError(string, error)                   {}
func (NopHooks) WriteFailed(string, bool, error)           {}
func (NopHooks) SelfHeal(string, string)                   {}
func (NopHooks) NamespaceReused(string)                    {}
