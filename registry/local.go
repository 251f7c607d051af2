package registry

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Local keeps names in-process.
type Local struct {
	mu    sync.RWMutex
	names map[string]time.Time // first registration
}

var _ Registry = (*Local)(nil)

func NewLocal() *Local {
	return &Local{names: make(map[string]time.Time)}
}

func (r *Local) Register(_ context.Context, name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.names[name]; ok {
		return true, nil
	}
	r.names[name] = time.Now()
	return false, nil
}

// Names returns the registered names, sorted.
func (r *Local) Names() []string {
	r.mu.RLock()
	out := make([]string, 0, len(r.names))
	for n := range r.names {
		out = append(out, n)
	}
	r.mu.RUnlock()
	sort.Strings(out)
	return out
}

// RegisteredAt returns when name was first registered.
func (r *Local) RegisteredAt(name string) (time.Time, bool) {
	r.mu.RLock()
	t, ok := r.names[name]
	r.mu.RUnlock()
	return t, ok
}

func (r *Local) Close(context.Context) error { return nil }
