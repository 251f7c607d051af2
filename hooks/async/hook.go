// Package asynchook moves Hooks calls off the loader's hot path.
//
// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    ReadErrorEvery:  10, // ~every 10th read error
//	    ErrorsPerSecond: 5,
//	})
//
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	ld, _ := cacheloader.New(fetch, cacheloader.Options[int, User]{
//	    Name:     "user",
//	    Provider: provider,
//	    Codec:    codec.JSON[User]{},
//	    Hooks:    hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/cacheloader"
)

// Hooks forwards events to inner through a bounded queue.
// Events are dropped (and counted) when the queue is full or closed.
type Hooks struct {
	inner cacheloader.Hooks
	q     chan func()
	wg    sync.WaitGroup

	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
}

var _ cacheloader.Hooks = (*Hooks)(nil)

func New(inner cacheloader.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers.
func (h *Hooks) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	close(h.q)
	h.mu.Unlock()
	h.wg.Wait()
}

// Dropped returns the number of events lost to a full or closed queue.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		h.dropped.Add(1)
		return
	}
	select {
	case h.q <- f:
	default:
		h.dropped.Add(1)
	}
}

func (h *Hooks) CycleDone(ns string, requested, unique, hits, notFound, misses int) {
	h.try(func() { h.inner.CycleDone(ns, requested, unique, hits, notFound, misses) })
}
func (h *Hooks) SourceFetched(ns string, n int) { h.try(func() { h.inner.SourceFetched(ns, n) }) }
func (h *Hooks) SourceMismatch(ns string, want, got int) {
	h.try(func() { h.inner.SourceMismatch(ns, want, got) })
}
func (h *Hooks) ReadError(k string, err error) { h.try(func() { h.inner.ReadError(k, err) }) }
func (h *Hooks) WriteFailed(k string, nf bool, err error) {
	h.try(func() { h.inner.WriteFailed(k, nf, err) })
}
func (h *Hooks) SelfHeal(k, r string)      { h.try(func() { h.inner.SelfHeal(k, r) }) }
func (h *Hooks) NamespaceReused(ns string) { h.try(func() { h.inner.NamespaceReused(ns) }) }
