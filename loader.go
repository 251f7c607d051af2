package cacheloader

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	c "github.com/unkn0wn-root/cacheloader/codec"
	pr "github.com/unkn0wn-root/cacheloader/provider"
	"github.com/unkn0wn-root/cacheloader/registry"
)

var notFoundRaw = []byte(NotFoundSentinel)

type entryState uint8

const (
	stateMiss entryState = iota
	stateHit
	stateNotFound
)

// entry is one row of the per-cycle table: a unique cache key, the first
// original key that produced it and every input position sharing it.
// During a fan-out stage each entry is written by exactly one goroutine.
type entry[K, V any] struct {
	storageKey string
	key        K
	positions  []int
	state      entryState
	res        Result[V]
}

type loader[K, V any] struct {
	name        string
	fetch       BatchFunc[K, V]
	provider    pr.Provider
	codec       c.Codec[V]
	decode      func(K, []byte) (V, error)
	ttl         time.Duration
	notFoundTTL time.Duration
	keyFn       KeyFunc[K]
	notFound    func(K) error
	log         Logger
	hooks       Hooks

	closeProvider bool
	closeOnce     sync.Once
	closeErr      error
}

func newLoader[K, V any](fetch BatchFunc[K, V], opts Options[K, V]) (*loader[K, V], error) {
	if fetch == nil {
		return nil, fmt.Errorf("cacheloader: batch func is required")
	}
	if opts.Provider == nil {
		return nil, fmt.Errorf("cacheloader: provider is required")
	}
	if opts.Codec == nil {
		return nil, fmt.Errorf("cacheloader: codec is required")
	}
	if opts.Name == "" {
		return nil, fmt.Errorf("cacheloader: name is required")
	}
	if opts.TTL < 0 || opts.NotFoundTTL < 0 {
		return nil, fmt.Errorf("cacheloader: negative TTL")
	}

	l := &loader[K, V]{
		name:          Namespace(opts.Name, opts.Suffix),
		fetch:         fetch,
		provider:      opts.Provider,
		codec:         opts.Codec,
		keyFn:         opts.KeyFunc,
		notFound:      opts.NotFound,
		closeProvider: opts.CloseProvider,
	}

	// defaults
	l.log = coalesce[Logger](opts.Logger, NopLogger{})
	l.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	l.ttl = coalesce[time.Duration](opts.TTL, defaultTTL)
	if opts.NotFoundTTL == 0 {
		l.notFoundTTL = min(defaultNotFoundTTL, l.ttl/2)
	} else {
		l.notFoundTTL = opts.NotFoundTTL
	}
	if l.notFoundTTL <= 0 || l.notFoundTTL >= l.ttl {
		return nil, fmt.Errorf("cacheloader: not-found TTL %v must be positive and shorter than TTL %v", l.notFoundTTL, l.ttl)
	}

	if opts.Deserialize != nil {
		l.decode = opts.Deserialize
	} else {
		l.decode = func(_ K, b []byte) (V, error) { return l.codec.Decode(b) }
	}

	l.register(coalesce[registry.Registry](opts.Registry, registry.Default))
	return l, nil
}

// register is diagnostic only; a registry failure never fails construction.
func (l *loader[K, V]) register(reg registry.Registry) {
	existed, err := reg.Register(context.Background(), l.name)
	switch {
	case err != nil:
		l.log.Warn("namespace registry unavailable", Fields{"namespace": l.name, "err": err})
	case existed:
		l.log.Warn("loader namespace already in use", Fields{"namespace": l.name})
		l.hooks.NamespaceReused(l.name)
	default:
		l.log.Info("new loader", Fields{"namespace": l.name})
	}
}

func (l *loader[K, V]) Name() string { return l.name }

func (l *loader[K, V]) Close(ctx context.Context) error {
	l.closeOnce.Do(func() {
		if l.closeProvider {
			l.closeErr = l.provider.Close(ctx)
		}
	})
	return l.closeErr
}

func (l *loader[K, V]) Load(ctx context.Context, key K) (V, error) {
	res, err := l.LoadMany(ctx, []K{key})
	if err != nil {
		var zero V
		return zero, err
	}
	return res[0].Value, res[0].Err
}

func (l *loader[K, V]) LoadMany(ctx context.Context, keys []K) ([]Result[V], error) {
	if len(keys) == 0 {
		return nil, ErrNoKeys
	}

	entries := l.plan(keys)
	l.readAll(ctx, entries)

	var misses []*entry[K, V]
	hits, notFound := 0, 0
	for i := range entries {
		switch entries[i].state {
		case stateHit:
			hits++
		case stateNotFound:
			notFound++
		default:
			misses = append(misses, &entries[i])
		}
	}
	if len(misses) > 0 {
		l.fetchMisses(ctx, misses)
	}
	l.hooks.CycleDone(l.name, len(keys), len(entries), hits, notFound, len(misses))

	out := make([]Result[V], len(keys))
	for i := range entries {
		for _, p := range entries[i].positions {
			out[p] = entries[i].res
		}
	}
	return out, nil
}

// plan builds the per-cycle table in first-occurrence order.
func (l *loader[K, V]) plan(keys []K) []entry[K, V] {
	idx := make(map[string]int, len(keys))
	entries := make([]entry[K, V], 0, len(keys))
	for pos, k := range keys {
		sk := l.storageKey(k)
		if i, ok := idx[sk]; ok {
			entries[i].positions = append(entries[i].positions, pos)
			continue
		}
		idx[sk] = len(entries)
		entries = append(entries, entry[K, V]{storageKey: sk, key: k, positions: []int{pos}})
	}
	return entries
}

// readAll issues one Get per unique key, all concurrently.
func (l *loader[K, V]) readAll(ctx context.Context, entries []entry[K, V]) {
	var wg sync.WaitGroup
	wg.Add(len(entries))
	for i := range entries {
		go func(e *entry[K, V]) {
			defer wg.Done()
			l.read(ctx, e)
		}(&entries[i])
	}
	wg.Wait()
}

func (l *loader[K, V]) read(ctx context.Context, e *entry[K, V]) {
	raw, ok, err := l.provider.Get(ctx, e.storageKey)
	if err != nil {
		l.log.Warn("cache read failed; treating as miss", Fields{"key": e.storageKey, "err": err})
		l.hooks.ReadError(e.storageKey, err)
		return
	}
	if !ok {
		l.log.Debug("cache miss", Fields{"key": e.storageKey})
		return
	}
	if bytes.Equal(raw, notFoundRaw) {
		e.state = stateNotFound
		e.res = Result[V]{Err: l.notFoundErr(e.key)}
		return
	}
	v, err := l.decode(e.key, raw)
	if err != nil {
		l.log.Warn("cached value undecodable; dropping", Fields{"key": e.storageKey, "err": err})
		l.hooks.SelfHeal(e.storageKey, "value_decode")
		_, _ = l.provider.Del(ctx, e.storageKey) // self-heal
		return
	}
	e.state = stateHit
	e.res = Result[V]{Value: v}
}

// fetchMisses calls the source once and writes fresh results back.
// Write-backs run concurrently and are awaited; their failures never reach
// the caller because every entry already holds its result.
func (l *loader[K, V]) fetchMisses(ctx context.Context, misses []*entry[K, V]) {
	keys := make([]K, len(misses))
	for i, e := range misses {
		keys[i] = e.key
	}
	if len(misses) <= 32 {
		sks := make([]string, len(misses))
		for i, e := range misses {
			sks[i] = e.storageKey
		}
		l.log.Debug("loading from source", Fields{"namespace": l.name, "keys": sks})
	} else {
		l.log.Debug("loading from source", Fields{"namespace": l.name, "count": len(misses)})
	}

	l.hooks.SourceFetched(l.name, len(keys))
	results := l.fetch(ctx, keys)
	if len(results) != len(keys) {
		err := &BatchSizeError{Want: len(keys), Got: len(results)}
		l.log.Error("batch func result size mismatch", Fields{"namespace": l.name, "want": err.Want, "got": err.Got})
		l.hooks.SourceMismatch(l.name, err.Want, err.Got)
		for _, e := range misses {
			e.res = Result[V]{Err: err}
		}
		return
	}

	var wg sync.WaitGroup
	for i, e := range misses {
		e.res = results[i]
		switch {
		case e.res.Err == nil:
			wg.Add(1)
			go func(e *entry[K, V]) {
				defer wg.Done()
				ok, err := l.store(ctx, e.storageKey, e.res.Value)
				l.writeDone(e.storageKey, false, ok, err)
			}(e)
		case IsNotFound(e.res.Err):
			wg.Add(1)
			go func(e *entry[K, V]) {
				defer wg.Done()
				ok, err := l.storeNotFound(ctx, e.storageKey)
				l.writeDone(e.storageKey, true, ok, err)
			}(e)
		default:
			// generic errors are never cached
		}
	}
	wg.Wait()
}

func (l *loader[K, V]) writeDone(storageKey string, notFound, ok bool, err error) {
	if err == nil && ok {
		return
	}
	if err != nil {
		l.log.Warn("cache write failed", Fields{"key": storageKey, "notFound": notFound, "err": err})
	} else {
		l.log.Warn("cache write rejected by provider", Fields{"key": storageKey, "notFound": notFound})
	}
	l.hooks.WriteFailed(storageKey, notFound, err)
}

func (l *loader[K, V]) Clear(ctx context.Context, keys ...K) (int, error) {
	if len(keys) == 0 {
		return 0, ErrNoKeys
	}

	seen := make(map[string]struct{}, len(keys))
	sks := make([]string, 0, len(keys))
	for _, k := range keys {
		sk := l.storageKey(k)
		if _, ok := seen[sk]; ok {
			continue
		}
		seen[sk] = struct{}{}
		sks = append(sks, sk)
	}

	var (
		removed atomic.Int64
		wg      sync.WaitGroup
	)
	errs := make([]error, len(sks))
	wg.Add(len(sks))
	for i, sk := range sks {
		go func(i int, sk string) {
			defer wg.Done()
			ok, err := l.provider.Del(ctx, sk)
			if err != nil {
				errs[i] = err
				return
			}
			if ok {
				removed.Add(1)
			}
		}(i, sk)
	}
	wg.Wait()

	n := int(removed.Load())
	l.log.Debug("cleared keys", Fields{"namespace": l.name, "requested": len(keys), "removed": n})

	var ce *ClearError
	for i, err := range errs {
		if err == nil {
			continue
		}
		if ce == nil {
			ce = &ClearError{}
		}
		ce.Keys = append(ce.Keys, sks[i])
		ce.Errs = append(ce.Errs, err)
	}
	if ce != nil {
		return n, ce
	}
	return n, nil
}

func (l *loader[K, V]) Prime(ctx context.Context, key K, value V, err error) (bool, error) {
	sk := l.storageKey(key)
	if err != nil {
		l.log.Debug("prime skipped (error value)", Fields{"key": sk})
		return false, nil
	}
	return l.store(ctx, sk, value)
}

func (l *loader[K, V]) store(ctx context.Context, storageKey string, v V) (bool, error) {
	payload, err := l.codec.Encode(v)
	if err != nil {
		return false, fmt.Errorf("cacheloader: encode %s: %w", storageKey, err)
	}
	l.log.Debug("saving to cache", Fields{"key": storageKey, "bytes": len(payload)})
	return l.provider.Set(ctx, storageKey, payload, l.ttl)
}

func (l *loader[K, V]) storeNotFound(ctx context.Context, storageKey string) (bool, error) {
	l.log.Debug("saving not-found to cache", Fields{"key": storageKey})
	return l.provider.Set(ctx, storageKey, notFoundRaw, l.notFoundTTL)
}

func (l *loader[K, V]) notFoundErr(k K) error {
	if l.notFound != nil {
		if err := l.notFound(k); err != nil {
			return err
		}
	}
	return NewNotFoundError(k, "not found (cache)")
}

func (l *loader[K, V]) storageKey(k K) string {
	return EncodeKey(l.name, k, l.keyFn)
}
