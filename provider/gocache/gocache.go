// Package gocache adapts patrickmn/go-cache to provider.Provider for
// single-process deployments and tests.
package gocache

import (
	"bytes"
	"context"
	"time"

	gc "github.com/patrickmn/go-cache"

	pr "github.com/unkn0wn-root/cacheloader/provider"
)

type Provider struct {
	c *gc.Cache
}

var _ pr.Provider = (*Provider)(nil)

type Config struct {
	// CleanupInterval is how often expired items are purged; 0 disables the janitor.
	CleanupInterval time.Duration
}

func New(cfg Config) *Provider {
	// DefaultExpiration is never used: Set always passes an explicit TTL.
	return &Provider{c: gc.New(gc.NoExpiration, cfg.CleanupInterval)}
}

// NewWithCache wraps an existing go-cache instance.
func NewWithCache(c *gc.Cache) *Provider { return &Provider{c: c} }

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := p.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, _ := v.([]byte)
	if b == nil {
		// foreign entry shape
		p.c.Delete(key)
		return nil, false, nil
	}
	return bytes.Clone(b), true, nil
}

func (p *Provider) Set(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = gc.NoExpiration
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	p.c.Set(key, cp, ttl)
	return true, nil
}

// Del reports removed=true only for live entries; go-cache's Delete has no result,
// so the entry is looked up first.
func (p *Provider) Del(_ context.Context, key string) (bool, error) {
	_, ok := p.c.Get(key)
	p.c.Delete(key)
	return ok, nil
}

// ItemCount includes expired items not yet purged.
func (p *Provider) ItemCount() int { return p.c.ItemCount() }

func (p *Provider) Close(context.Context) error {
	p.c.Flush()
	return nil
}
