// Package bigcache adapts allegro/bigcache to provider.Provider.
//
// BigCache only knows a global LifeWindow, so each value is framed with its own
// deadline (internal/wire) and expired entries are dropped on read. LifeWindow
// then acts as an upper bound and must be at least the loader TTL.
package bigcache

import (
	"context"
	"errors"
	"time"

	bc "github.com/allegro/bigcache/v3"

	"github.com/unkn0wn-root/cacheloader/internal/wire"
	pr "github.com/unkn0wn-root/cacheloader/provider"
)

type Provider struct {
	c   *bc.BigCache
	now func() time.Time
}

var _ pr.Provider = (*Provider)(nil)

type Config struct {
	LifeWindow         time.Duration
	CleanWindow        time.Duration
	MaxEntriesInWindow int
	MaxEntrySize       int
	HardMaxCacheSizeMB int // ~ memory limit; 0 = unlimited
}

func New(ctx context.Context, cfg Config) (*Provider, error) {
	if cfg.LifeWindow <= 0 {
		return nil, errors.New("bigcache: LifeWindow must be positive")
	}
	conf := bc.DefaultConfig(cfg.LifeWindow)
	conf.Verbose = false
	if cfg.CleanWindow > 0 {
		conf.CleanWindow = cfg.CleanWindow
	}
	if cfg.MaxEntriesInWindow > 0 {
		conf.MaxEntriesInWindow = cfg.MaxEntriesInWindow
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	c, err := bc.New(ctx, conf)
	if err != nil {
		return nil, err
	}
	return &Provider{c: c, now: time.Now}, nil
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, err := p.c.Get(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	deadline, payload, err := wire.DecodeExpiring(b)
	if err != nil || wire.Expired(deadline, p.now()) {
		_ = p.c.Delete(key)
		return nil, false, nil
	}
	return payload, true, nil
}

func (p *Provider) Set(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	var deadline time.Time
	if ttl > 0 {
		deadline = p.now().Add(ttl)
	}
	if err := p.c.Set(key, wire.EncodeExpiring(deadline, value)); err != nil {
		return false, err
	}
	return true, nil
}

// Del counts expired-but-unswept entries as not removed.
func (p *Provider) Del(ctx context.Context, key string) (bool, error) {
	_, live, err := p.Get(ctx, key)
	if err != nil {
		return false, err
	}
	err = p.c.Delete(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return live, nil
}

func (p *Provider) Close(_ context.Context) error {
	return p.c.Close()
}
