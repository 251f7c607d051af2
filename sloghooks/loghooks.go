// Package sloghooks logs loader events with log/slog.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"golang.org/x/time/rate"

	"github.com/unkn0wn-root/cacheloader"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	ReadErrorEvery uint64
	CycleEvery     uint64
	// ErrorsPerSecond caps read/write error logs during a cache outage; 0 = unlimited.
	ErrorsPerSecond float64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options
	lim  *rate.Limiter

	readErrCtr atomic.Uint64
	cycleCtr   atomic.Uint64
	suppressed atomic.Uint64
}

var _ cacheloader.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	h := &Hooks{l: l, opts: opts}
	if opts.ErrorsPerSecond > 0 {
		burst := int(opts.ErrorsPerSecond)
		if burst < 1 {
			burst = 1
		}
		h.lim = rate.NewLimiter(rate.Limit(opts.ErrorsPerSecond), burst)
	}
	return h
}

// Suppressed returns how many error logs the rate limit swallowed.
func (h *Hooks) Suppressed() uint64 { return h.suppressed.Load() }

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) allowError() bool {
	if h.lim == nil || h.lim.Allow() {
		return true
	}
	h.suppressed.Add(1)
	return false
}

func (h *Hooks) CycleDone(ns string, requested, unique, hits, notFound, misses int) {
	if h.l == nil || !sample(h.opts.CycleEvery, &h.cycleCtr) {
		return
	}
	h.l.Debug("cacheloader.cycle",
		"ns", ns,
		"requested", requested,
		"unique", unique,
		"hits", hits,
		"not_found", notFound,
		"misses", misses)
}

func (h *Hooks) SourceFetched(ns string, n int) {
	if h.l == nil {
		return
	}
	h.l.Debug("cacheloader.source_fetch", "ns", ns, "keys", n)
}

func (h *Hooks) SourceMismatch(ns string, want, got int) {
	if h.l == nil {
		return
	}
	h.l.Error("cacheloader.source_mismatch",
		"ns", ns,
		"want", want,
		"got", got)
}

func (h *Hooks) ReadError(storageKey string, err error) {
	if h.l == nil || !sample(h.opts.ReadErrorEvery, &h.readErrCtr) || !h.allowError() {
		return
	}
	h.l.Warn("cacheloader.read_error",
		"key", h.redact(storageKey),
		"err", err)
}

func (h *Hooks) WriteFailed(storageKey string, notFound bool, err error) {
	if h.l == nil || !h.allowError() {
		return
	}
	h.l.Warn("cacheloader.write_failed",
		"key", h.redact(storageKey),
		"not_found", notFound,
		"err", err)
}

func (h *Hooks) SelfHeal(storageKey, reason string) {
	if h.l == nil {
		return
	}
	h.l.Debug("cacheloader.self_heal",
		"key", h.redact(storageKey),
		"reason", reason)
}

func (h *Hooks) NamespaceReused(ns string) {
	if h.l == nil {
		return
	}
	h.l.Warn("cacheloader.namespace_reused", "ns", ns)
}
