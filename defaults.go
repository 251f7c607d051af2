package cacheloader

import "time"

const (
	defaultTTL         = 10 * time.Minute
	defaultNotFoundTTL = 60 * time.Second
)

// NotFoundSentinel is the raw value stored for keys the source confirmed absent.
const NotFoundSentinel = "___NOTFOUND___"

// coalesce returns def when v is the zero value of T - otherwise v.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}
