// Package registry remembers which loader namespaces have been created so that
// accidental reuse can be reported. It is diagnostic state only: a registry
// never decides whether a loader may be built.
package registry

import "context"

// Registry records namespace names.
type Registry interface {
	// Register adds name and reports whether it was already present.
	Register(ctx context.Context, name string) (existed bool, err error)
	// Close releases resources (no-op ok).
	Close(context.Context) error
}

// Default is the process-wide registry used by loaders that do not set one.
var Default = NewLocal()
