package cacheloader

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is matched (errors.Is) by every not-found outcome, whether it
	// came from the cache sentinel or from the source.
	ErrNotFound = errors.New("cacheloader: not found")

	// ErrNoKeys is returned by LoadMany and Clear when called without keys.
	ErrNoKeys = errors.New("cacheloader: empty key list")
)

// NotFoundError is the generic not-found outcome for a single key.
type NotFoundError struct {
	Key any
	Msg string
}

func NewNotFoundError(key any, msg string) *NotFoundError {
	return &NotFoundError{Key: key, Msg: msg}
}

func (e *NotFoundError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("not found: %v", e.Key)
	}
	return e.Msg
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// IsNotFound reports whether err is a not-found outcome.
// Source implementations can return any error that matches ErrNotFound
// (wrapping it, or implementing Is) to have the key negatively cached.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// EntityNotFoundError labels a not-found outcome with the source entity name,
// e.g. "User not found for identifier 42".
type EntityNotFoundError struct {
	Entity     string
	Identifier any
}

func NewEntityNotFoundError(entity string, identifier any) *EntityNotFoundError {
	return &EntityNotFoundError{Entity: entity, Identifier: identifier}
}

func (e *EntityNotFoundError) Error() string {
	return fmt.Sprintf("%s not found for identifier %s", e.Entity, jsonIdentifier(e.Identifier))
}

func (e *EntityNotFoundError) Unwrap() error {
	return &NotFoundError{Key: e.Identifier, Msg: e.Error()}
}

func (e *EntityNotFoundError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name       string `json:"name"`
		Message    string `json:"message"`
		Entity     string `json:"entity"`
		Identifier any    `json:"identifier"`
	}{
		Name:       "EntityNotFoundError",
		Message:    e.Error(),
		Entity:     e.Entity,
		Identifier: e.Identifier,
	})
}

func jsonIdentifier(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%q", fmt.Sprint(v))
	}
	return string(b)
}

// BatchSizeError is handed to every missed key when the source returns a
// result slice whose length differs from the requested keys.
type BatchSizeError struct {
	Want int
	Got  int
}

func (e *BatchSizeError) Error() string {
	return fmt.Sprintf("cacheloader: batch func returned %d results for %d keys", e.Got, e.Want)
}

// ClearError collects per-key delete failures from Clear.
type ClearError struct {
	Keys []string
	Errs []error
}

func (e *ClearError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "cacheloader: clear failed for %d key(s)", len(e.Keys))
	for i, k := range e.Keys {
		fmt.Fprintf(&sb, "; %s: %v", k, e.Errs[i])
	}
	return sb.String()
}

func (e *ClearError) Unwrap() []error { return e.Errs }
