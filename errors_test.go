package cacheloader

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNotFoundErrorMatchesSentinel(t *testing.T) {
	err := NewNotFoundError(7, "")
	if !errors.Is(err, ErrNotFound) || !IsNotFound(err) {
		t.Fatalf("NotFoundError must match ErrNotFound")
	}
	if err.Error() != "not found: 7" {
		t.Fatalf("default message = %q", err.Error())
	}
	if got := NewNotFoundError(7, "gone").Error(); got != "gone" {
		t.Fatalf("custom message = %q", got)
	}

	wrapped := fmt.Errorf("repo: %w", err)
	if !IsNotFound(wrapped) {
		t.Fatalf("wrapped NotFoundError must match")
	}
	if !IsNotFound(fmt.Errorf("lookup: %w", ErrNotFound)) {
		t.Fatalf("wrapped ErrNotFound must match")
	}
	if IsNotFound(errors.New("not found")) {
		t.Fatalf("plain errors must not match by text")
	}
	if IsNotFound(nil) {
		t.Fatalf("nil is not a not-found")
	}
}

func TestEntityNotFoundError(t *testing.T) {
	err := NewEntityNotFoundError("User", 42)
	if got := err.Error(); got != "User not found for identifier 42" {
		t.Fatalf("Error() = %q", got)
	}
	if got := NewEntityNotFoundError("User", "ab").Error(); got != `User not found for identifier "ab"` {
		t.Fatalf("string identifier Error() = %q", got)
	}
	if !IsNotFound(err) {
		t.Fatalf("EntityNotFoundError must match ErrNotFound")
	}
	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.Key != 42 {
		t.Fatalf("EntityNotFoundError should unwrap to NotFoundError, got %v", nf)
	}

	b, jerr := json.Marshal(err)
	if jerr != nil {
		t.Fatalf("MarshalJSON: %v", jerr)
	}
	var m map[string]any
	if jerr := json.Unmarshal(b, &m); jerr != nil {
		t.Fatalf("unmarshal: %v", jerr)
	}
	if m["name"] != "EntityNotFoundError" || m["entity"] != "User" || m["identifier"] != float64(42) {
		t.Fatalf("json = %s", b)
	}
	if m["message"] != err.Error() {
		t.Fatalf("json message = %v", m["message"])
	}
}

func TestEntityNotFoundUnmarshalableIdentifier(t *testing.T) {
	err := NewEntityNotFoundError("Chan", make(chan int))
	if !strings.HasPrefix(err.Error(), `Chan not found for identifier "0x`) {
		t.Fatalf("Error() = %q", err.Error())
	}
}

func TestBatchSizeError(t *testing.T) {
	err := &BatchSizeError{Want: 3, Got: 2}
	if err.Error() != "cacheloader: batch func returned 2 results for 3 keys" {
		t.Fatalf("Error() = %q", err.Error())
	}
	if IsNotFound(err) {
		t.Fatalf("BatchSizeError is not a not-found")
	}
}

func TestClearError(t *testing.T) {
	e1 := errors.New("timeout")
	e2 := errors.New("moved")
	err := &ClearError{Keys: []string{"user:a", "user:b"}, Errs: []error{e1, e2}}
	if !errors.Is(err, e1) || !errors.Is(err, e2) {
		t.Fatalf("ClearError should unwrap to every cause")
	}
	want := "cacheloader: clear failed for 2 key(s); user:a: timeout; user:b: moved"
	if err.Error() != want {
		t.Fatalf("Error() = %q", err.Error())
	}
}
