package codec

import (
	"errors"

	"google.golang.org/protobuf/proto"
)

var errNoCtor = errors.New("codec: protobuf message constructor is nil")

// Protobuf stores generated messages in wire format, deterministically so a
// re-primed value writes the same bytes. An empty message encodes to zero
// bytes and is cached like any other value. Payloads cannot equal the
// not-found sentinel: its first byte '_' would be a tag with wire type 7,
// which proto never emits.
type Protobuf[T proto.Message] struct {
	new func() T // e.g. func() *userpb.User { return &userpb.User{} }
}

func NewProtobuf[T proto.Message](ctor func() T) Protobuf[T] {
	return Protobuf[T]{new: ctor}
}

func (c Protobuf[T]) Encode(v T) ([]byte, error) {
	return proto.MarshalOptions{Deterministic: true}.Marshal(v)
}

func (c Protobuf[T]) Decode(b []byte) (T, error) {
	if c.new == nil {
		var zero T
		return zero, errNoCtor
	}
	m := c.new()
	if err := proto.Unmarshal(b, m); err != nil {
		return m, err
	}
	return m, nil
}
