// Package codec holds the serializers a loader uses to turn values into cache
// payloads and back. A codec must round-trip: Decode(Encode(v)) == v.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
