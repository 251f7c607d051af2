package codec

import (
	"strings"
	"testing"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type item struct {
	ID    int       `json:"id" msgpack:"id" cbor:"id"`
	Name  string    `json:"name" msgpack:"name" cbor:"name"`
	Price float64   `json:"price" msgpack:"price" cbor:"price"`
	At    time.Time `json:"at" msgpack:"at" cbor:"at"`
}

func TestStructCodecsRoundTrip(t *testing.T) {
	in := item{ID: 7, Name: "widget", Price: 9.5, At: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}

	codecs := map[string]Codec[item]{
		"json":      JSON[item]{},
		"msgpack":   Msgpack[item]{},
		"cbor":      MustCBOR[item](false),
		"cbor_det":  MustCBOR[item](true),
		"limit_big": LimitCodec[item]{Inner: JSON[item]{}, MaxEncode: 1 << 10, MaxDecode: 1 << 10},
	}
	for name, cd := range codecs {
		t.Run(name, func(t *testing.T) {
			b, err := cd.Encode(in)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			out, err := cd.Decode(b)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if out.ID != in.ID || out.Name != in.Name || out.Price != in.Price || !out.At.Equal(in.At) {
				t.Fatalf("round trip mismatch: got %+v want %+v", out, in)
			}
		})
	}
}

func TestCBORDeterministicStable(t *testing.T) {
	cd := MustCBOR[map[string]int](true)
	m := map[string]int{"b": 2, "a": 1, "c": 3}
	first, err := cd.Encode(m)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 20; i++ {
		b, err := cd.Encode(m)
		if err != nil {
			t.Fatal(err)
		}
		if string(b) != string(first) {
			t.Fatalf("deterministic encoding differs on iteration %d", i)
		}
	}
}

func TestLimitCodec(t *testing.T) {
	cd := LimitCodec[string]{Inner: String{}, MaxEncode: 4, MaxDecode: 3}

	if _, err := cd.Encode("12345"); err == nil || !strings.Contains(err.Error(), "too large") {
		t.Fatalf("expected encode size error, got %v", err)
	}
	if _, err := cd.Decode([]byte("1234")); err == nil {
		t.Fatalf("expected decode size error")
	}
	if v, err := cd.Decode([]byte("abc")); err != nil || v != "abc" {
		t.Fatalf("Decode under limit: v=%q err=%v", v, err)
	}

	off := LimitCodec[string]{Inner: String{}}
	if b, err := off.Encode(strings.Repeat("x", 1<<12)); err != nil || len(b) != 1<<12 {
		t.Fatalf("disabled limit should pass through: len=%d err=%v", len(b), err)
	}
}

func TestRawCodecs(t *testing.T) {
	if b, _ := (Bytes{}).Encode([]byte{1, 2}); len(b) != 2 {
		t.Fatalf("Bytes encode changed payload: %v", b)
	}
	if s, _ := (String{}).Decode([]byte("hi")); s != "hi" {
		t.Fatalf("String decode: %q", s)
	}
}

func TestProtobufCodec(t *testing.T) {
	cd := NewProtobuf(func() *wrapperspb.StringValue { return &wrapperspb.StringValue{} })

	b, err := cd.Encode(wrapperspb.String("hello"))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out, err := cd.Decode(b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !proto.Equal(out, wrapperspb.String("hello")) {
		t.Fatalf("got %v", out)
	}

	if _, err := cd.Decode([]byte{0xff, 0xff, 0xff}); err == nil {
		t.Fatalf("expected error on garbage input")
	}
}

func TestJSONDecodeError(t *testing.T) {
	if _, err := (JSON[item]{}).Decode([]byte("{not json")); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestStructuredCodecsRejectNotFoundSentinel(t *testing.T) {
	sentinel := []byte("___NOTFOUND___")
	codecs := map[string]Codec[item]{
		"json":         JSON[item]{},
		"msgpack":      Msgpack[item]{},
		"msgpack_json": Msgpack[item]{UseJSONTag: true},
		"cbor":         MustCBOR[item](true),
	}
	for name, cd := range codecs {
		t.Run(name, func(t *testing.T) {
			if _, err := cd.Decode(sentinel); err == nil {
				t.Fatalf("sentinel bytes must not decode as a value")
			}
		})
	}
	pb := NewProtobuf(func() *wrapperspb.StringValue { return &wrapperspb.StringValue{} })
	if _, err := pb.Decode(sentinel); err == nil {
		t.Fatalf("protobuf: sentinel bytes must not decode as a value")
	}
}

type jsonOnly struct {
	UserID int    `json:"user_id"`
	Email  string `json:"email,omitempty"`
}

func TestMsgpackJSONTags(t *testing.T) {
	in := jsonOnly{UserID: 9}
	b, err := (Msgpack[jsonOnly]{UseJSONTag: true}).Encode(in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(string(b), "user_id") || strings.Contains(string(b), "email") {
		t.Fatalf("payload should use json names and omit empty fields: %q", b)
	}
	out, err := (Msgpack[jsonOnly]{UseJSONTag: true}).Decode(b)
	if err != nil || out != in {
		t.Fatalf("round trip: %+v err=%v", out, err)
	}

	plain, _ := (Msgpack[jsonOnly]{}).Encode(in)
	if !strings.Contains(string(plain), "UserID") {
		t.Fatalf("zero value should use Go field names: %q", plain)
	}
}

func TestCBORRejectsDuplicateKeys(t *testing.T) {
	// {"id": 1, "id": 2}
	dup := []byte{0xa2, 0x62, 'i', 'd', 0x01, 0x62, 'i', 'd', 0x02}
	if _, err := MustCBOR[item](false).Decode(dup); err == nil {
		t.Fatalf("expected duplicate key error")
	}
}

func TestProtobufWithoutConstructor(t *testing.T) {
	var cd Protobuf[*wrapperspb.StringValue]
	if _, err := cd.Decode(nil); err == nil {
		t.Fatalf("expected error for missing constructor")
	}
}
