// Package wire frames payloads for stores that cannot expire entries on their
// own. The envelope carries an absolute deadline next to the payload.
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"time"
)

const (
	version byte = 1
	hdrLen       = 4 + 1 + 8 + 4
)

var (
	ErrCorrupt = errors.New("cacheloader: corrupt entry")
	magic4     = [...]byte{'C', 'L', 'D', 'R'}
)

// Expiring: magic(4) | ver(1) | deadline(unix nanos, u64 be; 0 = none) | vlen(u32 be) | payload(vlen)
func EncodeExpiring(deadline time.Time, payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(hdrLen + len(payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)

	var u8 [8]byte
	var u4 [4]byte

	var dl uint64
	if !deadline.IsZero() {
		dl = uint64(deadline.UnixNano())
	}
	binary.BigEndian.PutUint64(u8[:], dl)
	buf.Write(u8[:])

	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])

	buf.Write(payload)
	return buf.Bytes()
}

// DecodeExpiring returns the deadline (zero when none) and the payload.
// The payload aliases b. Trailing bytes are rejected.
func DecodeExpiring(b []byte) (deadline time.Time, payload []byte, err error) {
	if len(b) < hdrLen || !bytes.Equal(b[:4], magic4[:]) || b[4] != version {
		return time.Time{}, nil, ErrCorrupt
	}
	off := 5

	dl := binary.BigEndian.Uint64(b[off : off+8])
	off += 8

	vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if vlen < 0 || vlen != len(b)-off {
		return time.Time{}, nil, ErrCorrupt
	}

	if dl != 0 {
		deadline = time.Unix(0, int64(dl))
	}
	return deadline, b[off:], nil
}

// Expired reports whether deadline is set and not after now.
func Expired(deadline, now time.Time) bool {
	return !deadline.IsZero() && !now.Before(deadline)
}
