package wire

import (
	"io"

	"github.com/pkg/errors"
)

// MaxVarIntLen is the maximum number of bytes a 32-bit varint occupies.
const MaxVarIntLen = 5

// AppendVarInt appends v to dst as a varint: 7 data bits per byte, least
// significant group first, high bit set on every byte except the last.
func AppendVarInt(dst []byte, v int32) []byte {
	u := uint32(v)
	for u >= 0x80 {
		dst = append(dst, byte(u)|0x80)
		u >>= 7
	}
	return append(dst, byte(u))
}

// VarIntLen returns the number of bytes AppendVarInt emits for v.
func VarIntLen(v int32) int {
	u := uint32(v)
	n := 1
	for u >= 0x80 {
		n++
		u >>= 7
	}
	return n
}

// decodeVarInt decodes a varint from the start of p and returns the value
// and the number of bytes it used.
func decodeVarInt(p []byte) (int32, int, error) {
	var v uint32
	for i := 0; i < MaxVarIntLen; i++ {
		if i >= len(p) {
			return 0, 0, underflow(i+1, len(p))
		}
		c := p[i]
		v |= uint32(c&0x7F) << (7 * i)
		if c&0x80 == 0 {
			return int32(v), i + 1, nil
		}
	}
	return 0, 0, errors.Wrapf(ErrMalformedValue, "varint longer than %d bytes", MaxVarIntLen)
}

// ReadVarIntFrom reads a varint from a byte stream, typically the frame
// length prefix in front of a packet. io.EOF is returned untouched when the
// stream ends before the first byte.
func ReadVarIntFrom(r io.ByteReader) (int32, error) {
	var v uint32
	for i := 0; i < MaxVarIntLen; i++ {
		c, err := r.ReadByte()
		if err != nil {
			if i > 0 && err == io.EOF {
				return 0, io.ErrUnexpectedEOF
			}
			return 0, err
		}
		v |= uint32(c&0x7F) << (7 * i)
		if c&0x80 == 0 {
			return int32(v), nil
		}
	}
	return 0, errors.Wrapf(ErrMalformedValue, "varint longer than %d bytes", MaxVarIntLen)
}
