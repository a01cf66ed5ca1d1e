// Package wire implements the byte-level primitives of the game protocol:
// a growable Buffer with independent read and write cursors, varints,
// length-prefixed strings and packed block positions.
//
// All fixed-width values are big-endian. A Buffer is not safe for concurrent
// use; it is owned by exactly one encode or decode call at a time.
package wire

import (
	"math"

	"github.com/pkg/errors"
)

// MaxStringBytes is the largest string payload accepted by ReadString:
// 32767 UTF-16 code units, each taking at most 4 bytes in UTF-8.
const MaxStringBytes = 32767 * 4

// defaultCapacity is the initial capacity of a Buffer created by NewBuffer.
const defaultCapacity = 256

// Buffer is a growable byte container with a reader index and a writer index.
//
// The readable region is [ReaderIndex, WriterIndex). Writes append at the
// writer index and reads consume from the reader index, so
// 0 <= ReaderIndex <= WriterIndex <= Capacity always holds.
type Buffer struct {
	buf         []byte // len(buf) is the writer index
	readerIndex int
}

// NewBuffer creates an empty buffer with a default initial capacity.
func NewBuffer() *Buffer {
	return NewBufferSize(defaultCapacity)
}

// NewBufferSize creates an empty buffer with the given initial capacity.
func NewBufferSize(capacity int) *Buffer {
	if capacity < 0 {
		capacity = 0
	}
	return &Buffer{buf: make([]byte, 0, capacity)}
}

// Wrap creates a buffer whose readable region is exactly data.
// The buffer takes ownership of data.
func Wrap(data []byte) *Buffer {
	return &Buffer{buf: data}
}

// ReaderIndex returns the read cursor.
func (b *Buffer) ReaderIndex() int {
	return b.readerIndex
}

// SetReaderIndex moves the read cursor. The index must lie in [0, WriterIndex].
func (b *Buffer) SetReaderIndex(i int) error {
	if i < 0 || i > len(b.buf) {
		return errors.Wrapf(ErrIndexOutOfRange, "reader index %d not in [0, %d]", i, len(b.buf))
	}
	b.readerIndex = i
	return nil
}

// WriterIndex returns the write cursor.
func (b *Buffer) WriterIndex() int {
	return len(b.buf)
}

// SetWriterIndex moves the write cursor. The index must lie in
// [ReaderIndex, Capacity]. Bytes exposed by moving it forward keep whatever
// the backing array held.
func (b *Buffer) SetWriterIndex(i int) error {
	if i < b.readerIndex || i > cap(b.buf) {
		return errors.Wrapf(ErrIndexOutOfRange, "writer index %d not in [%d, %d]", i, b.readerIndex, cap(b.buf))
	}
	b.buf = b.buf[:i]
	return nil
}

// Capacity returns the size of the backing storage.
func (b *Buffer) Capacity() int {
	return cap(b.buf)
}

// ReadableBytes returns WriterIndex - ReaderIndex.
func (b *Buffer) ReadableBytes() int {
	return len(b.buf) - b.readerIndex
}

// Bytes returns the written range [0, WriterIndex). The slice aliases the
// buffer and is valid until the next write or Reset.
func (b *Buffer) Bytes() []byte {
	return b.buf
}

// Readable returns the unread range [ReaderIndex, WriterIndex) without
// advancing the reader index.
func (b *Buffer) Readable() []byte {
	return b.buf[b.readerIndex:]
}

// Reset empties the buffer, keeping its backing storage.
func (b *Buffer) Reset() {
	b.buf = b.buf[:0]
	b.readerIndex = 0
}

// need checks that n bytes are readable.
func (b *Buffer) need(n int) error {
	if n > b.ReadableBytes() {
		return underflow(n, b.ReadableBytes())
	}
	return nil
}

// take consumes n bytes and returns them. Callers check need first.
func (b *Buffer) take(n int) []byte {
	p := b.buf[b.readerIndex : b.readerIndex+n]
	b.readerIndex += n
	return p
}

// Write appends p. It implements io.Writer and never fails.
func (b *Buffer) Write(p []byte) (int, error) {
	b.buf = append(b.buf, p...)
	return len(p), nil
}

// WriteBytes appends raw bytes.
func (b *Buffer) WriteBytes(p []byte) {
	b.buf = append(b.buf, p...)
}

// WriteByte appends a single byte. It implements io.ByteWriter and never fails.
func (b *Buffer) WriteByte(c byte) error {
	b.buf = append(b.buf, c)
	return nil
}

// WriteBool appends 0x01 for true and 0x00 for false.
func (b *Buffer) WriteBool(v bool) {
	if v {
		b.buf = append(b.buf, 0x01)
	} else {
		b.buf = append(b.buf, 0x00)
	}
}

// WriteShort appends a big-endian int16.
func (b *Buffer) WriteShort(v int16) {
	b.buf = append(b.buf, byte(v>>8), byte(v))
}

// WriteInt appends a big-endian int32.
func (b *Buffer) WriteInt(v int32) {
	b.buf = append(b.buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// WriteLong appends a big-endian int64.
func (b *Buffer) WriteLong(v int64) {
	b.buf = append(b.buf,
		byte(v>>56), byte(v>>48), byte(v>>40), byte(v>>32),
		byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// WriteFloat appends an IEEE 754 float32.
func (b *Buffer) WriteFloat(v float32) {
	b.WriteInt(int32(math.Float32bits(v)))
}

// WriteDouble appends an IEEE 754 float64.
func (b *Buffer) WriteDouble(v float64) {
	b.WriteLong(int64(math.Float64bits(v)))
}

// WriteVarInt appends v as a varint. Negative values are written as their
// unsigned 32-bit pattern and always take 5 bytes.
func (b *Buffer) WriteVarInt(v int32) {
	b.buf = AppendVarInt(b.buf, v)
}

// WriteString appends the varint byte length of s followed by its bytes.
func (b *Buffer) WriteString(s string) {
	b.WriteVarInt(int32(len(s)))
	b.buf = append(b.buf, s...)
}

// WritePosition appends p packed into a single int64.
func (b *Buffer) WritePosition(p Position) {
	b.WriteLong(p.Pack())
}

// ReadByte consumes one byte. It implements io.ByteReader.
func (b *Buffer) ReadByte() (byte, error) {
	if err := b.need(1); err != nil {
		return 0, err
	}
	c := b.buf[b.readerIndex]
	b.readerIndex++
	return c, nil
}

// ReadBytes consumes n bytes. The returned slice aliases the buffer.
func (b *Buffer) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, errors.Wrapf(ErrMalformedValue, "negative byte count %d", n)
	}
	if err := b.need(n); err != nil {
		return nil, err
	}
	return b.take(n), nil
}

// ReadBool consumes one byte; any non-zero value is true.
func (b *Buffer) ReadBool() (bool, error) {
	c, err := b.ReadByte()
	if err != nil {
		return false, err
	}
	return c != 0, nil
}

// ReadShort consumes a big-endian int16.
func (b *Buffer) ReadShort() (int16, error) {
	if err := b.need(2); err != nil {
		return 0, err
	}
	p := b.take(2)
	return int16(uint16(p[0])<<8 | uint16(p[1])), nil
}

// ReadInt consumes a big-endian int32.
func (b *Buffer) ReadInt() (int32, error) {
	if err := b.need(4); err != nil {
		return 0, err
	}
	p := b.take(4)
	return int32(uint32(p[0])<<24 | uint32(p[1])<<16 | uint32(p[2])<<8 | uint32(p[3])), nil
}

// ReadLong consumes a big-endian int64.
func (b *Buffer) ReadLong() (int64, error) {
	if err := b.need(8); err != nil {
		return 0, err
	}
	p := b.take(8)
	return int64(uint64(p[0])<<56 | uint64(p[1])<<48 | uint64(p[2])<<40 | uint64(p[3])<<32 |
		uint64(p[4])<<24 | uint64(p[5])<<16 | uint64(p[6])<<8 | uint64(p[7])), nil
}

// ReadFloat consumes an IEEE 754 float32.
func (b *Buffer) ReadFloat() (float32, error) {
	v, err := b.ReadInt()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(uint32(v)), nil
}

// ReadDouble consumes an IEEE 754 float64.
func (b *Buffer) ReadDouble() (float64, error) {
	v, err := b.ReadLong()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(uint64(v)), nil
}

// ReadVarInt consumes a varint of at most MaxVarIntLen bytes. On failure the
// reader index is left at the start of the varint.
func (b *Buffer) ReadVarInt() (int32, error) {
	v, n, err := decodeVarInt(b.buf[b.readerIndex:])
	if err != nil {
		return 0, err
	}
	b.readerIndex += n
	return v, nil
}

// ReadString consumes a varint length followed by that many bytes.
//
// If the length prefix is valid but the body is truncated, the prefix stays
// consumed and ErrBufferUnderflow is returned.
func (b *Buffer) ReadString() (string, error) {
	n, err := b.ReadVarInt()
	if err != nil {
		return "", errors.Wrap(err, "read string length")
	}
	if n < 0 || n > MaxStringBytes {
		return "", errors.Wrapf(ErrMalformedValue, "string length %d not in [0, %d]", n, MaxStringBytes)
	}
	if err := b.need(int(n)); err != nil {
		return "", errors.Wrap(err, "read string body")
	}
	return string(b.take(int(n))), nil
}

// ReadPosition consumes a packed block position.
func (b *Buffer) ReadPosition() (Position, error) {
	v, err := b.ReadLong()
	if err != nil {
		return Position{}, errors.Wrap(err, "read position")
	}
	return UnpackPosition(v), nil
}
