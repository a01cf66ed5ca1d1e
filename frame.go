package gamewire

import (
	"bufio"
	"io"

	"github.com/pkg/errors"

	"github.com/Zereker/gamewire/wire"
)

// A frame on the stream is
//
//	varint  length of the rest of the frame
//	varint  packet id
//	bytes   payload
//
// Frames are never compressed or encrypted at this layer.

// limitedReader bounds the bytes one frame may pull from the stream and
// returns ErrMessageTooLarge once the budget is spent.
type limitedReader struct {
	r         *bufio.Reader
	remaining int64
}

func newLimitedReader(r *bufio.Reader, limit int64) *limitedReader {
	return &limitedReader{r: r, remaining: limit}
}

func (l *limitedReader) Read(p []byte) (n int, err error) {
	if l.remaining <= 0 {
		return 0, ErrMessageTooLarge
	}
	if int64(len(p)) > l.remaining {
		p = p[:l.remaining]
	}
	n, err = l.r.Read(p)
	l.remaining -= int64(n)
	return
}

func (l *limitedReader) ReadByte() (byte, error) {
	if l.remaining <= 0 {
		return 0, ErrMessageTooLarge
	}
	c, err := l.r.ReadByte()
	if err == nil {
		l.remaining--
	}
	return c, err
}

// reset starts the budget of a new frame. The bufio.Reader keeps its own
// buffered bytes across frames.
func (l *limitedReader) reset(limit int64) {
	l.remaining = limit
}

// readFrame reads one frame into a buffer from alloc. The returned buffer
// holds the packet id followed by the payload, reader index at the id.
//
// Any error leaves the stream at an unknown position, so the caller must stop
// reading.
func readFrame(r *limitedReader, alloc wire.Allocator, maxSize int) (*wire.Buffer, error) {
	r.reset(int64(maxSize + wire.MaxVarIntLen))

	length, err := wire.ReadVarIntFrom(r)
	if err != nil {
		return nil, err
	}
	if length <= 0 {
		return nil, errors.Wrapf(wire.ErrMalformedValue, "frame length %d", length)
	}
	if int(length) > maxSize {
		return nil, errors.Wrapf(ErrMessageTooLarge, "frame of %d bytes, limit %d", length, maxSize)
	}

	buf := alloc.Buffer()
	if _, err := io.CopyN(buf, r, int64(length)); err != nil {
		release(alloc, buf)
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return buf, nil
}

// appendFrame appends the frame carrying payload as packet id to dst.
func appendFrame(dst []byte, id int32, payload []byte) []byte {
	dst = wire.AppendVarInt(dst, int32(wire.VarIntLen(id)+len(payload)))
	dst = wire.AppendVarInt(dst, id)
	return append(dst, payload...)
}

// release hands buf back to alloc when it recycles buffers.
func release(alloc wire.Allocator, buf *wire.Buffer) {
	if r, ok := alloc.(interface{ Release(*wire.Buffer) }); ok {
		r.Release(buf)
	}
}
