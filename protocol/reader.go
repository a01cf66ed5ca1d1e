package protocol

import "github.com/Zereker/gamewire/wire"

// ValueReader decodes one V from a buffer. It can be used on its own or as
// part of a larger message decoder.
type ValueReader[V any] interface {
	// Read consumes a V starting at the buffer's reader index.
	Read(ctx *Context, buf *wire.Buffer) (V, error)
}

// ReaderFunc adapts a function to ValueReader.
type ReaderFunc[V any] func(ctx *Context, buf *wire.Buffer) (V, error)

// Read calls f.
func (f ReaderFunc[V]) Read(ctx *Context, buf *wire.Buffer) (V, error) {
	return f(ctx, buf)
}

// ReadAt reads a V at index without disturbing sequential decoding: the
// reader index is restored on every return path, including failed reads.
// Only the reader index is restored; nothing else about the buffer is rolled
// back.
func ReadAt[V any](r ValueReader[V], ctx *Context, buf *wire.Buffer, index int) (v V, err error) {
	original := buf.ReaderIndex()
	if err = buf.SetReaderIndex(index); err != nil {
		return v, err
	}
	defer func() {
		if rerr := buf.SetReaderIndex(original); rerr != nil && err == nil {
			err = rerr
		}
	}()
	return r.Read(ctx, buf)
}

// Readers for the primitive wire values.
var (
	VarIntReader ValueReader[int32] = ReaderFunc[int32](func(_ *Context, buf *wire.Buffer) (int32, error) {
		return buf.ReadVarInt()
	})
	StringReader ValueReader[string] = ReaderFunc[string](func(_ *Context, buf *wire.Buffer) (string, error) {
		return buf.ReadString()
	})
	PositionReader ValueReader[wire.Position] = ReaderFunc[wire.Position](func(_ *Context, buf *wire.Buffer) (wire.Position, error) {
		return buf.ReadPosition()
	})
)
