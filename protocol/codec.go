package protocol

import "github.com/Zereker/gamewire/wire"

// Message is a decoded packet. Messages are immutable values; one type exists
// per wire message.
type Message interface {
	// MessageName returns a stable name used in logs and metrics.
	MessageName() string
}

// Encoder writes messages of type M.
type Encoder[M Message] interface {
	// Encode returns a buffer, obtained from ctx.Alloc(), whose written range
	// is the exact payload of msg. Messages the wire format cannot represent
	// fail with an *EncodeError.
	Encode(ctx *Context, msg M) (*wire.Buffer, error)
}

// Decoder reads messages of type M.
type Decoder[M Message] interface {
	// Decode consumes exactly the payload of one message, leaving the reader
	// index right after it.
	Decode(ctx *Context, buf *wire.Buffer) (M, error)
}

// Codec encodes and decodes messages of type M. Implementations hold no
// per-connection state and are shared by all connections.
type Codec[M Message] interface {
	Encoder[M]
	Decoder[M]
}
