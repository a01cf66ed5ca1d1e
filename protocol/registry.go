package protocol

import (
	"fmt"
	"reflect"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"

	"github.com/Zereker/gamewire/wire"
)

type packetKey struct {
	state State
	dir   Direction
	id    int32
}

type typeKey struct {
	state State
	typ   reflect.Type
}

type decoderEntry struct {
	name   string
	decode func(*Context, *wire.Buffer) (Message, error)
}

type encoderEntry struct {
	id     int32
	encode func(*Context, Message) (*wire.Buffer, error)
}

// Registry maps packet ids to decoders and message types to encoders,
// per protocol state.
//
// A Registry is filled once at startup and then only read, so it is shared
// by all connections without locking. Registering after connections are
// served is not safe.
type Registry struct {
	decoders map[packetKey]decoderEntry
	encoders map[typeKey]encoderEntry
	names    map[packetKey]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		decoders: make(map[packetKey]decoderEntry),
		encoders: make(map[typeKey]encoderEntry),
		names:    make(map[packetKey]string),
	}
}

func messageName[M Message]() string {
	typ := reflect.TypeOf((*M)(nil)).Elem()
	if typ.Kind() == reflect.Pointer || typ.Kind() == reflect.Interface {
		return typ.String()
	}
	var zero M
	return zero.MessageName()
}

// RegisterDecoder registers d for packet id in the given state and direction.
// It panics if a decoder is already registered for that packet: an incoming
// packet id must resolve to exactly one message type.
func RegisterDecoder[M Message](r *Registry, state State, dir Direction, id int32, d Decoder[M]) {
	key := packetKey{state: state, dir: dir, id: id}
	if _, ok := r.decoders[key]; ok {
		panic(fmt.Sprintf("protocol: duplicate decoder for %s %s packet 0x%02X", state, dir, id))
	}
	name := messageName[M]()
	r.names[key] = name
	r.decoders[key] = decoderEntry{
		name: name,
		decode: func(ctx *Context, buf *wire.Buffer) (Message, error) {
			return d.Decode(ctx, buf)
		},
	}
}

// RegisterEncoder registers e for messages of type M in the given state.
// Several message types may be written as the same packet id. It panics if
// an encoder for M is already registered in that state.
func RegisterEncoder[M Message](r *Registry, state State, dir Direction, id int32, e Encoder[M]) {
	key := typeKey{state: state, typ: reflect.TypeOf((*M)(nil)).Elem()}
	if _, ok := r.encoders[key]; ok {
		panic(fmt.Sprintf("protocol: duplicate encoder for %s in state %s", key.typ, state))
	}
	pk := packetKey{state: state, dir: dir, id: id}
	if _, ok := r.names[pk]; !ok {
		r.names[pk] = messageName[M]()
	}
	r.encoders[key] = encoderEntry{
		id: id,
		encode: func(ctx *Context, msg Message) (*wire.Buffer, error) {
			return e.Encode(ctx, msg.(M))
		},
	}
}

// RegisterCodec registers c as both encoder and decoder.
func RegisterCodec[M Message](r *Registry, state State, dir Direction, id int32, c Codec[M]) {
	RegisterDecoder[M](r, state, dir, id, c)
	RegisterEncoder[M](r, state, dir, id, c)
}

// Decode decodes the payload of packet id. buf must be positioned at the
// first payload byte and must hold exactly one payload. Every failure is a
// *DecodeError.
func (r *Registry) Decode(ctx *Context, state State, dir Direction, id int32, buf *wire.Buffer) (Message, error) {
	entry, ok := r.decoders[packetKey{state: state, dir: dir, id: id}]
	if !ok {
		return nil, &DecodeError{State: state, Direction: dir, PacketID: id, Err: errors.WithStack(ErrUnknownPacket)}
	}

	msg, err := entry.decode(ctx, buf)
	if err != nil {
		return nil, &DecodeError{State: state, Direction: dir, PacketID: id, Err: errors.Wrap(err, entry.name)}
	}

	if n := buf.ReadableBytes(); n > 0 {
		return nil, &DecodeError{State: state, Direction: dir, PacketID: id,
			Err: errors.Wrapf(ErrTrailingBytes, "%s left %d bytes", entry.name, n)}
	}
	return msg, nil
}

// Encode encodes msg and returns its packet id and payload. Every failure is
// an *EncodeError.
func (r *Registry) Encode(ctx *Context, state State, msg Message) (int32, *wire.Buffer, error) {
	if msg == nil {
		return 0, nil, NewEncodeError(nil, errors.New("nil message"))
	}

	entry, ok := r.encoders[typeKey{state: state, typ: reflect.TypeOf(msg)}]
	if !ok {
		return 0, nil, NewEncodeError(msg, errors.Wrapf(ErrUnknownPacket, "no encoder in state %s", state))
	}

	buf, err := entry.encode(ctx, msg)
	if err != nil {
		var encErr *EncodeError
		if errors.As(err, &encErr) {
			return 0, nil, err
		}
		return 0, nil, NewEncodeError(msg, err)
	}
	return entry.id, buf, nil
}

// Lookup returns the message name registered for a packet. When a decoder
// exists its message name wins over encoders sharing the id.
func (r *Registry) Lookup(state State, dir Direction, id int32) (string, bool) {
	name, ok := r.names[packetKey{state: state, dir: dir, id: id}]
	return name, ok
}

// CanDecode reports whether a decoder is registered for a packet.
func (r *Registry) CanDecode(state State, dir Direction, id int32) bool {
	_, ok := r.decoders[packetKey{state: state, dir: dir, id: id}]
	return ok
}

// PacketIDs returns the ids registered, for decoding or encoding, in a state
// and direction.
func (r *Registry) PacketIDs(state State, dir Direction) mapset.Set[int32] {
	ids := mapset.NewThreadUnsafeSet[int32]()
	for key := range r.names {
		if key.state == state && key.dir == dir {
			ids.Add(key.id)
		}
	}
	return ids
}
