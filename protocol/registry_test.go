package protocol

import (
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zereker/gamewire/wire"
)

type keepAlive struct {
	ID int64
}

func (keepAlive) MessageName() string { return "KeepAlive" }

type keepAliveCodec struct{}

func (keepAliveCodec) Encode(ctx *Context, msg keepAlive) (*wire.Buffer, error) {
	buf := ctx.Alloc().Buffer()
	buf.WriteLong(msg.ID)
	return buf, nil
}

func (keepAliveCodec) Decode(_ *Context, buf *wire.Buffer) (keepAlive, error) {
	id, err := buf.ReadLong()
	if err != nil {
		return keepAlive{}, err
	}
	return keepAlive{ID: id}, nil
}

type chat struct {
	Text string
}

func (chat) MessageName() string { return "Chat" }

type chatEncoder struct{}

func (chatEncoder) Encode(ctx *Context, msg chat) (*wire.Buffer, error) {
	if msg.Text == "" {
		return nil, NewEncodeError(msg, errors.New("empty chat"))
	}
	buf := ctx.Alloc().Buffer()
	buf.WriteString(msg.Text)
	return buf, nil
}

type chatAlias chat

func (chatAlias) MessageName() string { return "ChatAlias" }

type chatAliasEncoder struct{}

func (chatAliasEncoder) Encode(ctx *Context, msg chatAlias) (*wire.Buffer, error) {
	return chatEncoder{}.Encode(ctx, chat(msg))
}

type brokenEncoder struct{}

func (brokenEncoder) Encode(*Context, keepAlive) (*wire.Buffer, error) {
	return nil, errors.WithStack(ErrNoInternalID)
}

func newTestRegistry() *Registry {
	r := NewRegistry()
	RegisterCodec[keepAlive](r, StatePlay, Clientbound, 0x1F, keepAliveCodec{})
	RegisterDecoder[keepAlive](r, StatePlay, Serverbound, 0x10, keepAliveCodec{})
	RegisterEncoder[chat](r, StatePlay, Clientbound, 0x0E, chatEncoder{})
	return r
}

func TestRegistry_EncodeDecode(t *testing.T) {
	r := newTestRegistry()
	ctx := NewContext()

	id, buf, err := r.Encode(ctx, StatePlay, keepAlive{ID: 123456789})
	require.NoError(t, err)
	assert.Equal(t, int32(0x1F), id)
	assert.Equal(t, 8, buf.WriterIndex())

	msg, err := r.Decode(ctx, StatePlay, Clientbound, id, buf)
	require.NoError(t, err)
	assert.Equal(t, keepAlive{ID: 123456789}, msg)
}

func TestRegistry_UnknownPacket(t *testing.T) {
	r := newTestRegistry()
	ctx := NewContext()

	_, err := r.Decode(ctx, StatePlay, Serverbound, 0x7F, wire.NewBuffer())
	var decErr *DecodeError
	require.True(t, errors.As(err, &decErr))
	assert.Equal(t, int32(0x7F), decErr.PacketID)
	assert.True(t, errors.Is(err, ErrUnknownPacket))

	_, _, err = r.Encode(ctx, StateLogin, keepAlive{})
	var encErr *EncodeError
	require.True(t, errors.As(err, &encErr))
	assert.Equal(t, "KeepAlive", encErr.Message)
	assert.True(t, errors.Is(err, ErrUnknownPacket))

	_, _, err = r.Encode(ctx, StatePlay, nil)
	assert.True(t, errors.As(err, &encErr))
}

func TestRegistry_DecodeWrapsBufferErrors(t *testing.T) {
	r := newTestRegistry()
	ctx := NewContext()

	_, err := r.Decode(ctx, StatePlay, Serverbound, 0x10, wire.Wrap([]byte{1, 2, 3}))
	var decErr *DecodeError
	require.True(t, errors.As(err, &decErr))
	assert.Equal(t, StatePlay, decErr.State)
	assert.Equal(t, Serverbound, decErr.Direction)
	assert.True(t, errors.Is(err, wire.ErrBufferUnderflow))
}

func TestRegistry_TrailingBytes(t *testing.T) {
	r := newTestRegistry()
	ctx := NewContext()

	buf := wire.NewBuffer()
	buf.WriteLong(1)
	buf.WriteBool(true)

	_, err := r.Decode(ctx, StatePlay, Serverbound, 0x10, buf)
	assert.True(t, errors.Is(err, ErrTrailingBytes))
}

func TestRegistry_EncodeErrors(t *testing.T) {
	r := newTestRegistry()
	ctx := NewContext()

	_, _, err := r.Encode(ctx, StatePlay, chat{})
	var encErr *EncodeError
	require.True(t, errors.As(err, &encErr))
	assert.Equal(t, "Chat", encErr.Message)

	broken := NewRegistry()
	RegisterEncoder[keepAlive](broken, StatePlay, Clientbound, 0x1F, brokenEncoder{})
	_, _, err = broken.Encode(ctx, StatePlay, keepAlive{})
	require.True(t, errors.As(err, &encErr))
	assert.True(t, errors.Is(err, ErrNoInternalID))
}

func TestRegistry_Lookup(t *testing.T) {
	r := newTestRegistry()

	name, ok := r.Lookup(StatePlay, Clientbound, 0x0E)
	assert.True(t, ok)
	assert.Equal(t, "Chat", name)

	_, ok = r.Lookup(StatePlay, Serverbound, 0x0E)
	assert.False(t, ok)

	assert.True(t, r.CanDecode(StatePlay, Serverbound, 0x10))
	assert.False(t, r.CanDecode(StatePlay, Clientbound, 0x0E), "chat is encode-only")
}

func TestRegistry_PacketIDs(t *testing.T) {
	r := newTestRegistry()

	clientbound := r.PacketIDs(StatePlay, Clientbound)
	assert.True(t, clientbound.Equal(mapsetOf(0x0E, 0x1F)))

	serverbound := r.PacketIDs(StatePlay, Serverbound)
	assert.True(t, serverbound.Equal(mapsetOf(0x10)))

	assert.Equal(t, 0, r.PacketIDs(StateLogin, Serverbound).Cardinality())
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	r := newTestRegistry()

	assert.Panics(t, func() {
		RegisterDecoder[keepAlive](r, StatePlay, Serverbound, 0x10, keepAliveCodec{})
	})
	assert.Panics(t, func() {
		RegisterEncoder[chat](r, StatePlay, Clientbound, 0x0F, chatEncoder{})
	})
}

func TestRegistry_EncodersShareID(t *testing.T) {
	r := newTestRegistry()
	RegisterEncoder[chatAlias](r, StatePlay, Clientbound, 0x0E, chatAliasEncoder{})

	ctx := NewContext()
	id, _, err := r.Encode(ctx, StatePlay, chatAlias{Text: "hi"})
	require.NoError(t, err)
	assert.Equal(t, int32(0x0E), id)

	name, ok := r.Lookup(StatePlay, Clientbound, 0x0E)
	assert.True(t, ok)
	assert.Equal(t, "Chat", name, "first registration names the packet")

	RegisterDecoder[keepAlive](r, StatePlay, Clientbound, 0x0E, keepAliveCodec{})
	name, _ = r.Lookup(StatePlay, Clientbound, 0x0E)
	assert.Equal(t, "KeepAlive", name, "decoder names the packet")
}

func TestState_String(t *testing.T) {
	for _, s := range []State{StateHandshake, StateStatus, StateLogin, StatePlay} {
		got, ok := ParseState(s.String())
		assert.True(t, ok)
		assert.Equal(t, s, got)
	}
	_, ok := ParseState("bogus")
	assert.False(t, ok)

	d, ok := ParseDirection("clientbound")
	assert.True(t, ok)
	assert.Equal(t, Clientbound, d)
	assert.Equal(t, Serverbound, d.Opposite())
}

func mapsetOf(ids ...int32) mapset.Set[int32] {
	return mapset.NewThreadUnsafeSet(ids...)
}
