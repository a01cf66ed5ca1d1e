package main

import (
	"bufio"
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zereker/gamewire/catalog"
	"github.com/Zereker/gamewire/play"
	"github.com/Zereker/gamewire/protocol"
	"github.com/Zereker/gamewire/wire"
)

// testClient reads clientbound frames the way a game client would.
type testClient struct {
	conn     net.Conn
	reader   *bufio.Reader
	registry *protocol.Registry
	ctx      *protocol.Context
}

func newTestClient(t *testing.T, addr net.Addr) *testClient {
	t.Helper()
	conn, err := net.Dial("tcp", addr.String())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	registry := protocol.NewRegistry()
	play.RegisterClient(registry, play.DefaultCatalogs())

	return &testClient{
		conn:     conn,
		reader:   bufio.NewReader(conn),
		registry: registry,
		ctx:      protocol.NewContext(),
	}
}

func (c *testClient) read(t *testing.T) protocol.Message {
	t.Helper()
	require.NoError(t, c.conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	length, err := wire.ReadVarIntFrom(c.reader)
	require.NoError(t, err)
	body := make([]byte, length)
	_, err = io.ReadFull(c.reader, body)
	require.NoError(t, err)

	buf := wire.Wrap(body)
	id, err := buf.ReadVarInt()
	require.NoError(t, err)

	msg, err := c.registry.Decode(c.ctx, protocol.StatePlay, protocol.Clientbound, id, buf)
	require.NoError(t, err)
	return msg
}

func (c *testClient) send(t *testing.T, msg protocol.Message) {
	t.Helper()
	id, payload, err := c.registry.Encode(c.ctx, protocol.StatePlay, msg)
	require.NoError(t, err)

	frame := wire.AppendVarInt(nil, int32(wire.VarIntLen(id)+payload.ReadableBytes()))
	frame = wire.AppendVarInt(frame, id)
	frame = append(frame, payload.Readable()...)
	_, err = c.conn.Write(frame)
	require.NoError(t, err)
}

func startServe(t *testing.T, mutate func(*Config)) (net.Addr, context.CancelFunc, <-chan error) {
	t.Helper()
	cfg, err := Load("")
	require.NoError(t, err)
	cfg.Server.ListenAddr = "127.0.0.1:0"
	cfg.Server.ShutdownTimeout = time.Second
	if mutate != nil {
		mutate(cfg)
	}
	require.NoError(t, cfg.Validate())

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan net.Addr, 1)
	done := make(chan error, 1)
	go func() { done <- runServe(ctx, cfg, zerolog.Nop(), ready) }()

	select {
	case addr := <-ready:
		return addr, cancel, done
	case err := <-done:
		cancel()
		t.Fatalf("serve failed: %v", err)
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatal("timeout waiting for listener")
	}
	return nil, cancel, done
}

func stopServe(t *testing.T, cancel context.CancelFunc, done <-chan error) {
	t.Helper()
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for serve to stop")
	}
}

func TestServe_GreetsPlayer(t *testing.T) {
	addr, cancel, done := startServe(t, func(c *Config) {
		c.World.GameMode = string(catalog.Creative)
		c.World.Dimension = string(catalog.Nether)
		c.World.ViewDistance = 8
		c.World.OpLevel = 2
	})
	defer stopServe(t, cancel, done)

	client := newTestClient(t, addr)

	join, ok := client.read(t).(play.PlayerJoinGame)
	require.True(t, ok)
	assert.Equal(t, int32(1), join.EntityID)
	assert.Equal(t, catalog.Creative, join.GameMode)
	assert.Equal(t, catalog.Nether, join.Dimension)
	assert.Equal(t, int32(20), join.PlayerListSize)
	assert.Equal(t, int32(8), join.ViewDistance)

	assert.Equal(t, play.EntityStatus{EntityID: 1, Status: play.StatusOpLevel0 + 2}, client.read(t))

	// The client context learned the entity id from the join game packet.
	entityID, err := protocol.Attr(client.ctx, play.PlayerEntityID).Get()
	require.NoError(t, err)
	assert.Equal(t, int32(1), entityID)

	// Serverbound traffic, including a packet the server cannot decode,
	// keeps the connection open.
	client.send(t, play.PlayerAbilities{Flying: true})
	_, err = client.conn.Write([]byte{0x02, 0x7F, 0x00})
	require.NoError(t, err)
	client.send(t, play.GenerateJigsawStructure{Position: wire.Position{X: 1, Y: 2, Z: 3}, Levels: 4})

	second := newTestClient(t, addr)
	join, ok = second.read(t).(play.PlayerJoinGame)
	require.True(t, ok)
	assert.Equal(t, int32(2), join.EntityID)
}

func TestServe_SingleSlotSendBuffer(t *testing.T) {
	addr, cancel, done := startServe(t, func(c *Config) {
		c.Server.SendBuffer = 1
		c.World.OpLevel = 3
	})
	defer stopServe(t, cancel, done)

	client := newTestClient(t, addr)

	join, ok := client.read(t).(play.PlayerJoinGame)
	require.True(t, ok)
	assert.Equal(t, play.EntityStatus{EntityID: join.EntityID, Status: play.StatusOpLevel0 + 3}, client.read(t))
}

func TestServe_RejectsWhenFull(t *testing.T) {
	addr, cancel, done := startServe(t, func(c *Config) { c.World.MaxPlayers = 1 })
	defer stopServe(t, cancel, done)

	first := newTestClient(t, addr)
	_, ok := first.read(t).(play.PlayerJoinGame)
	require.True(t, ok)

	second := newTestClient(t, addr)
	require.NoError(t, second.conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, err := second.reader.ReadByte()
	assert.Equal(t, io.EOF, err)
}

func TestServe_BadListenAddr(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	cfg.Server.ListenAddr = "not-an-addr"

	assert.Error(t, runServe(context.Background(), cfg, zerolog.Nop(), nil))
}
