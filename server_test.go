package gamewire

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zereker/gamewire/play"
	"github.com/Zereker/gamewire/protocol"
)

// mockHandler records accepted connections and holds them until ctx is done.
type mockHandler struct {
	mu       sync.Mutex
	conns    []*net.TCPConn
	handleCh chan *net.TCPConn
	canceled chan struct{}
}

func newMockHandler() *mockHandler {
	return &mockHandler{
		handleCh: make(chan *net.TCPConn, 10),
		canceled: make(chan struct{}, 10),
	}
}

func (h *mockHandler) Handle(ctx context.Context, conn *net.TCPConn) {
	h.mu.Lock()
	h.conns = append(h.conns, conn)
	h.mu.Unlock()

	h.handleCh <- conn
	<-ctx.Done()
	conn.Close()
	h.canceled <- struct{}{}
}

func (h *mockHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

func newTestServer(t *testing.T, opts ...ServerOption) *Server {
	t.Helper()
	server, err := New(&net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 0}, opts...)
	require.NoError(t, err)
	return server
}

func dial(t *testing.T, server *Server) *net.TCPConn {
	t.Helper()
	conn, err := net.DialTCP("tcp", nil, server.Addr().(*net.TCPAddr))
	require.NoError(t, err)
	return conn
}

func TestNew_OccupiedAddr(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	_, err := New(server.Addr().(*net.TCPAddr))
	assert.Error(t, err)
}

func TestServer_Close(t *testing.T) {
	server := newTestServer(t)
	require.NoError(t, server.Close())

	_, err := server.listener.AcceptTCP()
	assert.Error(t, err)
}

func TestServer_ServeAndCancel(t *testing.T) {
	server := newTestServer(t)
	handler := newMockHandler()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx, handler) }()

	const clients = 3
	for i := 0; i < clients; i++ {
		conn := dial(t, server)
		defer conn.Close()
	}
	for i := 0; i < clients; i++ {
		select {
		case <-handler.handleCh:
		case <-time.After(5 * time.Second):
			t.Fatalf("timeout waiting for handler %d", i)
		}
	}
	assert.Equal(t, clients, handler.count())

	cancel()

	select {
	case err := <-done:
		assert.Equal(t, context.Canceled, err)
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for Serve to return")
	}
	// Serve returns only after every handler saw its context canceled.
	assert.Len(t, handler.canceled, clients)
}

func TestServer_DrainWaitsForHandlers(t *testing.T) {
	server := newTestServer(t, ServerShutdownTimeoutOption(5*time.Second))

	started := make(chan struct{})
	finished := make(chan struct{})
	handler := HandlerFunc(func(ctx context.Context, conn *net.TCPConn) {
		defer conn.Close()
		close(started)
		time.Sleep(50 * time.Millisecond)
		close(finished)
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx, handler) }()

	conn := dial(t, server)
	defer conn.Close()
	<-started
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for Serve to return")
	}
	select {
	case <-finished:
	default:
		t.Fatal("Serve returned before the handler finished")
	}
}

func TestServer_CloseCutsDrainShort(t *testing.T) {
	server := newTestServer(t, ServerShutdownTimeoutOption(time.Hour))
	handler := newMockHandler()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx, handler) }()

	conn := dial(t, server)
	defer conn.Close()
	<-handler.handleCh

	cancel()
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, server.Close())

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not cut the drain short")
	}
}

func TestServer_RunsConns(t *testing.T) {
	server := newTestServer(t)
	registry := serverRegistry()

	received := make(chan protocol.Message, 1)
	handler := HandlerFunc(func(ctx context.Context, tcp *net.TCPConn) {
		conn, err := NewConn(tcp,
			RegistryOption(registry),
			StateOption(protocol.StatePlay),
			OnMessageOption(func(_ *Conn, msg protocol.Message) error {
				received <- msg
				return nil
			}),
		)
		if err != nil {
			tcp.Close()
			return
		}
		_ = conn.Run(ctx)
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx, handler) }()

	client := dial(t, server)
	defer client.Close()
	sendFrame(t, client, play.PlayerAbilitiesID, []byte{0x02})

	select {
	case msg := <-received:
		assert.Equal(t, play.PlayerAbilities{Flying: true}, msg)
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for message")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for Serve to return")
	}
}
