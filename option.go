package gamewire

import (
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/Zereker/gamewire/metrics"
	"github.com/Zereker/gamewire/protocol"
	"github.com/Zereker/gamewire/wire"
)

// ErrorAction defines the action to take when a packet fails to decode.
type ErrorAction int

const (
	// Disconnect closes the connection.
	Disconnect ErrorAction = iota
	// Continue drops the packet and keeps reading.
	Continue
)

// options holds the configuration for a connection.
type options struct {
	registry  *protocol.Registry
	state     protocol.State
	inbound   protocol.Direction
	allocator wire.Allocator
	logger    Logger
	metrics   *metrics.Codec
	tracer    trace.Tracer

	onMessage func(*Conn, protocol.Message) error
	// onError is called when a packet fails to decode or a write fails.
	// Returns Disconnect to close the connection, Continue to suppress the error.
	onError func(error) ErrorAction

	bufferSize    int           // size of the send queue
	maxReadLength int           // maximum frame length, both directions
	heartbeat     time.Duration // read/write deadlines are heartbeat * 2
}

// Option is a function that configures connection options.
type Option func(*options)

// RegistryOption sets the codec registry. It is required.
func RegistryOption(r *protocol.Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}

// StateOption sets the protocol state the connection starts in.
// Default is protocol.StateHandshake.
func StateOption(s protocol.State) Option {
	return func(o *options) {
		o.state = s
	}
}

// InboundOption sets the direction of packets read from the peer: a server
// reads protocol.Serverbound packets (the default), a client reads
// protocol.Clientbound ones.
func InboundOption(d protocol.Direction) Option {
	return func(o *options) {
		o.inbound = d
	}
}

// AllocatorOption sets the allocator for frame and payload buffers.
// A *wire.PooledAllocator gets its buffers back once a frame is done, so
// decoders must copy any bytes from Buffer.ReadBytes they keep.
func AllocatorOption(a wire.Allocator) Option {
	return func(o *options) {
		o.allocator = a
	}
}

// BufferSizeOption sets the size of the send queue. A larger queue lets more
// frames wait before Write reports ErrBufferFull.
func BufferSizeOption(size int) Option {
	return func(o *options) {
		o.bufferSize = size
	}
}

// HeartbeatOption sets the heartbeat interval.
// Read and write deadlines are heartbeat * 2.
func HeartbeatOption(heartbeat time.Duration) Option {
	return func(o *options) {
		o.heartbeat = heartbeat
	}
}

// MessageMaxSize sets the largest frame, packet id included, that may be
// read or written.
func MessageMaxSize(size int) Option {
	return func(o *options) {
		o.maxReadLength = size
	}
}

// OnErrorOption sets the error callback. It decides what happens after a
// packet fails to decode or a frame fails to write. Stream errors such as a
// truncated frame always close the connection.
func OnErrorOption(cb func(error) ErrorAction) Option {
	return func(o *options) {
		o.onError = cb
	}
}

// OnMessageOption sets the message handler. It is required and runs on the
// read goroutine for every decoded message, in arrival order.
func OnMessageOption(cb func(*Conn, protocol.Message) error) Option {
	return func(o *options) {
		o.onMessage = cb
	}
}

// LoggerOption sets the logger. Default is slog.Default().
func LoggerOption(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// MetricsOption enables Prometheus metrics.
func MetricsOption(m *metrics.Codec) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// TracerOption sets the tracer used for per-packet spans.
// Default is the global otel tracer named after this module.
func TracerOption(t trace.Tracer) Option {
	return func(o *options) {
		o.tracer = t
	}
}
