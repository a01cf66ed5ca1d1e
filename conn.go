// Package gamewire runs game protocol connections over TCP.
//
// A Conn reads length-prefixed frames, resolves each packet id through a
// protocol.Registry and hands the decoded message to a callback. Outgoing
// messages are encoded through the same registry and queued for a write
// loop. Decoding and encoding on one connection never run concurrently, so
// codecs can pass state between messages through the connection's
// protocol.Context.
package gamewire

import (
	"bufio"
	"context"
	"io"
	"net"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/Zereker/gamewire/internal/sync"
	"github.com/Zereker/gamewire/metrics"
	"github.com/Zereker/gamewire/protocol"
	"github.com/Zereker/gamewire/wire"
)

// Errors returned by connection operations.
var (
	// ErrInvalidRegistry is returned when no registry is provided.
	ErrInvalidRegistry = errors.New("gamewire: invalid codec registry")
	// ErrInvalidOnMessage is returned when no message handler is provided.
	ErrInvalidOnMessage = errors.New("gamewire: invalid on message callback")
	// ErrMessageTooLarge is returned when a frame exceeds the maximum size.
	ErrMessageTooLarge = errors.New("gamewire: message too large")
	// ErrConnectionClosed is returned when operating on a closed connection.
	ErrConnectionClosed = errors.New("gamewire: connection closed")
	// ErrBufferFull is returned when the send queue cannot take another frame.
	// The peer is not reading fast enough; use WriteBlocking or WriteTimeout
	// to wait for room instead.
	ErrBufferFull = errors.New("gamewire: send buffer full")
)

const tracerName = "github.com/Zereker/gamewire"

// Default configuration values.
const (
	defaultBufferSize = 16
	// defaultMaxFrameLength is the largest frame the vanilla protocol sends
	// uncompressed (2^21 - 1).
	defaultMaxFrameLength = 1<<21 - 1
	defaultHeartbeat      = 30 * time.Second
	defaultBufferCapacity = 512
)

// sharedAllocator recycles frame buffers across all connections that do not
// bring their own allocator.
var sharedAllocator = wire.NewPooledAllocator(defaultBufferCapacity)

// Conn is one protocol connection. It owns the socket, the connection's
// protocol.Context and the current protocol state.
type Conn struct {
	rawConn       *net.TCPConn
	reader        *bufio.Reader
	limitedReader *limitedReader
	logger        Logger

	opts options

	// pipeline serializes decode and encode. It guards ctx and state.
	pipeline sync.Mutex
	ctx      *protocol.Context
	state    protocol.State

	sendMsg chan []byte
	closed  atomic.Bool
	cancel  context.CancelFunc
}

// NewConn wraps conn. It returns an error if the registry or the message
// handler is missing.
func NewConn(conn *net.TCPConn, opt ...Option) (*Conn, error) {
	var opts options
	for _, o := range opt {
		o(&opts)
	}

	if err := checkOptions(&opts); err != nil {
		return nil, err
	}

	return newConnWithOptions(conn, opts), nil
}

// checkOptions validates opts and fills in defaults.
func checkOptions(opts *options) error {
	if opts.registry == nil {
		return ErrInvalidRegistry
	}

	if opts.onMessage == nil {
		return ErrInvalidOnMessage
	}

	if opts.bufferSize <= 0 {
		opts.bufferSize = defaultBufferSize
	}

	if opts.maxReadLength <= 0 {
		opts.maxReadLength = defaultMaxFrameLength
	}

	if opts.heartbeat <= 0 {
		opts.heartbeat = defaultHeartbeat
	}

	if opts.allocator == nil {
		opts.allocator = sharedAllocator
	}

	if opts.onError == nil {
		opts.onError = func(error) ErrorAction { return Disconnect }
	}

	if opts.logger == nil {
		opts.logger = defaultLogger()
	}

	if opts.tracer == nil {
		opts.tracer = otel.Tracer(tracerName)
	}

	return nil
}

func newConnWithOptions(c *net.TCPConn, opts options) *Conn {
	reader := bufio.NewReader(c)
	ctx := protocol.NewContext(protocol.WithAllocator(opts.allocator))

	return &Conn{
		rawConn:       c,
		reader:        reader,
		limitedReader: newLimitedReader(reader, int64(opts.maxReadLength)),
		logger:        withFields(opts.logger, "conn_id", ctx.ID().String(), "addr", c.RemoteAddr().String()),
		opts:          opts,
		ctx:           ctx,
		state:         opts.state,
		sendMsg:       make(chan []byte, opts.bufferSize),
	}
}

// Run starts the read and write loops and blocks until one of them fails or
// ctx is canceled. The socket is closed and the connection's attributes are
// cleared when Run returns.
func (c *Conn) Run(ctx context.Context) error {
	c.logger.Info("connection established", "state", c.State())
	c.logger.Debug("connection options",
		"buffer_size", c.opts.bufferSize,
		"max_frame_length", c.opts.maxReadLength,
		"heartbeat", c.opts.heartbeat,
		"inbound", c.opts.inbound)

	c.opts.metrics.ConnOpened()
	defer c.opts.metrics.ConnClosed()

	ctx, c.cancel = context.WithCancel(ctx)
	group, child := errgroup.WithContext(ctx)

	// A blocked socket read does not watch the context; closing the socket
	// releases it.
	stop := context.AfterFunc(child, func() { _ = c.rawConn.Close() })
	defer stop()

	group.Go(func() error {
		return c.readLoop(child)
	})

	group.Go(func() error {
		return c.writeLoop(child)
	})

	err := group.Wait()
	c.closeConn()

	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
		c.logger.Info("connection closed with error", "error", err)
	} else {
		c.logger.Info("connection closed")
	}

	return err
}

// Close closes the connection. Safe to call more than once.
func (c *Conn) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	if c.cancel != nil {
		c.cancel()
	}
	return c.rawConn.Close()
}

// IsClosed reports whether the connection has been closed.
func (c *Conn) IsClosed() bool {
	return c.closed.Load()
}

// Addr returns the remote address of the connection.
func (c *Conn) Addr() net.Addr {
	return c.rawConn.RemoteAddr()
}

// Context returns the connection's protocol context. Codecs reach it on
// their own; callers touching its attributes outside a codec must not race
// with the connection's loops.
func (c *Conn) Context() *protocol.Context {
	return c.ctx
}

// State returns the current protocol state.
func (c *Conn) State() protocol.State {
	c.pipeline.Lock()
	defer c.pipeline.Unlock()
	return c.state
}

// SetState switches the protocol state. Packets read or written afterwards
// use the new state's codecs.
func (c *Conn) SetState(s protocol.State) {
	c.pipeline.Lock()
	defer c.pipeline.Unlock()
	if c.state != s {
		c.logger.Debug("state changed", "from", c.state, "to", s)
		c.state = s
	}
}

// Write encodes msg and queues it without blocking.
//
// Returns:
//   - nil: the frame was queued, not yet sent
//   - ErrBufferFull: the send queue is full, msg was dropped
//   - ErrConnectionClosed: the connection is closed
//   - *protocol.EncodeError: msg could not be encoded
//
// A full queue is detected before encoding, so a dropped msg leaves the
// Context's attributes untouched. Concurrent writers can still fill the
// queue between that check and the send; the codec's attribute writes then
// stay even though msg is dropped.
func (c *Conn) Write(msg protocol.Message) error {
	if c.closed.Load() {
		return ErrConnectionClosed
	}

	if len(c.sendMsg) == cap(c.sendMsg) {
		return ErrBufferFull
	}

	frame, err := c.encode(context.Background(), msg)
	if err != nil {
		return err
	}

	select {
	case c.sendMsg <- frame:
		return nil
	default:
		return ErrBufferFull
	}
}

// WriteBlocking encodes msg and waits until it is queued or ctx is done.
// Encoding happens before waiting, so messages written from one goroutine
// keep their order.
func (c *Conn) WriteBlocking(ctx context.Context, msg protocol.Message) error {
	if c.closed.Load() {
		return ErrConnectionClosed
	}

	frame, err := c.encode(ctx, msg)
	if err != nil {
		return err
	}

	select {
	case c.sendMsg <- frame:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WriteTimeout is WriteBlocking with a timeout; it returns ErrBufferFull
// when the queue stays full for the whole timeout.
func (c *Conn) WriteTimeout(msg protocol.Message, timeout time.Duration) error {
	if c.closed.Load() {
		return ErrConnectionClosed
	}

	frame, err := c.encode(context.Background(), msg)
	if err != nil {
		return err
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case c.sendMsg <- frame:
		return nil
	case <-timer.C:
		return ErrBufferFull
	}
}

// encode turns msg into a complete frame.
func (c *Conn) encode(ctx context.Context, msg protocol.Message) ([]byte, error) {
	c.pipeline.Lock()
	defer c.pipeline.Unlock()

	_, span := c.opts.tracer.Start(ctx, "gamewire.encode",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(attribute.String("gamewire.state", c.state.String())))
	defer span.End()

	id, payload, err := c.opts.registry.Encode(c.ctx, c.state, msg)
	if err != nil {
		c.failed(span, metrics.Encode, err)
		return nil, err
	}
	defer release(c.opts.allocator, payload)

	name := msg.MessageName()
	span.SetAttributes(
		attribute.String("gamewire.message", name),
		attribute.Int("gamewire.packet_id", int(id)),
		attribute.Int("gamewire.payload_bytes", payload.WriterIndex()))

	if length := wire.VarIntLen(id) + payload.WriterIndex(); length > c.opts.maxReadLength {
		err = protocol.NewEncodeError(msg, errors.Wrapf(ErrMessageTooLarge, "frame of %d bytes, limit %d", length, c.opts.maxReadLength))
		c.failed(span, metrics.Encode, err)
		return nil, err
	}

	c.opts.metrics.PacketEncoded(c.state, name, payload.WriterIndex())
	span.SetStatus(codes.Ok, "")
	return appendFrame(nil, id, payload.Bytes()), nil
}

// decode decodes one frame read by readFrame.
func (c *Conn) decode(ctx context.Context, frame *wire.Buffer) (protocol.Message, error) {
	c.pipeline.Lock()
	defer c.pipeline.Unlock()

	_, span := c.opts.tracer.Start(ctx, "gamewire.decode",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("gamewire.state", c.state.String()),
			attribute.Int("gamewire.frame_bytes", frame.WriterIndex())))
	defer span.End()

	id, err := frame.ReadVarInt()
	if err != nil {
		err = &protocol.DecodeError{State: c.state, Direction: c.opts.inbound, PacketID: -1,
			Err: errors.Wrap(err, "read packet id")}
		c.failed(span, metrics.Decode, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("gamewire.packet_id", int(id)))

	size := frame.ReadableBytes()
	msg, err := c.opts.registry.Decode(c.ctx, c.state, c.opts.inbound, id, frame)
	if err != nil {
		c.failed(span, metrics.Decode, err)
		return nil, err
	}

	name := msg.MessageName()
	span.SetAttributes(attribute.String("gamewire.message", name))
	span.SetStatus(codes.Ok, "")
	c.opts.metrics.PacketDecoded(c.state, name, size)
	return msg, nil
}

func (c *Conn) failed(span trace.Span, direction string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	c.opts.metrics.CodecError(direction, err)
}

// readLoop reads frames and hands decoded messages to the handler.
// Decode failures consult onError; stream failures end the loop because the
// next frame boundary is lost.
func (c *Conn) readLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		_ = c.rawConn.SetReadDeadline(time.Now().Add(c.opts.heartbeat * 2))

		frame, err := readFrame(c.limitedReader, c.opts.allocator, c.opts.maxReadLength)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Debug("read error", "error", err)
			return err
		}

		msg, err := c.decode(ctx, frame)
		release(c.opts.allocator, frame)
		if err != nil {
			c.logger.Debug("decode error", "error", err)
			if c.opts.onError(err) == Disconnect {
				return err
			}
			continue
		}

		if err = c.opts.onMessage(c, msg); err != nil {
			return err
		}
	}
}

// writeLoop sends queued frames until ctx is done or a write fails.
func (c *Conn) writeLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case frame := <-c.sendMsg:
			if err := c.write(frame); err != nil {
				return err
			}
		}
	}
}

// write sends one frame with a deadline. onError decides whether a failed
// write ends the connection.
func (c *Conn) write(frame []byte) error {
	_ = c.rawConn.SetWriteDeadline(time.Now().Add(c.opts.heartbeat * 2))

	if _, err := c.rawConn.Write(frame); err != nil {
		c.logger.Debug("write error", "error", err)
		if c.opts.onError(err) == Disconnect {
			return err
		}
	}

	return nil
}

// closeConn marks the connection closed, closes the socket and drops the
// connection's attributes.
func (c *Conn) closeConn() {
	c.closed.Store(true)
	_ = c.rawConn.Close()

	c.pipeline.Lock()
	c.ctx.Clear()
	c.pipeline.Unlock()
}
