package gamewire

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/Zereker/gamewire/metrics"
	"github.com/Zereker/gamewire/protocol"
	"github.com/Zereker/gamewire/wire"
)

func TestOptions_Apply(t *testing.T) {
	registry := protocol.NewRegistry()
	logger := &mockLogger{}
	alloc := wire.HeapAllocator{InitialCapacity: 64}
	m := metrics.New(metrics.WithRegistry(prometheus.NewRegistry()))
	tracer := noop.NewTracerProvider().Tracer("test")

	var opts options
	for _, opt := range []Option{
		RegistryOption(registry),
		StateOption(protocol.StateLogin),
		InboundOption(protocol.Clientbound),
		AllocatorOption(alloc),
		OnMessageOption(func(*Conn, protocol.Message) error { return nil }),
		OnErrorOption(func(error) ErrorAction { return Continue }),
		HeartbeatOption(45 * time.Second),
		BufferSizeOption(50),
		MessageMaxSize(8192),
		LoggerOption(logger),
		MetricsOption(m),
		TracerOption(tracer),
	} {
		opt(&opts)
	}

	assert.Same(t, registry, opts.registry)
	assert.Equal(t, protocol.StateLogin, opts.state)
	assert.Equal(t, protocol.Clientbound, opts.inbound)
	assert.Equal(t, alloc, opts.allocator)
	assert.NotNil(t, opts.onMessage)
	require.NotNil(t, opts.onError)
	assert.Equal(t, Continue, opts.onError(nil))
	assert.Equal(t, 45*time.Second, opts.heartbeat)
	assert.Equal(t, 50, opts.bufferSize)
	assert.Equal(t, 8192, opts.maxReadLength)
	assert.Same(t, logger, opts.logger)
	assert.Same(t, m, opts.metrics)
	assert.Equal(t, tracer, opts.tracer)
}

func TestCheckOptions_Defaults(t *testing.T) {
	opts := options{
		registry:  protocol.NewRegistry(),
		onMessage: func(*Conn, protocol.Message) error { return nil },
	}
	require.NoError(t, checkOptions(&opts))

	assert.Equal(t, defaultBufferSize, opts.bufferSize)
	assert.Equal(t, defaultMaxFrameLength, opts.maxReadLength)
	assert.Equal(t, defaultHeartbeat, opts.heartbeat)
	assert.Same(t, sharedAllocator, opts.allocator)
	assert.Equal(t, Disconnect, opts.onError(nil))
	assert.Equal(t, defaultLogger(), opts.logger)
	assert.NotNil(t, opts.tracer)
	assert.Nil(t, opts.metrics)
	assert.Equal(t, protocol.StateHandshake, opts.state)
	assert.Equal(t, protocol.Serverbound, opts.inbound)
}

func TestCheckOptions_Required(t *testing.T) {
	assert.Equal(t, ErrInvalidRegistry, checkOptions(&options{}))
	assert.Equal(t, ErrInvalidOnMessage, checkOptions(&options{registry: protocol.NewRegistry()}))
}

func TestErrorAction(t *testing.T) {
	assert.Equal(t, ErrorAction(0), Disconnect)
	assert.Equal(t, ErrorAction(1), Continue)
}
