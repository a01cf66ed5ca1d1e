// Package metrics records codec and connection metrics with Prometheus.
//
// Metrics collected (default namespace "gamewire"):
//   - gamewire_packets_decoded_total: packets decoded, by state and packet
//   - gamewire_packets_encoded_total: packets encoded, by state and packet
//   - gamewire_codec_errors_total: codec failures, by direction and kind
//   - gamewire_packet_size_bytes: framed payload sizes, by direction
//   - gamewire_connections_active: open connections
package metrics

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Zereker/gamewire/protocol"
	"github.com/Zereker/gamewire/wire"
)

// Direction labels.
const (
	Decode = "decode"
	Encode = "encode"
)

// Config configures the codec metrics.
type Config struct {
	// Namespace is the metrics namespace (default: "gamewire").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are added to every metric.
	ConstLabels prometheus.Labels

	// SizeBuckets are the packet size histogram buckets.
	SizeBuckets []float64

	// Registry is where the metrics are registered.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the codec metrics.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithSizeBuckets sets the packet size histogram buckets.
func WithSizeBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.SizeBuckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace:   "gamewire",
		SizeBuckets: prometheus.ExponentialBuckets(8, 4, 8), // 8B to 128KiB
		Registry:    prometheus.DefaultRegisterer,
	}
}

// Codec holds the codec and connection metrics. A nil *Codec records
// nothing, so callers need not check whether metrics are enabled.
type Codec struct {
	decoded     *prometheus.CounterVec
	encoded     *prometheus.CounterVec
	errors      *prometheus.CounterVec
	packetSize  *prometheus.HistogramVec
	connections prometheus.Gauge
}

// New registers the metrics. It panics if they are already registered in
// the chosen registry.
func New(opts ...Option) *Codec {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Codec{
		decoded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "packets_decoded_total",
			Help:        "Total number of packets decoded",
			ConstLabels: config.ConstLabels,
		}, []string{"state", "packet"}),

		encoded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "packets_encoded_total",
			Help:        "Total number of packets encoded",
			ConstLabels: config.ConstLabels,
		}, []string{"state", "packet"}),

		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "codec_errors_total",
			Help:        "Total number of codec failures by direction and kind",
			ConstLabels: config.ConstLabels,
		}, []string{"direction", "kind"}),

		packetSize: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "packet_size_bytes",
			Help:        "Packet payload size in bytes",
			ConstLabels: config.ConstLabels,
			Buckets:     config.SizeBuckets,
		}, []string{"direction"}),

		connections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "connections_active",
			Help:        "Number of open connections",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// PacketDecoded records a decoded packet and its payload size.
func (c *Codec) PacketDecoded(state protocol.State, packet string, size int) {
	if c == nil {
		return
	}
	c.decoded.WithLabelValues(state.String(), packet).Inc()
	c.packetSize.WithLabelValues(Decode).Observe(float64(size))
}

// PacketEncoded records an encoded packet and its payload size.
func (c *Codec) PacketEncoded(state protocol.State, packet string, size int) {
	if c == nil {
		return
	}
	c.encoded.WithLabelValues(state.String(), packet).Inc()
	c.packetSize.WithLabelValues(Encode).Observe(float64(size))
}

// CodecError records a failure in direction Decode or Encode.
func (c *Codec) CodecError(direction string, err error) {
	if c == nil || err == nil {
		return
	}
	c.errors.WithLabelValues(direction, ErrorKind(err)).Inc()
}

// ConnOpened increments the open connection gauge.
func (c *Codec) ConnOpened() {
	if c == nil {
		return
	}
	c.connections.Inc()
}

// ConnClosed decrements the open connection gauge.
func (c *Codec) ConnClosed() {
	if c == nil {
		return
	}
	c.connections.Dec()
}

// ErrorKind maps an error to a short label value.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, wire.ErrBufferUnderflow):
		return "underflow"
	case errors.Is(err, wire.ErrMalformedValue):
		return "malformed"
	case errors.Is(err, wire.ErrIndexOutOfRange):
		return "index_out_of_range"
	case errors.Is(err, protocol.ErrUnknownPacket):
		return "unknown_packet"
	case errors.Is(err, protocol.ErrTrailingBytes):
		return "trailing_bytes"
	case errors.Is(err, protocol.ErrNoInternalID):
		return "no_internal_id"
	case errors.Is(err, protocol.ErrAttributeNotSet):
		return "attribute_not_set"
	default:
		return "other"
	}
}
