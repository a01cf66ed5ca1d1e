package main

import (
	"context"
	"net"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/Zereker/gamewire"
	"github.com/Zereker/gamewire/internal/sync"
	"github.com/Zereker/gamewire/metrics"
	"github.com/Zereker/gamewire/play"
	"github.com/Zereker/gamewire/protocol"
)

// playerHandler accepts players straight into the play state, greets them
// with the configured world and logs what they send.
type playerHandler struct {
	registry *protocol.Registry
	world    WorldConfig
	server   ServerConfig
	logger   gamewire.Logger
	metrics  *metrics.Codec

	nextEntityID atomic.Int32

	mu      sync.RWMutex
	players map[uuid.UUID]*gamewire.Conn
}

func newPlayerHandler(registry *protocol.Registry, cfg *Config, logger gamewire.Logger, m *metrics.Codec) *playerHandler {
	return &playerHandler{
		registry: registry,
		world:    cfg.World,
		server:   cfg.Server,
		logger:   logger,
		metrics:  m,
		players:  make(map[uuid.UUID]*gamewire.Conn),
	}
}

func (h *playerHandler) Handle(ctx context.Context, tcp *net.TCPConn) {
	conn, err := gamewire.NewConn(tcp,
		gamewire.RegistryOption(h.registry),
		gamewire.StateOption(protocol.StatePlay),
		gamewire.InboundOption(protocol.Serverbound),
		gamewire.BufferSizeOption(h.server.SendBuffer),
		gamewire.HeartbeatOption(h.server.Heartbeat),
		gamewire.MessageMaxSize(h.server.MaxFrameSize),
		gamewire.LoggerOption(h.logger),
		gamewire.MetricsOption(h.metrics),
		gamewire.OnErrorOption(h.onError),
		gamewire.OnMessageOption(h.onMessage),
	)
	if err != nil {
		h.logger.Error("failed to create connection", "error", err)
		_ = tcp.Close()
		return
	}

	id := conn.Context().ID()
	if !h.addPlayer(id, conn) {
		h.logger.Warn("server full, rejecting player", "addr", conn.Addr())
		_ = conn.Close()
		return
	}
	defer h.removePlayer(id)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The greeting waits for queue room, so the write loop must already run.
	go func() {
		if err := h.greet(ctx, conn); err != nil {
			if ctx.Err() == nil {
				h.logger.Error("failed to greet player", "player", id, "error", err)
			}
			cancel()
		}
	}()

	if err := conn.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		h.logger.Debug("player left", "player", id, "error", err)
	}
}

// greet sends the join game packet and the player's op level. Nothing else
// writes to a new connection, so they are the first frames on the wire.
func (h *playerHandler) greet(ctx context.Context, conn *gamewire.Conn) error {
	entityID := h.nextEntityID.Add(1)
	if err := conn.WriteBlocking(ctx, h.world.joinGame(entityID)); err != nil {
		return errors.Wrap(err, "join game")
	}
	if err := conn.WriteBlocking(ctx, play.SetOpLevel{Level: h.world.OpLevel}); err != nil {
		return errors.Wrap(err, "op level")
	}
	return nil
}

func (h *playerHandler) onMessage(conn *gamewire.Conn, msg protocol.Message) error {
	id := conn.Context().ID()
	switch m := msg.(type) {
	case play.PlayerMovementAndLook:
		h.logger.Debug("player moved", "player", id,
			"x", m.X, "y", m.Y, "z", m.Z, "yaw", m.Yaw, "pitch", m.Pitch, "on_ground", m.OnGround)
	case play.PlayerAbilities:
		h.logger.Info("player abilities", "player", id, "flying", m.Flying)
	case play.GenerateJigsawStructure:
		h.logger.Info("generate jigsaw structure", "player", id, "position", m.Position, "levels", m.Levels)
	case play.UpdateJigsawBlock:
		h.logger.Info("update jigsaw block", "player", id, "position", m.Position,
			"name", m.Name, "target", m.Target, "pool", m.Pool, "joint_type", m.JointType)
	default:
		h.logger.Warn("unhandled message", "player", id, "message", msg.MessageName())
	}
	return nil
}

// onError keeps the connection open for packets that fail to decode and
// drops it for everything else.
func (h *playerHandler) onError(err error) gamewire.ErrorAction {
	var decodeErr *protocol.DecodeError
	if errors.As(err, &decodeErr) {
		h.logger.Warn("dropping undecodable packet", "error", err)
		return gamewire.Continue
	}
	return gamewire.Disconnect
}

func (h *playerHandler) addPlayer(id uuid.UUID, conn *gamewire.Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.world.MaxPlayers > 0 && len(h.players) >= int(h.world.MaxPlayers) {
		return false
	}
	h.logger.Info("player joined", "player", id, "addr", conn.Addr())
	h.players[id] = conn
	return true
}

func (h *playerHandler) removePlayer(id uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.players, id)
}

// online returns the number of connected players.
func (h *playerHandler) online() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.players)
}
