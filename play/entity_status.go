package play

import (
	"github.com/pkg/errors"

	"github.com/Zereker/gamewire/protocol"
	"github.com/Zereker/gamewire/wire"
)

// Entity status codes understood by the player's own entity.
const (
	StatusReducedDebugOn  int8 = 22
	StatusReducedDebugOff int8 = 23
	StatusOpLevel0        int8 = 24

	MaxOpLevel = 4
)

// EntityStatus is the raw entity status packet: int32 entity id, then one
// status byte.
type EntityStatus struct {
	EntityID int32 `json:"entity_id"`
	Status   int8  `json:"status"`
}

func (EntityStatus) MessageName() string { return "EntityStatus" }

// EntityStatusCodec writes and reads EntityStatus as is.
type EntityStatusCodec struct{}

func (EntityStatusCodec) Encode(ctx *protocol.Context, msg EntityStatus) (*wire.Buffer, error) {
	return writeEntityStatus(ctx, msg.EntityID, msg.Status), nil
}

func (EntityStatusCodec) Decode(_ *protocol.Context, buf *wire.Buffer) (EntityStatus, error) {
	entityID, err := buf.ReadInt()
	if err != nil {
		return EntityStatus{}, errors.Wrap(err, "entity id")
	}
	status, err := buf.ReadByte()
	if err != nil {
		return EntityStatus{}, errors.Wrap(err, "status")
	}
	return EntityStatus{EntityID: entityID, Status: int8(status)}, nil
}

func writeEntityStatus(ctx *protocol.Context, entityID int32, status int8) *wire.Buffer {
	buf := ctx.Alloc().Buffer()
	buf.WriteInt(entityID)
	_ = buf.WriteByte(byte(status))
	return buf
}

// SetReducedDebug toggles the reduced debug screen of the connection's
// player. The entity id comes from the PlayerEntityID attribute, so a join
// game message must have been written on the same connection first.
type SetReducedDebug struct {
	Reduced bool `json:"reduced"`
}

func (SetReducedDebug) MessageName() string { return "SetReducedDebug" }

// ReducedDebugEncoder writes SetReducedDebug as an entity status packet
// addressed to the connection's player.
type ReducedDebugEncoder struct{}

func (ReducedDebugEncoder) Encode(ctx *protocol.Context, msg SetReducedDebug) (*wire.Buffer, error) {
	entityID, err := protocol.Attr(ctx, PlayerEntityID).Get()
	if err != nil {
		return nil, protocol.NewEncodeError(msg, err)
	}
	status := StatusReducedDebugOff
	if msg.Reduced {
		status = StatusReducedDebugOn
	}
	return writeEntityStatus(ctx, entityID, status), nil
}

// SetOpLevel tells the client its operator permission level, 0 to 4.
type SetOpLevel struct {
	Level int32 `json:"level"`
}

func (SetOpLevel) MessageName() string { return "SetOpLevel" }

// OpLevelEncoder writes SetOpLevel as entity status 24 plus the level.
type OpLevelEncoder struct{}

func (OpLevelEncoder) Encode(ctx *protocol.Context, msg SetOpLevel) (*wire.Buffer, error) {
	if msg.Level < 0 || msg.Level > MaxOpLevel {
		return nil, protocol.NewEncodeError(msg, errors.Errorf("op level %d not in [0, %d]", msg.Level, MaxOpLevel))
	}
	entityID, err := protocol.Attr(ctx, PlayerEntityID).Get()
	if err != nil {
		return nil, protocol.NewEncodeError(msg, err)
	}
	return writeEntityStatus(ctx, entityID, StatusOpLevel0+int8(msg.Level)), nil
}
