package play

import (
	"github.com/pkg/errors"

	"github.com/Zereker/gamewire/protocol"
	"github.com/Zereker/gamewire/wire"
)

// PlayerMovementAndLook reports the player's position and rotation.
type PlayerMovementAndLook struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Z        float64 `json:"z"`
	Yaw      float32 `json:"yaw"`
	Pitch    float32 `json:"pitch"`
	OnGround bool    `json:"on_ground"`
}

func (PlayerMovementAndLook) MessageName() string { return "PlayerMovementAndLook" }

// MovementCodec writes and reads PlayerMovementAndLook: three doubles,
// two floats and the on-ground flag.
type MovementCodec struct{}

func (MovementCodec) Encode(ctx *protocol.Context, msg PlayerMovementAndLook) (*wire.Buffer, error) {
	buf := ctx.Alloc().Buffer()
	buf.WriteDouble(msg.X)
	buf.WriteDouble(msg.Y)
	buf.WriteDouble(msg.Z)
	buf.WriteFloat(msg.Yaw)
	buf.WriteFloat(msg.Pitch)
	buf.WriteBool(msg.OnGround)
	return buf, nil
}

func (MovementCodec) Decode(_ *protocol.Context, buf *wire.Buffer) (PlayerMovementAndLook, error) {
	var (
		msg PlayerMovementAndLook
		err error
	)
	if msg.X, err = buf.ReadDouble(); err != nil {
		return PlayerMovementAndLook{}, errors.Wrap(err, "x")
	}
	if msg.Y, err = buf.ReadDouble(); err != nil {
		return PlayerMovementAndLook{}, errors.Wrap(err, "y")
	}
	if msg.Z, err = buf.ReadDouble(); err != nil {
		return PlayerMovementAndLook{}, errors.Wrap(err, "z")
	}
	if msg.Yaw, err = buf.ReadFloat(); err != nil {
		return PlayerMovementAndLook{}, errors.Wrap(err, "yaw")
	}
	if msg.Pitch, err = buf.ReadFloat(); err != nil {
		return PlayerMovementAndLook{}, errors.Wrap(err, "pitch")
	}
	if msg.OnGround, err = buf.ReadBool(); err != nil {
		return PlayerMovementAndLook{}, errors.Wrap(err, "on ground")
	}
	return msg, nil
}

// flyingFlag marks a flying player in the abilities flags byte.
const flyingFlag = 0x02

// PlayerAbilities is sent when the player starts or stops flying.
type PlayerAbilities struct {
	Flying bool `json:"flying"`
}

func (PlayerAbilities) MessageName() string { return "PlayerAbilities" }

// AbilitiesCodec writes and reads PlayerAbilities as one flags byte.
type AbilitiesCodec struct{}

func (AbilitiesCodec) Encode(ctx *protocol.Context, msg PlayerAbilities) (*wire.Buffer, error) {
	var flags byte
	if msg.Flying {
		flags |= flyingFlag
	}
	buf := ctx.Alloc().Buffer()
	_ = buf.WriteByte(flags)
	return buf, nil
}

// Decode ignores every flag but flying.
func (AbilitiesCodec) Decode(_ *protocol.Context, buf *wire.Buffer) (PlayerAbilities, error) {
	flags, err := buf.ReadByte()
	if err != nil {
		return PlayerAbilities{}, errors.Wrap(err, "flags")
	}
	return PlayerAbilities{Flying: flags&flyingFlag != 0}, nil
}
