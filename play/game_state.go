package play

import (
	"github.com/pkg/errors"

	"github.com/Zereker/gamewire/catalog"
	"github.com/Zereker/gamewire/protocol"
	"github.com/Zereker/gamewire/wire"
)

// changeGameModeReason is the change game state reason that switches the
// player's game mode.
const changeGameModeReason = 3

// SetGameMode switches the game mode of the connection's player.
type SetGameMode struct {
	GameMode catalog.GameMode `json:"game_mode"`
}

func (SetGameMode) MessageName() string { return "SetGameMode" }

// GameModeCodec writes and reads SetGameMode as a change game state packet:
// reason byte 3, then the game mode internal id as a float32.
type GameModeCodec struct {
	gameModes InternalIDs[catalog.GameMode]
}

func NewGameModeCodec(c Catalogs) *GameModeCodec {
	return &GameModeCodec{gameModes: c.GameModes}
}

func (c *GameModeCodec) Encode(ctx *protocol.Context, msg SetGameMode) (*wire.Buffer, error) {
	id, err := internalID(c.gameModes, msg.GameMode)
	if err != nil {
		return nil, protocol.NewEncodeError(msg, errors.Wrap(err, "game mode"))
	}
	buf := ctx.Alloc().Buffer()
	_ = buf.WriteByte(changeGameModeReason)
	buf.WriteFloat(float32(id))
	return buf, nil
}

func (c *GameModeCodec) Decode(_ *protocol.Context, buf *wire.Buffer) (SetGameMode, error) {
	reason, err := buf.ReadByte()
	if err != nil {
		return SetGameMode{}, errors.Wrap(err, "reason")
	}
	if reason != changeGameModeReason {
		return SetGameMode{}, errors.Wrapf(wire.ErrMalformedValue, "change game state reason %d", reason)
	}
	value, err := buf.ReadFloat()
	if err != nil {
		return SetGameMode{}, errors.Wrap(err, "value")
	}
	id := int32(value)
	if float32(id) != value {
		return SetGameMode{}, errors.Wrapf(wire.ErrMalformedValue, "game mode value %v", value)
	}
	mode, err := byInternalID(c.gameModes, id, "game mode")
	if err != nil {
		return SetGameMode{}, err
	}
	return SetGameMode{GameMode: mode}, nil
}
