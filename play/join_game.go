package play

import (
	"github.com/pkg/errors"

	"github.com/Zereker/gamewire/catalog"
	"github.com/Zereker/gamewire/protocol"
	"github.com/Zereker/gamewire/wire"
)

const (
	// hardcoreFlag is OR'd into the game mode byte of a hardcore world.
	hardcoreFlag = 0x8
	// maxPlayerListSize is the largest player list size the single wire byte
	// can carry; larger values are clamped.
	maxPlayerListSize = 255

	levelTypeFlat    = "flat"
	levelTypeDefault = "default"
)

// PlayerJoinGame is sent once the player enters the world.
type PlayerJoinGame struct {
	EntityID       int32                 `json:"entity_id"`
	GameMode       catalog.GameMode      `json:"game_mode"`
	Hardcore       bool                  `json:"hardcore"`
	Dimension      catalog.DimensionType `json:"dimension"`
	PlayerListSize int32                 `json:"player_list_size"`
	LowHorizon     bool                  `json:"low_horizon"`
	ViewDistance   int32                 `json:"view_distance"`
	ReducedDebug   bool                  `json:"reduced_debug"`
}

func (PlayerJoinGame) MessageName() string { return "PlayerJoinGame" }

// JoinGameCodec writes and reads PlayerJoinGame:
//
//	int32   entity id
//	byte    game mode internal id, | 0x8 when hardcore
//	int32   dimension internal id
//	byte    min(player list size, 255)
//	string  "flat" for a low horizon, else "default"
//	varint  view distance
//	bool    reduced debug info
//
// Both directions store the entity id under PlayerEntityID.
type JoinGameCodec struct {
	catalogs Catalogs
}

// NewJoinGameCodec creates a join game codec resolving ids through c.
func NewJoinGameCodec(c Catalogs) *JoinGameCodec {
	return &JoinGameCodec{catalogs: c}
}

func (c *JoinGameCodec) Encode(ctx *protocol.Context, msg PlayerJoinGame) (*wire.Buffer, error) {
	gameMode, err := internalID(c.catalogs.GameModes, msg.GameMode)
	if err != nil {
		return nil, protocol.NewEncodeError(msg, errors.Wrap(err, "game mode"))
	}
	if gameMode < 0 || gameMode >= hardcoreFlag {
		return nil, protocol.NewEncodeError(msg, errors.Errorf("game mode id %d overlaps the hardcore flag", gameMode))
	}
	dimension, err := internalID(c.catalogs.Dimensions, msg.Dimension)
	if err != nil {
		return nil, protocol.NewEncodeError(msg, errors.Wrap(err, "dimension"))
	}
	if msg.PlayerListSize < 0 {
		return nil, protocol.NewEncodeError(msg, errors.Errorf("negative player list size %d", msg.PlayerListSize))
	}

	protocol.Attr(ctx, PlayerEntityID).Set(msg.EntityID)

	mode := byte(gameMode)
	if msg.Hardcore {
		mode |= hardcoreFlag
	}
	levelType := levelTypeDefault
	if msg.LowHorizon {
		levelType = levelTypeFlat
	}

	buf := ctx.Alloc().Buffer()
	buf.WriteInt(msg.EntityID)
	_ = buf.WriteByte(mode)
	buf.WriteInt(dimension)
	_ = buf.WriteByte(byte(min(msg.PlayerListSize, maxPlayerListSize)))
	buf.WriteString(levelType)
	buf.WriteVarInt(msg.ViewDistance)
	buf.WriteBool(msg.ReducedDebug)
	return buf, nil
}

func (c *JoinGameCodec) Decode(ctx *protocol.Context, buf *wire.Buffer) (PlayerJoinGame, error) {
	var msg PlayerJoinGame

	entityID, err := buf.ReadInt()
	if err != nil {
		return msg, errors.Wrap(err, "entity id")
	}
	mode, err := buf.ReadByte()
	if err != nil {
		return msg, errors.Wrap(err, "game mode")
	}
	gameMode, err := byInternalID(c.catalogs.GameModes, int32(mode&^hardcoreFlag), "game mode")
	if err != nil {
		return msg, err
	}
	dimensionID, err := buf.ReadInt()
	if err != nil {
		return msg, errors.Wrap(err, "dimension")
	}
	dimension, err := byInternalID(c.catalogs.Dimensions, dimensionID, "dimension")
	if err != nil {
		return msg, err
	}
	playerListSize, err := buf.ReadByte()
	if err != nil {
		return msg, errors.Wrap(err, "player list size")
	}
	levelType, err := buf.ReadString()
	if err != nil {
		return msg, errors.Wrap(err, "level type")
	}
	viewDistance, err := buf.ReadVarInt()
	if err != nil {
		return msg, errors.Wrap(err, "view distance")
	}
	reducedDebug, err := buf.ReadBool()
	if err != nil {
		return msg, errors.Wrap(err, "reduced debug")
	}

	protocol.Attr(ctx, PlayerEntityID).Set(entityID)

	return PlayerJoinGame{
		EntityID:       entityID,
		GameMode:       gameMode,
		Hardcore:       mode&hardcoreFlag != 0,
		Dimension:      dimension,
		PlayerListSize: int32(playerListSize),
		LowHorizon:     levelType == levelTypeFlat,
		ViewDistance:   viewDistance,
		ReducedDebug:   reducedDebug,
	}, nil
}
