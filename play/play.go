// Package play holds the messages and codecs of the play protocol state.
//
// Packet ids follow the 1.16.1 numbering. Catalog values (game modes,
// dimension kinds) are written as their internal ids, looked up through the
// InternalIDs registries handed to the codecs.
package play

import (
	"github.com/pkg/errors"

	"github.com/Zereker/gamewire/catalog"
	"github.com/Zereker/gamewire/protocol"
	"github.com/Zereker/gamewire/wire"
)

// Clientbound packet ids.
const (
	EntityStatusID        int32 = 0x1A
	ChangeGameStateID     int32 = 0x1E
	JoinGameID            int32 = 0x25
	SetEntityPassengersID int32 = 0x4B
)

// Serverbound packet ids.
const (
	GenerateJigsawStructureID int32 = 0x0F
	PlayerMovementAndLookID   int32 = 0x13
	PlayerAbilitiesID         int32 = 0x1A
	UpdateJigsawBlockID       int32 = 0x28
)

// PlayerEntityID holds the entity id of the player controlled by the
// connection. The join game codec stores it; entity status codecs read it.
var PlayerEntityID = protocol.NewAttributeKey[int32]("player-entity-id")

// InternalIDs resolves catalog values to wire ids and back.
// *catalog.Registry implements it.
type InternalIDs[T catalog.Type] interface {
	InternalID(v T) (int32, bool)
	ByInternalID(id int32) (T, bool)
}

// Catalogs bundles the registries the play codecs need.
type Catalogs struct {
	GameModes  InternalIDs[catalog.GameMode]
	Dimensions InternalIDs[catalog.DimensionType]
}

// DefaultCatalogs returns registries holding the vanilla values.
func DefaultCatalogs() Catalogs {
	return Catalogs{
		GameModes:  catalog.DefaultGameModes(),
		Dimensions: catalog.DefaultDimensions(),
	}
}

func internalID[T catalog.Type](ids InternalIDs[T], v T) (int32, error) {
	id, ok := ids.InternalID(v)
	if !ok {
		return 0, errors.Wrapf(protocol.ErrNoInternalID, "%q", v.Key())
	}
	return id, nil
}

func byInternalID[T catalog.Type](ids InternalIDs[T], id int32, what string) (T, error) {
	v, ok := ids.ByInternalID(id)
	if !ok {
		return v, errors.Wrapf(wire.ErrMalformedValue, "unknown %s internal id %d", what, id)
	}
	return v, nil
}

// checkString rejects strings ReadString would refuse on the other side.
func checkString(field, s string) error {
	if len(s) > wire.MaxStringBytes {
		return errors.Errorf("%s is %d bytes, longer than %d", field, len(s), wire.MaxStringBytes)
	}
	return nil
}

func checkPosition(p wire.Position) error {
	if !p.InRange() {
		return errors.Errorf("position %s does not fit the packed form", p)
	}
	return nil
}
