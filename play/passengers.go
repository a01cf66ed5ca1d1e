package play

import (
	"github.com/pkg/errors"

	"github.com/Zereker/gamewire/protocol"
	"github.com/Zereker/gamewire/wire"
)

// SetEntityPassengers replaces the passengers riding an entity.
// PassengerIDs must not be modified once the message is built.
type SetEntityPassengers struct {
	EntityID     int32   `json:"entity_id"`
	PassengerIDs []int32 `json:"passenger_ids"`
}

// NewSetEntityPassengers builds the message from a copy of passengerIDs.
func NewSetEntityPassengers(entityID int32, passengerIDs ...int32) SetEntityPassengers {
	ids := make([]int32, len(passengerIDs))
	copy(ids, passengerIDs)
	return SetEntityPassengers{EntityID: entityID, PassengerIDs: ids}
}

func (SetEntityPassengers) MessageName() string { return "SetEntityPassengers" }

// PassengersCodec writes and reads SetEntityPassengers: varint entity id,
// varint passenger count, then one varint per passenger.
type PassengersCodec struct{}

func (PassengersCodec) Encode(ctx *protocol.Context, msg SetEntityPassengers) (*wire.Buffer, error) {
	buf := ctx.Alloc().Buffer()
	buf.WriteVarInt(msg.EntityID)
	buf.WriteVarInt(int32(len(msg.PassengerIDs)))
	for _, id := range msg.PassengerIDs {
		buf.WriteVarInt(id)
	}
	return buf, nil
}

func (PassengersCodec) Decode(_ *protocol.Context, buf *wire.Buffer) (SetEntityPassengers, error) {
	entityID, err := buf.ReadVarInt()
	if err != nil {
		return SetEntityPassengers{}, errors.Wrap(err, "entity id")
	}
	count, err := buf.ReadVarInt()
	if err != nil {
		return SetEntityPassengers{}, errors.Wrap(err, "passenger count")
	}
	if count < 0 {
		return SetEntityPassengers{}, errors.Wrapf(wire.ErrMalformedValue, "negative passenger count %d", count)
	}
	// Every varint takes at least one byte, so a larger count cannot be
	// satisfied and is rejected before allocating.
	if int(count) > buf.ReadableBytes() {
		return SetEntityPassengers{}, errors.Wrapf(wire.ErrBufferUnderflow,
			"%d passengers announced, %d bytes readable", count, buf.ReadableBytes())
	}

	ids := make([]int32, count)
	for i := range ids {
		if ids[i], err = buf.ReadVarInt(); err != nil {
			return SetEntityPassengers{}, errors.Wrapf(err, "passenger %d", i)
		}
	}
	return SetEntityPassengers{EntityID: entityID, PassengerIDs: ids}, nil
}
