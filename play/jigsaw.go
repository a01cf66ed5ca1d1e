package play

import (
	"github.com/pkg/errors"

	"github.com/Zereker/gamewire/protocol"
	"github.com/Zereker/gamewire/wire"
)

// GenerateJigsawStructure asks the server to generate the structure rooted
// at a jigsaw block.
type GenerateJigsawStructure struct {
	Position wire.Position `json:"position"`
	Levels   int32         `json:"levels"`
}

func (GenerateJigsawStructure) MessageName() string { return "GenerateJigsawStructure" }

// GenerateJigsawCodec writes and reads GenerateJigsawStructure: packed
// position, then int32 levels.
type GenerateJigsawCodec struct{}

func (GenerateJigsawCodec) Encode(ctx *protocol.Context, msg GenerateJigsawStructure) (*wire.Buffer, error) {
	if err := checkPosition(msg.Position); err != nil {
		return nil, protocol.NewEncodeError(msg, err)
	}
	buf := ctx.Alloc().Buffer()
	buf.WritePosition(msg.Position)
	buf.WriteInt(msg.Levels)
	return buf, nil
}

func (GenerateJigsawCodec) Decode(ctx *protocol.Context, buf *wire.Buffer) (GenerateJigsawStructure, error) {
	pos, err := protocol.PositionReader.Read(ctx, buf)
	if err != nil {
		return GenerateJigsawStructure{}, errors.Wrap(err, "position")
	}
	levels, err := buf.ReadInt()
	if err != nil {
		return GenerateJigsawStructure{}, errors.Wrap(err, "levels")
	}
	return GenerateJigsawStructure{Position: pos, Levels: levels}, nil
}

// UpdateJigsawBlock updates the settings of a jigsaw block.
type UpdateJigsawBlock struct {
	Position   wire.Position `json:"position"`
	Name       string        `json:"name"`
	Target     string        `json:"target"`
	Pool       string        `json:"pool"`
	FinalState string        `json:"final_state"`
	JointType  string        `json:"joint_type"`
}

func (UpdateJigsawBlock) MessageName() string { return "UpdateJigsawBlock" }

// UpdateJigsawCodec writes and reads UpdateJigsawBlock: packed position,
// then the name, target, pool, final state and joint type strings in that
// order.
type UpdateJigsawCodec struct{}

func (UpdateJigsawCodec) Encode(ctx *protocol.Context, msg UpdateJigsawBlock) (*wire.Buffer, error) {
	if err := checkPosition(msg.Position); err != nil {
		return nil, protocol.NewEncodeError(msg, err)
	}
	fields := []struct {
		name  string
		value string
	}{
		{"name", msg.Name},
		{"target", msg.Target},
		{"pool", msg.Pool},
		{"final state", msg.FinalState},
		{"joint type", msg.JointType},
	}
	for _, f := range fields {
		if err := checkString(f.name, f.value); err != nil {
			return nil, protocol.NewEncodeError(msg, err)
		}
	}

	buf := ctx.Alloc().Buffer()
	buf.WritePosition(msg.Position)
	for _, f := range fields {
		buf.WriteString(f.value)
	}
	return buf, nil
}

func (UpdateJigsawCodec) Decode(ctx *protocol.Context, buf *wire.Buffer) (UpdateJigsawBlock, error) {
	var msg UpdateJigsawBlock

	pos, err := protocol.PositionReader.Read(ctx, buf)
	if err != nil {
		return UpdateJigsawBlock{}, errors.Wrap(err, "position")
	}
	msg.Position = pos

	fields := []struct {
		name string
		dst  *string
	}{
		{"name", &msg.Name},
		{"target", &msg.Target},
		{"pool", &msg.Pool},
		{"final state", &msg.FinalState},
		{"joint type", &msg.JointType},
	}
	for _, f := range fields {
		s, err := protocol.StringReader.Read(ctx, buf)
		if err != nil {
			return UpdateJigsawBlock{}, errors.Wrap(err, f.name)
		}
		*f.dst = s
	}
	return msg, nil
}
