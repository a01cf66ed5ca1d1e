package main

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Zereker/gamewire/play"
	"github.com/Zereker/gamewire/protocol"
	"github.com/Zereker/gamewire/wire"
)

// inspection is the JSON document printed by inspect.
type inspection struct {
	State     string           `json:"state"`
	Direction string           `json:"direction"`
	PacketID  string           `json:"packet_id"`
	Message   string           `json:"message"`
	Value     protocol.Message `json:"value"`
}

type inspectOptions struct {
	state     string
	direction string
	id        string
}

func inspectCmd() *cobra.Command {
	var opts inspectOptions

	cmd := &cobra.Command{
		Use:   "inspect <hex>",
		Short: "Decode a packet and print it as JSON",
		Long: `Decode one packet and print the message as JSON.

Without --id the hex data starts with the varint packet id, as it appears
inside a frame. With --id the hex data is the payload alone.`,
		Example: `  gamewire inspect --id 0x1A 02
  gamewire inspect --direction clientbound 4b0203040506`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.state, "state", protocol.StatePlay.String(), "Protocol state")
	cmd.Flags().StringVar(&opts.direction, "direction", protocol.Serverbound.String(), "Packet direction: serverbound or clientbound")
	cmd.Flags().StringVar(&opts.id, "id", "", "Packet id, decimal or 0x-prefixed hex")

	return cmd
}

func runInspect(cmd *cobra.Command, opts inspectOptions, data string) error {
	state, ok := protocol.ParseState(opts.state)
	if !ok {
		return errors.Errorf("unknown state %q", opts.state)
	}
	dir, ok := protocol.ParseDirection(opts.direction)
	if !ok {
		return errors.Errorf("unknown direction %q", opts.direction)
	}

	raw, err := hex.DecodeString(strings.ReplaceAll(strings.TrimSpace(data), " ", ""))
	if err != nil {
		return errors.Wrap(err, "payload is not hex")
	}
	buf := wire.Wrap(raw)

	var id int32
	if opts.id != "" {
		v, err := strconv.ParseInt(opts.id, 0, 32)
		if err != nil {
			return errors.Wrapf(err, "packet id %q", opts.id)
		}
		id = int32(v)
	} else {
		if id, err = buf.ReadVarInt(); err != nil {
			return errors.Wrap(err, "packet id")
		}
	}

	registry := protocol.NewRegistry()
	play.RegisterAll(registry, play.DefaultCatalogs())

	msg, err := registry.Decode(protocol.NewContext(), state, dir, id, buf)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(inspection{
		State:     state.String(),
		Direction: dir.String(),
		PacketID:  fmt.Sprintf("0x%02X", id),
		Message:   msg.MessageName(),
		Value:     msg,
	}, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal message")
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}
