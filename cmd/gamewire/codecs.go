package main

import (
	"fmt"
	"slices"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Zereker/gamewire/play"
	"github.com/Zereker/gamewire/protocol"
)

type codecEntry struct {
	State     string `json:"state"`
	Direction string `json:"direction"`
	PacketID  string `json:"packet_id"`
	Message   string `json:"message"`
	Decodes   bool   `json:"decodes"`
}

func codecsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "codecs",
		Short: "List the registered packets",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := protocol.NewRegistry()
			play.RegisterAll(registry, play.DefaultCatalogs())

			entries := listCodecs(registry)
			out := cmd.OutOrStdout()

			if asJSON {
				data, err := json.MarshalIndent(entries, "", "  ")
				if err != nil {
					return errors.Wrap(err, "marshal codecs")
				}
				_, err = fmt.Fprintln(out, string(data))
				return err
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "STATE\tDIRECTION\tID\tMESSAGE\tDECODES")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n", e.State, e.Direction, e.PacketID, e.Message, e.Decodes)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")

	return cmd
}

// listCodecs returns every registered packet ordered by state, direction
// and id.
func listCodecs(registry *protocol.Registry) []codecEntry {
	var entries []codecEntry
	for state := protocol.StateHandshake; state <= protocol.StatePlay; state++ {
		for _, dir := range []protocol.Direction{protocol.Serverbound, protocol.Clientbound} {
			ids := registry.PacketIDs(state, dir).ToSlice()
			slices.Sort(ids)
			for _, id := range ids {
				name, _ := registry.Lookup(state, dir, id)
				entries = append(entries, codecEntry{
					State:     state.String(),
					Direction: dir.String(),
					PacketID:  fmt.Sprintf("0x%02X", id),
					Message:   name,
					Decodes:   registry.CanDecode(state, dir, id),
				})
			}
		}
	}
	return entries
}
