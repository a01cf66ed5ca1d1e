// Command gamewire serves the play protocol over TCP and inspects packets.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gamewire",
		Short: "Game protocol codec server and packet inspector",
		Long: `gamewire speaks the play state of the game protocol over TCP.

  serve    accept players and greet them with a join game packet
  inspect  decode one packet payload and print it as JSON
  codecs   list the packets the codec registry knows`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		inspectCmd(),
		codecsCmd(),
		versionCmd(),
	)

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
