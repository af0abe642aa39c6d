package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/contrail/ifmapd/cmd/ifmapd/commands"
	"github.com/contrail/ifmapd/logger"
)

var rootCmd = &cobra.Command{
	Use:   "ifmapd",
	Short: "ifmapd - IF-MAP metadata access point",
	Long: `ifmapd is a session-layer server for the IF-MAP protocol.

It accepts WebSocket sessions from routers and compute nodes, maintains
the shared metadata graph, filters it through a node/link-type
whitelist, and pushes INTEREST/ADVERTISED updates to each subscriber.

Available commands:
  serve   - Start the session-layer server
  config  - Inspect and validate configuration
  version - Show version information

Examples:
  ifmapd serve             # start the server
  ifmapd config show       # show current configuration
  ifmapd version           # show version information`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		if err := logger.InitializeWithVerbosity(false, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")

	rootCmd.AddCommand(commands.ServeCmd)
	rootCmd.AddCommand(commands.ConfigCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
