package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/assetsync/cmd/assetsync/cmd/export"
	"github.com/agentstation/assetsync/cmd/assetsync/cmd/sync"
	"github.com/agentstation/assetsync/cmd/assetsync/cmd/version"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(sync.NewCommand(a))
	rootCmd.AddCommand(export.NewCommand(a))
	rootCmd.AddCommand(version.NewCommand(a))
}
