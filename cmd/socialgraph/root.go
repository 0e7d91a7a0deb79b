package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for the socialgraph CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "socialgraph",
		Short: "Accounts, credentials and the follow graph",
		Long: `socialgraph serves the user account API: registration, login, password
reset, profiles and the follow graph. Configuration is read from the
environment.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
