package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command. Running it without a subcommand
// starts the HTTP server.
func NewRootCmd() *cobra.Command {
	serve := NewServeCmd()
	cmd := &cobra.Command{
		Use:   "account-server",
		Short: "User account service",
		Long: `User account service with email-verified signup, cookie sessions
and profile management backed by PostgreSQL.`,
		SilenceUsage: true,
		RunE:         serve.RunE,
	}
	cmd.AddCommand(serve, NewMigrateCmd())
	return cmd
}
