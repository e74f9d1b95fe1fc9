package main

import (
	"github.com/spf13/cobra"

	"github.com/hongminglow/account-be/internal/config"
	"github.com/hongminglow/account-be/internal/storage/postgres"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	var statusOnly bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Apply all pending schema migrations to the database named by DATABASE_URL.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			databaseURL, err := config.LoadDatabaseURL()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			if !statusOnly {
				cmd.Println("Running migrations...")
				if err := postgres.Migrate(ctx, databaseURL); err != nil {
					return err
				}
			}

			version, err := postgres.MigrationVersion(ctx, databaseURL)
			if err != nil {
				return err
			}
			cmd.Printf("Schema version: %d\n", version)
			return nil
		},
	}
	cmd.Flags().BoolVar(&statusOnly, "status", false, "print the current schema version without migrating")
	return cmd
}
