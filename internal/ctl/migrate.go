package ctl

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"
)

func (a *App) migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return a.withDB(ctx, func(db *sql.DB) error {
				if err := a.repos.RunMigrations(ctx, db); err != nil {
					return fmt.Errorf("migrate: %w", err)
				}
				v, err := a.repos.MigrationVersion(ctx, db)
				if err != nil {
					return fmt.Errorf("migration version: %w", err)
				}
				fmt.Fprintf(a.out, "schema up to date (version %d)\n", v)
				return nil
			})
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return a.withDB(ctx, func(db *sql.DB) error {
				v, err := a.repos.MigrationVersion(ctx, db)
				if err != nil {
					return fmt.Errorf("migration version: %w", err)
				}
				fmt.Fprintf(a.out, "schema version %d\n", v)
				return nil
			})
		},
	})
	return cmd
}
