package cmd

import (
	"finance-ledger/internal/database"

	"github.com/spf13/cobra"
)

// NewMigrateCmd creates or updates the schema and exits.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := database.AutoMigrate(a.db); err != nil {
				return err
			}
			a.log.Info("migrations completed", "driver", a.cfg.Database.Driver)
			return nil
		},
	}
}
