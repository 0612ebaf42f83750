package main

import (
	"github.com/spf13/cobra"

	database "collegefee_backend/internals/databases"
)

func newMigrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the service tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.open(); err != nil {
				return err
			}
			if err := database.Migrate(e.db); err != nil {
				return err
			}
			e.log.Info("migration finished")
			return nil
		},
	}
}
