package main

import (
	"github.com/spf13/cobra"

	"collegefee_backend/internals/seeds"
)

func newSeedCmd(e *env) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo fee components, templates and users from a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.open(); err != nil {
				return err
			}
			sum, err := seeds.SeedFromJSON(cmd.Context(), e.db, file, e.log)
			if err != nil {
				return err
			}
			return printJSON(cmd, sum)
		},
	}
	cmd.Flags().StringVar(&file, "file", "internals/seeds/data/demo_college.json", "seed file")
	return cmd
}
