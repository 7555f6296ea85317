package commands

import (
	"fmt" // Output formatting

	"storefront/internal/db" // Database helpers

	"github.com/spf13/cobra" // CLI framework
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gdb, err := openDB() // Opening migrates
			if err != nil {
				return err
			}
			defer db.Close(gdb)

			fmt.Fprintf(cmd.OutOrStdout(), "Schema is up to date (%s)\n", cfg.DBDriver)
			return nil
		},
	}
}
