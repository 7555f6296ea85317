// Package commands implements the shopctl setup and maintenance CLI.
package commands

import (
	"storefront/internal/config" // Environment configuration
	"storefront/internal/db"     // Database connection and migrations
	"storefront/internal/logger" // Logrus setup

	"github.com/spf13/cobra" // CLI framework
	"gorm.io/gorm"           // GORM ORM library
)

var cfg *config.Config // Loaded before every command runs

// Execute runs the shopctl command tree against os.Args
func Execute() error {
	return newRoot().Execute()
}

func newRoot() *cobra.Command {
	root := &cobra.Command{
		Use:          "shopctl",
		Short:        "Setup and maintenance tasks for the storefront API",
		SilenceUsage: true, // Errors are not usage mistakes
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg = config.LoadConfig() // Load .env and environment
			logger.Setup(cfg)         // Same log format as the server
		},
	}
	root.AddCommand(migrateCmd(), seedCmd(), envCmd(), adminCmd(), checkCmd())
	return root
}

// openDB connects with the loaded configuration and migrates the schema
func openDB() (*gorm.DB, error) {
	gdb, err := db.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(gdb); err != nil {
		_ = db.Close(gdb) // Migration error wins
		return nil, err
	}
	return gdb, nil
}
