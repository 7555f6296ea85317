package main

import (
	"storefront/internal/config" // Custom import path (Config)
	"storefront/internal/db"     // Custom import path (Database)
	"storefront/internal/logger" // Logging setup

	"github.com/sirupsen/logrus" // Logging
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration
	logger.Setup(cfg)

	gdb, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}
	defer db.Close(gdb)

	if err := db.Migrate(gdb); err != nil {
		logrus.Fatalf("migration failed: %v", err)
	}
}
