package main

import (
	"fmt"

	"github.com/bizsuite/bizsuite/internal/db"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate <up|down|version|force N>",
	Short: "Apply or inspect the database schema",
	Long: `Run the embedded SQL migrations against the configured database.

  up        apply all pending migrations
  down      roll back every migration
  version   print the current schema version
  force N   mark version N as applied without running it`,
	Args:      cobra.RangeArgs(1, 2),
	ValidArgs: []string{"up", "down", "version", "force"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.ResolveSecrets(cmd.Context()); err != nil {
			return fmt.Errorf("resolve secrets: %w", err)
		}
		return db.RunMigrate(cfg.Database.DSN(), args[0], args[1:])
	},
}
