package main

import (
	"fmt"
	"os"

	"github.com/bizsuite/bizsuite/internal/config"
	"github.com/bizsuite/bizsuite/internal/logging"
	"github.com/spf13/cobra"
)

var cfg config.Config

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "bizsuite",
	Short: "CRM contacts API and module dashboard",
	Long: `bizsuite serves the CRM contacts API, manages its database schema and
aggregates statistics from the business module APIs.

Configuration is read from the environment (and a .env file when present).`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		logging.Init(cfg.LogLevel)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(dashboardCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
