package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "equitylens",
	Short: "EquityLens - multi-pillar equity scoring engine",
	Long: `EquityLens Unified CLI

Fetches fundamentals and prices, normalizes them into canonical
metrics and scores each ticker across eight capped pillars.

Usage:
  go run ./cmd/equitylens [command]

Examples:
  go run ./cmd/equitylens api
  go run ./cmd/equitylens score AAPL
  go run ./cmd/equitylens refresh
  go run ./cmd/equitylens status
  go run ./cmd/equitylens test-db
  go run ./cmd/equitylens test-logger`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
