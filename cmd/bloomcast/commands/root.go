package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bloomcast",
	Short: "Bloomcast - flower retail forecast service",
	Long: `Bloomcast Unified CLI

Forecast aggregation service for flower retail: predicted revenue and
profit per flower over a date window, rankings, quantity advice and a
narrated dashboard assistant.

Usage:
  go run ./cmd/bloomcast [command]

Examples:
  go run ./cmd/bloomcast api
  go run ./cmd/bloomcast forecast --metric revenue --start 2024-11-01 --end 2024-11-30
  go run ./cmd/bloomcast chat "Which flower earns the most next month?"
  go run ./cmd/bloomcast status`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
