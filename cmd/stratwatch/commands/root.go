package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	policyFile string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stratwatch",
	Short: "Stratwatch - trading statement analytics pipeline",
	Long: `Stratwatch Unified CLI

Daily analytics over futures trading statements: returns and drawdowns,
risk metrics, composite scoring and ranking, behavior anomaly detection,
threshold alerts and a dashboard snapshot.

Usage:
  go run ./cmd/stratwatch [command]

Examples:
  go run ./cmd/stratwatch pipeline run
  go run ./cmd/stratwatch pipeline run --dry-run
  go run ./cmd/stratwatch api
  go run ./cmd/stratwatch scheduler start
  go run ./cmd/stratwatch status`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&policyFile, "policy", "", "policy YAML file (default is built-in thresholds or POLICY_FILE)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
