// Package cli wires configuration, storage and the schedule service into the
// recurring command line.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "recurring",
	Short: "Recurring financial schedules service",
	Long: `recurring stores recurring income and expense schedules, fires the ones
that are due into a ledger and answers projection, summary and audit queries.
Configuration comes from CONFIG_FILE (YAML) and environment variables.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
