// Package cli implements the esp command-line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "esp",
	Short: "Estimate Pro - LLM-assisted effort and cost estimation",
	Long: `Estimate Pro (esp) estimates software project effort and cost by running
parallel business, quality, and constraints evaluations over a deliverable
list, generating a per-deliverable estimate, and refining it through a
bounded feedback loop.

Totals shown anywhere are recomputed from line items; model-provided
arithmetic is never trusted.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("esp %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
