package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "neuropulse",
		Short: "Synthetic phone-usage sessions with wellness labels",
		Long: `neuropulse generates reproducible synthetic smartphone sessions and labels
each one with a dopamine spike flag and an addiction risk level.

Runs are stored in a local SQLite database and can be exported as JSONL,
CSV, or an Arrow feature matrix for model training.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("db", "", "SQLite database path (default ~/.neuropulse/neuropulse.db)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: warn, info, debug, trace")

	rootCmd.AddCommand(
		newVersionCmd(),
		newGenerateCmd(),
		newEngineerCmd(),
		newStatsCmd(),
		newRunsCmd(),
		newConfigCmd(),
	)
	return rootCmd
}
