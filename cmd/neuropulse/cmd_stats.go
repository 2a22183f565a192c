package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nvandessel/neuropulse/internal/dataset"
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show label and regime statistics for a stored run",
		Long: `Display label distributions, regime counts and category counts for a run.

Examples:
  neuropulse stats              # latest run
  neuropulse stats --run <id>`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			runID, _ := cmd.Flags().GetString("run")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			s, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			run, records, err := loadRun(context.Background(), s, runID)
			if err != nil {
				return err
			}
			summary := dataset.Summarize(records)

			out := cmd.OutOrStdout()
			if jsonOut {
				return json.NewEncoder(out).Encode(map[string]interface{}{
					"run":     run,
					"summary": summary,
				})
			}
			fmt.Fprintf(out, "Run %s (seed %d, %s)\n\n", run.ID, run.Seed, run.CreatedAt.Format("2006-01-02 15:04:05"))
			printSummary(out, summary)
			return nil
		},
	}

	cmd.Flags().String("run", "", "Run id (default: latest)")
	return cmd
}
