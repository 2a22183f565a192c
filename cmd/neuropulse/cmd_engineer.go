package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nvandessel/neuropulse/internal/features"
)

func newEngineerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "engineer",
		Short: "Export a stored run as an Arrow feature matrix",
		Long: `Engineer the 16-column feature matrix and both targets for a stored run
and write them as an Arrow IPC stream.

Examples:
  neuropulse engineer --out features.arrow           # latest run
  neuropulse engineer --run <id> --out f.arrow --scale`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			runID, _ := cmd.Flags().GetString("run")
			outPath, _ := cmd.Flags().GetString("out")
			scale, _ := cmd.Flags().GetBool("scale")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := newLogger(cmd, cfg)

			s, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			run, records, err := loadRun(context.Background(), s, runID)
			if err != nil {
				return err
			}

			ts := features.BuildTrainingSet(records)
			if scale {
				scaler, err := features.FitStandardScaler(ts.Features)
				if err != nil {
					return fmt.Errorf("failed to fit scaler: %w", err)
				}
				var tr features.Transformer = scaler
				if ts.Features, err = tr.Transform(ts.Features); err != nil {
					return fmt.Errorf("failed to scale features: %w", err)
				}
				logger.Debug("features standardized", "columns", ts.Features.Cols())
			}

			f, err := createFile(cfg, outPath)
			if err != nil {
				return err
			}
			err = features.WriteArrow(f, ts)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return fmt.Errorf("failed to write %s: %w", outPath, err)
			}
			logger.Info("features written", "run", run.ID, "path", outPath)

			out := cmd.OutOrStdout()
			if jsonOut {
				return json.NewEncoder(out).Encode(map[string]interface{}{
					"run":     run.ID,
					"path":    outPath,
					"rows":    ts.Len(),
					"columns": ts.Features.Columns(),
					"scaled":  scale,
				})
			}
			fmt.Fprintf(out, "Wrote %d rows x %d features (+2 targets) from run %s to %s\n",
				ts.Len(), ts.Features.Cols(), run.ID, outPath)
			return nil
		},
	}

	cmd.Flags().String("run", "", "Run id (default: latest)")
	cmd.Flags().String("out", "", "Output Arrow file")
	cmd.Flags().Bool("scale", false, "Standardize each feature column")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}
