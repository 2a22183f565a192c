package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nvandessel/neuropulse/internal/dataset"
	"github.com/nvandessel/neuropulse/internal/logging"
	"github.com/nvandessel/neuropulse/internal/pathutil"
	"github.com/nvandessel/neuropulse/internal/store"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a labeled session dataset",
		Long: `Generate synthetic sessions, label them, and store the run.

The same --seed and --samples always produce the same dataset.

Examples:
  neuropulse generate                          # 15000 sessions, seed 42
  neuropulse generate --samples 1000 --seed 7
  neuropulse generate --csv sessions.csv       # also write the raw table
  neuropulse generate --jsonl run.jsonl --gzip # checksummed export
  neuropulse generate --no-store --csv out.csv # export only`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			jsonlPath, _ := cmd.Flags().GetString("jsonl")
			csvPath, _ := cmd.Flags().GetString("csv")
			gz, _ := cmd.Flags().GetBool("gzip")
			noStore, _ := cmd.Flags().GetBool("no-store")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("samples") {
				cfg.Generation.Samples, _ = cmd.Flags().GetInt("samples")
			}
			if cmd.Flags().Changed("seed") {
				cfg.Generation.Seed, _ = cmd.Flags().GetUint64("seed")
			}
			if cmd.Flags().Changed("user-pool") {
				cfg.Generation.UserPool, _ = cmd.Flags().GetInt("user-pool")
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			for _, p := range []string{jsonlPath, csvPath} {
				if p == "" {
					continue
				}
				if err := checkOutput(cfg, p); err != nil {
					return err
				}
			}

			logger := newLogger(cmd, cfg)
			traceDir, err := cfg.ResolveTraceDir()
			if err != nil {
				return err
			}
			tracer := logging.NewTraceLogger(traceDir, cfg.Logging.Level)
			defer tracer.Close()

			dc, err := cfg.Dataset()
			if err != nil {
				return err
			}
			assembler, err := dataset.NewAssembler(dc)
			if err != nil {
				return err
			}
			assembler.SetLogger(logger, tracer)

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			records, err := assembler.Generate(cfg.Generation.Samples, cfg.Generation.Seed)
			if err != nil {
				return fmt.Errorf("generation failed: %w", err)
			}

			run := store.Run{
				Seed:      cfg.Generation.Seed,
				UserPool:  cfg.Generation.UserPool,
				CreatedAt: time.Now().UTC(),
			}
			if !noStore {
				s, err := openStore(cfg)
				if err != nil {
					return err
				}
				defer s.Close()

				run, err = s.SaveRun(ctx, run, records)
				if err != nil {
					return fmt.Errorf("failed to save run: %w", err)
				}
				logger.Info("run stored", "run", run.ID, "db", pathutil.RedactPath(s.Path()))
			}

			if jsonlPath != "" {
				f, err := createFile(cfg, jsonlPath)
				if err != nil {
					return err
				}
				h, err := store.WriteJSONL(f, store.Header{
					RunID:      run.ID,
					Seed:       run.Seed,
					CreatedAt:  run.CreatedAt,
					Compressed: gz,
				}, records)
				if cerr := f.Close(); err == nil {
					err = cerr
				}
				if err != nil {
					return fmt.Errorf("failed to write %s: %w", jsonlPath, err)
				}
				logger.Info("jsonl written", "path", jsonlPath, "checksum", h.Checksum)
			}

			if csvPath != "" {
				f, err := createFile(cfg, csvPath)
				if err != nil {
					return err
				}
				err = store.WriteCSV(f, records)
				if cerr := f.Close(); err == nil {
					err = cerr
				}
				if err != nil {
					return fmt.Errorf("failed to write %s: %w", csvPath, err)
				}
				logger.Info("csv written", "path", csvPath)
			}

			summary := dataset.Summarize(records)
			out := cmd.OutOrStdout()
			if jsonOut {
				return json.NewEncoder(out).Encode(map[string]interface{}{
					"run":     run,
					"stored":  !noStore,
					"summary": summary,
				})
			}

			if noStore {
				fmt.Fprintf(out, "Generated %d sessions (seed %d, not stored)\n\n", len(records), run.Seed)
			} else {
				fmt.Fprintf(out, "Generated run %s: %d sessions (seed %d)\n\n", run.ID, len(records), run.Seed)
			}
			printSummary(out, summary)
			return nil
		},
	}

	cmd.Flags().Int("samples", 0, "Number of sessions (default from config, 15000)")
	cmd.Flags().Uint64("seed", 0, "Random seed (default from config, 42)")
	cmd.Flags().Int("user-pool", 0, "Number of distinct user ids (default from config, 1000)")
	cmd.Flags().String("jsonl", "", "Also write a checksummed JSONL export to this file")
	cmd.Flags().Bool("gzip", false, "Compress the JSONL payload")
	cmd.Flags().String("csv", "", "Also write the raw labeled table as CSV to this file")
	cmd.Flags().Bool("no-store", false, "Do not save the run to the database")

	return cmd
}
