package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nvandessel/neuropulse/internal/config"
	"github.com/nvandessel/neuropulse/internal/dataset"
	"github.com/nvandessel/neuropulse/internal/logging"
	"github.com/nvandessel/neuropulse/internal/models"
	"github.com/nvandessel/neuropulse/internal/pathutil"
	"github.com/nvandessel/neuropulse/internal/store"
)

// loadConfig loads the effective configuration and applies the global
// --db and --log-level flags on top.
func loadConfig(cmd *cobra.Command) (*config.NeuropulseConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		cfg.Storage.DBPath = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.Logging.Level = v
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg *config.NeuropulseConfig) *slog.Logger {
	return logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr())
}

func openStore(cfg *config.NeuropulseConfig) (*store.SQLiteStore, error) {
	path, err := cfg.ResolveDBPath()
	if err != nil {
		return nil, err
	}
	s, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return s, nil
}

// loadRun loads the run with the given id, or the latest run when id is empty.
func loadRun(ctx context.Context, s *store.SQLiteStore, id string) (store.Run, []models.SessionRecord, error) {
	if id == "" {
		latest, err := s.LatestRun(ctx)
		if err != nil {
			return store.Run{}, nil, fmt.Errorf("no stored runs (run 'neuropulse generate' first): %w", err)
		}
		id = latest.ID
	}
	return s.LoadRun(ctx, id)
}

// signalContext returns a context cancelled on the first interrupt.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, interruptSignals...)
}

// checkOutput rejects export destinations that would clobber the run
// database or the config file.
func checkOutput(cfg *config.NeuropulseConfig, path string) error {
	dbPath, _ := cfg.ResolveDBPath()
	configPath, _ := config.Path()
	return pathutil.ValidateOutput(path, dbPath, configPath)
}

// createFile opens an export destination for writing, creating parent
// directories.
func createFile(cfg *config.NeuropulseConfig, path string) (*os.File, error) {
	if err := checkOutput(cfg, path); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return f, nil
}

func printSummary(w io.Writer, s dataset.Summary) {
	fmt.Fprintf(w, "Sessions:        %d\n", s.Rows)
	fmt.Fprintf(w, "Mean duration:   %.1f min\n", s.MeanDurationMs/60_000)
	fmt.Fprintf(w, "Binge rate:      %.2f%%\n", s.BingeRate*100)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Dopamine spike:")
	fmt.Fprintf(w, "  0: %d\n", s.DopamineSpikes[0])
	fmt.Fprintf(w, "  1: %d\n", s.DopamineSpikes[1])
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Addiction level:")
	for i, n := range s.Addiction {
		fmt.Fprintf(w, "  %d %-10s %d\n", i, models.AddictionLevel(i).String(), n)
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Regime\tSessions")
	for _, r := range models.AllRegimes() {
		fmt.Fprintf(tw, "%s\t%d\n", r, s.Regimes[r])
	}
	tw.Flush()
	fmt.Fprintln(w)

	names := make([]string, 0, len(s.Categories))
	for name := range s.Categories {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if s.Categories[names[i]] != s.Categories[names[j]] {
			return s.Categories[names[i]] > s.Categories[names[j]]
		}
		return names[i] < names[j]
	})
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Category\tSessions")
	for _, name := range names {
		fmt.Fprintf(tw, "%s\t%d\n", name, s.Categories[name])
	}
	tw.Flush()
}
