package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nvandessel/neuropulse/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage neuropulse configuration",
		Long: `View and modify neuropulse configuration settings.

Configuration is stored in ~/.neuropulse/config.yaml. NEUROPULSE_SAMPLES,
NEUROPULSE_SEED, NEUROPULSE_USER_POOL, NEUROPULSE_LOG_LEVEL and
NEUROPULSE_DB_PATH override the file.

Examples:
  neuropulse config list                      # Show all settings
  neuropulse config get generation.seed       # Get a specific setting
  neuropulse config set scoring.noise_std 0.05`,
	}

	cmd.AddCommand(
		newConfigListCmd(),
		newConfigGetCmd(),
		newConfigSetCmd(),
	)
	return cmd
}

// configField binds a dot-notation key to a field of the config.
type configField struct {
	key string
	ptr any
}

func configFields(cfg *config.NeuropulseConfig) []configField {
	sc := &cfg.Scoring
	return []configField{
		{"generation.samples", &cfg.Generation.Samples},
		{"generation.seed", &cfg.Generation.Seed},
		{"generation.user_pool", &cfg.Generation.UserPool},
		{"scoring.duration_weight", &sc.DurationWeight},
		{"scoring.unlock_weight", &sc.UnlockWeight},
		{"scoring.high_stim_weight", &sc.HighStimWeight},
		{"scoring.spike_weight", &sc.SpikeWeight},
		{"scoring.consecutive_weight", &sc.ConsecutiveWeight},
		{"scoring.duration_norm_ms", &sc.DurationNormMs},
		{"scoring.unlock_norm", &sc.UnlockNorm},
		{"scoring.consecutive_norm_minutes", &sc.ConsecutiveNormMinutes},
		{"scoring.long_usage_minutes", &sc.LongUsageMinutes},
		{"scoring.high_scroll_rate", &sc.HighScrollRate},
		{"scoring.frequent_unlock_rate", &sc.FrequentUnlockRate},
		{"scoring.late_usage_start", &sc.LateUsageStart},
		{"scoring.early_usage_end", &sc.EarlyUsageEnd},
		{"scoring.noise_std", &sc.NoiseStd},
		{"scoring.ceiling", &sc.Ceiling},
		{"scoring.healthy_below", &sc.HealthyBelow},
		{"scoring.at_risk_below", &sc.AtRiskBelow},
		{"logging.level", &cfg.Logging.Level},
		{"logging.trace_dir", &cfg.Logging.TraceDir},
		{"storage.db_path", &cfg.Storage.DBPath},
	}
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.NeuropulseConfig, key string) (interface{}, bool) {
	for _, f := range configFields(cfg) {
		if f.key != key {
			continue
		}
		switch p := f.ptr.(type) {
		case *int:
			return *p, true
		case *uint64:
			return *p, true
		case *float64:
			return *p, true
		case *string:
			return *p, true
		}
	}
	return nil, false
}

// setConfigValue sets a configuration value by dot-notation key.
func setConfigValue(cfg *config.NeuropulseConfig, key, value string) error {
	for _, f := range configFields(cfg) {
		if f.key != key {
			continue
		}
		switch p := f.ptr.(type) {
		case *int:
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("%s must be an integer: %w", key, err)
			}
			*p = n
		case *uint64:
			n, err := strconv.ParseUint(value, 10, 64)
			if err != nil {
				return fmt.Errorf("%s must be a non-negative integer: %w", key, err)
			}
			*p = n
		case *float64:
			v, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return fmt.Errorf("%s must be a number: %w", key, err)
			}
			*p = v
		case *string:
			*p = value
		}
		return nil
	}
	return fmt.Errorf("unknown configuration key: %s", key)
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return json.NewEncoder(out).Encode(cfg)
			}

			fmt.Fprintln(out, "Configuration (~/.neuropulse/config.yaml):")
			fmt.Fprintln(out)
			for _, f := range configFields(cfg) {
				v, _ := getConfigValue(cfg, f.key)
				if s, ok := v.(string); ok && s == "" {
					v = "(default)"
				}
				fmt.Fprintf(out, "  %-34s %v\n", f.key+":", v)
			}
			if cfg.Regimes != nil {
				fmt.Fprintf(out, "\n  regimes: custom table with %d ordered regimes\n", len(cfg.Regimes.Ordered))
			}
			return nil
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			key := args[0]

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			value, found := getConfigValue(cfg, key)
			if !found {
				if jsonOut {
					return json.NewEncoder(out).Encode(map[string]interface{}{
						"error": "key not found",
						"key":   key,
					})
				}
				fmt.Fprintf(out, "Unknown configuration key: %s\n", key)
				return nil
			}

			if jsonOut {
				return json.NewEncoder(out).Encode(map[string]interface{}{
					"key":   key,
					"value": value,
				})
			}
			fmt.Fprintf(out, "%s = %v\n", key, value)
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			key, value := args[0], args[1]

			path, err := config.Path()
			if err != nil {
				return err
			}
			// Start from the file alone so env overrides are not persisted.
			cfg := config.Default()
			if _, statErr := os.Stat(path); statErr == nil {
				if cfg, err = config.LoadFromFile(path); err != nil {
					return err
				}
			}

			if err := setConfigValue(cfg, key, value); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("rejected %s = %s: %w", key, value, err)
			}
			if err := cfg.Save(path); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return json.NewEncoder(out).Encode(map[string]interface{}{
					"status": "updated",
					"key":    key,
					"value":  value,
				})
			}
			fmt.Fprintf(out, "Set %s = %s\n", key, value)
			return nil
		},
	}
}
