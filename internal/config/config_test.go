package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvandessel/neuropulse/internal/models"
	"github.com/nvandessel/neuropulse/internal/regime"
)

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	for _, k := range []string{
		"NEUROPULSE_SAMPLES", "NEUROPULSE_SEED", "NEUROPULSE_USER_POOL",
		"NEUROPULSE_LOG_LEVEL", "NEUROPULSE_DB_PATH",
	} {
		t.Setenv(k, "")
	}
	return home
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 15000, cfg.Generation.Samples)
	assert.Equal(t, uint64(42), cfg.Generation.Seed)
	assert.Equal(t, 1000, cfg.Generation.UserPool)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Nil(t, cfg.Regimes)
	require.NoError(t, cfg.Validate())
}

func TestLoad_NoFile(t *testing.T) {
	isolateHome(t)
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FileAndEnv(t *testing.T) {
	home := isolateHome(t)
	dir := filepath.Join(home, ".neuropulse")
	require.NoError(t, os.MkdirAll(dir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(`
generation:
  samples: 500
  seed: 7
scoring:
  noise_std: 0.05
storage:
  db_path: ~/data/np.db
`), 0600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.Generation.Samples)
	assert.Equal(t, uint64(7), cfg.Generation.Seed)
	assert.Equal(t, 1000, cfg.Generation.UserPool, "unset keys keep defaults")
	assert.Equal(t, 0.05, cfg.Scoring.NoiseStd)
	assert.Equal(t, 0.25, cfg.Scoring.DurationWeight)
	assert.Equal(t, filepath.Join(home, "data", "np.db"), cfg.Storage.DBPath)

	t.Setenv("NEUROPULSE_SAMPLES", "99")
	t.Setenv("NEUROPULSE_SEED", "18446744073709551615")
	t.Setenv("NEUROPULSE_USER_POOL", "5")
	t.Setenv("NEUROPULSE_LOG_LEVEL", "debug")
	t.Setenv("NEUROPULSE_DB_PATH", "/tmp/x.db")

	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, 99, cfg.Generation.Samples)
	assert.Equal(t, ^uint64(0), cfg.Generation.Seed)
	assert.Equal(t, 5, cfg.Generation.UserPool)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "/tmp/x.db", cfg.Storage.DBPath)
}

func TestLoad_MalformedEnv(t *testing.T) {
	isolateHome(t)
	t.Setenv("NEUROPULSE_SEED", "-1")
	_, err := Load()
	assert.ErrorContains(t, err, "NEUROPULSE_SEED")
}

func TestLoadFromFile_Errors(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("generation: [not, a, map]"), 0600))
	_, err = LoadFromFile(bad)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*NeuropulseConfig)
	}{
		{"zero samples", func(c *NeuropulseConfig) { c.Generation.Samples = 0 }},
		{"negative user pool", func(c *NeuropulseConfig) { c.Generation.UserPool = -1 }},
		{"bad scoring", func(c *NeuropulseConfig) { c.Scoring.Ceiling = 2 }},
		{"bad log level", func(c *NeuropulseConfig) { c.Logging.Level = "loud" }},
		{"bad regimes", func(c *NeuropulseConfig) {
			ordered, fallback := regime.DefaultDescriptors()
			ordered[0].CategoryWeights[0] += 0.5
			c.Regimes = &RegimesConfig{Ordered: ordered, Fallback: fallback}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, models.ErrInvalidArgument), "%v", err)
		})
	}
}

func TestSaveAndReload_CustomRegimes(t *testing.T) {
	ordered, fallback := regime.DefaultDescriptors()
	ordered[0], ordered[2] = ordered[2], ordered[0]

	cfg := Default()
	cfg.Regimes = &RegimesConfig{Ordered: ordered, Fallback: fallback}
	require.NoError(t, cfg.Validate())

	path := filepath.Join(t.TempDir(), "sub", FileName)
	require.NoError(t, cfg.Save(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	table, err := loaded.Table()
	require.NoError(t, err)
	assert.Equal(t, ordered[0].Regime, table.Descriptors()[0].Regime)

	dc, err := loaded.Dataset()
	require.NoError(t, err)
	assert.Equal(t, 1000, dc.UserPool)
	assert.NotNil(t, dc.Table)
}

func TestResolvePaths(t *testing.T) {
	home := isolateHome(t)
	cfg := Default()

	db, err := cfg.ResolveDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".neuropulse", "neuropulse.db"), db)

	dir, err := cfg.ResolveTraceDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".neuropulse"), dir)

	cfg.Storage.DBPath = "/data/x.db"
	cfg.Logging.TraceDir = "/data/traces"
	db, _ = cfg.ResolveDBPath()
	dir, _ = cfg.ResolveTraceDir()
	assert.Equal(t, "/data/x.db", db)
	assert.Equal(t, "/data/traces", dir)
}
