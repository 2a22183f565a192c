package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvandessel/neuropulse/internal/config"
	"github.com/nvandessel/neuropulse/internal/dataset"
	"github.com/nvandessel/neuropulse/internal/features"
	"github.com/nvandessel/neuropulse/internal/store"
)

// isolateHome points HOME at a temp directory and clears NEUROPULSE_*
// overrides so tests never touch a real ~/.neuropulse.
func isolateHome(t *testing.T) string {
	t.Helper()
	home := filepath.Join(t.TempDir(), "home")
	require.NoError(t, os.MkdirAll(home, 0700))
	t.Setenv("HOME", home)
	for _, k := range []string{
		"NEUROPULSE_SAMPLES", "NEUROPULSE_SEED", "NEUROPULSE_USER_POOL",
		"NEUROPULSE_LOG_LEVEL", "NEUROPULSE_DB_PATH",
	} {
		t.Setenv(k, "")
	}
	return home
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

type generateOutput struct {
	Run     store.Run       `json:"run"`
	Stored  bool            `json:"stored"`
	Summary dataset.Summary `json:"summary"`
}

func TestVersionCmd(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "neuropulse version "+version)

	out, err = runCLI(t, "version", "--json")
	require.NoError(t, err)
	var v map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Equal(t, version, v["version"])
}

func TestGenerate_StoreAndExports(t *testing.T) {
	isolateHome(t)
	dir := t.TempDir()
	db := filepath.Join(dir, "runs.db")
	csvPath := filepath.Join(dir, "out", "sessions.csv")
	jsonlPath := filepath.Join(dir, "out", "run.jsonl")

	out, err := runCLI(t, "generate", "--json", "--log-level", "warn",
		"--db", db, "--samples", "50", "--seed", "7",
		"--csv", csvPath, "--jsonl", jsonlPath, "--gzip")
	require.NoError(t, err)

	var got generateOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.True(t, got.Stored)
	assert.NotEmpty(t, got.Run.ID)
	assert.Equal(t, uint64(7), got.Run.Seed)
	assert.Equal(t, 50, got.Run.Samples)
	assert.Equal(t, 50, got.Summary.Rows)

	want, err := dataset.Generate(50, 7)
	require.NoError(t, err)

	t.Run("jsonl matches a direct generation", func(t *testing.T) {
		f, err := os.Open(jsonlPath)
		require.NoError(t, err)
		defer f.Close()

		h, records, err := store.ReadJSONL(f)
		require.NoError(t, err)
		assert.True(t, h.Compressed)
		assert.Equal(t, got.Run.ID, h.RunID)
		assert.NotEqual(t, got.Run.Checksum, h.Checksum, "gzip export checksums the compressed bytes")
		assert.Equal(t, want, records)
	})

	t.Run("csv has header plus one row per session", func(t *testing.T) {
		f, err := os.Open(csvPath)
		require.NoError(t, err)
		defer f.Close()

		rows, err := csv.NewReader(f).ReadAll()
		require.NoError(t, err)
		assert.Len(t, rows, 51)
	})

	t.Run("stored run round-trips", func(t *testing.T) {
		s, err := store.Open(db)
		require.NoError(t, err)
		defer s.Close()

		_, records, err := s.LoadRun(t.Context(), got.Run.ID)
		require.NoError(t, err)
		assert.Equal(t, want, records)
	})
}

func TestGenerate_NoStore(t *testing.T) {
	isolateHome(t)
	db := filepath.Join(t.TempDir(), "runs.db")

	out, err := runCLI(t, "generate", "--json", "--log-level", "warn",
		"--db", db, "--samples", "10", "--no-store")
	require.NoError(t, err)

	var got generateOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.False(t, got.Stored)
	assert.Empty(t, got.Run.ID)
	assert.Equal(t, 10, got.Summary.Rows)

	_, statErr := os.Stat(db)
	assert.True(t, os.IsNotExist(statErr), "no database should be created")
}

func TestGenerate_RejectsBadInput(t *testing.T) {
	isolateHome(t)
	db := filepath.Join(t.TempDir(), "runs.db")

	_, err := runCLI(t, "generate", "--db", db, "--samples", "-1")
	assert.Error(t, err)

	_, err = runCLI(t, "generate", "--db", db, "--samples", "5", "--user-pool", "0")
	assert.Error(t, err)

	t.Setenv("NEUROPULSE_SEED", "not-a-number")
	_, err = runCLI(t, "generate", "--db", db, "--samples", "5")
	assert.Error(t, err)
}

func TestRunsStatsEngineer(t *testing.T) {
	isolateHome(t)
	dir := t.TempDir()
	db := filepath.Join(dir, "runs.db")

	_, err := runCLI(t, "stats", "--db", db)
	assert.Error(t, err, "stats without runs")

	for _, seed := range []string{"1", "2"} {
		_, err := runCLI(t, "generate", "--log-level", "warn", "--db", db, "--samples", "30", "--seed", seed)
		require.NoError(t, err)
	}

	out, err := runCLI(t, "runs", "--json", "--db", db)
	require.NoError(t, err)
	var listed struct {
		Runs []store.Run `json:"runs"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	require.Len(t, listed.Runs, 2)

	out, err = runCLI(t, "stats", "--json", "--db", db, "--run", listed.Runs[1].ID)
	require.NoError(t, err)
	var stats struct {
		Run     store.Run       `json:"run"`
		Summary dataset.Summary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, listed.Runs[1].ID, stats.Run.ID)
	assert.Equal(t, 30, stats.Summary.Rows)
	assert.Equal(t, 30, stats.Summary.DopamineSpikes[0]+stats.Summary.DopamineSpikes[1])

	out, err = runCLI(t, "stats", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Addiction level:")

	arrowPath := filepath.Join(dir, "features.arrow")
	_, err = runCLI(t, "engineer", "--log-level", "warn", "--db", db, "--out", arrowPath, "--scale")
	require.NoError(t, err)

	f, err := os.Open(arrowPath)
	require.NoError(t, err)
	defer f.Close()
	ts, err := features.ReadArrow(f)
	require.NoError(t, err)
	assert.Equal(t, 30, ts.Len())
	assert.Equal(t, features.NumColumns, ts.Features.Cols())
	assert.Equal(t, features.Columns, ts.Features.Columns())

	_, err = runCLI(t, "runs", "delete", listed.Runs[0].ID, "--db", db)
	require.NoError(t, err)
	out, err = runCLI(t, "runs", "--json", "--db", db)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	assert.Len(t, listed.Runs, 1)

	_, err = runCLI(t, "engineer", "--db", db)
	assert.Error(t, err, "--out is required")

	_, err = runCLI(t, "engineer", "--db", db, "--out", db)
	assert.Error(t, err, "must not overwrite the database")

	_, err = runCLI(t, "generate", "--db", db, "--samples", "5", "--csv", db)
	assert.Error(t, err)
	out, err = runCLI(t, "runs", "--json", "--db", db)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	assert.Len(t, listed.Runs, 1, "a rejected export path must fail before anything is stored")
}

func TestConfigCmd(t *testing.T) {
	home := isolateHome(t)

	out, err := runCLI(t, "config", "get", "generation.seed")
	require.NoError(t, err)
	assert.Equal(t, "generation.seed = 42\n", out)

	_, err = runCLI(t, "config", "set", "generation.seed", "9")
	require.NoError(t, err)
	_, err = runCLI(t, "config", "set", "scoring.noise_std", "0.05")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(home, ".neuropulse", "config.yaml"))

	out, err = runCLI(t, "config", "get", "generation.seed", "--json")
	require.NoError(t, err)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 9.0, got["value"])

	out, err = runCLI(t, "config", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "scoring.noise_std:")
	assert.Contains(t, out, "0.05")

	tests := []struct {
		name string
		args []string
	}{
		{"unknown key", []string{"config", "set", "nope", "1"}},
		{"not a number", []string{"config", "set", "generation.samples", "many"}},
		{"negative seed", []string{"config", "set", "generation.seed", "-3"}},
		{"fails validation", []string{"config", "set", "scoring.ceiling", "2"}},
		{"bad level", []string{"config", "set", "logging.level", "loud"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			assert.Error(t, err)
		})
	}

	out, err = runCLI(t, "config", "get", "scoring.ceiling")
	require.NoError(t, err)
	assert.Equal(t, "scoring.ceiling = 0.95\n", out, "rejected values must not be saved")
}

func TestConfigValueHelpers(t *testing.T) {
	cfg := config.Default()
	for _, f := range configFields(cfg) {
		_, ok := getConfigValue(cfg, f.key)
		assert.True(t, ok, f.key)
	}
	_, ok := getConfigValue(cfg, "scoring")
	assert.False(t, ok)

	require.NoError(t, setConfigValue(cfg, "storage.db_path", "/tmp/x.db"))
	assert.Equal(t, "/tmp/x.db", cfg.Storage.DBPath)
	require.NoError(t, setConfigValue(cfg, "scoring.long_usage_minutes", "45"))
	assert.Equal(t, 45, cfg.Scoring.LongUsageMinutes)
}
