package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openRawDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "raw.db")+"?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestInitSchema_FreshAndIdempotent(t *testing.T) {
	db := openRawDB(t)
	ctx := context.Background()

	require.NoError(t, InitSchema(ctx, db))
	require.NoError(t, InitSchema(ctx, db))

	for _, table := range []string{"runs", "sessions", "schema_version"} {
		var name string
		err := db.QueryRowContext(ctx,
			`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s", table)
	}

	var rows int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_version`).Scan(&rows))
	assert.Equal(t, 1, rows)
}

func TestInitSchema_RejectsNewerVersion(t *testing.T) {
	db := openRawDB(t)
	ctx := context.Background()
	require.NoError(t, InitSchema(ctx, db))

	_, err := db.ExecContext(ctx,
		`INSERT INTO schema_version (version, applied_at) VALUES (?, datetime('now'))`, SchemaVersion+1)
	require.NoError(t, err)

	err = InitSchema(ctx, db)
	assert.ErrorContains(t, err, "newer than supported")
}

func TestValidateIntegrity(t *testing.T) {
	db := openRawDB(t)
	ctx := context.Background()
	require.NoError(t, InitSchema(ctx, db))
	assert.NoError(t, ValidateIntegrity(ctx, db))
}
