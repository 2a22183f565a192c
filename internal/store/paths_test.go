package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultDBPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	dir, err := HomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".neuropulse"), dir)

	path, err := DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".neuropulse", "neuropulse.db"), path)
}
