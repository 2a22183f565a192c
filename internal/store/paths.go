package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// DirName is the per-user data directory under $HOME.
const DirName = ".neuropulse"

// DBFile is the default database file name inside DirName.
const DBFile = "neuropulse.db"

// HomeDir returns ~/.neuropulse.
func HomeDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, DirName), nil
}

// DefaultDBPath returns ~/.neuropulse/neuropulse.db.
func DefaultDBPath() (string, error) {
	dir, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DBFile), nil
}
