// Package pathutil checks export destinations before neuropulse writes to them.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// RedactPath reduces a full path to .../<parent>/<basename> for log and
// error messages. "/home/user/.neuropulse/neuropulse.db" becomes
// ".../.neuropulse/neuropulse.db".
func RedactPath(path string) string {
	if path == "" {
		return ""
	}
	cleaned := filepath.Clean(path)
	parent := filepath.Base(filepath.Dir(cleaned))
	if parent == "." || parent == string(filepath.Separator) {
		return filepath.Base(cleaned)
	}
	return ".../" + parent + "/" + filepath.Base(cleaned)
}

// maxLinks bounds symlink chains followed by Resolve.
const maxLinks = 40

// sqliteSidecars are the files SQLite keeps next to a database.
var sqliteSidecars = []string{"-wal", "-shm", "-journal"}

// Resolve returns the absolute, symlink-resolved form of path. Symlinks are
// followed on the final component too, including dangling ones. The file
// and any number of its parent directories may not exist yet.
func Resolve(path string) (string, error) {
	return resolve(path, 0)
}

func resolve(path string, depth int) (string, error) {
	if depth > maxLinks {
		return "", fmt.Errorf("too many levels of symbolic links: %s", RedactPath(path))
	}
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("cannot resolve absolute path: %w", err)
	}
	dir, err := resolveExistingParent(filepath.Dir(abs))
	if err != nil {
		return "", err
	}
	full := filepath.Join(dir, filepath.Base(abs))

	info, err := os.Lstat(full)
	if err != nil || info.Mode()&os.ModeSymlink == 0 {
		return full, nil
	}
	target, err := os.Readlink(full)
	if err != nil {
		return "", fmt.Errorf("cannot read link %s: %w", RedactPath(full), err)
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(dir, target)
	}
	return resolve(target, depth+1)
}

// ValidateOutput checks that path is a usable export destination: not
// empty, no null bytes, not a directory, and not one of the protected
// files (the run database, the config file). Protected entries that are
// empty are ignored.
func ValidateOutput(path string, protected ...string) error {
	if path == "" {
		return fmt.Errorf("output path is empty")
	}
	if strings.ContainsRune(path, '\x00') {
		return fmt.Errorf("output path contains null byte")
	}

	resolved, err := Resolve(path)
	if err != nil {
		return fmt.Errorf("output path %q: %w", RedactPath(path), err)
	}
	if info, err := os.Stat(resolved); err == nil && info.IsDir() {
		return fmt.Errorf("output path %q is a directory", RedactPath(path))
	}

	for _, p := range protected {
		if p == "" {
			continue
		}
		r, err := Resolve(p)
		if err != nil {
			continue
		}
		if r == resolved {
			return fmt.Errorf("refusing to overwrite %q", RedactPath(p))
		}
		for _, suffix := range sqliteSidecars {
			if resolved == r+suffix {
				return fmt.Errorf("refusing to overwrite %q", RedactPath(resolved))
			}
		}
	}
	return nil
}

// resolveExistingParent resolves symlinks on the deepest existing ancestor
// of dir and re-appends the rest.
func resolveExistingParent(dir string) (string, error) {
	resolved, err := filepath.EvalSymlinks(dir)
	if err == nil {
		return resolved, nil
	}

	parent := filepath.Dir(dir)
	if parent == dir {
		return "", fmt.Errorf("cannot resolve path: %s", RedactPath(dir))
	}

	resolvedParent, err := resolveExistingParent(parent)
	if err != nil {
		return "", err
	}
	return filepath.Join(resolvedParent, filepath.Base(dir)), nil
}
