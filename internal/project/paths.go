package project

import (
	"os"
	"path/filepath"
)

// DefaultDataDir returns ~/.millpath, or the working directory when the
// home directory is unknown.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".millpath")
}

// ResolveDataDir expands a leading "~/" in dir.
func ResolveDataDir(dir string) string {
	if dir == "" {
		return DefaultDataDir()
	}
	if dir == "~" || len(dir) > 1 && dir[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return dir
		}
		return filepath.Join(home, dir[1:])
	}
	return dir
}
