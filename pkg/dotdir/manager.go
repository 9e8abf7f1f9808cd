// Package dotdir resolves the .dispatch/ directory that holds config.toml and
// the default history database.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DirName is the name of the dispatch directory.
	DirName = ".dispatch"
)

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the absolute path to a .dispatch/ directory, creating it if
// needed. Order of precedence is as follows:
//  1. Provided override
//  2. Local ./.dispatch/ dir
//  3. Home ~/.dispatch/ dir
func (m *Manager) Target(overrideDir string) (string, error) {
	var dir string

	switch {
	case overrideDir != "":
		dir = overrideDir

	case m.localDirExists():
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting current directory: %w", err)
		}
		dir = filepath.Join(cwd, DirName)

	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, DirName)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating dispatch directory %s: %w", dir, err)
	}

	return filepath.Abs(dir)
}

// localDirExists checks whether a .dispatch/ directory exists in the current
// working directory.
func (m *Manager) localDirExists() bool {
	cwd, err := os.Getwd()
	if err != nil {
		return false
	}

	info, err := os.Stat(filepath.Join(cwd, DirName))
	return err == nil && info.IsDir()
}
