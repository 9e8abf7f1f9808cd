// Package sqlitepath locates the SQLite history database.
package sqlitepath

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/papercomputeco/dispatch/pkg/dotdir"
)

// FileName is the database file name used in every candidate location.
const FileName = "history.db"

// EnvVar overrides the database path when no flag is given.
const EnvVar = "DISPATCH_SQLITE"

// ResolveSQLitePath returns the database path to open. Order of precedence:
//  1. override (the --sqlite flag or storage.sqlite_path)
//  2. DISPATCH_SQLITE
//  3. the first existing candidate file
//  4. history.db inside dotDir
func ResolveSQLitePath(override, dotDir string) (string, error) {
	if override != "" {
		return override, nil
	}

	if envPath := strings.TrimSpace(os.Getenv(EnvVar)); envPath != "" {
		return envPath, nil
	}

	for _, candidate := range sqliteCandidates() {
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate, nil
		}
	}

	if dotDir == "" {
		return "", errors.New("could not find dispatch history database; pass --sqlite")
	}
	return filepath.Join(dotDir, FileName), nil
}

func sqliteCandidates() []string {
	candidates := []string{
		FileName,
		filepath.Join(dotdir.DirName, FileName),
	}

	home, err := os.UserHomeDir()
	if err == nil {
		candidates = append(candidates, filepath.Join(home, dotdir.DirName, FileName))
	}

	if xdgHome := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); xdgHome != "" {
		candidates = append(candidates, filepath.Join(xdgHome, "dispatch", FileName))
	}

	return candidates
}
