// Package platform resolves per-user file locations.
package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const (
	appDir          = "voxsearch"
	lexiconFileName = "lexicon.yaml"
)

// DefaultConfigDirFor returns the voxsearch configuration directory for goos.
func DefaultConfigDirFor(goos, homeDir, xdgConfigHome, appData string) (string, error) {
	switch goos {
	case "linux", "freebsd", "openbsd", "netbsd":
		if xdgConfigHome != "" {
			return filepath.Join(xdgConfigHome, appDir), nil
		}
		if homeDir == "" {
			return "", errors.New("home directory is empty")
		}
		return filepath.Join(homeDir, ".config", appDir), nil
	case "darwin":
		if homeDir == "" {
			return "", errors.New("home directory is empty")
		}
		return filepath.Join(homeDir, "Library", "Application Support", appDir), nil
	case "windows":
		if appData == "" {
			return "", errors.New("APPDATA is not set")
		}
		return filepath.Join(appData, appDir), nil
	default:
		return "", fmt.Errorf("unsupported OS: %s", goos)
	}
}

// DefaultLexiconPathFor returns where a user lexicon file is looked up.
func DefaultLexiconPathFor(goos, homeDir, xdgConfigHome, appData string) (string, error) {
	dir, err := DefaultConfigDirFor(goos, homeDir, xdgConfigHome, appData)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, lexiconFileName), nil
}

// ResolveLexiconPath returns override when set, otherwise the per-user
// lexicon path. found reports whether the returned file exists.
func ResolveLexiconPath(override string) (path string, found bool, err error) {
	if override != "" {
		return filepath.Clean(override), true, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil && runtime.GOOS != "windows" {
		return "", false, fmt.Errorf("resolve user home: %w", err)
	}

	path, err = DefaultLexiconPathFor(runtime.GOOS, homeDir, os.Getenv("XDG_CONFIG_HOME"), os.Getenv("APPDATA"))
	if err != nil {
		return "", false, err
	}

	info, err := os.Stat(path)
	switch {
	case err == nil:
		return path, !info.IsDir(), nil
	case errors.Is(err, os.ErrNotExist):
		return path, false, nil
	default:
		return "", false, fmt.Errorf("stat lexicon %s: %w", path, err)
	}
}
