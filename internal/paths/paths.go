// Package paths resolves configuration and data directory locations.
// Implements: docs/ARCHITECTURE § Configuration.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// appDirName is the per-application directory under the platform roots.
const appDirName = "bluegreen"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "BLUEGREEN_CONFIG_DIR"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/bluegreen (fallback ~/.config/bluegreen)
// macOS:   ~/Library/Application Support/bluegreen
// Windows: %APPDATA%/bluegreen
func DefaultConfigDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appDirName), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", appDirName), nil
	default:
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, appDirName), nil
	}
}

// DefaultDataDir returns the platform-specific default data directory, used
// when no data_dir is configured. Containers normally set DATA_DIR instead.
//
// Linux:   $XDG_DATA_HOME/bluegreen (fallback ~/.local/share/bluegreen)
// macOS:   ~/Library/Application Support/bluegreen
// Windows: %APPDATA%/bluegreen
func DefaultDataDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, appDirName), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "share", appDirName), nil
	default:
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, appDirName), nil
	}
}

// ResolveConfigDir returns the configuration directory following the precedence
// chain: flag > BLUEGREEN_CONFIG_DIR env > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns configured as an absolute path, or DefaultDataDir()
// when configured is empty. configured has already been merged from flag,
// environment and config.yaml.
func ResolveDataDir(configured string) (string, error) {
	if configured != "" {
		return filepath.Abs(configured)
	}
	return DefaultDataDir()
}
