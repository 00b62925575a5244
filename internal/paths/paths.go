// Package paths resolves the configuration directory and the two storage
// roots. The local root holds per-user local stores; the shared root holds
// the master store alongside the sync inbox and archive directories.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Environment variable names for directory overrides.
const (
	EnvConfigDir  = "VZTRACK_CONFIG_DIR"
	EnvLocalRoot  = "VZTRACK_LOCAL_ROOT"
	EnvSharedRoot = "VZTRACK_SHARED_ROOT"
)

// Fixed names inside the shared root.
const (
	MasterDBName   = "master_projects.db"
	InboxDirName   = "sync_inbox"
	ArchiveDirName = "sync_archive"
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
// Linux:   $XDG_CONFIG_HOME/vztrack (fallback ~/.config/vztrack)
// macOS:   ~/Library/Application Support/vztrack
// Windows: %APPDATA%/vztrack
func DefaultConfigDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "vztrack"), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", "vztrack"), nil
	default:
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, "vztrack"), nil
	}
}

// DefaultLocalRoot returns the platform-specific default local storage root.
//
// Linux:   $XDG_DATA_HOME/vztrack (fallback ~/.local/share/vztrack)
// macOS and Windows: same directory as config.
func DefaultLocalRoot() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, "vztrack"), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "share", "vztrack"), nil
	default:
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, "vztrack"), nil
	}
}

// ResolveConfigDir returns the configuration directory following the
// precedence chain: flag > VZTRACK_CONFIG_DIR env > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveLocalRoot returns the local storage root following the precedence
// chain: flag > config.yaml value > VZTRACK_LOCAL_ROOT env > DefaultLocalRoot().
func ResolveLocalRoot(flag, configValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configValue != "" {
		return filepath.Abs(configValue)
	}
	if env := os.Getenv(EnvLocalRoot); env != "" {
		return filepath.Abs(env)
	}
	return DefaultLocalRoot()
}

// ResolveSharedRoot returns the shared storage root following the precedence
// chain: flag > config.yaml value > VZTRACK_SHARED_ROOT env. The shared root
// is a deployment decision (a network drive in practice) with no sensible
// platform default, so an empty chain falls back to $(CWD)/vztrack-shared.
func ResolveSharedRoot(flag, configValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configValue != "" {
		return filepath.Abs(configValue)
	}
	if env := os.Getenv(EnvSharedRoot); env != "" {
		return filepath.Abs(env)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, "vztrack-shared"), nil
}

// LocalDBPath returns the path of one user's local store file.
func LocalDBPath(localRoot, username string) string {
	return filepath.Join(localRoot, fmt.Sprintf("my_projects_%s.db", username))
}

// MasterDBPath returns the path of the shared master store file.
func MasterDBPath(sharedRoot string) string {
	return filepath.Join(sharedRoot, MasterDBName)
}

// InboxDir returns the sync inbox directory under the shared root.
func InboxDir(sharedRoot string) string {
	return filepath.Join(sharedRoot, InboxDirName)
}

// ArchiveDir returns the sync archive directory under the shared root.
func ArchiveDir(sharedRoot string) string {
	return filepath.Join(sharedRoot, ArchiveDirName)
}
