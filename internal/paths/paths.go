// Package paths provides path resolution utilities.
package paths

import (
	"os"
	"path/filepath"
)

// EnvConfigDir overrides the config directory when set. Useful for tests
// and for running several isolated setups side by side.
const EnvConfigDir = "PKGOPS_CONFIG_DIR"

// ConfigDir resolves the pkgops configuration directory.
//
// Resolution order:
//   - $PKGOPS_CONFIG_DIR, when set
//   - ~/.config/pkgops
//
// Returns empty string when the home directory cannot be determined.
func ConfigDir() string {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return filepath.Clean(dir)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "pkgops")
}

// ConfigFile returns the default config file location.
func ConfigFile() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// LogFile returns the default diagnostic log file location.
func LogFile() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "pkgops.log")
}

// TracesFile returns the default trace export file location.
func TracesFile() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "traces", "traces.jsonl")
}
