package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// FilePermissions is the default permission mode for regular files (read/write for owner, read for others)
	FilePermissions = 0644
	// DirPermissions is the default permission mode for directories (rwxr-xr-x)
	DirPermissions = 0755
)

var (
	// ConfigDir is the global configuration directory (~/.marketcli)
	ConfigDir string

	// DatabasePath is the SQLite database file for call history and analytics
	DatabasePath string

	// LogFile receives structured logs while the TUI owns the terminal
	LogFile string

	// SettingsFile is the default settings file
	SettingsFile string

	// ExportDir is the default target of `marketcli export`
	ExportDir string
)

// Initialize sets up the configuration directories
// It creates ~/.marketcli/ if it doesn't exist
func Initialize() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	return InitializeAt(filepath.Join(homeDir, ".marketcli"))
}

// InitializeAt is Initialize rooted at dir instead of the home directory
func InitializeAt(dir string) error {
	ConfigDir = dir
	DatabasePath = filepath.Join(ConfigDir, "marketcli.db")
	LogFile = filepath.Join(ConfigDir, "marketcli.log")
	SettingsFile = filepath.Join(ConfigDir, "config.yaml")
	ExportDir = filepath.Join(ConfigDir, "export")

	if err := os.MkdirAll(ConfigDir, DirPermissions); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", ConfigDir, err)
	}

	// Create a commented settings file so users can discover the keys
	if _, err := os.Stat(SettingsFile); os.IsNotExist(err) {
		if err := os.WriteFile(SettingsFile, []byte(defaultSettingsFile), FilePermissions); err != nil {
			return fmt.Errorf("failed to create settings file: %w", err)
		}
	}

	return nil
}

const defaultSettingsFile = `# marketcli settings
# Every key can also be set through MARKETCLI_<KEY> or a .env file.

# base_url: https://go-crypto-production.up.railway.app/api/crypto
# timeout: 0s
# history: true
# log_level: info
# theme: monokai
# sweep_concurrency: 4
`
