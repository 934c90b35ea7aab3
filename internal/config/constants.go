package config

import (
	"os"
	"path/filepath"
)

const appDirName = "shlink-tui"

// configDir returns the directory holding the application files.
func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appDirName)
}

// inConfigDir joins name to the config directory, falling back to name alone.
func inConfigDir(name string) string {
	dir := configDir()
	if dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}

// getDefaultDatabasePath returns the default path for the SQLite database.
func getDefaultDatabasePath() string {
	return inConfigDir("history.db")
}

// getDefaultServersPath returns the default path for the server profiles file.
func getDefaultServersPath() string {
	return inConfigDir("servers.json")
}

// getDefaultLogPath returns the default path for the log file.
func getDefaultLogPath() string {
	return inConfigDir("shlink-tui.log")
}
