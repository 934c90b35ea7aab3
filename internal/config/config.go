// Package config contains everything related to configuration
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/j-veylop/shlink-dashboard-tui/internal/qrcode"
)

// Config holds the application configuration.
type Config struct {
	DatabasePath          string
	ServersPath           string
	LogPath               string
	LogLevel              string
	QRDefaultFormat       qrcode.Format
	VisitsRefreshInterval time.Duration
	MercureBatchInterval  time.Duration
	HTTPTimeout           time.Duration
	HistoryRetention      time.Duration
	QRDefaultSize         int
	QRDefaultMargin       int
	VisitsNotifyEvery     int
	RealTimeUpdates       bool
	ValidateURLs          bool
}

// Default values
const (
	defaultVisitsRefreshInterval = 60 * time.Second
	defaultHTTPTimeout           = 30 * time.Second
	defaultHistoryRetention      = 30 * 24 * time.Hour
	defaultQRSize                = 300
)

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	// Try loading .env from multiple locations
	envPaths := getEnvPaths()
	for _, path := range envPaths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	cfg := &Config{
		DatabasePath:          getEnvString("DATABASE_PATH", getDefaultDatabasePath()),
		ServersPath:           getEnvString("SERVERS_PATH", getDefaultServersPath()),
		LogPath:               getEnvString("LOG_PATH", getDefaultLogPath()),
		LogLevel:              getEnvString("LOG_LEVEL", "info"),
		VisitsRefreshInterval: getEnvDuration("VISITS_REFRESH_INTERVAL", defaultVisitsRefreshInterval),
		MercureBatchInterval:  getEnvDuration("MERCURE_BATCH_INTERVAL", 0),
		HTTPTimeout:           getEnvDuration("HTTP_TIMEOUT", defaultHTTPTimeout),
		HistoryRetention:      getEnvDuration("HISTORY_RETENTION", defaultHistoryRetention),
		RealTimeUpdates:       getEnvBool("REAL_TIME_UPDATES", true),
		ValidateURLs:          getEnvBool("VALIDATE_URLS", false),
		QRDefaultSize:         getEnvInt("QR_DEFAULT_SIZE", defaultQRSize),
		QRDefaultMargin:       getEnvInt("QR_DEFAULT_MARGIN", 0),
		QRDefaultFormat:       qrcode.ParseFormat(os.Getenv("QR_DEFAULT_FORMAT"), qrcode.FormatPNG),
		VisitsNotifyEvery:     getEnvInt("VISITS_NOTIFY_EVERY", 0),
	}

	if cfg.VisitsRefreshInterval <= 0 {
		return nil, fmt.Errorf("VISITS_REFRESH_INTERVAL must be positive, got %s", cfg.VisitsRefreshInterval)
	}
	if cfg.QRDefaultSize <= 0 {
		return nil, fmt.Errorf("QR_DEFAULT_SIZE must be positive, got %d", cfg.QRDefaultSize)
	}

	// Ensure database directory exists
	if err := ensureDir(filepath.Dir(cfg.DatabasePath)); err != nil {
		return nil, err
	}

	// Ensure servers directory exists
	if err := ensureDir(filepath.Dir(cfg.ServersPath)); err != nil {
		return nil, err
	}

	return cfg, nil
}

// QROptions returns the default QR code options.
func (c *Config) QROptions() qrcode.Options {
	return qrcode.Options{
		Size:   c.QRDefaultSize,
		Format: c.QRDefaultFormat,
		Margin: c.QRDefaultMargin,
	}
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	// Current directory
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	if dir := configDir(); dir != "" {
		paths = append(paths, filepath.Join(dir, ".env"))
	}

	return paths
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns the default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns the default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Try parsing as seconds if no unit specified
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
