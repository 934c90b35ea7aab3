package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/j-veylop/shlink-dashboard-tui/internal/qrcode"
)

func TestGetEnvString(t *testing.T) {
	key := "TEST_ENV_STRING"
	val := "test_value"
	t.Setenv(key, val)

	if got := getEnvString(key, "default"); got != val {
		t.Errorf("getEnvString() = %q, want %q", got, val)
	}

	if got := getEnvString("NON_EXISTENT", "default"); got != "default" {
		t.Errorf("getEnvString() = %q, want %q", got, "default")
	}
}

func TestGetEnvDuration(t *testing.T) {
	key := "TEST_ENV_DURATION"

	tests := []struct {
		name       string
		envVal     string
		defaultVal time.Duration
		want       time.Duration
	}{
		{"ValidDuration", "1m", time.Second, time.Minute},
		{"ValidSeconds", "60", time.Second, 60 * time.Second},
		{"Invalid", "invalid", time.Second, time.Second},
		{"Empty", "", time.Second, time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(key, tt.envVal)

			if got := getEnvDuration(key, tt.defaultVal); got != tt.want {
				t.Errorf("getEnvDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_ENV_INT"

	tests := []struct {
		name   string
		envVal string
		want   int
	}{
		{"Valid", "42", 42},
		{"Padded", " 7 ", 7},
		{"Invalid", "abc", 5},
		{"Empty", "", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(key, tt.envVal)
			if got := getEnvInt(key, 5); got != tt.want {
				t.Errorf("getEnvInt() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_ENV_BOOL"

	tests := []struct {
		name   string
		envVal string
		def    bool
		want   bool
	}{
		{"True", "true", false, true},
		{"One", "1", false, true},
		{"False", "false", true, false},
		{"Invalid", "maybe", true, true},
		{"Empty", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(key, tt.envVal)
			if got := getEnvBool(key, tt.def); got != tt.want {
				t.Errorf("getEnvBool() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEnsureDir(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "dir")

	if err := ensureDir(path); err != nil {
		t.Fatalf("ensureDir() failed: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("directory was not created")
	}

	if err := ensureDir(""); err != nil {
		t.Error("ensureDir(\"\") should not error")
	}
}

func TestGetDefaultPaths(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Skipping test because user home dir cannot be found")
	}

	dir := filepath.Join(home, ".config", "shlink-tui")

	if got := getDefaultDatabasePath(); got != filepath.Join(dir, "history.db") {
		t.Errorf("getDefaultDatabasePath() = %q", got)
	}
	if got := getDefaultServersPath(); got != filepath.Join(dir, "servers.json") {
		t.Errorf("getDefaultServersPath() = %q", got)
	}
	if got := getDefaultLogPath(); got != filepath.Join(dir, "shlink-tui.log") {
		t.Errorf("getDefaultLogPath() = %q", got)
	}
}

func TestGetEnvPaths(t *testing.T) {
	paths := getEnvPaths()
	if len(paths) == 0 {
		t.Error("getEnvPaths() returned empty list")
	}

	cwd, _ := os.Getwd()
	if paths[0] != filepath.Join(cwd, ".env") {
		t.Errorf("getEnvPaths()[0] = %q, want current directory .env", paths[0])
	}
}

func setTempPaths(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("DATABASE_PATH", filepath.Join(tmpDir, "db", "history.db"))
	t.Setenv("SERVERS_PATH", filepath.Join(tmpDir, "servers", "servers.json"))
	return tmpDir
}

func TestLoad_Defaults(t *testing.T) {
	tmpDir := setTempPaths(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.VisitsRefreshInterval != defaultVisitsRefreshInterval {
		t.Errorf("VisitsRefreshInterval = %v, want %v", cfg.VisitsRefreshInterval, defaultVisitsRefreshInterval)
	}
	if !cfg.RealTimeUpdates {
		t.Error("RealTimeUpdates should default to true")
	}
	if cfg.QROptions() != (qrcode.Options{Size: defaultQRSize, Format: qrcode.FormatPNG}) {
		t.Errorf("QROptions() = %+v", cfg.QROptions())
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "servers")); err != nil {
		t.Errorf("servers directory was not created: %v", err)
	}
}

func TestLoad_Overrides(t *testing.T) {
	setTempPaths(t)
	t.Setenv("VISITS_REFRESH_INTERVAL", "15s")
	t.Setenv("REAL_TIME_UPDATES", "false")
	t.Setenv("QR_DEFAULT_FORMAT", "svg")
	t.Setenv("QR_DEFAULT_MARGIN", "4")
	t.Setenv("VISITS_NOTIFY_EVERY", "100")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.VisitsRefreshInterval != 15*time.Second {
		t.Errorf("VisitsRefreshInterval = %v, want 15s", cfg.VisitsRefreshInterval)
	}
	if cfg.RealTimeUpdates {
		t.Error("RealTimeUpdates should be false")
	}
	if cfg.QRDefaultFormat != qrcode.FormatSVG || cfg.QRDefaultMargin != 4 {
		t.Errorf("QR defaults = %s/%d", cfg.QRDefaultFormat, cfg.QRDefaultMargin)
	}
	if cfg.VisitsNotifyEvery != 100 {
		t.Errorf("VisitsNotifyEvery = %d, want 100", cfg.VisitsNotifyEvery)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"ZeroInterval", "VISITS_REFRESH_INTERVAL", "0s"},
		{"NegativeQRSize", "QR_DEFAULT_SIZE", "-10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setTempPaths(t)
			t.Setenv(tt.key, tt.val)

			if _, err := Load(); err == nil {
				t.Errorf("Load() should fail for %s=%s", tt.key, tt.val)
			}
		})
	}
}

func TestLoad_WithEnvFile(t *testing.T) {
	tmpDir := setTempPaths(t)
	envPath := filepath.Join(tmpDir, ".env")
	content := "QR_DEFAULT_SIZE=512\nLOG_LEVEL=debug"
	if err := os.WriteFile(envPath, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	wd, _ := os.Getwd()
	defer os.Chdir(wd)
	os.Chdir(tmpDir)

	// godotenv does not override variables that are already set.
	os.Unsetenv("QR_DEFAULT_SIZE")
	os.Unsetenv("LOG_LEVEL")
	defer os.Unsetenv("QR_DEFAULT_SIZE")
	defer os.Unsetenv("LOG_LEVEL")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.QRDefaultSize != 512 {
		t.Errorf("QRDefaultSize = %d, want 512", cfg.QRDefaultSize)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}
