package info

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/shlink-dashboard-tui/internal/app"
	"github.com/j-veylop/shlink-dashboard-tui/internal/config"
	"github.com/j-veylop/shlink-dashboard-tui/internal/models"
)

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func testConfig() *config.Config {
	return &config.Config{
		DatabasePath:          "/tmp/shlink/history.db",
		ServersPath:           "/tmp/shlink/servers.json",
		LogPath:               "/tmp/shlink/app.log",
		LogLevel:              "debug",
		HTTPTimeout:           30 * time.Second,
		VisitsRefreshInterval: time.Minute,
		HistoryRetention:      7 * 24 * time.Hour,
		RealTimeUpdates:       true,
	}
}

func TestNew(t *testing.T) {
	m := New(app.NewState(), testConfig())
	if m == nil {
		t.Fatal("New returned nil")
	}
	if m.Init() != nil {
		t.Error("Init should return nil")
	}
}

func TestModel_UpdateIgnoresOtherMessages(t *testing.T) {
	m := New(app.NewState(), testConfig())

	updated, cmd := m.Update(nil)
	if updated == nil {
		t.Error("Update returned nil model")
	}
	if cmd != nil {
		t.Error("Update should not return a command")
	}
}

func TestModel_Copy(t *testing.T) {
	tests := []struct {
		key       string
		wantText  string
		wantLabel string
	}{
		{"c", "/tmp/shlink/history.db", "database path"},
		{"s", "/tmp/shlink/servers.json", "servers path"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			m := New(app.NewState(), testConfig())

			_, cmd := m.Update(keyMsg(tt.key))
			if cmd == nil {
				t.Fatal("expected a command")
			}
			msg, ok := cmd().(app.CopyToClipboardMsg)
			if !ok {
				t.Fatalf("expected CopyToClipboardMsg, got %T", cmd())
			}
			if msg.Text != tt.wantText || msg.Label != tt.wantLabel {
				t.Errorf("got %+v", msg)
			}
		})
	}
}

func TestModel_CopyWithoutConfig(t *testing.T) {
	m := New(app.NewState(), nil)
	if _, cmd := m.Update(keyMsg("c")); cmd != nil {
		t.Error("copy without config should do nothing")
	}
}

func TestModel_View(t *testing.T) {
	m := New(app.NewState(), testConfig())
	m.SetSize(100, 80)

	view := m.View()
	for _, want := range []string{
		"Configuration",
		"/tmp/shlink/servers.json",
		"debug",
		"7 days",
		"Not connected",
		"About Shlink Dashboard TUI",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("view should contain %q", want)
		}
	}
}

func TestModel_ViewConnected(t *testing.T) {
	state := app.NewState()
	state.SetConnection(
		models.Server{ID: "1", Name: "production", URL: "https://s.test"},
		models.ServerStatus{Version: "2.4.0", Healthy: true},
		true,
	)

	m := New(state, testConfig())
	m.SetSize(100, 80)

	view := m.View()
	for _, want := range []string{"production", "2.4.0", "live", "path segment"} {
		if !strings.Contains(view, want) {
			t.Errorf("view should contain %q", want)
		}
	}
}

func TestModel_ViewWithoutConfig(t *testing.T) {
	m := New(app.NewState(), nil)
	m.SetSize(80, 60)

	if !strings.Contains(m.View(), "Configuration not loaded") {
		t.Error("view should mention the missing configuration")
	}
}

func TestRetention(t *testing.T) {
	if got := retention(&config.Config{}); got != "forever" {
		t.Errorf("retention(0) = %q, want forever", got)
	}
	if got := batching(&config.Config{MercureBatchInterval: 2 * time.Second}); got != "2s" {
		t.Errorf("batching = %q, want 2s", got)
	}
}

func TestModel_Help(t *testing.T) {
	m := New(app.NewState(), testConfig())
	if len(m.ShortHelp()) != 2 {
		t.Errorf("ShortHelp len = %d, want 2", len(m.ShortHelp()))
	}
	if len(m.FullHelp()) != 2 {
		t.Errorf("FullHelp len = %d, want 2", len(m.FullHelp()))
	}
}
