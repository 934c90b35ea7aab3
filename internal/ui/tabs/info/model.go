// Package info provides the info tab, showing configuration, server
// capabilities and build information.
package info

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/shlink-dashboard-tui/internal/app"
	"github.com/j-veylop/shlink-dashboard-tui/internal/config"
)

// keyMap defines the key bindings specific to the info tab.
type keyMap struct {
	CopyDatabase key.Binding
	CopyServers  key.Binding
	Up           key.Binding
	Down         key.Binding
}

// defaultKeyMap returns the default key bindings for the info tab.
func defaultKeyMap() keyMap {
	return keyMap{
		CopyDatabase: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "copy database path"),
		),
		CopyServers: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "copy servers path"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
	}
}

// Model represents the info tab state.
type Model struct {
	state    *app.State
	config   *config.Config
	keys     keyMap
	viewport viewport.Model
	width    int
	height   int
}

// New creates a new info model.
func New(state *app.State, cfg *config.Config) *Model {
	return &Model{
		state:    state,
		config:   cfg,
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
	}
}

// Init initializes the info tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the info tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.CopyDatabase):
		if m.config != nil {
			return m, copyCmd(m.config.DatabasePath, "database path")
		}
	case key.Matches(keyMsg, m.keys.CopyServers):
		if m.config != nil {
			return m, copyCmd(m.config.ServersPath, "servers path")
		}
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(keyMsg)
		return m, cmd
	}

	return m, nil
}

func copyCmd(text, label string) tea.Cmd {
	return func() tea.Msg {
		return app.CopyToClipboardMsg{Text: text, Label: label}
	}
}

// SetSize sets the available size for the info tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.CopyDatabase,
		m.keys.CopyServers,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.CopyDatabase, m.keys.CopyServers},
		{m.keys.Up, m.keys.Down},
	}
}
