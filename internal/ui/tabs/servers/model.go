// Package servers provides the servers tab, where Shlink server profiles
// are added, removed and connected to.
package servers

import (
	"errors"
	"net/url"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/shlink-dashboard-tui/internal/app"
	"github.com/j-veylop/shlink-dashboard-tui/internal/models"
	"github.com/j-veylop/shlink-dashboard-tui/internal/ui/components"
)

// formField represents which field is currently focused in the add form.
type formField int

const (
	fieldName formField = iota
	fieldURL
	fieldAPIKey
	fieldSubmit
	fieldCancel
	fieldCount
)

var (
	errNameRequired   = errors.New("name is required")
	errAPIKeyRequired = errors.New("API key is required")
	errInvalidURL     = errors.New("URL must start with http:// or https://")
)

// keyMap defines the key bindings specific to the servers tab.
type keyMap struct {
	Connect key.Binding
	Delete  key.Binding
	Add     key.Binding
	Copy    key.Binding
	Escape  key.Binding
}

// defaultKeyMap returns the default key bindings for the servers tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Connect: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "connect"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "delete"),
		),
		Add: key.NewBinding(
			key.WithKeys("n", "a"),
			key.WithHelp("n", "add server"),
		),
		Copy: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "copy URL"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// Model represents the servers tab state.
type Model struct {
	state         *app.State
	table         table.Model
	inputs        []textinput.Model
	spinner       components.LoadingSpinner
	keys          keyMap
	formErr       error
	pendingDelete models.Server
	width         int
	height        int
	focusedField  formField
	adding        bool
	confirmDelete bool
}

// New creates a new servers model.
func New(state *app.State) *Model {
	name := textinput.New()
	name.Placeholder = "My Shlink"
	name.CharLimit = 100

	serverURL := textinput.New()
	serverURL.Placeholder = "https://s.example.com"
	serverURL.CharLimit = 500

	apiKey := textinput.New()
	apiKey.Placeholder = "Paste API key..."
	apiKey.CharLimit = 200
	apiKey.EchoMode = textinput.EchoPassword

	inputs := []textinput.Model{name, serverURL, apiKey}
	for i := range inputs {
		inputs[i].Width = 40
	}

	return &Model{
		state:   state,
		table:   components.NewTable(columns(80), 10),
		inputs:  inputs,
		spinner: components.NewSpinner("Connecting..."),
		keys:    defaultKeyMap(),
	}
}

func columns(width int) []table.Column {
	return components.FlexWidth([]table.Column{
		{Title: "", Width: 1},
		{Title: "Name", Width: 20},
		{Title: "URL"},
		{Title: "Version", Width: 9},
		{Title: "Status", Width: 12},
	}, width)
}

// Init initializes the servers tab.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Init())
}

// CapturingInput reports whether typed keys belong to this tab.
func (m *Model) CapturingInput() bool {
	return m.adding || m.confirmDelete
}

// Update handles messages for the servers tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case m.adding:
			return m, m.updateAddForm(keyMsg)
		case m.confirmDelete:
			return m, m.updateDeleteConfirm(keyMsg)
		default:
			return m, m.handleListKey(keyMsg)
		}
	}

	if _, ok := msg.(app.ServersLoadedMsg); ok {
		m.refreshRows()
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m *Model) handleListKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Connect):
		if s, ok := m.selected(); ok {
			id := s.ID
			return func() tea.Msg {
				return app.ConnectServerMsg{ID: id}
			}
		}

	case key.Matches(msg, m.keys.Delete):
		if s, ok := m.selected(); ok {
			m.confirmDelete = true
			m.pendingDelete = s.Server
		}

	case key.Matches(msg, m.keys.Add):
		m.openAddForm()
		return textinput.Blink

	case key.Matches(msg, m.keys.Copy):
		if s, ok := m.selected(); ok {
			text := s.NormalizedURL()
			return func() tea.Msg {
				return app.CopyToClipboardMsg{Text: text, Label: "server URL"}
			}
		}

	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) openAddForm() {
	m.adding = true
	m.formErr = nil
	m.focusedField = fieldName
	for i := range m.inputs {
		m.inputs[i].SetValue("")
	}
	m.updateFormFocus()
}

func (m *Model) closeAddForm() {
	m.adding = false
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
}

// updateAddForm handles the add server form.
func (m *Model) updateAddForm(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.closeAddForm()
		return nil

	case "tab", "down":
		m.focusedField = (m.focusedField + 1) % fieldCount
		m.updateFormFocus()
		return textinput.Blink

	case "shift+tab", "up":
		m.focusedField = (m.focusedField - 1 + fieldCount) % fieldCount
		m.updateFormFocus()
		return textinput.Blink

	case "enter":
		switch m.focusedField {
		case fieldCancel:
			m.closeAddForm()
			return nil
		case fieldSubmit:
			return m.submitAddForm()
		default:
			m.focusedField++
			m.updateFormFocus()
			return textinput.Blink
		}
	}

	if m.focusedField >= fieldSubmit {
		return nil
	}
	var cmd tea.Cmd
	m.inputs[m.focusedField], cmd = m.inputs[m.focusedField].Update(msg)
	return cmd
}

func (m *Model) submitAddForm() tea.Cmd {
	server, err := m.formServer()
	if err != nil {
		m.formErr = err
		return nil
	}
	m.closeAddForm()
	return func() tea.Msg {
		return app.AddServerMsg{Server: server}
	}
}

// formServer builds a server profile from the form inputs.
func (m *Model) formServer() (models.Server, error) {
	server := models.Server{
		Name:   strings.TrimSpace(m.inputs[fieldName].Value()),
		URL:    strings.TrimSpace(m.inputs[fieldURL].Value()),
		APIKey: strings.TrimSpace(m.inputs[fieldAPIKey].Value()),
	}
	if server.Name == "" {
		return server, errNameRequired
	}
	if u, err := url.Parse(server.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return server, errInvalidURL
	}
	if server.APIKey == "" {
		return server, errAPIKeyRequired
	}
	return server, nil
}

// updateFormFocus updates which form field is focused.
func (m *Model) updateFormFocus() {
	for i := range m.inputs {
		if formField(i) == m.focusedField {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

// updateDeleteConfirm handles the delete confirmation.
func (m *Model) updateDeleteConfirm(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y":
		m.confirmDelete = false
		id, name := m.pendingDelete.ID, m.pendingDelete.Name
		m.pendingDelete = models.Server{}
		return func() tea.Msg {
			return app.DeleteServerMsg{ID: id, Name: name}
		}
	case "n", "N", "esc":
		m.confirmDelete = false
		m.pendingDelete = models.Server{}
	}
	return nil
}

// selected returns the server under the table cursor.
func (m *Model) selected() (models.ServerWithStatus, bool) {
	list := m.state.GetServers()
	i := m.table.Cursor()
	if i < 0 || i >= len(list) {
		return models.ServerWithStatus{}, false
	}
	return list[i], true
}

// statusText describes a server status for the table.
func statusText(status *models.ServerStatus) string {
	switch {
	case status == nil:
		return "-"
	case status.Error != "":
		return "error"
	case !status.Healthy:
		return "unhealthy"
	default:
		return "ok"
	}
}

// refreshRows updates the table with the current servers.
func (m *Model) refreshRows() {
	connected, _, isConnected := m.state.GetConnection()
	list := m.state.GetServers()

	rows := make([]table.Row, 0, len(list))
	for _, s := range list {
		marker := ""
		if isConnected && s.ID == connected.ID {
			marker = "*"
		}
		version := "-"
		if s.Status != nil && s.Status.Version != "" {
			version = s.Status.Version
		}
		rows = append(rows, table.Row{
			marker,
			s.Name,
			s.NormalizedURL(),
			version,
			statusText(s.Status),
		})
	}
	components.SetRowsKeepingCursor(&m.table, rows)
}

// SetSize sets the available size for the servers tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetColumns(columns(m.cardWidth() - 4))
	m.table.SetHeight(max(height-20, 3))
	m.refreshRows()
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	if m.adding {
		return []key.Binding{
			key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
			m.keys.Escape,
		}
	}
	return []key.Binding{
		m.keys.Connect,
		m.keys.Add,
		m.keys.Delete,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Connect, m.keys.Copy},
		{m.keys.Add, m.keys.Delete},
	}
}
