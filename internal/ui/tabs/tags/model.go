// Package tags provides the tags tab.
package tags

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/shlink-dashboard-tui/internal/app"
	"github.com/j-veylop/shlink-dashboard-tui/internal/models"
	"github.com/j-veylop/shlink-dashboard-tui/internal/ui/components"
)

type mode int

const (
	modeList mode = iota
	modeRename
	modeConfirmDelete
)

// sortField is how the tags are ordered in the table.
type sortField int

const (
	sortByName sortField = iota
	sortByVisits
	sortByShortURLs
	sortFieldCount
)

func (s sortField) String() string {
	switch s {
	case sortByVisits:
		return "visits"
	case sortByShortURLs:
		return "short URLs"
	default:
		return "name"
	}
}

// keyMap defines the key bindings specific to the tags tab.
type keyMap struct {
	Filter key.Binding
	Rename key.Binding
	Delete key.Binding
	Sort   key.Binding
	Escape key.Binding
}

// defaultKeyMap returns the default key bindings for the tags tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Filter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "show short URLs"),
		),
		Rename: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "rename"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "delete"),
		),
		Sort: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "change order"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// Model represents the tags tab state.
type Model struct {
	state       *app.State
	table       table.Model
	renameInput textinput.Model
	shareBar    components.ShareBar
	spinner     components.LoadingSpinner
	keys        keyMap
	target      string
	width       int
	height      int
	mode        mode
	sortBy      sortField
}

// New creates a new tags model.
func New(state *app.State) *Model {
	input := textinput.New()
	input.Placeholder = "new tag name"
	input.CharLimit = 100
	input.Width = 40

	return &Model{
		state:       state,
		table:       components.NewTable(columns(80), 10),
		renameInput: input,
		shareBar:    components.NewShareBar(30),
		spinner:     components.NewSpinner("Loading tags..."),
		keys:        defaultKeyMap(),
	}
}

func columns(width int) []table.Column {
	return components.FlexWidth([]table.Column{
		{Title: "Tag"},
		{Title: "Short URLs", Width: 10},
		{Title: "Visits", Width: 10},
		{Title: "Share", Width: 6},
	}, width)
}

// Init initializes the tags tab.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Init()
}

// CapturingInput reports whether typed keys belong to this tab.
func (m *Model) CapturingInput() bool {
	return m.mode != modeList
}

// Update handles messages for the tags tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case app.TagsLoadedMsg:
		m.refreshRows()
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeRename:
			return m, m.updateRename(msg)
		case modeConfirmDelete:
			return m, m.updateDeleteConfirm(msg)
		default:
			return m, m.handleListKey(msg)
		}
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m *Model) handleListKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Filter):
		if tag, ok := m.selected(); ok {
			params := app.DefaultShortURLsParams()
			params.Tags = []string{tag.Tag}
			return tea.Batch(
				func() tea.Msg { return app.LoadShortURLsMsg{Params: params} },
				func() tea.Msg { return app.TabSwitchMsg{Tab: app.TabShortURLs} },
			)
		}

	case key.Matches(msg, m.keys.Rename):
		if tag, ok := m.selected(); ok {
			m.mode = modeRename
			m.target = tag.Tag
			m.renameInput.SetValue(tag.Tag)
			m.renameInput.CursorEnd()
			return m.renameInput.Focus()
		}

	case key.Matches(msg, m.keys.Delete):
		if tag, ok := m.selected(); ok {
			m.mode = modeConfirmDelete
			m.target = tag.Tag
		}

	case key.Matches(msg, m.keys.Sort):
		m.sortBy = (m.sortBy + 1) % sortFieldCount
		m.table.SetCursor(0)
		m.refreshRows()

	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) updateRename(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.closeDialog()
		return nil

	case "enter":
		oldName := m.target
		newName := models.NormalizeTag(m.renameInput.Value())
		m.closeDialog()
		if newName == "" || newName == oldName {
			return nil
		}
		return func() tea.Msg {
			return app.RenameTagMsg{OldName: oldName, NewName: newName}
		}
	}

	var cmd tea.Cmd
	m.renameInput, cmd = m.renameInput.Update(msg)
	return cmd
}

// updateDeleteConfirm handles the delete confirmation.
func (m *Model) updateDeleteConfirm(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y":
		tag := m.target
		m.closeDialog()
		return func() tea.Msg {
			return app.DeleteTagMsg{Tag: tag}
		}
	case "n", "N", "esc":
		m.closeDialog()
	}
	return nil
}

func (m *Model) closeDialog() {
	m.mode = modeList
	m.target = ""
	m.renameInput.Blur()
}

// sortedTags returns the tags in table order.
func (m *Model) sortedTags() []models.TagStats {
	tags := m.state.GetTags()
	slices.SortStableFunc(tags, func(a, b models.TagStats) int {
		switch m.sortBy {
		case sortByVisits:
			return cmp.Compare(b.VisitsCount, a.VisitsCount)
		case sortByShortURLs:
			return cmp.Compare(b.ShortURLsCount, a.ShortURLsCount)
		default:
			return strings.Compare(a.Tag, b.Tag)
		}
	})
	return tags
}

// selected returns the tag under the table cursor.
func (m *Model) selected() (models.TagStats, bool) {
	tags := m.sortedTags()
	i := m.table.Cursor()
	if i < 0 || i >= len(tags) {
		return models.TagStats{}, false
	}
	return tags[i], true
}

// totalVisits sums the visits of every tag.
func totalVisits(tags []models.TagStats) int {
	total := 0
	for _, t := range tags {
		total += t.VisitsCount
	}
	return total
}

// refreshRows updates the table with the current tags.
func (m *Model) refreshRows() {
	tags := m.sortedTags()
	total := totalVisits(tags)

	rows := make([]table.Row, 0, len(tags))
	for _, t := range tags {
		rows = append(rows, table.Row{
			t.Tag,
			strconv.Itoa(t.ShortURLsCount),
			strconv.Itoa(t.VisitsCount),
			fmt.Sprintf("%.0f%%", components.Ratio(t.VisitsCount, total)*100),
		})
	}
	components.SetRowsKeepingCursor(&m.table, rows)
}

// SetSize sets the available size for the tags tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetColumns(columns(m.cardWidth() - 4))
	m.table.SetHeight(max(height-16, 3))
	m.shareBar = components.NewShareBar(min(max(width-40, 10), 50))
	m.refreshRows()
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	if m.mode != modeList {
		return []key.Binding{
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
			m.keys.Escape,
		}
	}
	return []key.Binding{
		m.keys.Filter,
		m.keys.Rename,
		m.keys.Delete,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Filter, m.keys.Sort},
		{m.keys.Rename, m.keys.Delete},
	}
}
