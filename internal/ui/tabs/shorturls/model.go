// Package shorturls provides the short URLs tab: listing, searching,
// creating and deleting short URLs, plus their QR codes and visits.
package shorturls

import (
	"errors"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/shlink-dashboard-tui/internal/app"
	"github.com/j-veylop/shlink-dashboard-tui/internal/models"
	"github.com/j-veylop/shlink-dashboard-tui/internal/shlink"
	"github.com/j-veylop/shlink-dashboard-tui/internal/ui/components"
)

type mode int

const (
	modeList mode = iota
	modeSearch
	modeCreate
	modeConfirmDelete
	modeVisits
)

// formField represents which field is currently focused in the create form.
type formField int

const (
	fieldLongURL formField = iota
	fieldSlug
	fieldTags
	fieldMaxVisits
	fieldSubmit
	fieldCancel
	fieldCount
)

// orderings is the cycle followed by the order key.
var orderings = []models.OrderBy{
	{Field: models.OrderByDateCreated, Desc: true},
	{Field: models.OrderByVisits, Desc: true},
	{Field: models.OrderByShortCode},
	{Field: models.OrderByLongURL},
	{Field: models.OrderByTitle},
}

func nextOrder(current models.OrderBy) models.OrderBy {
	i := slices.Index(orderings, current)
	return orderings[(i+1)%len(orderings)]
}

var (
	errLongURLRequired = errors.New("long URL is required")
	errInvalidMaxVisit = errors.New("max visits must be a positive number")
)

// keyMap defines the key bindings specific to the short URLs tab.
type keyMap struct {
	Search   key.Binding
	Clear    key.Binding
	Order    key.Binding
	PrevPage key.Binding
	NextPage key.Binding
	Create   key.Binding
	Delete   key.Binding
	Copy     key.Binding
	CopyQR   key.Binding
	Visits   key.Binding
}

// defaultKeyMap returns the default key bindings for the short URLs tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Clear: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear filters"),
		),
		Order: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "change order"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "prev page"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "next page"),
		),
		Create: key.NewBinding(
			key.WithKeys("n", "a"),
			key.WithHelp("n", "new short URL"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "delete"),
		),
		Copy: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "copy short URL"),
		),
		CopyQR: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "copy QR code URL"),
		),
		Visits: key.NewBinding(
			key.WithKeys("v", "enter"),
			key.WithHelp("v", "visits"),
		),
	}
}

// Model represents the short URLs tab state.
type Model struct {
	state         *app.State
	table         table.Model
	search        textinput.Model
	inputs        []textinput.Model
	spinner       components.LoadingSpinner
	keys          keyMap
	visits        *models.VisitsList
	formErr       error
	pendingDelete models.ShortURL
	visitsFor     string
	width         int
	height        int
	mode          mode
	focusedField  formField
}

// New creates a new short URLs model.
func New(state *app.State) *Model {
	search := textinput.New()
	search.Placeholder = "Search short codes, URLs and titles..."
	search.Prompt = "/ "
	search.CharLimit = 200
	search.Width = 50

	return &Model{
		state:   state,
		table:   components.NewTable(columns(100), 10),
		search:  search,
		inputs:  newFormInputs(),
		spinner: components.NewSpinner("Loading short URLs..."),
		keys:    defaultKeyMap(),
	}
}

func newFormInputs() []textinput.Model {
	longURL := textinput.New()
	longURL.Placeholder = "https://example.com/a/very/long/url"
	longURL.CharLimit = 2000

	slug := textinput.New()
	slug.Placeholder = "optional custom slug"
	slug.CharLimit = 100

	tags := textinput.New()
	tags.Placeholder = "comma separated, e.g. docs, launch"
	tags.CharLimit = 300

	maxVisits := textinput.New()
	maxVisits.Placeholder = "unlimited"
	maxVisits.CharLimit = 10

	inputs := []textinput.Model{longURL, slug, tags, maxVisits}
	for i := range inputs {
		inputs[i].Width = 50
	}
	return inputs
}

func columns(width int) []table.Column {
	return components.FlexWidth([]table.Column{
		{Title: "Short Code", Width: 14},
		{Title: "Long URL"},
		{Title: "Tags", Width: 18},
		{Title: "Visits", Width: 8},
		{Title: "Created", Width: 10},
	}, width)
}

// Init initializes the short URLs tab.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Init()
}

// CapturingInput reports whether typed keys belong to this tab.
func (m *Model) CapturingInput() bool {
	return m.mode == modeSearch || m.mode == modeCreate || m.mode == modeConfirmDelete
}

// Update handles messages for the short URLs tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case app.ShortURLVisitsLoadedMsg:
		if msg.ShortCode == m.visitsFor && msg.Error == nil {
			m.visits = msg.Visits
		}
		return m, nil

	case app.ShortURLsLoadedMsg:
		m.refreshRows()
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeSearch:
			return m, m.updateSearch(msg)
		case modeCreate:
			return m, m.updateCreateForm(msg)
		case modeConfirmDelete:
			return m, m.updateDeleteConfirm(msg)
		case modeVisits:
			return m, m.updateVisits(msg)
		default:
			return m, m.handleListKey(msg)
		}
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m *Model) handleListKey(msg tea.KeyMsg) tea.Cmd {
	params := m.state.GetShortURLsParams()

	switch {
	case key.Matches(msg, m.keys.Search):
		m.mode = modeSearch
		m.search.SetValue(params.SearchTerm)
		m.search.CursorEnd()
		return m.search.Focus()

	case key.Matches(msg, m.keys.Clear):
		if params.SearchTerm == "" && len(params.Tags) == 0 {
			return nil
		}
		params.SearchTerm = ""
		params.Tags = nil
		params.Page = 1
		return loadCmd(params)

	case key.Matches(msg, m.keys.Order):
		params.OrderBy = nextOrder(params.OrderBy)
		params.Page = 1
		return loadCmd(params)

	case key.Matches(msg, m.keys.PrevPage):
		if list := m.state.GetShortURLs(); list != nil && list.Pagination.HasPrev() {
			params.Page = list.Pagination.CurrentPage - 1
			return loadCmd(params)
		}

	case key.Matches(msg, m.keys.NextPage):
		if list := m.state.GetShortURLs(); list != nil && list.Pagination.HasNext() {
			params.Page = list.Pagination.CurrentPage + 1
			return loadCmd(params)
		}

	case key.Matches(msg, m.keys.Create):
		if !m.state.IsConnected() {
			return nil
		}
		m.openCreateForm()
		return textinput.Blink

	case key.Matches(msg, m.keys.Delete):
		if s, ok := m.selected(); ok {
			m.pendingDelete = s
			m.mode = modeConfirmDelete
		}

	case key.Matches(msg, m.keys.Copy):
		if s, ok := m.selected(); ok {
			return copyCmd(s.ShortURL, "short URL")
		}

	case key.Matches(msg, m.keys.CopyQR):
		if s, ok := m.selected(); ok {
			return copyCmd(m.state.QRCodeURL(s.ShortURL), "QR code URL")
		}

	case key.Matches(msg, m.keys.Visits):
		if s, ok := m.selected(); ok {
			m.mode = modeVisits
			m.visits = nil
			m.visitsFor = s.ShortCode
			shortCode, domain := s.ShortCode, s.DomainOrDefault()
			return func() tea.Msg {
				return app.LoadShortURLVisitsMsg{ShortCode: shortCode, Domain: domain}
			}
		}

	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return cmd
	}

	return nil
}

func (m *Model) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.mode = modeList
		m.search.Blur()
		return nil

	case "enter":
		m.mode = modeList
		m.search.Blur()
		params := m.state.GetShortURLsParams()
		params.SearchTerm = strings.TrimSpace(m.search.Value())
		params.Page = 1
		return loadCmd(params)
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return cmd
}

func (m *Model) openCreateForm() {
	m.mode = modeCreate
	m.formErr = nil
	m.focusedField = fieldLongURL
	for i := range m.inputs {
		m.inputs[i].SetValue("")
	}
	m.updateFormFocus()
}

func (m *Model) closeCreateForm() {
	m.mode = modeList
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
}

// updateCreateForm handles the create short URL form.
func (m *Model) updateCreateForm(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.closeCreateForm()
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
			m.closeCreateForm()
			return nil
		case fieldSubmit:
			return m.submitCreateForm()
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

func (m *Model) submitCreateForm() tea.Cmd {
	data, err := m.formData()
	if err != nil {
		m.formErr = err
		return nil
	}
	m.closeCreateForm()
	return func() tea.Msg {
		return app.CreateShortURLMsg{Data: data}
	}
}

// formData builds the creation payload from the form inputs.
func (m *Model) formData() (models.ShortURLData, error) {
	data := models.ShortURLData{
		LongURL:    strings.TrimSpace(m.inputs[fieldLongURL].Value()),
		CustomSlug: strings.TrimSpace(m.inputs[fieldSlug].Value()),
		Tags:       models.NormalizeTags(strings.Split(m.inputs[fieldTags].Value(), ",")),
	}
	if data.LongURL == "" {
		return data, errLongURLRequired
	}

	if raw := strings.TrimSpace(m.inputs[fieldMaxVisits].Value()); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return data, errInvalidMaxVisit
		}
		data.MaxVisits = &n
	}
	return data, nil
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
		m.mode = modeList
		shortCode, domain := m.pendingDelete.ShortCode, m.pendingDelete.DomainOrDefault()
		m.pendingDelete = models.ShortURL{}
		return func() tea.Msg {
			return app.DeleteShortURLMsg{ShortCode: shortCode, Domain: domain}
		}
	case "n", "N", "esc":
		m.mode = modeList
		m.pendingDelete = models.ShortURL{}
	}
	return nil
}

func (m *Model) updateVisits(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "v", "enter":
		m.mode = modeList
		m.visits = nil
		m.visitsFor = ""
	}
	return nil
}

// selected returns the short URL under the table cursor.
func (m *Model) selected() (models.ShortURL, bool) {
	list := m.state.GetShortURLs()
	if list == nil {
		return models.ShortURL{}, false
	}
	i := m.table.Cursor()
	if i < 0 || i >= len(list.Data) {
		return models.ShortURL{}, false
	}
	return list.Data[i], true
}

// refreshRows updates the table with the current short URLs.
func (m *Model) refreshRows() {
	list := m.state.GetShortURLs()
	if list == nil {
		components.SetRowsKeepingCursor(&m.table, nil)
		return
	}

	cols := m.table.Columns()
	longURLWidth := 40
	if len(cols) > 1 {
		longURLWidth = cols[1].Width
	}

	rows := make([]table.Row, 0, len(list.Data))
	for _, s := range list.Data {
		rows = append(rows, table.Row{
			s.ShortCode,
			components.Truncate(s.LongURL, longURLWidth),
			components.Truncate(strings.Join(s.Tags, ", "), 18),
			strconv.Itoa(s.VisitsCount),
			s.DateCreated.Format("2006-01-02"),
		})
	}
	components.SetRowsKeepingCursor(&m.table, rows)
}

func loadCmd(params shlink.ListParams) tea.Cmd {
	return func() tea.Msg {
		return app.LoadShortURLsMsg{Params: params}
	}
}

func copyCmd(text, label string) tea.Cmd {
	return func() tea.Msg {
		return app.CopyToClipboardMsg{Text: text, Label: label}
	}
}

// SetSize sets the available size for the short URLs tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetColumns(columns(m.cardWidth() - 4))
	m.table.SetHeight(max(height-18, 3))
	m.search.Width = max(width-20, 20)
	m.refreshRows()
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	if m.mode == modeCreate {
		return []key.Binding{
			key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
			key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		}
	}
	return []key.Binding{
		m.keys.Search,
		m.keys.Create,
		m.keys.Delete,
		m.keys.Copy,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Search, m.keys.Clear, m.keys.Order},
		{m.keys.PrevPage, m.keys.NextPage},
		{m.keys.Create, m.keys.Delete, m.keys.Visits},
		{m.keys.Copy, m.keys.CopyQR},
	}
}
