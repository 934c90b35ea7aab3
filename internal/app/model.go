// Package app implements the main Bubble Tea application with tab-based navigation.
package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/j-veylop/shlink-dashboard-tui/internal/models"
	"github.com/j-veylop/shlink-dashboard-tui/internal/services"
	"github.com/j-veylop/shlink-dashboard-tui/internal/ui/styles"
)

// TabID represents the identifier for a tab in the application.
type TabID int

const (
	// TabOverview is the ID for the visits overview tab.
	TabOverview TabID = iota
	// TabShortURLs is the ID for the short URLs tab.
	TabShortURLs
	// TabTags is the ID for the tags tab.
	TabTags
	// TabServers is the ID for the servers tab.
	TabServers
	// TabInfo is the ID for the info tab.
	TabInfo
)

// String returns the string representation of the TabID.
func (t TabID) String() string {
	switch t {
	case TabOverview:
		return "Overview"
	case TabShortURLs:
		return "Short URLs"
	case TabTags:
		return "Tags"
	case TabServers:
		return "Servers"
	case TabInfo:
		return "Info"
	default:
		return "Unknown"
	}
}

// resource returns what the refresh key reloads on the tab.
func (t TabID) resource() string {
	switch t {
	case TabOverview:
		return ResourceOverview
	case TabShortURLs:
		return ResourceShortURLs
	case TabTags:
		return ResourceTags
	default:
		return ResourceServers
	}
}

// Tab defines the interface that all tabs must implement.
type Tab interface {
	// Init initializes the tab and returns any initial commands.
	Init() tea.Cmd

	// Update handles messages and returns the updated tab and any commands.
	Update(msg tea.Msg) (Tab, tea.Cmd)

	// View renders the tab content.
	View() string

	// SetSize sets the available size for the tab.
	SetSize(width, height int)

	// ShortHelp returns key bindings for the short help view.
	ShortHelp() []key.Binding

	// FullHelp returns key bindings for the full help view.
	FullHelp() [][]key.Binding
}

// InputCapturer is implemented by tabs that own the keyboard while a form
// or a search box is focused. Global keys, except ctrl+c, are then
// forwarded to the tab.
type InputCapturer interface {
	CapturingInput() bool
}

// KeyMap defines the keybindings for the application.
type KeyMap struct {
	Tab1        key.Binding
	Tab2        key.Binding
	Tab3        key.Binding
	Tab4        key.Binding
	Tab5        key.Binding
	NextTab     key.Binding
	PrevTab     key.Binding
	Refresh     key.Binding
	Help        key.Binding
	Quit        key.Binding
	ForceQuit   key.Binding
	Up          key.Binding
	Down        key.Binding
	Left        key.Binding
	Right       key.Binding
	Enter       key.Binding
	Escape      key.Binding
	PageUp      key.Binding
	PageDown    key.Binding
	Home        key.Binding
	End         key.Binding
	Filter      key.Binding
	Copy        key.Binding
	Delete      key.Binding
	SwitchFocus key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	km := KeyMap{}
	km = setTabKeys(km)
	km = setActionKeys(km)
	km = setNavigationKeys(km)
	km = setListKeys(km)
	return km
}

func setTabKeys(k KeyMap) KeyMap {
	k.Tab1 = key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "overview"))
	k.Tab2 = key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "short urls"))
	k.Tab3 = key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "tags"))
	k.Tab4 = key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "servers"))
	k.Tab5 = key.NewBinding(key.WithKeys("5"), key.WithHelp("5", "info"))
	k.NextTab = key.NewBinding(key.WithKeys("tab", "right"), key.WithHelp("tab/→", "next tab"))
	k.PrevTab = key.NewBinding(key.WithKeys("shift+tab", "left"), key.WithHelp("shift+tab/←", "prev tab"))
	return k
}

func setActionKeys(k KeyMap) KeyMap {
	k.Refresh = key.NewBinding(key.WithKeys("r", "ctrl+r"), key.WithHelp("r", "refresh"))
	k.Help = key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help"))
	k.Quit = key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit"))
	k.ForceQuit = key.NewBinding(key.WithKeys("ctrl+c"))
	k.Copy = key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy"))
	k.Delete = key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete"))
	return k
}

func setNavigationKeys(k KeyMap) KeyMap {
	k.Up = key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up"))
	k.Down = key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down"))
	k.Left = key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left"))
	k.Right = key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right"))
	k.Enter = key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select"))
	k.Escape = key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel"))
	k.SwitchFocus = key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch focus"))
	return k
}

func setListKeys(k KeyMap) KeyMap {
	k.PageUp = key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up"))
	k.PageDown = key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down"))
	k.Home = key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("home", "go to top"))
	k.End = key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("end", "go to bottom"))
	k.Filter = key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search"))
	return k
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Refresh, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab1, k.Tab2, k.Tab3, k.Tab4, k.Tab5},
		{k.NextTab, k.PrevTab},
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Refresh, k.Help, k.Quit},
	}
}

// Styles defines the application styles.
type Styles struct {
	// Tab bar styles
	TabBar       lipgloss.Style
	ActiveTab    lipgloss.Style
	InactiveTab  lipgloss.Style
	TabSeparator lipgloss.Style

	// Notification styles
	NotificationSuccess lipgloss.Style
	NotificationError   lipgloss.Style
	NotificationWarning lipgloss.Style
	NotificationInfo    lipgloss.Style

	// Content styles
	Content lipgloss.Style
	Help    lipgloss.Style
	Spinner lipgloss.Style
	Toast   lipgloss.Style

	// Common styles
	Title     lipgloss.Style
	Subtle    lipgloss.Style
	Highlight lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
}

// DefaultStyles returns the default application styles.
func DefaultStyles() Styles {
	subtle := lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}
	highlight := lipgloss.AdaptiveColor{Light: "#2E7BA6", Dark: "#4696E5"}
	success := lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"}
	warning := lipgloss.AdaptiveColor{Light: "#FF8C00", Dark: "#FF8C00"}
	errorColor := lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"}
	info := lipgloss.AdaptiveColor{Light: "#0087D7", Dark: "#5FAFFF"}

	s := Styles{}
	s.TabBar = lipgloss.NewStyle().Padding(0, 1).BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).BorderForeground(subtle)
	s.ActiveTab = lipgloss.NewStyle().Bold(true).Foreground(highlight).Padding(0, 2)
	s.InactiveTab = lipgloss.NewStyle().Foreground(subtle).Padding(0, 2)
	s.TabSeparator = lipgloss.NewStyle().Foreground(subtle).SetString(" | ")

	s.NotificationSuccess = lipgloss.NewStyle().Foreground(success).Padding(0, 1)
	s.NotificationError = lipgloss.NewStyle().Foreground(errorColor).Bold(true).Padding(0, 1)
	s.NotificationWarning = lipgloss.NewStyle().Foreground(warning).Padding(0, 1)
	s.NotificationInfo = lipgloss.NewStyle().Foreground(info).Padding(0, 1)

	s.Content = lipgloss.NewStyle().Padding(1, 2)
	s.Help = lipgloss.NewStyle().Foreground(subtle).Padding(0, 1)
	s.Spinner = lipgloss.NewStyle().Foreground(highlight)
	s.Toast = styles.ToastStyle

	s.Title = lipgloss.NewStyle().Bold(true).Foreground(highlight)
	s.Subtle = lipgloss.NewStyle().Foreground(subtle)
	s.Highlight = lipgloss.NewStyle().Foreground(highlight)
	s.Error = lipgloss.NewStyle().Foreground(errorColor)
	s.Success = lipgloss.NewStyle().Foreground(success)
	s.Warning = lipgloss.NewStyle().Foreground(warning)

	return s
}

// Model is the main application model.
type Model struct {
	// Tab management
	activeTab TabID
	tabs      []Tab
	tabNames  []string

	// Shared state
	state    *State
	services *services.Manager
	commands *Commands
	keymap   KeyMap
	styles   Styles

	// UI components
	spinner spinner.Model

	// Window dimensions
	width  int
	height int

	// UI state
	showHelp bool
	ready    bool

	// Service subscription
	eventChannel chan services.ServiceEvent
}

// NewModel initializes a new application model.
func NewModel(mgr *services.Manager) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	state := NewState()
	if mgr != nil && mgr.Config() != nil {
		state.SetQROptions(mgr.Config().QROptions())
	}

	return &Model{
		activeTab: TabOverview,
		tabNames:  []string{"Overview", "Short URLs", "Tags", "Servers", "Info"},
		tabs:      make([]Tab, 5), // set with SetTabs
		state:     state,
		services:  mgr,
		commands:  NewCommands(mgr),
		keymap:    DefaultKeyMap(),
		styles:    DefaultStyles(),
		spinner:   s,
	}
}

// SetTabs sets the tabs for the model.
func (m *Model) SetTabs(tabs []Tab) {
	m.tabs = tabs
	if m.width > 0 && m.height > 0 {
		m.updateTabSizes()
	}
}

// GetState returns the application state.
func (m *Model) GetState() *State {
	return m.state
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	m.state.SetLoadingNotification("Loading...")

	cmds := []tea.Cmd{
		m.spinner.Tick,
		defaultTickCmd(),
	}

	if m.services != nil {
		cmds = append(cmds,
			m.commands.SubscribeToServices(),
			m.commands.LoadServers(),
			m.commands.ConnectSelected(),
		)
	}

	for _, tab := range m.tabs {
		if tab != nil {
			cmds = append(cmds, tab.Init())
		}
	}

	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg, tea.KeyMsg, spinner.TickMsg:
		if cmd, handled := m.handleTeaMsg(msg); handled {
			return m, cmd
		} else if cmd != nil {
			cmds = append(cmds, cmd)
		}

	default:
		if appCmds := m.handleAppMsg(msg); len(appCmds) > 0 {
			cmds = append(cmds, appCmds...)
		}
	}

	if cmd := m.updateActiveTab(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// handleTeaMsg reports handled when the message must not reach the active tab.
func (m *Model) handleTeaMsg(msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.handleWindowSize(msg)
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case spinner.TickMsg:
		return m.handleSpinnerTick(msg), false
	}
	return nil, false
}

func (m *Model) handleAppMsg(msg tea.Msg) []tea.Cmd {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case TickMsg:
		cmds = append(cmds, m.handleTick())
	case SubscriptionEventMsg:
		cmds = append(cmds, m.handleSubscriptionEvent(msg)...)
	case ServiceEventMsg:
		cmds = append(cmds, m.handleServiceEventMsg(msg)...)

	case ServersLoadedMsg:
		m.handleServersLoaded(msg)
	case ConnectServerMsg:
		cmds = append(cmds, m.commands.Connect(msg.ID))
	case ConnectResultMsg:
		cmds = append(cmds, m.handleConnectResult(msg)...)
	case AddServerMsg:
		cmds = append(cmds, m.commands.AddServer(msg.Server))
	case ServerAddedMsg:
		cmds = append(cmds, m.handleServerAdded(msg)...)
	case DeleteServerMsg:
		cmds = append(cmds, m.commands.DeleteServer(msg.ID, msg.Name))
	case ServerDeletedMsg:
		cmds = append(cmds, resultCmd(msg.Error, "Failed to delete server", "Deleted server "+msg.Name))

	case VisitsRefreshedMsg:
		cmds = append(cmds, m.handleVisitsRefreshed(msg)...)
	case ChangeTimeRangeMsg:
		m.state.SetTimeRange(msg.Range)
		cmds = append(cmds, m.commands.LoadHistory(msg.Range))
	case HistoryLoadedMsg:
		cmds = append(cmds, m.handleHistoryLoaded(msg)...)

	case LoadShortURLsMsg:
		cmds = append(cmds, m.commands.LoadShortURLs(msg.Params))
	case ShortURLsLoadedMsg:
		cmds = append(cmds, m.handleShortURLsLoaded(msg)...)
	case CreateShortURLMsg:
		cmds = append(cmds, m.commands.CreateShortURL(msg.Data))
	case ShortURLCreatedMsg:
		cmds = append(cmds, m.handleShortURLCreated(msg)...)
	case DeleteShortURLMsg:
		cmds = append(cmds, m.commands.DeleteShortURL(msg.ShortCode, msg.Domain))
	case ShortURLDeletedMsg:
		cmds = append(cmds, m.handleShortURLDeleted(msg)...)
	case LoadShortURLVisitsMsg:
		cmds = append(cmds, m.commands.LoadShortURLVisits(msg.ShortCode, msg.Domain))
	case ShortURLVisitsLoadedMsg:
		if msg.Error != nil {
			cmds = append(cmds, notifyErrorCmd(errorMessage("Failed to load visits of "+msg.ShortCode, msg.Error)))
		}

	case TagsLoadedMsg:
		cmds = append(cmds, m.handleTagsLoaded(msg)...)
	case DeleteTagMsg:
		cmds = append(cmds, m.commands.DeleteTag(msg.Tag))
	case TagDeletedMsg:
		cmds = append(cmds, m.handleTagChanged(msg.Error, "Failed to delete tag", "Deleted tag "+msg.Tag)...)
	case RenameTagMsg:
		cmds = append(cmds, m.commands.RenameTag(msg.OldName, msg.NewName))
	case TagRenamedMsg:
		cmds = append(cmds, m.handleTagChanged(msg.Error, "Failed to rename tag",
			fmt.Sprintf("Renamed tag %s to %s", msg.OldName, msg.NewName))...)

	case CopyToClipboardMsg:
		cmds = append(cmds, m.commands.CopyToClipboard(msg.Text, msg.Label))
	case ClipboardResultMsg:
		cmds = append(cmds, m.handleClipboardResult(msg))

	case AddNotificationMsg:
		cmds = append(cmds, m.handleAddNotification(msg)...)
	case RemoveNotificationMsg:
		m.state.RemoveNotification(msg.ID)
	case ClearExpiredNotificationsMsg:
		m.state.ClearExpiredNotifications()
	case StartLoadingMsg:
		m.handleStartLoading(msg)
	case StopLoadingMsg:
		m.stopLoading(msg.Resource)
	case ErrorMsg:
		cmds = append(cmds, notifyErrorCmd(errorMessage(msg.Context, msg.Error)))
	case RefreshMsg:
		cmds = append(cmds, m.handleRefresh(msg)...)
	case TabSwitchMsg:
		m.activeTab = msg.Tab
		m.updateTabSizes()
	case ToggleHelpMsg:
		m.showHelp = !m.showHelp
	}
	return cmds
}

func (m *Model) handleWindowSize(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = true
	m.updateTabSizes()
}

func (m *Model) handleSpinnerTick(msg spinner.TickMsg) tea.Cmd {
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return cmd
}

func (m *Model) handleTick() tea.Cmd {
	m.state.ClearExpiredNotifications()
	return defaultTickCmd()
}

func (m *Model) handleSubscriptionEvent(msg SubscriptionEventMsg) []tea.Cmd {
	m.eventChannel = msg.Channel
	return []tea.Cmd{waitForServiceEventCmd(m.eventChannel)}
}

func (m *Model) handleServiceEventMsg(msg ServiceEventMsg) []tea.Cmd {
	var cmds []tea.Cmd
	if cmd := m.handleServiceEvent(msg.Event); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if m.eventChannel != nil {
		cmds = append(cmds, waitForServiceEventCmd(m.eventChannel))
	}
	return cmds
}

func (m *Model) handleServersLoaded(msg ServersLoadedMsg) {
	m.state.SetServers(msg.Servers)
	m.stopLoading(ResourceServers)
}

func (m *Model) handleConnectResult(msg ConnectResultMsg) []tea.Cmd {
	m.state.SetLoading(ResourceInitial, false)
	m.stopLoading(ResourceConnect)

	if msg.Error != nil {
		return []tea.Cmd{notifyErrorCmd(msg.Error.Error())}
	}
	if msg.ServerID == "" && m.state.GetServerCount() == 0 {
		return []tea.Cmd{notifyInfoCmd("Add a Shlink server in the Servers tab")}
	}
	return nil
}

func (m *Model) handleServerAdded(msg ServerAddedMsg) []tea.Cmd {
	if msg.Error != nil {
		return []tea.Cmd{notifyErrorCmd(errorMessage("Failed to add server", msg.Error))}
	}

	cmds := []tea.Cmd{notifySuccessCmd("Added server " + msg.Server.Name)}
	if !m.state.IsConnected() {
		cmds = append(cmds, m.commands.Connect(msg.Server.ID))
	}
	return cmds
}

func (m *Model) handleVisitsRefreshed(msg VisitsRefreshedMsg) []tea.Cmd {
	m.stopLoading(ResourceOverview)
	if errors.Is(msg.Error, services.ErrNotConnected) {
		return []tea.Cmd{notifyWarningCmd("No server connected")}
	}
	// Refresh failures are reported by the service event stream.
	return []tea.Cmd{m.commands.LoadHistory(m.state.GetTimeRange())}
}

func (m *Model) handleHistoryLoaded(msg HistoryLoadedMsg) []tea.Cmd {
	m.stopLoading(ResourceHistory)
	if msg.Error != nil {
		if errors.Is(msg.Error, services.ErrNotConnected) {
			return nil
		}
		return []tea.Cmd{notifyErrorCmd(errorMessage("Failed to load history", msg.Error))}
	}
	m.state.SetHistory(msg.History, msg.Recent)
	return nil
}

func (m *Model) handleShortURLsLoaded(msg ShortURLsLoadedMsg) []tea.Cmd {
	m.stopLoading(ResourceShortURLs)
	if msg.Error != nil {
		return []tea.Cmd{notifyErrorCmd(errorMessage("Failed to load short URLs", msg.Error))}
	}
	m.state.SetShortURLs(msg.List, msg.Params)
	return nil
}

func (m *Model) handleShortURLCreated(msg ShortURLCreatedMsg) []tea.Cmd {
	if msg.Error != nil {
		return []tea.Cmd{notifyErrorCmd(errorMessage("Failed to create short URL", msg.Error))}
	}
	return []tea.Cmd{
		notifySuccessCmd("Created " + msg.ShortURL.ShortURL),
		m.commands.LoadShortURLs(m.state.GetShortURLsParams()),
		m.commands.LoadTags(),
	}
}

func (m *Model) handleShortURLDeleted(msg ShortURLDeletedMsg) []tea.Cmd {
	if msg.Error != nil {
		return []tea.Cmd{notifyErrorCmd(errorMessage("Failed to delete short URL", msg.Error))}
	}
	return []tea.Cmd{
		notifySuccessCmd("Deleted " + msg.ShortCode),
		m.commands.LoadShortURLs(m.state.GetShortURLsParams()),
	}
}

func (m *Model) handleTagsLoaded(msg TagsLoadedMsg) []tea.Cmd {
	m.stopLoading(ResourceTags)
	if msg.Error != nil {
		return []tea.Cmd{notifyErrorCmd(errorMessage("Failed to load tags", msg.Error))}
	}
	m.state.SetTags(msg.Tags)
	return nil
}

// handleTagChanged reloads tags and short URLs, which list their tags, after a tag change.
func (m *Model) handleTagChanged(err error, failure, success string) []tea.Cmd {
	if err != nil {
		return []tea.Cmd{notifyErrorCmd(errorMessage(failure, err))}
	}
	return []tea.Cmd{
		notifySuccessCmd(success),
		m.commands.LoadTags(),
		m.commands.LoadShortURLs(m.state.GetShortURLsParams()),
	}
}

func (m *Model) handleClipboardResult(msg ClipboardResultMsg) tea.Cmd {
	if msg.Error != nil {
		return notifyErrorCmd(errorMessage("Failed to copy to clipboard", msg.Error))
	}
	label := msg.Label
	if label == "" {
		label = "text"
	}
	return notifyInfoCmd("Copied " + label)
}

func (m *Model) handleAddNotification(msg AddNotificationMsg) []tea.Cmd {
	var cmds []tea.Cmd
	id := m.state.AddNotification(msg.Type, msg.Message, msg.Duration)
	if msg.Duration > 0 {
		cmds = append(cmds, clearNotificationCmd(id, msg.Duration))
	}
	return cmds
}

func (m *Model) handleStartLoading(msg StartLoadingMsg) {
	m.state.SetLoading(msg.Resource, true)
	m.state.SetLoadingNotification(loadingMessage(msg.Resource))
}

func (m *Model) stopLoading(resource string) {
	m.state.SetLoading(resource, false)
	if !m.state.AnyLoading() {
		m.state.ClearLoadingNotification()
	}
}

func loadingMessage(resource string) string {
	switch resource {
	case ResourceConnect:
		return "Connecting..."
	case ResourceShortURLs:
		return "Loading short URLs..."
	case ResourceTags:
		return "Loading tags..."
	default:
		return "Refreshing..."
	}
}

func (m *Model) handleRefresh(msg RefreshMsg) []tea.Cmd {
	if m.services == nil {
		return nil
	}

	var cmds []tea.Cmd
	connected := m.state.IsConnected()

	if msg.Resource == "all" || msg.Resource == ResourceServers {
		cmds = append(cmds, m.commands.LoadServers())
	}
	if (msg.Resource == "all" || msg.Resource == ResourceOverview) && connected {
		cmds = append(cmds, startLoadingCmd(ResourceOverview), m.commands.RefreshVisits())
	}
	if (msg.Resource == "all" || msg.Resource == ResourceShortURLs) && connected {
		cmds = append(cmds, m.commands.LoadShortURLs(m.state.GetShortURLsParams()))
	}
	if (msg.Resource == "all" || msg.Resource == ResourceTags) && connected {
		cmds = append(cmds, m.commands.LoadTags())
	}

	if len(cmds) == 0 {
		return []tea.Cmd{notifyWarningCmd("No server connected")}
	}
	return cmds
}

func (m *Model) updateActiveTab(msg tea.Msg) tea.Cmd {
	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		var cmd tea.Cmd
		m.tabs[m.activeTab], cmd = m.tabs[m.activeTab].Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) updateTabSizes() {
	contentHeight := m.height - 5
	contentHeight = max(0, contentHeight)

	for _, tab := range m.tabs {
		if tab != nil {
			tab.SetSize(m.width, contentHeight)
		}
	}
}

func (m *Model) activeTabCapturing() bool {
	if int(m.activeTab) >= len(m.tabs) || m.tabs[m.activeTab] == nil {
		return false
	}
	c, ok := m.tabs[m.activeTab].(InputCapturer)
	return ok && c.CapturingInput()
}

func (m *Model) switchTab(id TabID) {
	m.activeTab = id
	m.updateTabSizes()
}

// handleKeyMsg handles keyboard input. It reports handled for global keys.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Cmd, bool) {
	if key.Matches(msg, m.keymap.ForceQuit) {
		return tea.Quit, true
	}
	if m.activeTabCapturing() {
		return nil, false
	}

	switch {
	case key.Matches(msg, m.keymap.Quit):
		return tea.Quit, true

	case key.Matches(msg, m.keymap.Help):
		m.showHelp = !m.showHelp
		return nil, true

	case key.Matches(msg, m.keymap.Tab1):
		m.switchTab(TabOverview)
		return nil, true

	case key.Matches(msg, m.keymap.Tab2):
		m.switchTab(TabShortURLs)
		return nil, true

	case key.Matches(msg, m.keymap.Tab3):
		m.switchTab(TabTags)
		return nil, true

	case key.Matches(msg, m.keymap.Tab4):
		m.switchTab(TabServers)
		return nil, true

	case key.Matches(msg, m.keymap.Tab5):
		m.switchTab(TabInfo)
		return nil, true

	case key.Matches(msg, m.keymap.NextTab):
		if !m.showHelp {
			m.switchTab(TabID((int(m.activeTab) + 1) % len(m.tabs)))
		}
		return nil, true

	case key.Matches(msg, m.keymap.PrevTab):
		if !m.showHelp {
			m.switchTab(TabID((int(m.activeTab) - 1 + len(m.tabs)) % len(m.tabs)))
		}
		return nil, true

	case key.Matches(msg, m.keymap.Refresh):
		return tea.Batch(m.handleRefresh(RefreshMsg{Resource: m.activeTab.resource()})...), true

	case key.Matches(msg, m.keymap.Escape):
		if m.showHelp {
			m.showHelp = false
			return nil, true
		}
	}

	// Let the tab handle other keys
	return nil, false
}

func (m *Model) handleServiceEvent(event services.ServiceEvent) tea.Cmd {
	switch e := event.(type) {
	case services.ServersChangedEvent:
		m.state.SetServers(e.Servers)
		if srv, _, ok := m.state.GetConnection(); ok && !containsServer(e.Servers, srv.ID) {
			m.state.ClearConnection()
		}

	case services.ServerConnectedEvent:
		if e.Error != nil {
			// Reported by ConnectResultMsg.
			return nil
		}
		m.state.SetConnection(e.Server, e.Status, e.LiveUpdates)
		return tea.Batch(
			notifySuccessCmd(fmt.Sprintf("Connected to %s (Shlink %s)", e.Server.Name, e.Status.Version)),
			m.commands.LoadShortURLs(m.state.GetShortURLsParams()),
			m.commands.LoadTags(),
			m.commands.LoadHistory(m.state.GetTimeRange()),
		)

	case services.OverviewUpdatedEvent:
		m.state.SetOverview(e.Overview)

	case services.VisitsCreatedEvent:
		return m.commands.LoadHistory(m.state.GetTimeRange())

	case services.ErrorEvent:
		return notifyErrorCmd(fmt.Sprintf("[%s] %v", e.Service, e.Error))
	}

	return nil
}

func containsServer(list []models.ServerWithStatus, id string) bool {
	for _, srv := range list {
		if srv.ID == id {
			return true
		}
	}
	return false
}

func errorMessage(context string, err error) string {
	if context == "" {
		return err.Error()
	}
	return fmt.Sprintf("%s: %v", context, err)
}

func resultCmd(err error, failure, success string) tea.Cmd {
	if err != nil {
		return notifyErrorCmd(errorMessage(failure, err))
	}
	return notifySuccessCmd(success)
}

// View renders the application UI.
func (m *Model) View() string {
	var b strings.Builder

	if m.width > 0 {
		b.WriteString(m.renderNavbar())
		b.WriteString("\n")
	}

	if !m.ready {
		b.WriteString(m.styles.Content.Render(fmt.Sprintf("%s Loading...", m.spinner.View())))
		return b.String()
	}

	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		b.WriteString(m.tabs[m.activeTab].View())
	} else {
		b.WriteString(m.renderPlaceholder())
	}

	mainView := b.String()

	if m.showHelp {
		mainView = m.overlayCentered(mainView, m.renderHelp())
	}

	if notifications := m.renderNotifications(); len(notifications) > 0 {
		return m.overlayToasts(mainView, notifications)
	}

	return mainView
}

func (m *Model) overlayCentered(mainView string, overlay string) string {
	mainLines := strings.Split(mainView, "\n")
	overlayLines := strings.Split(overlay, "\n")

	overlayHeight := len(overlayLines)
	overlayWidth := lipgloss.Width(overlay)

	y := max((m.height-overlayHeight)/2, 0)
	x := max((m.width-overlayWidth)/2, 0)

	for i, overlayLine := range overlayLines {
		mainY := y + i
		if mainY >= len(mainLines) {
			break
		}

		mainLine := mainLines[mainY]

		// Keep what is visible left and right of the overlay.
		left := ansi.Truncate(mainLine, x, "")
		right := ansi.TruncateLeft(mainLine, x+overlayWidth, "")

		if lipgloss.Width(left) < x {
			left += strings.Repeat(" ", x-lipgloss.Width(left))
		}

		mainLines[mainY] = left + overlayLine + right
	}

	return strings.Join(mainLines, "\n")
}

func (m *Model) renderNavbar() string {
	var tabs []string

	for i, name := range m.tabNames {
		if TabID(i) == m.activeTab {
			tabs = append(tabs, m.styles.ActiveTab.Render(fmt.Sprintf("[%d] %s", i+1, name)))
		} else {
			tabs = append(tabs, m.styles.InactiveTab.Render(fmt.Sprintf(" %d  %s", i+1, name)))
		}
	}

	tabBar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	if status := m.renderConnection(); status != "" {
		gap := m.width - lipgloss.Width(tabBar) - lipgloss.Width(status) - 4
		if gap > 0 {
			tabBar += strings.Repeat(" ", gap) + status
		}
	}

	return m.styles.TabBar.Width(m.width).Render(tabBar)
}

func (m *Model) renderConnection() string {
	srv, _, ok := m.state.GetConnection()
	if !ok {
		return m.styles.Subtle.Render("not connected")
	}
	name := m.styles.Highlight.Render(srv.Name)
	if m.state.IsLive() {
		return name + " " + m.styles.Success.Render("● live")
	}
	return name
}

func (m *Model) renderNotifications() []string {
	notifications := m.state.GetNotifications()
	if len(notifications) == 0 {
		return nil
	}

	var toasts []string
	for _, n := range notifications {
		var style lipgloss.Style
		var prefix string

		switch n.Type {
		case NotificationSuccess:
			style = m.styles.NotificationSuccess
			prefix = "[OK]"
		case NotificationError:
			style = m.styles.NotificationError
			prefix = "[ERR]"
		case NotificationWarning:
			style = m.styles.NotificationWarning
			prefix = "[WARN]"
		case NotificationInfo:
			style = m.styles.NotificationInfo
			prefix = "[INFO]"
		case NotificationLoading:
			style = m.styles.NotificationInfo
			prefix = m.spinner.View()
		}

		content := style.Render(fmt.Sprintf("%s %s", prefix, n.Message))
		toasts = append(toasts, m.styles.Toast.Render(content))
	}

	return toasts
}

func (m *Model) overlayToasts(mainView string, toasts []string) string {
	if len(toasts) == 0 {
		return mainView
	}

	toastStack := lipgloss.JoinVertical(lipgloss.Right, toasts...)
	toastLines := strings.Split(toastStack, "\n")
	mainLines := strings.Split(mainView, "\n")

	toastWidth := lipgloss.Width(toastStack)
	startX := max(m.width-toastWidth-2, 0)

	startY := 2

	for i, toastLine := range toastLines {
		lineIdx := startY + i
		if lineIdx >= len(mainLines) {
			break
		}

		mainLine := mainLines[lineIdx]
		mainLineWidth := lipgloss.Width(mainLine)

		if mainLineWidth < startX {
			padding := strings.Repeat(" ", startX-mainLineWidth)
			mainLines[lineIdx] = mainLine + padding + toastLine
		} else {
			truncated := ansi.Truncate(mainLine, startX, "")
			mainLines[lineIdx] = truncated + toastLine
		}
	}

	return strings.Join(mainLines, "\n")
}

func (m *Model) renderHelp() string {
	var lines []string

	lines = append(lines, m.styles.Title.Render("Keyboard Shortcuts"))
	lines = append(lines, "")

	lines = append(lines, m.styles.Highlight.Render("Navigation"))
	lines = append(lines, "  1-5        Switch tabs")
	lines = append(lines, "  Tab        Next tab")
	lines = append(lines, "  Shift+Tab  Previous tab")
	lines = append(lines, "")

	lines = append(lines, m.styles.Highlight.Render("Actions"))
	lines = append(lines, "  r          Refresh data")
	lines = append(lines, "  ?          Toggle help")
	lines = append(lines, "  q/Ctrl+C   Quit")
	lines = append(lines, "")

	lines = append(lines, m.styles.Highlight.Render("Lists"))
	lines = append(lines, "  j/k, ↑/↓   Move up/down")
	lines = append(lines, "  Enter      Select item")
	lines = append(lines, "  /          Search")
	lines = append(lines, "")

	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		tabHelp := m.tabs[m.activeTab].ShortHelp()
		if len(tabHelp) > 0 {
			lines = append(lines, m.styles.Highlight.Render(fmt.Sprintf("%s Tab", m.tabNames[m.activeTab])))
			for _, binding := range tabHelp {
				lines = append(lines, fmt.Sprintf("  %-10s %s", binding.Help().Key, binding.Help().Desc))
			}
		}
	}

	lines = append(lines, "")
	lines = append(lines, m.styles.Subtle.Render("Press ? or Esc to close"))

	return styles.HelpPanelStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderPlaceholder() string {
	content := fmt.Sprintf(
		"Tab %d: %s\n\n%s",
		m.activeTab+1,
		m.tabNames[m.activeTab],
		m.styles.Subtle.Render("This tab is not yet implemented."),
	)
	return m.styles.Content.Render(content)
}
