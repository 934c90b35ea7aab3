package app

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/shlink-dashboard-tui/internal/models"
	"github.com/j-veylop/shlink-dashboard-tui/internal/services"
	"github.com/j-veylop/shlink-dashboard-tui/internal/shlink"
)

const (
	// DefaultTickInterval is the default interval between ticks.
	DefaultTickInterval = 2 * time.Second

	// DefaultNotificationDuration is the default duration for notifications.
	DefaultNotificationDuration = 5 * time.Second

	// QuickNotificationDuration is for brief notifications.
	QuickNotificationDuration = 3 * time.Second

	// LongNotificationDuration is for important notifications.
	LongNotificationDuration = 10 * time.Second

	// RecentVisitsLimit is how many pushed visits the overview lists.
	RecentVisitsLimit = 10
)

var writeClipboard = clipboard.WriteAll

// tickCmd returns a command that sends a TickMsg after the specified interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// defaultTickCmd returns a command that sends a TickMsg after the default interval.
func defaultTickCmd() tea.Cmd {
	return tickCmd(DefaultTickInterval)
}

func startLoadingCmd(resource string) tea.Cmd {
	return func() tea.Msg {
		return StartLoadingMsg{Resource: resource}
	}
}

func loadServersCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		return ServersLoadedMsg{Servers: mgr.ServersWithStatus()}
	}
}

func connectSelectedCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		srv, ok := mgr.Servers().Selected()
		if !ok {
			return ConnectResultMsg{}
		}
		return ConnectResultMsg{ServerID: srv.ID, Error: mgr.Connect(context.Background(), srv.ID)}
	}
}

func connectCmd(mgr *services.Manager, id string) tea.Cmd {
	return func() tea.Msg {
		return ConnectResultMsg{ServerID: id, Error: mgr.Connect(context.Background(), id)}
	}
}

func addServerCmd(mgr *services.Manager, server models.Server) tea.Cmd {
	return func() tea.Msg {
		added, err := mgr.Servers().Add(server)
		return ServerAddedMsg{Server: added, Error: err}
	}
}

func deleteServerCmd(mgr *services.Manager, id, name string) tea.Cmd {
	return func() tea.Msg {
		return ServerDeletedMsg{Name: name, Error: mgr.Servers().Delete(id)}
	}
}

func refreshVisitsCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		return VisitsRefreshedMsg{Error: mgr.RefreshVisits(context.Background())}
	}
}

func loadHistoryCmd(mgr *services.Manager, timeRange models.TimeRange) tea.Cmd {
	return func() tea.Msg {
		history, err := mgr.VisitsHistory(timeRange)
		if err != nil {
			return HistoryLoadedMsg{Error: err}
		}
		recent, err := mgr.RecentVisits(RecentVisitsLimit)
		return HistoryLoadedMsg{History: history, Recent: recent, Error: err}
	}
}

func loadShortURLsCmd(mgr *services.Manager, params shlink.ListParams) tea.Cmd {
	return func() tea.Msg {
		list, err := mgr.ListShortURLs(context.Background(), params)
		return ShortURLsLoadedMsg{List: list, Params: params, Error: err}
	}
}

func createShortURLCmd(mgr *services.Manager, data models.ShortURLData) tea.Cmd {
	return func() tea.Msg {
		created, err := mgr.CreateShortURL(context.Background(), data)
		return ShortURLCreatedMsg{ShortURL: created, Error: err}
	}
}

func deleteShortURLCmd(mgr *services.Manager, shortCode, domain string) tea.Cmd {
	return func() tea.Msg {
		err := mgr.DeleteShortURL(context.Background(), shortCode, domain)
		return ShortURLDeletedMsg{ShortCode: shortCode, Error: err}
	}
}

func loadShortURLVisitsCmd(mgr *services.Manager, shortCode, domain string) tea.Cmd {
	return func() tea.Msg {
		visits, err := mgr.ShortURLVisits(context.Background(), shortCode, domain, 1)
		return ShortURLVisitsLoadedMsg{ShortCode: shortCode, Visits: visits, Error: err}
	}
}

func loadTagsCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		tags, err := mgr.ListTags(context.Background())
		return TagsLoadedMsg{Tags: tags, Error: err}
	}
}

func deleteTagCmd(mgr *services.Manager, tag string) tea.Cmd {
	return func() tea.Msg {
		return TagDeletedMsg{Tag: tag, Error: mgr.DeleteTags(context.Background(), tag)}
	}
}

func renameTagCmd(mgr *services.Manager, oldName, newName string) tea.Cmd {
	return func() tea.Msg {
		err := mgr.RenameTag(context.Background(), oldName, newName)
		return TagRenamedMsg{OldName: oldName, NewName: models.NormalizeTag(newName), Error: err}
	}
}

// copyToClipboardCmd returns a command that writes text to the system clipboard.
func copyToClipboardCmd(text, label string) tea.Cmd {
	return func() tea.Msg {
		return ClipboardResultMsg{Label: label, Error: writeClipboard(text)}
	}
}

// subscribeToServicesCmd returns a command that subscribes to service events.
func subscribeToServicesCmd(mgr *services.Manager) tea.Cmd {
	ch, _ := mgr.Subscribe()
	return func() tea.Msg {
		return SubscriptionEventMsg{Channel: ch}
	}
}

// waitForServiceEventCmd returns a command that waits for the next service event.
func waitForServiceEventCmd(ch <-chan services.ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return ServiceEventMsg{Event: event}
	}
}

// clearNotificationCmd returns a command that removes a notification after a delay.
func clearNotificationCmd(id string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return RemoveNotificationMsg{ID: id}
	})
}

func notifyCmd(t NotificationType, message string, duration time.Duration) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{Type: t, Message: message, Duration: duration}
	}
}

// notifySuccessCmd returns a command that adds a success notification.
func notifySuccessCmd(message string) tea.Cmd {
	return notifyCmd(NotificationSuccess, message, DefaultNotificationDuration)
}

// notifyErrorCmd returns a command that adds an error notification.
func notifyErrorCmd(message string) tea.Cmd {
	return notifyCmd(NotificationError, message, LongNotificationDuration)
}

// notifyWarningCmd returns a command that adds a warning notification.
func notifyWarningCmd(message string) tea.Cmd {
	return notifyCmd(NotificationWarning, message, DefaultNotificationDuration)
}

// notifyInfoCmd returns a command that adds an info notification.
func notifyInfoCmd(message string) tea.Cmd {
	return notifyCmd(NotificationInfo, message, QuickNotificationDuration)
}

// Commands binds the command functions to a service manager. Every
// manager-backed command is nil when there is no manager.
type Commands struct {
	manager *services.Manager
}

// NewCommands creates a new Commands instance.
func NewCommands(mgr *services.Manager) *Commands {
	return &Commands{manager: mgr}
}

// Tick returns a tick command with the specified interval.
func (c *Commands) Tick(interval time.Duration) tea.Cmd {
	return tickCmd(interval)
}

// DefaultTick returns a tick command with the default interval.
func (c *Commands) DefaultTick() tea.Cmd {
	return defaultTickCmd()
}

// SubscribeToServices returns a command that subscribes to service events.
func (c *Commands) SubscribeToServices() tea.Cmd {
	if c.manager == nil {
		return nil
	}
	return subscribeToServicesCmd(c.manager)
}

// LoadServers returns a command that loads the server profiles.
func (c *Commands) LoadServers() tea.Cmd {
	if c.manager == nil {
		return nil
	}
	return loadServersCmd(c.manager)
}

// ConnectSelected connects to the persisted selected server.
func (c *Commands) ConnectSelected() tea.Cmd {
	if c.manager == nil {
		return nil
	}
	return tea.Batch(startLoadingCmd(ResourceConnect), connectSelectedCmd(c.manager))
}

// Connect connects to a server profile.
func (c *Commands) Connect(id string) tea.Cmd {
	if c.manager == nil {
		return nil
	}
	return tea.Batch(startLoadingCmd(ResourceConnect), connectCmd(c.manager, id))
}

// AddServer adds a server profile.
func (c *Commands) AddServer(server models.Server) tea.Cmd {
	if c.manager == nil {
		return nil
	}
	return addServerCmd(c.manager, server)
}

// DeleteServer deletes a server profile.
func (c *Commands) DeleteServer(id, name string) tea.Cmd {
	if c.manager == nil {
		return nil
	}
	return deleteServerCmd(c.manager, id, name)
}

// RefreshVisits reloads the visits count of the connected server.
func (c *Commands) RefreshVisits() tea.Cmd {
	if c.manager == nil {
		return nil
	}
	return refreshVisitsCmd(c.manager)
}

// LoadHistory loads the stored visits history.
func (c *Commands) LoadHistory(timeRange models.TimeRange) tea.Cmd {
	if c.manager == nil {
		return nil
	}
	return loadHistoryCmd(c.manager, timeRange)
}

// LoadShortURLs loads a page of short URLs.
func (c *Commands) LoadShortURLs(params shlink.ListParams) tea.Cmd {
	if c.manager == nil {
		return nil
	}
	return tea.Batch(startLoadingCmd(ResourceShortURLs), loadShortURLsCmd(c.manager, params))
}

// CreateShortURL creates a short URL.
func (c *Commands) CreateShortURL(data models.ShortURLData) tea.Cmd {
	if c.manager == nil {
		return nil
	}
	return createShortURLCmd(c.manager, data)
}

// DeleteShortURL deletes a short URL.
func (c *Commands) DeleteShortURL(shortCode, domain string) tea.Cmd {
	if c.manager == nil {
		return nil
	}
	return deleteShortURLCmd(c.manager, shortCode, domain)
}

// LoadShortURLVisits loads the first page of visits of a short URL.
func (c *Commands) LoadShortURLVisits(shortCode, domain string) tea.Cmd {
	if c.manager == nil {
		return nil
	}
	return loadShortURLVisitsCmd(c.manager, shortCode, domain)
}

// LoadTags loads the tags with their stats.
func (c *Commands) LoadTags() tea.Cmd {
	if c.manager == nil {
		return nil
	}
	return tea.Batch(startLoadingCmd(ResourceTags), loadTagsCmd(c.manager))
}

// DeleteTag deletes a tag.
func (c *Commands) DeleteTag(tag string) tea.Cmd {
	if c.manager == nil {
		return nil
	}
	return deleteTagCmd(c.manager, tag)
}

// RenameTag renames a tag.
func (c *Commands) RenameTag(oldName, newName string) tea.Cmd {
	if c.manager == nil {
		return nil
	}
	return renameTagCmd(c.manager, oldName, newName)
}

// CopyToClipboard copies text to the system clipboard.
func (c *Commands) CopyToClipboard(text, label string) tea.Cmd {
	return copyToClipboardCmd(text, label)
}

// NotifySuccess returns a command that adds a success notification.
func (c *Commands) NotifySuccess(message string) tea.Cmd {
	return notifySuccessCmd(message)
}

// NotifyError returns a command that adds an error notification.
func (c *Commands) NotifyError(message string) tea.Cmd {
	return notifyErrorCmd(message)
}

// NotifyWarning returns a command that adds a warning notification.
func (c *Commands) NotifyWarning(message string) tea.Cmd {
	return notifyWarningCmd(message)
}

// NotifyInfo returns a command that adds an info notification.
func (c *Commands) NotifyInfo(message string) tea.Cmd {
	return notifyInfoCmd(message)
}

// ClearNotification returns a command that removes a notification after a delay.
func (c *Commands) ClearNotification(id string, delay time.Duration) tea.Cmd {
	return clearNotificationCmd(id, delay)
}

// Quit returns a command that quits the application.
func (c *Commands) Quit() tea.Cmd {
	return tea.Quit
}
