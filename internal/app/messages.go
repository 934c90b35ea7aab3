package app

import (
	"time"

	"github.com/j-veylop/shlink-dashboard-tui/internal/models"
	"github.com/j-veylop/shlink-dashboard-tui/internal/services"
	"github.com/j-veylop/shlink-dashboard-tui/internal/shlink"
)

// TickMsg is sent periodically to trigger state refresh.
type TickMsg struct {
	Time time.Time
}

// StartLoadingMsg signals that a resource is starting to load.
type StartLoadingMsg struct {
	Resource string
}

// StopLoadingMsg signals that a resource has finished loading.
type StopLoadingMsg struct {
	Resource string
}

// RefreshMsg requests a refresh of data.
type RefreshMsg struct {
	Resource string // "overview", "shorturls", "tags", "servers"
}

// ServersLoadedMsg contains the server profiles with their statuses.
type ServersLoadedMsg struct {
	Servers []models.ServerWithStatus
}

// ConnectServerMsg requests connecting to a server profile.
type ConnectServerMsg struct {
	ID string
}

// ConnectResultMsg contains the result of a connection attempt.
// An empty ServerID means there was nothing to connect to.
type ConnectResultMsg struct {
	Error    error
	ServerID string
}

// AddServerMsg requests adding a server profile.
type AddServerMsg struct {
	Server models.Server
}

// ServerAddedMsg contains the result of adding a server profile.
type ServerAddedMsg struct {
	Error  error
	Server models.Server
}

// DeleteServerMsg requests deletion of a server profile.
type DeleteServerMsg struct {
	ID   string
	Name string
}

// ServerDeletedMsg contains the result of a server profile deletion.
type ServerDeletedMsg struct {
	Error error
	Name  string
}

// VisitsRefreshedMsg is sent once a visits refresh finished.
type VisitsRefreshedMsg struct {
	Error error
}

// HistoryLoadedMsg contains the stored visits history of the connected server.
type HistoryLoadedMsg struct {
	Error   error
	History *models.VisitsHistory
	Recent  []models.VisitEvent
}

// ChangeTimeRangeMsg requests another history time range.
type ChangeTimeRangeMsg struct {
	Range models.TimeRange
}

// LoadShortURLsMsg requests a page of short URLs.
type LoadShortURLsMsg struct {
	Params shlink.ListParams
}

// ShortURLsLoadedMsg contains a page of short URLs.
type ShortURLsLoadedMsg struct {
	Error  error
	List   *models.ShortURLsList
	Params shlink.ListParams
}

// CreateShortURLMsg requests creating a short URL.
type CreateShortURLMsg struct {
	Data models.ShortURLData
}

// ShortURLCreatedMsg contains the result of creating a short URL.
type ShortURLCreatedMsg struct {
	Error    error
	ShortURL *models.ShortURL
}

// DeleteShortURLMsg requests deletion of a short URL.
type DeleteShortURLMsg struct {
	ShortCode string
	Domain    string
}

// ShortURLDeletedMsg contains the result of a short URL deletion.
type ShortURLDeletedMsg struct {
	Error     error
	ShortCode string
}

// LoadShortURLVisitsMsg requests the latest visits of a short URL.
type LoadShortURLVisitsMsg struct {
	ShortCode string
	Domain    string
}

// ShortURLVisitsLoadedMsg contains the latest visits of a short URL.
type ShortURLVisitsLoadedMsg struct {
	Error     error
	Visits    *models.VisitsList
	ShortCode string
}

// TagsLoadedMsg contains the tags of the connected server.
type TagsLoadedMsg struct {
	Error error
	Tags  []models.TagStats
}

// DeleteTagMsg requests deletion of a tag.
type DeleteTagMsg struct {
	Tag string
}

// TagDeletedMsg contains the result of a tag deletion.
type TagDeletedMsg struct {
	Error error
	Tag   string
}

// RenameTagMsg requests renaming a tag.
type RenameTagMsg struct {
	OldName string
	NewName string
}

// TagRenamedMsg contains the result of renaming a tag.
type TagRenamedMsg struct {
	Error   error
	OldName string
	NewName string
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Message  string
	Type     NotificationType
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ClearExpiredNotificationsMsg triggers clearing of expired notifications.
type ClearExpiredNotificationsMsg struct{}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}

// CopyToClipboardMsg requests copying text to clipboard.
type CopyToClipboardMsg struct {
	Text  string
	Label string
}

// ClipboardResultMsg contains the result of a clipboard operation.
type ClipboardResultMsg struct {
	Error error
	Label string
}
