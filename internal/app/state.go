// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"sync"
	"time"

	"github.com/j-veylop/shlink-dashboard-tui/internal/models"
	"github.com/j-veylop/shlink-dashboard-tui/internal/qrcode"
	"github.com/j-veylop/shlink-dashboard-tui/internal/shlink"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	// NotificationSuccess represents a success notification.
	NotificationSuccess NotificationType = iota
	// NotificationError represents an error notification.
	NotificationError
	// NotificationWarning represents a warning notification.
	NotificationWarning
	// NotificationInfo represents an informational notification.
	NotificationInfo
	// NotificationLoading represents a loading notification with spinner.
	NotificationLoading
)

const (
	// LoadingNotificationID is the fixed ID for loading notifications.
	LoadingNotificationID = "__loading__"

	// DefaultItemsPerPage is the page size used when listing short URLs.
	DefaultItemsPerPage = 20

	maxNotifications = 10
)

// String returns the string representation of a NotificationType.
func (n NotificationType) String() string {
	switch n {
	case NotificationSuccess:
		return "success"
	case NotificationError:
		return "error"
	case NotificationWarning:
		return "warning"
	case NotificationInfo:
		return "info"
	case NotificationLoading:
		return "loading"
	default:
		return "unknown"
	}
}

// Notification represents a user-facing notification message.
type Notification struct {
	CreatedAt time.Time
	ID        string
	Message   string
	Type      NotificationType
	Duration  time.Duration
}

// IsExpired returns true if the notification has expired.
func (n *Notification) IsExpired() bool {
	if n.Duration <= 0 {
		return false
	}
	return time.Since(n.CreatedAt) > n.Duration
}

// Loading resources.
const (
	ResourceInitial   = "initial"
	ResourceConnect   = "connect"
	ResourceServers   = "servers"
	ResourceOverview  = "overview"
	ResourceShortURLs = "shorturls"
	ResourceTags      = "tags"
	ResourceHistory   = "history"
)

// LoadingState tracks loading states for different resources.
type LoadingState struct {
	Initial   bool
	Connect   bool
	Servers   bool
	Overview  bool
	ShortURLs bool
	Tags      bool
	History   bool
}

// State is the data shared by every tab.
type State struct {
	mu sync.RWMutex

	Servers     []models.ServerWithStatus
	Server      *models.Server
	Status      models.ServerStatus
	LiveUpdates bool

	Overview     models.VisitsOverview
	History      *models.VisitsHistory
	RecentVisits []models.VisitEvent
	TimeRange    models.TimeRange

	ShortURLs       *models.ShortURLsList
	ShortURLsParams shlink.ListParams
	Tags            []models.TagStats

	QROptions qrcode.Options

	Loading LoadingState

	LastUpdated time.Time

	notifications   []Notification
	notificationSeq int
}

// NewState creates an empty state waiting for its initial load.
func NewState() *State {
	return &State{
		Servers:         make([]models.ServerWithStatus, 0),
		TimeRange:       models.TimeRange24Hours,
		ShortURLsParams: DefaultShortURLsParams(),
		QROptions:       qrcode.Options{Size: 300, Format: qrcode.FormatPNG},
		notifications:   make([]Notification, 0),
		Loading: LoadingState{
			Initial: true,
		},
	}
}

// DefaultShortURLsParams returns the parameters of the first short URLs page.
func DefaultShortURLsParams() shlink.ListParams {
	return shlink.ListParams{
		Page:         1,
		ItemsPerPage: DefaultItemsPerPage,
		OrderBy:      models.OrderBy{Field: models.OrderByDateCreated, Desc: true},
	}
}

// SetLoading sets the loading state for a specific resource.
func (s *State) SetLoading(resource string, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch resource {
	case ResourceInitial:
		s.Loading.Initial = loading
	case ResourceConnect:
		s.Loading.Connect = loading
	case ResourceServers:
		s.Loading.Servers = loading
	case ResourceOverview:
		s.Loading.Overview = loading
	case ResourceShortURLs:
		s.Loading.ShortURLs = loading
	case ResourceTags:
		s.Loading.Tags = loading
	case ResourceHistory:
		s.Loading.History = loading
	}
}

// AnyLoading returns true if any resource is currently loading.
func (s *State) AnyLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l := s.Loading
	return l.Initial || l.Connect || l.Servers || l.Overview || l.ShortURLs || l.Tags || l.History
}

// IsLoading reports whether a single resource is loading.
func (s *State) IsLoading(resource string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch resource {
	case ResourceInitial:
		return s.Loading.Initial
	case ResourceConnect:
		return s.Loading.Connect
	case ResourceServers:
		return s.Loading.Servers
	case ResourceOverview:
		return s.Loading.Overview
	case ResourceShortURLs:
		return s.Loading.ShortURLs
	case ResourceTags:
		return s.Loading.Tags
	case ResourceHistory:
		return s.Loading.History
	}
	return false
}

// IsInitialLoading returns true if initial data is still loading.
func (s *State) IsInitialLoading() bool {
	return s.IsLoading(ResourceInitial)
}

// SetServers replaces the server profiles.
func (s *State) SetServers(list []models.ServerWithStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Servers = list
	s.LastUpdated = time.Now()
}

// GetServers returns a copy of the server profiles.
func (s *State) GetServers() []models.ServerWithStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]models.ServerWithStatus, len(s.Servers))
	copy(list, s.Servers)
	return list
}

// GetServerCount returns the number of server profiles.
func (s *State) GetServerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.Servers)
}

// SetConnection records the connected server. Data of the previous server is dropped.
func (s *State) SetConnection(server models.Server, status models.ServerStatus, live bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Server == nil || s.Server.ID != server.ID {
		s.History = nil
		s.RecentVisits = nil
		s.ShortURLs = nil
		s.Tags = nil
		s.ShortURLsParams = DefaultShortURLsParams()
	}
	s.Server = &server
	s.Status = status
	s.LiveUpdates = live
	s.LastUpdated = time.Now()
}

// ClearConnection forgets the connected server and its data.
func (s *State) ClearConnection() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Server = nil
	s.Status = models.ServerStatus{}
	s.LiveUpdates = false
	s.Overview = models.VisitsOverview{}
	s.History = nil
	s.RecentVisits = nil
	s.ShortURLs = nil
	s.Tags = nil
}

// GetConnection returns the connected server, its status and whether one is connected.
func (s *State) GetConnection() (models.Server, models.ServerStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Server == nil {
		return models.Server{}, models.ServerStatus{}, false
	}
	return *s.Server, s.Status, true
}

// IsConnected reports whether a server is connected.
func (s *State) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Server != nil
}

// IsLive reports whether pushed visits are being received.
func (s *State) IsLive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LiveUpdates
}

// SetOverview updates the visits overview.
func (s *State) SetOverview(overview models.VisitsOverview) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Overview = overview
	s.LastUpdated = time.Now()
}

// GetOverview returns the visits overview.
func (s *State) GetOverview() models.VisitsOverview {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Overview
}

// SetHistory updates the visits history and the latest pushed visits.
func (s *State) SetHistory(history *models.VisitsHistory, recent []models.VisitEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.History = history
	s.RecentVisits = recent
}

// GetHistory returns the visits history.
func (s *State) GetHistory() *models.VisitsHistory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.History
}

// GetRecentVisits returns a copy of the latest pushed visits.
func (s *State) GetRecentVisits() []models.VisitEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recent := make([]models.VisitEvent, len(s.RecentVisits))
	copy(recent, s.RecentVisits)
	return recent
}

// SetTimeRange changes the history time range.
func (s *State) SetTimeRange(r models.TimeRange) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.TimeRange = r
}

// GetTimeRange returns the history time range.
func (s *State) GetTimeRange() models.TimeRange {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.TimeRange
}

// SetShortURLs stores a page of short URLs and the parameters that produced it.
func (s *State) SetShortURLs(list *models.ShortURLsList, params shlink.ListParams) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ShortURLs = list
	s.ShortURLsParams = params
}

// GetShortURLs returns the current page of short URLs, if loaded.
func (s *State) GetShortURLs() *models.ShortURLsList {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ShortURLs
}

// GetShortURLsParams returns the parameters of the current short URLs page.
func (s *State) GetShortURLsParams() shlink.ListParams {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ShortURLsParams
}

// SetTags replaces the tag stats.
func (s *State) SetTags(tags []models.TagStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Tags = tags
}

// GetTags returns a copy of the tag stats.
func (s *State) GetTags() []models.TagStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tags := make([]models.TagStats, len(s.Tags))
	copy(tags, s.Tags)
	return tags
}

// SetQROptions sets the QR code options used for every short URL.
func (s *State) SetQROptions(opts qrcode.Options) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.QROptions = opts
}

// GetQROptions returns the QR code options.
func (s *State) GetQROptions() qrcode.Options {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.QROptions
}

// QRCapabilities returns the QR code features of the connected server.
func (s *State) QRCapabilities() qrcode.Capabilities {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Server == nil {
		return qrcode.Capabilities{}
	}
	return shlink.QRCapabilities(s.Status.Version)
}

// QRCodeURL returns the QR code image URL of a short URL on the connected server.
func (s *State) QRCodeURL(shortURL string) string {
	caps := s.QRCapabilities()

	s.mu.RLock()
	opts := s.QROptions
	s.mu.RUnlock()

	return qrcode.BuildURL(shortURL, opts, caps)
}

// AddNotification adds a new notification and returns its ID.
func (s *State) AddNotification(notifType NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notificationSeq++
	id := time.Now().Format("20060102150405") + "-" + string(rune('A'+s.notificationSeq%26))

	s.notifications = append(s.notifications, Notification{
		ID:        id,
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	})

	if len(s.notifications) > maxNotifications {
		s.notifications = s.notifications[len(s.notifications)-maxNotifications:]
	}

	return id
}

// RemoveNotification removes a notification by ID.
func (s *State) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// ClearExpiredNotifications removes all expired notifications.
func (s *State) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	s.notifications = active
}

// GetNotifications returns a copy of all active notifications.
func (s *State) GetNotifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	return active
}

// ClearAllNotifications removes all notifications.
func (s *State) ClearAllNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = make([]Notification, 0)
}

// SetLoadingNotification sets a loading notification message.
func (s *State) SetLoadingNotification(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications[i].Message = message
			return
		}
	}

	s.notifications = append(s.notifications, Notification{
		ID:        LoadingNotificationID,
		Type:      NotificationLoading,
		Message:   message,
		CreatedAt: time.Now(),
	})
}

// ClearLoadingNotification removes the loading notification.
func (s *State) ClearLoadingNotification() {
	s.RemoveNotification(LoadingNotificationID)
}

// TimeSinceUpdate returns the duration since the last update.
func (s *State) TimeSinceUpdate() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.LastUpdated.IsZero() {
		return 0
	}
	return time.Since(s.LastUpdated)
}
