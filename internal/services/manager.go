// Package services provides service orchestration for the TUI.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"
	"golang.org/x/sync/errgroup"

	"github.com/j-veylop/shlink-dashboard-tui/internal/config"
	"github.com/j-veylop/shlink-dashboard-tui/internal/db"
	"github.com/j-veylop/shlink-dashboard-tui/internal/logger"
	"github.com/j-veylop/shlink-dashboard-tui/internal/mercure"
	"github.com/j-veylop/shlink-dashboard-tui/internal/models"
	"github.com/j-veylop/shlink-dashboard-tui/internal/qrcode"
	"github.com/j-veylop/shlink-dashboard-tui/internal/services/history"
	"github.com/j-veylop/shlink-dashboard-tui/internal/services/refresh"
	"github.com/j-veylop/shlink-dashboard-tui/internal/services/servers"
	"github.com/j-veylop/shlink-dashboard-tui/internal/shlink"
	"github.com/j-veylop/shlink-dashboard-tui/internal/visits"
)

// ErrNotConnected is returned by server operations when no server is connected.
var ErrNotConnected = errors.New("no server connected")

type (
	// ServersChangedEvent is emitted when the server profiles change.
	ServersChangedEvent struct {
		Servers []models.ServerWithStatus
	}

	// ServerConnectedEvent is emitted after connecting to a server, successfully or not.
	ServerConnectedEvent struct {
		Error       error
		Server      models.Server
		Status      models.ServerStatus
		LiveUpdates bool
	}

	// OverviewUpdatedEvent is emitted on every change of the visits overview.
	OverviewUpdatedEvent struct {
		ServerID string
		Overview models.VisitsOverview
	}

	// VisitsCreatedEvent is emitted when the server pushes new visits.
	VisitsCreatedEvent struct {
		ServerID string
		Visits   []models.CreatedVisit
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Error   error
		Service string
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (ServersChangedEvent) isServiceEvent()  {}
func (ServerConnectedEvent) isServiceEvent() {}
func (OverviewUpdatedEvent) isServiceEvent() {}
func (VisitsCreatedEvent) isServiceEvent()   {}
func (ErrorEvent) isServiceEvent()           {}

var notify = func(title, body string) error {
	return beeep.Notify(title, body, "")
}

// connection is everything bound to the selected server.
type connection struct {
	server    models.Server
	client    *shlink.Client
	status    models.ServerStatus
	overview  *visits.Overview
	refresher *refresh.Service
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	live      bool
}

// Manager orchestrates services and event routing.
type Manager struct {
	mu          sync.RWMutex
	connectMu   sync.Mutex
	cfg         *config.Config
	servers     *servers.Service
	database    *db.DB
	history     *history.Service
	conn        *connection
	statuses    map[string]models.ServerStatus
	stopChan    chan struct{}
	subscribers []chan<- ServiceEvent
}

// NewManager creates a new service manager.
func NewManager(cfg *config.Config) (*Manager, error) {
	m := &Manager{
		cfg:      cfg,
		statuses: make(map[string]models.ServerStatus),
		stopChan: make(chan struct{}),
	}

	var err error
	m.servers, err = servers.New(cfg.ServersPath)
	if err != nil {
		return nil, err
	}

	m.database, err = db.New(cfg.DatabasePath)
	if err != nil {
		_ = m.servers.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	m.history = history.New(m.database)

	go m.routeEvents()
	go func() {
		if err := m.history.Prune(cfg.HistoryRetention); err != nil {
			logger.Warn("failed to prune history", "error", err)
		}
	}()

	return m, nil
}

// routeEvents routes events from the servers service to subscribers.
func (m *Manager) routeEvents() {
	for {
		select {
		case event, ok := <-m.servers.Events():
			if !ok {
				return
			}
			m.handleServersEvent(event)

		case <-m.stopChan:
			return
		}
	}
}

func (m *Manager) handleServersEvent(event servers.Event) {
	switch event.Type {
	case servers.EventError:
		m.broadcast(ErrorEvent{Service: "servers", Error: event.Error})
		return

	case servers.EventServerDeleted:
		if event.Server != nil && m.connectedID() == event.Server.ID {
			m.Disconnect()
		}
	}

	m.broadcast(ServersChangedEvent{Servers: m.ServersWithStatus()})
}

// handleOverviewChange publishes overview changes of conn while it is the
// active connection. Late results of a replaced connection are dropped.
func (m *Manager) handleOverviewChange(conn *connection, overview models.VisitsOverview) {
	m.mu.RLock()
	current := m.conn == conn
	m.mu.RUnlock()
	if !current {
		return
	}
	m.broadcast(OverviewUpdatedEvent{ServerID: conn.server.ID, Overview: overview})
}

// ConnectSelected connects to the persisted selected server, if any.
func (m *Manager) ConnectSelected(ctx context.Context) error {
	srv, ok := m.servers.Selected()
	if !ok {
		return nil
	}
	return m.Connect(ctx, srv.ID)
}

// Connect selects a server, checks it is reachable and starts keeping its
// visits overview up to date. Health and Mercure info are fetched concurrently.
func (m *Manager) Connect(ctx context.Context, id string) error {
	m.connectMu.Lock()
	defer m.connectMu.Unlock()

	srv, err := m.servers.Get(id)
	if err != nil {
		return err
	}
	if err := m.servers.Select(id); err != nil {
		return err
	}

	m.Disconnect()

	client := shlink.New(srv, m.cfg.HTTPTimeout)

	var health *shlink.Health
	var info *shlink.MercureInfo
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		health, err = client.Health(gctx)
		return err
	})
	g.Go(func() error {
		if !m.cfg.RealTimeUpdates {
			return nil
		}
		var err error
		if info, err = client.MercureInfo(gctx); err != nil {
			logger.Info("Real-time updates unavailable", "server", srv.Name, "error", err)
			info = nil
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		status := models.ServerStatus{Error: err.Error()}
		m.setStatus(srv.ID, status)
		m.broadcast(ServerConnectedEvent{Server: srv, Status: status, Error: err})
		m.broadcast(ServersChangedEvent{Servers: m.ServersWithStatus()})
		return fmt.Errorf("failed to connect to %s: %w", srv.Name, err)
	}

	status := models.ServerStatus{
		Version:     health.Version,
		Healthy:     health.IsPassing(),
		ConnectedAt: time.Now(),
	}
	m.setStatus(srv.ID, status)

	connCtx, cancel := context.WithCancel(context.Background())
	conn := &connection{
		server:   srv,
		client:   client,
		status:   status,
		overview: visits.NewOverview(),
		ctx:      connCtx,
		cancel:   cancel,
		live:     info != nil,
	}
	conn.overview.OnChange(func(overview models.VisitsOverview) {
		m.handleOverviewChange(conn, overview)
	})

	m.mu.Lock()
	m.conn = conn
	m.mu.Unlock()

	conn.refresher = refresh.New(client, conn.overview, refresh.Config{
		Interval: m.cfg.VisitsRefreshInterval,
		Timeout:  m.cfg.HTTPTimeout,
	})
	conn.wg.Add(1)
	go m.forwardRefreshEvents(connCtx, conn)

	if conn.live {
		sub := mercure.New(mercureInfoFunc(client), mercure.Config{BatchInterval: m.cfg.MercureBatchInterval})
		batches := sub.Subscribe(connCtx)
		conn.wg.Add(1)
		go func() {
			defer conn.wg.Done()
			visits.Listen(connCtx, batches, conn.overview, func(batch []models.CreatedVisit, state models.VisitsOverview) {
				m.handleVisitsCreated(srv.ID, batch, state)
			})
		}()
	}

	logger.Info("Connected to server", "server", srv.Name, "version", status.Version, "live", conn.live)
	m.broadcast(ServerConnectedEvent{Server: srv, Status: status, LiveUpdates: conn.live})
	m.broadcast(ServersChangedEvent{Servers: m.ServersWithStatus()})
	return nil
}

func mercureInfoFunc(client *shlink.Client) mercure.InfoFunc {
	return func(ctx context.Context) (mercure.Info, error) {
		info, err := client.MercureInfo(ctx)
		if err != nil {
			return mercure.Info{}, err
		}
		return mercure.Info{HubURL: info.MercureHubURL, Token: info.Token}, nil
	}
}

// Disconnect stops every background task bound to the connected server.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	conn := m.conn
	m.conn = nil
	m.mu.Unlock()

	if conn == nil {
		return
	}

	conn.cancel()
	if conn.refresher != nil {
		_ = conn.refresher.Close()
	}
	conn.wg.Wait()
	logger.Debug("Disconnected from server", "server", conn.server.Name)
}

func (m *Manager) forwardRefreshEvents(ctx context.Context, conn *connection) {
	defer conn.wg.Done()

	for {
		select {
		case event := <-conn.refresher.Events():
			switch event.Type {
			case refresh.EventRefreshed:
				if _, err := m.history.RecordSnapshot(conn.server.ID, event.VisitsCount); err != nil {
					logger.Warn("failed to record visits snapshot", "error", err)
				}
			case refresh.EventRefreshError:
				m.broadcast(ErrorEvent{Service: "visits", Error: event.Error})
			}

		case <-ctx.Done():
			return
		}
	}
}

// handleVisitsCreated records a pushed batch. state is the overview right
// after the batch was folded in.
func (m *Manager) handleVisitsCreated(serverID string, batch []models.CreatedVisit, state models.VisitsOverview) {
	if err := m.history.RecordVisits(serverID, batch); err != nil {
		logger.Warn("failed to record visits", "error", err)
	}

	m.broadcast(VisitsCreatedEvent{ServerID: serverID, Visits: batch})

	m.checkMilestone(state.VisitsCount-len(batch), state.VisitsCount)
}

// checkMilestone sends a desktop notification when the count crosses a
// multiple of VisitsNotifyEvery.
func (m *Manager) checkMilestone(before, after int) {
	every := m.cfg.VisitsNotifyEvery
	if every <= 0 || before < 0 || after <= before {
		return
	}
	if before/every == after/every {
		return
	}

	milestone := (after / every) * every
	title := fmt.Sprintf("%d visits reached", milestone)
	body := fmt.Sprintf("%s now has %d visits", m.connectedName(), after)
	if err := notify(title, body); err != nil {
		logger.Debug("failed to send notification", "error", err)
	}
}

// broadcast sends an event to all subscribers without blocking.
func (m *Manager) broadcast(event ServiceEvent) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, WaitForEvent(ch)
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return event
	}
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

func (m *Manager) setStatus(id string, status models.ServerStatus) {
	m.mu.Lock()
	m.statuses[id] = status
	m.mu.Unlock()
}

func (m *Manager) connectedID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.conn == nil {
		return ""
	}
	return m.conn.server.ID
}

func (m *Manager) connectedName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.conn == nil {
		return "Server"
	}
	return m.conn.server.Name
}

// ServersWithStatus returns every profile with its last connection status.
func (m *Manager) ServersWithStatus() []models.ServerWithStatus {
	list := m.servers.List()
	selectedID := ""
	if srv, ok := m.servers.Selected(); ok {
		selectedID = srv.ID
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]models.ServerWithStatus, len(list))
	for i, srv := range list {
		result[i] = models.ServerWithStatus{Server: srv, IsSelected: srv.ID == selectedID}
		if status, ok := m.statuses[srv.ID]; ok {
			result[i].Status = &status
		}
	}
	return result
}

// Connected returns the connected server and its status.
func (m *Manager) Connected() (models.Server, models.ServerStatus, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.conn == nil {
		return models.Server{}, models.ServerStatus{}, false
	}
	return m.conn.server, m.conn.status, true
}

// LiveUpdates reports whether pushed visits are being received.
func (m *Manager) LiveUpdates() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.conn != nil && m.conn.live
}

func (m *Manager) client() (*shlink.Client, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.conn == nil {
		return nil, "", ErrNotConnected
	}
	return m.conn.client, m.conn.server.ID, nil
}

// Overview returns the visits overview of the connected server.
func (m *Manager) Overview() models.VisitsOverview {
	m.mu.RLock()
	conn := m.conn
	m.mu.RUnlock()
	if conn == nil {
		return models.VisitsOverview{}
	}
	return conn.overview.Snapshot()
}

// RefreshVisits reloads the visits count of the connected server. The
// refresh is cancelled when that server is disconnected.
func (m *Manager) RefreshVisits(ctx context.Context) error {
	m.mu.RLock()
	conn := m.conn
	m.mu.RUnlock()
	if conn == nil {
		return ErrNotConnected
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(conn.ctx, cancel)
	defer stop()

	return conn.refresher.Refresh(ctx)
}

// VisitsHistory returns the stored history of the connected server.
func (m *Manager) VisitsHistory(timeRange models.TimeRange) (*models.VisitsHistory, error) {
	_, id, err := m.client()
	if err != nil {
		return nil, err
	}
	return m.history.History(id, timeRange)
}

// RecentVisits returns the latest pushed visits of the connected server.
func (m *Manager) RecentVisits(limit int) ([]models.VisitEvent, error) {
	_, id, err := m.client()
	if err != nil {
		return nil, err
	}
	return m.history.RecentVisits(id, limit)
}

// ListShortURLs lists short URLs of the connected server.
func (m *Manager) ListShortURLs(ctx context.Context, params shlink.ListParams) (*models.ShortURLsList, error) {
	client, _, err := m.client()
	if err != nil {
		return nil, err
	}
	return client.ListShortURLs(ctx, params)
}

// CreateShortURL creates a short URL on the connected server.
func (m *Manager) CreateShortURL(ctx context.Context, data models.ShortURLData) (*models.ShortURL, error) {
	client, _, err := m.client()
	if err != nil {
		return nil, err
	}
	if m.cfg.ValidateURLs {
		data.ValidateURL = true
	}
	return client.CreateShortURL(ctx, data)
}

// DeleteShortURL deletes a short URL on the connected server.
func (m *Manager) DeleteShortURL(ctx context.Context, shortCode, domain string) error {
	client, _, err := m.client()
	if err != nil {
		return err
	}
	return client.DeleteShortURL(ctx, shortCode, domain)
}

// ShortURLVisits lists the visits of a short URL.
func (m *Manager) ShortURLVisits(ctx context.Context, shortCode, domain string, page int) (*models.VisitsList, error) {
	client, _, err := m.client()
	if err != nil {
		return nil, err
	}
	return client.GetShortURLVisits(ctx, shortCode, domain, page)
}

// ListTags lists the tags of the connected server with their stats.
func (m *Manager) ListTags(ctx context.Context) ([]models.TagStats, error) {
	client, _, err := m.client()
	if err != nil {
		return nil, err
	}
	return client.ListTags(ctx)
}

// DeleteTags deletes tags on the connected server.
func (m *Manager) DeleteTags(ctx context.Context, tags ...string) error {
	client, _, err := m.client()
	if err != nil {
		return err
	}
	return client.DeleteTags(ctx, tags...)
}

// RenameTag renames a tag on the connected server.
func (m *Manager) RenameTag(ctx context.Context, oldName, newName string) error {
	client, _, err := m.client()
	if err != nil {
		return err
	}
	return client.RenameTag(ctx, oldName, newName)
}

// QRCapabilities returns what the connected server's QR endpoint supports.
func (m *Manager) QRCapabilities() qrcode.Capabilities {
	_, status, ok := m.Connected()
	if !ok {
		return qrcode.Capabilities{}
	}
	return shlink.QRCapabilities(status.Version)
}

// QRCodeURL returns the QR code image URL of a short URL on the connected server.
func (m *Manager) QRCodeURL(shortURL string, opts qrcode.Options) string {
	return qrcode.BuildURL(shortURL, opts, m.QRCapabilities())
}

// Servers returns the servers service.
func (m *Manager) Servers() *servers.Service {
	return m.servers
}

// Database returns the database instance for direct access.
func (m *Manager) Database() *db.DB {
	return m.database
}

// Config returns the configuration the manager was created with.
func (m *Manager) Config() *config.Config {
	return m.cfg
}

// Close closes the manager and all its services.
func (m *Manager) Close() error {
	close(m.stopChan)
	m.Disconnect()

	m.mu.Lock()
	for _, sub := range m.subscribers {
		close(sub)
	}
	m.subscribers = nil
	m.mu.Unlock()

	var errs []error
	if err := m.servers.Close(); err != nil {
		errs = append(errs, err)
	}
	if m.database != nil {
		if err := m.database.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
