// Package servers manages Shlink server profiles with file watching and persistence.
package servers

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/j-veylop/shlink-dashboard-tui/internal/logger"
	"github.com/j-veylop/shlink-dashboard-tui/internal/models"
)

// ErrNotFound is returned when no profile matches an ID.
var ErrNotFound = errors.New("server not found")

// ErrDuplicate is returned when a profile with the same name and URL exists.
var ErrDuplicate = errors.New("server already exists")

// ServersFile is the JSON layout of the profiles file.
type ServersFile struct {
	Servers  []models.Server `json:"servers"`
	Selected string          `json:"selected,omitempty"`
	Version  int             `json:"version,omitempty"`
}

// Event represents a servers service event.
type Event struct {
	Server *models.Server
	Error  error
	Type   EventType
}

// EventType defines the type of servers event.
type EventType int

const (
	EventServersLoaded EventType = iota
	EventServersChanged
	EventServerAdded
	EventServerUpdated
	EventServerDeleted
	EventSelectedServerChanged
	EventError
)

// Service manages server profiles and notifies about changes.
type Service struct {
	mu            sync.RWMutex
	servers       []models.Server
	selected      string
	filePath      string
	watcher       *fsnotify.Watcher
	eventChan     chan Event
	stopChan      chan struct{}
	debounceTimer *time.Timer
	closeOnce     sync.Once
}

// New creates a servers service backed by filePath and starts watching it.
func New(filePath string) (*Service, error) {
	if filePath == "" {
		return nil, errors.New("servers file path is required")
	}

	s := &Service{
		servers:   make([]models.Server, 0),
		filePath:  filePath,
		eventChan: make(chan Event, 100),
		stopChan:  make(chan struct{}),
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0750); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := s.load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load servers: %w", err)
		}
		if err := s.save(); err != nil {
			return nil, fmt.Errorf("failed to create servers file: %w", err)
		}
	}

	if err := s.startWatcher(); err != nil {
		return nil, fmt.Errorf("failed to start file watcher: %w", err)
	}

	s.sendEvent(Event{Type: EventServersLoaded})
	return s, nil
}

// Events returns the channel server changes are published on.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// Path returns the profiles file path.
func (s *Service) Path() string {
	return s.filePath
}

// List returns a copy of all profiles in insertion order.
func (s *Service) List() []models.Server {
	s.mu.RLock()
	defer s.mu.RUnlock()

	servers := make([]models.Server, len(s.servers))
	copy(servers, s.servers)
	return servers
}

// Count returns the number of profiles.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.servers)
}

// Get returns the profile with the given ID.
func (s *Service) Get(id string) (models.Server, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexLocked(id); i >= 0 {
		return s.servers[i], nil
	}
	return models.Server{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Find returns the profile whose ID or name matches ref, case-insensitively for names.
func (s *Service) Find(ref string) (models.Server, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexLocked(ref); i >= 0 {
		return s.servers[i], nil
	}
	for _, srv := range s.servers {
		if strings.EqualFold(srv.Name, ref) {
			return srv, nil
		}
	}
	return models.Server{}, fmt.Errorf("%w: %s", ErrNotFound, ref)
}

// Selected returns the selected profile, if any.
func (s *Service) Selected() (models.Server, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexLocked(s.selected); i >= 0 {
		return s.servers[i], true
	}
	return models.Server{}, false
}

// Select marks the profile with the given ID as selected and persists it.
func (s *Service) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	prev := s.selected
	s.selected = id
	if err := s.saveLocked(); err != nil {
		s.selected = prev
		return fmt.Errorf("failed to save servers: %w", err)
	}

	srv := s.servers[i]
	s.sendEvent(Event{Type: EventSelectedServerChanged, Server: &srv})
	return nil
}

// Add stores a new profile, assigning it an ID, and returns the stored value.
func (s *Service) Add(server models.Server) (models.Server, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	server, err := s.addLocked(server)
	if err != nil {
		return models.Server{}, err
	}

	if err := s.saveLocked(); err != nil {
		s.servers = s.servers[:len(s.servers)-1]
		return models.Server{}, fmt.Errorf("failed to save servers: %w", err)
	}

	s.sendEvent(Event{Type: EventServerAdded, Server: &server})
	return server, nil
}

// addLocked validates and appends a profile (must hold lock).
func (s *Service) addLocked(server models.Server) (models.Server, error) {
	server, err := normalize(server)
	if err != nil {
		return models.Server{}, err
	}

	for _, existing := range s.servers {
		if existing.SameTarget(server) {
			return models.Server{}, fmt.Errorf("%w: %s (%s)", ErrDuplicate, server.Name, server.URL)
		}
	}

	if server.ID == "" || s.indexLocked(server.ID) >= 0 {
		server.ID = uuid.NewString()
	}
	if server.AddedAt.IsZero() {
		server.AddedAt = time.Now()
	}

	s.servers = append(s.servers, server)
	return server, nil
}

// Update replaces the profile with the same ID.
func (s *Service) Update(server models.Server) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(server.ID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, server.ID)
	}

	server, err := normalize(server)
	if err != nil {
		return err
	}
	for j, existing := range s.servers {
		if j != i && existing.SameTarget(server) {
			return fmt.Errorf("%w: %s (%s)", ErrDuplicate, server.Name, server.URL)
		}
	}
	if server.AddedAt.IsZero() {
		server.AddedAt = s.servers[i].AddedAt
	}

	prev := s.servers[i]
	s.servers[i] = server
	if err := s.saveLocked(); err != nil {
		s.servers[i] = prev
		return fmt.Errorf("failed to save servers: %w", err)
	}

	s.sendEvent(Event{Type: EventServerUpdated, Server: &server})
	return nil
}

// Delete removes the profile with the given ID. Deleting the selected
// profile clears the selection.
func (s *Service) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	prev, prevSelected := s.servers, s.selected
	deleted := s.servers[i]
	s.servers = append(append(make([]models.Server, 0, len(prev)-1), prev[:i]...), prev[i+1:]...)
	if s.selected == id {
		s.selected = ""
	}

	if err := s.saveLocked(); err != nil {
		s.servers, s.selected = prev, prevSelected
		return fmt.Errorf("failed to save servers: %w", err)
	}

	s.sendEvent(Event{Type: EventServerDeleted, Server: &deleted})
	return nil
}

func (s *Service) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.servers {
		if s.servers[i].ID == id {
			return i
		}
	}
	return -1
}

// normalize trims a profile's fields and checks the required ones.
func normalize(server models.Server) (models.Server, error) {
	server.Name = strings.TrimSpace(server.Name)
	server.URL = server.NormalizedURL()
	server.APIKey = strings.TrimSpace(server.APIKey)

	switch {
	case server.Name == "":
		return server, errors.New("server name is required")
	case server.URL == "":
		return server, errors.New("server url is required")
	case server.APIKey == "":
		return server, errors.New("server api key is required")
	}
	return server, nil
}

// parse accepts either the ServersFile layout or a bare array of profiles.
func parse(data []byte) ([]models.Server, string, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return []models.Server{}, "", nil
	}

	var file ServersFile
	if err := json.Unmarshal(data, &file); err == nil {
		if file.Servers == nil {
			file.Servers = []models.Server{}
		}
		return file.Servers, file.Selected, nil
	}

	var list []models.Server
	if err := json.Unmarshal(data, &list); err == nil {
		return list, "", nil
	}

	return nil, "", errors.New("failed to parse servers file: invalid format")
}

// load reads profiles from disk (caller must not hold the lock during New).
func (s *Service) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	servers, selected, err := parse(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.servers = servers
	s.selected = selected
	if s.indexLocked(s.selected) < 0 {
		s.selected = ""
	}
	return nil
}

func (s *Service) save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

// saveLocked writes profiles atomically through a temp file (must hold lock).
func (s *Service) saveLocked() error {
	data, err := json.MarshalIndent(ServersFile{
		Servers:  s.servers,
		Selected: s.selected,
		Version:  1,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal servers: %w", err)
	}

	tmpFile := s.filePath + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpFile, s.filePath); err != nil {
		if removeErr := os.Remove(tmpFile); removeErr != nil {
			logger.Error("failed to remove temp file", "error", removeErr)
		}
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

func (s *Service) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	s.watcher = watcher

	// Watch the directory, editors often replace the file instead of writing it.
	if err := watcher.Add(filepath.Dir(s.filePath)); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return err
	}

	go s.watchLoop()
	return nil
}

// watchLoop reloads the file after external edits, debounced.
func (s *Service) watchLoop() {
	const debounceInterval = 100 * time.Millisecond

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(s.filePath) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			s.mu.Lock()
			if s.debounceTimer != nil {
				s.debounceTimer.Stop()
			}
			s.debounceTimer = time.AfterFunc(debounceInterval, s.handleFileChange)
			s.mu.Unlock()

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.sendEvent(Event{Type: EventError, Error: err})

		case <-s.stopChan:
			return
		}
	}
}

func (s *Service) handleFileChange() {
	if err := s.load(); err != nil {
		s.sendEvent(Event{Type: EventError, Error: fmt.Errorf("failed to reload servers: %w", err)})
		return
	}
	logger.Debug("Servers file reloaded", "path", s.filePath)
	s.sendEvent(Event{Type: EventServersChanged})
}

// sendEvent publishes without blocking, dropping the oldest event when full.
func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}

// Close stops the file watcher.
func (s *Service) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.stopChan)

		s.mu.Lock()
		if s.debounceTimer != nil {
			s.debounceTimer.Stop()
		}
		s.mu.Unlock()

		if s.watcher != nil {
			err = s.watcher.Close()
		}
	})
	return err
}
