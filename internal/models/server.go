// Package models defines data structures and domain types.
package models

import (
	"strings"
	"time"
)

// Server is a connection profile for a Shlink instance.
type Server struct {
	AddedAt     time.Time `json:"addedAt"`
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	APIKey      string    `json:"apiKey"`
	AutoConnect bool      `json:"autoConnect,omitempty"`
}

// NormalizedURL returns the server URL without trailing slashes.
func (s *Server) NormalizedURL() string {
	return strings.TrimRight(strings.TrimSpace(s.URL), "/")
}

// SameTarget reports whether both profiles point at the same server with the same name.
func (s *Server) SameTarget(other Server) bool {
	return strings.EqualFold(s.Name, other.Name) && s.NormalizedURL() == other.NormalizedURL()
}

// MaskedAPIKey returns the API key with everything but the last four characters hidden.
func (s *Server) MaskedAPIKey() string {
	if len(s.APIKey) <= 4 {
		return strings.Repeat("*", len(s.APIKey))
	}
	return strings.Repeat("*", len(s.APIKey)-4) + s.APIKey[len(s.APIKey)-4:]
}

// ServerStatus describes the outcome of connecting to a server.
type ServerStatus struct {
	Version     string
	Healthy     bool
	Error       string
	ConnectedAt time.Time
}

// ServerWithStatus pairs a profile with its connection status.
type ServerWithStatus struct {
	Server
	Status     *ServerStatus
	IsSelected bool
}
