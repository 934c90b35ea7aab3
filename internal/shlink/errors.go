package shlink

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// Known problem types.
const (
	ProblemInvalidShortCode     = "INVALID_SHORTCODE"
	ProblemInvalidSlug          = "INVALID_SLUG"
	ProblemTagNotFound          = "TAG_NOT_FOUND"
	ProblemTagConflict          = "TAG_CONFLICT"
	ProblemMercureNotConfigured = "MERCURE_NOT_CONFIGURED"
	ProblemInvalidAPIKey        = "INVALID_API_KEY"
)

// ProblemDetails is an RFC 7807 error returned by the server.
type ProblemDetails struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Status int    `json:"status"`

	// Deprecated fields still sent by older servers.
	LegacyError   string `json:"error,omitempty"`
	LegacyMessage string `json:"message,omitempty"`
}

func (p *ProblemDetails) Error() string {
	msg := p.Detail
	if msg == "" {
		msg = p.LegacyMessage
	}
	if msg == "" {
		msg = p.Title
	}
	if msg == "" {
		msg = http.StatusText(p.Status)
	}
	return msg
}

// Is matches problems of the same type, so errors.Is(err, &ProblemDetails{Type: ...}) works.
func (p *ProblemDetails) Is(target error) bool {
	var other *ProblemDetails
	if !errors.As(target, &other) || other.Type == "" {
		return false
	}
	return p.matchesType(other.Type)
}

// matchesType compares both the short and the URL forms of a problem type.
func (p *ProblemDetails) matchesType(t string) bool {
	if p.Type == t || p.LegacyError == t {
		return true
	}
	slug := strings.ToLower(strings.ReplaceAll(t, "_", "-"))
	return strings.HasSuffix(strings.ToLower(p.Type), "/"+slug)
}

func parseProblem(status int, body []byte) error {
	problem := &ProblemDetails{}
	if err := json.Unmarshal(body, problem); err != nil || (problem.Type == "" && problem.Detail == "" &&
		problem.Title == "" && problem.LegacyMessage == "") {
		problem = &ProblemDetails{
			Title:  http.StatusText(status),
			Detail: strings.TrimSpace(string(body)),
		}
	}
	if problem.Status == 0 {
		problem.Status = status
	}
	return problem
}

// StatusCode returns the HTTP status of err when it is a problem returned by the server.
func StatusCode(err error) int {
	var problem *ProblemDetails
	if errors.As(err, &problem) {
		return problem.Status
	}
	return 0
}

// IsNotFound reports whether err is a 404 problem.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsUnauthorized reports whether the server rejected the API key.
func IsUnauthorized(err error) bool {
	status := StatusCode(err)
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}
