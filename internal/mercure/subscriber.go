// Package mercure subscribes to a Shlink server's Mercure hub and delivers
// the visits it pushes.
package mercure

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/j-veylop/shlink-dashboard-tui/internal/logger"
	"github.com/j-veylop/shlink-dashboard-tui/internal/models"
)

// NewVisitTopic is the topic Shlink publishes every new visit on.
const NewVisitTopic = "https://shlink.io/new-visit"

const (
	defaultMinBackoff    = time.Second
	defaultMaxBackoff    = 30 * time.Second
	defaultRefreshMargin = 30 * time.Second
	maxEventSize         = 1 << 20
)

// errTokenExpiring ends a stream so it can be reopened with a fresh token.
var errTokenExpiring = errors.New("mercure token about to expire")

// Info locates a hub and authorizes subscriptions to it.
type Info struct {
	HubURL string
	Token  string
}

// InfoFunc fetches the current hub info. It is called before every connection.
type InfoFunc func(ctx context.Context) (Info, error)

// Config tunes a Subscriber.
type Config struct {
	// HTTPClient must not set a Timeout, streams stay open indefinitely.
	HTTPClient *http.Client
	// BatchInterval groups visits received within the interval. Zero delivers each visit on its own.
	BatchInterval time.Duration
	MinBackoff    time.Duration
	MaxBackoff    time.Duration
	// RefreshMargin is how long before the token expires the stream is reopened.
	RefreshMargin time.Duration
}

// Subscriber streams new visits from a Mercure hub.
type Subscriber struct {
	fetchInfo InfoFunc
	cfg       Config
}

// New creates a subscriber that resolves hub info through fetchInfo.
func New(fetchInfo InfoFunc, cfg Config) *Subscriber {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	if cfg.MinBackoff <= 0 {
		cfg.MinBackoff = defaultMinBackoff
	}
	if cfg.MaxBackoff < cfg.MinBackoff {
		cfg.MaxBackoff = max(defaultMaxBackoff, cfg.MinBackoff)
	}
	if cfg.RefreshMargin <= 0 {
		cfg.RefreshMargin = defaultRefreshMargin
	}
	return &Subscriber{fetchInfo: fetchInfo, cfg: cfg}
}

// Subscribe connects to the hub in the background and returns the channel
// visit batches are delivered on. Batches are never empty. The channel is
// closed once ctx is done.
func (s *Subscriber) Subscribe(ctx context.Context) <-chan []models.CreatedVisit {
	raw := make(chan models.CreatedVisit, 64)
	out := make(chan []models.CreatedVisit, 16)

	go s.connectLoop(ctx, raw)
	go batch(ctx, raw, out, s.cfg.BatchInterval)

	return out
}

// connectLoop keeps a stream open until ctx is done, reconnecting with
// exponential backoff.
func (s *Subscriber) connectLoop(ctx context.Context, raw chan<- models.CreatedVisit) {
	defer close(raw)

	backoff := s.cfg.MinBackoff
	for {
		connected, err := s.connectOnce(ctx, raw)
		if ctx.Err() != nil {
			return
		}

		if errors.Is(err, errTokenExpiring) {
			logger.Debug("Reopening mercure stream with a fresh token")
			backoff = s.cfg.MinBackoff
			continue
		}
		if connected {
			backoff = s.cfg.MinBackoff
		}

		logger.Warn("Mercure stream interrupted", "error", err, "retry_in", backoff)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return
		}
		backoff = min(backoff*2, s.cfg.MaxBackoff)
	}
}

// connectOnce opens one stream and reads it until it ends. connected
// reports whether the hub accepted the subscription.
func (s *Subscriber) connectOnce(ctx context.Context, raw chan<- models.CreatedVisit) (connected bool, err error) {
	info, err := s.fetchInfo(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to fetch mercure info: %w", err)
	}

	streamCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	if exp, ok := TokenExpiry(info.Token); ok {
		delay := max(time.Until(exp.Add(-s.cfg.RefreshMargin)), s.cfg.MinBackoff)
		timer := time.AfterFunc(delay, func() {
			cancel(errTokenExpiring)
		})
		defer timer.Stop()
	}

	req, err := http.NewRequestWithContext(streamCtx, http.MethodGet, subscribeURL(info.HubURL), nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	if info.Token != "" {
		req.Header.Set("Authorization", "Bearer "+info.Token)
	}

	resp, err := s.cfg.HTTPClient.Do(req)
	if err != nil {
		return false, streamErr(streamCtx, fmt.Errorf("failed to connect to hub: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("hub responded with status %d", resp.StatusCode)
	}

	logger.Info("Subscribed to mercure hub", "hub", info.HubURL)

	err = readEvents(resp.Body, func(data []byte) {
		var visit models.CreatedVisit
		if err := json.Unmarshal(data, &visit); err != nil {
			logger.Warn("Skipping malformed mercure update", "error", err)
			return
		}
		select {
		case raw <- visit:
		case <-streamCtx.Done():
		}
	})
	if err == nil {
		err = io.ErrUnexpectedEOF
	}
	return true, streamErr(streamCtx, err)
}

// streamErr prefers the reason the stream was cancelled over the read error it caused.
func streamErr(ctx context.Context, err error) error {
	if cause := context.Cause(ctx); cause != nil {
		return cause
	}
	return err
}

func subscribeURL(hub string) string {
	sep := "?"
	if strings.Contains(hub, "?") {
		sep = "&"
	}
	return hub + sep + "topic=" + url.QueryEscape(NewVisitTopic)
}

// readEvents parses a text/event-stream and calls onData with the data of
// every complete event. It returns the scanner error, or nil at EOF.
func readEvents(r io.Reader, onData func([]byte)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxEventSize)

	var data bytes.Buffer
	for scanner.Scan() {
		line := scanner.Bytes()

		if len(line) == 0 {
			if data.Len() > 0 {
				onData(bytes.Clone(data.Bytes()))
				data.Reset()
			}
			continue
		}
		if line[0] == ':' {
			continue
		}

		field, value, _ := bytes.Cut(line, []byte(":"))
		value = bytes.TrimPrefix(value, []byte(" "))
		if string(field) != "data" {
			continue
		}
		if data.Len() > 0 {
			data.WriteByte('\n')
		}
		data.Write(value)
	}
	return scanner.Err()
}

// TokenExpiry reads the exp claim of a JWT without verifying its signature.
func TokenExpiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
