package mercure

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j-veylop/shlink-dashboard-tui/internal/models"
)

func visitEvent(shortCode string) string {
	return fmt.Sprintf("id: %s\nevent: message\ndata: {\"shortUrl\":{\"shortCode\":%q},\n"+
		"data: \"visit\":{\"referer\":\"https://google.com\",\"userAgent\":\"curl\"}}\n\n", shortCode, shortCode)
}

// sseServer streams events once per connection and then holds the stream open.
func sseServer(t *testing.T, events ...string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var conns atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conns.Add(1)
		assert.Equal(t, NewVisitTopic, r.URL.Query().Get("topic"))
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))

		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		for _, e := range events {
			_, _ = w.Write([]byte(e))
		}
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)
	return srv, &conns
}

func staticInfo(info Info) InfoFunc {
	return func(context.Context) (Info, error) { return info, nil }
}

func receive(t *testing.T, ch <-chan []models.CreatedVisit) []models.CreatedVisit {
	t.Helper()
	select {
	case b, ok := <-ch:
		require.True(t, ok, "channel closed")
		return b
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for batch")
		return nil
	}
}

func TestSubscribe_DeliversEachVisit(t *testing.T) {
	srv, _ := sseServer(t, ": keep-alive\n\n", visitEvent("abc"), visitEvent("def"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := New(staticInfo(Info{HubURL: srv.URL}), Config{})
	ch := sub.Subscribe(ctx)

	first := receive(t, ch)
	require.Len(t, first, 1)
	assert.Equal(t, "abc", first[0].ShortURL.ShortCode)
	assert.Equal(t, "curl", first[0].Visit.UserAgent)

	second := receive(t, ch)
	require.Len(t, second, 1)
	assert.Equal(t, "def", second[0].ShortURL.ShortCode)
}

func TestSubscribe_BatchesWithinInterval(t *testing.T) {
	srv, _ := sseServer(t, visitEvent("a"), visitEvent("b"), visitEvent("c"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := New(staticInfo(Info{HubURL: srv.URL}), Config{BatchInterval: 300 * time.Millisecond})
	batch := receive(t, sub.Subscribe(ctx))
	assert.Len(t, batch, 3)
}

func TestSubscribe_SendsBearerToken(t *testing.T) {
	var auth atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth.Store(r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(visitEvent("abc")))
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	receive(t, New(staticInfo(Info{HubURL: srv.URL, Token: "tok"}), Config{}).Subscribe(ctx))
	assert.Equal(t, "Bearer tok", auth.Load())
}

func TestSubscribe_ClosesOnCancel(t *testing.T) {
	srv, _ := sseServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	ch := New(staticInfo(Info{HubURL: srv.URL}), Config{}).Subscribe(ctx)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestSubscribe_ReconnectsAfterFailure(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(visitEvent("abc")))
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := New(staticInfo(Info{HubURL: srv.URL}), Config{MinBackoff: 10 * time.Millisecond})
	batch := receive(t, sub.Subscribe(ctx))
	require.Len(t, batch, 1)
	assert.GreaterOrEqual(t, attempts.Load(), int32(2))
}

func TestSubscribe_RetriesInfoErrors(t *testing.T) {
	srv, _ := sseServer(t, visitEvent("abc"))

	var calls atomic.Int32
	fetch := func(context.Context) (Info, error) {
		if calls.Add(1) == 1 {
			return Info{}, errors.New("boom")
		}
		return Info{HubURL: srv.URL}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	receive(t, New(fetch, Config{MinBackoff: 10 * time.Millisecond}).Subscribe(ctx))
	assert.Equal(t, int32(2), calls.Load())
}

func TestSubscribe_RefreshesExpiringToken(t *testing.T) {
	srv, conns := sseServer(t)

	margin := time.Minute
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(margin)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	var calls atomic.Int32
	fetch := func(context.Context) (Info, error) {
		calls.Add(1)
		return Info{HubURL: srv.URL, Token: token}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	New(fetch, Config{MinBackoff: 20 * time.Millisecond, RefreshMargin: margin}).Subscribe(ctx)

	assert.Eventually(t, func() bool {
		return calls.Load() >= 3 && conns.Load() >= 3
	}, 2*time.Second, 10*time.Millisecond)
}

func TestReadEvents(t *testing.T) {
	stream := strings.Join([]string{
		": comment",
		"data: one",
		"",
		"event: update",
		"data:two",
		"data: lines",
		"",
		"retry: 1000",
		"",
		"data: trailing without terminator",
	}, "\n")

	var got []string
	require.NoError(t, readEvents(strings.NewReader(stream), func(b []byte) {
		got = append(got, string(b))
	}))
	assert.Equal(t, []string{"one", "two\nlines"}, got)
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("whatever"))
	require.NoError(t, err)

	got, ok := TokenExpiry(token)
	require.True(t, ok)
	assert.True(t, exp.Equal(got))

	noExp, err := jwt.New(jwt.SigningMethodHS256).SignedString([]byte("k"))
	require.NoError(t, err)
	_, ok = TokenExpiry(noExp)
	assert.False(t, ok)

	_, ok = TokenExpiry("not-a-jwt")
	assert.False(t, ok)
	_, ok = TokenExpiry("")
	assert.False(t, ok)
}

func TestSubscribeURL(t *testing.T) {
	assert.Equal(t, "https://hub.test/.well-known/mercure?topic=https%3A%2F%2Fshlink.io%2Fnew-visit",
		subscribeURL("https://hub.test/.well-known/mercure"))
	assert.Equal(t, "https://hub.test/m?a=1&topic=https%3A%2F%2Fshlink.io%2Fnew-visit",
		subscribeURL("https://hub.test/m?a=1"))
}
