package servers

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/j-veylop/shlink-dashboard-tui/internal/models"
)

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "servers.json")
	svc, err := New(path)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	t.Cleanup(func() {
		if err := svc.Close(); err != nil {
			t.Logf("Close() failed: %v", err)
		}
	})

	return svc, path
}

func testServer(name string) models.Server {
	return models.Server{Name: name, URL: "https://" + name + ".test/", APIKey: "key-" + name}
}

func TestNew(t *testing.T) {
	svc, path := newTestService(t)

	if _, err := os.Stat(path); err != nil {
		t.Errorf("servers file was not created: %v", err)
	}
	if svc.Count() != 0 {
		t.Errorf("Count() = %d, want 0", svc.Count())
	}
	if svc.Path() != path {
		t.Errorf("Path() = %q, want %q", svc.Path(), path)
	}
}

func TestNew_EmptyPath(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Error("New(\"\") should fail")
	}
}

func TestNew_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "servers.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := New(path); err == nil {
		t.Error("New() should fail on a malformed file")
	}
}

func TestNew_LegacyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "servers.json")
	data := `[{"id":"1","name":"Main","url":"https://s.test","apiKey":"abc"}]`
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	svc, err := New(path)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer func() { _ = svc.Close() }()

	srv, err := svc.Get("1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if srv.Name != "Main" {
		t.Errorf("Name = %q, want Main", srv.Name)
	}
}

func TestAdd(t *testing.T) {
	svc, _ := newTestService(t)

	added, err := svc.Add(testServer("main"))
	if err != nil {
		t.Fatalf("Add() failed: %v", err)
	}

	if added.ID == "" {
		t.Error("Add() should assign an ID")
	}
	if added.URL != "https://main.test" {
		t.Errorf("URL = %q, trailing slash should be trimmed", added.URL)
	}
	if added.AddedAt.IsZero() {
		t.Error("AddedAt should be set")
	}

	got, err := svc.Get(added.ID)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.ID != added.ID || got.Name != added.Name || got.URL != added.URL || got.APIKey != added.APIKey {
		t.Errorf("Get() = %+v, want %+v", got, added)
	}
}

func TestAdd_Validation(t *testing.T) {
	svc, _ := newTestService(t)

	tests := []struct {
		name   string
		server models.Server
	}{
		{"missing name", models.Server{URL: "https://s.test", APIKey: "k"}},
		{"missing url", models.Server{Name: "s", URL: " / ", APIKey: "k"}},
		{"missing api key", models.Server{Name: "s", URL: "https://s.test"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Add(tt.server); err == nil {
				t.Error("Add() should fail")
			}
		})
	}

	if svc.Count() != 0 {
		t.Errorf("Count() = %d, want 0", svc.Count())
	}
}

func TestAdd_Duplicate(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.Add(testServer("main")); err != nil {
		t.Fatalf("Add() failed: %v", err)
	}

	dup := testServer("main")
	dup.URL = "https://main.test"
	dup.Name = "MAIN"
	if _, err := svc.Add(dup); !errors.Is(err, ErrDuplicate) {
		t.Errorf("Add() error = %v, want ErrDuplicate", err)
	}

	other := testServer("main")
	other.URL = "https://other.test"
	if _, err := svc.Add(other); err != nil {
		t.Errorf("same name on another url should be allowed: %v", err)
	}
}

func TestUpdate(t *testing.T) {
	svc, _ := newTestService(t)

	added, _ := svc.Add(testServer("main"))
	added.Name = "renamed"
	added.AddedAt = time.Time{}

	if err := svc.Update(added); err != nil {
		t.Fatalf("Update() failed: %v", err)
	}

	got, _ := svc.Get(added.ID)
	if got.Name != "renamed" {
		t.Errorf("Name = %q, want renamed", got.Name)
	}
	if got.AddedAt.IsZero() {
		t.Error("AddedAt should be preserved")
	}

	if err := svc.Update(models.Server{ID: "missing", Name: "x", URL: "https://x", APIKey: "k"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestUpdate_Duplicate(t *testing.T) {
	svc, _ := newTestService(t)

	a, _ := svc.Add(testServer("a"))
	if _, err := svc.Add(testServer("b")); err != nil {
		t.Fatal(err)
	}

	a.Name = "b"
	a.URL = "https://b.test"
	if err := svc.Update(a); !errors.Is(err, ErrDuplicate) {
		t.Errorf("Update() error = %v, want ErrDuplicate", err)
	}
}

func TestDelete(t *testing.T) {
	svc, _ := newTestService(t)

	a, _ := svc.Add(testServer("a"))
	b, _ := svc.Add(testServer("b"))
	if err := svc.Select(a.ID); err != nil {
		t.Fatal(err)
	}

	if err := svc.Delete(a.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}

	if _, ok := svc.Selected(); ok {
		t.Error("deleting the selected server should clear the selection")
	}
	if list := svc.List(); len(list) != 1 || list[0].ID != b.ID {
		t.Errorf("List() = %+v, want only b", list)
	}
	if err := svc.Delete(a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}

func TestDeleteKeepsProfilesWhenSaveFails(t *testing.T) {
	svc, path := newTestService(t)

	a, _ := svc.Add(testServer("a"))
	b, _ := svc.Add(testServer("b"))
	if err := svc.Select(a.ID); err != nil {
		t.Fatal(err)
	}

	// A directory in place of the temp file makes every save fail.
	if err := os.Mkdir(path+".tmp", 0o700); err != nil {
		t.Fatal(err)
	}

	if err := svc.Delete(a.ID); err == nil {
		t.Fatal("Delete() should fail when the file cannot be saved")
	}

	list := svc.List()
	if len(list) != 2 || list[0].ID != a.ID || list[1].ID != b.ID {
		t.Errorf("List() = %+v, want a and b", list)
	}
	if selected, ok := svc.Selected(); !ok || selected.ID != a.ID {
		t.Errorf("Selected() = %+v, %v, want a", selected, ok)
	}
}

func TestSelect(t *testing.T) {
	svc, path := newTestService(t)

	if _, ok := svc.Selected(); ok {
		t.Error("nothing should be selected initially")
	}

	added, _ := svc.Add(testServer("main"))
	if err := svc.Select(added.ID); err != nil {
		t.Fatalf("Select() failed: %v", err)
	}

	selected, ok := svc.Selected()
	if !ok || selected.ID != added.ID {
		t.Errorf("Selected() = %+v, %v", selected, ok)
	}

	if err := svc.Select("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Select() error = %v, want ErrNotFound", err)
	}

	// Selection survives a restart.
	reopened, err := New(path)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	selected, ok = reopened.Selected()
	if !ok || selected.ID != added.ID {
		t.Errorf("reopened Selected() = %+v, %v", selected, ok)
	}
}

func TestFind(t *testing.T) {
	svc, _ := newTestService(t)
	added, _ := svc.Add(testServer("Main"))

	for _, ref := range []string{added.ID, "main", "MAIN"} {
		got, err := svc.Find(ref)
		if err != nil || got.ID != added.ID {
			t.Errorf("Find(%q) = %+v, %v", ref, got, err)
		}
	}

	if _, err := svc.Find("other"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Find() error = %v, want ErrNotFound", err)
	}
}

func TestEvents(t *testing.T) {
	svc, _ := newTestService(t)

	select {
	case ev := <-svc.Events():
		if ev.Type != EventServersLoaded {
			t.Errorf("first event = %v, want EventServersLoaded", ev.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("no loaded event")
	}

	added, _ := svc.Add(testServer("main"))

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-svc.Events():
			if ev.Type == EventServerAdded {
				if ev.Server == nil || ev.Server.ID != added.ID {
					t.Errorf("added event server = %+v", ev.Server)
				}
				return
			}
		case <-deadline:
			t.Fatal("no added event")
		}
	}
}

func TestSendEvent_DropsOldest(t *testing.T) {
	svc, _ := newTestService(t)

	for i := 0; i < cap(svc.eventChan)+10; i++ {
		svc.sendEvent(Event{Type: EventServersChanged})
	}
	svc.sendEvent(Event{Type: EventError})

	var last Event
	for len(svc.eventChan) > 0 {
		last = <-svc.eventChan
	}
	if last.Type != EventError {
		t.Errorf("last event = %v, want EventError", last.Type)
	}
}

func TestWatch_ReloadsExternalEdits(t *testing.T) {
	svc, path := newTestService(t)

	data := `{"servers":[{"id":"ext","name":"External","url":"https://ext.test","apiKey":"k"}],"selected":"ext"}`
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if srv, ok := svc.Selected(); ok && srv.ID == "ext" {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Error("external edit was not picked up")
}

func TestClose_Idempotent(t *testing.T) {
	svc, _ := newTestService(t)
	if err := svc.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if err := svc.Close(); err != nil {
		t.Errorf("second Close() failed: %v", err)
	}
}
