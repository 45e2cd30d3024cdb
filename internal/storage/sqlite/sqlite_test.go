package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mmynk/volunteermap/internal/models"
	"github.com/mmynk/volunteermap/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "volunteermap-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "nested", "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_Events(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	start := time.Date(2030, time.June, 1, 9, 30, 0, 0, time.UTC)

	t.Run("CreateEvent keeps client ID and roster order", func(t *testing.T) {
		event := &models.Event{
			ID:               "event-1",
			Name:             "Park cleanup",
			Description:      "Bring gloves",
			DateTime:         start,
			Position:         models.Position{Latitude: 51.04, Longitude: -114.07},
			VolunteersNeeded: 3,
			VolunteersIDs:    []string{"u2", "u1"},
			OrganizerID:      "org",
			ImageURL:         "https://img.example.com/park.jpg",
		}
		if err := store.CreateEvent(ctx, event); err != nil {
			t.Fatalf("CreateEvent failed: %v", err)
		}

		got, err := store.GetEvent(ctx, "event-1")
		if err != nil {
			t.Fatalf("GetEvent failed: %v", err)
		}
		if got.Name != event.Name || got.Description != event.Description || got.ImageURL != event.ImageURL {
			t.Errorf("field mismatch: got %+v", got)
		}
		if !got.DateTime.Equal(start) {
			t.Errorf("DateTime mismatch: got %v, want %v", got.DateTime, start)
		}
		if got.Position != event.Position {
			t.Errorf("Position mismatch: got %+v", got.Position)
		}
		if len(got.VolunteersIDs) != 2 || got.VolunteersIDs[0] != "u2" || got.VolunteersIDs[1] != "u1" {
			t.Errorf("roster mismatch: got %v", got.VolunteersIDs)
		}
	})

	t.Run("CreateEvent rejects duplicate ID", func(t *testing.T) {
		err := store.CreateEvent(ctx, &models.Event{ID: "event-1", Name: "dup", DateTime: start})
		if !errors.Is(err, storage.ErrAlreadyExists) {
			t.Errorf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("CreateEvent generates missing ID", func(t *testing.T) {
		event := &models.Event{Name: "No ID", DateTime: start.Add(-time.Hour), VolunteersNeeded: 1}
		if err := store.CreateEvent(ctx, event); err != nil {
			t.Fatalf("CreateEvent failed: %v", err)
		}
		if event.ID == "" {
			t.Error("expected ID to be generated")
		}
	})

	t.Run("ListEvents orders by start time", func(t *testing.T) {
		events, err := store.ListEvents(ctx)
		if err != nil {
			t.Fatalf("ListEvents failed: %v", err)
		}
		if len(events) != 2 {
			t.Fatalf("expected 2 events, got %d", len(events))
		}
		if events[0].Name != "No ID" || events[1].ID != "event-1" {
			t.Errorf("unexpected order: %s, %s", events[0].Name, events[1].ID)
		}
		if len(events[1].VolunteersIDs) != 2 {
			t.Errorf("expected roster on listed event, got %v", events[1].VolunteersIDs)
		}
		if events[0].VolunteersIDs == nil {
			t.Error("expected empty roster to be non-nil")
		}
	})

	t.Run("UpdateEvent replaces roster without duplicates", func(t *testing.T) {
		event, err := store.GetEvent(ctx, "event-1")
		if err != nil {
			t.Fatalf("GetEvent failed: %v", err)
		}
		event.VolunteersIDs = []string{"u2", "u1", "u3", "u1"}
		event.Name = "Park cleanup (updated)"
		if err := store.UpdateEvent(ctx, event); err != nil {
			t.Fatalf("UpdateEvent failed: %v", err)
		}

		got, err := store.GetEvent(ctx, "event-1")
		if err != nil {
			t.Fatalf("GetEvent failed: %v", err)
		}
		if got.Name != "Park cleanup (updated)" {
			t.Errorf("name not updated: %s", got.Name)
		}
		want := []string{"u2", "u1", "u3"}
		if len(got.VolunteersIDs) != len(want) {
			t.Fatalf("roster = %v, want %v", got.VolunteersIDs, want)
		}
		for i := range want {
			if got.VolunteersIDs[i] != want[i] {
				t.Errorf("roster = %v, want %v", got.VolunteersIDs, want)
				break
			}
		}
	})

	t.Run("missing event", func(t *testing.T) {
		if _, err := store.GetEvent(ctx, "nonexistent"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound from GetEvent, got %v", err)
		}
		err := store.UpdateEvent(ctx, &models.Event{ID: "nonexistent", DateTime: start})
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound from UpdateEvent, got %v", err)
		}
	})
}

func TestSQLiteStore_Users(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := &models.User{
		Email:        "ada@example.com",
		Name:         models.Name{First: "Ada", Last: "Lovelace"},
		Mobile:       "555-0101",
		PasswordHash: "hash",
	}
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if user.ID == "" || user.CreatedAt == 0 {
		t.Errorf("expected ID and CreatedAt to be generated: %+v", user)
	}

	if err := store.CreateUser(ctx, &models.User{Email: "ada@example.com"}); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists for duplicate email, got %v", err)
	}

	byEmail, err := store.GetUserByEmail(ctx, "ada@example.com")
	if err != nil || byEmail == nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if byEmail.ID != user.ID || byEmail.PasswordHash != "hash" {
		t.Errorf("unexpected user: %+v", byEmail)
	}

	missing, err := store.GetUserByEmail(ctx, "nobody@example.com")
	if err != nil || missing != nil {
		t.Errorf("expected nil, nil for unknown email, got %v, %v", missing, err)
	}

	byID, err := store.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if byID.Name.Full() != "Ada Lovelace" {
		t.Errorf("unexpected name: %q", byID.Name.Full())
	}
	if _, err := store.GetUserByID(ctx, "nope"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := store.CreateUser(ctx, &models.User{Email: "grace@example.com", Name: models.Name{First: "Grace"}}); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	users, err := store.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(users) != 2 || users[0].Name.First != "Ada" || users[1].Name.First != "Grace" {
		t.Errorf("unexpected users: %+v", users)
	}
}

func TestCache(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.db")

	cache, err := NewCache(path)
	if err != nil {
		t.Fatalf("NewCache failed: %v", err)
	}

	user := models.User{ID: "u1", Name: models.Name{First: "Ada"}}
	if err := cache.Set(ctx, "userInfo", user); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := cache.Set(ctx, "accessToken", "token-1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := cache.Set(ctx, "accessToken", "token-2"); err != nil {
		t.Fatalf("Set overwrite failed: %v", err)
	}
	cache.Close()

	// Values survive reopening, like a restarted app.
	cache, err = NewCache(path)
	if err != nil {
		t.Fatalf("NewCache reopen failed: %v", err)
	}
	defer cache.Close()

	var gotUser models.User
	ok, err := cache.Get(ctx, "userInfo", &gotUser)
	if err != nil || !ok {
		t.Fatalf("Get userInfo: ok=%v err=%v", ok, err)
	}
	if gotUser.ID != "u1" || gotUser.Name.First != "Ada" {
		t.Errorf("unexpected user: %+v", gotUser)
	}

	var token string
	if ok, err := cache.Get(ctx, "accessToken", &token); err != nil || !ok || token != "token-2" {
		t.Errorf("Get accessToken = %q, ok=%v, err=%v", token, ok, err)
	}

	if err := cache.Remove(ctx, "userInfo", "accessToken", "never-set"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if ok, err := cache.Get(ctx, "accessToken", &token); err != nil || ok {
		t.Errorf("expected key to be removed, ok=%v err=%v", ok, err)
	}
}

func TestCacheSetMany(t *testing.T) {
	ctx := context.Background()
	cache, err := NewCache(filepath.Join(t.TempDir(), "session.db"))
	if err != nil {
		t.Fatalf("NewCache failed: %v", err)
	}
	defer cache.Close()

	if err := cache.Set(ctx, "accessToken", "old-token"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// An unencodable value aborts the whole write.
	err = cache.SetMany(ctx, map[string]any{
		"userInfo":    models.User{ID: "u2"},
		"accessToken": make(chan int),
	})
	if err == nil {
		t.Fatal("expected SetMany to fail on an unencodable value")
	}
	var token string
	if ok, err := cache.Get(ctx, "accessToken", &token); err != nil || !ok || token != "old-token" {
		t.Errorf("accessToken = %q, ok=%v, err=%v; want old-token", token, ok, err)
	}
	var user models.User
	if ok, err := cache.Get(ctx, "userInfo", &user); err != nil || ok {
		t.Errorf("userInfo should not be written, ok=%v err=%v", ok, err)
	}

	err = cache.SetMany(ctx, map[string]any{
		"userInfo":    models.User{ID: "u2"},
		"accessToken": "new-token",
	})
	if err != nil {
		t.Fatalf("SetMany failed: %v", err)
	}
	if ok, err := cache.Get(ctx, "accessToken", &token); err != nil || !ok || token != "new-token" {
		t.Errorf("accessToken = %q, ok=%v, err=%v; want new-token", token, ok, err)
	}
	if ok, err := cache.Get(ctx, "userInfo", &user); err != nil || !ok || user.ID != "u2" {
		t.Errorf("userInfo = %+v, ok=%v, err=%v", user, ok, err)
	}
}
