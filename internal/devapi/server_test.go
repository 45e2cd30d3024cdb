package devapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mmynk/volunteermap/internal/api"
	"github.com/mmynk/volunteermap/internal/auth"
	"github.com/mmynk/volunteermap/internal/devapi"
	"github.com/mmynk/volunteermap/internal/eventstore"
	"github.com/mmynk/volunteermap/internal/metrics"
	"github.com/mmynk/volunteermap/internal/models"
	"github.com/mmynk/volunteermap/internal/service"
	"github.com/mmynk/volunteermap/internal/session"
	"github.com/mmynk/volunteermap/internal/storage/sqlite"
)

// setupTestServer starts the API on a temp SQLite database.
func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "devapi-test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()

	store, err := sqlite.New(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to create store: %v", err)
	}

	reg := prometheus.NewRegistry()
	srv := devapi.NewServer(store,
		auth.NewPasswordAuthenticator(store),
		auth.NewJWTManager("test-secret", time.Hour),
		devapi.Options{Metrics: metrics.New(reg), Gatherer: reg},
	)
	server := httptest.NewServer(srv.Handler())

	t.Cleanup(func() {
		server.Close()
		store.Close()
		os.Remove(tmpFile.Name())
	})
	return server
}

// register creates an account and returns a logged-in session for it.
func register(t *testing.T, server *httptest.Server, first, email string) *session.Session {
	t.Helper()
	body, _ := json.Marshal(map[string]any{
		"name":     map[string]string{"first": first, "last": "Tester"},
		"mobile":   "555-0100",
		"email":    email,
		"password": "secret1",
	})
	resp, err := http.Post(server.URL+"/users", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("register request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		data, _ := io.ReadAll(resp.Body)
		t.Fatalf("register status = %d: %s", resp.StatusCode, data)
	}

	var ar models.AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		t.Fatalf("failed to decode register response: %v", err)
	}
	return session.New(&ar.User, ar.AccessToken)
}

func newClient(t *testing.T, server *httptest.Server, sess *session.Session) *api.Client {
	t.Helper()
	opts := api.Options{HTTPClient: server.Client()}
	if sess != nil {
		opts.Tokens = sess
	}
	c, err := api.NewClient(server.URL, opts)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return c
}

// createEvent publishes an event organized by org through the client workflow.
func createEvent(t *testing.T, server *httptest.Server, org *session.Session, needed int) *models.Event {
	t.Helper()
	client := newClient(t, server, org)
	svc := service.NewEventService(client, eventstore.New(client, nil, nil), nil, nil)

	event, err := svc.CreateEvent(context.Background(), org, service.EventDraft{
		Name:             "River Cleanup",
		Description:      "Meet at the bridge",
		VolunteersNeeded: needed,
		Date:             "2031-06-01",
		Time:             "10:00",
		Position:         &models.Position{Latitude: 51.05, Longitude: -114.06},
	})
	if err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}
	return event
}

func TestVolunteerEndToEnd(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()

	org := register(t, server, "Olive", "olive@example.com")
	alice := register(t, server, "Alice", "alice@example.com")
	bob := register(t, server, "Bob", "bob@example.com")
	event := createEvent(t, server, org, 1)

	aliceClient := newClient(t, server, alice)
	aliceStore := eventstore.New(aliceClient, nil, nil)
	if err := aliceStore.Refresh(ctx); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	events, users := aliceStore.Get()
	if len(events) != 1 || len(users) != 3 {
		t.Fatalf("snapshot = %d events, %d users", len(events), len(users))
	}

	signup := service.NewSignupService(aliceClient, aliceStore, nil, nil)
	got, err := signup.VolunteerForEvent(ctx, alice, event.ID)
	if err != nil {
		t.Fatalf("VolunteerForEvent failed: %v", err)
	}
	if len(got.VolunteersIDs) != 1 || got.VolunteersIDs[0] != alice.UserID() {
		t.Errorf("roster = %v", got.VolunteersIDs)
	}
	if got.Name != "River Cleanup" || got.OrganizerID != org.UserID() {
		t.Errorf("fields not carried forward: %+v", got)
	}

	if _, err := signup.VolunteerForEvent(ctx, alice, event.ID); api.KindOf(err) != api.KindAlreadyVolunteered {
		t.Errorf("second signup: expected AlreadyVolunteered, got %v", err)
	}

	// Bob has a stale snapshot taken before Alice filled the team.
	bobClient := newClient(t, server, bob)
	bobStore := eventstore.New(bobClient, nil, nil)
	stale := event.Clone()
	bobStore.PutEvent(stale)

	_, err = service.NewSignupService(bobClient, bobStore, nil, nil).VolunteerForEvent(ctx, bob, event.ID)
	if api.KindOf(err) != api.KindTeamFull {
		t.Fatalf("stale signup: expected TeamFull from server, got %v", err)
	}
	if n := api.Notify(err); n.Message != "The team is already full." {
		t.Errorf("notification = %+v", n)
	}
}

func TestUpdateEventRules(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()

	org := register(t, server, "Olive", "olive@example.com")
	alice := register(t, server, "Alice", "alice@example.com")
	event := createEvent(t, server, org, 3)
	aliceClient := newClient(t, server, alice)

	tests := []struct {
		name       string
		client     *api.Client
		mutate     func(e *models.Event)
		wantStatus int
		wantCode   string
	}{
		{
			name:       "duplicate id",
			client:     aliceClient,
			mutate:     func(e *models.Event) { e.VolunteersIDs = []string{alice.UserID(), alice.UserID()} },
			wantStatus: http.StatusConflict,
			wantCode:   devapi.CodeAlreadyVolunteered,
		},
		{
			name:       "adding someone else",
			client:     aliceClient,
			mutate:     func(e *models.Event) { e.VolunteersIDs = []string{org.UserID()} },
			wantStatus: http.StatusForbidden,
			wantCode:   devapi.CodeForbidden,
		},
		{
			name:       "non-organizer edit",
			client:     aliceClient,
			mutate:     func(e *models.Event) { e.Name = "Renamed" },
			wantStatus: http.StatusForbidden,
			wantCode:   devapi.CodeForbidden,
		},
		{
			name:       "anonymous",
			client:     newClient(t, server, nil),
			mutate:     func(e *models.Event) { e.VolunteersIDs = []string{alice.UserID()} },
			wantStatus: http.StatusUnauthorized,
			wantCode:   devapi.CodeUnauthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := event.Clone()
			tt.mutate(e)
			err := tt.client.UpdateEvent(ctx, e)
			if api.StatusOf(err) != tt.wantStatus {
				t.Fatalf("status = %d, want %d (err %v)", api.StatusOf(err), tt.wantStatus, err)
			}
			if tt.wantCode != "" && api.CodeOf(err) != tt.wantCode {
				t.Errorf("code = %q, want %q", api.CodeOf(err), tt.wantCode)
			}
		})
	}

	got, err := aliceClient.GetEvent(ctx, event.ID)
	if err != nil {
		t.Fatalf("GetEvent failed: %v", err)
	}
	if len(got.VolunteersIDs) != 0 || got.Name != "River Cleanup" {
		t.Errorf("rejected updates changed the event: %+v", got)
	}
}

func TestConcurrentAddsAreMerged(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()

	org := register(t, server, "Olive", "olive@example.com")
	alice := register(t, server, "Alice", "alice@example.com")
	bob := register(t, server, "Bob", "bob@example.com")
	event := createEvent(t, server, org, 3)

	// Both PUTs are built from the same empty roster.
	if err := newClient(t, server, alice).UpdateEvent(ctx, event.WithVolunteer(alice.UserID())); err != nil {
		t.Fatalf("alice update failed: %v", err)
	}
	if err := newClient(t, server, bob).UpdateEvent(ctx, event.WithVolunteer(bob.UserID())); err != nil {
		t.Fatalf("bob update failed: %v", err)
	}

	got, err := newClient(t, server, nil).GetEvent(ctx, event.ID)
	if err != nil {
		t.Fatalf("GetEvent failed: %v", err)
	}
	if len(got.VolunteersIDs) != 2 || got.VolunteersIDs[0] != alice.UserID() || got.VolunteersIDs[1] != bob.UserID() {
		t.Errorf("roster = %v, want [alice bob]", got.VolunteersIDs)
	}
}

func TestLoginAgainstServer(t *testing.T) {
	server := setupTestServer(t)
	register(t, server, "Alice", "alice@example.com")
	client := newClient(t, server, nil)

	cache, err := sqlite.NewCache(t.TempDir() + "/session.db")
	if err != nil {
		t.Fatalf("failed to open cache: %v", err)
	}
	defer cache.Close()
	m := session.NewManager(cache, client, session.New(nil, ""), nil)

	_, err = m.Login(context.Background(), "alice@example.com", "wrong-password")
	if api.KindOf(err) != api.KindAuthentication {
		t.Fatalf("expected authentication error, got %v", err)
	}
	if msg := api.Notify(err).Message; msg != "Invalid email or password" {
		t.Errorf("message = %q", msg)
	}

	user, err := m.Login(context.Background(), " ALICE@example.com", "secret1")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if user.Name.First != "Alice" || m.Session().AccessToken() == "" {
		t.Errorf("unexpected login result: %+v", user)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	server := setupTestServer(t)
	register(t, server, "Alice", "alice@example.com")

	body := `{"name":{"first":"Alice"},"email":"Alice@Example.com","password":"secret1"}`
	resp, err := http.Post(server.URL+"/users", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusConflict)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	server := setupTestServer(t)

	first, err := http.Get(server.URL + "/events")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	first.Body.Close()

	resp, err := http.Get(server.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics request failed: %v", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(data), `volunteer_devapi_requests_total{route="/events",status="200"} 1`) {
		t.Errorf("metrics output missing request counter:\n%s", data)
	}
}
