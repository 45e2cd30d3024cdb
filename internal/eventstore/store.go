// Package eventstore holds the latest fetched snapshot of events and users for
// the active screen.
//
// Every refresh is tagged with a generation number when it starts. A result is
// applied only if no newer generation has already been applied for that half
// (events or users), so a slow response can never overwrite a fresher one.
package eventstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mmynk/volunteermap/internal/api"
	"github.com/mmynk/volunteermap/internal/metrics"
	"github.com/mmynk/volunteermap/internal/models"
)

// Fetcher reads the collections the store caches. *api.Client implements it.
type Fetcher interface {
	ListEvents(ctx context.Context) ([]models.Event, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

// Store is an in-memory snapshot of events and users. It has no eviction and
// no size bound; discard it when the screen goes away.
type Store struct {
	fetcher Fetcher
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu        sync.RWMutex
	events    []models.Event
	users     []models.User
	issued    uint64 // last generation handed out
	eventsGen uint64 // generation of the applied events
	usersGen  uint64 // generation of the applied users
}

// New creates an empty store. logger and m may be nil.
func New(fetcher Fetcher, logger *slog.Logger, m *metrics.Metrics) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = metrics.Discard()
	}
	return &Store{fetcher: fetcher, logger: logger, metrics: m}
}

// Refresh fetches events and users concurrently and replaces each half of the
// snapshot wholesale on success.
//
// If only one fetch fails, the half that succeeded is still applied and the
// failed half keeps its previous contents. Results that arrive after ctx is
// done, or after a newer refresh has been applied, are dropped.
// Any failure is reported as an api.KindFetch error.
func (s *Store) Refresh(ctx context.Context) error {
	gen := s.nextGeneration()

	var (
		g                   errgroup.Group
		events              []models.Event
		users               []models.User
		eventsErr, usersErr error
	)
	g.Go(func() error {
		events, eventsErr = s.fetcher.ListEvents(ctx)
		return eventsErr
	})
	g.Go(func() error {
		users, usersErr = s.fetcher.ListUsers(ctx)
		return usersErr
	})
	failed := g.Wait() != nil

	if err := ctx.Err(); err != nil {
		s.logger.Info("Refresh abandoned", "generation", gen, "error", err)
		return api.NewError(api.KindFetch, fmt.Errorf("refresh abandoned: %w", err))
	}

	if eventsErr == nil {
		s.applyEvents(gen, events)
	} else {
		s.logger.Error("Refresh failed to fetch events", "generation", gen, "error", eventsErr)
	}
	if usersErr == nil {
		s.applyUsers(gen, users)
	} else {
		s.logger.Error("Refresh failed to fetch users", "generation", gen, "error", usersErr)
	}

	if failed {
		return api.NewError(api.KindFetch, errors.Join(eventsErr, usersErr))
	}

	s.logger.Debug("Refresh successful", "generation", gen, "events", len(events), "users", len(users))
	return nil
}

// Get returns copies of the current snapshot.
func (s *Store) Get() ([]models.Event, []models.User) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]models.Event, len(s.events))
	for i := range s.events {
		events[i] = *s.events[i].Clone()
	}
	return events, slices.Clone(s.users)
}

// Event returns a copy of the cached event with the given ID.
func (s *Store) Event(id string) (*models.Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.events {
		if s.events[i].ID == id {
			return s.events[i].Clone(), true
		}
	}
	return nil, false
}

// PutEvent patches a single event after a successful server write, adding it
// if it is not cached yet. Refreshes started before the patch will no longer
// overwrite the events half when they complete.
func (s *Store) PutEvent(event *models.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.issued++
	s.eventsGen = s.issued

	for i := range s.events {
		if s.events[i].ID == event.ID {
			s.events[i] = *event.Clone()
			return
		}
	}
	s.events = append(s.events, *event.Clone())
}

func (s *Store) nextGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

func (s *Store) applyEvents(gen uint64, events []models.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen <= s.eventsGen {
		s.metrics.StaleDiscards.WithLabelValues("events").Inc()
		s.logger.Debug("Discarding stale events", "generation", gen, "applied", s.eventsGen)
		return
	}
	s.events = events
	s.eventsGen = gen
}

func (s *Store) applyUsers(gen uint64, users []models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen <= s.usersGen {
		s.metrics.StaleDiscards.WithLabelValues("users").Inc()
		s.logger.Debug("Discarding stale users", "generation", gen, "applied", s.usersGen)
		return
	}
	s.users = users
	s.usersGen = gen
}
