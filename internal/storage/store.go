// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/volunteermap/internal/models"
)

var (
	// ErrNotFound is returned (wrapped) when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned (wrapped) when creating a record whose ID or email is taken.
	ErrAlreadyExists = errors.New("already exists")
)

// Store defines the persistence operations behind the events API.
// This abstraction allows swapping storage backends without changing the API handlers.
type Store interface {
	// CreateEvent persists a new event. The ID is supplied by the client;
	// an empty ID is replaced with a generated one.
	CreateEvent(ctx context.Context, event *models.Event) error

	// GetEvent retrieves an event by ID, including its roster in signup order.
	GetEvent(ctx context.Context, eventID string) (*models.Event, error)

	// ListEvents retrieves every event ordered by start time.
	ListEvents(ctx context.Context) ([]models.Event, error)

	// UpdateEvent replaces an existing event record and its roster.
	UpdateEvent(ctx context.Context, event *models.Event) error

	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)

	// Close releases any resources held by the store.
	Close() error
}

// Cache is a small persistent key/value store for values that must survive
// restarts of the client, such as the logged-in user and the access token.
// Values are stored as JSON.
type Cache interface {
	// Get decodes the value under key into out. It reports false if the key is absent.
	Get(ctx context.Context, key string, out any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	// SetMany writes all values atomically.
	SetMany(ctx context.Context, values map[string]any) error
	Remove(ctx context.Context, keys ...string) error
	Close() error
}
