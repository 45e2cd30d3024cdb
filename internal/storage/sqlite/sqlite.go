// Package sqlite provides SQLite-backed implementations of storage.Store and storage.Cache.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/volunteermap/internal/models"
	"github.com/mmynk/volunteermap/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	db, err := open(dbPath, schema)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// open prepares a database file and applies ddl.
func open(dbPath, ddl string) (*sql.DB, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer at a time; SQLite serializes anyway and this avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := runMigrations(db, ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateEvent persists a new event and its roster.
func (s *SQLiteStore) CreateEvent(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO events (id, name, description, date_time, latitude, longitude, volunteers_needed, organizer_id, image_url)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.Name, event.Description, formatTime(event.DateTime),
		event.Position.Latitude, event.Position.Longitude,
		event.VolunteersNeeded, event.OrganizerID, event.ImageURL,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: event %s", storage.ErrAlreadyExists, event.ID)
		}
		return fmt.Errorf("failed to insert event: %w", err)
	}

	if err := insertVolunteers(ctx, tx, event.ID, event.VolunteersIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetEvent retrieves an event by ID, including its roster.
func (s *SQLiteStore) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, date_time, latitude, longitude, volunteers_needed, organizer_id, image_url
		 FROM events WHERE id = ?`,
		eventID,
	)
	event, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: event %s", storage.ErrNotFound, eventID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	volunteers, err := s.volunteers(ctx, eventID)
	if err != nil {
		return nil, err
	}
	event.VolunteersIDs = volunteers

	return event, nil
}

// ListEvents retrieves every event ordered by start time.
func (s *SQLiteStore) ListEvents(ctx context.Context) ([]models.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, date_time, latitude, longitude, volunteers_needed, organizer_id, image_url
		 FROM events ORDER BY date_time, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	rows.Close()

	for i := range events {
		volunteers, err := s.volunteers(ctx, events[i].ID)
		if err != nil {
			return nil, err
		}
		events[i].VolunteersIDs = volunteers
	}

	return events, nil
}

// UpdateEvent replaces an existing event and its roster.
func (s *SQLiteStore) UpdateEvent(ctx context.Context, event *models.Event) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE events SET name = ?, description = ?, date_time = ?, latitude = ?, longitude = ?,
		 volunteers_needed = ?, organizer_id = ?, image_url = ? WHERE id = ?`,
		event.Name, event.Description, formatTime(event.DateTime),
		event.Position.Latitude, event.Position.Longitude,
		event.VolunteersNeeded, event.OrganizerID, event.ImageURL, event.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: event %s", storage.ErrNotFound, event.ID)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM event_volunteers WHERE event_id = ?", event.ID); err != nil {
		return fmt.Errorf("failed to clear volunteers: %w", err)
	}
	if err := insertVolunteers(ctx, tx, event.ID, event.VolunteersIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) volunteers(ctx context.Context, eventID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id FROM event_volunteers WHERE event_id = ? ORDER BY position",
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get volunteers: %w", err)
	}
	defer rows.Close()

	volunteers := []string{}
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan volunteer: %w", err)
		}
		volunteers = append(volunteers, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate volunteers: %w", err)
	}
	return volunteers, nil
}

// insertVolunteers writes the roster in order. Duplicate IDs are skipped so the
// table never holds the same user twice for one event.
func insertVolunteers(ctx context.Context, tx *sql.Tx, eventID string, userIDs []string) error {
	for i, userID := range userIDs {
		_, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO event_volunteers (event_id, user_id, position) VALUES (?, ?, ?)",
			eventID, userID, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert volunteer: %w", err)
		}
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(row scanner) (*models.Event, error) {
	event := &models.Event{}
	var dateTime string
	err := row.Scan(
		&event.ID,
		&event.Name,
		&event.Description,
		&dateTime,
		&event.Position.Latitude,
		&event.Position.Longitude,
		&event.VolunteersNeeded,
		&event.OrganizerID,
		&event.ImageURL,
	)
	if err != nil {
		return nil, err
	}
	event.DateTime, err = time.Parse(time.RFC3339, dateTime)
	if err != nil {
		return nil, fmt.Errorf("invalid date_time %q: %w", dateTime, err)
	}
	return event, nil
}

// formatTime stores timestamps as UTC RFC3339 strings with second precision,
// which sort lexically in time order.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "PRIMARY KEY")
}
