package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mmynk/volunteermap/internal/storage"
)

// Ensure Cache implements storage.Cache
var _ storage.Cache = (*Cache)(nil)

// Cache is the client's persistent key/value cache.
type Cache struct {
	db *sql.DB
}

// NewCache opens (or creates) the cache database at dbPath.
func NewCache(dbPath string) (*Cache, error) {
	db, err := open(dbPath, cacheSchema)
	if err != nil {
		return nil, err
	}
	return &Cache{db: db}, nil
}

// Close closes the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get decodes the JSON value stored under key into out.
func (c *Cache) Get(ctx context.Context, key string, out any) (bool, error) {
	var value string
	err := c.db.QueryRowContext(ctx, "SELECT value FROM cache WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read cache key %s: %w", key, err)
	}

	if err := json.Unmarshal([]byte(value), out); err != nil {
		return false, fmt.Errorf("failed to decode cache key %s: %w", key, err)
	}
	return true, nil
}

// Set stores value under key as JSON, replacing any previous value.
func (c *Cache) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache key %s: %w", key, err)
	}

	_, err = c.db.ExecContext(ctx,
		`INSERT INTO cache (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(data), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to write cache key %s: %w", key, err)
	}
	return nil
}

// SetMany stores every entry of values in one transaction, so either all keys
// are written or none are.
func (c *Cache) SetMany(ctx context.Context, values map[string]any) error {
	encoded := make(map[string]string, len(values))
	for key, value := range values {
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to encode cache key %s: %w", key, err)
		}
		encoded[key] = string(data)
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	for key, data := range encoded {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO cache (key, value, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			key, data, now,
		)
		if err != nil {
			return fmt.Errorf("failed to write cache key %s: %w", key, err)
		}
	}
	return tx.Commit()
}

// Remove deletes the given keys. Missing keys are ignored.
func (c *Cache) Remove(ctx context.Context, keys ...string) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, key := range keys {
		if _, err := tx.ExecContext(ctx, "DELETE FROM cache WHERE key = ?", key); err != nil {
			return fmt.Errorf("failed to remove cache key %s: %w", key, err)
		}
	}
	return tx.Commit()
}
