// Package storage persists the Slack user ID to display name mapping so
// repeated history/thread commands don't re-fetch every author.
package storage

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// UserCache wraps a SQLite database mapping user IDs to display names.
type UserCache struct {
	db *sql.DB
}

// OpenUserCache opens or creates the cache database at the given path.
func OpenUserCache(path string) (*UserCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening user cache: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	schema := `
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL
		);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &UserCache{db: db}, nil
}

// Close closes the database connection.
func (c *UserCache) Close() error {
	return c.db.Close()
}

// Get returns the cached name for a user ID, or false when absent.
func (c *UserCache) Get(userID string) (string, bool, error) {
	var name string
	err := c.db.QueryRow("SELECT name FROM users WHERE id = ?", userID).Scan(&name)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("querying user cache: %w", err)
	}
	return name, true, nil
}

// Put stores or replaces the name for a user ID.
func (c *UserCache) Put(userID, name string) error {
	_, err := c.db.Exec(
		"INSERT INTO users (id, name) VALUES (?, ?) ON CONFLICT(id) DO UPDATE SET name = excluded.name",
		userID, name)
	if err != nil {
		return fmt.Errorf("updating user cache: %w", err)
	}
	return nil
}
