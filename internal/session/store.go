package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
)

// TokenKey is the storage key of the session token.
const TokenKey = "token"

// Store is durable, single-value storage for the session token.
//
// Get returns "" with a nil error when no token is stored.
type Store interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// SQLiteStore stores the token in the session_store table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a store over a migrated database.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Get implements [Store].
func (s *SQLiteStore) Get(ctx context.Context) (string, error) {
	var token string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM session_store WHERE key = ?", TokenKey).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session token: %w", err)
	}
	return token, nil
}

// Set implements [Store]. An empty token clears the store.
func (s *SQLiteStore) Set(ctx context.Context, token string) error {
	if token == "" {
		return s.Clear(ctx)
	}

	query := `
		INSERT INTO session_store (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`
	if _, err := s.db.ExecContext(ctx, query, TokenKey, token); err != nil {
		return fmt.Errorf("failed to write session token: %w", err)
	}
	return nil
}

// Clear implements [Store].
func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM session_store WHERE key = ?", TokenKey); err != nil {
		return fmt.Errorf("failed to clear session token: %w", err)
	}
	return nil
}

// MemoryStore keeps the token in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryStore creates a store seeded with token, which may be empty.
func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: token}
}

// Get implements [Store].
func (m *MemoryStore) Get(context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, nil
}

// Set implements [Store].
func (m *MemoryStore) Set(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

// Clear implements [Store].
func (m *MemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}
