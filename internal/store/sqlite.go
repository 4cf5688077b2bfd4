package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"paper-trader/internal/errors"
	"paper-trader/internal/ledger"
	"paper-trader/internal/models"
)

// SQLiteStore implements StateStore using SQLite. Each session key maps to
// one JSON snapshot row.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based state store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Portfolio state, one JSON snapshot per session key
	CREATE TABLE IF NOT EXISTS portfolios (
		session_key TEXT PRIMARY KEY,
		state TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Load returns the snapshot for a session key.
func (s *SQLiteStore) Load(ctx context.Context, key string) (models.Snapshot, bool, error) {
	var state string
	err := s.db.QueryRowContext(ctx,
		"SELECT state FROM portfolios WHERE session_key = ?", key).Scan(&state)
	if err == sql.ErrNoRows {
		return models.Snapshot{}, false, nil
	}
	if err != nil {
		return models.Snapshot{}, false, errors.NewStoreError(key, "load", err)
	}

	snap, err := ledger.DecodeSnapshot([]byte(state))
	if err != nil {
		return models.Snapshot{}, false, errors.NewStoreError(key, "load", err)
	}
	return snap, true, nil
}

// Save writes the snapshot for a session key.
func (s *SQLiteStore) Save(ctx context.Context, key string, snap models.Snapshot) error {
	data, err := ledger.EncodeSnapshot(snap)
	if err != nil {
		return errors.NewStoreError(key, "save", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO portfolios (session_key, state, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(session_key) DO UPDATE SET
			state = excluded.state,
			updated_at = CURRENT_TIMESTAMP
	`, key, string(data))
	if err != nil {
		return errors.NewStoreError(key, "save", err)
	}
	return nil
}

// Delete removes the state for a session key.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM portfolios WHERE session_key = ?", key); err != nil {
		return errors.NewStoreError(key, "delete", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ StateStore = (*SQLiteStore)(nil)
