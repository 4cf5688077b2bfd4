// Package store provides data persistence for portfolio state.
package store

import (
	"context"

	"paper-trader/internal/models"
)

// StateStore persists portfolio snapshots keyed by session identity.
type StateStore interface {
	// Load returns the snapshot for a session key. The second return is
	// false when no state exists for the key.
	Load(ctx context.Context, key string) (models.Snapshot, bool, error)

	// Save writes the snapshot for a session key, replacing prior state.
	Save(ctx context.Context, key string, snap models.Snapshot) error

	// Delete removes the state for a session key.
	Delete(ctx context.Context, key string) error

	// Close releases the store.
	Close() error
}
