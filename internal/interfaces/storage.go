// Package interfaces defines service contracts for the checklisten-server.
package interfaces

import (
	"context"

	"github.com/HiFromAjay/checklistenserver/internal/models"
)

// StorageManager coordinates the storage areas.
type StorageManager interface {
	Checklists() ChecklistStore
	Sessions() SessionStore
	Close() error
}

// ChecklistStore manages versioned checklist rows. The store is the sole
// authority incrementing Version: Create assigns the initial version and
// UpdateVersioned performs an atomic compare-and-increment.
type ChecklistStore interface {
	// Get returns the row for key, or models.ErrNotFound.
	Get(ctx context.Context, key string) (*models.Checklist, error)

	// List returns all rows.
	List(ctx context.Context) ([]*models.Checklist, error)

	// Create persists a new row at the initial version and returns it.
	// The serialized data reflects the version the store assigned.
	Create(ctx context.Context, data *models.ChecklistData) (*models.Checklist, error)

	// UpdateVersioned persists data for key if the stored version still
	// equals expectedVersion, incrementing it by exactly 1, and returns the
	// version the store actually wrote. A stale expectation returns
	// models.ErrVersionMismatch; a missing row returns models.ErrNotFound.
	UpdateVersioned(ctx context.Context, key string, expectedVersion int, data *models.ChecklistData) (int, error)

	// Delete removes the row for key. Deleting an absent row is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}

// SessionStore manages server-side user sessions.
type SessionStore interface {
	// Get returns the session, or models.ErrNotFound for unknown or
	// expired session ids.
	Get(ctx context.Context, sessionID string) (*models.UserSession, error)

	// Save persists a session.
	Save(ctx context.Context, session *models.UserSession) error

	// Delete removes a session. Deleting an unknown id is not an error.
	Delete(ctx context.Context, sessionID string) error

	Close() error
}
