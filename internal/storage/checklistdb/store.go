// Package checklistdb implements ChecklistStore using BadgerHold.
// It stores checklist rows with a serialized JSON payload and an
// optimistic-lock version counter owned by the store.
package checklistdb

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/HiFromAjay/checklistenserver/internal/common"
	"github.com/HiFromAjay/checklistenserver/internal/models"
)

// initialVersion is the version assigned to freshly created rows.
const initialVersion = 1

// Store implements interfaces.ChecklistStore using BadgerHold.
type Store struct {
	db     *badgerhold.Store
	logger *common.Logger

	// mu serializes the read-compare-write sequence of UpdateVersioned so
	// two concurrent writers to the same key can never both observe the
	// same stored version.
	mu sync.Mutex
}

// NewStore creates a new ChecklistStore backed by BadgerHold.
func NewStore(logger *common.Logger, path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create checklist db path %s: %w", path, err)
	}
	opts := badgerhold.DefaultOptions
	opts.Dir = path
	opts.ValueDir = path
	opts.Logger = nil
	db, err := badgerhold.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open checklist db at %s: %w", path, err)
	}
	logger.Info().Str("path", path).Msg("ChecklistDB opened")
	return &Store{db: db, logger: logger}, nil
}

// Get returns the row for key, or models.ErrNotFound.
func (s *Store) Get(_ context.Context, key string) (*models.Checklist, error) {
	var row models.Checklist
	if err := s.db.Get(key, &row); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("checklist '%s': %w", key, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get checklist '%s': %w", key, err)
	}
	return &row, nil
}

// List returns all checklist rows.
func (s *Store) List(_ context.Context) ([]*models.Checklist, error) {
	var rows []models.Checklist
	if err := s.db.Find(&rows, nil); err != nil {
		return nil, fmt.Errorf("failed to list checklists: %w", err)
	}
	result := make([]*models.Checklist, len(rows))
	for i := range rows {
		result[i] = &rows[i]
	}
	return result, nil
}

// Create persists a new row at the initial version. The serialized payload
// carries the version the store assigned, not whatever the caller submitted.
func (s *Store) Create(_ context.Context, data *models.ChecklistData) (*models.Checklist, error) {
	stored := *data
	stored.Version = initialVersion
	serialized, err := json.Marshal(&stored)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize checklist '%s': %w", data.Key, err)
	}

	now := time.Now()
	row := &models.Checklist{
		Key:        data.Key,
		Type:       data.Type,
		Name:       data.Name,
		Data:       string(serialized),
		Version:    initialVersion,
		CreatedAt:  now,
		ModifiedAt: now,
	}
	if err := s.db.Insert(row.Key, row); err != nil {
		if err == badgerhold.ErrKeyExists {
			return nil, fmt.Errorf("checklist '%s' already exists: %w", row.Key, models.ErrPersistence)
		}
		return nil, fmt.Errorf("failed to insert checklist '%s': %w", row.Key, err)
	}
	s.logger.Debug().Str("key", row.Key).Msg("Checklist created")
	return row, nil
}

// UpdateVersioned performs the conditional check-and-increment write. The
// comparison and the write happen under the store mutex, so the returned
// version is always exactly stored+1 relative to the version compared.
func (s *Store) UpdateVersioned(_ context.Context, key string, expectedVersion int, data *models.ChecklistData) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var row models.Checklist
	if err := s.db.Get(key, &row); err != nil {
		if err == badgerhold.ErrNotFound {
			return 0, fmt.Errorf("checklist '%s': %w", key, models.ErrNotFound)
		}
		return 0, fmt.Errorf("failed to get checklist '%s': %w", key, err)
	}

	if row.Version != expectedVersion {
		return 0, fmt.Errorf("checklist '%s' at version %d, expected %d: %w",
			key, row.Version, expectedVersion, models.ErrVersionMismatch)
	}

	newVersion := row.Version + 1
	stored := *data
	stored.Key = key
	stored.Version = newVersion
	serialized, err := json.Marshal(&stored)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize checklist '%s': %w", key, err)
	}

	row.Name = stored.Name
	row.Type = stored.Type
	row.Data = string(serialized)
	row.Version = newVersion
	row.ModifiedAt = time.Now()

	if err := s.db.Upsert(key, &row); err != nil {
		return 0, fmt.Errorf("failed to update checklist '%s': %w", key, err)
	}
	s.logger.Debug().Str("key", key).Int("version", newVersion).Msg("Checklist updated")
	return newVersion, nil
}

// Delete removes the row for key. Absent rows are not an error.
func (s *Store) Delete(_ context.Context, key string) error {
	if err := s.db.Delete(key, models.Checklist{}); err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete checklist '%s': %w", key, err)
	}
	return nil
}

// Close closes the underlying store.
func (s *Store) Close() error {
	return s.db.Close()
}
