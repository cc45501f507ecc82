// Package checklist provides checklist CRUD with optimistic-concurrency
// conflict resolution on updates.
package checklist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/HiFromAjay/checklistenserver/internal/common"
	"github.com/HiFromAjay/checklistenserver/internal/interfaces"
	"github.com/HiFromAjay/checklistenserver/internal/models"
)

// Service implements the ChecklistService interface
type Service struct {
	store  interfaces.ChecklistStore
	logger *common.Logger
}

// NewService creates a new checklist service
func NewService(store interfaces.ChecklistStore, logger *common.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
	}
}

// List returns every stored checklist. Rows whose payload can no longer be
// decoded are skipped with a warning rather than failing the whole listing.
func (s *Service) List(ctx context.Context) ([]*models.ChecklistData, error) {
	rows, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*models.ChecklistData, 0, len(rows))
	for _, row := range rows {
		data, err := decodeRow(row)
		if err != nil {
			s.logger.Warn().Str("key", row.Key).Err(err).Msg("Skipping undecodable checklist row")
			continue
		}
		result = append(result, data)
	}
	return result, nil
}

// Get returns the checklist for key.
func (s *Service) Get(ctx context.Context, key string) (*models.ChecklistData, error) {
	row, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return decodeRow(row)
}

// Create persists a new checklist. A missing key is assigned server-side.
func (s *Service) Create(ctx context.Context, data *models.ChecklistData) (*models.ChecklistData, error) {
	if data.Key == "" {
		data.Key = uuid.New().String()
	}
	data.DoneCount = data.CountDone()

	row, err := s.store.Create(ctx, data)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("key", row.Key).Int("version", row.Version).Msg("Checklist created")
	return decodeRow(row)
}

// Update applies a client submission against the stored row. The submitted
// version is compared with the current row first; a stale submission is
// answered with the authoritative server state instead of being written. The
// actual write is conditional on the version still matching, so a racing
// writer between the read and the write also resolves to a conflict.
func (s *Service) Update(ctx context.Context, key string, data *models.ChecklistData) (*models.ConflictResolution, error) {
	row, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	if data.Version < row.Version {
		return s.conflictFrom(row)
	}
	data.DoneCount = data.CountDone()

	newVersion, err := s.store.UpdateVersioned(ctx, key, row.Version, data)
	if err != nil {
		if errors.Is(err, models.ErrVersionMismatch) {
			current, getErr := s.store.Get(ctx, key)
			if getErr != nil {
				return nil, getErr
			}
			return s.conflictFrom(current)
		}
		return nil, err
	}

	applied := *data
	applied.Key = key
	applied.Version = newVersion
	return &models.ConflictResolution{
		Applied: true,
		Version: newVersion,
		Data:    &applied,
	}, nil
}

// Delete removes the checklist for key. Deleting an absent key succeeds.
func (s *Service) Delete(ctx context.Context, key string) error {
	if err := s.store.Delete(ctx, key); err != nil {
		return err
	}
	s.logger.Info().Str("key", key).Msg("Checklist deleted")
	return nil
}

func (s *Service) conflictFrom(row *models.Checklist) (*models.ConflictResolution, error) {
	data, err := decodeRow(row)
	if err != nil {
		return nil, err
	}
	s.logger.Warn().Str("key", row.Key).Int("serverVersion", row.Version).Msg("Checklist update conflict")
	return &models.ConflictResolution{
		Applied: false,
		Version: row.Version,
		Data:    data,
	}, nil
}

// decodeRow rebuilds the wire representation from the stored row. The row's
// version column is authoritative over whatever the serialized payload says.
func decodeRow(row *models.Checklist) (*models.ChecklistData, error) {
	var data models.ChecklistData
	if err := json.Unmarshal([]byte(row.Data), &data); err != nil {
		return nil, fmt.Errorf("failed to decode checklist %s: %v: %w", row.Key, err, models.ErrPersistence)
	}
	data.Key = row.Key
	data.Version = row.Version
	data.DoneCount = data.CountDone()
	return &data, nil
}
