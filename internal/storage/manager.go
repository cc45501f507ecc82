// Package storage provides the top-level StorageManager that coordinates
// the 2 storage areas: checklistdb and sessiondb.
package storage

import (
	"fmt"

	"github.com/HiFromAjay/checklistenserver/internal/common"
	"github.com/HiFromAjay/checklistenserver/internal/interfaces"
	"github.com/HiFromAjay/checklistenserver/internal/storage/checklistdb"
	"github.com/HiFromAjay/checklistenserver/internal/storage/sessiondb"
)

// Manager implements interfaces.StorageManager using 2 storage areas.
type Manager struct {
	checklists *checklistdb.Store
	sessions   *sessiondb.Store
	logger     *common.Logger
}

// NewManager creates a new StorageManager with the 2 storage areas.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	checklistStore, err := checklistdb.NewStore(logger, config.Storage.Checklists.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create checklist store: %w", err)
	}

	sessionStore, err := sessiondb.NewStore(logger, config.Storage.Sessions.Path)
	if err != nil {
		checklistStore.Close()
		return nil, fmt.Errorf("failed to create session store: %w", err)
	}

	logger.Info().
		Str("checklists", config.Storage.Checklists.Path).
		Str("sessions", config.Storage.Sessions.Path).
		Msg("Storage manager initialized (2 areas)")

	return &Manager{
		checklists: checklistStore,
		sessions:   sessionStore,
		logger:     logger,
	}, nil
}

func (m *Manager) Checklists() interfaces.ChecklistStore {
	return m.checklists
}

func (m *Manager) Sessions() interfaces.SessionStore {
	return m.sessions
}

// Close closes all storage areas.
func (m *Manager) Close() error {
	var firstErr error
	if err := m.checklists.Close(); err != nil {
		firstErr = err
	}
	if err := m.sessions.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
