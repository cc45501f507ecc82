// Package sessiondb implements SessionStore using BadgerHold.
package sessiondb

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/HiFromAjay/checklistenserver/internal/common"
	"github.com/HiFromAjay/checklistenserver/internal/models"
)

// Store implements interfaces.SessionStore using BadgerHold.
type Store struct {
	db     *badgerhold.Store
	logger *common.Logger
}

// NewStore creates a new SessionStore backed by BadgerHold.
func NewStore(logger *common.Logger, path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create session db path %s: %w", path, err)
	}
	opts := badgerhold.DefaultOptions
	opts.Dir = path
	opts.ValueDir = path
	opts.Logger = nil
	db, err := badgerhold.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open session db at %s: %w", path, err)
	}
	logger.Info().Str("path", path).Msg("SessionDB opened")
	return &Store{db: db, logger: logger}, nil
}

// Get returns the session for sessionID. Unknown and expired sessions both
// report models.ErrNotFound; expired ones are deleted lazily.
func (s *Store) Get(ctx context.Context, sessionID string) (*models.UserSession, error) {
	var session models.UserSession
	if err := s.db.Get(sessionID, &session); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("session: %w", models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session.Expired(time.Now()) {
		_ = s.Delete(ctx, sessionID)
		return nil, fmt.Errorf("session: %w", models.ErrNotFound)
	}
	return &session, nil
}

// Save persists a session.
func (s *Store) Save(_ context.Context, session *models.UserSession) error {
	if session.SessionID == "" {
		return fmt.Errorf("session id must not be empty")
	}
	if err := s.db.Upsert(session.SessionID, session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	s.logger.Debug().Str("subject", session.Subject).Msg("Session saved")
	return nil
}

// Delete removes a session. Unknown ids are not an error.
func (s *Store) Delete(_ context.Context, sessionID string) error {
	if err := s.db.Delete(sessionID, models.UserSession{}); err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Close closes the underlying store.
func (s *Store) Close() error {
	return s.db.Close()
}
