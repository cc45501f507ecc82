package interfaces

import (
	"context"
	"net/http"

	"github.com/HiFromAjay/checklistenserver/internal/models"
)

// ChecklistService provides checklist CRUD with optimistic-concurrency
// conflict resolution on updates.
type ChecklistService interface {
	List(ctx context.Context) ([]*models.ChecklistData, error)
	Get(ctx context.Context, key string) (*models.ChecklistData, error)
	Create(ctx context.Context, data *models.ChecklistData) (*models.ChecklistData, error)

	// Update applies a client submission against the stored row. A stale
	// submitted version yields a non-applied resolution carrying the
	// authoritative server state; on success the resolution's version is the
	// one the store confirmed.
	Update(ctx context.Context, key string, data *models.ChecklistData) (*models.ConflictResolution, error)

	Delete(ctx context.Context, key string) error
}

// SessionService turns verified JWTs into server-side sessions and cookies.
type SessionService interface {
	// Create derives the subject from the JWT and materializes a session
	// with a fresh unguessable session id.
	Create(ctx context.Context, jwt string) (*models.UserSession, error)

	// Invalidate removes a session. Invalidating an unknown or already
	// invalidated id succeeds.
	Invalidate(ctx context.Context, sessionID string) error

	// SessionCookie builds the HTTP-only session cookie for a session id.
	SessionCookie(sessionID string) *http.Cookie

	// InvalidatedCookie builds the cookie that clears the session client-side.
	InvalidatedCookie() *http.Cookie
}
