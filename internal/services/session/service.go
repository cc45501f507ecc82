// Package session manages server-side user sessions derived from verified JWTs.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/HiFromAjay/checklistenserver/internal/common"
	"github.com/HiFromAjay/checklistenserver/internal/interfaces"
	"github.com/HiFromAjay/checklistenserver/internal/models"
)

const sessionIDBytes = 32

// Service implements the SessionService interface
type Service struct {
	config *common.Config
	store  interfaces.SessionStore
	logger *common.Logger
}

// NewService creates a new session service
func NewService(config *common.Config, store interfaces.SessionStore, logger *common.Logger) *Service {
	return &Service{
		config: config,
		store:  store,
		logger: logger,
	}
}

// Create verifies the JWT, derives the subject, and persists a session under
// a fresh random id. The session id is independent of the JWT so leaking one
// never reveals the other.
func (s *Service) Create(ctx context.Context, rawJWT string) (*models.UserSession, error) {
	claims, err := s.verifyJWT(rawJWT)
	if err != nil {
		return nil, err
	}

	id, err := newSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}

	now := time.Now().UTC()
	session := &models.UserSession{
		SessionID: id,
		Subject:   claims.Subject,
		CreatedAt: now,
		ExpiresAt: now.Add(s.config.Auth.GetTokenExpiry()),
	}

	if err := s.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	s.logger.Info().Str("subject", session.Subject).Msg("Session created")
	return session, nil
}

// Invalidate removes the session. Unknown ids are treated as already
// invalidated.
func (s *Service) Invalidate(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to invalidate session: %w", err)
	}
	s.logger.Info().Msg("Session invalidated")
	return nil
}

// SessionCookie builds the HTTP-only cookie carrying the session id. The
// Secure flag is dropped only in the dev stage so local HTTP works.
func (s *Service) SessionCookie(sessionID string) *http.Cookie {
	return &http.Cookie{
		Name:     s.config.Auth.SessionCookieName(),
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(s.config.Auth.GetTokenExpiry().Seconds()),
		HttpOnly: true,
		Secure:   !s.config.IsDevelopment(),
		SameSite: http.SameSiteStrictMode,
	}
}

// InvalidatedCookie builds an expired cookie that clears the session id
// client-side.
func (s *Service) InvalidatedCookie() *http.Cookie {
	return &http.Cookie{
		Name:     s.config.Auth.SessionCookieName(),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   !s.config.IsDevelopment(),
		SameSite: http.SameSiteStrictMode,
	}
}

func (s *Service) verifyJWT(rawJWT string) (*models.IdentityClaims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(rawJWT, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.config.Auth.JWTSecret), nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("token already expired: %w", models.ErrSessionExpired)
		}
		return nil, fmt.Errorf("token verification failed: %w", models.ErrAuthentication)
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return nil, fmt.Errorf("token carries no subject: %w", models.ErrAuthentication)
	}

	identity := &models.IdentityClaims{Subject: subject}
	if iat, err := token.Claims.GetIssuedAt(); err == nil && iat != nil {
		identity.IssuedAt = iat.Time
	}
	if exp, err := token.Claims.GetExpirationTime(); err == nil && exp != nil {
		identity.ExpiresAt = exp.Time
	}
	return identity, nil
}

func newSessionID() (string, error) {
	buf := make([]byte, sessionIDBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
