package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/HiFromAjay/checklistenserver/internal/metrics"
	"github.com/HiFromAjay/checklistenserver/internal/models"
)

// handleLoginURL handles GET /api/auth/login. It orders a short-lived access
// token from the auth provider and returns the login URL of the auth app.
func (s *Server) handleLoginURL(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	s.handleAuthAppURL(w, r, "login", s.app.Config.Auth.LoginRedirectURL)
}

// handleSignupURL handles GET /api/auth/signup.
func (s *Server) handleSignupURL(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	s.handleAuthAppURL(w, r, "signup", s.app.Config.Auth.SignupRedirectURL)
}

func (s *Server) handleAuthAppURL(w http.ResponseWriter, r *http.Request, state, redirectURL string) {
	accessToken, err := s.app.AuthProvider.OrderAccessToken(r.Context())
	if err != nil {
		s.writeExchangeError(w, err)
		return
	}

	target := fmt.Sprintf("%s#/%s?accessToken=%s&state=%s&nonce=null&redirectUrl=%s",
		s.app.Config.Auth.AuthAppURL, state, url.QueryEscape(accessToken), state, url.QueryEscape(redirectURL))

	WriteJSON(w, http.StatusOK, models.MessageOnly(models.MessageInfo(target)))
}

// handleSession handles POST /api/auth/session. The body is the one-time
// token as plain text; it is redeemed at the auth provider for a JWT and a
// server-side session is created from that JWT.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<14))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}
	oneTimeToken := strings.TrimSpace(string(body))
	if oneTimeToken == "" {
		WriteError(w, http.StatusBadRequest, "One-time token is required")
		return
	}

	rawJWT, err := s.app.AuthProvider.ExchangeToken(r.Context(), oneTimeToken)
	if err != nil {
		s.writeExchangeError(w, err)
		return
	}

	session, err := s.app.SessionService.Create(r.Context(), rawJWT)
	if err != nil {
		if errors.Is(err, models.ErrSessionExpired) {
			WriteErrorWithCode(w, http.StatusUnauthorized, "Token already expired", CodeSessionExpired)
			return
		}
		if errors.Is(err, models.ErrAuthentication) {
			s.app.Metrics.RecordAuthFailure()
			WriteErrorWithCode(w, http.StatusUnauthorized, "Authentication failed", CodeAuthenticationFailed)
			return
		}
		WriteError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	http.SetCookie(w, s.app.SessionService.SessionCookie(session.SessionID))

	// The session id travels via cookie only; the body exposes it solely in
	// the dev stage for tooling.
	payload := *session
	if !s.app.Config.IsDevelopment() {
		payload.SessionID = ""
	}

	WriteJSON(w, http.StatusCreated, models.ResponsePayload{
		Message: models.MessageInfo("Session created"),
		Data:    payload,
	})
}

// handleLogout handles DELETE /api/auth/logout. Logout is idempotent: the
// response always clears the cookie and reports success, with or without an
// existing session.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	if cookie, err := r.Cookie(s.app.Config.Auth.SessionCookieName()); err == nil && cookie.Value != "" {
		if err := s.app.SessionService.Invalidate(r.Context(), cookie.Value); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to invalidate session on logout")
		}
	}

	http.SetCookie(w, s.app.SessionService.InvalidatedCookie())
	WriteJSON(w, http.StatusOK, models.MessageOnly(models.MessageInfo("Logged out")))
}

// handleDevLogout handles DELETE /api/auth/dev/logout/{sessionId}. The stage
// is checked on every call so a runtime stage change closes the endpoint
// immediately.
func (s *Server) handleDevLogout(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	if !s.app.Config.IsDevelopment() {
		WriteError(w, http.StatusForbidden, "Endpoint disabled outside dev stage")
		return
	}

	sessionID := PathParam(r, "/api/auth/dev/logout/", "")
	if sessionID == "" {
		WriteError(w, http.StatusBadRequest, "Session id is required")
		return
	}

	if err := s.app.SessionService.Invalidate(r.Context(), sessionID); err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to invalidate session")
		return
	}

	WriteJSON(w, http.StatusOK, models.MessageOnly(models.MessageInfo("Session invalidated")))
}

// writeExchangeError maps auth provider client errors onto HTTP responses.
func (s *Server) writeExchangeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrEndpointUnreachable):
		s.logger.Error().Err(err).Msg("Auth provider unreachable")
		s.app.Metrics.RecordExchangeFailure(metrics.ReasonUnreachable)
		WriteErrorWithCode(w, http.StatusBadGateway, "Authentication provider unreachable", CodeEndpointUnreachable)
	case errors.Is(err, models.ErrNonceMismatch):
		s.logger.Warn().Err(err).Msg("Auth provider response failed nonce check")
		s.app.Metrics.RecordExchangeFailure(metrics.ReasonNonceMismatch)
		WriteErrorWithCode(w, http.StatusUnauthorized, "Authentication failed", CodeClientAuthenticationFail)
	case errors.Is(err, models.ErrClientAuthentication):
		s.logger.Warn().Err(err).Msg("Auth provider rejected client exchange")
		s.app.Metrics.RecordExchangeFailure(metrics.ReasonRejected)
		WriteErrorWithCode(w, http.StatusUnauthorized, "Authentication failed", CodeClientAuthenticationFail)
	default:
		s.logger.Error().Err(err).Msg("Token exchange failed")
		WriteError(w, http.StatusInternalServerError, "Token exchange failed")
	}
}
