package server

import (
	"net/http"
	"time"
)

// handleShutdown handles POST /api/shutdown (dev stage only).
func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if !s.app.Config.IsDevelopment() {
		WriteError(w, http.StatusForbidden, "Shutdown endpoint disabled outside dev stage")
		return
	}

	s.logger.Info().Msg("Shutdown requested via HTTP endpoint")

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Shutting down gracefully...\n"))

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	if s.shutdownChan != nil {
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.shutdownChan <- struct{}{}
		}()
	}
}

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/shutdown", s.handleShutdown)
	mux.Handle("/metrics", s.app.Metrics.Handler())

	// Auth
	mux.HandleFunc("/api/auth/login", s.handleLoginURL)
	mux.HandleFunc("/api/auth/signup", s.handleSignupURL)
	mux.HandleFunc("/api/auth/session", s.handleSession)
	mux.HandleFunc("/api/auth/logout", s.handleLogout)
	mux.HandleFunc("/api/auth/dev/logout/", s.handleDevLogout)

	// Checklists
	mux.HandleFunc("/api/checklists/", s.routeChecklists)
	mux.HandleFunc("/api/checklists", s.handleChecklists)
}
