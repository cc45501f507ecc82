package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/HiFromAjay/checklistenserver/internal/common"
	"github.com/HiFromAjay/checklistenserver/internal/models"
)

const checklistsBaseURI = "/api/checklists/"

// requireSubject enforces an authenticated identity on checklist routes.
// Returns false after writing the 401 when no subject was established.
func (s *Server) requireSubject(w http.ResponseWriter, r *http.Request) (string, bool) {
	subject, ok := common.SubjectFromContext(r.Context())
	if !ok || subject == "" {
		WriteErrorWithCode(w, http.StatusUnauthorized, "Authentication required", CodeAuthenticationFailed)
		return "", false
	}
	return subject, true
}

// handleChecklists handles /api/checklists (list and create).
func (s *Server) handleChecklists(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	if _, ok := s.requireSubject(w, r); !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleChecklistList(w, r)
	case http.MethodPost:
		s.handleChecklistCreate(w, r)
	}
}

// routeChecklists handles /api/checklists/{key}.
func (s *Server) routeChecklists(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPut, http.MethodDelete) {
		return
	}
	if _, ok := s.requireSubject(w, r); !ok {
		return
	}

	key := PathParam(r, checklistsBaseURI, "")
	if key == "" {
		if r.Method == http.MethodGet {
			s.handleChecklistList(w, r)
			return
		}
		WriteError(w, http.StatusBadRequest, "Checklist key is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleChecklistGet(w, r, key)
	case http.MethodPut:
		s.handleChecklistUpdate(w, r, key)
	case http.MethodDelete:
		s.handleChecklistDelete(w, r, key)
	}
}

func (s *Server) handleChecklistList(w http.ResponseWriter, r *http.Request) {
	checklists, err := s.app.ChecklistService.List(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error listing checklists: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, models.ResponsePayload{
		Message: models.MessageInfo(fmt.Sprintf("%d checklists", len(checklists))),
		Data:    checklists,
	})
}

func (s *Server) handleChecklistGet(w http.ResponseWriter, r *http.Request, key string) {
	checklist, err := s.app.ChecklistService.Get(r.Context(), key)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Checklist not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, "Error loading checklist")
		return
	}

	WriteJSON(w, http.StatusOK, models.ResponsePayload{
		Message: models.MessageInfo("OK"),
		Data:    checklist,
	})
}

func (s *Server) handleChecklistCreate(w http.ResponseWriter, r *http.Request) {
	var data models.ChecklistData
	if !DecodeJSON(w, r, &data) {
		return
	}
	if data.Name == "" {
		WriteError(w, http.StatusBadRequest, "Checklist name is required")
		return
	}

	created, err := s.app.ChecklistService.Create(r.Context(), &data)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Error creating checklist")
		return
	}

	w.Header().Set("Location", created.Location(checklistsBaseURI))
	WriteJSON(w, http.StatusCreated, models.ResponsePayload{
		Message: models.MessageInfo("Checklist created"),
		Data:    created,
	})
}

// handleChecklistUpdate applies a versioned update. A version conflict is a
// regular outcome, not an error: the response is 200 with a warning message
// and the authoritative server state, which the client merges and resubmits.
func (s *Server) handleChecklistUpdate(w http.ResponseWriter, r *http.Request, key string) {
	var data models.ChecklistData
	if !DecodeJSON(w, r, &data) {
		return
	}

	resolution, err := s.app.ChecklistService.Update(r.Context(), key, &data)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Checklist not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, "Error updating checklist")
		return
	}

	if !resolution.Applied {
		s.app.Metrics.RecordUpdateConflict()
		WriteJSON(w, http.StatusOK, models.ResponsePayload{
			Message: models.MessageWarn(fmt.Sprintf("Update conflict: server is at version %d", resolution.Version)),
			Data:    resolution.Data,
		})
		return
	}

	WriteJSON(w, http.StatusOK, models.ResponsePayload{
		Message: models.MessageInfo("Checklist updated"),
		Data:    resolution.Data,
	})
}

func (s *Server) handleChecklistDelete(w http.ResponseWriter, r *http.Request, key string) {
	if err := s.app.ChecklistService.Delete(r.Context(), key); err != nil {
		WriteError(w, http.StatusInternalServerError, "Error deleting checklist")
		return
	}
	WriteJSON(w, http.StatusOK, models.MessageOnly(models.MessageInfo("Checklist deleted")))
}
