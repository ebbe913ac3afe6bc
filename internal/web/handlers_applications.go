package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/krishdev/permithub/internal/schema"
)

// handleCreateApplication stores a new permit application. A missing id is
// assigned; timestamps are stamped when the body leaves them empty.
func (s *Server) handleCreateApplication(w http.ResponseWriter, r *http.Request) {
	var app schema.Application
	if err := json.NewDecoder(r.Body).Decode(&app); err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "BAD_REQUEST"})
		return
	}

	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	now := time.Now().Format(time.RFC3339)
	if app.CreatedAt == "" {
		app.CreatedAt = now
	}
	if app.UpdatedAt == "" {
		app.UpdatedAt = now
	}

	if err := s.apps.Save(&app); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusCreated, app)
}

// handleListApplications returns every application.
func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := s.apps.List()
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	if apps == nil {
		apps = []schema.Application{}
	}
	respondJSON(w, http.StatusOK, apps)
}

// handleGetApplication returns one application by id.
func (s *Server) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	app, found, err := s.apps.Get(id)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	if !found {
		respondJSON(w, http.StatusNotFound, ErrorResponse{Error: "application not found", Code: "NOT_FOUND"})
		return
	}
	respondJSON(w, http.StatusOK, app)
}

// handleUpdateApplication replaces the application at the path id with the
// request body. The identifier is immutable: the path wins over the body.
func (s *Server) handleUpdateApplication(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var app schema.Application
	if err := json.NewDecoder(r.Body).Decode(&app); err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "BAD_REQUEST"})
		return
	}
	app.ID = id
	if app.UpdatedAt == "" {
		app.UpdatedAt = time.Now().Format(time.RFC3339)
	}

	if err := s.apps.Save(&app); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, app)
}

// handleDeleteApplication removes an application. Deleting an absent id
// still returns 204.
func (s *Server) handleDeleteApplication(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.apps.Delete(id); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
