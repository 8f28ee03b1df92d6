package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/workloadhq/insights/internal/core/domain"
)

type categoryPayload struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type categoryResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.repos.Categories.List(r.Context())
	if err != nil {
		writeStorageError(s.log, w, err)
		return
	}

	out := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, categoryResponse{ID: c.ID, Name: c.Name, Color: c.Color, CreatedAt: c.CreatedAt})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var payload categoryPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if payload.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	category := &domain.Category{
		ID:    uuid.New(),
		Name:  payload.Name,
		Color: payload.Color,
	}
	if err := s.repos.Categories.Save(r.Context(), category); err != nil {
		writeStorageError(s.log, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, categoryResponse{
		ID: category.ID, Name: category.Name, Color: category.Color, CreatedAt: category.CreatedAt,
	})
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	if err := s.repos.Categories.Delete(r.Context(), id); err != nil {
		writeStorageError(s.log, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
