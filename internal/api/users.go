package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/workloadhq/insights/internal/core/domain"
)

type userPayload struct {
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Role   string `json:"role"`
	Active *bool  `json:"active"`
}

type userResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Phone:     u.Phone,
		Role:      string(u.Role),
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func validUserRole(role string) bool {
	switch domain.UserRole(role) {
	case domain.UserRoleAdmin, domain.UserRoleManager, domain.UserRoleWorker:
		return true
	}
	return false
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.repos.Users.List(r.Context())
	if err != nil {
		writeStorageError(s.log, w, err)
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var payload userPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if payload.Name == "" || payload.Phone == "" {
		writeError(w, http.StatusBadRequest, "name and phone are required")
		return
	}
	if payload.Role == "" {
		payload.Role = string(domain.UserRoleWorker)
	}
	if !validUserRole(payload.Role) {
		writeError(w, http.StatusBadRequest, "unknown role")
		return
	}

	active := true
	if payload.Active != nil {
		active = *payload.Active
	}
	user := &domain.User{
		ID:     uuid.New(),
		Name:   payload.Name,
		Phone:  payload.Phone,
		Role:   domain.UserRole(payload.Role),
		Active: active,
	}
	if err := s.repos.Users.Save(r.Context(), user); err != nil {
		writeStorageError(s.log, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := s.repos.Users.GetByID(r.Context(), id)
	if err != nil {
		writeStorageError(s.log, w, err)
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := s.repos.Users.GetByID(r.Context(), id)
	if err != nil {
		writeStorageError(s.log, w, err)
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	var payload userPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if payload.Name != "" {
		user.Name = payload.Name
	}
	if payload.Phone != "" {
		user.Phone = payload.Phone
	}
	if payload.Role != "" {
		if !validUserRole(payload.Role) {
			writeError(w, http.StatusBadRequest, "unknown role")
			return
		}
		user.Role = domain.UserRole(payload.Role)
	}
	if payload.Active != nil {
		user.Active = *payload.Active
	}

	if err := s.repos.Users.Save(r.Context(), user); err != nil {
		writeStorageError(s.log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := s.repos.Users.Delete(r.Context(), id); err != nil {
		writeStorageError(s.log, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
