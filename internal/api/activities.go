package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/workloadhq/insights/internal/core/domain"
)

type activityPayload struct {
	UserID      uuid.UUID  `json:"user_id"`
	CategoryID  uuid.UUID  `json:"category_id"`
	Description string     `json:"description"`
	GeofenceID  *uuid.UUID `json:"geofence_id,omitempty"`
	OccurredAt  *time.Time `json:"occurred_at,omitempty"`
}

type activityResponse struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	CategoryID  uuid.UUID  `json:"category_id"`
	Description string     `json:"description"`
	Source      string     `json:"source"`
	GeofenceID  *uuid.UUID `json:"geofence_id,omitempty"`
	OccurredAt  time.Time  `json:"occurred_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toActivityResponse(a *domain.Activity) activityResponse {
	return activityResponse{
		ID:          a.ID,
		UserID:      a.UserID,
		CategoryID:  a.CategoryID,
		Description: a.Description,
		Source:      string(a.Source),
		GeofenceID:  a.GeofenceID,
		OccurredAt:  a.OccurredAt,
		CreatedAt:   a.CreatedAt,
	}
}

// handleListActivities serves either a user's window (user_id, from, to) or
// the most recent activities overall (limit, default 50).
func (s *Server) handleListActivities(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if rawUser := q.Get("user_id"); rawUser != "" {
		userID, err := uuid.Parse(rawUser)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid user_id")
			return
		}
		from, to, err := parseWindow(q.Get("from"), q.Get("to"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		activities, err := s.repos.Activities.ListByUser(r.Context(), userID, from, to)
		if err != nil {
			writeStorageError(s.log, w, err)
			return
		}
		writeJSON(w, http.StatusOK, toActivityResponses(activities))
		return
	}

	limit := 50
	if rawLimit := q.Get("limit"); rawLimit != "" {
		n, err := strconv.Atoi(rawLimit)
		if err != nil || n < 1 || n > 500 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	activities, err := s.repos.Activities.ListRecent(r.Context(), limit)
	if err != nil {
		writeStorageError(s.log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, toActivityResponses(activities))
}

func (s *Server) handleCreateActivity(w http.ResponseWriter, r *http.Request) {
	var payload activityPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if payload.UserID == uuid.Nil || payload.CategoryID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "user_id and category_id are required")
		return
	}

	occurredAt := time.Now().UTC()
	if payload.OccurredAt != nil {
		occurredAt = *payload.OccurredAt
	}
	activity := &domain.Activity{
		ID:          uuid.New(),
		UserID:      payload.UserID,
		CategoryID:  payload.CategoryID,
		Description: payload.Description,
		Source:      domain.ActivitySourceDashboard,
		GeofenceID:  payload.GeofenceID,
		OccurredAt:  occurredAt,
	}
	if err := s.repos.Activities.Save(r.Context(), activity); err != nil {
		writeStorageError(s.log, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toActivityResponse(activity))
}

func (s *Server) handleGetActivity(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid activity id")
		return
	}

	activity, err := s.repos.Activities.GetByID(r.Context(), id)
	if err != nil {
		writeStorageError(s.log, w, err)
		return
	}
	if activity == nil {
		writeError(w, http.StatusNotFound, "activity not found")
		return
	}
	writeJSON(w, http.StatusOK, toActivityResponse(activity))
}

func (s *Server) handleDeleteActivity(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid activity id")
		return
	}

	if err := s.repos.Activities.Delete(r.Context(), id); err != nil {
		writeStorageError(s.log, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toActivityResponses(activities []*domain.Activity) []activityResponse {
	out := make([]activityResponse, 0, len(activities))
	for _, a := range activities {
		out = append(out, toActivityResponse(a))
	}
	return out
}
