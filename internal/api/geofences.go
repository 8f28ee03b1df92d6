package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/workloadhq/insights/internal/core/domain"
)

type geofencePayload struct {
	Name         string  `json:"name"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	RadiusMeters float64 `json:"radius_meters"`
}

type geofenceResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	RadiusMeters float64   `json:"radius_meters"`
	CreatedAt    time.Time `json:"created_at"`
}

func (s *Server) handleListGeofences(w http.ResponseWriter, r *http.Request) {
	fences, err := s.repos.Geofences.List(r.Context())
	if err != nil {
		writeStorageError(s.log, w, err)
		return
	}

	out := make([]geofenceResponse, 0, len(fences))
	for _, f := range fences {
		out = append(out, geofenceResponse{
			ID: f.ID, Name: f.Name, Latitude: f.Latitude,
			Longitude: f.Longitude, RadiusMeters: f.RadiusMeters, CreatedAt: f.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateGeofence(w http.ResponseWriter, r *http.Request) {
	var payload geofencePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if payload.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if payload.Latitude < -90 || payload.Latitude > 90 ||
		payload.Longitude < -180 || payload.Longitude > 180 {
		writeError(w, http.StatusBadRequest, "invalid coordinates")
		return
	}
	if payload.RadiusMeters <= 0 {
		writeError(w, http.StatusBadRequest, "radius_meters must be positive")
		return
	}

	fence := &domain.Geofence{
		ID:           uuid.New(),
		Name:         payload.Name,
		Latitude:     payload.Latitude,
		Longitude:    payload.Longitude,
		RadiusMeters: payload.RadiusMeters,
	}
	if err := s.repos.Geofences.Save(r.Context(), fence); err != nil {
		writeStorageError(s.log, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, geofenceResponse{
		ID: fence.ID, Name: fence.Name, Latitude: fence.Latitude,
		Longitude: fence.Longitude, RadiusMeters: fence.RadiusMeters, CreatedAt: fence.CreatedAt,
	})
}

func (s *Server) handleDeleteGeofence(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid geofence id")
		return
	}

	if err := s.repos.Geofences.Delete(r.Context(), id); err != nil {
		writeStorageError(s.log, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
