package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/workloadhq/insights/internal/core/domain"
)

type llmProviderPayload struct {
	Name      string `json:"name"`
	Model     string `json:"model"`
	APIKeyEnv string `json:"api_key_env"`
	Enabled   *bool  `json:"enabled"`
}

type llmProviderResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Model     string    `json:"model"`
	APIKeyEnv string    `json:"api_key_env"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toLLMProviderResponse(p *domain.LLMProvider) llmProviderResponse {
	return llmProviderResponse{
		ID:        p.ID,
		Name:      p.Name,
		Model:     p.Model,
		APIKeyEnv: p.APIKeyEnv,
		Enabled:   p.Enabled,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (s *Server) handleListLLMProviders(w http.ResponseWriter, r *http.Request) {
	providers, err := s.repos.LLMProviders.List(r.Context())
	if err != nil {
		writeStorageError(s.log, w, err)
		return
	}

	out := make([]llmProviderResponse, 0, len(providers))
	for _, p := range providers {
		out = append(out, toLLMProviderResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateLLMProvider(w http.ResponseWriter, r *http.Request) {
	var payload llmProviderPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if payload.Name == "" || payload.Model == "" {
		writeError(w, http.StatusBadRequest, "name and model are required")
		return
	}

	enabled := true
	if payload.Enabled != nil {
		enabled = *payload.Enabled
	}
	provider := &domain.LLMProvider{
		ID:        uuid.New(),
		Name:      payload.Name,
		Model:     payload.Model,
		APIKeyEnv: payload.APIKeyEnv,
		Enabled:   enabled,
	}
	if err := s.repos.LLMProviders.Save(r.Context(), provider); err != nil {
		writeStorageError(s.log, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toLLMProviderResponse(provider))
}

func (s *Server) handleDeleteLLMProvider(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid provider id")
		return
	}

	if err := s.repos.LLMProviders.Delete(r.Context(), id); err != nil {
		writeStorageError(s.log, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
