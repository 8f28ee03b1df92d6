package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/workloadhq/insights/internal/infra/storage/resilience"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// writeStorageError translates storage failures into responses. Exhausted
// retries mean the database is unreachable, so the caller gets a 503 rather
// than a 500. Connection detail stays out of the response body.
func writeStorageError(log *slog.Logger, w http.ResponseWriter, err error) {
	var exhausted *resilience.ExhaustedError
	if errors.As(err, &exhausted) {
		log.Error("database unavailable after retries", "attempts", exhausted.Attempts, "error", err)
		writeError(w, http.StatusServiceUnavailable, "service temporarily unavailable")
		return
	}

	log.Error("storage operation failed", "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}
