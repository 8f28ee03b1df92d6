package api

import (
	"errors"
	"net/http"
	"time"
)

// parseWindow parses RFC 3339 from/to bounds. An empty window defaults to
// the trailing 7 days, which is what the dashboard's landing view shows.
func parseWindow(rawFrom, rawTo string) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -7)
	to := now

	if rawFrom != "" {
		t, err := time.Parse(time.RFC3339, rawFrom)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("from must be RFC 3339")
		}
		from = t
	}
	if rawTo != "" {
		t, err := time.Parse(time.RFC3339, rawTo)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("to must be RFC 3339")
		}
		to = t
	}
	if !from.Before(to) {
		return time.Time{}, time.Time{}, errors.New("from must be before to")
	}
	return from, to, nil
}

func (s *Server) handleWorkloadReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to, err := parseWindow(q.Get("from"), q.Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := s.repos.Reports.Workload(r.Context(), from, to)
	if err != nil {
		writeStorageError(s.log, w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"from":    from,
		"to":      to,
		"entries": entries,
	})
}
