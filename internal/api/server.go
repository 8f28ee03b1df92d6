// Package api exposes the dashboard's HTTP surface: health, the Twilio
// webhook, CRUD for the admin resources, and the workload report.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/workloadhq/insights/internal/infra/storage"
	"github.com/workloadhq/insights/internal/insights/health"
	"github.com/workloadhq/insights/internal/insights/metrics"
)

// Deduper remembers webhook deliveries (redis-backed in production).
type Deduper interface {
	MarkDelivery(ctx context.Context, sid string, ttl time.Duration) (bool, error)
	ClearDelivery(ctx context.Context, sid string) error
}

// AckSender sends the WhatsApp acknowledgment for a recorded message.
type AckSender interface {
	SendWhatsApp(ctx context.Context, to, body string) error
}

// WebhookOptions control the Twilio webhook receiver.
type WebhookOptions struct {
	DedupTTL time.Duration
	AutoAck  bool
}

// Repos bundles the storage dependencies the handlers need.
type Repos struct {
	Users        storage.UserRepository
	Activities   storage.ActivityRepository
	Categories   storage.CategoryRepository
	Geofences    storage.GeofenceRepository
	LLMProviders storage.LLMProviderRepository
	Messages     storage.MessageRepository
	Reports      storage.ReportRepository
}

// Server provides the HTTP endpoints of the dashboard backend.
type Server struct {
	log     *slog.Logger
	repos   Repos
	monitor *health.Monitor
	dedup   Deduper   // nil disables dedup
	sender  AckSender // nil disables acknowledgments
	webhook WebhookOptions
	server  *http.Server
}

// NewServer creates a new API server listening on the given port.
func NewServer(
	log *slog.Logger,
	port int,
	repos Repos,
	monitor *health.Monitor,
	dedup Deduper,
	sender AckSender,
	webhook WebhookOptions,
) *Server {
	mux := http.NewServeMux()
	s := &Server{
		log:     log,
		repos:   repos,
		monitor: monitor,
		dedup:   dedup,
		sender:  sender,
		webhook: webhook,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           instrument(mux),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}

	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/webhook/twilio", s.handleTwilioWebhook)

	mux.HandleFunc("GET /api/users", s.handleListUsers)
	mux.HandleFunc("POST /api/users", s.handleCreateUser)
	mux.HandleFunc("GET /api/users/{id}", s.handleGetUser)
	mux.HandleFunc("PUT /api/users/{id}", s.handleUpdateUser)
	mux.HandleFunc("DELETE /api/users/{id}", s.handleDeleteUser)

	mux.HandleFunc("GET /api/activities", s.handleListActivities)
	mux.HandleFunc("POST /api/activities", s.handleCreateActivity)
	mux.HandleFunc("GET /api/activities/{id}", s.handleGetActivity)
	mux.HandleFunc("DELETE /api/activities/{id}", s.handleDeleteActivity)

	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("POST /api/categories", s.handleCreateCategory)
	mux.HandleFunc("DELETE /api/categories/{id}", s.handleDeleteCategory)

	mux.HandleFunc("GET /api/geofences", s.handleListGeofences)
	mux.HandleFunc("POST /api/geofences", s.handleCreateGeofence)
	mux.HandleFunc("DELETE /api/geofences/{id}", s.handleDeleteGeofence)

	mux.HandleFunc("GET /api/llm-providers", s.handleListLLMProviders)
	mux.HandleFunc("POST /api/llm-providers", s.handleCreateLLMProvider)
	mux.HandleFunc("DELETE /api/llm-providers/{id}", s.handleDeleteLLMProvider)

	mux.HandleFunc("GET /api/reports/workload", s.handleWorkloadReport)

	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// instrument counts every request by its registered route pattern and the
// status code written.
func instrument(mux *http.ServeMux) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, route := mux.Handler(r)
		if route == "" {
			route = "unmatched"
		}
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		mux.ServeHTTP(sw, r)
		metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(sw.code)).Inc()
	})
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.monitor.Check(r.Context())

	code := http.StatusOK
	if report.SystemStatus == health.StatusCritical {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, report)
}
