// Package devapi is a self-contained implementation of the events API backed
// by SQLite. It is used for local development and end-to-end tests of the
// client.
package devapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/volunteermap/internal/auth"
	"github.com/mmynk/volunteermap/internal/metrics"
	"github.com/mmynk/volunteermap/internal/middleware"
	"github.com/mmynk/volunteermap/internal/storage"
)

// Error codes sent in the JSON body of 4xx responses.
const (
	CodeAlreadyVolunteered = "already_volunteered"
	CodeTeamFull           = "team_full"
	CodeEmailExists        = "email_exists"
	CodeEventExists        = "event_exists"
	CodeForbidden          = "forbidden"
	CodeInvalidRequest     = "invalid_request"
	CodeNotFound           = "not_found"
	CodeUnauthenticated    = middleware.CodeUnauthenticated
	CodeInternal           = "internal"
)

// Options configures a Server.
type Options struct {
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	// Gatherer backs /metrics. Defaults to prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
}

// Server serves the events API.
type Server struct {
	store         storage.Store
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	logger        *slog.Logger
	metrics       *metrics.Metrics
	gatherer      prometheus.Gatherer

	// writeMu serializes event writes so roster checks and updates are atomic.
	writeMu sync.Mutex
}

// NewServer creates a Server.
func NewServer(store storage.Store, authenticator auth.Authenticator, jwtManager *auth.JWTManager, opts Options) *Server {
	s := &Server{
		store:         store,
		authenticator: authenticator,
		jwtManager:    jwtManager,
		logger:        opts.Logger,
		metrics:       opts.Metrics,
		gatherer:      opts.Gatherer,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.metrics == nil {
		s.metrics = metrics.Discard()
	}
	if s.gatherer == nil {
		s.gatherer = prometheus.DefaultGatherer
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.Use(middleware.Logging(s.logger, s.metrics))

	router.HandleFunc("/events", s.listEvents).Methods(http.MethodGet)
	router.HandleFunc("/events/{id}", s.getEvent).Methods(http.MethodGet)
	router.HandleFunc("/users", s.listUsers).Methods(http.MethodGet)
	router.HandleFunc("/users", s.register).Methods(http.MethodPost)
	router.HandleFunc("/auth", s.authenticate).Methods(http.MethodPost)
	router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	requireAuth := middleware.RequireAuth(s.jwtManager)
	router.Handle("/events", requireAuth(http.HandlerFunc(s.createEvent))).Methods(http.MethodPost)
	router.Handle("/events/{id}", requireAuth(http.HandlerFunc(s.updateEvent))).Methods(http.MethodPut)

	return router
}

// errorResponse is the JSON body of every error response.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, code, message string) {
	s.writeJSON(w, status, errorResponse{Error: message, Code: code})
}

// internalError logs err and hides it from the caller.
func (s *Server) internalError(w http.ResponseWriter, msg string, err error) {
	s.logger.Error(msg, "error", err)
	s.writeError(w, http.StatusInternalServerError, CodeInternal, "Internal server error")
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
