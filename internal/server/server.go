package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/checkam/scanverifier/internal/common"
	"github.com/checkam/scanverifier/internal/scan"
)

// Server exposes the scan pipeline as a JSON API for browser and mobile
// front ends. One session per scan attempt; the confirmation gate is an
// explicit endpoint, never skipped.
type Server struct {
	pipeline *scan.Pipeline
	registry *registry
	logger   *slog.Logger
	cfg      common.ServerConfig
}

func New(pipeline *scan.Pipeline, cfg common.ServerConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		pipeline: pipeline,
		registry: newRegistry(),
		logger:   logger,
		cfg:      cfg,
	}
}

// requestID stamps every request's context with a fresh request ID and
// echoes it back in the X-Request-ID header. Downstream calls, the verify
// client included, pick it up from the context for their log fields.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.New().String()
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(common.WithRequestID(r.Context(), id)))
	})
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.requestID)
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if _, err := fmt.Fprintln(w, "OK"); err != nil {
			s.logger.Warn("health write failed", "error", err)
		}
	}).Methods("GET")
	r.HandleFunc("/v1/capabilities", s.handleCapabilities).Methods("GET")
	r.HandleFunc("/v1/scans", s.handleCreateScan).Methods("POST")
	r.HandleFunc("/v1/scans/{id}", s.handleGetScan).Methods("GET")
	r.HandleFunc("/v1/scans/{id}/confirm", s.handleConfirm).Methods("POST")
	r.HandleFunc("/v1/scans/{id}/dismiss", s.handleDismiss).Methods("POST")
	return r
}
