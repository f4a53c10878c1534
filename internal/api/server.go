// Package api exposes the diagnostic engines over HTTP for CI systems that
// prefer posting manifests to running a binary.
package api

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/fixmyk8s/kubecuro/internal/logger"
	"github.com/fixmyk8s/kubecuro/internal/scanner"
	"github.com/fixmyk8s/kubecuro/internal/shield"
	"github.com/gorilla/mux"
)

// maxScanBody caps how much manifest text one request may post.
const maxScanBody = 4 << 20

// Server represents the API server
type Server struct {
	router  *mux.Router
	scanner *scanner.Scanner
}

// NewServer creates a new API server instance
func NewServer(s *scanner.Scanner) *Server {
	srv := &Server{
		router:  mux.NewRouter(),
		scanner: s,
	}
	srv.routes()
	return srv
}

// routes sets up the API routes
func (s *Server) routes() {
	s.router.HandleFunc("/api/v1/health", s.healthCheck).Methods("GET")
	s.router.HandleFunc("/api/v1/rules", s.listRules).Methods("GET")
	s.router.HandleFunc("/api/v1/scan", s.scan).Methods("POST")
}

// Handler exposes the router for testing.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the API server
func (s *Server) Start(addr string, timeout time.Duration) error {
	logger.Info().Msgf("starting server on %s", addr)
	server := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}
	return server.ListenAndServe()
}

// healthCheck handles the health check endpoint
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// listRules returns the deprecation table so clients can see what the
// scanner would rewrite.
func (s *Server) listRules(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"deprecations": shield.Deprecations(),
	})
}

// scan runs an in-memory, detection-only scan over the posted manifest text.
func (s *Server) scan(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxScanBody))
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}
	if len(body) == 0 {
		http.Error(w, "empty manifest body", http.StatusBadRequest)
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		name = "request"
	}

	report := s.scanner.ScanContent(body, name)
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error().Msgf("failed to encode response: %v", err)
	}
}
