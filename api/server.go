// Package api - thin HTTP layer over the registry and the calculators.
// Handlers are only responsible for input parsing, orchestration, and
// output serialization; no cost or classification logic lives here.
package api

import (
	"encoding/json"
	"net/http"

	"datacore/core/rates"
	"datacore/db"
	"datacore/internal/errors"
)

// Server is the API server
type Server struct {
	mux     *http.ServeMux
	version string

	snapshot *rates.Snapshot

	projects   *db.ProjectStore
	billing    *db.BillingStore
	governance *db.GovernanceStore
	logs       *db.LogStore

	baselineCPU int
}

// Option configures the server
type Option func(*Server)

// WithBaselineCPU overrides the billing baseline CPU count
func WithBaselineCPU(n int) Option {
	return func(s *Server) { s.baselineCPU = n }
}

// NewServer wires the API over a database and a sealed rate snapshot
func NewServer(version string, database *db.DB, snapshot *rates.Snapshot, opts ...Option) *Server {
	s := &Server{
		mux:         http.NewServeMux(),
		version:     version,
		snapshot:    snapshot,
		projects:    db.NewProjectStore(database),
		billing:     db.NewBillingStore(database),
		governance:  db.NewGovernanceStore(database),
		logs:        db.NewLogStore(database),
		baselineCPU: 4,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.registerRoutes()
	return s
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	// Core endpoints
	s.mux.HandleFunc("POST /billing/run", s.handleBillingRun)
	s.mux.HandleFunc("GET /billing/records", s.handleBillingRecords)
	s.mux.HandleFunc("GET /finances", s.handleFinances)
	s.mux.HandleFunc("GET /governance/attention", s.handleAttention)

	// Registry endpoints
	s.mux.HandleFunc("GET /projects", s.handleListProjects)
	s.mux.HandleFunc("GET /projects/{id}", s.handleGetProject)
	s.mux.HandleFunc("POST /projects", s.handleCreateProject)
	s.mux.HandleFunc("GET /transfers", s.handleListTransfers)
	s.mux.HandleFunc("POST /transfers", s.handleCreateTransfer)
	s.mux.HandleFunc("GET /projects/{id}/migrations", s.handleListMigrations)
	s.mux.HandleFunc("POST /migrations", s.handleCreateMigration)

	// Supporting endpoints
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /version", s.handleVersion)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, HealthResponse{Status: "ok"}, http.StatusOK)
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	resp := VersionResponse{Version: s.version}
	if s.snapshot != nil {
		resp.SnapshotHash = s.snapshot.ContentHash()
	}
	s.writeJSON(w, resp, http.StatusOK)
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, v interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response
func (s *Server) writeError(w http.ResponseWriter, code, message string, status int) {
	s.writeJSON(w, ErrorResponse{Code: code, Message: message}, status)
}

// writeDomainError maps typed domain errors onto HTTP statuses
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	if e, ok := err.(*errors.Error); ok {
		status := http.StatusInternalServerError
		switch e.Type {
		case errors.TypeNotFound:
			status = http.StatusNotFound
		case errors.TypeInput:
			status = http.StatusBadRequest
		}
		s.writeError(w, string(e.Type), e.Message, status)
		return
	}
	s.writeError(w, string(errors.TypeInternal), err.Error(), http.StatusInternalServerError)
}
