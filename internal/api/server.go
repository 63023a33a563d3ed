// Package api exposes batch test configuration workflows over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/p-n-ai/pai-assess/internal/catalog"
	"github.com/p-n-ai/pai-assess/internal/events"
	"github.com/p-n-ai/pai-assess/internal/schedule"
)

const maxBodyBytes = 1 << 20

// Catalog is the class group and subject catalog the API serves from.
type Catalog interface {
	schedule.CatalogSource
	Groups() []catalog.ClassGroup
}

// Server routes workflow requests to the registry.
type Server struct {
	catalog   Catalog
	submitter schedule.Submitter
	events    events.Logger
	stream    http.Handler
	registry  *Registry
	validator *requestValidator
}

// Option configures a Server.
type Option func(*Server)

// WithEvents sets the logger every new workflow reports to.
func WithEvents(l events.Logger) Option {
	return func(s *Server) {
		s.events = l
	}
}

// WithEventStream mounts h at GET /ws/events.
func WithEventStream(h http.Handler) Option {
	return func(s *Server) {
		s.stream = h
	}
}

// WithRegistry shares a registry between servers, mainly for tests.
func WithRegistry(r *Registry) Option {
	return func(s *Server) {
		s.registry = r
	}
}

// NewServer creates an API server.
func NewServer(cat Catalog, sub schedule.Submitter, opts ...Option) *Server {
	s := &Server{
		catalog:   cat,
		submitter: sub,
		events:    events.NopLogger{},
		registry:  NewRegistry(),
		validator: newRequestValidator(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Registry returns the live workflows.
func (s *Server) Registry() *Registry {
	return s.registry
}

// Register adds the API routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/groups", s.handleListGroups)
	mux.HandleFunc("GET /v1/groups/{group}/subjects", s.handleGroupSubjects)

	mux.HandleFunc("POST /v1/workflows", s.handleCreateWorkflow)
	mux.HandleFunc("GET /v1/workflows/{id}", s.workflow(s.handleGetWorkflow))
	mux.HandleFunc("DELETE /v1/workflows/{id}", s.handleDeleteWorkflow)
	mux.HandleFunc("PUT /v1/workflows/{id}/group", s.workflow(s.handleSelectGroup))
	mux.HandleFunc("PUT /v1/workflows/{id}/kind", s.workflow(s.handleSetKind))
	mux.HandleFunc("POST /v1/workflows/{id}/transitions/{gate}/confirm", s.workflow(s.handleConfirm))
	mux.HandleFunc("POST /v1/workflows/{id}/transitions/{gate}/cancel", s.workflow(s.handleCancel))
	mux.HandleFunc("PUT /v1/workflows/{id}/tag", s.workflow(s.handleSetTag))
	mux.HandleFunc("POST /v1/workflows/{id}/classes/{class}/toggle", s.workflow(s.handleToggleClass))
	mux.HandleFunc("PUT /v1/workflows/{id}/classes/{class}/max-score", s.workflow(s.handleSetMaxScore))
	mux.HandleFunc("GET /v1/workflows/{id}/classes/{class}/subjects", s.workflow(s.handleClassSubjects))
	mux.HandleFunc("POST /v1/workflows/{id}/classes/{class}/rows", s.workflow(s.handleAddRow))
	mux.HandleFunc("DELETE /v1/workflows/{id}/classes/{class}/rows/{row}", s.workflow(s.handleRemoveRow))
	mux.HandleFunc("PATCH /v1/workflows/{id}/classes/{class}/rows/{row}", s.workflow(s.handleSetRowField))
	mux.HandleFunc("GET /v1/workflows/{id}/violations", s.workflow(s.handleViolations))
	mux.HandleFunc("POST /v1/workflows/{id}/review", s.workflow(s.handleReview))
	mux.HandleFunc("POST /v1/workflows/{id}/revise", s.workflow(s.handleRevise))
	mux.HandleFunc("POST /v1/workflows/{id}/submit", s.workflow(s.handleSubmit))

	if s.stream != nil {
		mux.Handle("GET /ws/events", s.stream)
	}
}

// Handler returns a mux serving only the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.Register(mux)
	return mux
}

type workflowHandler func(w http.ResponseWriter, r *http.Request, wf *schedule.Workflow)

// workflow resolves the {id} path value before calling next.
func (s *Server) workflow(next workflowHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		wf, ok := s.registry.Get(id)
		if !ok {
			writeError(w, fmt.Errorf("%s: %w", id, errWorkflowNotFound))
			return
		}
		next(w, r, wf)
	}
}

// decode reads a JSON body into v and validates it. It writes the error
// response itself and reports whether the handler should continue.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			writeBadRequest(w, "request body is required", nil)
			return false
		}
		writeBadRequest(w, fmt.Sprintf("invalid request body: %v", err), nil)
		return false
	}
	if fields := s.validator.check(v); fields != nil {
		writeBadRequest(w, "invalid request", fields)
		return false
	}
	return true
}

func pathInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(r.PathValue(name))
	if err != nil {
		writeBadRequest(w, fmt.Sprintf("%s must be a number", name), nil)
		return 0, false
	}
	return n, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write response", "error", err)
	}
}
