// Package api exposes the edge pipeline over HTTP.
//
// The server wraps a pipeline.Runner behind a small JSON API: clients POST a
// diagram plus pipeline options and receive the combined stage results. The
// router is chi with request logging and panic recovery middleware.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/charmbracelet/log"

	"github.com/viralify/edgecraft/pkg/buildinfo"
	"github.com/viralify/edgecraft/pkg/diagram"
	ecerrors "github.com/viralify/edgecraft/pkg/errors"
	"github.com/viralify/edgecraft/pkg/pipeline"
)

// maxBodyBytes bounds request bodies to keep pathological diagrams out.
const maxBodyBytes = 16 << 20

// Server handles pipeline requests over HTTP.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
}

// New creates a server around the given runner. A nil logger falls back to
// log.Default().
func New(runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, logger: logger}
}

// Handler builds the HTTP routing tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/version", s.handleVersion)
	r.Post("/v1/pipeline", s.handlePipeline)

	return r
}

// pipelineRequest is the body of POST /v1/pipeline.
type pipelineRequest struct {
	Diagram *diagram.Diagram `json:"diagram"`
	Options pipeline.Options `json:"options"`
}

// errorResponse is the JSON body for failed requests.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeResponse(w, http.StatusOK, map[string]any{"ok": true, "service": "edgecraft"})
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeResponse(w, http.StatusOK, map[string]string{
		"version": buildinfo.Version,
		"commit":  buildinfo.Commit,
		"built":   buildinfo.Date,
	})
}

func (s *Server) handlePipeline(w http.ResponseWriter, r *http.Request) {
	var req pipelineRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Diagram == nil {
		writeResponse(w, http.StatusBadRequest, errorResponse{Error: "missing diagram"})
		return
	}

	ctx := log.WithContext(r.Context(), s.logger)
	result, err := s.runner.Execute(ctx, req.Diagram, req.Options)
	if err != nil {
		status := http.StatusInternalServerError
		switch ecerrors.GetCode(err) {
		case "", ecerrors.ErrCodeInternal:
		default:
			status = http.StatusUnprocessableEntity
		}
		s.logger.Error("pipeline request failed", "err", err)
		writeError(w, status, err)
		return
	}

	writeResponse(w, http.StatusOK, result)
}

func writeError(w http.ResponseWriter, status int, err error) {
	resp := errorResponse{Error: err.Error(), Code: string(ecerrors.GetCode(err))}
	writeResponse(w, status, resp)
}

func writeResponse(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
