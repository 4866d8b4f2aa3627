// Package server exposes the packer and the optimizer over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/piwi3910/CratePack/internal/config"
	"github.com/piwi3910/CratePack/internal/engine"
	"github.com/piwi3910/CratePack/internal/logging"
	"github.com/piwi3910/CratePack/internal/model"
)

// maxBodyBytes caps the size of a decoded request body.
const maxBodyBytes = 10 << 20

var (
	errJobNotFound = errors.New("job not found")
	errTooManyJobs = errors.New("too many running jobs")
	errNoContainer = errors.New("container or preset is required")
)

// Server handles the packing API and tracks background optimizations.
type Server struct {
	cfg       *config.Config
	logger    *zap.Logger
	inventory model.Inventory
	defaults  model.Settings

	jobsMu sync.RWMutex
	jobs   map[string]*Job
}

// New creates a server using the optimizer defaults from cfg and the
// container presets of inv.
func New(cfg *config.Config, logger *zap.Logger, inv model.Inventory) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	defaults, err := cfg.Settings()
	if err != nil {
		return nil, err
	}
	return &Server{
		cfg:       cfg,
		logger:    logger,
		inventory: inv,
		defaults:  defaults,
		jobs:      make(map[string]*Job),
	}, nil
}

// Router builds the HTTP handler with middleware, health and metrics
// endpoints and the API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.Middleware(s.logger))
	r.Use(middleware.Recoverer)
	if s.cfg.HTTP.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.cfg.HTTP.RequestTimeout))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	s.RegisterRoutes(r)
	return r
}

// RegisterRoutes mounts the API under /api/v1.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/strategies", s.handleStrategies)
		r.Get("/containers", s.handleContainers)
		r.Post("/pack", s.handlePack)
		r.Post("/optimize", s.handleOptimize)
		r.Get("/jobs", s.handleListJobs)
		r.Get("/jobs/{id}", s.handleGetJob)
		r.Delete("/jobs/{id}", s.handleDeleteJob)
	})
}

// Close cancels every running job.
func (s *Server) Close() {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()
	for _, j := range s.jobs {
		if j.cancel != nil {
			j.cancel()
		}
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err to a status code and writes it as JSON.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, engine.ErrNoBoxes),
		errors.Is(err, engine.ErrInvalidConfig),
		errors.Is(err, errNoContainer),
		errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, errJobNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errTooManyJobs):
		status = http.StatusTooManyRequests
	}

	if status >= http.StatusInternalServerError {
		logging.FromContext(r.Context()).Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
