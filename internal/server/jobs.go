package server

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/piwi3910/CratePack/internal/engine"
	"github.com/piwi3910/CratePack/internal/model"
)

// JobStatus is the lifecycle state of an optimization job.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
	JobCancelled JobStatus = "cancelled"
)

// Finished reports whether the job can no longer change.
func (s JobStatus) Finished() bool {
	return s == JobCompleted || s == JobFailed || s == JobCancelled
}

var (
	jobsRunning = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "cratepack",
		Name:      "jobs_running",
		Help:      "Optimization jobs currently running.",
	})

	jobsFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cratepack",
		Name:      "jobs_finished_total",
		Help:      "Optimization jobs by final status.",
	}, []string{"status"})
)

// GenerationSummary is the fitness of one generation as reported to clients.
type GenerationSummary struct {
	Generation int     `json:"generation"`
	Best       float64 `json:"best"`
	Mean       float64 `json:"mean"`
}

// Job is a background optimization and its progress.
type Job struct {
	ID          string              `json:"id"`
	Status      JobStatus           `json:"status"`
	Strategy    model.Strategy      `json:"strategy"`
	Objective   string              `json:"objective"`
	Generation  int                 `json:"generation"`
	Generations int                 `json:"generations"`
	Boxes       int                 `json:"boxes"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	FinishedAt  *time.Time          `json:"finished_at,omitempty"`
	Best        *engine.Solution    `json:"best,omitempty"`
	History     []GenerationSummary `json:"history"`
	Error       string              `json:"error,omitempty"`

	objective engine.Objective
	cancel    context.CancelFunc
}

// snapshot copies the job for encoding. The caller holds jobsMu.
func (j *Job) snapshot() Job {
	c := *j
	c.History = append([]GenerationSummary(nil), j.History...)
	c.cancel = nil
	return c
}

// finite maps non-finite scores to zero so they can be encoded as JSON.
func finite(v float64) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return v
}

func (s *Server) runningJobs() int {
	n := 0
	for _, j := range s.jobs {
		if !j.Status.Finished() {
			n++
		}
	}
	return n
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	req, boxes, err := s.decodePackRequest(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	settings := req.Settings
	if settings.Generations < 1 {
		writeError(w, r, fmt.Errorf("%w: generations must be at least 1", engine.ErrInvalidConfig))
		return
	}

	id := uuid.New().String()
	logger := s.logger.With(zap.String("job_id", id))

	factory, err := engine.NewSolverFactory(settings.Strategy, logger)
	if err != nil {
		writeError(w, r, err)
		return
	}
	solverCfg := engine.NewSolverConfig(req.Container, settings)
	if err := solverCfg.Validate(); err != nil {
		writeError(w, r, err)
		return
	}
	gcfg := engine.GeneticConfigFromSettings(settings)
	if s.cfg.Optimizer.EvalTimeout > 0 {
		gcfg.ShutdownTimeout = s.cfg.Optimizer.EvalTimeout
	}
	if err := gcfg.Validate(); err != nil {
		writeError(w, r, err)
		return
	}

	opt := engine.NewOptimizer(factory, solverCfg, gcfg, engine.WithLogger(logger))
	if err := opt.Init(boxes); err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	now := time.Now()
	job := &Job{
		ID:          id,
		Status:      JobPending,
		Strategy:    settings.Strategy,
		Objective:   opt.Objective().String(),
		Generations: settings.Generations,
		Boxes:       len(boxes),
		CreatedAt:   now,
		UpdatedAt:   now,
		History:     []GenerationSummary{},
		objective:   opt.Objective(),
		cancel:      cancel,
	}

	s.jobsMu.Lock()
	if s.runningJobs() >= s.cfg.Optimizer.MaxJobs {
		s.jobsMu.Unlock()
		cancel()
		writeError(w, r, fmt.Errorf("%w: limit is %d", errTooManyJobs, s.cfg.Optimizer.MaxJobs))
		return
	}
	s.jobs[id] = job
	resp := job.snapshot()
	s.jobsMu.Unlock()

	jobsRunning.Inc()
	go s.runJob(ctx, job, opt, logger)

	logger.Info("optimization started",
		zap.String("strategy", string(settings.Strategy)),
		zap.Int("boxes", len(boxes)),
		zap.Int("generations", settings.Generations))

	w.Header().Set("Location", "/api/v1/jobs/"+id)
	writeJSON(w, http.StatusAccepted, resp)
}

// runJob steps the optimizer until it finishes or ctx is cancelled,
// publishing every generation to the job.
func (s *Server) runJob(ctx context.Context, job *Job, opt *engine.Optimizer, logger *zap.Logger) {
	defer jobsRunning.Dec()

	s.jobsMu.Lock()
	job.Status = JobRunning
	job.UpdatedAt = time.Now()
	n := job.Generations
	s.jobsMu.Unlock()

	best, err := opt.Run(ctx, n, func(sol engine.Solution) {
		s.jobsMu.Lock()
		defer s.jobsMu.Unlock()
		job.Generation = sol.Generation + 1
		job.UpdatedAt = time.Now()
		job.History = append(job.History, GenerationSummary{
			Generation: sol.Generation,
			Best:       finite(sol.Fitness),
			Mean:       finite(sol.Stats.Mean),
		})
		if math.IsInf(sol.Fitness, 0) || math.IsNaN(sol.Fitness) {
			return
		}
		if job.Best == nil || job.objective.Better(sol.Fitness, job.Best.Fitness) {
			b := sol
			job.Best = &b
		}
	})

	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()
	now := time.Now()
	job.UpdatedAt = now
	job.FinishedAt = &now
	switch {
	case ctx.Err() != nil:
		job.Status = JobCancelled
		logger.Info("optimization cancelled", zap.Int("generation", job.Generation))
	case err != nil:
		job.Status = JobFailed
		job.Error = err.Error()
		logger.Error("optimization failed", zap.Error(err))
	default:
		job.Status = JobCompleted
		if !math.IsInf(best.Fitness, 0) && !math.IsNaN(best.Fitness) {
			job.Best = &best
		}
		logger.Info("optimization completed",
			zap.Float64("fitness", best.Fitness),
			zap.Int("bins", len(best.Result.Bins)))
	}
	jobsFinished.WithLabelValues(string(job.Status)).Inc()
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	s.jobsMu.RLock()
	jobs := make([]Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		c := j.snapshot()
		// The listing leaves out the packings
		c.Best = nil
		jobs = append(jobs, c)
	}
	s.jobsMu.RUnlock()

	sort.Slice(jobs, func(a, b int) bool { return jobs[a].CreatedAt.Before(jobs[b].CreatedAt) })
	writeJSON(w, http.StatusOK, jobs)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.jobsMu.RLock()
	job, ok := s.jobs[id]
	var resp Job
	if ok {
		resp = job.snapshot()
	}
	s.jobsMu.RUnlock()

	if !ok {
		writeError(w, r, fmt.Errorf("%w: %s", errJobNotFound, id))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleDeleteJob cancels a running job, or forgets a finished one.
func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.jobsMu.Lock()
	job, ok := s.jobs[id]
	if !ok {
		s.jobsMu.Unlock()
		writeError(w, r, fmt.Errorf("%w: %s", errJobNotFound, id))
		return
	}
	if job.Status.Finished() {
		delete(s.jobs, id)
		s.jobsMu.Unlock()
		w.WriteHeader(http.StatusNoContent)
		return
	}
	job.cancel()
	resp := job.snapshot()
	s.jobsMu.Unlock()

	writeJSON(w, http.StatusAccepted, resp)
}
