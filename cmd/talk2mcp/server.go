package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spetersoncode/talk2mcp/agent"
	"github.com/spetersoncode/talk2mcp/plan"
	"github.com/spetersoncode/talk2mcp/store"
)

// Runner runs a plan to termination. *agent.Agent implements it.
type Runner interface {
	Run(ctx context.Context, p *plan.Plan) (*agent.Result, error)
}

// Server exposes runs and their reports over HTTP.
type Server struct {
	runner   Runner
	plan     *plan.Plan
	reports  *store.Collection[agent.Result]
	gatherer prometheus.Gatherer
	logger   *slog.Logger

	// Runs share one tool session, and the reference tools keep state, so
	// only one run executes at a time.
	mu sync.Mutex
}

// RunRequest is the body of POST /runs.
type RunRequest struct {
	Query string `json:"query,omitempty"`
}

// NewServer creates a server that runs p with runner.
func NewServer(runner Runner, p *plan.Plan, reports *store.Collection[agent.Result], gatherer prometheus.Gatherer, logger *slog.Logger) *Server {
	return &Server{
		runner:   runner,
		plan:     p,
		reports:  reports,
		gatherer: gatherer,
		logger:   logger,
	}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", healthHandler)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/runs", func(r chi.Router) {
		r.Post("/", s.createRun)
		r.Get("/", s.listRuns)
		r.Get("/{id}", s.getRun)
	})
	return r
}

// createRun handles POST /runs.
func (s *Server) createRun(w http.ResponseWriter, r *http.Request) {
	var body RunRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	p := s.plan
	if body.Query != "" {
		p = p.WithQuery(body.Query)
	}

	log := s.logger.With("request_id", middleware.GetReqID(r.Context()))

	s.mu.Lock()
	res, err := s.runner.Run(r.Context(), p)
	s.mu.Unlock()
	if err != nil {
		log.Warn("run rejected", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	log.Info("run finished",
		"task_id", res.TaskID,
		"termination", res.Termination,
		"iterations", res.Iterations,
	)

	if err := s.reports.Save(context.WithoutCancel(r.Context()), res.TaskID, *res); err != nil {
		log.Error("failed to save report", "task_id", res.TaskID, "error", err)
		http.Error(w, "failed to save report", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, res, log)
}

// listRuns handles GET /runs.
func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	results, err := s.reports.List(r.Context())
	if err != nil {
		s.logger.Error("failed to list reports", "error", err)
		http.Error(w, "failed to list reports", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, results, s.logger)
}

// getRun handles GET /runs/{id}.
func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	res, err := s.reports.Load(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.logger.Error("failed to load report", "task_id", id, "error", err)
		http.Error(w, "failed to load report", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, res, s.logger)
}

func writeJSON(w http.ResponseWriter, status int, v any, log *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode response", "error", err)
	}
}

// healthHandler returns a simple health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
