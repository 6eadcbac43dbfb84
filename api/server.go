package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"polypath/app"
	apperrors "polypath/internal/errors"
	"polypath/ports"
)

// Server is the HTTP application: a chi router over the roadmap services.
type Server struct {
	router    *chi.Mux
	draft     *app.DraftService
	realize   *app.RealizationService
	jobSearch *app.JobSearchService
	resume    *app.ResumeService
	roadmaps  ports.RoadmapRepository
	sandbox   ports.SandboxProvider
}

// Config holds server configuration
type Config struct {
	Port string
}

// NewServer creates the HTTP server with all routes wired.
func NewServer(draft *app.DraftService, realize *app.RealizationService, jobSearch *app.JobSearchService, resume *app.ResumeService, roadmaps ports.RoadmapRepository, sandbox ports.SandboxProvider) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		draft:     draft,
		realize:   realize,
		jobSearch: jobSearch,
		resume:    resume,
		roadmaps:  roadmaps,
		sandbox:   sandbox,
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures HTTP middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Post("/api/draft", s.handleDraft)
	s.router.Post("/api/realize", s.handleRealize)
	s.router.Post("/api/refine", s.handleRefine)
	s.router.Post("/api/roadmaps/{id}/select-agent", s.handleSelectAgent)
	s.router.Post("/api/roadmaps/{id}/jobs", s.handleRoadmapJobs)
	s.router.Post("/api/execute", s.handleExecute)
	s.router.Post("/api/jobs/search", s.handleJobSearch)
	s.router.Post("/api/resume/upload", s.handleResumeUpload)
	s.router.Post("/api/resume/generate", s.handleResumeGenerate)

	s.router.Get("/api/roadmaps/{id}", s.handleGetRoadmap)
	s.router.Get("/api/my-roadmaps", s.handleListRoadmaps)
}

// Router exposes the mux for serving and for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start blocks serving HTTP on the configured port.
func (s *Server) Start(cfg Config) error {
	addr := ":" + cfg.Port
	log.Printf("[Server] listening on %s", addr)
	return http.ListenAndServe(addr, s.router)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[Server] encode response: %v", err)
	}
}

// writeError maps the application error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch apperrors.GetCode(err) {
	case apperrors.CodeValidationError:
		status = http.StatusBadRequest
	case apperrors.CodeNotFound:
		status = http.StatusNotFound
	case apperrors.CodeConfigInvalid:
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
