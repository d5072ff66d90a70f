package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/memoire/internal/config"
	"github.com/dgallion1/memoire/internal/llm"
	"github.com/dgallion1/memoire/internal/pipeline"
	"github.com/dgallion1/memoire/internal/project"
	"github.com/dgallion1/memoire/internal/search"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for memoire.
type Server struct {
	router       chi.Router
	repo         *project.Repository
	orchestrator *pipeline.Orchestrator
	index        *search.Index
	claude       *llm.Client
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. index and claude may be
// nil; the endpoints that need them then answer 503.
func NewServer(repo *project.Repository, orch *pipeline.Orchestrator, index *search.Index, claude *llm.Client, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		repo:         repo,
		orchestrator: orch,
		index:        index,
		claude:       claude,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.MemoireAPIKey, s.log))

		r.Post("/api/outline/parse", s.handleParseOutline)
		r.Post("/api/outline/import", s.handleImportOutline)
		r.Post("/api/outline/generate", s.handleGenerateOutline)

		r.Route("/api/projects", func(r chi.Router) {
			r.Post("/", s.handleCreateProject)
			r.Get("/", s.handleListProjects)

			r.Route("/{projectID}", func(r chi.Router) {
				r.Get("/", s.handleGetProject)
				r.Delete("/", s.handleDeleteProject)
				r.Put("/outline", s.handleReplaceOutline)

				r.Post("/chapters", s.handleAddChapter)
				r.Patch("/chapters/{chapterID}", s.handleRenameChapter)
				r.Delete("/chapters/{chapterID}", s.handleDeleteChapter)
				r.Post("/chapters/{chapterID}/sections", s.handleAddSection)
				r.Patch("/chapters/{chapterID}/sections/{sectionID}", s.handleUpdateSection)
				r.Delete("/chapters/{chapterID}/sections/{sectionID}", s.handleDeleteSection)

				r.Post("/draft", s.handleDraft)
				r.Get("/search", s.handleSearch)
				r.Get("/export", s.handleExport)
			})
		})

		r.Get("/api/jobs/{jobID}", s.handleJobStatus)
		r.Post("/api/assist/{tool}", s.handleAssist)
		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
