package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"masrag/internal/config"
	"masrag/internal/pipeline"
	"masrag/internal/retrieve"
)

// Server is the HTTP API server for masrag.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	retriever    *retrieve.Retriever
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, ret *retrieve.Retriever, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		retriever:    ret,
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
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/ingest", s.handleIngest)
		r.Get("/api/ingest/{jobID}/status", s.handleIngestStatus)
		r.Post("/api/ingest/batch", s.handleBatchIngest)

		r.Post("/api/query", s.handleQuery)

		r.Get("/api/notices", s.handleListNotices)
		r.Get("/api/notices/{noticeID}/nodes", s.handleListNodes)
		r.Delete("/api/notices/{noticeID}", s.handleDeleteNotice)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
