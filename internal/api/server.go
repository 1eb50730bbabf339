package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/openbandi/grantdocs/internal/pipeline"
	"github.com/openbandi/grantdocs/internal/store"
)

type Server struct {
	router   *chi.Mux
	store    *store.Store
	pipeline *pipeline.Pipeline
}

func NewServer(store *store.Store, pipe *pipeline.Pipeline) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		store:    store,
		pipeline: pipe,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	s.router.Get("/health", s.handleHealth)
	s.router.Get("/stats", s.handleStats)
	s.router.Get("/grants", s.handleListGrants)
	s.router.Get("/grants/{id}/documentation", s.handleGetDocumentation)
	s.router.Post("/grants/{id}/refresh", s.handleRefreshGrant)
}

func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
