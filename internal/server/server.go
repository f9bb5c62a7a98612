// Package server is the daemon's HTTP surface: pose ingest and session
// control for the capture client, plus read-only history endpoints for
// dashboards and tooling.
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mobil80solutionsservices-ctrl/Posturely-sub001/internal/cue"
	"github.com/mobil80solutionsservices-ctrl/Posturely-sub001/internal/pose"
	"github.com/mobil80solutionsservices-ctrl/Posturely-sub001/internal/session"
	"github.com/mobil80solutionsservices-ctrl/Posturely-sub001/internal/storage"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	orch   *session.Orchestrator
	hub    *pose.Hub
	cues   *cue.Dispatcher
	db     *storage.DB
	log    *slog.Logger
	apiKey string
	router chi.Router
}

// New creates a new Server with all routes configured. db may be nil when
// persistence is disabled; the history endpoints then return 404.
func New(orch *session.Orchestrator, hub *pose.Hub, cues *cue.Dispatcher, db *storage.DB, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		orch:   orch,
		hub:    hub,
		cues:   cues,
		db:     db,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	// Capture-client endpoints (API key required)
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(APIKeyAuth(s.apiKey))
			r.Post("/pose", s.handlePoseFrame)
			r.Get("/cues/stream", s.handleCueStream)
			r.Post("/session/start", s.handleSessionStart)
			r.Post("/session/stop", s.handleSessionStop)
			r.Post("/session/pause", s.handleSessionPause)
			r.Post("/session/resume", s.handleSessionResume)
		})

		// Dashboard endpoints (no auth — tsnet handles access)
		r.Get("/session", s.handleSessionStatus)
		r.Get("/programs", s.handlePrograms)
		r.Get("/sessions", s.handleQuerySessions)
		r.Get("/sessions/{id}", s.handleGetSession)
		r.Get("/stats", s.handleStats)
		r.Get("/trends", s.handleTrends)
	})
}
