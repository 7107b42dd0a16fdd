package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"schoolprofile/cmd"
)

// Server is the web front end over a profile service.
type Server struct {
	svc        *ProfileService
	overviewer *AISummaryService
	port       int
}

// NewServer builds a server. The AI overview routes are enabled when
// ANTHROPIC_API_KEY is set.
func NewServer(svc *ProfileService, cfg cmd.Config) *Server {
	s := &Server{svc: svc, port: cfg.Port}
	if os.Getenv("ANTHROPIC_API_KEY") != "" {
		ov, err := initOverviewer(svc, cfg.Model)
		if err != nil {
			if logger != nil {
				logger.Warn("AI overview unavailable", "error", err)
			}
		} else {
			s.overviewer = ov
		}
	}
	return s
}

// Router wires middleware, web pages, the JSON API and /metrics.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(metricsMiddleware)

	r.Handle("/metrics", promhttp.Handler())

	// Web handlers (HTMX HTML responses)
	webHandler := NewWebHandler(s.svc, s.overviewer)
	r.Get("/", webHandler.IndexPage)
	r.Get("/levels/{level}", webHandler.SchoolsPage)
	r.Get("/levels/{level}/schools", webHandler.SchoolResults)
	r.Get("/profile", webHandler.ProfilePage)
	r.Post("/profile/overview", webHandler.Overview)

	// API handlers (JSON responses)
	apiHandler := &APIHandler{Service: s.svc, Overviewer: s.overviewer}
	r.Route("/api", func(r chi.Router) {
		r.Get("/levels", apiHandler.GradeLevels)
		r.Get("/levels/{level}/schools", apiHandler.Schools)
		r.Get("/levels/{level}/years", apiHandler.Years)
		r.Get("/profile", apiHandler.Profile)
		r.Get("/trend", apiHandler.Trend)
		r.Get("/validate", apiHandler.Validate)
		r.Post("/overview", apiHandler.Overview)
	})

	return r
}

// Start listens on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("Starting server on http://localhost%s", addr)
	if logger != nil {
		logger.Info("Starting web server", "addr", addr, "ai_overview", s.overviewer != nil)
	}
	return http.ListenAndServe(addr, s.Router())
}
