// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package api exposes one session controller over a local JSON API, so any
// presentation layer can drive the download workflow.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ManuGH/vidfetch/internal/api/middleware"
	"github.com/ManuGH/vidfetch/internal/session"
)

// Config wires the server.
type Config struct {
	Controller *session.Controller
	Version    string

	// RateLimit is requests per minute per client IP; 0 disables it.
	RateLimit int
	// TracingService enables inbound tracing under this service name.
	TracingService string
}

// Server serves the control API.
type Server struct {
	ctrl    *session.Controller
	version string
	router  chi.Router
}

// New builds the router.
func New(cfg Config) *Server {
	s := &Server{ctrl: cfg.Controller, version: cfg.Version}

	r := middleware.NewRouter(middleware.StackConfig{
		EnableMetrics:  true,
		EnableLogging:  true,
		TracingService: cfg.TracingService,
	})
	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		if cfg.RateLimit > 0 {
			r.Use(middleware.APIRateLimit(cfg.RateLimit))
		}
		r.Get("/session", s.handleGetSession)
		r.Put("/session/url", s.handleSetURL)
		r.Put("/session/format", s.handleSetFormat)
		r.Put("/session/quality/{kind}", s.handleSetQuality)
		r.Post("/session/info", s.handleInfo)
		r.Post("/session/debug", s.handleDebug)
		r.Post("/session/download", s.handleDownload)
		r.Get("/qualities", s.handleQualities)
	})

	s.router = r
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}
