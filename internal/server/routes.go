package server

import (
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes() {
	limit := s.rateLimiter()

	// Analysis
	s.App.Post("/analyze-sentiment", limit, s.handleAnalyze)
	s.App.Post("/api/analyze", limit, s.handleAnalyze)

	// Frontend and service info
	s.App.Get("/", s.handleHome)
	s.App.Get("/api-info", s.handleAPIInfo)

	// Health
	s.App.Get("/api/health", s.handleHealth)
	s.App.Get("/healthz", s.handleLiveness)
	s.App.Get("/readyz", s.handleReadiness)

	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}

// Endpoints lists the public routes for the startup banner.
func Endpoints() []string {
	return []string{
		"GET  /",
		"POST /analyze-sentiment",
		"POST /api/analyze",
		"GET  /api-info",
		"GET  /api/health",
		"GET  /healthz",
		"GET  /readyz",
		"GET  /metrics",
	}
}
