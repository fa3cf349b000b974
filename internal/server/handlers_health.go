package server

import (
	"github.com/gofiber/fiber/v3"
	"github.com/spacesedan/fieldpulse/internal/models"
	"github.com/spacesedan/fieldpulse/internal/sentiment"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
)

func (s *Server) handleAPIInfo(c fiber.Ctx) error {
	analyze := models.EndpointInfo{
		Method:      fiber.MethodPost,
		Description: "Analyze sentiment of farmer feedback",
		Example:     &models.AnalyzeRequest{Text: "The crop yield was excellent this year!"},
	}

	return c.JSON(models.ServiceInfo{
		Name:    ServiceName,
		Version: ServiceVersion,
		Message: "AI-powered sentiment analysis for farmer feedback",
		Endpoints: map[string]models.EndpointInfo{
			"/analyze-sentiment": analyze,
			"/api/analyze":       analyze,
			"/api/health": {
				Method:      fiber.MethodGet,
				Description: "Service health including analyzer and rate limiter state",
			},
		},
		DevelopedBy: "Team AgriConnect AI",
	})
}

// handleHealth reports unhealthy only once the analyzer failed for good.
// An analyzer that has not loaded yet will load on the first request.
func (s *Server) handleHealth(c fiber.Ctx) error {
	phase := s.analyzer.Phase()

	health := models.HealthStatus{
		Status:      statusHealthy,
		Service:     ServiceName,
		Version:     ServiceVersion,
		Analyzer:    phase.String(),
		Keywords:    "primary",
		RateLimiter: s.rateLimiterState(),
	}
	if s.analyzer.KeywordsDegraded() {
		health.Keywords = "fallback"
	}

	if phase == sentiment.PhaseFailed {
		health.Status = statusUnhealthy
		return c.Status(fiber.StatusServiceUnavailable).JSON(health)
	}
	return c.JSON(health)
}

// handleLiveness handles /healthz. Returns 200 while the process runs.
func (s *Server) handleLiveness(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
	})
}

// handleReadiness handles /readyz. Returns 200 only once the lexicon is loaded.
func (s *Server) handleReadiness(c fiber.Ctx) error {
	if phase := s.analyzer.Phase(); phase != sentiment.PhaseReady {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":   "error",
			"analyzer": phase.String(),
		})
	}

	return c.JSON(fiber.Map{
		"status": "ok",
	})
}
