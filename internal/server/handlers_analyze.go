package server

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/spacesedan/fieldpulse/internal/models"
	"github.com/spacesedan/fieldpulse/internal/sentiment"
)

// handleAnalyze handles POST /analyze-sentiment and POST /api/analyze.
func (s *Server) handleAnalyze(c fiber.Ctx) error {
	var req models.AnalyzeRequest
	if err := c.Bind().JSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "No text provided",
		})
	}

	if n := utf8.RuneCountInString(req.Text); n > s.Cfg.MaxTextLength {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(models.ErrorResponse{
			Error:   "Payload Too Large",
			Message: fmt.Sprintf("text is %d characters, the limit is %d", n, s.Cfg.MaxTextLength),
			Status:  fiber.StatusRequestEntityTooLarge,
		})
	}

	result, err := s.analyzer.Analyze(req.Text)
	if errors.Is(err, sentiment.ErrAnalyzerUnavailable) {
		slog.Error("[Server] Sentiment analyzer unavailable",
			slog.String("request_id", requestid.FromContext(c)),
			slog.String("error", err.Error()))
		return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
			Error:   "Service Unavailable",
			Message: "Sentiment analyzer is unavailable",
			Status:  fiber.StatusServiceUnavailable,
		})
	}
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	slog.Info("[Server] Analysis complete",
		slog.String("sentiment", string(result.Sentiment)),
		slog.Float64("confidence", result.Confidence),
		slog.String("request_id", requestid.FromContext(c)))

	return c.JSON(result)
}
