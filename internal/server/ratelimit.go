package server

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/spacesedan/fieldpulse/internal/metrics"
	"github.com/spacesedan/fieldpulse/internal/models"
)

const rateLimitStoreTimeout = 200 * time.Millisecond

// WindowCounter counts hits per key in fixed windows shared across replicas.
type WindowCounter interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}

func (s *Server) rateLimiterState() string {
	switch {
	case s.counter == nil:
		return "memory"
	case s.counterHealth != nil && !s.counterHealth.Load():
		return "valkey-unhealthy"
	default:
		return "valkey"
	}
}

// rateLimiter limits analyze requests per client IP. With a shared counter
// configured, store errors let the request through.
func (s *Server) rateLimiter() fiber.Handler {
	if s.counter == nil {
		return limiter.New(limiter.Config{
			Max:        s.Cfg.RateLimitMax,
			Expiration: s.Cfg.RateLimitWindow,
			KeyGenerator: func(c fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c fiber.Ctx) error {
				return limitReached(c, "memory")
			},
		})
	}

	limit := int64(s.Cfg.RateLimitMax)
	window := s.Cfg.RateLimitWindow

	return func(c fiber.Ctx) error {
		if s.counterHealth != nil && !s.counterHealth.Load() {
			return c.Next()
		}

		ctx, cancel := context.WithTimeout(c.Context(), rateLimitStoreTimeout)
		count, err := s.counter.IncrWindow(ctx, c.IP(), window)
		cancel()
		if err != nil {
			metrics.RateLimitStoreErrors.Inc()
			slog.Warn("[RateLimit] Store unavailable, allowing request",
				slog.String("error", err.Error()))
			return c.Next()
		}

		remaining := limit - count
		if remaining < 0 {
			remaining = 0
		}
		c.Set("X-RateLimit-Limit", strconv.FormatInt(limit, 10))
		c.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > limit {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(window.Seconds())))
			return limitReached(c, "valkey")
		}
		return c.Next()
	}
}

func limitReached(c fiber.Ctx, store string) error {
	metrics.RateLimitedTotal.WithLabelValues(store).Inc()
	return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
		Error:   "Too Many Requests",
		Message: "Rate limit exceeded. Please try again later.",
		Status:  fiber.StatusTooManyRequests,
	})
}
