package server

import (
	"embed"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/gofiber/template/html/v3"
	"github.com/google/uuid"
	"github.com/spacesedan/fieldpulse/config"
	"github.com/spacesedan/fieldpulse/internal/models"
	"github.com/spacesedan/fieldpulse/internal/sentiment"
)

const (
	ServiceName    = "AgriConnect AI - Farmer Sentiment Analysis"
	ServiceVersion = "2.0.0"
)

//go:embed views/*.html
var viewsFS embed.FS

// Analyzer is the analysis pipeline as seen by the HTTP layer.
type Analyzer interface {
	Analyze(text string) (models.AnalysisResult, error)
	Phase() sentiment.Phase
	KeywordsDegraded() bool
}

// Server wraps the Fiber app and configuration.
type Server struct {
	App *fiber.App
	Cfg *config.Config

	analyzer      Analyzer
	counter       WindowCounter
	counterHealth *atomic.Bool
}

type Option func(*Server)

// WithRateCounter backs the analyze rate limit with a shared counter.
// healthy may be nil; when it reports false the limiter lets requests through.
func WithRateCounter(counter WindowCounter, healthy *atomic.Bool) Option {
	return func(s *Server) {
		s.counter = counter
		s.counterHealth = healthy
	}
}

// New creates a new server with middleware configured.
func New(cfg *config.Config, analyzer Analyzer, opts ...Option) *Server {
	views, err := fs.Sub(viewsFS, "views")
	if err != nil {
		panic(err)
	}
	engine := html.NewFileSystem(http.FS(views), ".html")

	app := fiber.New(fiber.Config{
		AppName:      ServiceName,
		Views:        engine,
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(accessLog())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "X-Requested-With"},
		MaxAge:       86400,
	}))

	s := &Server{
		App:      app,
		Cfg:      cfg,
		analyzer: analyzer,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start listens on the configured address.
func (s *Server) Start() error {
	return s.App.Listen(s.Cfg.ServerAddr, fiber.ListenConfig{
		DisableStartupMessage: true,
	})
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.App.Shutdown()
}

func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "An unexpected error occurred"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}
	if code == fiber.StatusNotFound {
		message = "The requested resource was not found"
	}

	if code >= fiber.StatusInternalServerError {
		slog.Error("[Server] Request failed",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("request_id", requestid.FromContext(c)),
			slog.String("error", err.Error()))
	}

	return c.Status(code).JSON(models.ErrorResponse{
		Error:   http.StatusText(code),
		Message: message,
		Status:  code,
	})
}

func accessLog() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		var e *fiber.Error
		if errors.As(err, &e) {
			status = e.Code
		} else if err != nil {
			status = fiber.StatusInternalServerError
		}

		slog.Debug("[Server] Request",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", status),
			slog.Duration("elapsed", time.Since(start)),
			slog.String("request_id", requestid.FromContext(c)))
		return err
	}
}
