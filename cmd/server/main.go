package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/spacesedan/fieldpulse/config"
	"github.com/spacesedan/fieldpulse/internal/analysis"
	"github.com/spacesedan/fieldpulse/internal/clients"
	"github.com/spacesedan/fieldpulse/internal/logging"
	"github.com/spacesedan/fieldpulse/internal/metrics"
	"github.com/spacesedan/fieldpulse/internal/monitoring"
	"github.com/spacesedan/fieldpulse/internal/server"
)

func main() {
	config.LoadEnv(config.AppEnv())
	cfg := config.Load()
	logging.InitLogger(cfg.LogLevel, cfg.IsDev())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	analyzer := analysis.FromConfig(cfg, analysis.WithRecorder(metrics.Recorder{}))
	if err := analyzer.Load(); err != nil {
		// The server keeps running so /api/health and /readyz can report the failure.
		slog.Error("[Main] Sentiment analyzer failed to load, analyze requests will return 503",
			slog.String("error", err.Error()))
	}

	var opts []server.Option
	if cfg.RateLimitStoreEnabled() {
		vc, err := clients.InitValkey(clients.ValkeyOptions{
			Addr:     cfg.ValkeyAddr,
			Password: cfg.ValkeyPassword,
			TLS:      cfg.ValkeyTLS,
		})
		if err != nil {
			slog.Warn("[Main] Valkey unavailable, using in-memory rate limiting",
				slog.String("error", err.Error()))
		} else {
			defer clients.CloseValkey()

			valkeyHealthy := &atomic.Bool{}
			valkeyHealthy.Store(true)
			go monitoring.MonitorValkeyHealth(ctx, vc, monitoring.HEALTHCHECK_INTERVAL, valkeyHealthy)

			opts = append(opts, server.WithRateCounter(vc, valkeyHealthy))
		}
	}

	srv := server.New(cfg, analyzer, opts...)
	srv.RegisterRoutes()

	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("[Main] Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	printBanner(cfg)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	slog.Info("[Main] Shutting down server...")
	if err := srv.Shutdown(); err != nil {
		slog.Error("[Main] Server forced to shutdown", slog.String("error", err.Error()))
	}
	slog.Info("[Main] Server exited")
}

func printBanner(cfg *config.Config) {
	slog.Info("[Main] " + server.ServiceName,
		slog.String("version", server.ServiceVersion),
		slog.String("env", cfg.Env),
		slog.String("addr", cfg.ServerAddr))
	for _, endpoint := range server.Endpoints() {
		method, path, _ := strings.Cut(endpoint, " ")
		slog.Info("[Main] Endpoint",
			slog.String("method", method),
			slog.String("path", strings.TrimSpace(path)))
	}
}
