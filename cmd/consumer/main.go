package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spacesedan/fieldpulse/config"
	"github.com/spacesedan/fieldpulse/internal/analysis"
	"github.com/spacesedan/fieldpulse/internal/clients/kafka_client"
	"github.com/spacesedan/fieldpulse/internal/consumers"
	"github.com/spacesedan/fieldpulse/internal/logging"
	"github.com/spacesedan/fieldpulse/internal/metrics"
	"github.com/spacesedan/fieldpulse/internal/sentiment"
)

func main() {
	config.LoadEnv(config.AppEnv())
	cfg := config.Load()
	logging.InitLogger(cfg.LogLevel, cfg.IsDev())

	if err := run(cfg); err != nil {
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	analyzer := analysis.FromConfig(cfg, analysis.WithRecorder(metrics.Recorder{}))
	if err := analyzer.Load(); err != nil {
		slog.Error("[Main] Sentiment analyzer failed to load, refusing to consume",
			slog.String("error", err.Error()))
		return err
	}

	kcfg := kafka_client.NewKafkaConfig(cfg)

	var producer *kafka_client.KafkaProducer
	for {
		p, err := kafka_client.NewProducer(kcfg)
		if err == nil {
			producer = p
			break
		}

		slog.Warn("[Main] Kafka init failed, retrying...", slog.String("error", err.Error()))
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(5 * time.Second):
		}
	}
	defer producer.Close()

	consumer, err := kafka_client.NewConsumer(kcfg)
	if err != nil {
		slog.Error("[Main] Failed to start consumer", slog.String("error", err.Error()))
		return err
	}
	defer consumer.Close()

	feedback := consumers.NewFeedbackConsumer(
		kafka_client.NewKafkaMessageIterator(consumer),
		kafka_client.NewCommitHandler(consumer),
		producer,
		analyzer,
		kcfg.ResultsTopic,
	)

	if err := feedback.Run(ctx); err != nil {
		if errors.Is(err, sentiment.ErrAnalyzerUnavailable) {
			slog.Error("[Main] Analyzer unavailable, restart required", slog.String("error", err.Error()))
		} else {
			slog.Error("[Main] Consumer stopped", slog.String("error", err.Error()))
		}
		return err
	}

	slog.Info("[Main] Consumer exited")
	return nil
}
