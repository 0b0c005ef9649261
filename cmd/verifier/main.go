package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/forecast-verification-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/forecast-verification-service/internal/adapter/kafka"
	"github.com/couchcryptid/forecast-verification-service/internal/config"
	"github.com/couchcryptid/forecast-verification-service/internal/observability"
	"github.com/couchcryptid/forecast-verification-service/internal/pipeline"
)

// httpOnly is the readiness checker when the Kafka pipeline is disabled.
type httpOnly struct{}

func (httpOnly) CheckReadiness(context.Context) error { return nil }

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	runner := pipeline.NewRunner(cfg.Thresholds, logger, metrics)
	if cfg.ThresholdsFile != "" {
		logger.Info("thresholds loaded", "file", cfg.ThresholdsFile)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		reader *kafkaadapter.Reader
		writer *kafkaadapter.Writer
		srv    *httpadapter.Server
	)
	if cfg.KafkaEnabled {
		reader = kafkaadapter.NewReader(cfg, logger)
		writer = kafkaadapter.NewWriter(cfg, logger)
		p := pipeline.New(reader, runner, writer, logger, metrics, cfg.BatchSize, cfg.Workers)
		srv = httpadapter.NewServer(cfg.HTTPAddr, p, runner, logger)

		// Start verification pipeline.
		go func() {
			if err := p.Run(ctx); err != nil {
				logger.Error("pipeline error", "error", err)
			}
		}()
	} else {
		logger.Info("kafka pipeline disabled, serving HTTP only")
		srv = httpadapter.NewServer(cfg.HTTPAddr, httpOnly{}, runner, logger)
	}

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if reader != nil {
		if err := reader.Close(); err != nil {
			logger.Error("kafka reader close error", "error", err)
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
