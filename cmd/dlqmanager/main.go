package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/devansh054/dev-pulse-sub000/internal/app"
	"github.com/devansh054/dev-pulse-sub000/internal/config"
	"github.com/devansh054/dev-pulse-sub000/internal/logging"
	"github.com/devansh054/dev-pulse-sub000/internal/outbox"
	httptransport "github.com/devansh054/dev-pulse-sub000/internal/transport/http"
)

const defaultDLQBatchSize = 50

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	if cfg.PostgresURL == "" {
		logger.Fatal("POSTGRES_URL must be set for the dlq manager")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Open(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to initialise")
	}
	defer a.Close()

	manager := outbox.NewDLQManager(a.Pool, cfg.DLQMaxRetries, cfg.DLQBaseDelay, logger)

	metricsDone := make(chan struct{})
	go func() {
		defer close(metricsDone)
		metricsCfg := httptransport.DefaultServerConfig(cfg.MetricsAddress)
		if err := httptransport.Run(ctx, metricsCfg, promhttp.Handler(), logger); err != nil {
			logger.WithError(err).Error("metrics server stopped")
		}
	}()

	ticker := time.NewTicker(cfg.DLQPollInterval)
	defer ticker.Stop()

	logger.WithFields(logrus.Fields{
		"interval":    cfg.DLQPollInterval,
		"max_retries": cfg.DLQMaxRetries,
	}).Info("dlq manager started")

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-ticker.C:
			processed, err := manager.RunOnce(ctx, defaultDLQBatchSize)
			if err != nil {
				logger.WithError(err).Error("dlq manager iteration failed")
				continue
			}
			if processed > 0 {
				logger.WithField("processed", processed).Info("dlq entries handled")
			}
		}
	}

	logger.Info("dlq manager shutdown requested")
	<-metricsDone
}
