package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/devansh054/dev-pulse-sub000/internal/app"
	"github.com/devansh054/dev-pulse-sub000/internal/config"
	"github.com/devansh054/dev-pulse-sub000/internal/consumer"
	"github.com/devansh054/dev-pulse-sub000/internal/logging"
	httptransport "github.com/devansh054/dev-pulse-sub000/internal/transport/http"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	if !cfg.KafkaEnabled() {
		logger.Fatal("KAFKA_BROKERS must be set for the consumer")
	}
	if cfg.PostgresURL == "" {
		logger.Fatal("POSTGRES_URL must be set for the consumer")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Open(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to initialise")
	}
	defer a.Close()

	handler := consumer.Chain{
		consumer.NewActivityLogHandler(a.Store),
		consumer.NewInsightHandler(a.Insights),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httptransport.Run(gctx, httptransport.DefaultServerConfig(cfg.MetricsAddress), promhttp.Handler(), logger)
	})

	for _, topic := range cfg.ConsumerTopics {
		reader := kafka.NewReader(kafka.ReaderConfig{
			Brokers:         cfg.KafkaBrokers,
			GroupID:         cfg.ConsumerGroupID,
			Topic:           topic,
			MinBytes:        1e3,
			MaxBytes:        10e6,
			CommitInterval:  time.Second,
			RetentionTime:   24 * time.Hour,
			ReadLagInterval: -1,
		})
		log := logger.WithFields(logrus.Fields{"topic": topic, "group": cfg.ConsumerGroupID})
		proc := consumer.NewProcessor(reader, handler, consumer.WithLogger(log))

		g.Go(func() error {
			defer reader.Close()
			log.Info("consumer started")
			if err := proc.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.WithError(err).Error("consumer stopped with error")
		return
	}
	logger.Info("consumer stopped")
}
