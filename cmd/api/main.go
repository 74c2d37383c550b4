package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/devansh054/dev-pulse-sub000/internal/api"
	"github.com/devansh054/dev-pulse-sub000/internal/app"
	"github.com/devansh054/dev-pulse-sub000/internal/auth"
	"github.com/devansh054/dev-pulse-sub000/internal/chat"
	"github.com/devansh054/dev-pulse-sub000/internal/config"
	"github.com/devansh054/dev-pulse-sub000/internal/focus"
	"github.com/devansh054/dev-pulse-sub000/internal/githubsync"
	"github.com/devansh054/dev-pulse-sub000/internal/logging"
	"github.com/devansh054/dev-pulse-sub000/internal/outbox"
	"github.com/devansh054/dev-pulse-sub000/internal/security"
	httptransport "github.com/devansh054/dev-pulse-sub000/internal/transport/http"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Open(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to initialise")
	}
	defer a.Close()

	var dispatcher *outbox.Dispatcher
	switch {
	case a.Pool == nil:
		logger.Info("outbox dispatcher disabled: no postgres")
	case !cfg.KafkaEnabled():
		logger.Info("outbox dispatcher disabled: KAFKA_BROKERS not set")
	default:
		producer := outbox.NewKafkaProducer(cfg.KafkaBrokers, logger)
		defer producer.Close()

		var registry outbox.SchemaRegistrar = outbox.NewSchemaRegistryClient(cfg.SchemaRegistryURL)
		if cfg.SchemaRegistryURL == "" {
			logger.Warn("SCHEMA_REGISTRY_URL not set, assigning schema ids locally")
			registry = outbox.NewLocalRegistry()
		}
		dispatcher = outbox.NewDispatcher(a.Pool, producer, registry, cfg.OutboxPollInterval, cfg.OutboxBatchSize, logger)
		go dispatcher.Start(ctx)
	}

	var scheduler *githubsync.Scheduler
	if cfg.SyncSchedule != "" {
		scheduler, err = githubsync.NewScheduler(cfg.SyncSchedule, a.Syncer, logger)
		if err != nil {
			logger.WithError(err).Fatal("invalid SYNC_SCHEDULE")
		}
		scheduler.Start()
	}

	handler := api.NewHandler(api.Services{
		Users:    a.Users,
		Metrics:  a.Metrics,
		Insights: a.Insights,
		Goals:    a.Goals,
		Team:     a.Team,
		Devices:  a.Devices,
		Lab:      a.Lab,
		Activity: a.Activity,
		Stats:    a.Store,
		GitHub:   a.GitHub,
		Syncer:   a.Syncer,
		Scanner:  security.NewScanner(a.GitHub, a.Activity),
		Chat:     chat.NewHub(),
		Focus:    focus.NewTracker(a.Metrics),
	}, api.Options{
		Auth:         auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer, TTL: cfg.SessionTTL},
		CookieSecure: cfg.CookieSecure,
		FrontendURL:  cfg.FrontendURL,
		CORSOrigins:  cfg.CORSOrigins,
		RateLimit:    cfg.APIRateLimit,
		RateBurst:    cfg.APIRateBurst,
		AdminLogins:  cfg.AdminLogins,
	}, logger)

	if err := httptransport.Run(ctx, httptransport.DefaultServerConfig(cfg.HTTPAddress), handler.Routes(), logger); err != nil {
		logger.WithError(err).Error("http server stopped")
	}
	stop()

	if scheduler != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		scheduler.Stop(shutdownCtx)
		cancel()
	}
	if dispatcher != nil {
		dispatcher.Wait()
	}
	logger.Info("devpulse api stopped")
}
