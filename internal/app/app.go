// Package app assembles the stores, clients and services shared by the DevPulse binaries.
package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/devansh054/dev-pulse-sub000/internal/cache"
	"github.com/devansh054/dev-pulse-sub000/internal/config"
	"github.com/devansh054/dev-pulse-sub000/internal/domain"
	"github.com/devansh054/dev-pulse-sub000/internal/github"
	"github.com/devansh054/dev-pulse-sub000/internal/githubsync"
	"github.com/devansh054/dev-pulse-sub000/internal/insights"
	"github.com/devansh054/dev-pulse-sub000/internal/migrations"
	"github.com/devansh054/dev-pulse-sub000/internal/observability"
	"github.com/devansh054/dev-pulse-sub000/internal/persistence/memory"
	"github.com/devansh054/dev-pulse-sub000/internal/persistence/postgres"
	"github.com/devansh054/dev-pulse-sub000/internal/scoring"
	"github.com/devansh054/dev-pulse-sub000/internal/secrets"
)

const cachePrefix = "devpulse:github:"

// App holds the wired dependencies. Pool is nil when running on the in-memory store.
type App struct {
	Config     config.Config
	Log        *logrus.Logger
	Pool       *pgxpool.Pool
	Store      domain.Store
	GitHub     *github.Client
	Thresholds scoring.Thresholds

	Users    *domain.UserService
	Metrics  *domain.MetricService
	Activity *domain.ActivityService
	Goals    *domain.GoalService
	Team     *domain.TeamService
	Devices  *domain.DeviceService
	Lab      *domain.LabService
	Insights *insights.Service
	Syncer   *githubsync.Syncer

	closers []func()
}

// Open connects to Postgres (or falls back to memory without POSTGRES_URL), Redis when
// configured, and builds every service.
func Open(ctx context.Context, cfg config.Config, logger *logrus.Logger) (*App, error) {
	a := &App{Config: cfg, Log: logger}

	thresholds, err := scoring.LoadThresholds(cfg.ScoringFile)
	if err != nil {
		return nil, err
	}
	a.Thresholds = thresholds

	if err := a.openStore(ctx); err != nil {
		a.Close()
		return nil, err
	}

	var store cache.Store = cache.Noop{}
	if cfg.RedisURL != "" {
		redis, err := cache.NewRedis(ctx, cfg.RedisURL, cachePrefix)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = redis.Close() })
		store = redis
		logger.Info("github response cache enabled")
	}

	a.GitHub = github.NewClient(github.Config{
		APIURL:            cfg.GitHubAPIURL,
		OAuthURL:          cfg.GitHubOAuthURL,
		ClientID:          cfg.GitHubClientID,
		ClientSecret:      cfg.GitHubClientSecret,
		RedirectURL:       cfg.GitHubRedirectURL,
		RequestsPerSecond: cfg.GitHubRequestsPerSec,
		MaxRateLimitWait:  cfg.GitHubRateLimitWait,
		CacheTTL:          cfg.GitHubCacheTTL,
	}, github.WithCache(store), github.WithObserver(observability.RecordGitHubCall))

	sealKey := cfg.TokenSealKey
	if sealKey == "" {
		logger.Warn("TOKEN_SEAL_KEY not set, deriving the token sealing key from JWT_SECRET")
		sealKey = cfg.JWTSecret
	}
	sealer, err := secrets.NewSealer(sealKey)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("token sealer: %w", err)
	}

	s := a.Store
	a.Activity = domain.NewActivityService(s)
	a.Users = domain.NewUserService(s, s, sealer, cfg.AdminLogins)
	a.Metrics = domain.NewMetricService(s)
	a.Goals = domain.NewGoalService(s, s)
	a.Team = domain.NewTeamService(s)
	a.Devices = domain.NewDeviceService(s)
	a.Lab = domain.NewLabService(s)
	a.Insights = insights.NewService(s, s, thresholds)
	a.Syncer = githubsync.NewSyncer(a.GitHub, a.Users, s, cfg.SyncDays, logger)
	return a, nil
}

func (a *App) openStore(ctx context.Context) error {
	if a.Config.PostgresURL == "" {
		a.Log.Warn("POSTGRES_URL not set, using the in-memory store")
		a.Store = memory.NewStore()
		return nil
	}
	pool, err := pgxpool.New(ctx, a.Config.PostgresURL)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	a.closers = append(a.closers, pool.Close)
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	if a.Config.MigrateOnStart {
		if err := migrations.Up(ctx, pool); err != nil {
			return err
		}
		a.Log.Info("migrations applied")
	}
	a.Pool = pool
	a.Store = postgres.NewRepository(pool)
	return nil
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
