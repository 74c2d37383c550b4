package githubsync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/devansh054/dev-pulse-sub000/internal/domain"
	"github.com/devansh054/dev-pulse-sub000/internal/github"
	"github.com/devansh054/dev-pulse-sub000/internal/observability"
	"github.com/devansh054/dev-pulse-sub000/libs/events"
)

// Sync triggers.
const (
	TriggerManual    = "manual"
	TriggerScheduled = "scheduled"
	TriggerCLI       = "cli"
)

// FeedCap is the most events GitHub returns from a user's public event feed.
// A feed at the cap may be missing older events.
const FeedCap = 300

// EventSource is the slice of the GitHub client used for syncing.
type EventSource interface {
	UserEvents(ctx context.Context, token, login string) ([]github.Event, error)
}

// Result describes one completed sync.
type Result struct {
	UserID   string               `json:"user_id"`
	Login    string               `json:"login"`
	From     time.Time            `json:"from"`
	To       time.Time            `json:"to"`
	Days     int                  `json:"days"`
	Events   int                  `json:"events"`
	Commits  int                  `json:"commits"`
	SyncedAt time.Time            `json:"synced_at"`
	Metrics  []domain.DailyMetric `json:"metrics"`
}

// Syncer pulls events for a user and persists the aggregated rows.
type Syncer struct {
	source  EventSource
	users   *domain.UserService
	metrics domain.MetricRepository
	days    int
	log     *logrus.Entry
	now     func() time.Time
}

// NewSyncer constructs a Syncer covering the trailing days (default 30).
func NewSyncer(source EventSource, users *domain.UserService, metrics domain.MetricRepository, days int, logger logrus.FieldLogger) *Syncer {
	if days <= 0 {
		days = 30
	}
	return &Syncer{
		source:  source,
		users:   users,
		metrics: metrics,
		days:    days,
		log:     logger.WithField("component", "githubsync"),
		now:     time.Now,
	}
}

// Sync refreshes the user's trailing metric rows using token.
func (s *Syncer) Sync(ctx context.Context, user domain.User, token, trigger string) (res *Result, err error) {
	started := time.Now()
	defer func() { observability.RecordSync(trigger, started, err) }()

	if token == "" {
		return nil, fmt.Errorf("sync %s: %w", user.Login, github.ErrUnauthorized)
	}
	evs, err := s.source.UserEvents(ctx, token, user.Login)
	if err != nil {
		return nil, fmt.Errorf("fetch events for %s: %w", user.Login, err)
	}

	now := s.now().UTC()
	to := domain.DayStart(now)
	from := to.AddDate(0, 0, -(s.days - 1))
	if covered := coveredFrom(evs); len(evs) >= FeedCap && covered.After(from) {
		// days before the oldest returned event keep their stored rows
		s.log.WithFields(logrus.Fields{"user_id": user.ID, "covered_from": covered}).Debug("event feed truncated")
		from = covered
	}
	rows := Aggregate(user.ID, evs, from, to)
	commits := TotalCommits(rows)

	entry := domain.NewActivity(user.ID, "github.synced", map[string]interface{}{
		"trigger": trigger,
		"events":  len(evs),
		"commits": commits,
		"days":    len(rows),
	}, now)
	outbox := []domain.OutboxEvent{{
		EventType:    events.TypeMetricsSynced,
		AggregateID:  user.ID,
		PartitionKey: user.ID,
		Payload: events.MetricsSynced{
			UserID:   user.ID,
			Login:    user.Login,
			Days:     len(rows),
			From:     from,
			To:       to,
			Commits:  commits,
			SyncedAt: now,
			Trigger:  trigger,
		},
	}}

	if err := s.metrics.UpsertDailyMetrics(ctx, user.ID, rows, entry, outbox); err != nil {
		return nil, fmt.Errorf("store metrics for %s: %w", user.Login, err)
	}
	if err := s.users.MarkSynced(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("mark %s synced: %w", user.Login, err)
	}

	s.log.WithFields(logrus.Fields{
		"user_id": user.ID,
		"login":   user.Login,
		"trigger": trigger,
		"events":  len(evs),
		"commits": commits,
	}).Info("github sync complete")

	return &Result{
		UserID:   user.ID,
		Login:    user.Login,
		From:     from,
		To:       to,
		Days:     len(rows),
		Events:   len(evs),
		Commits:  commits,
		SyncedAt: now,
		Metrics:  rows,
	}, nil
}

// coveredFrom is the UTC day of the oldest event, or zero for an empty feed.
func coveredFrom(evs []github.Event) time.Time {
	var oldest time.Time
	for _, ev := range evs {
		if day := domain.DayStart(ev.CreatedAt); oldest.IsZero() || day.Before(oldest) {
			oldest = day
		}
	}
	return oldest
}

// SyncAll syncs every user with a stored token. Failures are logged and joined; other users still sync.
func (s *Syncer) SyncAll(ctx context.Context, trigger string) (int, error) {
	users, err := s.users.WithStoredTokens(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users with tokens: %w", err)
	}

	synced := 0
	var errs []error
	for _, u := range users {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		token, err := s.users.AccessToken(u)
		if err != nil {
			s.log.WithError(err).WithField("user_id", u.ID).Warn("skipping user without usable token")
			errs = append(errs, err)
			continue
		}
		if _, err := s.Sync(ctx, u, token, trigger); err != nil {
			s.log.WithError(err).WithField("user_id", u.ID).Error("github sync failed")
			errs = append(errs, err)
			continue
		}
		synced++
	}
	return synced, errors.Join(errs...)
}
