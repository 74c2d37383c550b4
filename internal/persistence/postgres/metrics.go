package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/devansh054/dev-pulse-sub000/internal/domain"
)

const metricColumns = `user_id, date, commits, pull_requests_opened, pull_requests_merged, issues_opened, issues_closed, reviews, coding_minutes, focus_minutes, late_night_commits, weekend_work`

func scanMetric(row pgx.CollectableRow) (domain.DailyMetric, error) {
	var m domain.DailyMetric
	err := row.Scan(&m.UserID, &m.Date, &m.Commits, &m.PullRequestsOpened, &m.PullRequestsMerged, &m.IssuesOpened, &m.IssuesClosed, &m.Reviews, &m.CodingMinutes, &m.FocusMinutes, &m.LateNightCommits, &m.WeekendWork)
	m.Date = domain.DayStart(m.Date)
	return m, err
}

// UpsertDailyMetrics implements domain.MetricRepository. focus_minutes is owned by the
// focus timer and is never overwritten by a sync.
func (r *Repository) UpsertDailyMetrics(ctx context.Context, userID string, metrics []domain.DailyMetric, entry domain.ActivityLog, events []domain.OutboxEvent) error {
	const stmt = `INSERT INTO daily_metrics (` + metricColumns + `)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,0,$10,$11)
        ON CONFLICT (user_id, date) DO UPDATE SET
            commits = EXCLUDED.commits,
            pull_requests_opened = EXCLUDED.pull_requests_opened,
            pull_requests_merged = EXCLUDED.pull_requests_merged,
            issues_opened = EXCLUDED.issues_opened,
            issues_closed = EXCLUDED.issues_closed,
            reviews = EXCLUDED.reviews,
            coding_minutes = EXCLUDED.coding_minutes,
            late_night_commits = EXCLUDED.late_night_commits,
            weekend_work = EXCLUDED.weekend_work`

	return r.inTx(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, m := range metrics {
			batch.Queue(stmt, userID, domain.DayStart(m.Date), m.Commits, m.PullRequestsOpened, m.PullRequestsMerged,
				m.IssuesOpened, m.IssuesClosed, m.Reviews, m.CodingMinutes, m.LateNightCommits, m.WeekendWork)
		}
		if batch.Len() > 0 {
			if err := tx.SendBatch(ctx, batch).Close(); err != nil {
				return err
			}
		}
		if entry.ID != "" {
			if err := insertActivity(ctx, tx, entry); err != nil {
				return err
			}
		}
		return enqueueAll(ctx, tx, userID, events)
	})
}

// ListDailyMetrics implements domain.MetricRepository; both bounds are inclusive days.
func (r *Repository) ListDailyMetrics(ctx context.Context, userID string, from, to time.Time) ([]domain.DailyMetric, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+metricColumns+` FROM daily_metrics WHERE user_id = $1 AND date BETWEEN $2 AND $3 ORDER BY date`,
		userID, domain.DayStart(from), domain.DayStart(to))
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanMetric)
}

// AddFocusMinutes implements domain.MetricRepository.
func (r *Repository) AddFocusMinutes(ctx context.Context, userID string, day time.Time, minutes int) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO daily_metrics (user_id, date, focus_minutes) VALUES ($1,$2,$3)
         ON CONFLICT (user_id, date) DO UPDATE SET focus_minutes = daily_metrics.focus_minutes + EXCLUDED.focus_minutes`,
		userID, domain.DayStart(day), minutes)
	return err
}

const insightColumns = `id, user_id, kind, title, body, score, severity, dismissed, created_at`

func scanInsight(row pgx.CollectableRow) (domain.Insight, error) {
	var in domain.Insight
	err := row.Scan(&in.ID, &in.UserID, &in.Kind, &in.Title, &in.Body, &in.Score, &in.Severity, &in.Dismissed, &in.CreatedAt)
	return in, err
}

// ReplaceInsights implements domain.InsightRepository. Dismissed rows survive regeneration.
func (r *Repository) ReplaceInsights(ctx context.Context, userID string, insights []domain.Insight, events []domain.OutboxEvent) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM insights WHERE user_id = $1 AND NOT dismissed`, userID); err != nil {
			return err
		}
		for _, in := range insights {
			if _, err := tx.Exec(ctx,
				`INSERT INTO insights (`+insightColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
				in.ID, userID, in.Kind, in.Title, in.Body, in.Score, in.Severity, in.Dismissed, in.CreatedAt); err != nil {
				return err
			}
		}
		return enqueueAll(ctx, tx, userID, events)
	})
}

// ListInsights implements domain.InsightRepository.
func (r *Repository) ListInsights(ctx context.Context, userID string, includeDismissed bool) ([]domain.Insight, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+insightColumns+` FROM insights
         WHERE user_id = $1 AND ($2 OR NOT dismissed)
         ORDER BY created_at DESC, id`, userID, includeDismissed)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanInsight)
}

// DismissInsight implements domain.InsightRepository.
func (r *Repository) DismissInsight(ctx context.Context, userID, insightID string) error {
	return affected(r.pool.Exec(ctx, `UPDATE insights SET dismissed = TRUE WHERE id = $1 AND user_id = $2`, insightID, userID))
}
