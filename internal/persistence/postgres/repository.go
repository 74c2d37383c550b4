// Package postgres implements domain.Store on PostgreSQL using pgx.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/devansh054/dev-pulse-sub000/internal/domain"
	"github.com/devansh054/dev-pulse-sub000/internal/outbox"
)

const uniqueViolation = "23505"

// Repository provides Postgres-backed persistence for every DevPulse table and the outbox.
type Repository struct {
	pool *pgxpool.Pool
}

var _ domain.Store = (*Repository)(nil)

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// inTx runs fn inside a transaction, committing only when fn succeeds.
func (r *Repository) inTx(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func enqueueAll(ctx context.Context, tx pgx.Tx, userID string, events []domain.OutboxEvent) error {
	for _, ev := range events {
		if err := outbox.Enqueue(ctx, tx, userID, ev); err != nil {
			return err
		}
	}
	return nil
}

// affected maps a zero-row update or delete to domain.ErrNotFound.
func affected(tag pgconn.CommandTag, err error) error {
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// noRows converts pgx.ErrNoRows into the (nil, nil) convention of Get-style lookups.
func noRows[T any](v *T, err error) (*T, error) {
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Stats implements domain.StatsRepository.
func (r *Repository) Stats(ctx context.Context) (domain.StoreStats, error) {
	const query = `SELECT
        (SELECT COUNT(*) FROM users),
        (SELECT COUNT(*) FROM daily_metrics),
        (SELECT COUNT(*) FROM insights),
        (SELECT COUNT(*) FROM goals),
        (SELECT COUNT(*) FROM team_members),
        (SELECT COUNT(*) FROM devices),
        (SELECT COUNT(*) FROM experiments),
        (SELECT COUNT(*) FROM activity_logs)`

	var s domain.StoreStats
	err := r.pool.QueryRow(ctx, query).Scan(&s.Users, &s.DailyMetrics, &s.Insights, &s.Goals, &s.TeamMembers, &s.Devices, &s.Experiments, &s.ActivityLogs)
	return s, err
}
