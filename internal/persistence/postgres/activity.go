package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/devansh054/dev-pulse-sub000/internal/domain"
)

func insertActivity(ctx context.Context, tx pgx.Tx, entry domain.ActivityLog) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO activity_logs (id, user_id, action, detail, created_at) VALUES ($1,$2,$3,$4,$5) ON CONFLICT (id) DO NOTHING`,
		entry.ID, entry.UserID, entry.Action, nullableJSON(entry.Detail), entry.CreatedAt)
	return err
}

func nullableJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

// AppendActivity implements domain.ActivityRepository.
func (r *Repository) AppendActivity(ctx context.Context, entry domain.ActivityLog) error {
	return r.inTx(ctx, func(tx pgx.Tx) error { return insertActivity(ctx, tx, entry) })
}

// ListActivity implements domain.ActivityRepository using keyset pagination on (created_at, id).
func (r *Repository) ListActivity(ctx context.Context, userID string, cursor *domain.Cursor, limit int) ([]domain.ActivityLog, *domain.Cursor, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, user_id, action, COALESCE(detail::text, ''), created_at FROM activity_logs WHERE user_id = $1`
	args := []any{userID}
	if cursor != nil {
		query += ` AND (created_at, id::text) < ($2, $3)`
		args = append(args, cursor.CreatedAt, cursor.ID)
	}
	args = append(args, limit+1)
	query += fmt.Sprintf(` ORDER BY created_at DESC, id::text DESC LIMIT $%d`, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ActivityLog, error) {
		var a domain.ActivityLog
		var detail string
		err := row.Scan(&a.ID, &a.UserID, &a.Action, &detail, &a.CreatedAt)
		if detail != "" {
			a.Detail = []byte(detail)
		}
		return a, err
	})
	if err != nil {
		return nil, nil, err
	}

	if len(entries) <= limit {
		return entries, nil, nil
	}
	page := entries[:limit]
	last := page[len(page)-1]
	return page, &domain.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
}
