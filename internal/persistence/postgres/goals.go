package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/devansh054/dev-pulse-sub000/internal/domain"
)

const goalColumns = `id, user_id, title, metric, target, period, due_date, completed, created_at, updated_at`

func scanGoal(row pgx.CollectableRow) (domain.Goal, error) {
	var g domain.Goal
	err := row.Scan(&g.ID, &g.UserID, &g.Title, &g.Metric, &g.Target, &g.Period, &g.DueDate, &g.Completed, &g.CreatedAt, &g.UpdatedAt)
	return g, err
}

// CreateGoal implements domain.GoalRepository.
func (r *Repository) CreateGoal(ctx context.Context, goal domain.Goal) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO goals (`+goalColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		goal.ID, goal.UserID, goal.Title, goal.Metric, goal.Target, goal.Period, goal.DueDate, goal.Completed, goal.CreatedAt, goal.UpdatedAt)
	return err
}

// UpdateGoal implements domain.GoalRepository.
func (r *Repository) UpdateGoal(ctx context.Context, goal domain.Goal) error {
	return affected(r.pool.Exec(ctx,
		`UPDATE goals SET title = $3, metric = $4, target = $5, period = $6, due_date = $7, completed = $8, updated_at = $9
         WHERE id = $1 AND user_id = $2`,
		goal.ID, goal.UserID, goal.Title, goal.Metric, goal.Target, goal.Period, goal.DueDate, goal.Completed, goal.UpdatedAt))
}

// GetGoal implements domain.GoalRepository.
func (r *Repository) GetGoal(ctx context.Context, userID, goalID string) (*domain.Goal, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = $1 AND user_id = $2`, goalID, userID)
	if err != nil {
		return nil, err
	}
	g, err := pgx.CollectExactlyOneRow(rows, scanGoal)
	return noRows(&g, err)
}

// ListGoals implements domain.GoalRepository.
func (r *Repository) ListGoals(ctx context.Context, userID string) ([]domain.Goal, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+goalColumns+` FROM goals WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanGoal)
}

// DeleteGoal implements domain.GoalRepository.
func (r *Repository) DeleteGoal(ctx context.Context, userID, goalID string) error {
	return affected(r.pool.Exec(ctx, `DELETE FROM goals WHERE id = $1 AND user_id = $2`, goalID, userID))
}
