package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/devansh054/dev-pulse-sub000/internal/domain"
)

const userColumns = `id, github_id, login, name, email, avatar_url, role, sealed_token, created_at, updated_at, last_synced_at`

func scanUser(row pgx.CollectableRow) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.GitHubID, &u.Login, &u.Name, &u.Email, &u.AvatarURL, &u.Role, &u.SealedToken, &u.CreatedAt, &u.UpdatedAt, &u.LastSyncedAt)
	return u, err
}

// UpsertUser implements domain.UserRepository. Users are matched on GitHub ID and an
// empty sealed token keeps the stored one.
func (r *Repository) UpsertUser(ctx context.Context, user domain.User) (*domain.User, error) {
	var token []byte
	if len(user.SealedToken) > 0 {
		token = user.SealedToken
	}

	const stmt = `INSERT INTO users (id, github_id, login, name, email, avatar_url, role, sealed_token, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        ON CONFLICT (github_id) DO UPDATE SET
            login = EXCLUDED.login,
            name = EXCLUDED.name,
            email = EXCLUDED.email,
            avatar_url = EXCLUDED.avatar_url,
            role = EXCLUDED.role,
            sealed_token = COALESCE(EXCLUDED.sealed_token, users.sealed_token),
            updated_at = EXCLUDED.updated_at
        RETURNING ` + userColumns

	rows, err := r.pool.Query(ctx, stmt, user.ID, user.GitHubID, user.Login, user.Name, user.Email, user.AvatarURL, user.Role, token, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUser implements domain.UserRepository.
func (r *Repository) GetUser(ctx context.Context, id string) (*domain.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	return noRows(&u, err)
}

// ListUsers implements domain.UserRepository.
func (r *Repository) ListUsers(ctx context.Context, limit int) ([]domain.User, error) {
	if limit <= 0 {
		limit = 1000
	}
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanUser)
}

// ListUsersWithTokens implements domain.UserRepository.
func (r *Repository) ListUsersWithTokens(ctx context.Context) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users WHERE sealed_token IS NOT NULL ORDER BY login`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanUser)
}

// DeleteUser implements domain.UserRepository; owned rows cascade.
func (r *Repository) DeleteUser(ctx context.Context, id string) error {
	return affected(r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id))
}

// MarkSynced implements domain.UserRepository.
func (r *Repository) MarkSynced(ctx context.Context, id string, at time.Time) error {
	return affected(r.pool.Exec(ctx, `UPDATE users SET last_synced_at = $2 WHERE id = $1`, id, at.UTC()))
}
