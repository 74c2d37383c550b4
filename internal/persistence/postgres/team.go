package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/devansh054/dev-pulse-sub000/internal/domain"
)

const memberColumns = `id, owner_id, login, name, avatar_url, commits, pull_requests, reviews, issues_closed, added_at`

// AddMember implements domain.TeamRepository; the login index is case-insensitive.
func (r *Repository) AddMember(ctx context.Context, m domain.TeamMemberProfile) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO team_members (`+memberColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		m.ID, m.OwnerID, m.Login, m.Name, m.AvatarURL, m.Commits, m.PullRequests, m.Reviews, m.IssuesClosed, m.AddedAt)
	if isUniqueViolation(err) {
		return domain.ErrConflict
	}
	return err
}

// RemoveMember implements domain.TeamRepository.
func (r *Repository) RemoveMember(ctx context.Context, ownerID, login string) error {
	return affected(r.pool.Exec(ctx, `DELETE FROM team_members WHERE owner_id = $1 AND LOWER(login) = LOWER($2)`, ownerID, login))
}

// ListMembers implements domain.TeamRepository.
func (r *Repository) ListMembers(ctx context.Context, ownerID string) ([]domain.TeamMemberProfile, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+memberColumns+` FROM team_members WHERE owner_id = $1 ORDER BY added_at, login`, ownerID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.TeamMemberProfile, error) {
		var m domain.TeamMemberProfile
		err := row.Scan(&m.ID, &m.OwnerID, &m.Login, &m.Name, &m.AvatarURL, &m.Commits, &m.PullRequests, &m.Reviews, &m.IssuesClosed, &m.AddedAt)
		return m, err
	})
}
