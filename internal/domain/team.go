package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TeamService manages an owner's team board.
type TeamService struct {
	repo TeamRepository
	now  func() time.Time
}

// NewTeamService constructs a TeamService.
func NewTeamService(repo TeamRepository) *TeamService {
	return &TeamService{repo: repo, now: time.Now}
}

// Add puts a member on the board. Logins are unique per owner, compared case-insensitively.
func (s *TeamService) Add(ctx context.Context, ownerID string, member TeamMemberProfile) (*TeamMemberProfile, error) {
	login := strings.TrimSpace(member.Login)
	if login == "" {
		return nil, fmt.Errorf("%w: login is required", ErrValidation)
	}
	member.ID = uuid.NewString()
	member.OwnerID = ownerID
	member.Login = login
	member.AddedAt = s.now().UTC()
	if member.Name == "" {
		member.Name = login
	}
	if err := s.repo.AddMember(ctx, member); err != nil {
		return nil, err
	}
	return &member, nil
}

// Remove deletes the member with the given login.
func (s *TeamService) Remove(ctx context.Context, ownerID, login string) error {
	login = strings.TrimSpace(login)
	if login == "" {
		return fmt.Errorf("%w: login is required", ErrValidation)
	}
	return s.repo.RemoveMember(ctx, ownerID, login)
}

// List returns the owner's board ordered by when members were added.
func (s *TeamService) List(ctx context.Context, ownerID string) ([]TeamMemberProfile, error) {
	return s.repo.ListMembers(ctx, ownerID)
}
