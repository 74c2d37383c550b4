package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TokenSealer encrypts GitHub access tokens before they are stored.
type TokenSealer interface {
	Seal(plaintext []byte) ([]byte, error)
	Open(sealed []byte) ([]byte, error)
}

// GitHubProfile is the subset of the GitHub /user payload DevPulse keeps.
type GitHubProfile struct {
	ID        int64
	Login     string
	Name      string
	Email     string
	AvatarURL string
}

// UserService manages accounts created through GitHub sign-in.
type UserService struct {
	repo        UserRepository
	activity    ActivityRepository
	sealer      TokenSealer
	adminLogins map[string]struct{}
	now         func() time.Time
}

// NewUserService constructs a UserService. Logins in adminLogins are promoted to the admin role on sign-in.
func NewUserService(repo UserRepository, activity ActivityRepository, sealer TokenSealer, adminLogins []string) *UserService {
	admins := make(map[string]struct{}, len(adminLogins))
	for _, login := range adminLogins {
		admins[strings.ToLower(login)] = struct{}{}
	}
	return &UserService{repo: repo, activity: activity, sealer: sealer, adminLogins: admins, now: time.Now}
}

// SignIn upserts the user for a GitHub profile and stores the sealed access token.
func (s *UserService) SignIn(ctx context.Context, profile GitHubProfile, accessToken string) (*User, error) {
	if profile.ID == 0 || strings.TrimSpace(profile.Login) == "" {
		return nil, fmt.Errorf("%w: github profile incomplete", ErrValidation)
	}

	now := s.now().UTC()
	user := User{
		ID:        uuid.NewString(),
		GitHubID:  profile.ID,
		Login:     profile.Login,
		Name:      profile.Name,
		Email:     profile.Email,
		AvatarURL: profile.AvatarURL,
		Role:      "member",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, ok := s.adminLogins[strings.ToLower(profile.Login)]; ok {
		user.Role = "admin"
	}
	if accessToken != "" && s.sealer != nil {
		sealed, err := s.sealer.Seal([]byte(accessToken))
		if err != nil {
			return nil, fmt.Errorf("seal github token: %w", err)
		}
		user.SealedToken = sealed
	}

	stored, err := s.repo.UpsertUser(ctx, user)
	if err != nil {
		return nil, err
	}
	_ = s.activity.AppendActivity(ctx, NewActivity(stored.ID, "auth.signed_in", map[string]string{"login": stored.Login}, now))
	return stored, nil
}

// Get fetches a user by ID.
func (s *UserService) Get(ctx context.Context, id string) (*User, error) {
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// List returns up to limit users, newest first.
func (s *UserService) List(ctx context.Context, limit int) ([]User, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.repo.ListUsers(ctx, limit)
}

// Delete removes the user and, through cascading deletes, everything they own.
func (s *UserService) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteUser(ctx, id)
}

// AccessToken unseals the stored GitHub token for background syncs.
func (s *UserService) AccessToken(user User) (string, error) {
	if len(user.SealedToken) == 0 || s.sealer == nil {
		return "", errors.New("no stored github token")
	}
	plain, err := s.sealer.Open(user.SealedToken)
	if err != nil {
		return "", fmt.Errorf("open github token: %w", err)
	}
	return string(plain), nil
}

// WithStoredTokens lists users eligible for scheduled syncs.
func (s *UserService) WithStoredTokens(ctx context.Context) ([]User, error) {
	return s.repo.ListUsersWithTokens(ctx)
}

// MarkSynced records the completion time of a sync.
func (s *UserService) MarkSynced(ctx context.Context, id string, at time.Time) error {
	return s.repo.MarkSynced(ctx, id, at)
}
