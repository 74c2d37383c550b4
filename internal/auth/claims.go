package auth

import (
	"context"

	authlib "github.com/devansh054/dev-pulse-sub000/libs/auth"
)

// Claims mirrors the shared auth claims type for service convenience.
type Claims = authlib.Claims

// Config mirrors the shared auth config.
type Config = authlib.Config

// ParseClaims delegates to the shared auth parser.
func ParseClaims(token string, cfg Config) (*Claims, error) {
	return authlib.Parse(token, cfg)
}

// WithClaims stores the claims in the request context.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return authlib.WithClaims(ctx, claims)
}

// FromContext retrieves claims from context.
func FromContext(ctx context.Context) (*Claims, bool) {
	return authlib.FromContext(ctx)
}

// WithGitHubToken attaches a GitHub access token to the context.
func WithGitHubToken(ctx context.Context, token string) context.Context {
	return authlib.WithGitHubToken(ctx, token)
}

// GitHubToken retrieves the GitHub access token forwarded from the github_token cookie.
func GitHubToken(ctx context.Context) (string, bool) {
	return authlib.GitHubTokenFromContext(ctx)
}
