package auth

import "context"

type contextKey string

const (
	claimsKey      contextKey = "devpulse-auth-claims"
	githubTokenKey contextKey = "devpulse-github-token"
)

// WithClaims stores claims on the context.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// FromContext retrieves claims stored by WithClaims.
func FromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	return claims, ok && claims != nil
}

// WithGitHubToken stores the caller's GitHub access token on the context.
func WithGitHubToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, githubTokenKey, token)
}

// GitHubTokenFromContext returns the GitHub access token attached by the middleware.
func GitHubTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(githubTokenKey).(string)
	return token, ok && token != ""
}
