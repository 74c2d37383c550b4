package auth

// Scopes granted to DevPulse session tokens.
const (
	ScopeDashboardRead = "dashboard:read"
	ScopeGitHubSync    = "github:sync"
	ScopeAdmin         = "admin"
)

// DefaultScopes are issued to every user signing in through GitHub.
var DefaultScopes = []string{ScopeDashboardRead, ScopeGitHubSync}
