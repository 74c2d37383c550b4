package auth

import (
	"net/http"
	"strings"

	authlib "github.com/devansh054/dev-pulse-sub000/libs/auth"
)

// Middleware enforces session authentication on incoming requests.
type Middleware struct {
	inner authlib.Middleware
}

// NewMiddleware constructs Middleware with validation config.
func NewMiddleware(cfg Config) Middleware {
	return Middleware{inner: authlib.NewMiddleware(cfg, isPublic)}
}

// Wrap attaches authentication handling to an http.Handler.
func (m Middleware) Wrap(next http.Handler) http.Handler {
	return m.inner.Wrap(next)
}

func isPublic(r *http.Request) bool {
	if r.Method == http.MethodOptions {
		return true
	}
	path := r.URL.Path
	switch path {
	case "/healthz", "/metrics", "/api/auth/github", "/api/auth/github/callback", "/api/auth/demo", "/api/auth/logout":
		return true
	}
	return !strings.HasPrefix(path, "/api/")
}
