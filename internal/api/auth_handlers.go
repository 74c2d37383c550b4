package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/devansh054/dev-pulse-sub000/internal/auth"
	"github.com/devansh054/dev-pulse-sub000/internal/demo"
	"github.com/devansh054/dev-pulse-sub000/internal/domain"
	authlib "github.com/devansh054/dev-pulse-sub000/libs/auth"
)

const (
	stateCookie = "oauth_state"
	stateTTL    = 10 * time.Minute
)

// UserView is the public shape of an account.
type UserView struct {
	ID           string     `json:"id"`
	GitHubID     int64      `json:"github_id"`
	Login        string     `json:"login"`
	Name         string     `json:"name"`
	Email        string     `json:"email,omitempty"`
	AvatarURL    string     `json:"avatar_url"`
	Role         string     `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
}

func toUserView(u domain.User) UserView {
	return UserView{
		ID:           u.ID,
		GitHubID:     u.GitHubID,
		Login:        u.Login,
		Name:         u.Name,
		Email:        u.Email,
		AvatarURL:    u.AvatarURL,
		Role:         u.Role,
		CreatedAt:    u.CreatedAt,
		LastSyncedAt: u.LastSyncedAt,
	}
}

func (h *Handler) registerAuth(r *mux.Router) {
	r.HandleFunc("/api/auth/github", h.githubLogin).Methods(http.MethodGet)
	r.HandleFunc("/api/auth/github/callback", h.githubCallback).Methods(http.MethodGet)
	r.HandleFunc("/api/auth/demo", h.demoLogin).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/logout", h.logout).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/me", h.me).Methods(http.MethodGet)
}

func (h *Handler) githubLogin(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	h.setCookie(w, stateCookie, state, stateTTL)
	http.Redirect(w, r, h.svc.GitHub.AuthorizeURL(state), http.StatusFound)
}

func (h *Handler) githubCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if errParam := q.Get("error"); errParam != "" {
		writeError(w, http.StatusUnauthorized, "github authorization denied: "+errParam)
		return
	}
	code := strings.TrimSpace(q.Get("code"))
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing code")
		return
	}
	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != q.Get("state") {
		writeError(w, http.StatusBadRequest, "oauth state mismatch")
		return
	}
	h.clearCookie(w, stateCookie)

	ctx := r.Context()
	token, err := h.svc.GitHub.ExchangeCode(ctx, code)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	profile, err := h.svc.GitHub.User(ctx, token)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	user, err := h.svc.Users.SignIn(ctx, domain.GitHubProfile{
		ID:        profile.ID,
		Login:     profile.Login,
		Name:      profile.Name,
		Email:     profile.Email,
		AvatarURL: profile.AvatarURL,
	}, token)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	session, _, err := h.issueSession(*user)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.setCookie(w, authlib.SessionCookie, session, h.sessionTTL())
	h.setCookie(w, authlib.GitHubCookie, token, h.sessionTTL())
	demo.Disable(w)

	if err := h.svc.Activity.Record(ctx, user.ID, "auth.login", map[string]string{"login": user.Login}); err != nil {
		h.log.WithError(err).Warn("record login")
	}
	http.Redirect(w, r, strings.TrimSuffix(h.opts.FrontendURL, "/")+"/dashboard", http.StatusFound)
}

func (h *Handler) issueSession(user domain.User) (string, time.Time, error) {
	scopes := append([]string(nil), auth.DefaultScopes...)
	if user.Role == authlib.RoleAdmin {
		scopes = append(scopes, auth.ScopeAdmin)
	}
	return authlib.Issue(h.opts.Auth, user.ID, user.Login, user.Role, scopes, time.Now())
}

func (h *Handler) demoLogin(w http.ResponseWriter, r *http.Request) {
	demo.Enable(w, h.opts.CookieSecure)
	writeJSON(w, http.StatusOK, map[string]bool{"demo": true})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	h.clearCookie(w, authlib.SessionCookie)
	h.clearCookie(w, authlib.GitHubCookie)
	demo.Disable(w)
	writeJSON(w, http.StatusOK, nil)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	user, err := h.svc.Users.Get(r.Context(), claims.Subject)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	_, hasToken := auth.GitHubToken(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user":         toUserView(*user),
		"github_token": hasToken,
		"admin":        h.isAdmin(claims),
	})
}

func (h *Handler) sessionTTL() time.Duration {
	if h.opts.Auth.TTL > 0 {
		return h.opts.Auth.TTL
	}
	return 24 * time.Hour
}

func (h *Handler) setCookie(w http.ResponseWriter, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   h.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
