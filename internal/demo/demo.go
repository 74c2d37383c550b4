// Package demo serves canned dashboard data to visitors who opted into demo mode.
package demo

import (
	"embed"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// CookieName marks a browser as being in demo mode.
const CookieName = "devpulse_demo"

//go:embed fixtures/*.json
var fixtureFS embed.FS

var routes = map[string]string{
	"/api/github/profile":    "profile.json",
	"/api/github/repos":      "repos.json",
	"/api/github/stats":      "stats.json",
	"/api/metrics/daily":     "daily.json",
	"/api/dashboard/summary": "summary.json",
	"/api/insights":          "insights.json",
	"/api/team":              "team.json",
	"/api/team/rankings":     "rankings.json",
}

// prefixRoutes cover paths with a trailing identifier.
var prefixRoutes = map[string]string{
	"/api/ai/insights/": "insights.json",
}

// Fixture returns the canned payload for path, if any.
func Fixture(path string) (json.RawMessage, bool) {
	name, ok := routes[strings.TrimSuffix(path, "/")]
	if !ok {
		for prefix, file := range prefixRoutes {
			if strings.HasPrefix(path, prefix) && len(path) > len(prefix) {
				name, ok = file, true
				break
			}
		}
	}
	if !ok {
		return nil, false
	}
	data, err := fixtureFS.ReadFile("fixtures/" + name)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Enabled reports whether the request carries the demo cookie.
func Enabled(r *http.Request) bool {
	c, err := r.Cookie(CookieName)
	return err == nil && c.Value == "1"
}

// authenticated is a cheap presence check; real validation happens in the auth middleware.
func authenticated(r *http.Request, sessionCookie string) bool {
	if strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
		return true
	}
	_, err := r.Cookie(sessionCookie)
	return err == nil
}

// Middleware answers unauthenticated demo GETs from fixtures and passes everything else through.
func Middleware(sessionCookie string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet || !Enabled(r) || authenticated(r, sessionCookie) {
				next.ServeHTTP(w, r)
				return
			}
			data, ok := Fixture(r.URL.Path)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-DevPulse-Demo", "1")
			_ = json.NewEncoder(w).Encode(struct {
				Success bool            `json:"success"`
				Demo    bool            `json:"demo"`
				Data    json.RawMessage `json:"data"`
			}{Success: true, Demo: true, Data: data})
		})
	}
}

// Enable sets the demo cookie for a day.
func Enable(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "1",
		Path:     "/",
		Expires:  time.Now().Add(24 * time.Hour),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Disable clears the demo cookie.
func Disable(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: CookieName, Value: "", Path: "/", MaxAge: -1})
}
