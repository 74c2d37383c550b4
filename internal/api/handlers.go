// Package api exposes the DevPulse REST API.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/devansh054/dev-pulse-sub000/internal/auth"
	"github.com/devansh054/dev-pulse-sub000/internal/chat"
	"github.com/devansh054/dev-pulse-sub000/internal/demo"
	"github.com/devansh054/dev-pulse-sub000/internal/domain"
	"github.com/devansh054/dev-pulse-sub000/internal/focus"
	"github.com/devansh054/dev-pulse-sub000/internal/github"
	"github.com/devansh054/dev-pulse-sub000/internal/githubsync"
	"github.com/devansh054/dev-pulse-sub000/internal/insights"
	"github.com/devansh054/dev-pulse-sub000/internal/observability"
	"github.com/devansh054/dev-pulse-sub000/internal/security"
	authlib "github.com/devansh054/dev-pulse-sub000/libs/auth"
)

// GitHub is the slice of the GitHub client the API calls directly.
type GitHub interface {
	AuthorizeURL(state string) string
	ExchangeCode(ctx context.Context, code string) (string, error)
	User(ctx context.Context, token string) (*github.User, error)
	UserByLogin(ctx context.Context, token, login string) (*github.User, error)
	Repositories(ctx context.Context, token string) ([]github.Repository, error)
	UserEvents(ctx context.Context, token, login string) ([]github.Event, error)
	Repository(ctx context.Context, token, owner, repo string) (*github.Repository, error)
	RepoCommits(ctx context.Context, token, owner, repo string, since time.Time) ([]github.Commit, error)
	RepoPulls(ctx context.Context, token, owner, repo string) ([]github.PullRequest, error)
	RepoIssues(ctx context.Context, token, owner, repo string, since time.Time) ([]github.Issue, error)
}

// Syncer refreshes a user's metrics from GitHub.
type Syncer interface {
	Sync(ctx context.Context, user domain.User, token, trigger string) (*githubsync.Result, error)
}

// Services bundles everything the handlers depend on.
type Services struct {
	Users    *domain.UserService
	Metrics  *domain.MetricService
	Insights *insights.Service
	Goals    *domain.GoalService
	Team     *domain.TeamService
	Devices  *domain.DeviceService
	Lab      *domain.LabService
	Activity *domain.ActivityService
	Stats    domain.StatsRepository
	GitHub   GitHub
	Syncer   Syncer
	Scanner  *security.Scanner
	Chat     *chat.Hub
	Focus    *focus.Tracker
}

// Options carries HTTP-level settings.
type Options struct {
	Auth         auth.Config
	CookieSecure bool
	FrontendURL  string
	CORSOrigins  []string
	RateLimit    int
	RateBurst    int
	AdminLogins  []string
}

// Handler coordinates HTTP requests with the domain services.
type Handler struct {
	svc     Services
	opts    Options
	admins  map[string]struct{}
	log     *logrus.Entry
	started time.Time
}

// NewHandler builds a Handler.
func NewHandler(svc Services, opts Options, logger logrus.FieldLogger) *Handler {
	return &Handler{
		svc:     svc,
		opts:    opts,
		admins:  loginSet(opts.AdminLogins),
		log:     logger.WithField("component", "api"),
		started: time.Now(),
	}
}

// Routes returns the fully wrapped API handler.
func (h *Handler) Routes() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", healthz).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	limiter := newRateLimiter(h.opts.RateLimit, h.opts.RateBurst)
	r.Use(observability.Instrument, demo.Middleware(authlib.SessionCookie), auth.NewMiddleware(h.opts.Auth).Wrap, limiter.Handler)

	h.registerAuth(r)
	h.registerGitHub(r)
	h.registerDashboard(r)
	h.registerGoals(r)
	h.registerTeam(r)
	h.registerDevices(r)
	h.registerLab(r)
	h.registerChat(r)
	h.registerFocus(r)

	r.HandleFunc("/api/security/scan", h.securityScan).Methods(http.MethodPost)
	r.HandleFunc("/api/activity", h.listActivity).Methods(http.MethodGet)

	admin := r.PathPrefix("/api/admin").Subrouter()
	admin.Use(h.requireAdmin)
	admin.HandleFunc("/users", h.adminListUsers).Methods(http.MethodGet)
	admin.HandleFunc("/users/{id}", h.adminDeleteUser).Methods(http.MethodDelete)
	admin.HandleFunc("/stats", h.adminStats).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "unsupported method")
	})

	return h.recoverer(h.requestLogger(newCORS(h.opts.CORSOrigins).Handler(r)))
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
