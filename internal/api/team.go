package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/devansh054/dev-pulse-sub000/internal/auth"
	"github.com/devansh054/dev-pulse-sub000/internal/domain"
	"github.com/devansh054/dev-pulse-sub000/internal/github"
	"github.com/devansh054/dev-pulse-sub000/internal/githubsync"
	"github.com/devansh054/dev-pulse-sub000/internal/scoring"
)

// teamStatsDays is the event window counted for a new member.
const teamStatsDays = 30

// AddMemberRequest is the payload for POST /api/team/members.
type AddMemberRequest struct {
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

func (h *Handler) registerTeam(r *mux.Router) {
	r.HandleFunc("/api/team", h.listTeam).Methods(http.MethodGet)
	r.HandleFunc("/api/team/members", h.addTeamMember).Methods(http.MethodPost)
	r.HandleFunc("/api/team/members/{login}", h.removeTeamMember).Methods(http.MethodDelete)
	r.HandleFunc("/api/team/rankings", h.teamRankings).Methods(http.MethodGet)
}

func (h *Handler) listTeam(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	members, err := h.svc.Team.List(r.Context(), claims.Subject)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if members == nil {
		members = []domain.TeamMemberProfile{}
	}
	writeJSON(w, http.StatusOK, members)
}

func (h *Handler) addTeamMember(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req AddMemberRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	member := domain.TeamMemberProfile{
		Login:     strings.TrimSpace(req.Login),
		Name:      req.Name,
		AvatarURL: req.AvatarURL,
	}
	if token, ok := auth.GitHubToken(r.Context()); ok && member.Login != "" {
		if err := h.enrichMember(r.Context(), token, &member); err != nil {
			if errors.Is(err, github.ErrNotFound) {
				h.fail(w, r, err)
				return
			}
			h.log.WithError(err).WithField("login", member.Login).Warn("team member stats unavailable")
		}
	}

	added, err := h.svc.Team.Add(r.Context(), claims.Subject, member)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

// enrichMember fills the profile and contribution counters from the login's public events.
func (h *Handler) enrichMember(ctx context.Context, token string, member *domain.TeamMemberProfile) error {
	profile, err := h.svc.GitHub.UserByLogin(ctx, token, member.Login)
	if err != nil {
		return err
	}
	member.Login = profile.Login
	if member.Name == "" {
		member.Name = profile.Name
	}
	if member.AvatarURL == "" {
		member.AvatarURL = profile.AvatarURL
	}

	events, err := h.svc.GitHub.UserEvents(ctx, token, profile.Login)
	if err != nil {
		return err
	}
	to := domain.DayStart(time.Now())
	for _, day := range githubsync.Aggregate("", events, to.AddDate(0, 0, -(teamStatsDays-1)), to) {
		member.Commits += day.Commits
		member.PullRequests += day.PullRequestsOpened
		member.Reviews += day.Reviews
		member.IssuesClosed += day.IssuesClosed
	}
	return nil
}

func (h *Handler) removeTeamMember(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	if err := h.svc.Team.Remove(r.Context(), claims.Subject, mux.Vars(r)["login"]); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (h *Handler) teamRankings(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	members, err := h.svc.Team.List(r.Context(), claims.Subject)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, scoring.TransformToRebelRanking(members))
}
