package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/devansh054/dev-pulse-sub000/internal/github"
	"github.com/devansh054/dev-pulse-sub000/internal/githubsync"
)

func (h *Handler) registerGitHub(r *mux.Router) {
	r.HandleFunc("/api/github/profile", h.githubProfile).Methods(http.MethodGet)
	r.HandleFunc("/api/github/repos", h.githubRepos).Methods(http.MethodGet)
	r.HandleFunc("/api/github/repos/{owner}/{repo}", h.githubRepoDetail).Methods(http.MethodGet)
	r.HandleFunc("/api/github/stats", h.githubStats).Methods(http.MethodGet)
	r.HandleFunc("/api/sync", h.sync).Methods(http.MethodPost)
}

func (h *Handler) githubProfile(w http.ResponseWriter, r *http.Request) {
	token, ok := requireGitHubToken(w, r)
	if !ok {
		return
	}
	profile, err := h.svc.GitHub.User(r.Context(), token)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) githubRepos(w http.ResponseWriter, r *http.Request) {
	token, ok := requireGitHubToken(w, r)
	if !ok {
		return
	}
	repos, err := h.svc.GitHub.Repositories(r.Context(), token)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if repos == nil {
		repos = []github.Repository{}
	}
	writeJSON(w, http.StatusOK, repos)
}

// repoActivityDays bounds the commit and issue history returned by the repository detail view.
const repoActivityDays = 30

// RepoDetail is a repository with its recent activity.
type RepoDetail struct {
	Repository   *github.Repository   `json:"repository"`
	Commits      []github.Commit      `json:"commits"`
	PullRequests []github.PullRequest `json:"pull_requests"`
	Issues       []github.Issue       `json:"issues"`
}

func (h *Handler) githubRepoDetail(w http.ResponseWriter, r *http.Request) {
	token, ok := requireGitHubToken(w, r)
	if !ok {
		return
	}
	vars := mux.Vars(r)
	owner, name := vars["owner"], vars["repo"]
	ctx := r.Context()

	repo, err := h.svc.GitHub.Repository(ctx, token, owner, name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	since := time.Now().UTC().AddDate(0, 0, -repoActivityDays)
	detail := RepoDetail{Repository: repo, Commits: []github.Commit{}, PullRequests: []github.PullRequest{}, Issues: []github.Issue{}}

	commits, err := h.svc.GitHub.RepoCommits(ctx, token, owner, name, since)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	detail.Commits = append(detail.Commits, commits...)

	pulls, err := h.svc.GitHub.RepoPulls(ctx, token, owner, name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	detail.PullRequests = append(detail.PullRequests, pulls...)

	issues, err := h.svc.GitHub.RepoIssues(ctx, token, owner, name, since)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	for _, issue := range issues {
		if !issue.IsPullRequest {
			detail.Issues = append(detail.Issues, issue)
		}
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *Handler) githubStats(w http.ResponseWriter, r *http.Request) {
	token, ok := requireGitHubToken(w, r)
	if !ok {
		return
	}
	repos, err := h.svc.GitHub.Repositories(r.Context(), token)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, github.Summarize(repos))
}

func (h *Handler) sync(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	token, ok := requireGitHubToken(w, r)
	if !ok {
		return
	}
	user, err := h.svc.Users.Get(r.Context(), claims.Subject)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	res, err := h.svc.Syncer.Sync(r.Context(), *user, token, githubsync.TriggerManual)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
