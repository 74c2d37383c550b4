package github

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	gh "github.com/google/go-github/v74/github"
)

// User is a GitHub account profile.
type User struct {
	ID          int64     `json:"id"`
	Login       string    `json:"login"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	AvatarURL   string    `json:"avatar_url"`
	Bio         string    `json:"bio"`
	PublicRepos int       `json:"public_repos"`
	Followers   int       `json:"followers"`
	Following   int       `json:"following"`
	CreatedAt   time.Time `json:"created_at"`
}

// License is the detected repository license.
type License struct {
	Key    string `json:"key"`
	Name   string `json:"name"`
	SPDXID string `json:"spdx_id"`
}

// Repository is the subset of repository metadata DevPulse consumes.
type Repository struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	FullName      string    `json:"full_name"`
	Description   string    `json:"description"`
	HTMLURL       string    `json:"html_url"`
	Private       bool      `json:"private"`
	Fork          bool      `json:"fork"`
	Archived      bool      `json:"archived"`
	Language      string    `json:"language"`
	Stars         int       `json:"stargazers_count"`
	Forks         int       `json:"forks_count"`
	OpenIssues    int       `json:"open_issues_count"`
	DefaultBranch string    `json:"default_branch"`
	License       *License  `json:"license"`
	PushedAt      time.Time `json:"pushed_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Event is one entry of a user's public activity stream. Payload stays raw because its shape depends on Type.
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Actor     string          `json:"actor"`
	Repo      string          `json:"repo"`
	CreatedAt time.Time       `json:"created_at"`
	Payload   json.RawMessage `json:"payload"`
}

// Commit is a repository commit summary.
type Commit struct {
	SHA         string    `json:"sha"`
	Message     string    `json:"message"`
	AuthorLogin string    `json:"author_login"`
	AuthoredAt  time.Time `json:"authored_at"`
}

// PullRequest is a pull request summary.
type PullRequest struct {
	Number    int        `json:"number"`
	Title     string     `json:"title"`
	State     string     `json:"state"`
	User      string     `json:"user"`
	CreatedAt time.Time  `json:"created_at"`
	MergedAt  *time.Time `json:"merged_at,omitempty"`
}

// Issue is an issue summary. Pull requests returned by the issues API are flagged.
type Issue struct {
	Number        int        `json:"number"`
	Title         string     `json:"title"`
	State         string     `json:"state"`
	User          string     `json:"user"`
	CreatedAt     time.Time  `json:"created_at"`
	ClosedAt      *time.Time `json:"closed_at,omitempty"`
	IsPullRequest bool       `json:"is_pull_request"`
}

// User returns the profile of the token owner.
func (c *Client) User(ctx context.Context, token string) (*User, error) {
	u, _, err := c.api(token).Users.Get(withEndpoint(ctx, "user"), "")
	if err != nil {
		return nil, mapError(err)
	}
	return toUser(u), nil
}

// UserByLogin returns the public profile of login.
func (c *Client) UserByLogin(ctx context.Context, token, login string) (*User, error) {
	u, _, err := c.api(token).Users.Get(withEndpoint(ctx, "users"), login)
	if err != nil {
		return nil, mapError(err)
	}
	return toUser(u), nil
}

// Repositories lists repositories the token owner can access, most recently updated first.
func (c *Client) Repositories(ctx context.Context, token string) ([]Repository, error) {
	api := c.api(token)
	items, err := paginate(withEndpoint(ctx, "user_repos"), func(ctx context.Context, page gh.ListOptions) ([]*gh.Repository, *gh.Response, error) {
		return api.Repositories.ListByAuthenticatedUser(ctx, &gh.RepositoryListByAuthenticatedUserOptions{Sort: "updated", ListOptions: page})
	})
	if err != nil {
		return nil, err
	}
	repos := make([]Repository, 0, len(items))
	for _, r := range items {
		repos = append(repos, toRepository(r))
	}
	return repos, nil
}

// Repository returns one repository.
func (c *Client) Repository(ctx context.Context, token, owner, repo string) (*Repository, error) {
	r, _, err := c.api(token).Repositories.Get(withEndpoint(ctx, "repo"), owner, repo)
	if err != nil {
		return nil, mapError(err)
	}
	out := toRepository(r)
	return &out, nil
}

// UserEvents lists the public events of login, newest first.
func (c *Client) UserEvents(ctx context.Context, token, login string) ([]Event, error) {
	api := c.api(token)
	items, err := paginate(withEndpoint(ctx, "user_events"), func(ctx context.Context, page gh.ListOptions) ([]*gh.Event, *gh.Response, error) {
		return api.Activity.ListEventsPerformedByUser(ctx, login, true, &page)
	})
	if err != nil {
		return nil, err
	}
	events := make([]Event, 0, len(items))
	for _, ev := range items {
		e := Event{
			ID:        ev.GetID(),
			Type:      ev.GetType(),
			Actor:     ev.GetActor().GetLogin(),
			Repo:      ev.GetRepo().GetName(),
			CreatedAt: ev.GetCreatedAt().Time.UTC(),
		}
		if ev.RawPayload != nil {
			e.Payload = *ev.RawPayload
		}
		events = append(events, e)
	}
	return events, nil
}

// RepoCommits lists commits on the default branch since the given time.
func (c *Client) RepoCommits(ctx context.Context, token, owner, repo string, since time.Time) ([]Commit, error) {
	api := c.api(token)
	items, err := paginate(withEndpoint(ctx, "repo_commits"), func(ctx context.Context, page gh.ListOptions) ([]*gh.RepositoryCommit, *gh.Response, error) {
		return api.Repositories.ListCommits(ctx, owner, repo, &gh.CommitsListOptions{Since: since.UTC(), ListOptions: page})
	})
	if err != nil {
		return nil, err
	}
	commits := make([]Commit, 0, len(items))
	for _, cm := range items {
		commits = append(commits, Commit{
			SHA:         cm.GetSHA(),
			Message:     cm.GetCommit().GetMessage(),
			AuthorLogin: cm.GetAuthor().GetLogin(),
			AuthoredAt:  cm.GetCommit().GetAuthor().GetDate().Time.UTC(),
		})
	}
	return commits, nil
}

// RepoPulls lists pull requests in any state.
func (c *Client) RepoPulls(ctx context.Context, token, owner, repo string) ([]PullRequest, error) {
	api := c.api(token)
	items, err := paginate(withEndpoint(ctx, "repo_pulls"), func(ctx context.Context, page gh.ListOptions) ([]*gh.PullRequest, *gh.Response, error) {
		return api.PullRequests.List(ctx, owner, repo, &gh.PullRequestListOptions{State: "all", ListOptions: page})
	})
	if err != nil {
		return nil, err
	}
	pulls := make([]PullRequest, 0, len(items))
	for _, pr := range items {
		pulls = append(pulls, PullRequest{
			Number:    pr.GetNumber(),
			Title:     pr.GetTitle(),
			State:     pr.GetState(),
			User:      pr.GetUser().GetLogin(),
			CreatedAt: pr.GetCreatedAt().Time.UTC(),
			MergedAt:  timePtr(pr.MergedAt),
		})
	}
	return pulls, nil
}

// RepoIssues lists issues in any state updated since the given time.
func (c *Client) RepoIssues(ctx context.Context, token, owner, repo string, since time.Time) ([]Issue, error) {
	api := c.api(token)
	items, err := paginate(withEndpoint(ctx, "repo_issues"), func(ctx context.Context, page gh.ListOptions) ([]*gh.Issue, *gh.Response, error) {
		return api.Issues.ListByRepo(ctx, owner, repo, &gh.IssueListByRepoOptions{State: "all", Since: since.UTC(), ListOptions: page})
	})
	if err != nil {
		return nil, err
	}
	issues := make([]Issue, 0, len(items))
	for _, is := range items {
		issues = append(issues, Issue{
			Number:        is.GetNumber(),
			Title:         is.GetTitle(),
			State:         is.GetState(),
			User:          is.GetUser().GetLogin(),
			CreatedAt:     is.GetCreatedAt().Time.UTC(),
			ClosedAt:      timePtr(is.ClosedAt),
			IsPullRequest: is.IsPullRequest(),
		})
	}
	return issues, nil
}

func toUser(u *gh.User) *User {
	return &User{
		ID:          u.GetID(),
		Login:       u.GetLogin(),
		Name:        u.GetName(),
		Email:       u.GetEmail(),
		AvatarURL:   u.GetAvatarURL(),
		Bio:         u.GetBio(),
		PublicRepos: u.GetPublicRepos(),
		Followers:   u.GetFollowers(),
		Following:   u.GetFollowing(),
		CreatedAt:   u.GetCreatedAt().Time.UTC(),
	}
}

func toRepository(r *gh.Repository) Repository {
	out := Repository{
		ID:            r.GetID(),
		Name:          r.GetName(),
		FullName:      r.GetFullName(),
		Description:   r.GetDescription(),
		HTMLURL:       r.GetHTMLURL(),
		Private:       r.GetPrivate(),
		Fork:          r.GetFork(),
		Archived:      r.GetArchived(),
		Language:      r.GetLanguage(),
		Stars:         r.GetStargazersCount(),
		Forks:         r.GetForksCount(),
		OpenIssues:    r.GetOpenIssuesCount(),
		DefaultBranch: r.GetDefaultBranch(),
		PushedAt:      r.GetPushedAt().Time.UTC(),
		UpdatedAt:     r.GetUpdatedAt().Time.UTC(),
	}
	if l := r.GetLicense(); l != nil {
		out.License = &License{Key: l.GetKey(), Name: l.GetName(), SPDXID: l.GetSPDXID()}
	}
	return out
}

func timePtr(ts *gh.Timestamp) *time.Time {
	if ts == nil {
		return nil
	}
	t := ts.Time.UTC()
	return &t
}

// RepoStats summarises a repository list for the dashboard.
type RepoStats struct {
	Repositories int            `json:"repositories"`
	Stars        int            `json:"stars"`
	Forks        int            `json:"forks"`
	OpenIssues   int            `json:"open_issues"`
	Languages    map[string]int `json:"languages"`
	TopLanguage  string         `json:"top_language"`
	Archived     int            `json:"archived"`
}

// Summarize totals stars, forks, open issues and language usage across repos.
func Summarize(repos []Repository) RepoStats {
	stats := RepoStats{Repositories: len(repos), Languages: map[string]int{}}
	for _, r := range repos {
		stats.Stars += r.Stars
		stats.Forks += r.Forks
		stats.OpenIssues += r.OpenIssues
		if r.Archived {
			stats.Archived++
		}
		if r.Language != "" {
			stats.Languages[r.Language]++
		}
	}

	langs := make([]string, 0, len(stats.Languages))
	for l := range stats.Languages {
		langs = append(langs, l)
	}
	sort.Slice(langs, func(i, j int) bool {
		if stats.Languages[langs[i]] != stats.Languages[langs[j]] {
			return stats.Languages[langs[i]] > stats.Languages[langs[j]]
		}
		return langs[i] < langs[j]
	})
	if len(langs) > 0 {
		stats.TopLanguage = langs[0]
	}
	return stats
}
