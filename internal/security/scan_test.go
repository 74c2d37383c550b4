package security

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/devansh054/dev-pulse-sub000/internal/domain"
	"github.com/devansh054/dev-pulse-sub000/internal/github"
	"github.com/devansh054/dev-pulse-sub000/internal/persistence/memory"
)

var now = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func healthyRepo(name string) github.Repository {
	return github.Repository{
		FullName:      name,
		Description:   "a tidy repo",
		DefaultBranch: "main",
		License:       &github.License{Key: "mit"},
		PushedAt:      now.AddDate(0, 0, -3),
	}
}

func rules(r RepoReport) []string {
	out := make([]string, 0, len(r.Findings))
	for _, f := range r.Findings {
		out = append(out, f.Rule)
	}
	return out
}

func TestHealthyRepositoryScoresFull(t *testing.T) {
	r := ScanRepository(healthyRepo("octo/clean"), now)
	require.Equal(t, 100, r.Score)
	require.Empty(t, r.Findings)
}

func TestEveryRuleFires(t *testing.T) {
	repo := github.Repository{
		FullName:      "octo/messy",
		DefaultBranch: "master",
		OpenIssues:    51,
		Fork:          true,
		Archived:      true,
		PushedAt:      now.AddDate(0, 0, -181),
	}
	r := ScanRepository(repo, now)
	require.Equal(t, []string{RuleNoLicense, RuleNoDescription, RuleMasterBranch, RuleStale, RuleOpenIssues, RulePublicFork, RuleArchived}, rules(r))
	require.Equal(t, 10, r.Score)
}

func TestScoreIsClampedAtZero(t *testing.T) {
	repo := github.Repository{FullName: "x/y", DefaultBranch: "master", OpenIssues: 500, Fork: true, Archived: true, PushedAt: now.AddDate(-3, 0, 0)}
	repo.Description = ""
	r := ScanRepository(repo, now)
	require.GreaterOrEqual(t, r.Score, 0)
}

func TestBoundariesAndPrivateForks(t *testing.T) {
	repo := healthyRepo("octo/edge")
	repo.OpenIssues = 50
	repo.PushedAt = now.Add(-staleAfter)
	repo.Fork = true
	repo.Private = true
	require.Empty(t, ScanRepository(repo, now).Findings)
}

func TestScanAggregates(t *testing.T) {
	archived := healthyRepo("octo/old")
	archived.Archived = true
	report := Scan([]github.Repository{healthyRepo("octo/a"), archived}, now)

	require.Equal(t, 87, report.Score)
	require.Equal(t, "B", report.Grade)
	require.Equal(t, 1, report.Findings)
	require.Equal(t, 1, report.BySeverity["high"])
	require.Equal(t, "octo/old", report.Repositories[0].FullName)

	empty := Scan(nil, now)
	require.Equal(t, 100, empty.Score)
	require.Equal(t, "A", empty.Grade)
	require.NotNil(t, empty.Repositories)
}

type staticLister struct {
	repos []github.Repository
	err   error
}

func (s staticLister) Repositories(context.Context, string) ([]github.Repository, error) {
	return s.repos, s.err
}

func TestScannerRecordsActivity(t *testing.T) {
	store := memory.NewStore()
	scanner := NewScanner(staticLister{repos: []github.Repository{healthyRepo("octo/a")}}, domain.NewActivityService(store))
	scanner.now = func() time.Time { return now }

	report, err := scanner.Run(context.Background(), "u1", "token")
	require.NoError(t, err)
	require.Equal(t, 100, report.Score)

	logs, _, err := store.ListActivity(context.Background(), "u1", nil, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, "security.scan", logs[0].Action)
	require.JSONEq(t, `{"score":100,"grade":"A","findings":0,"repositories":1}`, string(logs[0].Detail))
}

func TestScannerPropagatesGitHubErrors(t *testing.T) {
	scanner := NewScanner(staticLister{err: github.ErrUnauthorized}, domain.NewActivityService(memory.NewStore()))
	_, err := scanner.Run(context.Background(), "u1", "bad")
	require.True(t, errors.Is(err, github.ErrUnauthorized))
}
