// Package security scores GitHub repositories against a fixed set of hygiene rules.
package security

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/devansh054/dev-pulse-sub000/internal/domain"
	"github.com/devansh054/dev-pulse-sub000/internal/github"
)

// Rule identifiers.
const (
	RuleNoLicense     = "no-license"
	RuleNoDescription = "no-description"
	RuleMasterBranch  = "default-branch-master"
	RuleStale         = "stale"
	RuleOpenIssues    = "many-open-issues"
	RulePublicFork    = "public-fork"
	RuleArchived      = "archived"
)

const (
	staleAfter         = 180 * 24 * time.Hour
	openIssueThreshold = 50
)

// Finding is one rule violation.
type Finding struct {
	Rule     string `json:"rule"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Weight   int    `json:"weight"`
}

// RepoReport scores a single repository.
type RepoReport struct {
	FullName string    `json:"full_name"`
	Score    int       `json:"score"`
	Findings []Finding `json:"findings"`
}

// Report aggregates every scanned repository. Score is the mean repository score.
type Report struct {
	Score        int            `json:"score"`
	Grade        string         `json:"grade"`
	Findings     int            `json:"findings"`
	BySeverity   map[string]int `json:"by_severity"`
	Repositories []RepoReport   `json:"repositories"`
	ScannedAt    time.Time      `json:"scanned_at"`
}

// ScanRepository applies every rule to repo. The score is 100 minus the finding weights, floored at 0.
func ScanRepository(repo github.Repository, now time.Time) RepoReport {
	findings := make([]Finding, 0, 4)
	add := func(rule, severity, msg string, weight int) {
		findings = append(findings, Finding{Rule: rule, Severity: severity, Message: msg, Weight: weight})
	}

	if repo.License == nil || repo.License.Key == "" {
		add(RuleNoLicense, "medium", "No license detected; reuse terms are unclear.", 15)
	}
	if strings.TrimSpace(repo.Description) == "" {
		add(RuleNoDescription, "low", "Repository has no description.", 5)
	}
	if repo.DefaultBranch == "master" {
		add(RuleMasterBranch, "low", "Default branch is still named master.", 5)
	}
	if !repo.PushedAt.IsZero() && now.Sub(repo.PushedAt) > staleAfter {
		add(RuleStale, "medium", fmt.Sprintf("No push since %s; dependencies may be outdated.", repo.PushedAt.Format("2006-01-02")), 20)
	}
	if repo.OpenIssues > openIssueThreshold {
		add(RuleOpenIssues, "medium", fmt.Sprintf("%d open issues; triage may be lagging.", repo.OpenIssues), 10)
	}
	if repo.Fork && !repo.Private {
		add(RulePublicFork, "low", "Public fork; upstream security fixes must be merged manually.", 10)
	}
	if repo.Archived {
		add(RuleArchived, "high", "Archived repository no longer receives fixes.", 25)
	}

	score := 100
	for _, f := range findings {
		score -= f.Weight
	}
	if score < 0 {
		score = 0
	}
	return RepoReport{FullName: repo.FullName, Score: score, Findings: findings}
}

// Scan evaluates all repos. Repositories are ordered worst score first.
func Scan(repos []github.Repository, now time.Time) Report {
	report := Report{
		Score:        100,
		BySeverity:   map[string]int{"low": 0, "medium": 0, "high": 0},
		Repositories: make([]RepoReport, 0, len(repos)),
		ScannedAt:    now.UTC(),
	}
	total := 0
	for _, repo := range repos {
		rr := ScanRepository(repo, now)
		total += rr.Score
		report.Findings += len(rr.Findings)
		for _, f := range rr.Findings {
			report.BySeverity[f.Severity]++
		}
		report.Repositories = append(report.Repositories, rr)
	}
	if len(repos) > 0 {
		report.Score = total / len(repos)
	}
	report.Grade = grade(report.Score)

	sort.SliceStable(report.Repositories, func(i, j int) bool {
		if report.Repositories[i].Score != report.Repositories[j].Score {
			return report.Repositories[i].Score < report.Repositories[j].Score
		}
		return report.Repositories[i].FullName < report.Repositories[j].FullName
	})
	return report
}

func grade(score int) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 75:
		return "B"
	case score >= 60:
		return "C"
	case score >= 40:
		return "D"
	default:
		return "F"
	}
}

// RepoLister fetches a user's repositories.
type RepoLister interface {
	Repositories(ctx context.Context, token string) ([]github.Repository, error)
}

// Scanner runs scans for a user and records them in the activity log.
type Scanner struct {
	repos    RepoLister
	activity *domain.ActivityService
	now      func() time.Time
}

// NewScanner constructs a Scanner.
func NewScanner(repos RepoLister, activity *domain.ActivityService) *Scanner {
	return &Scanner{repos: repos, activity: activity, now: time.Now}
}

type scanDetail struct {
	Score        int    `json:"score"`
	Grade        string `json:"grade"`
	Findings     int    `json:"findings"`
	Repositories int    `json:"repositories"`
}

// Run scans every repository visible to token.
func (s *Scanner) Run(ctx context.Context, userID, token string) (*Report, error) {
	repos, err := s.repos.Repositories(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("list repositories: %w", err)
	}
	report := Scan(repos, s.now())
	if err := s.activity.Record(ctx, userID, "security.scan", scanDetail{
		Score:        report.Score,
		Grade:        report.Grade,
		Findings:     report.Findings,
		Repositories: len(report.Repositories),
	}); err != nil {
		return nil, err
	}
	return &report, nil
}
