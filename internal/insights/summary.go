package insights

import (
	"context"
	"time"

	"github.com/devansh054/dev-pulse-sub000/internal/domain"
	"github.com/devansh054/dev-pulse-sub000/internal/scoring"
)

// Totals sums the tracked counters over the summary window.
type Totals struct {
	Commits            int `json:"commits"`
	PullRequestsOpened int `json:"pull_requests_opened"`
	PullRequestsMerged int `json:"pull_requests_merged"`
	Reviews            int `json:"reviews"`
	IssuesOpened       int `json:"issues_opened"`
	IssuesClosed       int `json:"issues_closed"`
	CodingMinutes      int `json:"coding_minutes"`
	FocusMinutes       int `json:"focus_minutes"`
}

// Summary feeds the dashboard landing page.
type Summary struct {
	Days          int                        `json:"days"`
	ActiveDays    int                        `json:"active_days"`
	CurrentStreak int                        `json:"current_streak"`
	LongestStreak int                        `json:"longest_streak"`
	Totals        Totals                     `json:"totals"`
	Health        scoring.HealthResult       `json:"health"`
	Trend         scoring.Trend              `json:"trend"`
	Burnout       *scoring.BurnoutPrediction `json:"burnout"`
	Daily         []domain.DailyMetric       `json:"daily"`
}

// Summary computes dashboard totals and scores without persisting anything.
func (s *Service) Summary(ctx context.Context, userID string) (*Summary, error) {
	rows, err := s.trailing(ctx, userID)
	if err != nil {
		return nil, err
	}

	sum := &Summary{
		Days:    len(rows),
		Health:  scoring.HealthScore(rows, s.thresholds),
		Trend:   scoring.ProductivityTrend(rows),
		Burnout: scoring.GenerateBurnoutPrediction(rows, s.thresholds),
		Daily:   rows,
	}

	active := make(map[time.Time]bool, len(rows))
	for _, r := range rows {
		sum.Totals.Commits += r.Commits
		sum.Totals.PullRequestsOpened += r.PullRequestsOpened
		sum.Totals.PullRequestsMerged += r.PullRequestsMerged
		sum.Totals.Reviews += r.Reviews
		sum.Totals.IssuesOpened += r.IssuesOpened
		sum.Totals.IssuesClosed += r.IssuesClosed
		sum.Totals.CodingMinutes += r.CodingMinutes
		sum.Totals.FocusMinutes += r.FocusMinutes
		if r.Active() {
			active[domain.DayStart(r.Date)] = true
		}
	}
	sum.ActiveDays = len(active)

	today := domain.DayStart(s.now())
	from := today.AddDate(0, 0, -(lookbackDays - 1))
	run := 0
	for day := from; !day.After(today); day = day.AddDate(0, 0, 1) {
		if active[day] {
			run++
			if run > sum.LongestStreak {
				sum.LongestStreak = run
			}
		} else {
			run = 0
		}
	}
	// Today without activity yet does not break the streak.
	end := today
	if !active[end] {
		end = end.AddDate(0, 0, -1)
	}
	for day := end; !day.Before(from) && active[day]; day = day.AddDate(0, 0, -1) {
		sum.CurrentStreak++
	}
	return sum, nil
}
