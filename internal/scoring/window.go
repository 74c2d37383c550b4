package scoring

import (
	"sort"
	"time"

	"github.com/devansh054/dev-pulse-sub000/internal/domain"
)

// window holds the trailing days selected for scoring, oldest first.
type window struct {
	days  []domain.DailyMetric
	first time.Time
	last  time.Time
}

// spanDays counts calendar days between the first and last row inclusive.
func (w window) spanDays() int {
	if len(w.days) == 0 {
		return 0
	}
	return int(w.last.Sub(w.first).Hours()/24) + 1
}

// trailingWindow merges rows sharing a date and keeps the size most recent distinct dates.
func trailingWindow(metrics []domain.DailyMetric, size int) window {
	merged := make(map[time.Time]domain.DailyMetric, len(metrics))
	for _, m := range metrics {
		day := domain.DayStart(m.Date)
		acc, ok := merged[day]
		if !ok {
			acc = domain.DailyMetric{UserID: m.UserID, Date: day}
		}
		acc.Commits += m.Commits
		acc.PullRequestsOpened += m.PullRequestsOpened
		acc.PullRequestsMerged += m.PullRequestsMerged
		acc.IssuesOpened += m.IssuesOpened
		acc.IssuesClosed += m.IssuesClosed
		acc.Reviews += m.Reviews
		acc.CodingMinutes += m.CodingMinutes
		acc.FocusMinutes += m.FocusMinutes
		acc.LateNightCommits += m.LateNightCommits
		acc.WeekendWork = acc.WeekendWork || m.WeekendWork
		merged[day] = acc
	}

	days := make([]domain.DailyMetric, 0, len(merged))
	for _, m := range merged {
		days = append(days, m)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })
	if size > 0 && len(days) > size {
		days = days[len(days)-size:]
	}

	w := window{days: days}
	if len(days) > 0 {
		w.first = days[0].Date
		w.last = days[len(days)-1].Date
	}
	return w
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
