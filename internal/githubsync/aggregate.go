// Package githubsync turns a user's public GitHub events into daily metric rows.
package githubsync

import (
	"time"

	"github.com/tidwall/gjson"

	"github.com/devansh054/dev-pulse-sub000/internal/domain"
	"github.com/devansh054/dev-pulse-sub000/internal/github"
)

const (
	minutesPerPush      = 30
	minutesPerExtraCmt  = 20
	maxCodingMinutesDay = 600
)

// Aggregate buckets events into one row per UTC day in [from, to]. Days without events get zero rows.
func Aggregate(userID string, events []github.Event, from, to time.Time) []domain.DailyMetric {
	from, to = domain.DayStart(from), domain.DayStart(to)
	if to.Before(from) {
		return []domain.DailyMetric{}
	}

	index := make(map[time.Time]int)
	rows := make([]domain.DailyMetric, 0, int(to.Sub(from).Hours()/24)+1)
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		index[day] = len(rows)
		rows = append(rows, domain.DailyMetric{UserID: userID, Date: day})
	}

	for _, ev := range events {
		at := ev.CreatedAt.UTC()
		i, ok := index[domain.DayStart(at)]
		if !ok {
			continue
		}
		row := &rows[i]
		payload := gjson.ParseBytes(ev.Payload)

		switch ev.Type {
		case "PushEvent":
			size := pushSize(payload)
			row.Commits += size
			if isLateNight(at) {
				row.LateNightCommits += size
			}
			row.CodingMinutes += minutesPerPush
			if size > 1 {
				row.CodingMinutes += minutesPerExtraCmt * (size - 1)
			}
			if row.CodingMinutes > maxCodingMinutesDay {
				row.CodingMinutes = maxCodingMinutesDay
			}
		case "PullRequestEvent":
			switch payload.Get("action").String() {
			case "opened", "reopened":
				row.PullRequestsOpened++
			case "closed":
				if payload.Get("pull_request.merged").Bool() {
					row.PullRequestsMerged++
				}
			}
		case "PullRequestReviewEvent":
			row.Reviews++
		case "IssuesEvent":
			switch payload.Get("action").String() {
			case "opened", "reopened":
				row.IssuesOpened++
			case "closed":
				row.IssuesClosed++
			}
		default:
			continue
		}

		if wd := at.Weekday(); wd == time.Saturday || wd == time.Sunday {
			row.WeekendWork = true
		}
	}
	return rows
}

// pushSize prefers payload.size and falls back to the embedded commit list.
func pushSize(payload gjson.Result) int {
	if size := payload.Get("size"); size.Exists() {
		return int(size.Int())
	}
	if n := payload.Get("commits.#"); n.Exists() && n.Int() > 0 {
		return int(n.Int())
	}
	return 1
}

func isLateNight(t time.Time) bool {
	h := t.Hour()
	return h < 5 || h >= 22
}

// TotalCommits sums commits across rows.
func TotalCommits(rows []domain.DailyMetric) int {
	total := 0
	for _, r := range rows {
		total += r.Commits
	}
	return total
}
