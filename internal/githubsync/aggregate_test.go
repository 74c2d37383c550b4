package githubsync

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/devansh054/dev-pulse-sub000/internal/github"
)

// 2025-01-10 is a Friday.
var friday = time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)

func event(typ string, at time.Time, payload string) github.Event {
	return github.Event{Type: typ, CreatedAt: at, Payload: json.RawMessage(payload)}
}

func TestAggregateCountsPushesAndLateNight(t *testing.T) {
	evs := []github.Event{
		event("PushEvent", friday.Add(10*time.Hour), `{"size":3}`),
		event("PushEvent", friday.Add(23*time.Hour), `{"size":2}`),
		event("PushEvent", friday.Add(2*time.Hour), `{"commits":[{"sha":"a"}]}`),
	}

	rows := Aggregate("u1", evs, friday, friday)
	require.Len(t, rows, 1)
	row := rows[0]
	require.Equal(t, 6, row.Commits)
	require.Equal(t, 3, row.LateNightCommits)
	// 30+40, 30+20, 30
	require.Equal(t, 150, row.CodingMinutes)
	require.False(t, row.WeekendWork)
}

func TestAggregateCapsCodingMinutes(t *testing.T) {
	rows := Aggregate("u1", []github.Event{event("PushEvent", friday.Add(12*time.Hour), `{"size":100}`)}, friday, friday)
	require.Equal(t, 600, rows[0].CodingMinutes)
	require.Equal(t, 100, rows[0].Commits)
}

func TestAggregatePullRequestsReviewsIssues(t *testing.T) {
	at := friday.Add(12 * time.Hour)
	evs := []github.Event{
		event("PullRequestEvent", at, `{"action":"opened"}`),
		event("PullRequestEvent", at, `{"action":"closed","pull_request":{"merged":true}}`),
		event("PullRequestEvent", at, `{"action":"closed","pull_request":{"merged":false}}`),
		event("PullRequestReviewEvent", at, `{"action":"created"}`),
		event("IssuesEvent", at, `{"action":"opened"}`),
		event("IssuesEvent", at, `{"action":"closed"}`),
		event("WatchEvent", at, `{"action":"started"}`),
	}

	row := Aggregate("u1", evs, friday, friday)[0]
	require.Equal(t, 1, row.PullRequestsOpened)
	require.Equal(t, 1, row.PullRequestsMerged)
	require.Equal(t, 1, row.Reviews)
	require.Equal(t, 1, row.IssuesOpened)
	require.Equal(t, 1, row.IssuesClosed)
	require.Zero(t, row.Commits)
}

func TestAggregateFillsRangeAndFlagsWeekend(t *testing.T) {
	saturday := friday.AddDate(0, 0, 1)
	sunday := friday.AddDate(0, 0, 2)
	evs := []github.Event{
		event("PushEvent", saturday.Add(15*time.Hour), `{"size":1}`),
		event("WatchEvent", sunday.Add(15*time.Hour), `{}`),
		event("PushEvent", friday.AddDate(0, 0, -5), `{"size":9}`),
	}

	rows := Aggregate("u1", evs, friday, sunday)
	require.Len(t, rows, 3)
	require.True(t, rows[0].Date.Equal(friday))
	require.False(t, rows[0].WeekendWork)
	require.True(t, rows[1].WeekendWork)
	require.False(t, rows[2].WeekendWork, "events outside the tracked types do not count as work")
	require.Equal(t, 1, TotalCommits(rows))
}

func TestAggregateEmptyRange(t *testing.T) {
	require.Empty(t, Aggregate("u1", nil, friday, friday.AddDate(0, 0, -1)))
}
