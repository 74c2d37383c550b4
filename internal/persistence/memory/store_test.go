package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/devansh054/dev-pulse-sub000/internal/domain"
)

var day = time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)

func seedUser(t *testing.T, s *Store, id string, githubID int64) {
	t.Helper()
	_, err := s.UpsertUser(context.Background(), domain.User{ID: id, GitHubID: githubID, Login: id, Role: "member", CreatedAt: day})
	require.NoError(t, err)
}

func TestUpsertUserMatchesGitHubID(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	seedUser(t, s, "u1", 7)

	stored, err := s.UpsertUser(ctx, domain.User{ID: "fresh-id", GitHubID: 7, Login: "renamed"})
	require.NoError(t, err)
	require.Equal(t, "u1", stored.ID)
	require.Equal(t, "renamed", stored.Login)

	users, err := s.ListUsers(ctx, 10)
	require.NoError(t, err)
	require.Len(t, users, 1)
}

func TestUpsertDailyMetricsPreservesFocus(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	require.NoError(t, s.AddFocusMinutes(ctx, "u1", day.Add(10*time.Hour), 45))

	entry := domain.NewActivity("u1", "github.synced", nil, day)
	events := []domain.OutboxEvent{{EventType: "metrics.synced", AggregateID: "u1"}}
	require.NoError(t, s.UpsertDailyMetrics(ctx, "u1", []domain.DailyMetric{{Date: day, Commits: 4}}, entry, events))

	rows, err := s.ListDailyMetrics(ctx, "u1", day, day)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, 4, rows[0].Commits)
	require.Equal(t, 45, rows[0].FocusMinutes)
	require.Len(t, s.OutboxEvents(), 1)

	logs, _, err := s.ListActivity(ctx, "u1", nil, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
}

func TestTeamMembersUniquePerOwner(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	require.NoError(t, s.AddMember(ctx, domain.TeamMemberProfile{ID: "m1", OwnerID: "o1", Login: "Octocat"}))
	require.ErrorIs(t, s.AddMember(ctx, domain.TeamMemberProfile{ID: "m2", OwnerID: "o1", Login: "octocat"}), domain.ErrConflict)
	require.NoError(t, s.AddMember(ctx, domain.TeamMemberProfile{ID: "m3", OwnerID: "o2", Login: "octocat"}))

	require.NoError(t, s.RemoveMember(ctx, "o1", "OCTOCAT"))
	require.ErrorIs(t, s.RemoveMember(ctx, "o1", "octocat"), domain.ErrNotFound)
}

func TestActivityPagination(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, s.AppendActivity(ctx, domain.ActivityLog{
			ID:        fmt.Sprintf("a%d", i),
			UserID:    "u1",
			Action:    "test",
			CreatedAt: day.Add(time.Duration(i) * time.Minute),
		}))
	}

	first, next, err := s.ListActivity(ctx, "u1", nil, 2)
	require.NoError(t, err)
	require.Equal(t, []string{"a4", "a3"}, ids(first))
	require.NotNil(t, next)

	second, next, err := s.ListActivity(ctx, "u1", next, 2)
	require.NoError(t, err)
	require.Equal(t, []string{"a2", "a1"}, ids(second))

	third, next, err := s.ListActivity(ctx, "u1", next, 2)
	require.NoError(t, err)
	require.Equal(t, []string{"a0"}, ids(third))
	require.Nil(t, next)
}

func ids(logs []domain.ActivityLog) []string {
	out := make([]string, 0, len(logs))
	for _, l := range logs {
		out = append(out, l.ID)
	}
	return out
}

func TestDeleteUserCascades(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	seedUser(t, s, "u1", 1)
	seedUser(t, s, "u2", 2)

	require.NoError(t, s.AddFocusMinutes(ctx, "u1", day, 10))
	require.NoError(t, s.CreateGoal(ctx, domain.Goal{ID: "g1", UserID: "u1"}))
	require.NoError(t, s.AddMember(ctx, domain.TeamMemberProfile{ID: "m1", OwnerID: "u1", Login: "x"}))
	_, _, err := s.UpsertDevice(ctx, domain.Device{ID: "d1", UserID: "u1", Fingerprint: "f"})
	require.NoError(t, err)
	require.NoError(t, s.CreateExperiment(ctx, domain.Experiment{ID: "e1", UserID: "u1"}))
	require.NoError(t, s.AddBenchmark(ctx, domain.ExperimentBenchmark{ID: "b1", ExperimentID: "e1"}))
	require.NoError(t, s.AppendActivity(ctx, domain.ActivityLog{ID: "a1", UserID: "u1"}))
	require.NoError(t, s.AppendActivity(ctx, domain.ActivityLog{ID: "a2", UserID: "u2"}))

	require.NoError(t, s.DeleteUser(ctx, "u1"))
	require.ErrorIs(t, s.DeleteUser(ctx, "u1"), domain.ErrNotFound)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.StoreStats{Users: 1, ActivityLogs: 1}, stats)
}

func TestUpsertDeviceRefreshesExisting(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	_, created, err := s.UpsertDevice(ctx, domain.Device{ID: "d1", UserID: "u1", Fingerprint: "fp", LastSeenAt: day})
	require.NoError(t, err)
	require.True(t, created)

	later := day.Add(time.Hour)
	d, created, err := s.UpsertDevice(ctx, domain.Device{ID: "d2", UserID: "u1", Fingerprint: "fp", LastSeenAt: later})
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, "d1", d.ID)
	require.True(t, later.Equal(d.LastSeenAt))
}

func TestReplaceInsightsKeepsDismissed(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	require.NoError(t, s.ReplaceInsights(ctx, "u1", []domain.Insight{{ID: "i1"}, {ID: "i2"}}, nil))
	require.NoError(t, s.DismissInsight(ctx, "u1", "i1"))
	require.ErrorIs(t, s.DismissInsight(ctx, "u2", "i2"), domain.ErrNotFound)

	require.NoError(t, s.ReplaceInsights(ctx, "u1", []domain.Insight{{ID: "i3"}}, nil))

	active, err := s.ListInsights(ctx, "u1", false)
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, "i3", active[0].ID)

	all, err := s.ListInsights(ctx, "u1", true)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestAppendActivityIgnoresDuplicateID(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	entry := domain.ActivityLog{ID: "dup", UserID: "u1", Action: "first", CreatedAt: day}
	require.NoError(t, s.AppendActivity(ctx, entry))
	entry.Action = "second"
	require.NoError(t, s.AppendActivity(ctx, entry))

	logs, _, err := s.ListActivity(ctx, "u1", nil, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, "first", logs[0].Action)
}
