package domain_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/devansh054/dev-pulse-sub000/internal/domain"
	"github.com/devansh054/dev-pulse-sub000/internal/persistence/memory"
	"github.com/devansh054/dev-pulse-sub000/internal/secrets"
)

func TestUserSignInPromotesAdminsAndSealsToken(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	sealer, err := secrets.NewSealer("seal-key")
	require.NoError(t, err)
	users := domain.NewUserService(store, store, sealer, []string{"OctoCat"})

	_, err = users.SignIn(ctx, domain.GitHubProfile{Login: "nobody"}, "")
	require.ErrorIs(t, err, domain.ErrValidation)

	admin, err := users.SignIn(ctx, domain.GitHubProfile{ID: 1, Login: "octocat"}, "gho_secret")
	require.NoError(t, err)
	require.Equal(t, "admin", admin.Role)
	require.NotContains(t, string(admin.SealedToken), "gho_secret")

	token, err := users.AccessToken(*admin)
	require.NoError(t, err)
	require.Equal(t, "gho_secret", token)

	member, err := users.SignIn(ctx, domain.GitHubProfile{ID: 2, Login: "hubot"}, "")
	require.NoError(t, err)
	require.Equal(t, "member", member.Role)
	_, err = users.AccessToken(*member)
	require.Error(t, err)

	withTokens, err := users.WithStoredTokens(ctx)
	require.NoError(t, err)
	require.Len(t, withTokens, 1)

	_, err = users.Get(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGoalProgressTracksToday(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	goals := domain.NewGoalService(store, store)
	metrics := domain.NewMetricService(store)

	_, err := goals.Create(ctx, "u1", domain.GoalInput{Title: "x", Metric: "lines", Target: 1, Period: domain.GoalDaily})
	require.ErrorIs(t, err, domain.ErrValidation)

	goal, err := goals.Create(ctx, "u1", domain.GoalInput{Title: " Deep work ", Metric: domain.GoalMetricFocusMinutes, Target: 60, Period: domain.GoalDaily})
	require.NoError(t, err)
	require.Equal(t, "Deep work", goal.Title)

	require.NoError(t, metrics.AddFocus(ctx, "u1", 30))
	require.ErrorIs(t, metrics.AddFocus(ctx, "u1", 25*60), domain.ErrValidation)

	progress, err := goals.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, progress, 1)
	require.Equal(t, 30, progress[0].Current)
	require.Equal(t, 50.0, progress[0].Percent)

	_, err = goals.Update(ctx, "u2", goal.ID, domain.GoalInput{Title: "x", Metric: domain.GoalMetricCommits, Target: 1, Period: domain.GoalDaily}, false)
	require.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, goals.Delete(ctx, "u1", goal.ID))
	require.ErrorIs(t, goals.Delete(ctx, "u1", goal.ID), domain.ErrNotFound)
}

func TestTeamLoginsAreUniquePerOwner(t *testing.T) {
	ctx := context.Background()
	team := domain.NewTeamService(memory.NewStore())

	member, err := team.Add(ctx, "owner", domain.TeamMemberProfile{Login: " octocat "})
	require.NoError(t, err)
	require.Equal(t, "octocat", member.Name)

	_, err = team.Add(ctx, "owner", domain.TeamMemberProfile{Login: "OctoCat"})
	require.ErrorIs(t, err, domain.ErrConflict)

	_, err = team.Add(ctx, "other-owner", domain.TeamMemberProfile{Login: "octocat"})
	require.NoError(t, err)

	_, err = team.Add(ctx, "owner", domain.TeamMemberProfile{})
	require.ErrorIs(t, err, domain.ErrValidation)

	require.NoError(t, team.Remove(ctx, "owner", "octocat"))
	require.ErrorIs(t, team.Remove(ctx, "owner", "octocat"), domain.ErrNotFound)
}

func TestClassifyUserAgent(t *testing.T) {
	cases := map[string]domain.DeviceInfo{
		"": {Kind: "unknown", OS: "unknown", Browser: "unknown"},
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_0) AppleWebKit/605.1.15 Version/17.0 Safari/605.1.15": {Kind: "desktop", OS: "macOS", Browser: "Safari"},
		"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) Mobile/15E148 Safari/604.1":              {Kind: "mobile", OS: "iOS", Browser: "Safari"},
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/120.0 Safari/537.36 Edg/120.0":                 {Kind: "desktop", OS: "Windows", Browser: "Edge"},
		"Mozilla/5.0 (Linux; Android 14; Pixel Tablet) Chrome/120.0 Safari/537.36":                       {Kind: "tablet", OS: "Android", Browser: "Chrome"},
		"curl/8.4.0": {Kind: "bot", OS: "unknown", Browser: "curl"},
	}
	for ua, want := range cases {
		require.Equal(t, want, domain.ClassifyUserAgent(ua), ua)
	}
}

func TestDeviceRegisterIsIdempotentPerFingerprint(t *testing.T) {
	ctx := context.Background()
	devices := domain.NewDeviceService(memory.NewStore())
	ua := "Mozilla/5.0 (X11; Linux x86_64) Firefox/121.0"

	_, _, err := devices.Register(ctx, "u1", "", "", "")
	require.ErrorIs(t, err, domain.ErrValidation)

	first, created, err := devices.Register(ctx, "u1", ua, "", "")
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, "Firefox on Linux", first.Name)

	second, created, err := devices.Register(ctx, "u1", ua, "", "")
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, first.ID, second.ID)

	trusted, err := devices.SetTrusted(ctx, "u1", first.ID, true)
	require.NoError(t, err)
	require.True(t, trusted.Trusted)

	_, err = devices.Heartbeat(ctx, "u2", first.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSummariseRuns(t *testing.T) {
	latency := domain.ExperimentBenchmark{ID: "b1", Name: "p95", Baseline: 200, Target: 150, LowerIsBetter: true}
	throughput := domain.ExperimentBenchmark{ID: "b2", Name: "rps", Baseline: 100, Target: 150}
	idle := domain.ExperimentBenchmark{ID: "b3", Name: "unused"}
	now := time.Now()

	results := domain.SummariseRuns([]domain.ExperimentBenchmark{latency, throughput, idle}, []domain.ExperimentTestRun{
		{BenchmarkID: "b1", Value: 180, RanAt: now},
		{BenchmarkID: "b1", Value: 140, RanAt: now.Add(time.Minute)},
		{BenchmarkID: "b1", Value: 160, RanAt: now.Add(2 * time.Minute)},
		{BenchmarkID: "b2", Value: 120, RanAt: now},
	})
	require.Len(t, results, 3)

	require.Equal(t, 3, results[0].Runs)
	require.Equal(t, 160.0, *results[0].Latest)
	require.Equal(t, 140.0, *results[0].Best)
	require.Equal(t, 30.0, results[0].Improvement)
	require.True(t, results[0].TargetMet)

	require.Equal(t, 20.0, results[1].Improvement)
	require.False(t, results[1].TargetMet)

	require.Zero(t, results[2].Runs)
	require.Nil(t, results[2].Latest)
}

func TestLabRejectsRunsForUnknownBenchmarks(t *testing.T) {
	ctx := context.Background()
	lab := domain.NewLabService(memory.NewStore())

	exp, err := lab.Create(ctx, "u1", domain.ExperimentInput{Name: "cache warmup"})
	require.NoError(t, err)
	require.Equal(t, domain.ExperimentDraft, exp.Status)

	_, err = lab.Create(ctx, "u1", domain.ExperimentInput{Name: "x", Status: "paused"})
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = lab.RecordRun(ctx, "u1", exp.ID, domain.ExperimentTestRun{BenchmarkID: "nope", Value: 1})
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = lab.Get(ctx, "u2", exp.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}
