package scoring

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/devansh054/dev-pulse-sub000/internal/domain"
)

// monday is the first day of every generated history.
var monday = time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC)

// history builds n consecutive days starting on monday, letting fn shape each row.
func history(n int, fn func(i int, day time.Time, m *domain.DailyMetric)) []domain.DailyMetric {
	out := make([]domain.DailyMetric, 0, n)
	for i := 0; i < n; i++ {
		day := monday.AddDate(0, 0, i)
		m := domain.DailyMetric{UserID: "user-1", Date: day}
		if fn != nil {
			fn(i, day, &m)
		}
		out = append(out, m)
	}
	return out
}

func weekdayWork(commits, minutes int) func(int, time.Time, *domain.DailyMetric) {
	return func(_ int, day time.Time, m *domain.DailyMetric) {
		if isWeekend(day) {
			return
		}
		m.Commits = commits
		m.CodingMinutes = minutes
	}
}

// lateNightWork gives each weekday in order the given commits and late-night share.
func lateNightWork(commits int, late []int) func(int, time.Time, *domain.DailyMetric) {
	return func(i int, day time.Time, m *domain.DailyMetric) {
		if isWeekend(day) || i >= len(late) {
			return
		}
		m.Commits = commits
		m.LateNightCommits = late[i]
	}
}

// weekendCommits marks the first n weekend days as worked.
func weekendCommits(n int) func(int, time.Time, *domain.DailyMetric) {
	seen := 0
	return func(_ int, day time.Time, m *domain.DailyMetric) {
		if !isWeekend(day) {
			return
		}
		seen++
		if seen <= n {
			m.Commits = 1
		}
	}
}

func activeFor(n int) func(int, time.Time, *domain.DailyMetric) {
	return func(i int, _ time.Time, m *domain.DailyMetric) {
		if i < n {
			m.CodingMinutes = 10
		}
	}
}

// halves puts earlier commits on the first day and later commits on the eighth.
func halves(earlier, later int) func(int, time.Time, *domain.DailyMetric) {
	return func(i int, _ time.Time, m *domain.DailyMetric) {
		m.CodingMinutes = 1
		switch i {
		case 0:
			m.Commits = earlier
		case 7:
			m.Commits = later
		}
	}
}

func TestBurnoutReturnsNilWithFewerThanSevenDays(t *testing.T) {
	metrics := history(6, weekdayWork(3, 300))
	require.Nil(t, GenerateBurnoutPrediction(metrics, DefaultThresholds()))
	require.Nil(t, GenerateBurnoutPrediction(nil, DefaultThresholds()))
}

func TestBurnoutBaselineIsLowRisk(t *testing.T) {
	p := GenerateBurnoutPrediction(history(14, weekdayWork(3, 300)), DefaultThresholds())
	require.NotNil(t, p)

	require.Zero(t, p.RiskScore)
	require.Equal(t, RiskLow, p.Level)
	require.Empty(t, p.Factors)
	require.Equal(t, []string{SustainablePace}, p.Recommendations)
	require.InDelta(t, 25.0, p.Signals.WeeklyHours, 0.01)
	require.Equal(t, 5, p.Signals.LongestStreak)
	require.InDelta(t, 0.47, p.Confidence, 0.001)
}

func TestBurnoutLongHoursAddAtLeastPointThree(t *testing.T) {
	baseline := GenerateBurnoutPrediction(history(14, weekdayWork(3, 300)), DefaultThresholds())
	heavy := GenerateBurnoutPrediction(history(14, weekdayWork(3, 800)), DefaultThresholds())
	require.NotNil(t, baseline)
	require.NotNil(t, heavy)

	require.Greater(t, heavy.Signals.WeeklyHours, 50.0)
	require.GreaterOrEqual(t, heavy.RiskScore-baseline.RiskScore, 0.3-1e-9)
	require.Equal(t, RiskModerate, heavy.Level)
	require.Len(t, heavy.Factors, 1)
}

func TestBurnoutWeekendWorkAndStreak(t *testing.T) {
	metrics := history(14, func(i int, day time.Time, m *domain.DailyMetric) {
		m.Commits = 3
		m.CodingMinutes = 200
		if isWeekend(day) {
			m.Commits = 2
			m.WeekendWork = true
		}
	})

	p := GenerateBurnoutPrediction(metrics, DefaultThresholds())
	require.NotNil(t, p)
	require.InDelta(t, 1.0, p.Signals.WeekendRatio, 0.001)
	require.Equal(t, 14, p.Signals.LongestStreak)
	require.InDelta(t, 0.35, p.RiskScore, 0.001)
	require.Len(t, p.Recommendations, 2)
}

func TestBurnoutAllFactorsCapAtOne(t *testing.T) {
	metrics := history(14, func(i int, day time.Time, m *domain.DailyMetric) {
		m.CodingMinutes = 900
		m.Commits = 1
		if i >= 7 {
			m.Commits = 4
		}
		m.LateNightCommits = m.Commits
		m.WeekendWork = isWeekend(day)
	})

	p := GenerateBurnoutPrediction(metrics, DefaultThresholds())
	require.NotNil(t, p)
	require.Equal(t, 1.0, p.RiskScore)
	require.Equal(t, RiskHigh, p.Level)
	require.Len(t, p.Factors, 5)
	require.NotContains(t, p.Recommendations, SustainablePace)
}

func TestBurnoutMergesDuplicateDatesAndIgnoresOrder(t *testing.T) {
	metrics := history(7, weekdayWork(2, 100))
	reversed := make([]domain.DailyMetric, 0, len(metrics)+1)
	for i := len(metrics) - 1; i >= 0; i-- {
		reversed = append(reversed, metrics[i])
	}
	reversed = append(reversed, domain.DailyMetric{UserID: "user-1", Date: monday.Add(15 * time.Hour), Commits: 1, LateNightCommits: 1})

	p := GenerateBurnoutPrediction(reversed, DefaultThresholds())
	require.NotNil(t, p)
	require.Equal(t, 7, p.Signals.Days)
	require.InDelta(t, 0.09, p.Signals.LateNightRatio, 0.001)
}

func TestBurnoutThresholdBoundaries(t *testing.T) {
	tests := []struct {
		name    string
		metrics []domain.DailyMetric
		th      func(*Thresholds)
		factor  string
		fires   bool
	}{
		{
			name: "weekly hours at limit",
			metrics: history(7, func(i int, _ time.Time, m *domain.DailyMetric) {
				m.CodingMinutes = 430
				if i == 0 {
					m.CodingMinutes = 420
				}
			}),
			factor: "Working more than 50 hours per week",
		},
		{
			name: "weekly hours just over limit",
			metrics: history(7, func(i int, _ time.Time, m *domain.DailyMetric) {
				m.CodingMinutes = 430
				if i == 0 {
					m.CodingMinutes = 421
				}
			}),
			factor: "Working more than 50 hours per week",
			fires:  true,
		},
		{
			name:    "late night ratio at limit",
			metrics: history(7, lateNightWork(200, []int{60, 60, 60, 60, 60})),
			factor:  "High share of late-night commits",
		},
		{
			name:    "late night ratio just over limit",
			metrics: history(7, lateNightWork(200, []int{61, 61, 61, 61, 60})),
			factor:  "High share of late-night commits",
			fires:   true,
		},
		{
			name:    "weekend ratio at limit",
			metrics: history(14, weekendCommits(2)),
			factor:  "Regular weekend work",
		},
		{
			name:    "weekend ratio over limit",
			metrics: history(14, weekendCommits(3)),
			factor:  "Regular weekend work",
			fires:   true,
		},
		{
			// one of three weekend days: 0.333 rounds to 0.33
			name:    "weekend ratio over a limit hidden by rounding",
			metrics: history(13, weekendCommits(1)),
			th:      func(t *Thresholds) { t.WeekendRatio = 0.333 },
			factor:  "Regular weekend work",
			fires:   true,
		},
		{
			name:    "weekend ratio under custom limit",
			metrics: history(13, weekendCommits(1)),
			th:      func(t *Thresholds) { t.WeekendRatio = 0.34 },
			factor:  "Regular weekend work",
		},
		{
			name:    "streak one day short",
			metrics: history(14, activeFor(11)),
			factor:  "Long streak without a rest day",
		},
		{
			name:    "streak at limit",
			metrics: history(14, activeFor(12)),
			factor:  "Long streak without a rest day",
			fires:   true,
		},
		{
			name:    "trend ratio at limit",
			metrics: history(14, halves(10, 15)),
			factor:  "Sharp increase in commit volume",
		},
		{
			name:    "trend ratio just over limit",
			metrics: history(14, halves(10, 16)),
			factor:  "Sharp increase in commit volume",
			fires:   true,
		},
		{
			name:    "trend needs enough later commits",
			metrics: history(14, halves(0, 9)),
			factor:  "Sharp increase in commit volume",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := DefaultThresholds()
			if tt.th != nil {
				tt.th(&th)
			}
			p := GenerateBurnoutPrediction(tt.metrics, th)
			require.NotNil(t, p)
			if tt.fires {
				require.Contains(t, p.Factors, tt.factor)
			} else {
				require.NotContains(t, p.Factors, tt.factor)
			}
		})
	}
}

func TestBurnoutLateNightRatioComparedBeforeRounding(t *testing.T) {
	p := GenerateBurnoutPrediction(history(7, lateNightWork(200, []int{61, 61, 61, 61, 60})), DefaultThresholds())
	require.NotNil(t, p)

	require.InDelta(t, 0.30, p.Signals.LateNightRatio, 0.0001)
	require.InDelta(t, 0.2, p.RiskScore, 0.001)
	require.Equal(t, []string{"High share of late-night commits"}, p.Factors)
}

func TestBurnoutWeeklyHoursUseDistinctDays(t *testing.T) {
	// seven rows spread over thirteen calendar days
	metrics := history(13, func(i int, _ time.Time, m *domain.DailyMetric) {
		if i%2 == 0 {
			m.CodingMinutes = 500
		}
	})
	sparse := make([]domain.DailyMetric, 0, 7)
	for i, m := range metrics {
		if i%2 == 0 {
			sparse = append(sparse, m)
		}
	}

	p := GenerateBurnoutPrediction(sparse, DefaultThresholds())
	require.NotNil(t, p)
	require.Equal(t, 7, p.Signals.Days)
	require.Equal(t, 13, p.Signals.SpanDays)
	require.InDelta(t, 58.33, p.Signals.WeeklyHours, 0.001)
	require.Contains(t, p.Factors, "Working more than 50 hours per week")
}

func TestBurnoutIsDeterministic(t *testing.T) {
	metrics := history(21, weekdayWork(5, 600))
	first := GenerateBurnoutPrediction(metrics, DefaultThresholds())
	second := GenerateBurnoutPrediction(metrics, DefaultThresholds())
	require.Equal(t, first, second)
	require.Equal(t, 14, first.Signals.Days)
}

func TestHealthScoreNeutralWhenInsufficient(t *testing.T) {
	res := HealthScore(history(3, weekdayWork(1, 60)), DefaultThresholds())
	require.Equal(t, NeutralHealthScore, res.Score)
	require.False(t, res.Sufficient)
}

func TestHealthScoreComponents(t *testing.T) {
	baseline := HealthScore(history(14, weekdayWork(3, 300)), DefaultThresholds())
	require.True(t, baseline.Sufficient)
	require.Equal(t, 51, baseline.Score)

	engaged := HealthScore(history(14, func(i int, day time.Time, m *domain.DailyMetric) {
		if isWeekend(day) {
			return
		}
		m.Commits = 3
		m.CodingMinutes = 300
		m.PullRequestsOpened = 1
		m.FocusMinutes = 120
	}), DefaultThresholds())
	require.Equal(t, 80, engaged.Score)
	require.InDelta(t, 30.0, engaged.Balance, 0.001)
}

func TestProductivityTrend(t *testing.T) {
	up := ProductivityTrend(history(14, func(i int, _ time.Time, m *domain.DailyMetric) {
		m.Commits = 2
		if i >= 7 {
			m.Commits = 3
		}
	}))
	require.Equal(t, TrendUp, up.Direction)
	require.Equal(t, 21, up.Current)
	require.Equal(t, 14, up.Previous)
	require.InDelta(t, 50.0, up.ChangePercent, 0.01)

	down := ProductivityTrend(history(14, func(i int, _ time.Time, m *domain.DailyMetric) {
		m.Reviews = 2
		if i >= 7 {
			m.Reviews = 1
		}
	}))
	require.Equal(t, TrendDown, down.Direction)

	stable := ProductivityTrend(history(14, func(int, time.Time, *domain.DailyMetric) {}))
	require.Equal(t, TrendStable, stable.Direction)
	require.Equal(t, TrendStable, ProductivityTrend(nil).Direction)

	fresh := ProductivityTrend(history(3, func(_ int, _ time.Time, m *domain.DailyMetric) { m.Commits = 1 }))
	require.Equal(t, TrendStable, fresh.Direction)
	require.Zero(t, fresh.ChangePercent)
}

func TestProductivityTrendStableAfterEmptyWeek(t *testing.T) {
	tr := ProductivityTrend(history(14, func(i int, _ time.Time, m *domain.DailyMetric) {
		if i >= 7 {
			m.Commits = 1
		}
	}))
	require.Equal(t, 0, tr.Previous)
	require.Equal(t, 7, tr.Current)
	require.Zero(t, tr.ChangePercent)
	require.Equal(t, TrendStable, tr.Direction)
}

func TestTransformToRebelRankingEmpty(t *testing.T) {
	ranked := TransformToRebelRanking(nil)
	require.NotNil(t, ranked)
	require.Empty(t, ranked)
	require.Equal(t, ranked, TransformToRebelRanking([]domain.TeamMemberProfile{}))
}

func TestTransformToRebelRankingOrdersByPointsThenLogin(t *testing.T) {
	members := []domain.TeamMemberProfile{
		{Login: "carol", Reviews: 5},
		{Login: "alice", Commits: 10},
		{Login: "bob", PullRequests: 4},
	}

	ranked := TransformToRebelRanking(members)
	require.Len(t, ranked, 3)
	require.Equal(t, "bob", ranked[0].Login)
	require.Equal(t, 1, ranked[0].Rank)
	require.Equal(t, "Rebel Leader", ranked[0].Title)
	require.Equal(t, "alice", ranked[1].Login)
	require.Equal(t, "Commit Cadet", ranked[1].Title)
	require.Equal(t, "carol", ranked[2].Login)
	require.Equal(t, "Rising Recruit", ranked[2].Title)
	require.InDelta(t, 12.0, ranked[0].Points, 0.001)

	require.Equal(t, ranked, TransformToRebelRanking(members))
}

func TestLoadThresholds(t *testing.T) {
	defaults, err := LoadThresholds("")
	require.NoError(t, err)
	require.Equal(t, DefaultThresholds(), defaults)

	path := filepath.Join(t.TempDir(), "scoring.yaml")
	require.NoError(t, os.WriteFile(path, []byte("weekly_hours: 40\nmin_days: 5\n"), 0o600))

	loaded, err := LoadThresholds(path)
	require.NoError(t, err)
	require.InDelta(t, 40.0, loaded.WeeklyHours, 0.001)
	require.Equal(t, 5, loaded.MinDays)
	require.Equal(t, 14, loaded.WindowDays)

	_, err = LoadThresholds(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
