package insights

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/devansh054/dev-pulse-sub000/internal/domain"
	"github.com/devansh054/dev-pulse-sub000/internal/persistence/memory"
	"github.com/devansh054/dev-pulse-sub000/internal/scoring"
	"github.com/devansh054/dev-pulse-sub000/libs/events"
)

var today = time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC)

func newService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	svc := NewService(store, store, scoring.DefaultThresholds())
	svc.now = func() time.Time { return today.Add(9 * time.Hour) }
	return svc, store
}

func seed(t *testing.T, store *memory.Store, userID string, days int, fn func(i int, m *domain.DailyMetric)) {
	t.Helper()
	rows := make([]domain.DailyMetric, 0, days)
	for i := 0; i < days; i++ {
		m := domain.DailyMetric{Date: today.AddDate(0, 0, -(days - 1 - i))}
		fn(i, &m)
		rows = append(rows, m)
	}
	require.NoError(t, store.UpsertDailyMetrics(context.Background(), userID, rows, domain.ActivityLog{}, nil))
}

func TestGenerateWithInsufficientData(t *testing.T) {
	svc, store := newService(t)
	seed(t, store, "u1", 3, func(_ int, m *domain.DailyMetric) { m.Commits = 2 })

	report, err := svc.Generate(context.Background(), "u1")
	require.NoError(t, err)
	require.Nil(t, report.Burnout)
	require.Equal(t, scoring.NeutralHealthScore, report.Health.Score)
	require.False(t, report.Health.Sufficient)
	require.Len(t, report.Insights, 2)

	outbox := store.OutboxEvents()
	require.Len(t, outbox, 1)
	payload := outbox[0].Payload.(events.InsightsGenerated)
	require.Nil(t, payload.BurnoutRisk)
	require.Equal(t, 50, payload.HealthScore)
}

func TestGenerateReplacesPreviousInsights(t *testing.T) {
	svc, store := newService(t)
	seed(t, store, "u1", 14, func(_ int, m *domain.DailyMetric) {
		m.Commits = 3
		m.CodingMinutes = 800
	})
	ctx := context.Background()

	first, err := svc.Generate(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, first.Burnout)
	require.Greater(t, first.Burnout.RiskScore, 0.0)

	require.NoError(t, svc.Dismiss(ctx, "u1", first.Insights[0].ID))

	second, err := svc.Generate(ctx, "u1")
	require.NoError(t, err)

	active, err := svc.List(ctx, "u1", false)
	require.NoError(t, err)
	require.Len(t, active, len(second.Insights))

	all, err := svc.List(ctx, "u1", true)
	require.NoError(t, err)
	require.Len(t, all, len(second.Insights)+1)

	require.ErrorIs(t, svc.Dismiss(ctx, "u1", "missing"), domain.ErrNotFound)
}

func TestSummaryTotalsAndStreaks(t *testing.T) {
	svc, store := newService(t)
	// Ten days ending yesterday are active, today is idle.
	seed(t, store, "u1", 12, func(i int, m *domain.DailyMetric) {
		if i == 0 || i == 11 {
			return
		}
		m.Commits = 1
		m.Reviews = 1
		m.FocusMinutes = 30
	})

	sum, err := svc.Summary(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, 12, sum.Days)
	require.Equal(t, 10, sum.ActiveDays)
	require.Equal(t, 10, sum.CurrentStreak)
	require.Equal(t, 10, sum.LongestStreak)
	require.Equal(t, 10, sum.Totals.Commits)
	require.Equal(t, 300, sum.Totals.FocusMinutes)
	require.True(t, sum.Health.Sufficient)
}
