package focus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/devansh054/dev-pulse-sub000/internal/domain"
	"github.com/devansh054/dev-pulse-sub000/internal/persistence/memory"
)

type fakeRecorder struct {
	minutes map[string]int
	err     error
}

func (f *fakeRecorder) AddFocus(_ context.Context, userID string, minutes int) error {
	if f.err != nil {
		return f.err
	}
	f.minutes[userID] += minutes
	return nil
}

func newTracker(start time.Time) (*Tracker, *fakeRecorder, *time.Time) {
	clock := start
	rec := &fakeRecorder{minutes: map[string]int{}}
	tr := NewTracker(rec)
	tr.now = func() time.Time { return clock }
	return tr, rec, &clock
}

func TestStopWithoutStartIsNotFound(t *testing.T) {
	tr, _, _ := newTracker(time.Now())
	_, err := tr.Stop(context.Background(), "u1")
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.Nil(t, tr.Current("u1"))
}

func TestStartStopCreditsMinutes(t *testing.T) {
	tr, rec, clock := newTracker(time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC))

	s, err := tr.Start("u1", " deep work ")
	require.NoError(t, err)
	require.Equal(t, "deep work", s.Label)

	_, err = tr.Start("u1", "again")
	require.ErrorIs(t, err, domain.ErrConflict)

	*clock = clock.Add(47*time.Minute + 30*time.Second)
	cur := tr.Current("u1")
	require.NotNil(t, cur)
	require.Equal(t, 47, cur.ElapsedMinutes)

	done, err := tr.Stop(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, 47, done.ElapsedMinutes)
	require.Equal(t, 47, rec.minutes["u1"])
	require.Nil(t, tr.Current("u1"))
}

func TestElapsedIsCapped(t *testing.T) {
	tr, rec, clock := newTracker(time.Now())
	_, err := tr.Start("u1", "")
	require.NoError(t, err)
	*clock = clock.Add(30 * time.Hour)

	s, err := tr.Stop(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, MaxSessionMinutes, s.ElapsedMinutes)
	require.Equal(t, MaxSessionMinutes, rec.minutes["u1"])
}

func TestStopClosesSessionEvenWhenRecordingFails(t *testing.T) {
	tr, rec, clock := newTracker(time.Now())
	rec.err = errors.New("db down")
	_, err := tr.Start("u1", "")
	require.NoError(t, err)
	*clock = clock.Add(10 * time.Minute)

	_, err = tr.Stop(context.Background(), "u1")
	require.ErrorContains(t, err, "db down")
	require.Nil(t, tr.Current("u1"))
}

func TestStopAddsToTodaysMetricRow(t *testing.T) {
	store := memory.NewStore()
	tr := NewTracker(domain.NewMetricService(store))
	start := time.Now().Add(-25 * time.Minute)
	tr.now = func() time.Time { return start }
	_, err := tr.Start("u1", "")
	require.NoError(t, err)
	tr.now = time.Now

	_, err = tr.Stop(context.Background(), "u1")
	require.NoError(t, err)

	today := domain.DayStart(time.Now())
	rows, err := store.ListDailyMetrics(context.Background(), "u1", today, today)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.GreaterOrEqual(t, rows[0].FocusMinutes, 24)
}
