package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/devansh054/dev-pulse-sub000/internal/domain"
	"github.com/devansh054/dev-pulse-sub000/internal/insights"
	"github.com/devansh054/dev-pulse-sub000/internal/persistence/memory"
	"github.com/devansh054/dev-pulse-sub000/internal/scoring"
	"github.com/devansh054/dev-pulse-sub000/libs/events"
)

type recordingGenerator struct {
	users []string
	err   error
}

func (g *recordingGenerator) Generate(_ context.Context, userID string) (*insights.Report, error) {
	g.users = append(g.users, userID)
	return &insights.Report{UserID: userID}, g.err
}

func TestInsightHandlerOnlyReactsToMetricsSynced(t *testing.T) {
	gen := &recordingGenerator{}
	h := NewInsightHandler(gen)

	require.NoError(t, h.Handle(context.Background(), Message{EventType: events.TypeInsightsGenerated, UserID: "u1"}))
	require.Empty(t, gen.users)

	require.NoError(t, h.Handle(context.Background(), Message{EventType: events.TypeMetricsSynced, Payload: json.RawMessage(`{"user_id":"u2"}`)}))
	require.Equal(t, []string{"u2"}, gen.users)

	require.Error(t, h.Handle(context.Background(), Message{EventType: events.TypeMetricsSynced, Payload: json.RawMessage(`{}`)}))

	gen.err = errors.New("db down")
	require.ErrorContains(t, h.Handle(context.Background(), Message{EventType: events.TypeMetricsSynced, UserID: "u3"}), "db down")
}

func TestActivityLogHandlerRecordsConsumedEvent(t *testing.T) {
	store := memory.NewStore()
	h := NewActivityLogHandler(store)
	ts := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	msg := Message{Topic: "devpulse.metrics_synced", Partition: 1, Offset: 7, Timestamp: ts, EventType: events.TypeMetricsSynced, UserID: "u1", SchemaID: 3, Payload: json.RawMessage(`{"days":30}`)}
	require.NoError(t, h.Handle(context.Background(), msg))
	require.NoError(t, h.Handle(context.Background(), Message{EventType: "x"}), "events without a user are dropped")

	logs, _, err := store.ListActivity(context.Background(), "u1", nil, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, "event.metrics.synced", logs[0].Action)
	require.True(t, logs[0].CreatedAt.Equal(ts))
	require.JSONEq(t, `{"topic":"devpulse.metrics_synced","partition":1,"offset":7,"schema_id":3,"payload":{"days":30}}`, string(logs[0].Detail))

	// redelivery of the same record maps to the same entry
	require.NoError(t, h.Handle(context.Background(), msg))
	again, _, err := store.ListActivity(context.Background(), "u1", nil, 10)
	require.NoError(t, err)
	require.Len(t, again, 1)
	require.Equal(t, logs[0].ID, again[0].ID)
}

func TestChainStopsAtFirstError(t *testing.T) {
	var calls []string
	step := func(name string, err error) Handler {
		return HandlerFunc(func(context.Context, Message) error {
			calls = append(calls, name)
			return err
		})
	}

	err := Chain{step("a", nil), step("b", errors.New("fail")), step("c", nil)}.Handle(context.Background(), Message{})
	require.Error(t, err)
	require.Equal(t, []string{"a", "b"}, calls)
}

func TestInsightHandlerWithRealService(t *testing.T) {
	store := memory.NewStore()
	svc := insights.NewService(store, store, scoring.DefaultThresholds())
	h := Chain{NewActivityLogHandler(store), NewInsightHandler(svc)}

	require.NoError(t, h.Handle(context.Background(), Message{Topic: "t", EventType: events.TypeMetricsSynced, UserID: "u1", Timestamp: time.Now()}))

	list, err := store.ListInsights(context.Background(), "u1", true)
	require.NoError(t, err)
	require.NotEmpty(t, list)
	require.NotEmpty(t, store.OutboxEvents())

	kinds := map[domain.InsightKind]bool{}
	for _, in := range list {
		kinds[in.Kind] = true
	}
	require.True(t, kinds[domain.InsightHealth])
}
