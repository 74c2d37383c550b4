package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/devansh054/dev-pulse-sub000/internal/logging"
	"github.com/devansh054/dev-pulse-sub000/libs/events"
)

func TestWireFormatRoundTrip(t *testing.T) {
	frame := EncodeWireFormat(258, []byte(`{"user_id":"u1"}`))
	require.Equal(t, byte(0), frame[0])
	require.Equal(t, []byte{0, 0, 1, 2}, frame[1:5])

	id, payload, err := DecodeWireFormat(frame)
	require.NoError(t, err)
	require.Equal(t, 258, id)
	require.JSONEq(t, `{"user_id":"u1"}`, string(payload))

	_, _, err = DecodeWireFormat([]byte{1, 0, 0, 0, 1})
	require.Error(t, err)
	_, _, err = DecodeWireFormat([]byte{0, 1})
	require.Error(t, err)
}

func TestCatalogRoutesEveryEventType(t *testing.T) {
	for _, eventType := range []string{events.TypeMetricsSynced, events.TypeInsightsGenerated} {
		route, ok := Lookup(eventType)
		require.True(t, ok, eventType)
		require.Equal(t, route.Topic+"-value", route.SchemaSubject)
		require.True(t, json.Valid([]byte(route.Schema)), eventType)
		require.NotEmpty(t, route.AggregateType)
	}
	_, ok := Lookup("unknown.event")
	require.False(t, ok)
	require.ElementsMatch(t, []string{TopicMetricsSynced, TopicInsightsGenerated}, Topics())
}

func newTestDispatcher(producer messageWriter, registry SchemaRegistrar) *Dispatcher {
	return &Dispatcher{
		producer:         producer,
		registry:         registry,
		log:              logrus.NewEntry(logging.Discard()),
		shutdownComplete: make(chan struct{}),
	}
}

func TestDeliverGroupsByTopicAndSetsHeaders(t *testing.T) {
	producer := &stubProducer{}
	registry := &stubRegistry{id: 9}
	d := newTestDispatcher(producer, registry)

	messages := []Message{
		{EventID: 1, UserID: "u1", EventType: events.TypeMetricsSynced, Topic: TopicMetricsSynced, SchemaSubject: TopicMetricsSynced + "-value", PartitionKey: "u1", Payload: json.RawMessage(`{"a":1}`)},
		{EventID: 2, UserID: "u1", EventType: events.TypeInsightsGenerated, Topic: TopicInsightsGenerated, SchemaSubject: TopicInsightsGenerated + "-value", PartitionKey: "u1", Payload: json.RawMessage(`{"b":2}`)},
		{EventID: 3, UserID: "u2", EventType: events.TypeMetricsSynced, Topic: TopicMetricsSynced, SchemaSubject: TopicMetricsSynced + "-value", PartitionKey: "u2", Payload: json.RawMessage(`{"a":3}`)},
	}
	require.NoError(t, d.deliver(context.Background(), messages))

	require.Len(t, producer.writes, 2)
	require.Equal(t, TopicMetricsSynced, producer.writes[0].topic)
	require.Len(t, producer.writes[0].messages, 2)
	require.Equal(t, TopicInsightsGenerated, producer.writes[1].topic)

	first := producer.writes[0].messages[0]
	require.Equal(t, []byte("u1"), first.Key)
	id, payload, err := DecodeWireFormat(first.Value)
	require.NoError(t, err)
	require.Equal(t, 9, id)
	require.JSONEq(t, `{"a":1}`, string(payload))

	headers := map[string]string{}
	for _, h := range first.Headers {
		headers[h.Key] = string(h.Value)
	}
	require.Equal(t, events.TypeMetricsSynced, headers["event_type"])
	require.Equal(t, "u1", headers["user_id"])

	// one registry call per subject thanks to the cache
	require.Len(t, registry.calls, 2)
}

func TestDeliverRejectsUnknownEventType(t *testing.T) {
	producer := &stubProducer{}
	registry := &stubRegistry{}
	d := newTestDispatcher(producer, registry)

	err := d.deliver(context.Background(), []Message{{EventType: "nope", Topic: "x"}})
	require.ErrorContains(t, err, "no schema metadata for event_type=nope")
	require.Empty(t, producer.writes)
	require.Empty(t, registry.calls)
}

func TestDeliverPropagatesProducerAndRegistryErrors(t *testing.T) {
	msg := Message{EventType: events.TypeMetricsSynced, Topic: TopicMetricsSynced, SchemaSubject: TopicMetricsSynced + "-value", Payload: json.RawMessage(`{}`)}

	d := newTestDispatcher(&stubProducer{err: errors.New("broker down")}, &stubRegistry{})
	require.ErrorContains(t, d.deliver(context.Background(), []Message{msg}), "broker down")

	d = newTestDispatcher(&stubProducer{}, &stubRegistry{err: errors.New("registry down")})
	require.ErrorContains(t, d.deliver(context.Background(), []Message{msg}), "registry down")
}

func TestSchemaRegistryClientRegistersMissingSubject(t *testing.T) {
	var registered string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/subjects/devpulse.metrics_synced-value/versions/latest":
			w.WriteHeader(http.StatusNotFound)
		case r.Method == http.MethodPost && r.URL.Path == "/subjects/devpulse.metrics_synced-value/versions":
			body, _ := io.ReadAll(r.Body)
			registered = string(body)
			require.Equal(t, "application/vnd.schemaregistry.v1+json", r.Header.Get("Content-Type"))
			_, _ = w.Write([]byte(`{"id":17}`))
		default:
			w.WriteHeader(http.StatusTeapot)
		}
	}))
	defer srv.Close()

	client := NewSchemaRegistryClient(srv.URL + "/")
	id, err := client.EnsureSchema(context.Background(), TopicMetricsSynced+"-value", metricsSyncedSchema)
	require.NoError(t, err)
	require.Equal(t, 17, id)
	require.Contains(t, registered, `"schemaType":"JSON"`)
}

func TestSchemaRegistryClientUsesLatestVersion(t *testing.T) {
	posts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			posts++
		}
		_, _ = w.Write([]byte(`{"id":5,"version":3}`))
	}))
	defer srv.Close()

	id, err := NewSchemaRegistryClient(srv.URL).EnsureSchema(context.Background(), "s", "{}")
	require.NoError(t, err)
	require.Equal(t, 5, id)
	require.Zero(t, posts)
}

func TestSchemaRegistryClientSurfacesServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewSchemaRegistryClient(srv.URL).EnsureSchema(context.Background(), "s", "{}")
	require.ErrorContains(t, err, "boom")
}

func TestLocalRegistryStableIDs(t *testing.T) {
	r := NewLocalRegistry()
	a, _ := r.EnsureSchema(context.Background(), "a", "{}")
	b, _ := r.EnsureSchema(context.Background(), "b", "{}")
	again, _ := r.EnsureSchema(context.Background(), "a", "{}")
	require.Equal(t, 1, a)
	require.Equal(t, 2, b)
	require.Equal(t, a, again)
}

func TestBackoffDelay(t *testing.T) {
	m := &DLQManager{baseDelay: time.Minute}
	require.Equal(t, time.Minute, m.backoffDelay(1))
	require.Equal(t, 4*time.Minute, m.backoffDelay(3))
	require.Equal(t, time.Hour, m.backoffDelay(7))
	require.Equal(t, time.Hour, m.backoffDelay(64))
}
