package outbox

import (
	"context"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"github.com/devansh054/dev-pulse-sub000/internal/logging"
)

func TestKafkaProducerReusesWritersAndRejectsWritesAfterClose(t *testing.T) {
	p := NewKafkaProducer([]string{"127.0.0.1:1"}, logging.Discard())

	first, err := p.writer(TopicMetricsSynced)
	require.NoError(t, err)
	again, err := p.writer(TopicMetricsSynced)
	require.NoError(t, err)
	require.Same(t, first, again)

	other, err := p.writer(TopicInsightsGenerated)
	require.NoError(t, err)
	require.NotSame(t, first, other)

	require.NoError(t, p.Close())
	err = p.WriteMessages(context.Background(), TopicMetricsSynced, kafka.Message{Value: []byte("x")})
	require.EqualError(t, err, "outbox: producer closed")
}
