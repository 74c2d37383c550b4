package outbox

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Publish results.
const (
	resultDelivered    = "delivered"
	resultFailed       = "failed"
	resultDeadLettered = "dead_lettered"
)

// DLQ outcomes.
const (
	outcomeRequeued       = "requeued"
	outcomeRetryScheduled = "retry_scheduled"
	outcomeQuarantined    = "quarantined"
)

var (
	publishedEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "devpulse",
		Subsystem: "outbox",
		Name:      "events_total",
		Help:      "Outbox events handled by the dispatcher, by topic and result.",
	}, []string{"topic", "result"})

	batchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "devpulse",
		Subsystem: "outbox",
		Name:      "batch_duration_seconds",
		Help:      "Time to claim, publish and mark one batch.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
	})

	dlqOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "devpulse",
		Subsystem: "dlq",
		Name:      "entries_total",
		Help:      "Dead-letter entries handled by the DLQ manager, by event type and outcome.",
	}, []string{"event_type", "outcome"})

	dlqBacklog = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "devpulse",
		Subsystem: "dlq",
		Name:      "backlog",
		Help:      "Dead-letter entries still awaiting replay.",
	})
)

func recordPublished(messages []Message, result string) {
	for _, msg := range messages {
		publishedEvents.WithLabelValues(msg.Topic, result).Inc()
	}
}

func recordDLQOutcome(entry dlqEntry, outcome string) {
	dlqOutcomes.WithLabelValues(entry.EventType, outcome).Inc()
}

func refreshBacklog(ctx context.Context, pool *pgxpool.Pool) {
	var count int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM outbox_dlq WHERE quarantined_at IS NULL`).Scan(&count); err != nil {
		return
	}
	dlqBacklog.Set(float64(count))
}
