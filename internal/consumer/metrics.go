package consumer

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	consumedMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "devpulse",
		Subsystem: "consumer",
		Name:      "messages_total",
		Help:      "Kafka records seen by the consumer, by topic, event type and result.",
	}, []string{"topic", "event_type", "result"})

	consumerLag = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "devpulse",
		Subsystem: "consumer",
		Name:      "lag_seconds",
		Help:      "Age of the most recently handled record when it was committed.",
	}, []string{"topic"})
)

func recordProcessed(msg Message) {
	consumedMessages.WithLabelValues(msg.Topic, msg.EventType, "processed").Inc()
	if !msg.Timestamp.IsZero() {
		consumerLag.WithLabelValues(msg.Topic).Set(time.Since(msg.Timestamp).Seconds())
	}
}

func recordHandlerError(msg Message) {
	consumedMessages.WithLabelValues(msg.Topic, msg.EventType, "handler_error").Inc()
}

// Undecodable records have no trustworthy event type.
func recordDecodeError(topic string) {
	consumedMessages.WithLabelValues(topic, "", "decode_error").Inc()
}
