package outbox

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/devansh054/dev-pulse-sub000/internal/domain"
)

// Enqueue records ev in the outbox inside tx so it commits atomically with the state change.
func Enqueue(ctx context.Context, tx pgx.Tx, userID string, ev domain.OutboxEvent) error {
	route, ok := Lookup(ev.EventType)
	if !ok {
		return fmt.Errorf("outbox: unrouted event type %q", ev.EventType)
	}
	payload, err := json.Marshal(ev.Payload)
	if err != nil {
		return fmt.Errorf("outbox: encode %s: %w", ev.EventType, err)
	}
	key := ev.PartitionKey
	if key == "" {
		key = userID
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO outbox (user_id, aggregate_type, aggregate_id, event_type, topic, schema_subject, partition_key, payload)
         VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		userID, route.AggregateType, ev.AggregateID, ev.EventType, route.Topic, route.SchemaSubject, key, payload,
	)
	return err
}
