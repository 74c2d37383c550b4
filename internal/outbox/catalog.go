package outbox

import "github.com/devansh054/dev-pulse-sub000/libs/events"

// Topics carrying DevPulse events.
const (
	TopicMetricsSynced     = "devpulse.metrics_synced"
	TopicInsightsGenerated = "devpulse.insights_generated"
)

// Route describes where an event type is published and which JSON schema guards it.
type Route struct {
	AggregateType string
	Topic         string
	SchemaSubject string
	Schema        string
}

var catalog = map[string]Route{
	events.TypeMetricsSynced: {
		AggregateType: "daily_metrics",
		Topic:         TopicMetricsSynced,
		SchemaSubject: TopicMetricsSynced + "-value",
		Schema:        metricsSyncedSchema,
	},
	events.TypeInsightsGenerated: {
		AggregateType: "insights",
		Topic:         TopicInsightsGenerated,
		SchemaSubject: TopicInsightsGenerated + "-value",
		Schema:        insightsGeneratedSchema,
	},
}

// Lookup returns the route for eventType.
func Lookup(eventType string) (Route, bool) {
	r, ok := catalog[eventType]
	return r, ok
}

// Topics lists every routed topic.
func Topics() []string {
	return []string{TopicMetricsSynced, TopicInsightsGenerated}
}

const metricsSyncedSchema = `{
  "type": "object",
  "title": "MetricsSynced",
  "properties": {
    "user_id": {"type": "string"},
    "login": {"type": "string"},
    "days": {"type": "integer"},
    "from": {"type": "string", "format": "date-time"},
    "to": {"type": "string", "format": "date-time"},
    "commits": {"type": "integer"},
    "synced_at": {"type": "string", "format": "date-time"},
    "trigger": {"type": "string"}
  },
  "required": ["user_id", "login", "days", "from", "to", "commits", "synced_at"],
  "additionalProperties": false
}`

const insightsGeneratedSchema = `{
  "type": "object",
  "title": "InsightsGenerated",
  "properties": {
    "user_id": {"type": "string"},
    "health_score": {"type": "integer"},
    "burnout_risk": {"type": "number"},
    "risk_level": {"type": "string"},
    "insights": {"type": "integer"},
    "generated_at": {"type": "string", "format": "date-time"}
  },
  "required": ["user_id", "health_score", "insights", "generated_at"],
  "additionalProperties": false
}`
