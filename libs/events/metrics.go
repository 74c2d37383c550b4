// Package events defines shared cross-process event payloads.
package events

import "time"

// Event type identifiers carried in the event_type header.
const (
	TypeMetricsSynced     = "metrics.synced"
	TypeInsightsGenerated = "insights.generated"
)

// MetricsSynced is emitted after a GitHub sync upserts daily metric rows for a user.
type MetricsSynced struct {
	UserID   string    `json:"user_id"`
	Login    string    `json:"login"`
	Days     int       `json:"days"`
	From     time.Time `json:"from"`
	To       time.Time `json:"to"`
	Commits  int       `json:"commits"`
	SyncedAt time.Time `json:"synced_at"`
	Trigger  string    `json:"trigger"`
}

// InsightsGenerated announces a fresh insight report for downstream dashboards.
type InsightsGenerated struct {
	UserID      string    `json:"user_id"`
	HealthScore int       `json:"health_score"`
	BurnoutRisk *float64  `json:"burnout_risk,omitempty"`
	RiskLevel   string    `json:"risk_level,omitempty"`
	Insights    int       `json:"insights"`
	GeneratedAt time.Time `json:"generated_at"`
}
