package domain

import (
	"encoding/json"
	"time"
)

// User is a DevPulse account linked to a GitHub identity.
type User struct {
	ID           string
	GitHubID     int64
	Login        string
	Name         string
	Email        string
	AvatarURL    string
	Role         string
	SealedToken  []byte
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastSyncedAt *time.Time
}

// DailyMetric aggregates one user's activity for one UTC calendar day.
type DailyMetric struct {
	UserID             string    `json:"user_id"`
	Date               time.Time `json:"date"`
	Commits            int       `json:"commits"`
	PullRequestsOpened int       `json:"pull_requests_opened"`
	PullRequestsMerged int       `json:"pull_requests_merged"`
	IssuesOpened       int       `json:"issues_opened"`
	IssuesClosed       int       `json:"issues_closed"`
	Reviews            int       `json:"reviews"`
	CodingMinutes      int       `json:"coding_minutes"`
	FocusMinutes       int       `json:"focus_minutes"`
	LateNightCommits   int       `json:"late_night_commits"`
	WeekendWork        bool      `json:"weekend_work"`
}

// Active reports whether any tracked work happened on the day.
func (m DailyMetric) Active() bool {
	return m.Commits > 0 || m.PullRequestsOpened > 0 || m.PullRequestsMerged > 0 ||
		m.IssuesOpened > 0 || m.IssuesClosed > 0 || m.Reviews > 0 || m.CodingMinutes > 0
}

// InsightKind classifies generated insights.
type InsightKind string

const (
	InsightBurnout        InsightKind = "burnout"
	InsightHealth         InsightKind = "health"
	InsightProductivity   InsightKind = "productivity"
	InsightRecommendation InsightKind = "recommendation"
)

// Insight is a persisted observation produced by the scoring heuristics.
type Insight struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id"`
	Kind      InsightKind `json:"kind"`
	Title     string      `json:"title"`
	Body      string      `json:"body"`
	Score     float64     `json:"score"`
	Severity  string      `json:"severity"`
	Dismissed bool        `json:"dismissed"`
	CreatedAt time.Time   `json:"created_at"`
}

// GoalPeriod bounds the window a goal's progress is measured over.
type GoalPeriod string

const (
	GoalDaily   GoalPeriod = "daily"
	GoalWeekly  GoalPeriod = "weekly"
	GoalMonthly GoalPeriod = "monthly"
)

// Goal is a user-defined target against one daily metric.
type Goal struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Title     string     `json:"title"`
	Metric    string     `json:"metric"`
	Target    int        `json:"target"`
	Period    GoalPeriod `json:"period"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	Completed bool       `json:"completed"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TeamMemberProfile is a GitHub user tracked on the owner's team board.
type TeamMemberProfile struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id"`
	Login        string    `json:"login"`
	Name         string    `json:"name"`
	AvatarURL    string    `json:"avatar_url"`
	Commits      int       `json:"commits"`
	PullRequests int       `json:"pull_requests"`
	Reviews      int       `json:"reviews"`
	IssuesClosed int       `json:"issues_closed"`
	AddedAt      time.Time `json:"added_at"`
}

// Device is a browser or machine a user signed in from.
type Device struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Kind        string    `json:"kind"`
	OS          string    `json:"os"`
	Browser     string    `json:"browser"`
	Fingerprint string    `json:"fingerprint"`
	Trusted     bool      `json:"trusted"`
	LastSeenAt  time.Time `json:"last_seen_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// ExperimentStatus tracks laboratory experiment lifecycle.
type ExperimentStatus string

const (
	ExperimentDraft     ExperimentStatus = "draft"
	ExperimentRunning   ExperimentStatus = "running"
	ExperimentCompleted ExperimentStatus = "completed"
)

// Experiment is a laboratory hypothesis with attached benchmarks.
type Experiment struct {
	ID         string                `json:"id"`
	UserID     string                `json:"user_id"`
	Name       string                `json:"name"`
	Hypothesis string                `json:"hypothesis"`
	Status     ExperimentStatus      `json:"status"`
	Benchmarks []ExperimentBenchmark `json:"benchmarks"`
	CreatedAt  time.Time             `json:"created_at"`
	UpdatedAt  time.Time             `json:"updated_at"`
}

// ExperimentBenchmark defines a measured quantity with baseline and target.
type ExperimentBenchmark struct {
	ID           string  `json:"id"`
	ExperimentID string  `json:"experiment_id"`
	Name         string  `json:"name"`
	Metric       string  `json:"metric"`
	Baseline     float64 `json:"baseline"`
	Target       float64 `json:"target"`
	Unit         string  `json:"unit"`
	// LowerIsBetter flips the improvement direction, e.g. for latency.
	LowerIsBetter bool `json:"lower_is_better"`
}

// ExperimentTestRun is one recorded measurement of a benchmark.
type ExperimentTestRun struct {
	ID           string    `json:"id"`
	ExperimentID string    `json:"experiment_id"`
	BenchmarkID  string    `json:"benchmark_id"`
	Value        float64   `json:"value"`
	Notes        string    `json:"notes"`
	RanAt        time.Time `json:"ran_at"`
}

// ActivityLog is an append-only audit entry.
type ActivityLog struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Action    string          `json:"action"`
	Detail    json.RawMessage `json:"detail,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// OutboxEvent is a domain event recorded alongside a state change for later delivery.
type OutboxEvent struct {
	EventType    string
	AggregateID  string
	PartitionKey string
	Payload      interface{}
}
