// Package domain defines the DevPulse entities, their persistence contracts and the CRUD services built on them.
package domain

import (
	"context"
	"time"
)

// UserRepository persists user accounts. Get-style lookups return (nil, nil) when absent.
type UserRepository interface {
	UpsertUser(ctx context.Context, user User) (*User, error)
	GetUser(ctx context.Context, id string) (*User, error)
	ListUsers(ctx context.Context, limit int) ([]User, error)
	ListUsersWithTokens(ctx context.Context) ([]User, error)
	DeleteUser(ctx context.Context, id string) error
	MarkSynced(ctx context.Context, id string, at time.Time) error
}

// MetricRepository persists daily metric rows.
type MetricRepository interface {
	// UpsertDailyMetrics writes rows keyed by (user, date), keeping stored focus minutes,
	// and records the activity entry and outbox events in the same unit of work.
	UpsertDailyMetrics(ctx context.Context, userID string, metrics []DailyMetric, entry ActivityLog, events []OutboxEvent) error
	ListDailyMetrics(ctx context.Context, userID string, from, to time.Time) ([]DailyMetric, error)
	AddFocusMinutes(ctx context.Context, userID string, day time.Time, minutes int) error
}

// InsightRepository persists generated insights.
type InsightRepository interface {
	ReplaceInsights(ctx context.Context, userID string, insights []Insight, events []OutboxEvent) error
	ListInsights(ctx context.Context, userID string, includeDismissed bool) ([]Insight, error)
	DismissInsight(ctx context.Context, userID, insightID string) error
}

// GoalRepository persists goals.
type GoalRepository interface {
	CreateGoal(ctx context.Context, goal Goal) error
	UpdateGoal(ctx context.Context, goal Goal) error
	GetGoal(ctx context.Context, userID, goalID string) (*Goal, error)
	ListGoals(ctx context.Context, userID string) ([]Goal, error)
	DeleteGoal(ctx context.Context, userID, goalID string) error
}

// TeamRepository persists team boards.
type TeamRepository interface {
	AddMember(ctx context.Context, member TeamMemberProfile) error
	RemoveMember(ctx context.Context, ownerID, login string) error
	ListMembers(ctx context.Context, ownerID string) ([]TeamMemberProfile, error)
}

// DeviceRepository persists registered devices.
type DeviceRepository interface {
	// UpsertDevice inserts or refreshes the device with the same (user, fingerprint) and reports whether it was new.
	UpsertDevice(ctx context.Context, device Device) (*Device, bool, error)
	GetDevice(ctx context.Context, userID, deviceID string) (*Device, error)
	ListDevices(ctx context.Context, userID string) ([]Device, error)
	TouchDevice(ctx context.Context, userID, deviceID string, at time.Time) error
	SetDeviceTrusted(ctx context.Context, userID, deviceID string, trusted bool) error
	DeleteDevice(ctx context.Context, userID, deviceID string) error
}

// ExperimentRepository persists laboratory experiments, benchmarks and runs.
type ExperimentRepository interface {
	CreateExperiment(ctx context.Context, exp Experiment) error
	UpdateExperiment(ctx context.Context, exp Experiment) error
	GetExperiment(ctx context.Context, userID, experimentID string) (*Experiment, error)
	ListExperiments(ctx context.Context, userID string) ([]Experiment, error)
	DeleteExperiment(ctx context.Context, userID, experimentID string) error
	AddBenchmark(ctx context.Context, benchmark ExperimentBenchmark) error
	AddTestRun(ctx context.Context, run ExperimentTestRun) error
	ListTestRuns(ctx context.Context, experimentID string) ([]ExperimentTestRun, error)
}

// Cursor marks the last activity entry of a page; the next page starts strictly after it.
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

// ActivityRepository persists the audit log.
type ActivityRepository interface {
	AppendActivity(ctx context.Context, entry ActivityLog) error
	// ListActivity returns entries newest first. The returned cursor is nil on the last page.
	ListActivity(ctx context.Context, userID string, cursor *Cursor, limit int) ([]ActivityLog, *Cursor, error)
}

// StoreStats summarises row counts for the admin panel.
type StoreStats struct {
	Users        int `json:"users"`
	DailyMetrics int `json:"daily_metrics"`
	Insights     int `json:"insights"`
	Goals        int `json:"goals"`
	TeamMembers  int `json:"team_members"`
	Devices      int `json:"devices"`
	Experiments  int `json:"experiments"`
	ActivityLogs int `json:"activity_logs"`
}

// StatsRepository reports aggregate counts.
type StatsRepository interface {
	Stats(ctx context.Context) (StoreStats, error)
}

// Store is the full persistence surface implemented by the postgres and memory backends.
type Store interface {
	UserRepository
	MetricRepository
	InsightRepository
	GoalRepository
	TeamRepository
	DeviceRepository
	ExperimentRepository
	ActivityRepository
	StatsRepository
}

// DayStart truncates t to midnight UTC.
func DayStart(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
