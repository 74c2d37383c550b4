package domain

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Metrics a goal can track.
const (
	GoalMetricCommits       = "commits"
	GoalMetricPullRequests  = "pull_requests"
	GoalMetricReviews       = "reviews"
	GoalMetricCodingMinutes = "coding_minutes"
	GoalMetricFocusMinutes  = "focus_minutes"
)

var goalMetrics = map[string]func(DailyMetric) int{
	GoalMetricCommits:       func(m DailyMetric) int { return m.Commits },
	GoalMetricPullRequests:  func(m DailyMetric) int { return m.PullRequestsOpened },
	GoalMetricReviews:       func(m DailyMetric) int { return m.Reviews },
	GoalMetricCodingMinutes: func(m DailyMetric) int { return m.CodingMinutes },
	GoalMetricFocusMinutes:  func(m DailyMetric) int { return m.FocusMinutes },
}

// GoalInput carries user-editable goal fields.
type GoalInput struct {
	Title   string
	Metric  string
	Target  int
	Period  GoalPeriod
	DueDate *time.Time
}

// Validate checks the input against the supported metrics and periods.
func (in GoalInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if _, ok := goalMetrics[in.Metric]; !ok {
		return fmt.Errorf("%w: unsupported metric %q", ErrValidation, in.Metric)
	}
	if in.Target <= 0 {
		return fmt.Errorf("%w: target must be > 0", ErrValidation)
	}
	switch in.Period {
	case GoalDaily, GoalWeekly, GoalMonthly:
	default:
		return fmt.Errorf("%w: unsupported period %q", ErrValidation, in.Period)
	}
	return nil
}

// GoalProgress pairs a goal with its measured progress.
type GoalProgress struct {
	Goal    Goal    `json:"goal"`
	Current int     `json:"current"`
	Percent float64 `json:"percent"`
}

// GoalService manages goals and computes progress from daily metrics.
type GoalService struct {
	goals   GoalRepository
	metrics MetricRepository
	now     func() time.Time
}

// NewGoalService constructs a GoalService.
func NewGoalService(goals GoalRepository, metrics MetricRepository) *GoalService {
	return &GoalService{goals: goals, metrics: metrics, now: time.Now}
}

// Create validates and stores a new goal.
func (s *GoalService) Create(ctx context.Context, userID string, in GoalInput) (*Goal, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	goal := Goal{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     strings.TrimSpace(in.Title),
		Metric:    in.Metric,
		Target:    in.Target,
		Period:    in.Period,
		DueDate:   in.DueDate,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.goals.CreateGoal(ctx, goal); err != nil {
		return nil, err
	}
	return &goal, nil
}

// Update replaces editable fields and the completion flag.
func (s *GoalService) Update(ctx context.Context, userID, goalID string, in GoalInput, completed bool) (*Goal, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	goal, err := s.goals.GetGoal(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}
	if goal == nil {
		return nil, ErrNotFound
	}
	goal.Title = strings.TrimSpace(in.Title)
	goal.Metric = in.Metric
	goal.Target = in.Target
	goal.Period = in.Period
	goal.DueDate = in.DueDate
	goal.Completed = completed
	goal.UpdatedAt = s.now().UTC()
	if err := s.goals.UpdateGoal(ctx, *goal); err != nil {
		return nil, err
	}
	return goal, nil
}

// Delete removes a goal.
func (s *GoalService) Delete(ctx context.Context, userID, goalID string) error {
	return s.goals.DeleteGoal(ctx, userID, goalID)
}

// List returns the user's goals with progress over each goal's current period.
func (s *GoalService) List(ctx context.Context, userID string) ([]GoalProgress, error) {
	goals, err := s.goals.ListGoals(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]GoalProgress, 0, len(goals))
	if len(goals) == 0 {
		return out, nil
	}

	today := DayStart(s.now())
	metrics, err := s.metrics.ListDailyMetrics(ctx, userID, today.AddDate(0, 0, -30), today)
	if err != nil {
		return nil, err
	}
	for _, goal := range goals {
		out = append(out, progressFor(goal, metrics, today))
	}
	return out, nil
}

func progressFor(goal Goal, metrics []DailyMetric, today time.Time) GoalProgress {
	from := periodStart(goal.Period, today)
	value := goalMetrics[goal.Metric]
	current := 0
	if value != nil {
		for _, m := range metrics {
			day := DayStart(m.Date)
			if day.Before(from) || day.After(today) {
				continue
			}
			current += value(m)
		}
	}
	percent := 0.0
	if goal.Target > 0 {
		percent = math.Min(100, math.Round(float64(current)/float64(goal.Target)*1000)/10)
	}
	return GoalProgress{Goal: goal, Current: current, Percent: percent}
}

// periodStart returns the first day of the period containing today. Weeks start on Monday.
func periodStart(period GoalPeriod, today time.Time) time.Time {
	switch period {
	case GoalWeekly:
		offset := (int(today.Weekday()) + 6) % 7
		return today.AddDate(0, 0, -offset)
	case GoalMonthly:
		return time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return today
	}
}
